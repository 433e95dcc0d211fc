package model

// Phase is one stage of the fixed delivery pipeline.
type Phase string

const (
	PhaseDesign      Phase = "design"
	PhaseCoding      Phase = "coding"
	PhaseTesting     Phase = "testing"
	PhasePreparation Phase = "preparation"
	PhaseLive        Phase = "live"
)

// Phases lists the pipeline stages in delivery order.
var Phases = []Phase{PhaseDesign, PhaseCoding, PhaseTesting, PhasePreparation, PhaseLive}

// phaseProgress maps each phase to its fixed progress percentage. Progress is
// never written independently of phase.
var phaseProgress = map[Phase]int{
	PhaseDesign:      20,
	PhaseCoding:      40,
	PhaseTesting:     60,
	PhasePreparation: 80,
	PhaseLive:        100,
}

// PhaseStatuses is the allowed status vocabulary per phase. The first entry is
// the default status when a phase is entered without an explicit status.
var PhaseStatuses = map[Phase][]string{
	PhaseDesign:      {"デザイン作成中", "デザインレビュー中", "デザイン修正中", "デザイン完了"},
	PhaseCoding:      {"コーディング中", "レスポンシブ対応中", "コーディング修正中", "コーディング完了"},
	PhaseTesting:     {"内部テスト中", "クライアントレビュー中", "修正対応中", "テスト完了"},
	PhasePreparation: {"サーバー設定中", "ドメイン設定中", "最終確認中", "公開準備完了"},
	PhaseLive:        {"公開済み", "メンテナンス中"},
}

// ValidPhase reports whether p belongs to the phase set.
func ValidPhase(p Phase) bool {
	_, ok := phaseProgress[p]
	return ok
}

// ProgressForPhase is the fixed phase→progress lookup. Unknown phases map to 0.
func ProgressForPhase(p Phase) int {
	return phaseProgress[p]
}

// ValidStatus reports whether status belongs to the phase's vocabulary.
func ValidStatus(p Phase, status string) bool {
	for _, s := range PhaseStatuses[p] {
		if s == status {
			return true
		}
	}
	return false
}

// DefaultStatus is the first status of the phase's vocabulary.
func DefaultStatus(p Phase) string {
	if statuses := PhaseStatuses[p]; len(statuses) > 0 {
		return statuses[0]
	}
	return ""
}

// ActionDeadlineUpdated tags the deadline variant of ScheduleEvent.
const ActionDeadlineUpdated = "deadline_updated"

// ScheduleEvent is one append-only history record. Phase updates carry
// phase/status/progress; deadline updates carry action/deadline.
type ScheduleEvent struct {
	Timestamp string `firestore:"timestamp" json:"timestamp"`
	Phase     Phase  `firestore:"phase,omitempty" json:"phase,omitempty"`
	Status    string `firestore:"status,omitempty" json:"status,omitempty"`
	Progress  int    `firestore:"progress,omitempty" json:"progress,omitempty"`
	Action    string `firestore:"action,omitempty" json:"action,omitempty"`
	Deadline  string `firestore:"deadline,omitempty" json:"deadline,omitempty"`
	UpdatedBy string `firestore:"updatedBy" json:"updatedBy"`
}

// IsDeadlineUpdate reports whether the event is the deadline variant.
func (e ScheduleEvent) IsDeadlineUpdate() bool {
	return e.Action == ActionDeadlineUpdated
}

// Schedule is the mutable delivery state embedded in a project document.
// History is stored in append order; readers sort by timestamp as needed.
type Schedule struct {
	CurrentPhase  Phase           `firestore:"currentPhase" json:"currentPhase"`
	CurrentStatus string          `firestore:"currentStatus" json:"currentStatus"`
	Progress      int             `firestore:"progress" json:"progress"`
	Deadline      string          `firestore:"deadline,omitempty" json:"deadline,omitempty"`
	History       []ScheduleEvent `firestore:"history" json:"history"`
}

type Project struct {
	ProjectID       string    `firestore:"-" json:"id"`
	Name            string    `firestore:"name,omitempty" json:"name"`
	Client          string    `firestore:"client,omitempty" json:"client,omitempty"`
	Description     string    `firestore:"description,omitempty" json:"description,omitempty"`
	AccessibleUsers []string  `firestore:"accessibleUsers,omitempty" json:"accessibleUsers,omitempty"`
	Schedule        *Schedule `firestore:"schedule,omitempty" json:"schedule,omitempty"`
}

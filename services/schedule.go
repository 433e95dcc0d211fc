package services

import (
	"context"
	"errors"
	"sort"
	"time"

	"go.uber.org/zap"

	"webanalytics/model"
)

// Event timestamps carry milliseconds at fixed width so that repeated writes
// inside the same second stay distinguishable and string order matches
// chronological order.
const eventTimeLayout = "2006-01-02T15:04:05.000Z07:00"

var (
	ErrProjectNotFound = errors.New("project not found")
	ErrUnauthorized    = errors.New("actor is not authorized")
	ErrInvalidPhase    = errors.New("unknown phase")
	ErrInvalidDeadline = errors.New("deadline must be YYYY-MM-DD or empty")
)

// Actor identifies the operator performing a mutation. Mutations fail closed
// when the role is anything but admin.
type Actor struct {
	Email string
	Role  string
}

func (a Actor) authorized() bool {
	return a.Role == "admin"
}

// ScheduleMutation is the set of schedule fields one operation writes. Nil
// fields are left untouched. A non-nil Deadline pointing at "" clears the
// deadline.
type ScheduleMutation struct {
	Phase    *model.Phase
	Status   *string
	Progress *int
	Deadline *string
}

// ScheduleRepository persists project schedules. AppendHistoryAndUpdate must
// apply the field mutation and the history append as one write.
type ScheduleRepository interface {
	GetProject(ctx context.Context, projectID string) (*model.Project, error)
	ListProjects(ctx context.Context) ([]model.Project, error)
	AppendHistoryAndUpdate(ctx context.Context, projectID string, mut ScheduleMutation, event model.ScheduleEvent) error
}

// ScheduleService owns the delivery-phase state machine. Any phase may move to
// any other phase; progress is always derived from phase, never set directly.
type ScheduleService struct {
	repo   ScheduleRepository
	logger *zap.Logger
	now    func() time.Time
}

func NewScheduleService(repo ScheduleRepository, logger *zap.Logger) *ScheduleService {
	return &ScheduleService{repo: repo, logger: logger, now: time.Now}
}

func (s *ScheduleService) GetProject(ctx context.Context, projectID string) (*model.Project, error) {
	return s.repo.GetProject(ctx, projectID)
}

func (s *ScheduleService) ListProjects(ctx context.Context) ([]model.Project, error) {
	return s.repo.ListProjects(ctx)
}

// SetPhase moves the project to phase, records status, derives progress and
// appends one phase-update history event. A project without a schedule gets
// one synthesized by this first transition.
func (s *ScheduleService) SetPhase(ctx context.Context, projectID string, phase model.Phase, status string, actor Actor) (*model.Schedule, error) {
	if !actor.authorized() {
		return nil, ErrUnauthorized
	}
	if !model.ValidPhase(phase) {
		return nil, ErrInvalidPhase
	}

	project, err := s.repo.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	if status == "" {
		status = model.DefaultStatus(phase)
	} else if !model.ValidStatus(phase, status) {
		// Accepted anyway: the vocabulary is advisory, not enforced on write.
		s.logger.Warn("status outside phase vocabulary",
			zap.String("projectId", projectID),
			zap.String("phase", string(phase)),
			zap.String("status", status))
	}

	progress := model.ProgressForPhase(phase)
	event := model.ScheduleEvent{
		Timestamp: s.now().UTC().Format(eventTimeLayout),
		Phase:     phase,
		Status:    status,
		Progress:  progress,
		UpdatedBy: actor.Email,
	}
	mut := ScheduleMutation{
		Phase:    &phase,
		Status:   &status,
		Progress: &progress,
	}

	if err := s.repo.AppendHistoryAndUpdate(ctx, projectID, mut, event); err != nil {
		return nil, err
	}

	s.logger.Info("project phase updated",
		zap.String("projectId", projectID),
		zap.String("phase", string(phase)),
		zap.String("status", status),
		zap.Int("progress", progress),
		zap.String("actor", actor.Email))

	schedule := project.Schedule
	if schedule == nil {
		schedule = &model.Schedule{}
	}
	schedule.CurrentPhase = phase
	schedule.CurrentStatus = status
	schedule.Progress = progress
	schedule.History = append(schedule.History, event)
	return schedule, nil
}

// SetDeadline updates the deadline and appends one deadline-update history
// event. Phase, status and progress are untouched. An empty deadline clears
// the field.
func (s *ScheduleService) SetDeadline(ctx context.Context, projectID string, deadline string, actor Actor) error {
	if !actor.authorized() {
		return ErrUnauthorized
	}
	if deadline != "" {
		if _, err := time.Parse(dateLayout, deadline); err != nil {
			return ErrInvalidDeadline
		}
	}

	if _, err := s.repo.GetProject(ctx, projectID); err != nil {
		return err
	}

	event := model.ScheduleEvent{
		Timestamp: s.now().UTC().Format(eventTimeLayout),
		Action:    model.ActionDeadlineUpdated,
		Deadline:  deadline,
		UpdatedBy: actor.Email,
	}
	mut := ScheduleMutation{Deadline: &deadline}

	if err := s.repo.AppendHistoryAndUpdate(ctx, projectID, mut, event); err != nil {
		return err
	}

	s.logger.Info("project deadline updated",
		zap.String("projectId", projectID),
		zap.String("deadline", deadline),
		zap.String("actor", actor.Email))
	return nil
}

// DeriveProgress is the fixed phase→progress lookup.
func (s *ScheduleService) DeriveProgress(phase model.Phase) int {
	return model.ProgressForPhase(phase)
}

// History returns the project's history newest first. History is persisted in
// append order, so it is re-sorted by timestamp here. limit <= 0 returns
// everything.
func (s *ScheduleService) History(ctx context.Context, projectID string, limit int) ([]model.ScheduleEvent, error) {
	project, err := s.repo.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project.Schedule == nil {
		return []model.ScheduleEvent{}, nil
	}

	events := make([]model.ScheduleEvent, len(project.Schedule.History))
	copy(events, project.Schedule.History)
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Timestamp > events[j].Timestamp
	})

	if limit > 0 && len(events) > limit {
		events = events[:limit]
	}
	return events, nil
}

package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"webanalytics/model"
)

// memoryScheduleRepo applies mutations the way the Firestore repository does,
// but against an in-process map.
type memoryScheduleRepo struct {
	projects map[string]*model.Project
	applyErr error
}

func newMemoryScheduleRepo(projects ...*model.Project) *memoryScheduleRepo {
	repo := &memoryScheduleRepo{projects: make(map[string]*model.Project)}
	for _, p := range projects {
		repo.projects[p.ProjectID] = p
	}
	return repo
}

func (r *memoryScheduleRepo) GetProject(_ context.Context, projectID string) (*model.Project, error) {
	p, ok := r.projects[projectID]
	if !ok {
		return nil, ErrProjectNotFound
	}
	clone := *p
	if p.Schedule != nil {
		sched := *p.Schedule
		sched.History = append([]model.ScheduleEvent(nil), p.Schedule.History...)
		clone.Schedule = &sched
	}
	return &clone, nil
}

func (r *memoryScheduleRepo) ListProjects(_ context.Context) ([]model.Project, error) {
	out := []model.Project{}
	for _, p := range r.projects {
		out = append(out, *p)
	}
	return out, nil
}

func (r *memoryScheduleRepo) AppendHistoryAndUpdate(_ context.Context, projectID string, mut ScheduleMutation, event model.ScheduleEvent) error {
	if r.applyErr != nil {
		return r.applyErr
	}
	p, ok := r.projects[projectID]
	if !ok {
		return ErrProjectNotFound
	}
	if p.Schedule == nil {
		p.Schedule = &model.Schedule{}
	}
	if mut.Phase != nil {
		p.Schedule.CurrentPhase = *mut.Phase
	}
	if mut.Status != nil {
		p.Schedule.CurrentStatus = *mut.Status
	}
	if mut.Progress != nil {
		p.Schedule.Progress = *mut.Progress
	}
	if mut.Deadline != nil {
		p.Schedule.Deadline = *mut.Deadline
	}
	p.Schedule.History = append(p.Schedule.History, event)
	return nil
}

func newTestScheduleService(repo ScheduleRepository) *ScheduleService {
	svc := NewScheduleService(repo, zap.NewNop())
	svc.now = func() time.Time {
		return time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	}
	return svc
}

var admin = Actor{Email: "alice@example.com", Role: "admin"}

func TestDeriveProgressTable(t *testing.T) {
	svc := newTestScheduleService(newMemoryScheduleRepo())

	want := map[model.Phase]int{
		model.PhaseDesign:      20,
		model.PhaseCoding:      40,
		model.PhaseTesting:     60,
		model.PhasePreparation: 80,
		model.PhaseLive:        100,
	}
	for phase, progress := range want {
		if got := svc.DeriveProgress(phase); got != progress {
			t.Errorf("DeriveProgress(%s) = %d, want %d", phase, got, progress)
		}
	}
}

func TestSetPhaseInitialSchedule(t *testing.T) {
	repo := newMemoryScheduleRepo(&model.Project{ProjectID: "p1", Name: "Corporate site"})
	svc := newTestScheduleService(repo)

	schedule, err := svc.SetPhase(context.Background(), "p1", model.PhaseDesign, "デザイン作成中", admin)
	if err != nil {
		t.Fatalf("SetPhase: %v", err)
	}

	if schedule.CurrentPhase != model.PhaseDesign {
		t.Errorf("phase = %s, want design", schedule.CurrentPhase)
	}
	if schedule.CurrentStatus != "デザイン作成中" {
		t.Errorf("status = %q", schedule.CurrentStatus)
	}
	if schedule.Progress != 20 {
		t.Errorf("progress = %d, want 20", schedule.Progress)
	}
	if len(schedule.History) != 1 {
		t.Fatalf("history length = %d, want 1", len(schedule.History))
	}

	event := schedule.History[0]
	if event.Phase != model.PhaseDesign || event.Status != "デザイン作成中" || event.Progress != 20 {
		t.Errorf("history event = %+v", event)
	}
	if event.UpdatedBy != "alice@example.com" {
		t.Errorf("updatedBy = %q", event.UpdatedBy)
	}
	if event.IsDeadlineUpdate() {
		t.Error("phase event tagged as deadline update")
	}
}

func TestSetPhaseAllowsAnyTransition(t *testing.T) {
	repo := newMemoryScheduleRepo(&model.Project{
		ProjectID: "p1",
		Schedule:  &model.Schedule{CurrentPhase: model.PhaseLive, CurrentStatus: "公開済み", Progress: 100},
	})
	svc := newTestScheduleService(repo)

	// Backwards movement is a free transition, not an error.
	schedule, err := svc.SetPhase(context.Background(), "p1", model.PhaseDesign, "", admin)
	if err != nil {
		t.Fatalf("SetPhase live→design: %v", err)
	}
	if schedule.CurrentPhase != model.PhaseDesign || schedule.Progress != 20 {
		t.Errorf("schedule = %+v", schedule)
	}
	// Empty status defaults to the phase's first vocabulary entry.
	if schedule.CurrentStatus != "デザイン作成中" {
		t.Errorf("default status = %q", schedule.CurrentStatus)
	}
}

func TestSetPhaseRejectsUnknownPhase(t *testing.T) {
	repo := newMemoryScheduleRepo(&model.Project{ProjectID: "p1"})
	svc := newTestScheduleService(repo)

	if _, err := svc.SetPhase(context.Background(), "p1", "shipping", "x", admin); !errors.Is(err, ErrInvalidPhase) {
		t.Errorf("err = %v, want ErrInvalidPhase", err)
	}
	if p, _ := repo.GetProject(context.Background(), "p1"); p.Schedule != nil {
		t.Error("rejected phase still wrote a schedule")
	}
}

func TestSetPhaseAcceptsOutOfVocabularyStatus(t *testing.T) {
	repo := newMemoryScheduleRepo(&model.Project{ProjectID: "p1"})
	svc := newTestScheduleService(repo)

	schedule, err := svc.SetPhase(context.Background(), "p1", model.PhaseCoding, "待機中", admin)
	if err != nil {
		t.Fatalf("SetPhase: %v", err)
	}
	if schedule.CurrentStatus != "待機中" {
		t.Errorf("status = %q, want the caller's status kept", schedule.CurrentStatus)
	}
}

func TestMutationsFailClosedForNonAdmin(t *testing.T) {
	repo := newMemoryScheduleRepo(&model.Project{ProjectID: "p1"})
	svc := newTestScheduleService(repo)
	viewer := Actor{Email: "bob@example.com", Role: "viewer"}

	if _, err := svc.SetPhase(context.Background(), "p1", model.PhaseCoding, "", viewer); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("SetPhase err = %v, want ErrUnauthorized", err)
	}
	if err := svc.SetDeadline(context.Background(), "p1", "2024-07-01", viewer); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("SetDeadline err = %v, want ErrUnauthorized", err)
	}
	if p, _ := repo.GetProject(context.Background(), "p1"); p.Schedule != nil {
		t.Error("unauthorized actor still persisted a change")
	}
}

func TestMutationsOnMissingProject(t *testing.T) {
	svc := newTestScheduleService(newMemoryScheduleRepo())

	if _, err := svc.SetPhase(context.Background(), "ghost", model.PhaseCoding, "", admin); !errors.Is(err, ErrProjectNotFound) {
		t.Errorf("SetPhase err = %v, want ErrProjectNotFound", err)
	}
	if err := svc.SetDeadline(context.Background(), "ghost", "2024-07-01", admin); !errors.Is(err, ErrProjectNotFound) {
		t.Errorf("SetDeadline err = %v, want ErrProjectNotFound", err)
	}
}

func TestSetDeadlineLeavesPhaseAlone(t *testing.T) {
	repo := newMemoryScheduleRepo(&model.Project{
		ProjectID: "p1",
		Schedule: &model.Schedule{
			CurrentPhase:  model.PhaseTesting,
			CurrentStatus: "内部テスト中",
			Progress:      60,
			History:       []model.ScheduleEvent{{Timestamp: "2024-06-01T00:00:00Z", Phase: model.PhaseTesting}},
		},
	})
	svc := newTestScheduleService(repo)

	if err := svc.SetDeadline(context.Background(), "p1", "2024-07-01", Actor{Email: "bob@example.com", Role: "admin"}); err != nil {
		t.Fatalf("SetDeadline: %v", err)
	}

	p, _ := repo.GetProject(context.Background(), "p1")
	if p.Schedule.Deadline != "2024-07-01" {
		t.Errorf("deadline = %q", p.Schedule.Deadline)
	}
	if p.Schedule.CurrentPhase != model.PhaseTesting || p.Schedule.Progress != 60 {
		t.Errorf("phase/progress changed: %+v", p.Schedule)
	}
	if len(p.Schedule.History) != 2 {
		t.Fatalf("history length = %d, want 2", len(p.Schedule.History))
	}

	event := p.Schedule.History[1]
	if !event.IsDeadlineUpdate() || event.Deadline != "2024-07-01" || event.UpdatedBy != "bob@example.com" {
		t.Errorf("deadline event = %+v", event)
	}
}

func TestSetDeadlineClearsWithEmptyString(t *testing.T) {
	repo := newMemoryScheduleRepo(&model.Project{
		ProjectID: "p1",
		Schedule:  &model.Schedule{CurrentPhase: model.PhaseCoding, Progress: 40, Deadline: "2024-07-01"},
	})
	svc := newTestScheduleService(repo)

	if err := svc.SetDeadline(context.Background(), "p1", "", admin); err != nil {
		t.Fatalf("SetDeadline: %v", err)
	}
	p, _ := repo.GetProject(context.Background(), "p1")
	if p.Schedule.Deadline != "" {
		t.Errorf("deadline = %q, want cleared", p.Schedule.Deadline)
	}
}

func TestSetDeadlineRejectsMalformedDate(t *testing.T) {
	repo := newMemoryScheduleRepo(&model.Project{ProjectID: "p1"})
	svc := newTestScheduleService(repo)

	if err := svc.SetDeadline(context.Background(), "p1", "07/01/2024", admin); !errors.Is(err, ErrInvalidDeadline) {
		t.Errorf("err = %v, want ErrInvalidDeadline", err)
	}
}

func TestHistoryIsAppendOnly(t *testing.T) {
	repo := newMemoryScheduleRepo(&model.Project{ProjectID: "p1"})
	svc := newTestScheduleService(repo)
	ctx := context.Background()

	ops := []func() error{
		func() error { _, err := svc.SetPhase(ctx, "p1", model.PhaseDesign, "", admin); return err },
		func() error { _, err := svc.SetPhase(ctx, "p1", model.PhaseCoding, "", admin); return err },
		func() error { return svc.SetDeadline(ctx, "p1", "2024-08-01", admin) },
		func() error { _, err := svc.SetPhase(ctx, "p1", model.PhaseTesting, "", admin); return err },
		func() error { return svc.SetDeadline(ctx, "p1", "", admin) },
	}
	for i, op := range ops {
		if err := op(); err != nil {
			t.Fatalf("op %d: %v", i, err)
		}
		p, _ := repo.GetProject(ctx, "p1")
		if got := len(p.Schedule.History); got != i+1 {
			t.Fatalf("after op %d history length = %d, want %d", i, got, i+1)
		}
	}
}

func TestRepeatedIdenticalUpdatesEachRecorded(t *testing.T) {
	repo := newMemoryScheduleRepo(&model.Project{ProjectID: "p1"})
	svc := newTestScheduleService(repo)
	ctx := context.Background()

	// Same phase, same status, same frozen clock: a double submit. Both
	// writes must land as separate history entries.
	for i := 0; i < 2; i++ {
		if _, err := svc.SetPhase(ctx, "p1", model.PhaseCoding, "コーディング中", admin); err != nil {
			t.Fatalf("SetPhase %d: %v", i, err)
		}
	}

	p, _ := repo.GetProject(ctx, "p1")
	if got := len(p.Schedule.History); got != 2 {
		t.Fatalf("history length = %d, want 2", got)
	}
	if p.Schedule.History[0] != p.Schedule.History[1] {
		t.Errorf("entries differ: %+v vs %+v", p.Schedule.History[0], p.Schedule.History[1])
	}
}

func TestEventTimestampsCarryMilliseconds(t *testing.T) {
	repo := newMemoryScheduleRepo(&model.Project{ProjectID: "p1"})
	svc := newTestScheduleService(repo)
	ctx := context.Background()

	// Two updates inside the same wall-clock second.
	instants := []time.Time{
		time.Date(2024, 6, 15, 12, 0, 0, 250*int(time.Millisecond), time.UTC),
		time.Date(2024, 6, 15, 12, 0, 0, 750*int(time.Millisecond), time.UTC),
	}
	calls := 0
	svc.now = func() time.Time {
		instant := instants[calls]
		calls++
		return instant
	}

	if _, err := svc.SetPhase(ctx, "p1", model.PhaseDesign, "", admin); err != nil {
		t.Fatalf("SetPhase: %v", err)
	}
	if err := svc.SetDeadline(ctx, "p1", "2024-07-01", admin); err != nil {
		t.Fatalf("SetDeadline: %v", err)
	}

	p, _ := repo.GetProject(ctx, "p1")
	first, second := p.Schedule.History[0].Timestamp, p.Schedule.History[1].Timestamp
	if first != "2024-06-15T12:00:00.250Z" {
		t.Errorf("timestamp = %q, want millisecond precision", first)
	}
	if !(first < second) {
		t.Errorf("timestamps not ordered within one second: %q, %q", first, second)
	}
	for _, ts := range []string{first, second} {
		if _, err := time.Parse(eventTimeLayout, ts); err != nil {
			t.Errorf("timestamp %q does not parse: %v", ts, err)
		}
	}
}

func TestHistoryServedNewestFirst(t *testing.T) {
	repo := newMemoryScheduleRepo(&model.Project{
		ProjectID: "p1",
		Schedule: &model.Schedule{
			CurrentPhase: model.PhaseCoding,
			History: []model.ScheduleEvent{
				{Timestamp: "2024-06-01T10:00:00Z", Phase: model.PhaseDesign},
				{Timestamp: "2024-06-03T10:00:00Z", Phase: model.PhaseCoding},
				{Timestamp: "2024-06-02T10:00:00Z", Action: model.ActionDeadlineUpdated, Deadline: "2024-07-01"},
			},
		},
	})
	svc := newTestScheduleService(repo)

	events, err := svc.History(context.Background(), "p1", 2)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("len = %d, want 2", len(events))
	}
	if events[0].Timestamp != "2024-06-03T10:00:00Z" || events[1].Timestamp != "2024-06-02T10:00:00Z" {
		t.Errorf("order = %s, %s", events[0].Timestamp, events[1].Timestamp)
	}
}

func TestSetPhaseRepositoryFailureSurfaces(t *testing.T) {
	repo := newMemoryScheduleRepo(&model.Project{ProjectID: "p1"})
	repo.applyErr = errors.New("firestore unavailable")
	svc := newTestScheduleService(repo)

	if _, err := svc.SetPhase(context.Background(), "p1", model.PhaseDesign, "", admin); err == nil {
		t.Error("expected repository error to surface")
	}
}

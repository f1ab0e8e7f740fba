package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/garyjia/hr-portal/internal/application/dispatcher"
	"github.com/garyjia/hr-portal/internal/application/port"
	"github.com/garyjia/hr-portal/internal/application/service"
	"github.com/garyjia/hr-portal/internal/domain/entity"
	"github.com/garyjia/hr-portal/internal/domain/event"
	"github.com/garyjia/hr-portal/internal/infrastructure/persistence/memory"
)

type nopLogger struct{}

func (nopLogger) Info(msg string, keysAndValues ...interface{})  {}
func (nopLogger) Error(msg string, keysAndValues ...interface{}) {}

type recordingNotifier struct {
	mu        sync.Mutex
	approvers []string
	err       error
}

func (n *recordingNotifier) NotifyApprover(ctx context.Context, msg port.ApproverNotification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.approvers = append(n.approvers, msg.ApproverID)
	return nil
}

func (n *recordingNotifier) NotifyRequester(ctx context.Context, msg port.OutcomeNotification) error {
	return nil
}

func (n *recordingNotifier) sent() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.approvers...)
}

type fixture struct {
	requests *memory.RequestRepository
	events   dispatcher.Dispatcher
	notifier *recordingNotifier
	worker   *ReminderWorker
	clock    time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	requests := memory.NewRequestRepository(store)
	users := memory.NewUserRepository(store)
	history := memory.NewHistoryRepository(store)

	for _, u := range []*entity.User{
		{ID: "manager1", Username: "sophie.martin", Email: "sophie.martin@example.com", Role: entity.RoleManager, IsActive: true},
		{ID: "hr1", Username: "thomas.leroy", Email: "thomas.leroy@example.com", Role: entity.RoleHR, IsActive: true},
	} {
		require.NoError(t, users.Create(ctx, u))
	}

	f := &fixture{
		requests: requests,
		events:   dispatcher.NewDispatcher(),
		notifier: &recordingNotifier{},
		clock:    time.Date(2024, 10, 1, 9, 0, 0, 0, time.UTC),
	}
	service.NewNotificationService(requests, users, f.notifier, nopLogger{}).Register(f.events)
	f.worker = NewReminderWorker(service.NewQueryService(requests, history), f.events,
		ReminderConfig{Interval: time.Hour, After: 24 * time.Hour}, zap.NewNop())
	f.worker.now = func() time.Time { return f.clock }
	return f
}

func (f *fixture) insert(t *testing.T, id string, status entity.RequestStatus, current int, updated time.Time) {
	t.Helper()
	req := &entity.WorkflowRequest{
		ID:          id,
		Type:        entity.RequestTypeLeave,
		Title:       "Request " + id,
		RequesterID: "user1",
		Status:      status,
		CurrentStep: current,
		UpdatedAt:   updated,
		Steps: []*entity.WorkflowStep{
			{ID: entity.StepID(id, 1), Name: "Manager", ApproverID: "manager1", Status: entity.StepStatusPending, Order: 1},
			{ID: entity.StepID(id, 2), Name: "RH", ApproverID: "hr1", Status: entity.StepStatusPending, Order: 2},
		},
	}
	require.NoError(t, f.requests.Insert(context.Background(), req))
}

func TestReminderWorker_RunOnce(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	f.insert(t, "stale", entity.RequestStatusSubmitted, 1, f.clock.Add(-25*time.Hour))
	f.insert(t, "fresh", entity.RequestStatusSubmitted, 1, f.clock.Add(-time.Hour))
	f.insert(t, "second", entity.RequestStatusInProgress, 2, f.clock.Add(-48*time.Hour))
	f.insert(t, "draft", entity.RequestStatusDraft, 0, f.clock.Add(-72*time.Hour))

	sent, err := f.worker.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, sent)
	assert.ElementsMatch(t, []string{"manager1", "hr1"}, f.notifier.sent())

	// no repeat before the delay elapses again
	f.clock = f.clock.Add(time.Hour)
	sent, err = f.worker.RunOnce(ctx)
	require.NoError(t, err)
	assert.Zero(t, sent)

	f.clock = f.clock.Add(24 * time.Hour)
	sent, err = f.worker.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, sent, "fresh is now stale too")
}

func TestReminderWorker_NotifierFailureIsRetried(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.insert(t, "stale", entity.RequestStatusSubmitted, 1, f.clock.Add(-25*time.Hour))

	f.notifier.err = errors.New("lark unavailable")
	sent, err := f.worker.RunOnce(ctx)
	require.NoError(t, err)
	assert.Zero(t, sent)

	f.notifier.err = nil
	sent, err = f.worker.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
}

func TestReminderWorker_RequiresSubscriber(t *testing.T) {
	f := newFixture(t)
	f.insert(t, "stale", entity.RequestStatusSubmitted, 1, f.clock.Add(-25*time.Hour))
	f.events.Unsubscribe(event.TypeStepReminderDue, service.HandlerRemindApprover)

	_, err := f.worker.RunOnce(context.Background())
	assert.ErrorContains(t, err, string(event.TypeStepReminderDue))
	assert.Empty(t, f.notifier.sent())
}

func TestReminderWorker_StartStop(t *testing.T) {
	f := newFixture(t)

	bad := NewReminderWorker(nil, nil, ReminderConfig{}, zap.NewNop())
	assert.Error(t, bad.Start(context.Background()))

	require.NoError(t, f.worker.Start(context.Background()))
	assert.Error(t, f.worker.Start(context.Background()), "already running")
	require.NoError(t, f.worker.Stop())
	require.NoError(t, f.worker.Stop(), "stop is idempotent")
}

type stubWorker struct {
	name     string
	startErr error
	started  bool
	stopped  bool
}

func (w *stubWorker) Start(ctx context.Context) error {
	if w.startErr != nil {
		return w.startErr
	}
	w.started = true
	return nil
}

func (w *stubWorker) Stop() error {
	w.stopped = true
	return nil
}

func (w *stubWorker) Name() string { return w.name }

func TestWorkerManager(t *testing.T) {
	m := NewWorkerManager(zap.NewNop())
	ok := &stubWorker{name: "ok"}
	broken := &stubWorker{name: "broken", startErr: errors.New("boom")}
	m.Register(ok)
	m.Register(broken)
	assert.Equal(t, 2, m.GetWorkerCount())

	require.NoError(t, m.StartAll(context.Background()))
	assert.True(t, m.IsRunning())
	assert.True(t, ok.started)
	assert.Equal(t, []string{"ok"}, m.Running())
	assert.Error(t, m.StartAll(context.Background()))

	require.NoError(t, m.StopAll())
	assert.False(t, m.IsRunning())
	assert.True(t, ok.stopped)
	assert.False(t, broken.stopped, "workers that never started are not stopped")
	assert.Empty(t, m.Running())
	assert.NoError(t, m.StopAll())
}

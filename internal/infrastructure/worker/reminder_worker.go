package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/garyjia/hr-portal/internal/application/dispatcher"
	"github.com/garyjia/hr-portal/internal/application/service"
	"github.com/garyjia/hr-portal/internal/domain/event"
)

// ReminderConfig holds reminder worker settings
type ReminderConfig struct {
	// Interval between scans
	Interval time.Duration

	// After is how long a step may wait before its approver is reminded,
	// and again between two reminders of the same step
	After time.Duration
}

// ReminderWorker periodically publishes step.reminder_due for steps that
// have been waiting longer than the configured delay. Delivery is done by the
// event's subscribers, run synchronously so failures are retried next scan.
type ReminderWorker struct {
	queries service.QueryService
	events  dispatcher.Dispatcher
	logger  *zap.Logger
	config        ReminderConfig
	now           func() time.Time

	// last reminder per step id
	scanMu   sync.Mutex
	reminded map[string]time.Time

	mu        sync.Mutex
	isRunning bool
	cancel    context.CancelFunc
	done      chan struct{}
}

// NewReminderWorker creates a new reminder worker
func NewReminderWorker(
	queries service.QueryService,
	events dispatcher.Dispatcher,
	config ReminderConfig,
	logger *zap.Logger,
) *ReminderWorker {
	return &ReminderWorker{
		queries:  queries,
		events:   events,
		logger:   logger,
		config:   config,
		now:      time.Now,
		reminded: make(map[string]time.Time),
	}
}

// Name returns the worker name for identification
func (w *ReminderWorker) Name() string {
	return "ReminderWorker"
}

// Start launches the scan loop
func (w *ReminderWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.isRunning {
		return fmt.Errorf("reminder worker is already running")
	}
	if w.config.Interval <= 0 || w.config.After <= 0 {
		return fmt.Errorf("reminder interval and delay must be positive")
	}

	loopCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.done = make(chan struct{})
	w.isRunning = true

	w.logger.Info("ReminderWorker started",
		zap.Duration("interval", w.config.Interval),
		zap.Duration("after", w.config.After))

	go w.loop(loopCtx, w.done)
	return nil
}

// Stop cancels the loop and waits for the current scan to finish
func (w *ReminderWorker) Stop() error {
	w.mu.Lock()
	if !w.isRunning {
		w.mu.Unlock()
		return nil
	}
	w.isRunning = false
	w.cancel()
	done := w.done
	w.mu.Unlock()

	<-done
	w.logger.Info("ReminderWorker stopped")
	return nil
}

func (w *ReminderWorker) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(w.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := w.RunOnce(ctx); err != nil {
				w.logger.Error("Reminder scan failed", zap.Error(err))
			}
		}
	}
}

// RunOnce scans pending requests and reminds the approvers of stale steps.
// It returns the number of reminders sent.
func (w *ReminderWorker) RunOnce(ctx context.Context) (int, error) {
	w.scanMu.Lock()
	defer w.scanMu.Unlock()

	if len(w.events.Handlers(event.TypeStepReminderDue)) == 0 {
		return 0, fmt.Errorf("no handler subscribed to %s", event.TypeStepReminderDue)
	}

	pending, err := w.queries.ByStatus(ctx, service.FilterPending)
	if err != nil {
		return 0, fmt.Errorf("list pending requests: %w", err)
	}

	now := w.now()
	active := make(map[string]bool, len(pending))
	sent := 0

	for _, req := range pending {
		step := req.ActiveStep()
		if step == nil {
			continue
		}
		active[step.ID] = true

		since := req.UpdatedAt
		if last, ok := w.reminded[step.ID]; ok && last.After(since) {
			since = last
		}
		if now.Sub(since) < w.config.After {
			continue
		}

		due := event.NewEventWithCorrelation(event.TypeStepReminderDue, req.ID, "", map[string]interface{}{
			event.KeyStepID:     step.ID,
			event.KeyStepName:   step.Name,
			event.KeyApproverID: step.ApproverID,
		}, req.ID)
		if err := w.events.Dispatch(ctx, due); err != nil {
			w.logger.Warn("Failed to remind approver",
				zap.String("request_id", req.ID),
				zap.String("step_id", step.ID),
				zap.Error(err))
			continue
		}
		w.reminded[step.ID] = now
		sent++
	}

	// forget steps that are no longer waiting
	for id := range w.reminded {
		if !active[id] {
			delete(w.reminded, id)
		}
	}

	if sent > 0 {
		w.logger.Info("Reminders sent", zap.Int("count", sent), zap.Int("pending", len(pending)))
	}
	return sent, nil
}

var _ Worker = (*ReminderWorker)(nil)

package workflow

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/garyjia/hr-portal/internal/application/dispatcher"
	"github.com/garyjia/hr-portal/internal/application/port"
	"github.com/garyjia/hr-portal/internal/domain/entity"
	"github.com/garyjia/hr-portal/internal/domain/event"
	domainwf "github.com/garyjia/hr-portal/internal/domain/workflow"
)

// Logger interface for minimal logging dependency
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

// engineImpl is the concrete implementation of Engine
type engineImpl struct {
	requests  port.RequestRepository
	templates port.TemplateRepository
	users     port.UserRepository
	history   port.HistoryRepository
	txManager port.TransactionManager

	dispatcher dispatcher.Dispatcher
	metrics    *Metrics
	logger     Logger
	now        func() time.Time
	newID      func() string
}

// EngineOption configures the workflow engine
type EngineOption func(*engineImpl)

// WithDispatcher sets the event dispatcher for emitting events
func WithDispatcher(d dispatcher.Dispatcher) EngineOption {
	return func(e *engineImpl) {
		e.dispatcher = d
	}
}

// WithMetrics records committed transitions
func WithMetrics(m *Metrics) EngineOption {
	return func(e *engineImpl) {
		e.metrics = m
	}
}

// WithLogger sets the engine logger
func WithLogger(l Logger) EngineOption {
	return func(e *engineImpl) {
		e.logger = l
	}
}

// WithClock overrides the time source
func WithClock(now func() time.Time) EngineOption {
	return func(e *engineImpl) {
		e.now = now
	}
}

// WithIDGenerator overrides request id generation
func WithIDGenerator(newID func() string) EngineOption {
	return func(e *engineImpl) {
		e.newID = newID
	}
}

// NewEngine creates a new workflow engine
func NewEngine(
	requests port.RequestRepository,
	templates port.TemplateRepository,
	users port.UserRepository,
	history port.HistoryRepository,
	txManager port.TransactionManager,
	opts ...EngineOption,
) Engine {
	e := &engineImpl{
		requests:  requests,
		templates: templates,
		users:     users,
		history:   history,
		txManager: txManager,
		logger:    nopLogger{},
		now:       time.Now,
		newID:     uuid.NewString,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// CreateRequest validates the draft and stores it. With submitImmediately
// the approval chain is materialized in the same transaction.
func (e *engineImpl) CreateRequest(ctx context.Context, draft Draft, submitImmediately bool) (*entity.WorkflowRequest, error) {
	if err := validateDraft(draft, submitImmediately); err != nil {
		return nil, err
	}
	if !draft.Type.IsValid() {
		return nil, fmt.Errorf("%w: no validator chain configured for workflow type %s", domainwf.ErrConfiguration, draft.Type)
	}

	var (
		created *entity.WorkflowRequest
		events  []*event.Event
	)
	err := e.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		requester, err := e.requester(txCtx, draft.RequesterID)
		if err != nil {
			return err
		}

		now := e.now()
		req := &entity.WorkflowRequest{
			ID:            e.newID(),
			RequesterID:   requester.ID,
			RequesterName: requester.FullName(),
			Status:        entity.RequestStatusDraft,
			Steps:         []*entity.WorkflowStep{},
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		applyDraft(req, draft)

		events = append(events, e.newEvent(event.TypeRequestCreated, req, requester.ID, nil))

		if submitImmediately {
			sm := BuildRequestStateMachine(req)
			if err := sm.Fire(txCtx, domainwf.TriggerSubmit); err != nil {
				return err
			}
			if err := e.materializeSteps(txCtx, req); err != nil {
				return err
			}
			req.Status = entity.RequestStatus(sm.State())
			events = append(events, e.submissionEvents(req)...)
		}

		if err := e.requests.Insert(txCtx, req); err != nil {
			return fmt.Errorf("insert request: %w", err)
		}
		if err := e.record(txCtx, req, "", entity.ActionCreate, requester.ID, "", ""); err != nil {
			return err
		}

		created = req
		return nil
	})
	if err != nil {
		e.logger.Error("Failed to create request", "type", draft.Type, "requester_id", draft.RequesterID, "error", err)
		return nil, err
	}

	e.logger.Info("Request created", "request_id", created.ID, "type", created.Type, "status", created.Status)
	e.metrics.observe(created.Type, entity.ActionCreate)
	e.emit(ctx, events)
	return created.Clone(), nil
}

// UpdateDraft applies direct field edits while the request is a draft
func (e *engineImpl) UpdateDraft(ctx context.Context, requestID string, draft Draft) (*entity.WorkflowRequest, error) {
	var updated *entity.WorkflowRequest
	err := e.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		req, err := e.requests.Get(txCtx, requestID)
		if err != nil {
			return err
		}
		if req.Status != entity.RequestStatusDraft {
			return fmt.Errorf("%w: request %s is %s, only drafts can be edited",
				domainwf.ErrInvalidTransition, req.ID, req.Status)
		}

		// the requester never changes
		draft.RequesterID = req.RequesterID
		if err := validateDraft(draft, false); err != nil {
			return err
		}
		if !draft.Type.IsValid() {
			return fmt.Errorf("%w: no validator chain configured for workflow type %s", domainwf.ErrConfiguration, draft.Type)
		}

		applyDraft(req, draft)
		req.UpdatedAt = e.now()

		if err := e.commit(txCtx, req, req.Status, entity.ActionUpdateDraft, req.RequesterID, "", ""); err != nil {
			return err
		}
		updated = req
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.metrics.observe(updated.Type, entity.ActionUpdateDraft)
	e.emit(ctx, []*event.Event{e.newEvent(event.TypeRequestUpdated, updated, updated.RequesterID, nil)})
	return updated.Clone(), nil
}

// SubmitRequest moves a draft to submitted with a freshly materialized chain
func (e *engineImpl) SubmitRequest(ctx context.Context, requestID string) (*entity.WorkflowRequest, error) {
	var (
		submitted *entity.WorkflowRequest
		events    []*event.Event
	)
	err := e.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		req, err := e.requests.Get(txCtx, requestID)
		if err != nil {
			return err
		}

		previous := req.Status
		sm := BuildRequestStateMachine(req)
		if err := sm.Fire(txCtx, domainwf.TriggerSubmit); err != nil {
			return fmt.Errorf("submit request %s: %w", req.ID, err)
		}
		if err := validateRequest(req); err != nil {
			return err
		}
		if !req.Type.IsValid() {
			return fmt.Errorf("%w: no validator chain configured for workflow type %s", domainwf.ErrConfiguration, req.Type)
		}
		if err := e.materializeSteps(txCtx, req); err != nil {
			return err
		}
		req.Status = entity.RequestStatus(sm.State())
		req.UpdatedAt = e.now()

		if err := e.commit(txCtx, req, previous, entity.ActionSubmit, req.RequesterID, "", ""); err != nil {
			return err
		}
		submitted = req
		events = e.submissionEvents(req)
		return nil
	})
	if err != nil {
		e.logger.Error("Failed to submit request", "request_id", requestID, "error", err)
		return nil, err
	}

	e.logger.Info("Request submitted", "request_id", submitted.ID, "steps", len(submitted.Steps))
	e.metrics.observe(submitted.Type, entity.ActionSubmit)
	e.emit(ctx, events)
	return submitted.Clone(), nil
}

// ApproveStep approves the current step. The request moves on to the step
// with the next greater order, or becomes approved when none is left.
func (e *engineImpl) ApproveStep(ctx context.Context, requestID, stepID, actorID, comment string) (*entity.WorkflowRequest, error) {
	var (
		result *entity.WorkflowRequest
		events []*event.Event
	)
	err := e.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		req, step, err := e.actionable(txCtx, requestID, stepID, actorID, domainwf.TriggerApprove)
		if err != nil {
			return err
		}

		previous := req.Status
		next := req.NextStepAfter(step.Order)

		sm := BuildRequestStateMachine(req)
		if err := sm.Fire(txCtx, domainwf.TriggerApprove); err != nil {
			return err
		}

		now := e.now()
		step.Status = entity.StepStatusApproved
		step.ProcessedAt = &now
		step.Comment = strings.TrimSpace(comment)
		if next != nil {
			req.CurrentStep = next.Order
		}
		req.Status = entity.RequestStatus(sm.State())
		req.UpdatedAt = now

		if err := e.commit(txCtx, req, previous, entity.ActionApprove, actorID, step.ID, step.Comment); err != nil {
			return err
		}

		events = append(events, e.newEvent(event.TypeStepApproved, req, actorID, stepPayload(step)))
		if next != nil {
			events = append(events, e.newEvent(event.TypeStepAssigned, req, actorID, stepPayload(next)))
		} else {
			events = append(events, e.newEvent(event.TypeRequestApproved, req, actorID, map[string]interface{}{
				event.KeyComment: step.Comment,
			}))
		}
		result = req
		return nil
	})
	if err != nil {
		e.logger.Error("Failed to approve step", "request_id", requestID, "step_id", stepID, "actor_id", actorID, "error", err)
		return nil, err
	}

	e.logger.Info("Step approved", "request_id", result.ID, "step_id", stepID, "status", result.Status, "current_step", result.CurrentStep)
	e.metrics.observe(result.Type, entity.ActionApprove)
	e.emit(ctx, events)
	return result.Clone(), nil
}

// RejectStep rejects the current step with a mandatory comment. The request
// becomes rejected and the pointer stays on the rejected step.
func (e *engineImpl) RejectStep(ctx context.Context, requestID, stepID, actorID, comment string) (*entity.WorkflowRequest, error) {
	var result *entity.WorkflowRequest
	err := e.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		req, step, err := e.actionable(txCtx, requestID, stepID, actorID, domainwf.TriggerReject)
		if err != nil {
			return err
		}
		comment = strings.TrimSpace(comment)
		if comment == "" {
			return fmt.Errorf("%w: a comment is required to reject", domainwf.ErrValidation)
		}

		previous := req.Status
		sm := BuildRequestStateMachine(req)
		if err := sm.Fire(txCtx, domainwf.TriggerReject); err != nil {
			return err
		}

		now := e.now()
		step.Status = entity.StepStatusRejected
		step.ProcessedAt = &now
		step.Comment = comment
		req.Status = entity.RequestStatus(sm.State())
		req.UpdatedAt = now

		if err := e.commit(txCtx, req, previous, entity.ActionReject, actorID, step.ID, comment); err != nil {
			return err
		}
		result = req
		return nil
	})
	if err != nil {
		e.logger.Error("Failed to reject step", "request_id", requestID, "step_id", stepID, "actor_id", actorID, "error", err)
		return nil, err
	}

	e.logger.Info("Step rejected", "request_id", result.ID, "step_id", stepID)
	e.metrics.observe(result.Type, entity.ActionReject)
	e.emit(ctx, []*event.Event{e.newEvent(event.TypeRequestRejected, result, actorID, map[string]interface{}{
		event.KeyStepID:  stepID,
		event.KeyComment: comment,
	})})
	return result.Clone(), nil
}

// actionable loads a request and the step an approver wants to act on. The
// request status must accept the trigger, the step must be the pending step
// under the current pointer, and a non-empty actor must be its approver.
func (e *engineImpl) actionable(ctx context.Context, requestID, stepID, actorID string, trigger domainwf.Trigger) (*entity.WorkflowRequest, *entity.WorkflowStep, error) {
	req, err := e.requests.Get(ctx, requestID)
	if err != nil {
		return nil, nil, err
	}
	if !BuildRequestStateMachine(req).CanFire(trigger) {
		return nil, nil, fmt.Errorf("%w: request %s is %s", domainwf.ErrInvalidTransition, req.ID, req.Status)
	}

	step := req.StepByID(stepID)
	switch {
	case step == nil:
		return nil, nil, fmt.Errorf("%w: request %s has no step %s", domainwf.ErrInvalidTransition, req.ID, stepID)
	case step.Status != entity.StepStatusPending:
		return nil, nil, fmt.Errorf("%w: step %s is already %s", domainwf.ErrInvalidTransition, stepID, step.Status)
	case step.Order != req.CurrentStep:
		return nil, nil, fmt.Errorf("%w: step %s is not the current step", domainwf.ErrInvalidTransition, stepID)
	case actorID != "" && actorID != step.ApproverID:
		return nil, nil, fmt.Errorf("%w: step %s is assigned to %s", domainwf.ErrInvalidTransition, stepID, step.ApproverID)
	}
	return req, step, nil
}

// materializeSteps copies the current templates of the request type into a
// private step chain sorted by order.
func (e *engineImpl) materializeSteps(ctx context.Context, req *entity.WorkflowRequest) error {
	tpls, err := e.templates.ListByType(ctx, req.Type)
	if err != nil {
		return fmt.Errorf("list templates: %w", err)
	}
	if len(tpls) == 0 {
		return fmt.Errorf("%w: no validator templates for workflow type %s", domainwf.ErrConfiguration, req.Type)
	}

	sorted := append([]*entity.WorkflowStepTemplate(nil), tpls...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Order < sorted[j].Order })

	steps := make([]*entity.WorkflowStep, 0, len(sorted))
	for i, tpl := range sorted {
		if tpl.Order < 1 {
			return fmt.Errorf("%w: template %s has order %d", domainwf.ErrConfiguration, tpl.ID, tpl.Order)
		}
		if i > 0 && sorted[i-1].Order == tpl.Order {
			return fmt.Errorf("%w: workflow type %s has two steps at order %d", domainwf.ErrConfiguration, req.Type, tpl.Order)
		}
		steps = append(steps, &entity.WorkflowStep{
			ID:           entity.StepID(req.ID, tpl.Order),
			Name:         tpl.StepName,
			ApproverID:   tpl.ApproverID,
			ApproverName: tpl.ApproverName,
			Status:       entity.StepStatusPending,
			Order:        tpl.Order,
		})
	}

	req.Steps = steps
	req.CurrentStep = steps[0].Order
	return nil
}

// commit replaces the stored request and appends the audit record
func (e *engineImpl) commit(ctx context.Context, req *entity.WorkflowRequest, previous entity.RequestStatus, action, actorID, stepID, comment string) error {
	if err := e.requests.Replace(ctx, req, req.Version); err != nil {
		return fmt.Errorf("replace request: %w", err)
	}
	return e.record(ctx, req, previous, action, actorID, stepID, comment)
}

func (e *engineImpl) record(ctx context.Context, req *entity.WorkflowRequest, previous entity.RequestStatus, action, actorID, stepID, comment string) error {
	history := &entity.RequestHistory{
		RequestID:      req.ID,
		ActorID:        actorID,
		PreviousStatus: string(previous),
		NewStatus:      string(req.Status),
		Action:         action,
		StepID:         stepID,
		Comment:        comment,
		Timestamp:      req.UpdatedAt,
	}
	if err := e.history.Create(ctx, history); err != nil {
		return fmt.Errorf("create history record: %w", err)
	}
	return nil
}

func (e *engineImpl) requester(ctx context.Context, id string) (*entity.User, error) {
	user, err := e.users.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: unknown requester %s", domainwf.ErrValidation, id)
	}
	return user, nil
}

func (e *engineImpl) submissionEvents(req *entity.WorkflowRequest) []*event.Event {
	evts := []*event.Event{e.newEvent(event.TypeRequestSubmitted, req, req.RequesterID, nil)}
	if first := req.StepByOrder(req.CurrentStep); first != nil {
		evts = append(evts, e.newEvent(event.TypeStepAssigned, req, req.RequesterID, stepPayload(first)))
	}
	return evts
}

func (e *engineImpl) newEvent(t event.Type, req *entity.WorkflowRequest, actorID string, extra map[string]interface{}) *event.Event {
	payload := map[string]interface{}{
		event.KeyRequestType: string(req.Type),
		event.KeyTitle:       req.Title,
		event.KeyRequesterID: req.RequesterID,
		event.KeyNewStatus:   string(req.Status),
	}
	for k, v := range extra {
		payload[k] = v
	}
	evt := event.NewEventWithCorrelation(t, req.ID, actorID, payload, req.ID)
	evt.Timestamp = req.UpdatedAt
	return evt
}

// emit dispatches events after commit; handlers cannot affect the outcome
func (e *engineImpl) emit(ctx context.Context, events []*event.Event) {
	if e.dispatcher == nil {
		return
	}
	for _, evt := range events {
		e.dispatcher.DispatchAsync(ctx, evt)
	}
}

func stepPayload(step *entity.WorkflowStep) map[string]interface{} {
	return map[string]interface{}{
		event.KeyStepID:       step.ID,
		event.KeyStepName:     step.Name,
		event.KeyApproverID:   step.ApproverID,
		event.KeyApproverName: step.ApproverName,
	}
}

// applyDraft copies the authored fields and derives the duration label
func applyDraft(req *entity.WorkflowRequest, d Draft) {
	req.Type = d.Type
	req.Title = strings.TrimSpace(d.Title)
	req.Description = strings.TrimSpace(d.Description)
	req.StartDate = d.StartDate
	req.EndDate = d.EndDate
	req.DurationLabel = ""
	if d.StartDate != nil && d.EndDate != nil {
		req.DurationLabel = entity.DurationLabel(*d.StartDate, *d.EndDate)
	}
	req.Metadata = d.Metadata.Normalize(d.Type)
}

var _ Engine = (*engineImpl)(nil)

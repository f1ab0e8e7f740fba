package service

import (
	"context"
	"fmt"

	"github.com/garyjia/hr-portal/internal/application/dispatcher"
	"github.com/garyjia/hr-portal/internal/application/port"
	"github.com/garyjia/hr-portal/internal/domain/entity"
	"github.com/garyjia/hr-portal/internal/domain/event"
	domainwf "github.com/garyjia/hr-portal/internal/domain/workflow"
)

// NotificationService turns workflow events into messages for people
type NotificationService interface {
	// Register subscribes the service to the events it handles
	Register(d dispatcher.Dispatcher)

	// Unregister removes the subscriptions made by Register
	Unregister(d dispatcher.Dispatcher)

	// NotifyAssigned tells the approver of a newly current step
	NotifyAssigned(ctx context.Context, evt *event.Event) error

	// NotifyOutcome tells the requester their request ended
	NotifyOutcome(ctx context.Context, evt *event.Event) error

	// NotifyReminderDue reminds the approver named by a step.reminder_due
	// event if that step is still the active one
	NotifyReminderDue(ctx context.Context, evt *event.Event) error

	// RemindApprover re-sends the pending notification of the active step
	RemindApprover(ctx context.Context, req *entity.WorkflowRequest) error
}

// Subscription names used with the dispatcher
const (
	HandlerNotifyApprover  = "notify-approver"
	HandlerNotifyRequester = "notify-requester"
	HandlerRemindApprover  = "remind-approver"
)

type notificationServiceImpl struct {
	requestRepo port.RequestRepository
	userRepo    port.UserRepository
	notifier    port.Notifier
	logger      Logger
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(
	requestRepo port.RequestRepository,
	userRepo port.UserRepository,
	notifier port.Notifier,
	logger Logger,
) NotificationService {
	return &notificationServiceImpl{
		requestRepo: requestRepo,
		userRepo:    userRepo,
		notifier:    notifier,
		logger:      logger,
	}
}

func (s *notificationServiceImpl) Register(d dispatcher.Dispatcher) {
	d.Subscribe(event.TypeStepAssigned, HandlerNotifyApprover, s.NotifyAssigned)
	d.Subscribe(event.TypeRequestApproved, HandlerNotifyRequester, s.NotifyOutcome)
	d.Subscribe(event.TypeRequestRejected, HandlerNotifyRequester, s.NotifyOutcome)
	d.Subscribe(event.TypeStepReminderDue, HandlerRemindApprover, s.NotifyReminderDue)
}

func (s *notificationServiceImpl) Unregister(d dispatcher.Dispatcher) {
	d.Unsubscribe(event.TypeStepAssigned, HandlerNotifyApprover)
	d.Unsubscribe(event.TypeRequestApproved, HandlerNotifyRequester)
	d.Unsubscribe(event.TypeRequestRejected, HandlerNotifyRequester)
	d.Unsubscribe(event.TypeStepReminderDue, HandlerRemindApprover)
}

func (s *notificationServiceImpl) NotifyAssigned(ctx context.Context, evt *event.Event) error {
	approverID := evt.GetPayloadString(event.KeyApproverID)
	if approverID == "" {
		return fmt.Errorf("event %s has no approver", evt.ID)
	}

	req, err := s.requestRepo.Get(ctx, evt.RequestID)
	if err != nil {
		return fmt.Errorf("get request: %w", err)
	}
	return s.notifyApprover(ctx, req, approverID, evt.GetPayloadString(event.KeyStepName))
}

func (s *notificationServiceImpl) NotifyReminderDue(ctx context.Context, evt *event.Event) error {
	req, err := s.requestRepo.Get(ctx, evt.RequestID)
	if err != nil {
		return fmt.Errorf("get request: %w", err)
	}
	stepID := evt.GetPayloadString(event.KeyStepID)
	if step := req.ActiveStep(); step == nil || step.ID != stepID {
		return fmt.Errorf("%w: step %s of request %s is no longer waiting", domainwf.ErrInvalidTransition, stepID, req.ID)
	}
	return s.RemindApprover(ctx, req)
}

func (s *notificationServiceImpl) RemindApprover(ctx context.Context, req *entity.WorkflowRequest) error {
	step := req.ActiveStep()
	if step == nil {
		return fmt.Errorf("%w: request %s is not waiting on an approver", domainwf.ErrInvalidTransition, req.ID)
	}
	return s.notifyApprover(ctx, req, step.ApproverID, step.Name)
}

func (s *notificationServiceImpl) notifyApprover(ctx context.Context, req *entity.WorkflowRequest, approverID, stepName string) error {
	approver, err := s.userRepo.GetByID(ctx, approverID)
	if err != nil {
		return fmt.Errorf("get approver: %w", err)
	}

	n := port.ApproverNotification{
		RequestID:     req.ID,
		RequestType:   string(req.Type),
		Title:         req.Title,
		RequesterName: req.RequesterName,
		StepName:      stepName,
		ApproverID:    approver.ID,
		ApproverEmail: approver.Email,
	}
	if err := s.notifier.NotifyApprover(ctx, n); err != nil {
		s.logger.Error("Failed to notify approver", "request_id", req.ID, "approver_id", approverID, "error", err)
		return fmt.Errorf("notify approver: %w", err)
	}

	s.logger.Info("Approver notified", "request_id", req.ID, "approver_id", approverID, "step", n.StepName)
	return nil
}

func (s *notificationServiceImpl) NotifyOutcome(ctx context.Context, evt *event.Event) error {
	requesterID := evt.GetPayloadString(event.KeyRequesterID)
	requester, err := s.userRepo.GetByID(ctx, requesterID)
	if err != nil {
		return fmt.Errorf("get requester: %w", err)
	}

	n := port.OutcomeNotification{
		RequestID:      evt.RequestID,
		Title:          evt.GetPayloadString(event.KeyTitle),
		Status:         evt.GetPayloadString(event.KeyNewStatus),
		Comment:        evt.GetPayloadString(event.KeyComment),
		RequesterID:    requester.ID,
		RequesterEmail: requester.Email,
	}
	if err := s.notifier.NotifyRequester(ctx, n); err != nil {
		s.logger.Error("Failed to notify requester", "request_id", evt.RequestID, "requester_id", requesterID, "error", err)
		return fmt.Errorf("notify requester: %w", err)
	}

	s.logger.Info("Requester notified", "request_id", evt.RequestID, "status", n.Status)
	return nil
}

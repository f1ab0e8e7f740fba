package port

import (
	"context"
	"io"

	"github.com/garyjia/hr-portal/internal/domain/entity"
)

// ApproverNotification tells an approver that a request awaits their decision
type ApproverNotification struct {
	RequestID     string
	RequestType   string
	Title         string
	RequesterName string
	StepName      string
	ApproverID    string
	ApproverEmail string
}

// OutcomeNotification tells a requester how their request ended
type OutcomeNotification struct {
	RequestID      string
	Title          string
	Status         string
	Comment        string
	RequesterID    string
	RequesterEmail string
}

// Notifier delivers workflow notifications to people
type Notifier interface {
	NotifyApprover(ctx context.Context, n ApproverNotification) error
	NotifyRequester(ctx context.Context, n OutcomeNotification) error
}

// RequestExporter renders requests into a report document
type RequestExporter interface {
	Export(ctx context.Context, w io.Writer, requests []*entity.WorkflowRequest) error

	// ContentType is the MIME type of the produced document
	ContentType() string
}

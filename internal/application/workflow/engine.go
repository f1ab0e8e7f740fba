package workflow

import (
	"context"
	"time"

	"github.com/garyjia/hr-portal/internal/domain/entity"
)

// Engine drives HR requests through their approval chains. Every method
// returns a copy of the committed request.
type Engine interface {
	// CreateRequest stores a new request, as a draft or already submitted
	CreateRequest(ctx context.Context, draft Draft, submitImmediately bool) (*entity.WorkflowRequest, error)

	// UpdateDraft edits the fields of a request still in draft
	UpdateDraft(ctx context.Context, requestID string, draft Draft) (*entity.WorkflowRequest, error)

	// SubmitRequest materializes the approval chain of a draft
	SubmitRequest(ctx context.Context, requestID string) (*entity.WorkflowRequest, error)

	// ApproveStep approves the current step and advances the chain
	ApproveStep(ctx context.Context, requestID, stepID, actorID, comment string) (*entity.WorkflowRequest, error)

	// RejectStep rejects the current step and ends the request
	RejectStep(ctx context.Context, requestID, stepID, actorID, comment string) (*entity.WorkflowRequest, error)
}

// Draft carries the requester-authored fields of a request
type Draft struct {
	Type        entity.RequestType
	Title       string
	Description string
	RequesterID string
	StartDate   *time.Time
	EndDate     *time.Time
	Metadata    entity.Metadata
}

package port

import (
	"context"

	"github.com/garyjia/hr-portal/internal/domain/entity"
)

// RequestRepository persists workflow requests as whole records.
// Implementations return deep copies and keep insertion order in List.
type RequestRepository interface {
	// Insert stores a new request; the id must not exist yet
	Insert(ctx context.Context, req *entity.WorkflowRequest) error

	// Replace overwrites a request when the stored version equals
	// expectedVersion. On success req.Version is set to expectedVersion+1;
	// otherwise the error wraps workflow.ErrVersionConflict.
	Replace(ctx context.Context, req *entity.WorkflowRequest, expectedVersion int64) error

	// Get returns the request or an error wrapping workflow.ErrNotFound
	Get(ctx context.Context, id string) (*entity.WorkflowRequest, error)

	// List returns every request in insertion order
	List(ctx context.Context) ([]*entity.WorkflowRequest, error)
}

// TemplateRepository persists validator templates
type TemplateRepository interface {
	Create(ctx context.Context, tpl *entity.WorkflowStepTemplate) error
	Update(ctx context.Context, tpl *entity.WorkflowStepTemplate) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*entity.WorkflowStepTemplate, error)

	// ListByType returns the templates of a workflow type sorted by order
	ListByType(ctx context.Context, workflowType entity.RequestType) ([]*entity.WorkflowStepTemplate, error)

	// List returns all templates sorted by workflow type then order
	List(ctx context.Context) ([]*entity.WorkflowStepTemplate, error)

	// DeleteByApprover removes every template bound to an approver
	DeleteByApprover(ctx context.Context, approverID string) (int, error)
}

// UserRepository persists the user directory
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	Update(ctx context.Context, user *entity.User) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	List(ctx context.Context) ([]*entity.User, error)
}

// HistoryRepository persists the request audit trail
type HistoryRepository interface {
	Create(ctx context.Context, history *entity.RequestHistory) error
	GetByRequestID(ctx context.Context, requestID string) ([]*entity.RequestHistory, error)
}

// TransactionManager runs a function atomically against the store
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

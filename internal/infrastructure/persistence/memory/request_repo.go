package memory

import (
	"context"
	"fmt"

	"github.com/garyjia/hr-portal/internal/application/port"
	"github.com/garyjia/hr-portal/internal/domain/entity"
	domainwf "github.com/garyjia/hr-portal/internal/domain/workflow"
)

// RequestRepository stores workflow requests in memory
type RequestRepository struct {
	store *Store
}

// NewRequestRepository creates a request repository over the store
func NewRequestRepository(store *Store) *RequestRepository {
	return &RequestRepository{store: store}
}

// Insert stores a new request with version 1
func (r *RequestRepository) Insert(ctx context.Context, req *entity.WorkflowRequest) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, exists := r.store.requests[req.ID]; exists {
		return fmt.Errorf("%w: request %s already exists", domainwf.ErrValidation, req.ID)
	}
	req.Version = 1
	r.store.requests[req.ID] = req.Clone()
	r.store.requestOrder = append(r.store.requestOrder, req.ID)
	return nil
}

// Replace overwrites a request if nobody changed it since expectedVersion
func (r *RequestRepository) Replace(ctx context.Context, req *entity.WorkflowRequest, expectedVersion int64) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	current, ok := r.store.requests[req.ID]
	if !ok {
		return fmt.Errorf("%w: request %s", domainwf.ErrNotFound, req.ID)
	}
	if current.Version != expectedVersion {
		return fmt.Errorf("%w: request %s is at version %d, expected %d",
			domainwf.ErrVersionConflict, req.ID, current.Version, expectedVersion)
	}
	req.Version = expectedVersion + 1
	r.store.requests[req.ID] = req.Clone()
	return nil
}

// Get returns a copy of the request
func (r *RequestRepository) Get(ctx context.Context, id string) (*entity.WorkflowRequest, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	req, ok := r.store.requests[id]
	if !ok {
		return nil, fmt.Errorf("%w: request %s", domainwf.ErrNotFound, id)
	}
	return req.Clone(), nil
}

// List returns copies of all requests in insertion order
func (r *RequestRepository) List(ctx context.Context) ([]*entity.WorkflowRequest, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]*entity.WorkflowRequest, 0, len(r.store.requestOrder))
	for _, id := range r.store.requestOrder {
		out = append(out, r.store.requests[id].Clone())
	}
	return out, nil
}

var _ port.RequestRepository = (*RequestRepository)(nil)

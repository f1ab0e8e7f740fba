package memory

import (
	"context"

	"github.com/garyjia/hr-portal/internal/application/port"
	"github.com/garyjia/hr-portal/internal/domain/entity"
)

// HistoryRepository stores the audit trail in memory
type HistoryRepository struct {
	store *Store
}

// NewHistoryRepository creates a history repository over the store
func NewHistoryRepository(store *Store) *HistoryRepository {
	return &HistoryRepository{store: store}
}

// Create appends a record and assigns its sequential id
func (r *HistoryRepository) Create(ctx context.Context, history *entity.RequestHistory) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	r.store.historySeq++
	history.ID = r.store.historySeq
	c := *history
	r.store.history = append(r.store.history, &c)
	return nil
}

// GetByRequestID returns a request's records oldest first
func (r *HistoryRepository) GetByRequestID(ctx context.Context, requestID string) ([]*entity.RequestHistory, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var out []*entity.RequestHistory
	for _, h := range r.store.history {
		if h.RequestID == requestID {
			c := *h
			out = append(out, &c)
		}
	}
	return out, nil
}

var _ port.HistoryRepository = (*HistoryRepository)(nil)

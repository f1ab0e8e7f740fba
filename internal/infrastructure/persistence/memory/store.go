// Package memory holds the in-process storage driver. All repositories share
// one Store so a transaction can snapshot and restore every table at once.
package memory

import (
	"context"
	"sync"

	"github.com/garyjia/hr-portal/internal/application/port"
	"github.com/garyjia/hr-portal/internal/domain/entity"
)

// Store is the shared state behind the memory repositories
type Store struct {
	mu   sync.RWMutex
	txMu sync.Mutex

	requests     map[string]*entity.WorkflowRequest
	requestOrder []string
	templates    map[string]*entity.WorkflowStepTemplate
	users        map[string]*entity.User
	userOrder    []string
	history      []*entity.RequestHistory
	historySeq   int64
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		requests:  make(map[string]*entity.WorkflowRequest),
		templates: make(map[string]*entity.WorkflowStepTemplate),
		users:     make(map[string]*entity.User),
	}
}

type snapshot struct {
	requests     map[string]*entity.WorkflowRequest
	requestOrder []string
	templates    map[string]*entity.WorkflowStepTemplate
	users        map[string]*entity.User
	userOrder    []string
	history      []*entity.RequestHistory
	historySeq   int64
}

// snapshot copies the map structure. Stored records are never mutated in
// place, so sharing the pointers is safe.
func (s *Store) snapshot() snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := snapshot{
		requests:     make(map[string]*entity.WorkflowRequest, len(s.requests)),
		requestOrder: append([]string(nil), s.requestOrder...),
		templates:    make(map[string]*entity.WorkflowStepTemplate, len(s.templates)),
		users:        make(map[string]*entity.User, len(s.users)),
		userOrder:    append([]string(nil), s.userOrder...),
		history:      append([]*entity.RequestHistory(nil), s.history...),
		historySeq:   s.historySeq,
	}
	for k, v := range s.requests {
		snap.requests[k] = v
	}
	for k, v := range s.templates {
		snap.templates[k] = v
	}
	for k, v := range s.users {
		snap.users[k] = v
	}
	return snap
}

func (s *Store) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.requests = snap.requests
	s.requestOrder = snap.requestOrder
	s.templates = snap.templates
	s.users = snap.users
	s.userOrder = snap.userOrder
	s.history = snap.history
	s.historySeq = snap.historySeq
}

// TxManager serializes transactions over a Store and rolls every table back
// when the transaction function fails.
type TxManager struct {
	store *Store
}

// NewTxManager creates a transaction manager for the store
func NewTxManager(store *Store) *TxManager {
	return &TxManager{store: store}
}

// WithTransaction executes fn atomically with respect to other transactions
func (m *TxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	m.store.txMu.Lock()
	defer m.store.txMu.Unlock()

	snap := m.store.snapshot()
	if err := fn(ctx); err != nil {
		m.store.restore(snap)
		return err
	}
	return nil
}

var _ port.TransactionManager = (*TxManager)(nil)

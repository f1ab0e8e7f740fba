package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/garyjia/hr-portal/internal/domain/entity"
	"github.com/garyjia/hr-portal/internal/infrastructure/persistence/memory"
)

// mockLogger implements Logger for testing
type mockLogger struct {
	mu     sync.Mutex
	infos  []string
	errors []string
}

func (m *mockLogger) Info(msg string, keysAndValues ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.infos = append(m.infos, msg)
}

func (m *mockLogger) Error(msg string, keysAndValues ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors = append(m.errors, msg)
}

type repos struct {
	store     *memory.Store
	tx        *memory.TxManager
	requests  *memory.RequestRepository
	templates *memory.TemplateRepository
	users     *memory.UserRepository
	history   *memory.HistoryRepository
}

func newRepos(t *testing.T) *repos {
	t.Helper()
	store := memory.NewStore()
	r := &repos{
		store:     store,
		tx:        memory.NewTxManager(store),
		requests:  memory.NewRequestRepository(store),
		templates: memory.NewTemplateRepository(store),
		users:     memory.NewUserRepository(store),
		history:   memory.NewHistoryRepository(store),
	}

	for _, u := range []*entity.User{
		{ID: "user1", Username: "user1", FirstName: "John", LastName: "Doe", Email: "john.doe@example.com", Role: entity.RoleEmployee, IsActive: true},
		{ID: "manager1", Username: "manager1", FirstName: "Sophie", LastName: "Martin", Email: "sophie.martin@example.com", Role: entity.RoleManager, IsActive: true},
		{ID: "hr1", Username: "hr1", FirstName: "Thomas", LastName: "Leroy", Email: "thomas.leroy@example.com", Role: entity.RoleHR, IsActive: true},
		{ID: "gone1", Username: "gone1", FirstName: "Old", LastName: "Timer", Role: entity.RoleManager, IsActive: false},
	} {
		require.NoError(t, r.users.Create(context.Background(), u))
	}
	return r
}

// chain builds a submitted request whose steps are approved up to current
func chain(id, requester string, current int, status entity.RequestStatus, approvers ...string) *entity.WorkflowRequest {
	req := &entity.WorkflowRequest{
		ID:          id,
		Type:        entity.RequestTypeLeave,
		Title:       "Request " + id,
		RequesterID: requester,
		Status:      status,
		CurrentStep: current,
	}
	for i, a := range approvers {
		order := i + 1
		st := entity.StepStatusPending
		if order < current || (order == current && status == entity.RequestStatusApproved) {
			st = entity.StepStatusApproved
		}
		if order == current && status == entity.RequestStatusRejected {
			st = entity.StepStatusRejected
		}
		req.Steps = append(req.Steps, &entity.WorkflowStep{
			ID:         entity.StepID(id, order),
			ApproverID: a,
			Status:     st,
			Order:      order,
		})
	}
	return req
}

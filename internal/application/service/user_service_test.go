package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyjia/hr-portal/internal/domain/entity"
	domainwf "github.com/garyjia/hr-portal/internal/domain/workflow"
)

func TestUserService_CreateValidation(t *testing.T) {
	ctx := context.Background()
	r := newRepos(t)
	svc := NewUserService(r.users, r.templates, r.tx, &mockLogger{})

	created, err := svc.Create(ctx, entity.User{
		Username: "director1", FirstName: "Pierre", LastName: "Durand",
		Email: "pierre.durand@example.com", Role: entity.RoleDirector, IsActive: true,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())

	tests := []struct {
		name string
		user entity.User
	}{
		{"missing username", entity.User{Role: entity.RoleHR}},
		{"unknown role", entity.User{Username: "x", Role: "intern"}},
		{"bad email", entity.User{Username: "y", Role: entity.RoleHR, Email: "not-an-email"}},
		{"taken username", entity.User{Username: "hr1", Role: entity.RoleHR}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tt.user)
			assert.ErrorIs(t, err, domainwf.ErrValidation)
		})
	}
}

func TestUserService_ListByRole(t *testing.T) {
	ctx := context.Background()
	r := newRepos(t)
	svc := NewUserService(r.users, r.templates, r.tx, &mockLogger{})

	managers, err := svc.ListByRole(ctx, entity.RoleManager)
	require.NoError(t, err)
	require.Len(t, managers, 1, "inactive users are skipped")
	assert.Equal(t, "manager1", managers[0].ID)

	_, err = svc.ListByRole(ctx, "intern")
	assert.ErrorIs(t, err, domainwf.ErrValidation)
}

func TestUserService_UpdateKeepsCreatedAt(t *testing.T) {
	ctx := context.Background()
	r := newRepos(t)
	svc := NewUserService(r.users, r.templates, r.tx, &mockLogger{})

	before, err := svc.Get(ctx, "hr1")
	require.NoError(t, err)

	updated, err := svc.Update(ctx, "hr1", entity.User{Username: "hr1", FirstName: "Tom", Role: entity.RoleHR, IsActive: true})
	require.NoError(t, err)
	assert.Equal(t, before.CreatedAt, updated.CreatedAt)
	assert.Equal(t, "Tom", updated.FirstName)

	_, err = svc.Update(ctx, "ghost", entity.User{Username: "ghost", Role: entity.RoleHR})
	assert.ErrorIs(t, err, domainwf.ErrNotFound)
}

func TestUserService_DeleteCascadesToTemplates(t *testing.T) {
	ctx := context.Background()
	r := newRepos(t)
	svc := NewUserService(r.users, r.templates, r.tx, &mockLogger{})

	for _, tpl := range []*entity.WorkflowStepTemplate{
		{ID: "v1", WorkflowType: entity.RequestTypeLeave, StepName: "Manager", ApproverID: "manager1", Order: 1},
		{ID: "v2", WorkflowType: entity.RequestTypeLeave, StepName: "RH", ApproverID: "hr1", Order: 2},
		{ID: "v7", WorkflowType: entity.RequestTypeComplaint, StepName: "RH", ApproverID: "hr1", Order: 1},
	} {
		require.NoError(t, r.templates.Create(ctx, tpl))
	}

	require.NoError(t, svc.Delete(ctx, "hr1"))

	all, err := r.templates.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "v1", all[0].ID)

	_, err = svc.Get(ctx, "hr1")
	assert.ErrorIs(t, err, domainwf.ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, "hr1"), domainwf.ErrNotFound)
}

package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyjia/hr-portal/internal/domain/entity"
	domainwf "github.com/garyjia/hr-portal/internal/domain/workflow"
)

func TestRequestRepository_InsertGetList(t *testing.T) {
	ctx := context.Background()
	repo := NewRequestRepository(NewStore())

	for _, id := range []string{"b", "a", "c"} {
		require.NoError(t, repo.Insert(ctx, &entity.WorkflowRequest{ID: id, Status: entity.RequestStatusDraft}))
	}
	assert.ErrorIs(t, repo.Insert(ctx, &entity.WorkflowRequest{ID: "a"}), domainwf.ErrValidation)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "b", list[0].ID, "list keeps insertion order")
	assert.Equal(t, "c", list[2].ID)

	_, err = repo.Get(ctx, "missing")
	assert.ErrorIs(t, err, domainwf.ErrNotFound)
}

func TestRequestRepository_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewRequestRepository(NewStore())

	req := &entity.WorkflowRequest{
		ID:     "r1",
		Status: entity.RequestStatusSubmitted,
		Steps:  []*entity.WorkflowStep{{ID: "r1_step_1", Order: 1, Status: entity.StepStatusPending}},
	}
	require.NoError(t, repo.Insert(ctx, req))
	req.Steps[0].Status = entity.StepStatusApproved

	got, err := repo.Get(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, entity.StepStatusPending, got.Steps[0].Status)

	got.Steps[0].Status = entity.StepStatusRejected
	again, err := repo.Get(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, entity.StepStatusPending, again.Steps[0].Status)
}

func TestRequestRepository_ReplaceChecksVersion(t *testing.T) {
	ctx := context.Background()
	repo := NewRequestRepository(NewStore())

	require.NoError(t, repo.Insert(ctx, &entity.WorkflowRequest{ID: "r1", Title: "v1"}))

	first, _ := repo.Get(ctx, "r1")
	second, _ := repo.Get(ctx, "r1")

	first.Title = "v2"
	require.NoError(t, repo.Replace(ctx, first, first.Version))
	assert.Equal(t, int64(2), first.Version)

	second.Title = "stale"
	err := repo.Replace(ctx, second, second.Version)
	assert.ErrorIs(t, err, domainwf.ErrVersionConflict)
	assert.ErrorIs(t, err, domainwf.ErrInvalidTransition)

	got, _ := repo.Get(ctx, "r1")
	assert.Equal(t, "v2", got.Title)

	err = repo.Replace(ctx, &entity.WorkflowRequest{ID: "ghost"}, 1)
	assert.ErrorIs(t, err, domainwf.ErrNotFound)
}

func TestTemplateRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewTemplateRepository(NewStore())

	tpls := []*entity.WorkflowStepTemplate{
		{ID: "t2", WorkflowType: entity.RequestTypeLeave, StepName: "RH", ApproverID: "hr1", Order: 2},
		{ID: "t1", WorkflowType: entity.RequestTypeLeave, StepName: "Manager", ApproverID: "manager1", Order: 1},
		{ID: "t3", WorkflowType: entity.RequestTypeCertificate, StepName: "RH", ApproverID: "hr1", Order: 1},
	}
	for _, tpl := range tpls {
		require.NoError(t, repo.Create(ctx, tpl))
	}

	dup := &entity.WorkflowStepTemplate{ID: "t4", WorkflowType: entity.RequestTypeLeave, Order: 2}
	assert.ErrorIs(t, repo.Create(ctx, dup), domainwf.ErrValidation)

	leave, err := repo.ListByType(ctx, entity.RequestTypeLeave)
	require.NoError(t, err)
	require.Len(t, leave, 2)
	assert.Equal(t, "t1", leave[0].ID)
	assert.Equal(t, "t2", leave[1].ID)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, "t3", all[0].ID, "certificate sorts before leave")

	n, err := repo.DeleteByApprover(ctx, "hr1")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	assert.ErrorIs(t, repo.Delete(ctx, "t2"), domainwf.ErrNotFound)
	assert.ErrorIs(t, repo.Update(ctx, &entity.WorkflowStepTemplate{ID: "nope"}), domainwf.ErrNotFound)
}

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(NewStore())

	require.NoError(t, repo.Create(ctx, &entity.User{ID: "u1", Username: "alice"}))
	require.NoError(t, repo.Create(ctx, &entity.User{ID: "u2", Username: "bob"}))
	assert.ErrorIs(t, repo.Create(ctx, &entity.User{ID: "u3", Username: "alice"}), domainwf.ErrValidation)

	require.NoError(t, repo.Delete(ctx, "u1"))
	users, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "u2", users[0].ID)

	_, err = repo.GetByID(ctx, "u1")
	assert.ErrorIs(t, err, domainwf.ErrNotFound)
}

func TestTxManager_RollsBackOnError(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	tx := NewTxManager(store)
	requests := NewRequestRepository(store)
	history := NewHistoryRepository(store)

	require.NoError(t, requests.Insert(ctx, &entity.WorkflowRequest{ID: "r1", Title: "before"}))

	boom := errors.New("boom")
	err := tx.WithTransaction(ctx, func(ctx context.Context) error {
		req, err := requests.Get(ctx, "r1")
		require.NoError(t, err)
		req.Title = "after"
		require.NoError(t, requests.Replace(ctx, req, req.Version))
		require.NoError(t, history.Create(ctx, &entity.RequestHistory{RequestID: "r1"}))
		require.NoError(t, requests.Insert(ctx, &entity.WorkflowRequest{ID: "r2"}))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := requests.Get(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, "before", got.Title)
	assert.Equal(t, int64(1), got.Version)

	_, err = requests.Get(ctx, "r2")
	assert.ErrorIs(t, err, domainwf.ErrNotFound)

	recs, err := history.GetByRequestID(ctx, "r1")
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestTxManager_Commits(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	history := NewHistoryRepository(store)

	err := NewTxManager(store).WithTransaction(ctx, func(ctx context.Context) error {
		return history.Create(ctx, &entity.RequestHistory{RequestID: "r1"})
	})
	require.NoError(t, err)

	recs, err := history.GetByRequestID(ctx, "r1")
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, int64(1), recs[0].ID)
}

package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyjia/hr-portal/internal/domain/entity"
	domainwf "github.com/garyjia/hr-portal/internal/domain/workflow"
)

func ids(reqs []*entity.WorkflowRequest) []string {
	out := make([]string, 0, len(reqs))
	for _, r := range reqs {
		out = append(out, r.ID)
	}
	return out
}

func seedRequests(t *testing.T, r *repos) {
	t.Helper()
	ctx := context.Background()
	for _, req := range []*entity.WorkflowRequest{
		chain("r1", "user1", 1, entity.RequestStatusSubmitted, "manager1", "hr1"),
		chain("r2", "user1", 2, entity.RequestStatusInProgress, "manager1", "hr1"),
		chain("r3", "manager1", 1, entity.RequestStatusRejected, "hr1"),
		chain("r4", "user1", 2, entity.RequestStatusApproved, "manager1", "hr1"),
		{ID: "r5", Type: entity.RequestTypeLeave, RequesterID: "user1", Status: entity.RequestStatusDraft},
		chain("r6", "hr1", 1, entity.RequestStatusSubmitted, "manager1"),
	} {
		require.NoError(t, r.requests.Insert(ctx, req))
	}
}

func TestQueryService_PendingFor(t *testing.T) {
	ctx := context.Background()
	r := newRepos(t)
	seedRequests(t, r)
	svc := NewQueryService(r.requests, r.history)

	mine, err := svc.PendingFor(ctx, "manager1")
	require.NoError(t, err)
	assert.Equal(t, []string{"r1", "r6"}, ids(mine))

	mine, err = svc.PendingFor(ctx, "hr1")
	require.NoError(t, err)
	assert.Equal(t, []string{"r2"}, ids(mine), "rejected and approved requests never appear")

	none, err := svc.PendingFor(ctx, "user1")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestQueryService_PendingForIsRecomputed(t *testing.T) {
	ctx := context.Background()
	r := newRepos(t)
	seedRequests(t, r)
	svc := NewQueryService(r.requests, r.history)

	req, err := r.requests.Get(ctx, "r1")
	require.NoError(t, err)
	req.Steps[0].Status = entity.StepStatusApproved
	req.CurrentStep = 2
	req.Status = entity.RequestStatusInProgress
	require.NoError(t, r.requests.Replace(ctx, req, req.Version))

	mine, err := svc.PendingFor(ctx, "manager1")
	require.NoError(t, err)
	assert.Equal(t, []string{"r6"}, ids(mine))

	mine, err = svc.PendingFor(ctx, "hr1")
	require.NoError(t, err)
	assert.Equal(t, []string{"r1", "r2"}, ids(mine))
}

func TestQueryService_ByStatus(t *testing.T) {
	ctx := context.Background()
	r := newRepos(t)
	seedRequests(t, r)
	svc := NewQueryService(r.requests, r.history)

	tests := []struct {
		filter string
		want   []string
	}{
		{"all", []string{"r1", "r2", "r3", "r4", "r5", "r6"}},
		{"", []string{"r1", "r2", "r3", "r4", "r5", "r6"}},
		{"pending", []string{"r1", "r2", "r6"}},
		{"approved", []string{"r4"}},
		{"rejected", []string{"r3"}},
		{"draft", []string{"r5"}},
		{"in_progress", []string{"r2"}},
	}

	for _, tt := range tests {
		t.Run(tt.filter, func(t *testing.T) {
			got, err := svc.ByStatus(ctx, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(got))
		})
	}

	_, err := svc.ByStatus(ctx, "archived")
	assert.ErrorIs(t, err, domainwf.ErrValidation)
}

func TestQueryService_ByRequesterAndStats(t *testing.T) {
	ctx := context.Background()
	r := newRepos(t)
	seedRequests(t, r)
	svc := NewQueryService(r.requests, r.history)

	mine, err := svc.ByRequester(ctx, "user1", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"r1", "r2", "r4", "r5"}, ids(mine))

	mine, err = svc.ByRequester(ctx, "user1", FilterPending)
	require.NoError(t, err)
	assert.Equal(t, []string{"r1", "r2"}, ids(mine))

	_, err = svc.ByRequester(ctx, "user1", "archived")
	assert.ErrorIs(t, err, domainwf.ErrValidation)

	stats, err := svc.Stats(ctx, "user1")
	require.NoError(t, err)
	assert.Equal(t, DashboardStats{Total: 4, Drafts: 1, Pending: 2, Approved: 1}, *stats)

	stats, err = svc.Stats(ctx, "manager1")
	require.NoError(t, err)
	assert.Equal(t, DashboardStats{Total: 1, Rejected: 1, AwaitingMe: 2}, *stats)
}

func TestQueryService_GetAndHistory(t *testing.T) {
	ctx := context.Background()
	r := newRepos(t)
	seedRequests(t, r)
	svc := NewQueryService(r.requests, r.history)

	require.NoError(t, r.history.Create(ctx, &entity.RequestHistory{RequestID: "r1", Action: entity.ActionCreate}))

	req, err := svc.Get(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, "Request r1", req.Title)

	recs, err := svc.History(ctx, "r1")
	require.NoError(t, err)
	require.Len(t, recs, 1)

	_, err = svc.Get(ctx, "nope")
	assert.ErrorIs(t, err, domainwf.ErrNotFound)
	_, err = svc.History(ctx, "nope")
	assert.ErrorIs(t, err, domainwf.ErrNotFound)
}

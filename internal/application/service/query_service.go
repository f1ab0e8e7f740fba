package service

import (
	"context"
	"fmt"

	"github.com/garyjia/hr-portal/internal/application/port"
	"github.com/garyjia/hr-portal/internal/domain/entity"
	domainwf "github.com/garyjia/hr-portal/internal/domain/workflow"
)

// Status filters accepted by ByStatus besides the literal request statuses
const (
	FilterAll     = "all"
	FilterPending = "pending"
)

// DashboardStats summarizes a user's requests and worklist
type DashboardStats struct {
	Total      int `json:"total"`
	Drafts     int `json:"drafts"`
	Pending    int `json:"pending"`
	Approved   int `json:"approved"`
	Rejected   int `json:"rejected"`
	AwaitingMe int `json:"awaiting_me"`
}

// QueryService answers read-only questions over the request store. Every
// call recomputes from the repository; nothing is cached.
type QueryService interface {
	// PendingFor returns the requests whose current step waits on approverID
	PendingFor(ctx context.Context, approverID string) ([]*entity.WorkflowRequest, error)

	// ByStatus filters by all, pending, approved, rejected or a literal status
	ByStatus(ctx context.Context, filter string) ([]*entity.WorkflowRequest, error)

	// ByRequester returns the requests authored by a user, narrowed by the
	// same filters as ByStatus
	ByRequester(ctx context.Context, requesterID, filter string) ([]*entity.WorkflowRequest, error)

	Get(ctx context.Context, id string) (*entity.WorkflowRequest, error)
	History(ctx context.Context, id string) ([]*entity.RequestHistory, error)
	Stats(ctx context.Context, userID string) (*DashboardStats, error)
}

type queryServiceImpl struct {
	requestRepo port.RequestRepository
	historyRepo port.HistoryRepository
}

// NewQueryService creates a new QueryService
func NewQueryService(requestRepo port.RequestRepository, historyRepo port.HistoryRepository) QueryService {
	return &queryServiceImpl{
		requestRepo: requestRepo,
		historyRepo: historyRepo,
	}
}

func (s *queryServiceImpl) PendingFor(ctx context.Context, approverID string) ([]*entity.WorkflowRequest, error) {
	return s.filter(ctx, func(r *entity.WorkflowRequest) bool {
		return awaits(r, approverID)
	})
}

func (s *queryServiceImpl) ByStatus(ctx context.Context, filter string) ([]*entity.WorkflowRequest, error) {
	match, err := statusMatcher(filter)
	if err != nil {
		return nil, err
	}
	return s.filter(ctx, match)
}

func (s *queryServiceImpl) ByRequester(ctx context.Context, requesterID, filter string) ([]*entity.WorkflowRequest, error) {
	match, err := statusMatcher(filter)
	if err != nil {
		return nil, err
	}
	return s.filter(ctx, func(r *entity.WorkflowRequest) bool {
		return r.RequesterID == requesterID && match(r)
	})
}

func (s *queryServiceImpl) Get(ctx context.Context, id string) (*entity.WorkflowRequest, error) {
	return s.requestRepo.Get(ctx, id)
}

func (s *queryServiceImpl) History(ctx context.Context, id string) ([]*entity.RequestHistory, error) {
	if _, err := s.requestRepo.Get(ctx, id); err != nil {
		return nil, err
	}
	return s.historyRepo.GetByRequestID(ctx, id)
}

func (s *queryServiceImpl) Stats(ctx context.Context, userID string) (*DashboardStats, error) {
	all, err := s.requestRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}

	stats := &DashboardStats{}
	for _, r := range all {
		if awaits(r, userID) {
			stats.AwaitingMe++
		}
		if r.RequesterID != userID {
			continue
		}
		stats.Total++
		switch {
		case r.Status == entity.RequestStatusDraft:
			stats.Drafts++
		case r.Status.IsPending():
			stats.Pending++
		case r.Status == entity.RequestStatusApproved:
			stats.Approved++
		case r.Status == entity.RequestStatusRejected:
			stats.Rejected++
		}
	}
	return stats, nil
}

// filter keeps repository order
func (s *queryServiceImpl) filter(ctx context.Context, keep func(*entity.WorkflowRequest) bool) ([]*entity.WorkflowRequest, error) {
	all, err := s.requestRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}

	out := make([]*entity.WorkflowRequest, 0, len(all))
	for _, r := range all {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out, nil
}

// awaits reports whether the pending step under the pointer belongs to approverID
func awaits(r *entity.WorkflowRequest, approverID string) bool {
	step := r.ActiveStep()
	return step != nil && step.Status == entity.StepStatusPending && step.ApproverID == approverID
}

func statusMatcher(filter string) (func(*entity.WorkflowRequest) bool, error) {
	switch filter {
	case "", FilterAll:
		return func(*entity.WorkflowRequest) bool { return true }, nil
	case FilterPending:
		return func(r *entity.WorkflowRequest) bool { return r.Status.IsPending() }, nil
	}

	status := entity.RequestStatus(filter)
	switch status {
	case entity.RequestStatusDraft, entity.RequestStatusSubmitted, entity.RequestStatusInProgress,
		entity.RequestStatusApproved, entity.RequestStatusRejected:
		return func(r *entity.WorkflowRequest) bool { return r.Status == status }, nil
	}
	return nil, fmt.Errorf("%w: unknown status filter %q", domainwf.ErrValidation, filter)
}

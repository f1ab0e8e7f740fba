package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/garyjia/hr-portal/internal/application/port"
	"github.com/garyjia/hr-portal/internal/domain/entity"
	domainwf "github.com/garyjia/hr-portal/internal/domain/workflow"
	"github.com/garyjia/hr-portal/internal/infrastructure/persistence/sqlite"
)

// RequestRepository implements port.RequestRepository. A request is one
// row in requests plus its steps in request_steps.
type RequestRepository struct {
	db     *sqlite.DB
	logger *zap.Logger
}

// NewRequestRepository creates a new request repository
func NewRequestRepository(db *sqlite.DB, logger *zap.Logger) *RequestRepository {
	return &RequestRepository{
		db:     db,
		logger: logger,
	}
}

const requestColumns = `id, type, title, description, requester_id, requester_name,
	start_date, end_date, duration, status, current_step, metadata, version,
	created_at, updated_at`

// Insert stores a new request with version 1
func (r *RequestRepository) Insert(ctx context.Context, req *entity.WorkflowRequest) error {
	metadata, err := json.Marshal(req.Metadata)
	if err != nil {
		return fmt.Errorf("failed to encode metadata: %w", err)
	}

	return r.db.WithTransaction(ctx, func(txCtx context.Context) error {
		query := `INSERT INTO requests (` + requestColumns + `)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1, ?, ?)`

		_, err := r.db.Executor(txCtx).ExecContext(txCtx, query,
			req.ID, req.Type, req.Title, req.Description, req.RequesterID, req.RequesterName,
			nullTime(req.StartDate), nullTime(req.EndDate), req.DurationLabel,
			req.Status, req.CurrentStep, string(metadata),
			req.CreatedAt, req.UpdatedAt,
		)
		if err != nil {
			r.logger.Error("Failed to insert request", zap.String("id", req.ID), zap.Error(err))
			return wrapWrite(err, "insert request %s", req.ID)
		}
		if err := r.insertSteps(txCtx, req); err != nil {
			return err
		}
		req.Version = 1
		return nil
	})
}

// Replace overwrites the request row and its steps when the stored version
// still equals expectedVersion.
func (r *RequestRepository) Replace(ctx context.Context, req *entity.WorkflowRequest, expectedVersion int64) error {
	metadata, err := json.Marshal(req.Metadata)
	if err != nil {
		return fmt.Errorf("failed to encode metadata: %w", err)
	}

	return r.db.WithTransaction(ctx, func(txCtx context.Context) error {
		exec := r.db.Executor(txCtx)
		query := `UPDATE requests SET
				type = ?, title = ?, description = ?, requester_id = ?, requester_name = ?,
				start_date = ?, end_date = ?, duration = ?, status = ?, current_step = ?,
				metadata = ?, version = version + 1, updated_at = ?
			WHERE id = ? AND version = ?`

		result, err := exec.ExecContext(txCtx, query,
			req.Type, req.Title, req.Description, req.RequesterID, req.RequesterName,
			nullTime(req.StartDate), nullTime(req.EndDate), req.DurationLabel,
			req.Status, req.CurrentStep, string(metadata), req.UpdatedAt,
			req.ID, expectedVersion,
		)
		if err != nil {
			r.logger.Error("Failed to replace request", zap.String("id", req.ID), zap.Error(err))
			return fmt.Errorf("failed to replace request: %w", err)
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rows == 0 {
			var current int64
			err := exec.QueryRowContext(txCtx, "SELECT version FROM requests WHERE id = ?", req.ID).Scan(&current)
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("%w: request %s", domainwf.ErrNotFound, req.ID)
			}
			if err != nil {
				return fmt.Errorf("failed to read request version: %w", err)
			}
			return fmt.Errorf("%w: request %s is at version %d, expected %d",
				domainwf.ErrVersionConflict, req.ID, current, expectedVersion)
		}

		if _, err := exec.ExecContext(txCtx, "DELETE FROM request_steps WHERE request_id = ?", req.ID); err != nil {
			return fmt.Errorf("failed to clear steps: %w", err)
		}
		if err := r.insertSteps(txCtx, req); err != nil {
			return err
		}

		req.Version = expectedVersion + 1
		return nil
	})
}

// Get returns a request with its steps
func (r *RequestRepository) Get(ctx context.Context, id string) (*entity.WorkflowRequest, error) {
	exec := r.db.Executor(ctx)
	row := exec.QueryRowContext(ctx, `SELECT `+requestColumns+` FROM requests WHERE id = ?`, id)

	req, err := scanRequest(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: request %s", domainwf.ErrNotFound, id)
	}
	if err != nil {
		r.logger.Error("Failed to get request", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get request: %w", err)
	}

	steps, err := r.loadSteps(ctx, "WHERE request_id = ?", id)
	if err != nil {
		return nil, err
	}
	req.Steps = steps[id]
	if req.Steps == nil {
		req.Steps = []*entity.WorkflowStep{}
	}
	return req, nil
}

// List returns every request in insertion order
func (r *RequestRepository) List(ctx context.Context) ([]*entity.WorkflowRequest, error) {
	rows, err := r.db.Executor(ctx).QueryContext(ctx, `SELECT `+requestColumns+` FROM requests ORDER BY seq ASC`)
	if err != nil {
		r.logger.Error("Failed to list requests", zap.Error(err))
		return nil, fmt.Errorf("failed to list requests: %w", err)
	}
	defer rows.Close()

	var requests []*entity.WorkflowRequest
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan request: %w", err)
		}
		requests = append(requests, req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating requests: %w", err)
	}
	rows.Close()

	steps, err := r.loadSteps(ctx, "")
	if err != nil {
		return nil, err
	}
	for _, req := range requests {
		req.Steps = steps[req.ID]
		if req.Steps == nil {
			req.Steps = []*entity.WorkflowStep{}
		}
	}
	return requests, nil
}

func (r *RequestRepository) insertSteps(ctx context.Context, req *entity.WorkflowRequest) error {
	if len(req.Steps) == 0 {
		return nil
	}

	placeholders := make([]string, 0, len(req.Steps))
	args := make([]interface{}, 0, len(req.Steps)*9)
	for _, s := range req.Steps {
		placeholders = append(placeholders, "(?, ?, ?, ?, ?, ?, ?, ?, ?)")
		args = append(args, s.ID, req.ID, s.Name, s.ApproverID, s.ApproverName,
			s.Status, s.Comment, nullTime(s.ProcessedAt), s.Order)
	}

	query := `INSERT INTO request_steps (
			id, request_id, name, approver_id, approver_name, status, comment, processed_at, step_order
		) VALUES ` + strings.Join(placeholders, ", ")

	if _, err := r.db.Executor(ctx).ExecContext(ctx, query, args...); err != nil {
		r.logger.Error("Failed to insert steps", zap.String("request_id", req.ID), zap.Error(err))
		return wrapWrite(err, "insert steps of %s", req.ID)
	}
	return nil
}

// loadSteps returns steps grouped by request id, sorted by order
func (r *RequestRepository) loadSteps(ctx context.Context, where string, args ...interface{}) (map[string][]*entity.WorkflowStep, error) {
	query := `SELECT id, request_id, name, approver_id, approver_name, status, comment, processed_at, step_order
		FROM request_steps ` + where + ` ORDER BY request_id, step_order ASC`

	rows, err := r.db.Executor(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to load steps: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]*entity.WorkflowStep)
	for rows.Next() {
		var (
			s         entity.WorkflowStep
			requestID string
			processed sql.NullTime
		)
		if err := rows.Scan(&s.ID, &requestID, &s.Name, &s.ApproverID, &s.ApproverName,
			&s.Status, &s.Comment, &processed, &s.Order); err != nil {
			return nil, fmt.Errorf("failed to scan step: %w", err)
		}
		s.ProcessedAt = timePtr(processed)
		out[requestID] = append(out[requestID], &s)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRequest(row scanner) (*entity.WorkflowRequest, error) {
	var (
		req        entity.WorkflowRequest
		start, end sql.NullTime
		metadata   string
	)
	err := row.Scan(
		&req.ID, &req.Type, &req.Title, &req.Description, &req.RequesterID, &req.RequesterName,
		&start, &end, &req.DurationLabel, &req.Status, &req.CurrentStep, &metadata, &req.Version,
		&req.CreatedAt, &req.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	req.StartDate = timePtr(start)
	req.EndDate = timePtr(end)
	if err := json.Unmarshal([]byte(metadata), &req.Metadata); err != nil {
		return nil, fmt.Errorf("failed to decode metadata of %s: %w", req.ID, err)
	}
	return &req, nil
}

// Verify interface compliance
var _ port.RequestRepository = (*RequestRepository)(nil)

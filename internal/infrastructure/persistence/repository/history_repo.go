package repository

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/garyjia/hr-portal/internal/application/port"
	"github.com/garyjia/hr-portal/internal/domain/entity"
	"github.com/garyjia/hr-portal/internal/infrastructure/persistence/sqlite"
)

// HistoryRepository implements port.HistoryRepository
type HistoryRepository struct {
	db     *sqlite.DB
	logger *zap.Logger
}

// NewHistoryRepository creates a new history repository
func NewHistoryRepository(db *sqlite.DB, logger *zap.Logger) *HistoryRepository {
	return &HistoryRepository{
		db:     db,
		logger: logger,
	}
}

// Create creates a new history record
func (r *HistoryRepository) Create(ctx context.Context, history *entity.RequestHistory) error {
	query := `
		INSERT INTO request_history (
			request_id, actor_id, previous_status, new_status,
			action, step_id, comment, timestamp
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.Executor(ctx).ExecContext(ctx, query,
		history.RequestID,
		history.ActorID,
		history.PreviousStatus,
		history.NewStatus,
		history.Action,
		history.StepID,
		history.Comment,
		history.Timestamp,
	)
	if err != nil {
		r.logger.Error("Failed to create history record", zap.String("request_id", history.RequestID), zap.Error(err))
		return fmt.Errorf("failed to create history: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	history.ID = id
	return nil
}

// GetByRequestID retrieves a request's history oldest first
func (r *HistoryRepository) GetByRequestID(ctx context.Context, requestID string) ([]*entity.RequestHistory, error) {
	query := `
		SELECT id, request_id, actor_id, previous_status, new_status,
			action, step_id, comment, timestamp
		FROM request_history
		WHERE request_id = ?
		ORDER BY id ASC
	`

	rows, err := r.db.Executor(ctx).QueryContext(ctx, query, requestID)
	if err != nil {
		r.logger.Error("Failed to get history", zap.String("request_id", requestID), zap.Error(err))
		return nil, fmt.Errorf("failed to get history: %w", err)
	}
	defer rows.Close()

	var records []*entity.RequestHistory
	for rows.Next() {
		var rec entity.RequestHistory
		if err := rows.Scan(
			&rec.ID,
			&rec.RequestID,
			&rec.ActorID,
			&rec.PreviousStatus,
			&rec.NewStatus,
			&rec.Action,
			&rec.StepID,
			&rec.Comment,
			&rec.Timestamp,
		); err != nil {
			return nil, fmt.Errorf("failed to scan history: %w", err)
		}
		records = append(records, &rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating history: %w", err)
	}

	return records, nil
}

// Verify interface compliance
var _ port.HistoryRepository = (*HistoryRepository)(nil)

package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/garyjia/hr-portal/internal/application/port"
	"github.com/garyjia/hr-portal/internal/domain/entity"
	domainwf "github.com/garyjia/hr-portal/internal/domain/workflow"
	"github.com/garyjia/hr-portal/internal/infrastructure/persistence/sqlite"
)

// TemplateRepository implements port.TemplateRepository
type TemplateRepository struct {
	db     *sqlite.DB
	logger *zap.Logger
}

// NewTemplateRepository creates a new template repository
func NewTemplateRepository(db *sqlite.DB, logger *zap.Logger) *TemplateRepository {
	return &TemplateRepository{
		db:     db,
		logger: logger,
	}
}

const templateColumns = `id, workflow_type, step_name, approver_id, approver_name, step_order`

func (r *TemplateRepository) Create(ctx context.Context, tpl *entity.WorkflowStepTemplate) error {
	query := `INSERT INTO workflow_templates (` + templateColumns + `) VALUES (?, ?, ?, ?, ?, ?)`

	_, err := r.db.Executor(ctx).ExecContext(ctx, query,
		tpl.ID, tpl.WorkflowType, tpl.StepName, tpl.ApproverID, tpl.ApproverName, tpl.Order)
	if err != nil {
		r.logger.Error("Failed to create template", zap.String("id", tpl.ID), zap.Error(err))
		return wrapWrite(err, "create template %s", tpl.ID)
	}
	return nil
}

func (r *TemplateRepository) Update(ctx context.Context, tpl *entity.WorkflowStepTemplate) error {
	query := `UPDATE workflow_templates
		SET workflow_type = ?, step_name = ?, approver_id = ?, approver_name = ?, step_order = ?
		WHERE id = ?`

	result, err := r.db.Executor(ctx).ExecContext(ctx, query,
		tpl.WorkflowType, tpl.StepName, tpl.ApproverID, tpl.ApproverName, tpl.Order, tpl.ID)
	if err != nil {
		r.logger.Error("Failed to update template", zap.String("id", tpl.ID), zap.Error(err))
		return wrapWrite(err, "update template %s", tpl.ID)
	}
	return requireAffected(result, "template", tpl.ID)
}

func (r *TemplateRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.Executor(ctx).ExecContext(ctx, "DELETE FROM workflow_templates WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete template: %w", err)
	}
	return requireAffected(result, "template", id)
}

func (r *TemplateRepository) GetByID(ctx context.Context, id string) (*entity.WorkflowStepTemplate, error) {
	row := r.db.Executor(ctx).QueryRowContext(ctx,
		`SELECT `+templateColumns+` FROM workflow_templates WHERE id = ?`, id)

	var tpl entity.WorkflowStepTemplate
	err := row.Scan(&tpl.ID, &tpl.WorkflowType, &tpl.StepName, &tpl.ApproverID, &tpl.ApproverName, &tpl.Order)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: template %s", domainwf.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get template: %w", err)
	}
	return &tpl, nil
}

func (r *TemplateRepository) ListByType(ctx context.Context, workflowType entity.RequestType) ([]*entity.WorkflowStepTemplate, error) {
	return r.query(ctx, `SELECT `+templateColumns+` FROM workflow_templates
		WHERE workflow_type = ? ORDER BY step_order ASC`, workflowType)
}

func (r *TemplateRepository) List(ctx context.Context) ([]*entity.WorkflowStepTemplate, error) {
	return r.query(ctx, `SELECT `+templateColumns+` FROM workflow_templates
		ORDER BY workflow_type ASC, step_order ASC`)
}

func (r *TemplateRepository) DeleteByApprover(ctx context.Context, approverID string) (int, error) {
	result, err := r.db.Executor(ctx).ExecContext(ctx, "DELETE FROM workflow_templates WHERE approver_id = ?", approverID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete templates: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return int(n), nil
}

func (r *TemplateRepository) query(ctx context.Context, query string, args ...interface{}) ([]*entity.WorkflowStepTemplate, error) {
	rows, err := r.db.Executor(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list templates", zap.Error(err))
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	defer rows.Close()

	var tpls []*entity.WorkflowStepTemplate
	for rows.Next() {
		var tpl entity.WorkflowStepTemplate
		if err := rows.Scan(&tpl.ID, &tpl.WorkflowType, &tpl.StepName, &tpl.ApproverID, &tpl.ApproverName, &tpl.Order); err != nil {
			return nil, fmt.Errorf("failed to scan template: %w", err)
		}
		tpls = append(tpls, &tpl)
	}
	return tpls, rows.Err()
}

func requireAffected(result sql.Result, kind, id string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s %s", domainwf.ErrNotFound, kind, id)
	}
	return nil
}

// Verify interface compliance
var _ port.TemplateRepository = (*TemplateRepository)(nil)

package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/garyjia/hr-portal/internal/application/port"
	"github.com/garyjia/hr-portal/internal/domain/entity"
	domainwf "github.com/garyjia/hr-portal/internal/domain/workflow"
)

// Logger interface for minimal logging dependency
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// TemplateService manages the validator chain of each workflow type
type TemplateService interface {
	// ListTemplates returns the chain of a workflow type sorted by order
	ListTemplates(ctx context.Context, workflowType entity.RequestType) ([]*entity.WorkflowStepTemplate, error)
	ListAll(ctx context.Context) ([]*entity.WorkflowStepTemplate, error)
	Add(ctx context.Context, tpl entity.WorkflowStepTemplate) (*entity.WorkflowStepTemplate, error)
	Update(ctx context.Context, id string, tpl entity.WorkflowStepTemplate) (*entity.WorkflowStepTemplate, error)
	Remove(ctx context.Context, id string) error
}

type templateServiceImpl struct {
	templateRepo port.TemplateRepository
	userRepo     port.UserRepository
	txManager    port.TransactionManager
	logger       Logger
}

// NewTemplateService creates a new TemplateService
func NewTemplateService(
	templateRepo port.TemplateRepository,
	userRepo port.UserRepository,
	txManager port.TransactionManager,
	logger Logger,
) TemplateService {
	return &templateServiceImpl{
		templateRepo: templateRepo,
		userRepo:     userRepo,
		txManager:    txManager,
		logger:       logger,
	}
}

func (s *templateServiceImpl) ListTemplates(ctx context.Context, workflowType entity.RequestType) ([]*entity.WorkflowStepTemplate, error) {
	if !workflowType.IsValid() {
		return nil, fmt.Errorf("%w: unknown workflow type %q", domainwf.ErrValidation, workflowType)
	}
	return s.templateRepo.ListByType(ctx, workflowType)
}

func (s *templateServiceImpl) ListAll(ctx context.Context) ([]*entity.WorkflowStepTemplate, error) {
	return s.templateRepo.List(ctx)
}

// Add creates a template. The (type, order) pair must be free so the
// engine never has to choose between two steps.
func (s *templateServiceImpl) Add(ctx context.Context, tpl entity.WorkflowStepTemplate) (*entity.WorkflowStepTemplate, error) {
	if tpl.ID == "" {
		tpl.ID = uuid.NewString()
	}

	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.prepare(txCtx, &tpl); err != nil {
			return err
		}
		if err := s.ensureOrderFree(txCtx, &tpl); err != nil {
			return err
		}
		return s.templateRepo.Create(txCtx, &tpl)
	})
	if err != nil {
		s.logger.Error("Failed to add template", "workflow_type", tpl.WorkflowType, "order", tpl.Order, "error", err)
		return nil, err
	}

	s.logger.Info("Template added", "id", tpl.ID, "workflow_type", tpl.WorkflowType, "order", tpl.Order, "approver_id", tpl.ApproverID)
	return &tpl, nil
}

func (s *templateServiceImpl) Update(ctx context.Context, id string, tpl entity.WorkflowStepTemplate) (*entity.WorkflowStepTemplate, error) {
	tpl.ID = id

	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if _, err := s.templateRepo.GetByID(txCtx, id); err != nil {
			return err
		}
		if err := s.prepare(txCtx, &tpl); err != nil {
			return err
		}
		if err := s.ensureOrderFree(txCtx, &tpl); err != nil {
			return err
		}
		return s.templateRepo.Update(txCtx, &tpl)
	})
	if err != nil {
		s.logger.Error("Failed to update template", "id", id, "error", err)
		return nil, err
	}

	s.logger.Info("Template updated", "id", id, "workflow_type", tpl.WorkflowType, "order", tpl.Order)
	return &tpl, nil
}

func (s *templateServiceImpl) Remove(ctx context.Context, id string) error {
	if err := s.templateRepo.Delete(ctx, id); err != nil {
		s.logger.Error("Failed to remove template", "id", id, "error", err)
		return err
	}
	s.logger.Info("Template removed", "id", id)
	return nil
}

// prepare validates the fields and resolves the approver display name
func (s *templateServiceImpl) prepare(ctx context.Context, tpl *entity.WorkflowStepTemplate) error {
	tpl.StepName = strings.TrimSpace(tpl.StepName)

	var problems []string
	if !tpl.WorkflowType.IsValid() {
		problems = append(problems, fmt.Sprintf("unknown workflow type %q", tpl.WorkflowType))
	}
	if tpl.StepName == "" {
		problems = append(problems, "step name is required")
	}
	if tpl.ApproverID == "" {
		problems = append(problems, "approver is required")
	}
	if tpl.Order < 1 {
		problems = append(problems, "order must be at least 1")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", domainwf.ErrValidation, strings.Join(problems, "; "))
	}

	approver, err := s.userRepo.GetByID(ctx, tpl.ApproverID)
	if err != nil {
		return fmt.Errorf("%w: unknown approver %s", domainwf.ErrValidation, tpl.ApproverID)
	}
	if !approver.IsActive {
		return fmt.Errorf("%w: approver %s is inactive", domainwf.ErrValidation, tpl.ApproverID)
	}
	// the directory is the source of truth for display names
	tpl.ApproverName = approver.FullName()
	return nil
}

func (s *templateServiceImpl) ensureOrderFree(ctx context.Context, tpl *entity.WorkflowStepTemplate) error {
	existing, err := s.templateRepo.ListByType(ctx, tpl.WorkflowType)
	if err != nil {
		return fmt.Errorf("list templates: %w", err)
	}
	for _, other := range existing {
		if other.ID != tpl.ID && other.Order == tpl.Order {
			return fmt.Errorf("%w: %s already has step %q at order %d",
				domainwf.ErrValidation, tpl.WorkflowType, other.StepName, tpl.Order)
		}
	}
	return nil
}

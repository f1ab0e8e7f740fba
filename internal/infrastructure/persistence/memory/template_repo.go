package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/garyjia/hr-portal/internal/application/port"
	"github.com/garyjia/hr-portal/internal/domain/entity"
	domainwf "github.com/garyjia/hr-portal/internal/domain/workflow"
)

// TemplateRepository stores validator templates in memory
type TemplateRepository struct {
	store *Store
}

// NewTemplateRepository creates a template repository over the store
func NewTemplateRepository(store *Store) *TemplateRepository {
	return &TemplateRepository{store: store}
}

func (r *TemplateRepository) Create(ctx context.Context, tpl *entity.WorkflowStepTemplate) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, exists := r.store.templates[tpl.ID]; exists {
		return fmt.Errorf("%w: template %s already exists", domainwf.ErrValidation, tpl.ID)
	}
	if err := r.checkOrderLocked(tpl); err != nil {
		return err
	}
	c := *tpl
	r.store.templates[tpl.ID] = &c
	return nil
}

func (r *TemplateRepository) Update(ctx context.Context, tpl *entity.WorkflowStepTemplate) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, exists := r.store.templates[tpl.ID]; !exists {
		return fmt.Errorf("%w: template %s", domainwf.ErrNotFound, tpl.ID)
	}
	if err := r.checkOrderLocked(tpl); err != nil {
		return err
	}
	c := *tpl
	r.store.templates[tpl.ID] = &c
	return nil
}

func (r *TemplateRepository) Delete(ctx context.Context, id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, exists := r.store.templates[id]; !exists {
		return fmt.Errorf("%w: template %s", domainwf.ErrNotFound, id)
	}
	delete(r.store.templates, id)
	return nil
}

func (r *TemplateRepository) GetByID(ctx context.Context, id string) (*entity.WorkflowStepTemplate, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	tpl, ok := r.store.templates[id]
	if !ok {
		return nil, fmt.Errorf("%w: template %s", domainwf.ErrNotFound, id)
	}
	c := *tpl
	return &c, nil
}

func (r *TemplateRepository) ListByType(ctx context.Context, workflowType entity.RequestType) ([]*entity.WorkflowStepTemplate, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var out []*entity.WorkflowStepTemplate
	for _, tpl := range r.store.templates {
		if tpl.WorkflowType == workflowType {
			c := *tpl
			out = append(out, &c)
		}
	}
	sortTemplates(out)
	return out, nil
}

func (r *TemplateRepository) List(ctx context.Context) ([]*entity.WorkflowStepTemplate, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]*entity.WorkflowStepTemplate, 0, len(r.store.templates))
	for _, tpl := range r.store.templates {
		c := *tpl
		out = append(out, &c)
	}
	sortTemplates(out)
	return out, nil
}

func (r *TemplateRepository) DeleteByApprover(ctx context.Context, approverID string) (int, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	n := 0
	for id, tpl := range r.store.templates {
		if tpl.ApproverID == approverID {
			delete(r.store.templates, id)
			n++
		}
	}
	return n, nil
}

// checkOrderLocked enforces one template per (workflow type, order)
func (r *TemplateRepository) checkOrderLocked(tpl *entity.WorkflowStepTemplate) error {
	for _, other := range r.store.templates {
		if other.ID != tpl.ID && other.WorkflowType == tpl.WorkflowType && other.Order == tpl.Order {
			return fmt.Errorf("%w: %s already has a step at order %d",
				domainwf.ErrValidation, tpl.WorkflowType, tpl.Order)
		}
	}
	return nil
}

// sortTemplates orders by workflow type, then order, then id for stability
func sortTemplates(tpls []*entity.WorkflowStepTemplate) {
	sort.Slice(tpls, func(i, j int) bool {
		a, b := tpls[i], tpls[j]
		if a.WorkflowType != b.WorkflowType {
			return a.WorkflowType < b.WorkflowType
		}
		if a.Order != b.Order {
			return a.Order < b.Order
		}
		return a.ID < b.ID
	})
}

var _ port.TemplateRepository = (*TemplateRepository)(nil)

package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyjia/hr-portal/internal/domain/entity"
	domainwf "github.com/garyjia/hr-portal/internal/domain/workflow"
)

func TestTemplateService_AddAndList(t *testing.T) {
	ctx := context.Background()
	r := newRepos(t)
	svc := NewTemplateService(r.templates, r.users, r.tx, &mockLogger{})

	second, err := svc.Add(ctx, entity.WorkflowStepTemplate{
		WorkflowType: entity.RequestTypeLeave, StepName: "RH", ApproverID: "hr1", Order: 2,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, second.ID)
	assert.Equal(t, "Thomas Leroy", second.ApproverName, "approver name is resolved")

	_, err = svc.Add(ctx, entity.WorkflowStepTemplate{
		WorkflowType: entity.RequestTypeLeave, StepName: "Manager", ApproverID: "manager1", ApproverName: "Sophie", Order: 1,
	})
	require.NoError(t, err)

	tpls, err := svc.ListTemplates(ctx, entity.RequestTypeLeave)
	require.NoError(t, err)
	require.Len(t, tpls, 2)
	assert.Equal(t, "Manager", tpls[0].StepName)
	assert.Equal(t, "Sophie Martin", tpls[0].ApproverName, "caller-supplied names are replaced")
	assert.Equal(t, "RH", tpls[1].StepName)

	empty, err := svc.ListTemplates(ctx, entity.RequestTypeComplaint)
	require.NoError(t, err)
	assert.Empty(t, empty)

	_, err = svc.ListTemplates(ctx, entity.RequestType("other"))
	assert.ErrorIs(t, err, domainwf.ErrValidation)
}

func TestTemplateService_AddValidation(t *testing.T) {
	ctx := context.Background()
	r := newRepos(t)
	svc := NewTemplateService(r.templates, r.users, r.tx, &mockLogger{})

	_, err := svc.Add(ctx, entity.WorkflowStepTemplate{
		WorkflowType: entity.RequestTypeLeave, StepName: "Manager", ApproverID: "manager1", Order: 1,
	})
	require.NoError(t, err)

	tests := []struct {
		name string
		tpl  entity.WorkflowStepTemplate
	}{
		{"duplicate order", entity.WorkflowStepTemplate{WorkflowType: entity.RequestTypeLeave, StepName: "RH", ApproverID: "hr1", Order: 1}},
		{"unknown type", entity.WorkflowStepTemplate{WorkflowType: "other", StepName: "RH", ApproverID: "hr1", Order: 1}},
		{"blank name", entity.WorkflowStepTemplate{WorkflowType: entity.RequestTypeLeave, StepName: "  ", ApproverID: "hr1", Order: 2}},
		{"zero order", entity.WorkflowStepTemplate{WorkflowType: entity.RequestTypeLeave, StepName: "RH", ApproverID: "hr1", Order: 0}},
		{"unknown approver", entity.WorkflowStepTemplate{WorkflowType: entity.RequestTypeLeave, StepName: "RH", ApproverID: "ghost", Order: 2}},
		{"inactive approver", entity.WorkflowStepTemplate{WorkflowType: entity.RequestTypeLeave, StepName: "RH", ApproverID: "gone1", Order: 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Add(ctx, tt.tpl)
			assert.ErrorIs(t, err, domainwf.ErrValidation)
		})
	}

	all, err := svc.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestTemplateService_UpdateAndRemove(t *testing.T) {
	ctx := context.Background()
	r := newRepos(t)
	svc := NewTemplateService(r.templates, r.users, r.tx, &mockLogger{})

	first, err := svc.Add(ctx, entity.WorkflowStepTemplate{
		WorkflowType: entity.RequestTypeComplaint, StepName: "RH", ApproverID: "hr1", Order: 1,
	})
	require.NoError(t, err)
	second, err := svc.Add(ctx, entity.WorkflowStepTemplate{
		WorkflowType: entity.RequestTypeComplaint, StepName: "Direction", ApproverID: "manager1", Order: 2,
	})
	require.NoError(t, err)

	// moving a step onto its own order is fine, onto a sibling's is not
	updated, err := svc.Update(ctx, second.ID, entity.WorkflowStepTemplate{
		WorkflowType: entity.RequestTypeComplaint, StepName: "Direction générale", ApproverID: "manager1", Order: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, second.ID, updated.ID)

	_, err = svc.Update(ctx, second.ID, entity.WorkflowStepTemplate{
		WorkflowType: entity.RequestTypeComplaint, StepName: "Direction", ApproverID: "manager1", Order: 1,
	})
	assert.ErrorIs(t, err, domainwf.ErrValidation)

	// reassigning with the previous approver's name still resolves the new one
	reassigned, err := svc.Update(ctx, second.ID, entity.WorkflowStepTemplate{
		WorkflowType: entity.RequestTypeComplaint, StepName: "Direction générale",
		ApproverID: "hr1", ApproverName: updated.ApproverName, Order: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, "Thomas Leroy", reassigned.ApproverName)

	_, err = svc.Update(ctx, "missing", *first)
	assert.ErrorIs(t, err, domainwf.ErrNotFound)

	require.NoError(t, svc.Remove(ctx, first.ID))
	assert.ErrorIs(t, svc.Remove(ctx, first.ID), domainwf.ErrNotFound)

	tpls, err := svc.ListTemplates(ctx, entity.RequestTypeComplaint)
	require.NoError(t, err)
	require.Len(t, tpls, 1)
	assert.Equal(t, "Direction générale", tpls[0].StepName)
	assert.Equal(t, "Thomas Leroy", tpls[0].ApproverName)
}

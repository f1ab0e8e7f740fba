package workflow

import (
	"context"

	"github.com/garyjia/hr-portal/internal/domain/entity"
	domainwf "github.com/garyjia/hr-portal/internal/domain/workflow"
)

// BuildRequestStateMachine creates the status machine of one request.
// APPROVE lands in in_progress while a step with a greater order remains
// after the current one, and in approved otherwise.
func BuildRequestStateMachine(req *entity.WorkflowRequest) domainwf.StateMachine {
	hasNext := func(context.Context) bool {
		return req.NextStepAfter(req.CurrentStep) != nil
	}
	isLast := func(ctx context.Context) bool {
		return !hasNext(ctx)
	}

	builder := domainwf.NewBuilder()

	builder.Configure(domainwf.StateDraft).
		Permit(domainwf.TriggerSubmit, domainwf.StateSubmitted)

	for _, pending := range []domainwf.State{domainwf.StateSubmitted, domainwf.StateInProgress} {
		builder.Configure(pending).
			PermitIf(domainwf.TriggerApprove, domainwf.StateInProgress, hasNext).
			PermitIf(domainwf.TriggerApprove, domainwf.StateApproved, isLast).
			Permit(domainwf.TriggerReject, domainwf.StateRejected)
	}

	// APPROVED and REJECTED are terminal

	return builder.Build(domainwf.State(req.Status))
}

// AllowedActions lists the triggers the request's current status accepts
func AllowedActions(req *entity.WorkflowRequest) []domainwf.Trigger {
	return BuildRequestStateMachine(req).PermittedTriggers()
}

package event

// Type identifies the type of domain event
type Type string

const (
	TypeRequestCreated   Type = "request.created"
	TypeRequestUpdated   Type = "request.updated"
	TypeRequestSubmitted Type = "request.submitted"
	TypeStepApproved     Type = "step.approved"
	TypeStepAssigned     Type = "step.assigned"
	TypeRequestApproved  Type = "request.approved"
	TypeRequestRejected  Type = "request.rejected"

	// TypeStepReminderDue is published by the reminder worker, not the engine
	TypeStepReminderDue Type = "step.reminder_due"
)

// String returns the string representation of the event type
func (t Type) String() string {
	return string(t)
}

// IsValid checks if the event type is one of the defined constants
func (t Type) IsValid() bool {
	switch t {
	case TypeRequestCreated,
		TypeRequestUpdated,
		TypeRequestSubmitted,
		TypeStepApproved,
		TypeStepAssigned,
		TypeRequestApproved,
		TypeRequestRejected,
		TypeStepReminderDue:
		return true
	default:
		return false
	}
}

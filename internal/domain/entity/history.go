package entity

import "time"

// RequestHistory is the audit trail of a workflow request. One record is
// written per committed engine mutation.
type RequestHistory struct {
	ID             int64     `json:"id"`
	RequestID      string    `json:"request_id"`
	ActorID        string    `json:"actor_id"`
	PreviousStatus string    `json:"previous_status"`
	NewStatus      string    `json:"new_status"`
	Action         string    `json:"action"`
	StepID         string    `json:"step_id,omitempty"`
	Comment        string    `json:"comment,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
}

// History action constants
const (
	ActionCreate      = "CREATE"
	ActionUpdateDraft = "UPDATE_DRAFT"
	ActionSubmit      = "SUBMIT"
	ActionApprove     = "APPROVE"
	ActionReject      = "REJECT"
)

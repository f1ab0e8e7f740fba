package workflow

// Trigger represents an action that moves a request between states
type Trigger string

const (
	// TriggerSubmit commits a draft and materializes its steps
	TriggerSubmit Trigger = "SUBMIT"
	// TriggerApprove approves the active step. Guards pick in_progress while
	// steps remain and approved after the last one.
	TriggerApprove Trigger = "APPROVE"
	// TriggerReject rejects the active step and halts the chain
	TriggerReject Trigger = "REJECT"
)

// String returns the string representation of the trigger
func (t Trigger) String() string {
	return string(t)
}

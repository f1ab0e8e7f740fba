package workflow

import "context"

// StateMachine holds the status of a single request while one engine
// operation runs. It is built from the request's stored status, fired
// once, and its State copied back onto the request before commit.
type StateMachine interface {
	// State is the request status after the last successful Fire
	State() State

	// CanFire reports whether the status has any rule for trigger. A pending
	// request answers true for APPROVE and REJECT even if a guard would refuse.
	CanFire(trigger Trigger) bool

	// Fire moves the request along the first rule of trigger whose guard
	// passes. Unknown triggers and refused guards wrap ErrInvalidTransition.
	Fire(ctx context.Context, trigger Trigger) error

	// PermittedTriggers lists the actions a client may offer for the status,
	// sorted by name. Terminal statuses return none.
	PermittedTriggers() []Trigger
}

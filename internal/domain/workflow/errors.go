package workflow

import (
	"errors"
	"fmt"
)

// Error kinds surfaced by the workflow core. Callers match them with errors.Is;
// every failure wraps exactly one of them.
var (
	// ErrNotFound is returned for an unknown request, step, template or user id
	ErrNotFound = errors.New("not found")

	// ErrInvalidTransition is returned when an action targets the wrong step or a terminal request
	ErrInvalidTransition = errors.New("invalid state transition")

	// ErrValidation is returned when mandatory input is missing or malformed
	ErrValidation = errors.New("validation error")

	// ErrConfiguration is returned when no validator templates exist for a workflow type
	ErrConfiguration = errors.New("configuration error")

	// ErrVersionConflict is returned when a request changed since it was read
	ErrVersionConflict = fmt.Errorf("%w: version conflict", ErrInvalidTransition)

	// ErrGuardFailed is returned when every guard of a trigger rejects the transition
	ErrGuardFailed = fmt.Errorf("%w: guard condition failed", ErrInvalidTransition)
)

package domain

import "errors"

// Message texts are matched by calling layers and existing clients; do
// not reword them.
var (
	// ErrAlreadyExecuted indicates a cancel on a schedule that already ran.
	ErrAlreadyExecuted = errors.New("Cannot cancel an already executed schedule")

	// ErrAlreadyCancelled indicates a second cancel.
	ErrAlreadyCancelled = errors.New("Schedule is already cancelled")

	// ErrEmptyCommandType indicates a schedule without a command to run.
	ErrEmptyCommandType = errors.New("schedule command type cannot be empty")

	// ErrEmptyTarget indicates a schedule without a target aggregate.
	ErrEmptyTarget = errors.New("schedule target aggregate cannot be empty")

	// ErrZeroScheduledFor indicates a schedule without an execution time.
	ErrZeroScheduledFor = errors.New("schedule execution time cannot be zero")
)

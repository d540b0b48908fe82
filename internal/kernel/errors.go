package kernel

import (
	"errors"
	"fmt"
)

// The error message texts below are a boundary contract: calling layers
// pattern-match on them to map errors to client-facing responses. They
// must not be reworded.

// NotFoundError indicates no snapshot exists for the given id.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s not found", e.Entity)
	}
	return fmt.Sprintf("%s with id %s not found", e.Entity, e.ID)
}

// NewNotFound builds a NotFoundError for an entity/id pair.
func NewNotFound(entity, id string) error {
	return &NotFoundError{Entity: entity, ID: id}
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// ConflictError indicates the caller's expected version did not match the
// stored snapshot version. Nothing has been mutated when it is returned.
type ConflictError struct {
	Expected int64
	Found    int64
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("Optimistic concurrency conflict: expected version %d but found version %d", e.Expected, e.Found)
}

// IsConflict reports whether err is a ConflictError.
func IsConflict(err error) bool {
	var c *ConflictError
	return errors.As(err, &c)
}

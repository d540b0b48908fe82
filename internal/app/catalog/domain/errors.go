package domain

import "errors"

// Message texts are matched by calling layers and existing clients; do
// not reword them.
var (
	// ErrPublishArchived indicates a publish on an archived variant.
	ErrPublishArchived = errors.New("Cannot publish an archived variant")

	// ErrAlreadyPublished indicates a second publish.
	ErrAlreadyPublished = errors.New("Variant is already published")

	// ErrNotPublished indicates an unpublish on a variant that is not active.
	ErrNotPublished = errors.New("Variant is not published")

	// ErrAlreadyArchived indicates a second archive.
	ErrAlreadyArchived = errors.New("Variant is already archived")

	// ErrVariantArchived indicates a mutation on an archived variant.
	ErrVariantArchived = errors.New("Variant is archived")

	// ErrDropAlreadyScheduled indicates a second drop on the same variant.
	ErrDropAlreadyScheduled = errors.New("A drop is already scheduled. Cancel it first.")

	// ErrNoDropScheduled indicates a drop cancel with nothing scheduled.
	ErrNoDropScheduled = errors.New("No drop is scheduled")
)

// Validation errors.
var (
	ErrEmptySKU         = errors.New("variant sku cannot be empty")
	ErrEmptyName        = errors.New("variant name cannot be empty")
	ErrNonPositivePrice = errors.New("variant price must be positive")
)

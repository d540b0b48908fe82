package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/murkotick/commerce-kernel/internal/kernel"
)

// AggregateType identifies variant rows in the event and snapshot stores.
const AggregateType = "variant"

// Event types emitted by the Variant aggregate.
const (
	EventVariantCreated      = "variant.created"
	EventVariantPublished    = "variant.published"
	EventVariantUnpublished  = "variant.unpublished"
	EventVariantArchived     = "variant.archived"
	EventVariantPriceChanged = "variant.price_changed"
	EventVariantDropSet      = "variant.drop_scheduled"
	EventVariantDropCleared  = "variant.drop_cancelled"
)

// VariantStatus is the lifecycle state of a variant.
type VariantStatus string

const (
	StatusDraft    VariantStatus = "draft"
	StatusActive   VariantStatus = "active"
	StatusArchived VariantStatus = "archived"
)

// VariantState is the full state carried by snapshots and event payloads.
type VariantState struct {
	VariantID      string          `json:"variantId"`
	SKU            string          `json:"sku"`
	Name           string          `json:"name"`
	Price          decimal.Decimal `json:"price"`
	Status         VariantStatus   `json:"status"`
	DropScheduleID *string         `json:"dropScheduleId,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
	ArchivedAt     *time.Time      `json:"archivedAt,omitempty"`
}

// Variant is a sellable product variant. It stands in for the generated
// per-entity aggregates; anything implementing the kernel contract plugs
// into the same persistence and scheduling machinery.
type Variant struct {
	kernel.Root
	state VariantState
}

// NewVariant creates a draft variant and records its creation event at
// version 0.
func NewVariant(id, correlationID, sku, name string, price decimal.Decimal, actor string, now time.Time) (*Variant, error) {
	sku = strings.TrimSpace(sku)
	name = strings.TrimSpace(name)
	if sku == "" {
		return nil, ErrEmptySKU
	}
	if name == "" {
		return nil, ErrEmptyName
	}
	if !price.IsPositive() {
		return nil, ErrNonPositivePrice
	}

	v := &Variant{
		Root: kernel.NewRoot(AggregateType, id, correlationID),
		state: VariantState{
			VariantID: id,
			SKU:       sku,
			Name:      name,
			Price:     price,
			Status:    StatusDraft,
			CreatedAt: now.UTC(),
			UpdatedAt: now.UTC(),
		},
	}
	if err := v.emit(EventVariantCreated, nil, actor, now); err != nil {
		return nil, err
	}
	return v, nil
}

// LoadVariant reconstructs a variant from its snapshot without touching
// the event list.
func LoadVariant(snap *kernel.Snapshot) (*Variant, error) {
	state, err := kernel.State[VariantState](snap)
	if err != nil {
		return nil, err
	}
	return &Variant{Root: kernel.LoadRoot(snap), state: state}, nil
}

// State returns a copy of the full variant state.
func (v *Variant) State() VariantState { return v.state }

// Snapshot implements kernel.Aggregate.
func (v *Variant) Snapshot() (*kernel.Snapshot, error) {
	return v.MakeSnapshot(v.state)
}

// Publish makes the variant available for sale.
func (v *Variant) Publish(actor string, now time.Time) error {
	if v.state.Status == StatusArchived {
		return ErrPublishArchived
	}
	if v.state.Status == StatusActive {
		return ErrAlreadyPublished
	}
	prior := v.state
	v.state.Status = StatusActive
	v.Bump()
	return v.emit(EventVariantPublished, &prior, actor, now)
}

// Unpublish takes an active variant off sale, back to draft.
func (v *Variant) Unpublish(actor string, now time.Time) error {
	if v.state.Status != StatusActive {
		return ErrNotPublished
	}
	prior := v.state
	v.state.Status = StatusDraft
	v.Bump()
	return v.emit(EventVariantUnpublished, &prior, actor, now)
}

// Archive soft-deletes the variant and clears any scheduled drop
// reference; the schedule itself is cancelled by the usecase.
func (v *Variant) Archive(actor string, now time.Time) error {
	if v.state.Status == StatusArchived {
		return ErrAlreadyArchived
	}
	prior := v.state
	t := now.UTC()
	v.state.Status = StatusArchived
	v.state.ArchivedAt = &t
	v.state.DropScheduleID = nil
	v.Bump()
	return v.emit(EventVariantArchived, &prior, actor, now)
}

// ChangePrice sets a new positive price.
func (v *Variant) ChangePrice(price decimal.Decimal, actor string, now time.Time) error {
	if v.state.Status == StatusArchived {
		return ErrVariantArchived
	}
	if !price.IsPositive() {
		return ErrNonPositivePrice
	}
	prior := v.state
	v.state.Price = price
	v.Bump()
	return v.emit(EventVariantPriceChanged, &prior, actor, now)
}

// ScheduleDrop links the variant to a pending drop schedule. Only one
// drop may be scheduled at a time.
func (v *Variant) ScheduleDrop(scheduleID, actor string, now time.Time) error {
	if v.state.Status == StatusArchived {
		return ErrVariantArchived
	}
	if v.state.DropScheduleID != nil {
		return ErrDropAlreadyScheduled
	}
	prior := v.state
	v.state.DropScheduleID = &scheduleID
	v.Bump()
	return v.emit(EventVariantDropSet, &prior, actor, now)
}

// CancelDrop clears the scheduled drop reference.
func (v *Variant) CancelDrop(actor string, now time.Time) error {
	if v.state.DropScheduleID == nil {
		return ErrNoDropScheduled
	}
	prior := v.state
	v.state.DropScheduleID = nil
	v.Bump()
	return v.emit(EventVariantDropCleared, &prior, actor, now)
}

func (v *Variant) emit(eventType string, prior *VariantState, actor string, now time.Time) error {
	v.state.UpdatedAt = now.UTC()
	payload, err := kernel.MarshalPayload(prior, v.state)
	if err != nil {
		return err
	}
	v.Record(eventType, payload, actor, now)
	return nil
}

var _ kernel.Aggregate = (*Variant)(nil)

package kernel

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Aggregate is the contract every versioned, event-emitting entity
// implements. Version equals the number of committed mutations: creation
// is version 0 and each successful transition bumps it by exactly 1.
type Aggregate interface {
	AggregateID() string
	AggregateType() string
	Version() int64
	CorrelationID() string
	UncommittedEvents() []Event
	ClearUncommitted()
	Snapshot() (*Snapshot, error)
}

// Root is the base every aggregate embeds. It owns identity, version and
// the pending event list; concrete aggregates own their state struct and
// call Bump/Record from their transition methods.
type Root struct {
	id            string
	aggregateType string
	correlationID string
	version       int64
	pending       []Event
}

// NewRoot starts a fresh aggregate identity at version 0. The creation
// event must be recorded by the caller before the aggregate is staged.
func NewRoot(aggregateType, id, correlationID string) Root {
	return Root{
		id:            id,
		aggregateType: aggregateType,
		correlationID: correlationID,
		pending:       make([]Event, 0, 1),
	}
}

// LoadRoot rebuilds an aggregate identity from a snapshot without
// touching the event list.
func LoadRoot(snap *Snapshot) Root {
	return Root{
		id:            snap.AggregateID,
		aggregateType: snap.AggregateType,
		correlationID: snap.CorrelationID,
		version:       snap.Version,
		pending:       make([]Event, 0),
	}
}

func (r *Root) AggregateID() string   { return r.id }
func (r *Root) AggregateType() string { return r.aggregateType }
func (r *Root) Version() int64        { return r.version }
func (r *Root) CorrelationID() string { return r.correlationID }

// UncommittedEvents returns the events recorded since the last commit.
func (r *Root) UncommittedEvents() []Event { return r.pending }

// ClearUncommitted drops the pending events after they have been staged.
func (r *Root) ClearUncommitted() { r.pending = r.pending[:0] }

// Bump advances the version by one. Transition methods call it after
// their invariants pass and before recording the resulting event.
func (r *Root) Bump() { r.version++ }

// Record appends one event at the current version. payload must already
// be the marshaled before/after body.
func (r *Root) Record(eventType string, payload []byte, actor string, now time.Time) {
	r.pending = append(r.pending, Event{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		AggregateID:   r.id,
		AggregateType: r.aggregateType,
		CorrelationID: r.correlationID,
		Version:       r.version,
		Actor:         actor,
		OccurredAt:    now.UTC(),
		Payload:       payload,
	})
}

// MakeSnapshot marshals the aggregate's full state into a snapshot row at
// the current version.
func (r *Root) MakeSnapshot(state any) (*Snapshot, error) {
	b, err := json.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("marshal snapshot for %s %s: %w", r.aggregateType, r.id, err)
	}
	return &Snapshot{
		AggregateID:   r.id,
		AggregateType: r.aggregateType,
		CorrelationID: r.correlationID,
		Version:       r.version,
		Payload:       b,
	}, nil
}

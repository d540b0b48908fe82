package kernel

import (
	"encoding/json"
	"fmt"
	"time"
)

// Event is an immutable record of one aggregate transition. Payload holds
// the JSON of a Payload[S] value: the full prior and new state of the
// aggregate, not a diff, so consumers never need replay logic.
type Event struct {
	EventID       string
	EventType     string
	AggregateID   string
	AggregateType string
	CorrelationID string
	Version       int64
	Actor         string
	OccurredAt    time.Time
	Payload       []byte
}

// Payload is the before/after body carried by every event. Prior is nil
// for creation events. S is the aggregate's state struct, so the payload
// shape can never drift from the snapshot shape.
type Payload[S any] struct {
	Prior *S `json:"priorState,omitempty"`
	New   S  `json:"newState"`
}

// MarshalPayload encodes a before/after pair for an event body.
func MarshalPayload[S any](prior *S, next S) ([]byte, error) {
	b, err := json.Marshal(Payload[S]{Prior: prior, New: next})
	if err != nil {
		return nil, fmt.Errorf("marshal event payload: %w", err)
	}
	return b, nil
}

// UnmarshalPayload decodes an event body back into its typed form.
func UnmarshalPayload[S any](data []byte) (Payload[S], error) {
	var p Payload[S]
	if err := json.Unmarshal(data, &p); err != nil {
		return Payload[S]{}, fmt.Errorf("unmarshal event payload: %w", err)
	}
	return p, nil
}

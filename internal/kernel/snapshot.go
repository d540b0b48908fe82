package kernel

import (
	"encoding/json"
	"fmt"
)

// Snapshot is the latest materialized state of one aggregate. It is the
// canonical read path; the event log is never replayed from zero.
type Snapshot struct {
	AggregateID   string
	AggregateType string
	CorrelationID string
	Version       int64
	Payload       []byte
}

// State decodes the snapshot payload into the aggregate's state struct.
func State[S any](snap *Snapshot) (S, error) {
	var s S
	if err := json.Unmarshal(snap.Payload, &s); err != nil {
		return s, fmt.Errorf("unmarshal snapshot for %s %s: %w", snap.AggregateType, snap.AggregateID, err)
	}
	return s, nil
}

package m_event

import (
	"time"

	"github.com/murkotick/commerce-kernel/internal/pkg/batcher"
	"github.com/murkotick/commerce-kernel/internal/pkg/timeutil"
)

// insertSQL is append-only; the primary key (aggregate_type, aggregate_id,
// version) makes a duplicate version abort the whole batch, which is the
// backstop for optimistic concurrency.
const insertSQL = `INSERT INTO ` + TableName + ` (` +
	ColAggregateType + `, ` + ColAggregateID + `, ` + ColVersion + `, ` +
	ColEventID + `, ` + ColEventType + `, ` + ColCorrelationID + `, ` +
	ColActor + `, ` + ColPayload + `, ` + ColOccurredAt +
	`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

// InsertCommand builds the batched append for one event row.
func InsertCommand(aggregateType, aggregateID string, version int64,
	eventID, eventType, correlationID, actor string,
	payload []byte, occurredAt time.Time) batcher.Command {

	return batcher.Command{
		SQL:  insertSQL,
		Kind: batcher.KindInsert,
		Args: []any{
			aggregateType, aggregateID, version,
			eventID, eventType, correlationID,
			actor, string(payload), timeutil.Format(occurredAt),
		},
	}
}

// SelectByAggregateSQL returns event rows for one aggregate in version
// order. Used by tests and diagnostics; the snapshot is the read path.
const SelectByAggregateSQL = `SELECT ` +
	ColVersion + `, ` + ColEventID + `, ` + ColEventType + `, ` +
	ColCorrelationID + `, ` + ColActor + `, ` + ColPayload + `, ` + ColOccurredAt +
	` FROM ` + TableName +
	` WHERE ` + ColAggregateType + ` = ? AND ` + ColAggregateID + ` = ?` +
	` ORDER BY ` + ColVersion + ` ASC`

// Row is the scan target for SelectByAggregateSQL.
type Row struct {
	Version       int64  `db:"version"`
	EventID       string `db:"event_id"`
	EventType     string `db:"event_type"`
	CorrelationID string `db:"correlation_id"`
	Actor         string `db:"actor"`
	Payload       string `db:"payload"`
	OccurredAt    string `db:"occurred_at"`
}

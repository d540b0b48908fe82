package m_outbox

import (
	"time"

	"github.com/murkotick/commerce-kernel/internal/pkg/batcher"
	"github.com/murkotick/commerce-kernel/internal/pkg/timeutil"
)

const insertSQL = `INSERT INTO ` + TableName + ` (` +
	ColEventID + `, ` + ColEventType + `, ` + ColAggregateType + `, ` +
	ColAggregateID + `, ` + ColPayload + `, ` + ColStatus + `, ` +
	ColRetryCount + `, ` + ColCreatedAt +
	`) VALUES (?, ?, ?, ?, ?, ?, 0, ?)`

// InsertCommand builds the batched pending-delivery insert. It rides in
// the same group as its source event, so the two are one atomic fact.
func InsertCommand(eventID, eventType, aggregateType, aggregateID string,
	payload []byte, createdAt time.Time) batcher.Command {

	return batcher.Command{
		SQL:  insertSQL,
		Kind: batcher.KindInsert,
		Args: []any{
			eventID, eventType, aggregateType, aggregateID,
			string(payload), StatusPending, timeutil.Format(createdAt),
		},
	}
}

// SelectPendingSQL feeds the relay: oldest pending rows first.
const SelectPendingSQL = `SELECT ` +
	ColEventID + `, ` + ColEventType + `, ` + ColAggregateType + `, ` +
	ColAggregateID + `, ` + ColPayload + `, ` + ColRetryCount + `, ` + ColCreatedAt +
	` FROM ` + TableName +
	` WHERE ` + ColStatus + ` = '` + StatusPending + `'` +
	` ORDER BY ` + ColCreatedAt + ` ASC LIMIT ?`

// MarkProcessedSQL records a successful delivery.
const MarkProcessedSQL = `UPDATE ` + TableName + ` SET ` +
	ColStatus + ` = '` + StatusProcessed + `', ` + ColProcessedAt + ` = ?` +
	` WHERE ` + ColEventID + ` = ?`

// MarkRetrySQL counts a failed delivery attempt but leaves the row pending.
const MarkRetrySQL = `UPDATE ` + TableName + ` SET ` +
	ColRetryCount + ` = ` + ColRetryCount + ` + 1, ` + ColLastError + ` = ?` +
	` WHERE ` + ColEventID + ` = ?`

// MarkFailedSQL parks a row permanently after retries are exhausted.
const MarkFailedSQL = `UPDATE ` + TableName + ` SET ` +
	ColStatus + ` = '` + StatusFailed + `', ` + ColLastError + ` = ?` +
	` WHERE ` + ColEventID + ` = ?`

// Row is the scan target for SelectPendingSQL.
type Row struct {
	EventID       string `db:"event_id"`
	EventType     string `db:"event_type"`
	AggregateType string `db:"aggregate_type"`
	AggregateID   string `db:"aggregate_id"`
	Payload       string `db:"payload"`
	RetryCount    int    `db:"retry_count"`
	CreatedAt     string `db:"created_at"`
}

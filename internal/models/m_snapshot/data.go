package m_snapshot

import (
	"time"

	"github.com/murkotick/commerce-kernel/internal/pkg/batcher"
	"github.com/murkotick/commerce-kernel/internal/pkg/timeutil"
)

// upsertSQL only applies when the incoming version is newer, so a stale
// write queued before a flush can never regress a fresher snapshot.
const upsertSQL = `INSERT INTO ` + TableName + ` (` +
	ColAggregateType + `, ` + ColAggregateID + `, ` + ColCorrelationID + `, ` +
	ColVersion + `, ` + ColPayload + `, ` + ColUpdatedAt +
	`) VALUES (?, ?, ?, ?, ?, ?)` +
	` ON CONFLICT(` + ColAggregateType + `, ` + ColAggregateID + `) DO UPDATE SET ` +
	ColCorrelationID + ` = excluded.` + ColCorrelationID + `, ` +
	ColVersion + ` = excluded.` + ColVersion + `, ` +
	ColPayload + ` = excluded.` + ColPayload + `, ` +
	ColUpdatedAt + ` = excluded.` + ColUpdatedAt +
	` WHERE excluded.` + ColVersion + ` > ` + TableName + `.` + ColVersion

// UpsertCommand builds the batched snapshot upsert.
func UpsertCommand(aggregateType, aggregateID, correlationID string,
	version int64, payload []byte, updatedAt time.Time) batcher.Command {

	return batcher.Command{
		SQL:  upsertSQL,
		Kind: batcher.KindUpdate,
		Args: []any{
			aggregateType, aggregateID, correlationID,
			version, string(payload), timeutil.Format(updatedAt),
		},
	}
}

// SelectSQL is the synchronous read path: it bypasses the batch queue and
// returns the latest committed snapshot for one aggregate.
const SelectSQL = `SELECT ` +
	ColAggregateType + `, ` + ColAggregateID + `, ` + ColCorrelationID + `, ` +
	ColVersion + `, ` + ColPayload +
	` FROM ` + TableName +
	` WHERE ` + ColAggregateType + ` = ? AND ` + ColAggregateID + ` = ?`

// Row is the scan target for SelectSQL.
type Row struct {
	AggregateType string `db:"aggregate_type"`
	AggregateID   string `db:"aggregate_id"`
	CorrelationID string `db:"correlation_id"`
	Version       int64  `db:"version"`
	Payload       string `db:"payload"`
}

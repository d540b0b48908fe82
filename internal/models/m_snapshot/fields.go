package m_snapshot

const (
	TableName = "snapshots"

	ColAggregateType = "aggregate_type"
	ColAggregateID   = "aggregate_id"
	ColCorrelationID = "correlation_id"
	ColVersion       = "version"
	ColPayload       = "payload"
	ColUpdatedAt     = "updated_at"
)

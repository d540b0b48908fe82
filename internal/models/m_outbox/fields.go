package m_outbox

const (
	TableName = "outbox_events"

	ColEventID       = "event_id"
	ColEventType     = "event_type"
	ColAggregateType = "aggregate_type"
	ColAggregateID   = "aggregate_id"
	ColPayload       = "payload"
	ColStatus        = "status"
	ColRetryCount    = "retry_count"
	ColCreatedAt     = "created_at"
	ColProcessedAt   = "processed_at"
	ColLastError     = "last_error"
)

// Delivery statuses.
const (
	StatusPending   = "pending"
	StatusProcessed = "processed"
	StatusFailed    = "failed"
)

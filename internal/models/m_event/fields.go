package m_event

const (
	TableName = "events"

	ColAggregateType = "aggregate_type"
	ColAggregateID   = "aggregate_id"
	ColVersion       = "version"
	ColEventID       = "event_id"
	ColEventType     = "event_type"
	ColCorrelationID = "correlation_id"
	ColActor         = "actor"
	ColPayload       = "payload"
	ColOccurredAt    = "occurred_at"
)

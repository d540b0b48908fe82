package m_schedule_view

const (
	TableName = "schedule_view"

	ColScheduleID          = "schedule_id"
	ColTargetAggregateID   = "target_aggregate_id"
	ColTargetAggregateType = "target_aggregate_type"
	ColCommandType         = "command_type"
	ColCommandData         = "command_data"
	ColScheduledFor        = "scheduled_for"
	ColStatus              = "status"
	ColRetryCount          = "retry_count"
	ColNextRetryAt         = "next_retry_at"
	ColErrorMessage        = "error_message"
	ColCreatedBy           = "created_by"
	ColVersion             = "version"
	ColUpdatedAt           = "updated_at"
)

package dto

// VariantDTO contains the full variant view row returned by read
// queries. Timestamps are the storage-format strings; use
// timeutil.ParsePtr to turn them into time.Time.
type VariantDTO struct {
	VariantID      string
	SKU            string
	Name           string
	Price          string
	Status         string
	DropScheduleID *string
	Version        int64
	UpdatedAt      string
}

// ScheduleDTO contains the schedule view row returned by read queries.
type ScheduleDTO struct {
	ScheduleID          string
	TargetAggregateID   string
	TargetAggregateType string
	CommandType         string
	CommandData         string
	ScheduledFor        string
	Status              string
	RetryCount          int
	NextRetryAt         *string
	ErrorMessage        string
	CreatedBy           string
	Version             int64
	UpdatedAt           string
}

package m_variant_view

const (
	TableName = "variant_view"

	ColVariantID      = "variant_id"
	ColSKU            = "sku"
	ColName           = "name"
	ColPrice          = "price"
	ColStatus         = "status"
	ColDropScheduleID = "drop_schedule_id"
	ColVersion        = "version"
	ColUpdatedAt      = "updated_at"
)

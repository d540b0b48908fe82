package m_variant_view

import (
	"time"

	"github.com/murkotick/commerce-kernel/internal/pkg/batcher"
	"github.com/murkotick/commerce-kernel/internal/pkg/timeutil"
)

// upsertSQL replaces the whole row keyed by variant id. Re-applying the
// same event version produces an identical row, which keeps projection
// handlers idempotent.
const upsertSQL = `INSERT INTO ` + TableName + ` (` +
	ColVariantID + `, ` + ColSKU + `, ` + ColName + `, ` + ColPrice + `, ` +
	ColStatus + `, ` + ColDropScheduleID + `, ` + ColVersion + `, ` + ColUpdatedAt +
	`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)` +
	` ON CONFLICT(` + ColVariantID + `) DO UPDATE SET ` +
	ColSKU + ` = excluded.` + ColSKU + `, ` +
	ColName + ` = excluded.` + ColName + `, ` +
	ColPrice + ` = excluded.` + ColPrice + `, ` +
	ColStatus + ` = excluded.` + ColStatus + `, ` +
	ColDropScheduleID + ` = excluded.` + ColDropScheduleID + `, ` +
	ColVersion + ` = excluded.` + ColVersion + `, ` +
	ColUpdatedAt + ` = excluded.` + ColUpdatedAt

// UpsertCommand builds the batched view upsert for one variant.
func UpsertCommand(variantID, sku, name, price, status string,
	dropScheduleID *string, version int64, updatedAt time.Time) batcher.Command {

	var dropID any
	if dropScheduleID != nil {
		dropID = *dropScheduleID
	}
	return batcher.Command{
		SQL:  upsertSQL,
		Kind: batcher.KindUpdate,
		Args: []any{
			variantID, sku, name, price, status,
			dropID, version, timeutil.Format(updatedAt),
		},
	}
}

// SelectByIDSQL returns one view row.
const SelectByIDSQL = `SELECT ` +
	ColVariantID + `, ` + ColSKU + `, ` + ColName + `, ` + ColPrice + `, ` +
	ColStatus + `, ` + ColDropScheduleID + `, ` + ColVersion + `, ` + ColUpdatedAt +
	` FROM ` + TableName + ` WHERE ` + ColVariantID + ` = ?`

// SelectByStatusSQL lists view rows filtered by status, newest first.
const SelectByStatusSQL = `SELECT ` +
	ColVariantID + `, ` + ColSKU + `, ` + ColName + `, ` + ColPrice + `, ` +
	ColStatus + `, ` + ColDropScheduleID + `, ` + ColVersion + `, ` + ColUpdatedAt +
	` FROM ` + TableName +
	` WHERE ` + ColStatus + ` = ?` +
	` ORDER BY ` + ColUpdatedAt + ` DESC LIMIT ? OFFSET ?`

// Row is the scan target for the view selects.
type Row struct {
	VariantID      string  `db:"variant_id"`
	SKU            string  `db:"sku"`
	Name           string  `db:"name"`
	Price          string  `db:"price"`
	Status         string  `db:"status"`
	DropScheduleID *string `db:"drop_schedule_id"`
	Version        int64   `db:"version"`
	UpdatedAt      string  `db:"updated_at"`
}

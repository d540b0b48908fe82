package m_schedule_view

import (
	"time"

	"github.com/murkotick/commerce-kernel/internal/pkg/batcher"
	"github.com/murkotick/commerce-kernel/internal/pkg/timeutil"
)

const upsertSQL = `INSERT INTO ` + TableName + ` (` +
	ColScheduleID + `, ` + ColTargetAggregateID + `, ` + ColTargetAggregateType + `, ` +
	ColCommandType + `, ` + ColCommandData + `, ` + ColScheduledFor + `, ` +
	ColStatus + `, ` + ColRetryCount + `, ` + ColNextRetryAt + `, ` +
	ColErrorMessage + `, ` + ColCreatedBy + `, ` + ColVersion + `, ` + ColUpdatedAt +
	`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)` +
	` ON CONFLICT(` + ColScheduleID + `) DO UPDATE SET ` +
	ColCommandData + ` = excluded.` + ColCommandData + `, ` +
	ColScheduledFor + ` = excluded.` + ColScheduledFor + `, ` +
	ColStatus + ` = excluded.` + ColStatus + `, ` +
	ColRetryCount + ` = excluded.` + ColRetryCount + `, ` +
	ColNextRetryAt + ` = excluded.` + ColNextRetryAt + `, ` +
	ColErrorMessage + ` = excluded.` + ColErrorMessage + `, ` +
	ColVersion + ` = excluded.` + ColVersion + `, ` +
	ColUpdatedAt + ` = excluded.` + ColUpdatedAt

// UpsertCommand builds the batched view upsert for one schedule.
func UpsertCommand(scheduleID, targetAggregateID, targetAggregateType,
	commandType string, commandData []byte, scheduledFor time.Time,
	status string, retryCount int, nextRetryAt *time.Time,
	errorMessage, createdBy string, version int64, updatedAt time.Time) batcher.Command {

	var nextRetry any
	if nextRetryAt != nil {
		nextRetry = timeutil.Format(*nextRetryAt)
	}
	return batcher.Command{
		SQL:  upsertSQL,
		Kind: batcher.KindUpdate,
		Args: []any{
			scheduleID, targetAggregateID, targetAggregateType,
			commandType, string(commandData), timeutil.Format(scheduledFor),
			status, retryCount, nextRetry,
			errorMessage, createdBy, version, timeutil.Format(updatedAt),
		},
	}
}

// SelectDueSQL finds pending schedules that are due: first attempts whose
// scheduled_for has passed and retries whose next_retry_at has passed.
const SelectDueSQL = `SELECT ` +
	ColScheduleID + `, ` + ColTargetAggregateID + `, ` + ColTargetAggregateType + `, ` +
	ColCommandType + `, ` + ColCommandData + `, ` + ColScheduledFor + `, ` +
	ColStatus + `, ` + ColRetryCount + `, ` + ColNextRetryAt + `, ` +
	ColErrorMessage + `, ` + ColCreatedBy + `, ` + ColVersion + `, ` + ColUpdatedAt +
	` FROM ` + TableName +
	` WHERE ` + ColStatus + ` = 'pending' AND ((` +
	ColNextRetryAt + ` IS NULL AND ` + ColScheduledFor + ` <= ?) OR ` +
	ColNextRetryAt + ` <= ?)` +
	` ORDER BY ` + ColScheduledFor + ` ASC LIMIT ?`

// SelectByIDSQL returns one view row.
const SelectByIDSQL = `SELECT ` +
	ColScheduleID + `, ` + ColTargetAggregateID + `, ` + ColTargetAggregateType + `, ` +
	ColCommandType + `, ` + ColCommandData + `, ` + ColScheduledFor + `, ` +
	ColStatus + `, ` + ColRetryCount + `, ` + ColNextRetryAt + `, ` +
	ColErrorMessage + `, ` + ColCreatedBy + `, ` + ColVersion + `, ` + ColUpdatedAt +
	` FROM ` + TableName + ` WHERE ` + ColScheduleID + ` = ?`

// Row is the scan target for the view selects.
type Row struct {
	ScheduleID          string  `db:"schedule_id"`
	TargetAggregateID   string  `db:"target_aggregate_id"`
	TargetAggregateType string  `db:"target_aggregate_type"`
	CommandType         string  `db:"command_type"`
	CommandData         string  `db:"command_data"`
	ScheduledFor        string  `db:"scheduled_for"`
	Status              string  `db:"status"`
	RetryCount          int     `db:"retry_count"`
	NextRetryAt         *string `db:"next_retry_at"`
	ErrorMessage        string  `db:"error_message"`
	CreatedBy           string  `db:"created_by"`
	Version             int64   `db:"version"`
	UpdatedAt           string  `db:"updated_at"`
}

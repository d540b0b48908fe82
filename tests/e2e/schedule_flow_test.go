package e2e

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/murkotick/commerce-kernel/internal/app/catalog/usecases/archive_variant"
	"github.com/murkotick/commerce-kernel/internal/app/catalog/usecases/cancel_drop"
	"github.com/murkotick/commerce-kernel/internal/app/catalog/usecases/schedule_drop"
	"github.com/murkotick/commerce-kernel/internal/app/schedule/poller"
	"github.com/murkotick/commerce-kernel/internal/app/schedule/usecases/cancel_schedule"
	"github.com/murkotick/commerce-kernel/internal/app/schedule/usecases/create_schedule"
	"github.com/murkotick/commerce-kernel/internal/app/schedule/usecases/update_schedule"
	"github.com/murkotick/commerce-kernel/internal/kernel"
	"github.com/murkotick/commerce-kernel/internal/pkg/timeutil"
)

type failingHandler struct{ err error }

func (h failingHandler) Execute(context.Context, poller.Command) error { return h.err }

func mustScheduleDrop(t *testing.T, variantID string, at time.Time) string {
	t.Helper()
	scheduleID, err := dropUC.Execute(context.Background(), schedule_drop.Request{
		VariantID:       variantID,
		ExpectedVersion: kernel.AnyVersion(),
		DropAt:          at,
		Actor:           "merch",
	})
	require.NoError(t, err)
	return scheduleID
}

func TestDropExecutesWhenDue(t *testing.T) {
	ctx := context.Background()
	variantID := mustCreateVariant(t, "SKU-DROP")
	dropAt := clk.Now().Add(time.Hour)
	scheduleID := mustScheduleDrop(t, variantID, dropAt)

	// The schedule and the variant's link to it committed together.
	sched, err := readModel.GetSchedule(ctx, scheduleID)
	require.NoError(t, err)
	assert.Equal(t, "pending", sched.Status)
	assert.Equal(t, variantID, sched.TargetAggregateID)
	v, err := readModel.GetVariant(ctx, variantID)
	require.NoError(t, err)
	require.NotNil(t, v.DropScheduleID)
	assert.Equal(t, scheduleID, *v.DropScheduleID)

	// Not due yet: a tick changes nothing.
	require.NoError(t, plr.Tick(ctx))
	v, err = readModel.GetVariant(ctx, variantID)
	require.NoError(t, err)
	assert.Equal(t, "draft", v.Status)

	// Past the drop time the poller publishes the variant and marks the
	// schedule executed.
	clk.Advance(time.Hour + time.Minute)
	require.NoError(t, plr.Tick(ctx))

	v, err = readModel.GetVariant(ctx, variantID)
	require.NoError(t, err)
	assert.Equal(t, "active", v.Status)

	sched, err = readModel.GetSchedule(ctx, scheduleID)
	require.NoError(t, err)
	assert.Equal(t, "executed", sched.Status)
	assert.Nil(t, sched.NextRetryAt)
	assert.Empty(t, sched.ErrorMessage)

	// An executed schedule cannot be cancelled.
	err = cancelSchedUC.Execute(ctx, cancel_schedule.Request{
		ScheduleID:      scheduleID,
		ExpectedVersion: kernel.AnyVersion(),
		Actor:           "merch",
	})
	require.Error(t, err)
	assert.Equal(t, "Cannot cancel an already executed schedule", err.Error())
}

func TestFailingCommandRetriesWithBackoff(t *testing.T) {
	ctx := context.Background()
	plr.RegisterCommandHandler("test.fail", failingHandler{err: errors.New("boom")})

	scheduleID, err := createSchedUC.Execute(ctx, create_schedule.Request{
		TargetAggregateID:   "target-1",
		TargetAggregateType: "variant",
		CommandType:         "test.fail",
		ScheduledFor:        clk.Now().Add(time.Minute),
		CreatedBy:           "tester",
	})
	require.NoError(t, err)

	clk.Advance(2 * time.Minute)

	// Attempts 1 through 4 keep the schedule pending with doubling
	// retry delays.
	wantDelays := []time.Duration{2 * time.Minute, 4 * time.Minute, 8 * time.Minute, 16 * time.Minute}
	for i, d := range wantDelays {
		require.NoError(t, plr.Tick(ctx))
		sched, err := readModel.GetSchedule(ctx, scheduleID)
		require.NoError(t, err)
		assert.Equal(t, "pending", sched.Status)
		assert.Equal(t, i+1, sched.RetryCount)
		assert.Equal(t, "boom", sched.ErrorMessage)
		require.NotNil(t, sched.NextRetryAt)
		assert.Equal(t, timeutil.Format(clk.Now().Add(d)), *sched.NextRetryAt)

		// Before the retry time the schedule is not due.
		require.NoError(t, plr.Tick(ctx))
		again, err := readModel.GetSchedule(ctx, scheduleID)
		require.NoError(t, err)
		assert.Equal(t, i+1, again.RetryCount)

		clk.Advance(d + time.Second)
	}

	// The fifth failure parks the schedule.
	require.NoError(t, plr.Tick(ctx))
	sched, err := readModel.GetSchedule(ctx, scheduleID)
	require.NoError(t, err)
	assert.Equal(t, "failed", sched.Status)
	assert.Equal(t, 5, sched.RetryCount)
	assert.Nil(t, sched.NextRetryAt)

	// Parked schedules are ignored by later ticks but can be cancelled.
	require.NoError(t, plr.Tick(ctx))
	require.NoError(t, cancelSchedUC.Execute(ctx, cancel_schedule.Request{
		ScheduleID:      scheduleID,
		ExpectedVersion: kernel.AnyVersion(),
		Actor:           "tester",
	}))
	sched, err = readModel.GetSchedule(ctx, scheduleID)
	require.NoError(t, err)
	assert.Equal(t, "cancelled", sched.Status)
}

func TestUnknownCommandTypeCountsAsFailure(t *testing.T) {
	ctx := context.Background()

	scheduleID, err := createSchedUC.Execute(ctx, create_schedule.Request{
		TargetAggregateID:   "target-2",
		TargetAggregateType: "variant",
		CommandType:         "nobody.handles.this",
		ScheduledFor:        clk.Now().Add(time.Minute),
		CreatedBy:           "tester",
	})
	require.NoError(t, err)

	clk.Advance(2 * time.Minute)
	require.NoError(t, plr.Tick(ctx))

	sched, err := readModel.GetSchedule(ctx, scheduleID)
	require.NoError(t, err)
	assert.Equal(t, "pending", sched.Status)
	assert.Equal(t, 1, sched.RetryCount)
	assert.Equal(t, "no handler registered for command type nobody.handles.this", sched.ErrorMessage)
}

func TestCancelDropUnlinksBothSides(t *testing.T) {
	ctx := context.Background()
	variantID := mustCreateVariant(t, "SKU-CANCEL-DROP")
	scheduleID := mustScheduleDrop(t, variantID, clk.Now().Add(time.Hour))

	require.NoError(t, cancelDrpUC.Execute(ctx, cancel_drop.Request{
		VariantID:       variantID,
		ExpectedVersion: kernel.AnyVersion(),
		Actor:           "merch",
	}))

	v, err := readModel.GetVariant(ctx, variantID)
	require.NoError(t, err)
	assert.Nil(t, v.DropScheduleID)
	sched, err := readModel.GetSchedule(ctx, scheduleID)
	require.NoError(t, err)
	assert.Equal(t, "cancelled", sched.Status)

	// The cancelled schedule never fires.
	clk.Advance(2 * time.Hour)
	require.NoError(t, plr.Tick(ctx))
	v, err = readModel.GetVariant(ctx, variantID)
	require.NoError(t, err)
	assert.Equal(t, "draft", v.Status)
}

func TestSecondDropRequiresCancellingFirst(t *testing.T) {
	variantID := mustCreateVariant(t, "SKU-DOUBLE-DROP")
	mustScheduleDrop(t, variantID, clk.Now().Add(time.Hour))

	_, err := dropUC.Execute(context.Background(), schedule_drop.Request{
		VariantID:       variantID,
		ExpectedVersion: kernel.AnyVersion(),
		DropAt:          clk.Now().Add(2 * time.Hour),
		Actor:           "merch",
	})
	require.Error(t, err)
	assert.Equal(t, "A drop is already scheduled. Cancel it first.", err.Error())
}

func TestArchiveCancelsPendingDrop(t *testing.T) {
	ctx := context.Background()
	variantID := mustCreateVariant(t, "SKU-ARCHIVE-DROP")
	scheduleID := mustScheduleDrop(t, variantID, clk.Now().Add(time.Hour))

	require.NoError(t, archiveUC.Execute(ctx, archive_variant.Request{
		VariantID:       variantID,
		ExpectedVersion: kernel.AnyVersion(),
		Actor:           "merch",
	}))

	v, err := readModel.GetVariant(ctx, variantID)
	require.NoError(t, err)
	assert.Equal(t, "archived", v.Status)
	assert.Nil(t, v.DropScheduleID)

	sched, err := readModel.GetSchedule(ctx, scheduleID)
	require.NoError(t, err)
	assert.Equal(t, "cancelled", sched.Status)
}

func TestUpdateScheduleMovesDueTime(t *testing.T) {
	ctx := context.Background()
	variantID := mustCreateVariant(t, "SKU-RESCHEDULE")
	scheduleID := mustScheduleDrop(t, variantID, clk.Now().Add(time.Hour))

	newTime := clk.Now().Add(30 * time.Minute)
	require.NoError(t, updateSchedUC.Execute(ctx, update_schedule.Request{
		ScheduleID:      scheduleID,
		ExpectedVersion: kernel.AnyVersion(),
		ScheduledFor:    newTime,
		Actor:           "merch",
	}))

	sched, err := readModel.GetSchedule(ctx, scheduleID)
	require.NoError(t, err)
	assert.Equal(t, timeutil.Format(newTime), sched.ScheduledFor)

	clk.Advance(31 * time.Minute)
	require.NoError(t, plr.Tick(ctx))

	v, err := readModel.GetVariant(ctx, variantID)
	require.NoError(t, err)
	assert.Equal(t, "active", v.Status)

	// Once executed, rescheduling is rejected.
	err = updateSchedUC.Execute(ctx, update_schedule.Request{
		ScheduleID:      scheduleID,
		ExpectedVersion: kernel.AnyVersion(),
		ScheduledFor:    clk.Now().Add(time.Hour),
		Actor:           "merch",
	})
	require.Error(t, err)
	assert.Equal(t, "Cannot update a schedule in status executed", err.Error())
}

// Package schedule wires the schedule aggregate's read model and poller
// into the kernel.
package schedule

import (
	"context"

	"github.com/murkotick/commerce-kernel/internal/app/schedule/domain"
	"github.com/murkotick/commerce-kernel/internal/kernel"
	"github.com/murkotick/commerce-kernel/internal/models/m_schedule_view"
	"github.com/murkotick/commerce-kernel/internal/projection"
)

// RegisterProjections subscribes the schedule_view handler to every
// schedule event type. The view is what the poller scans for due work,
// so it commits in the same batch as the write side.
func RegisterProjections(e *projection.Engine) {
	for _, et := range []string{
		domain.EventScheduleCreated,
		domain.EventScheduleUpdated,
		domain.EventScheduleCancelled,
		domain.EventScheduleExecuted,
		domain.EventScheduleFailed,
	} {
		e.Register(et, projectScheduleView)
	}
}

// projectScheduleView upserts the denormalized schedule row from the
// event's new state. Re-applying the same event version writes an
// identical row.
func projectScheduleView(_ context.Context, ev kernel.Event, w kernel.Writer) error {
	p, err := kernel.UnmarshalPayload[domain.ScheduleState](ev.Payload)
	if err != nil {
		return err
	}
	s := p.New
	w.Queue(m_schedule_view.UpsertCommand(
		s.ScheduleID, s.TargetAggregateID, s.TargetAggregateType,
		s.CommandType, s.CommandData, s.ScheduledFor,
		string(s.Status), s.RetryCount, s.NextRetryAt,
		s.ErrorMessage, s.CreatedBy, ev.Version, s.UpdatedAt,
	))
	return nil
}

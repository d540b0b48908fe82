package update_schedule

import (
	"context"
	"encoding/json"
	"time"

	"github.com/murkotick/commerce-kernel/internal/app/schedule/domain"
	"github.com/murkotick/commerce-kernel/internal/kernel"
	"github.com/murkotick/commerce-kernel/internal/pkg/clock"
)

// Request reschedules a pending deferred command.
type Request struct {
	ScheduleID      string
	ExpectedVersion kernel.ExpectedVersion
	ScheduledFor    time.Time
	CommandData     json.RawMessage
	Actor           string
}

type Interactor struct {
	UoW   *kernel.UnitOfWork
	Clock clock.Clock
}

func NewInteractor(uow *kernel.UnitOfWork, clk clock.Clock) *Interactor {
	return &Interactor{UoW: uow, Clock: clk}
}

func (it *Interactor) Execute(ctx context.Context, req Request) error {
	now := it.Clock.Now()

	return it.UoW.WithTransaction(ctx, func(ctx context.Context, r *kernel.Repos) error {
		snap, err := r.Snapshots.Get(ctx, domain.AggregateType, req.ScheduleID)
		if err != nil {
			return err
		}
		if snap == nil {
			return kernel.NewNotFound("Schedule", req.ScheduleID)
		}
		if err := req.ExpectedVersion.Check(snap); err != nil {
			return err
		}
		sched, err := domain.LoadSchedule(snap)
		if err != nil {
			return err
		}
		if err := sched.Update(req.ScheduledFor, req.CommandData, req.Actor, now); err != nil {
			return err
		}
		return r.Stage(ctx, sched)
	})
}

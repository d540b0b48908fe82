package cancel_drop

import (
	"context"

	scheduledomain "github.com/murkotick/commerce-kernel/internal/app/schedule/domain"

	"github.com/murkotick/commerce-kernel/internal/app/catalog/domain"
	"github.com/murkotick/commerce-kernel/internal/kernel"
	"github.com/murkotick/commerce-kernel/internal/pkg/clock"
)

// Request cancels a variant's pending drop: the schedule is cancelled
// and the variant's link cleared in one logical transaction.
type Request struct {
	VariantID       string
	ExpectedVersion kernel.ExpectedVersion
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
		snap, err := r.Snapshots.Get(ctx, domain.AggregateType, req.VariantID)
		if err != nil {
			return err
		}
		if snap == nil {
			return kernel.NewNotFound("Variant", req.VariantID)
		}
		if err := req.ExpectedVersion.Check(snap); err != nil {
			return err
		}
		v, err := domain.LoadVariant(snap)
		if err != nil {
			return err
		}
		dropID := v.State().DropScheduleID
		if err := v.CancelDrop(req.Actor, now); err != nil {
			return err
		}

		schedSnap, err := r.Snapshots.Get(ctx, scheduledomain.AggregateType, *dropID)
		if err != nil {
			return err
		}
		if schedSnap == nil {
			return kernel.NewNotFound("Schedule", *dropID)
		}
		sched, err := scheduledomain.LoadSchedule(schedSnap)
		if err != nil {
			return err
		}
		if err := sched.Cancel(req.Actor, now); err != nil {
			return err
		}

		if err := r.Stage(ctx, v); err != nil {
			return err
		}
		return r.Stage(ctx, sched)
	})
}

package archive_variant

import (
	"context"

	scheduledomain "github.com/murkotick/commerce-kernel/internal/app/schedule/domain"

	"github.com/murkotick/commerce-kernel/internal/app/catalog/domain"
	"github.com/murkotick/commerce-kernel/internal/kernel"
	"github.com/murkotick/commerce-kernel/internal/pkg/clock"
)

// Request soft-deletes a variant. Any pending drop schedule for the
// variant is cancelled in the same logical transaction.
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
		if err := v.Archive(req.Actor, now); err != nil {
			return err
		}
		if err := r.Stage(ctx, v); err != nil {
			return err
		}

		if dropID == nil {
			return nil
		}
		// Cancel the linked drop so the poller never fires against an
		// archived variant. Same group, same physical commit.
		schedSnap, err := r.Snapshots.Get(ctx, scheduledomain.AggregateType, *dropID)
		if err != nil {
			return err
		}
		if schedSnap == nil {
			return nil
		}
		sched, err := scheduledomain.LoadSchedule(schedSnap)
		if err != nil {
			return err
		}
		if sched.State().Status != scheduledomain.StatusPending {
			return nil
		}
		if err := sched.Cancel(req.Actor, now); err != nil {
			return err
		}
		return r.Stage(ctx, sched)
	})
}

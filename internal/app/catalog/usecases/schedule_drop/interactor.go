package schedule_drop

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	scheduledomain "github.com/murkotick/commerce-kernel/internal/app/schedule/domain"

	"github.com/murkotick/commerce-kernel/internal/app/catalog/domain"
	"github.com/murkotick/commerce-kernel/internal/kernel"
	"github.com/murkotick/commerce-kernel/internal/pkg/clock"
)

// Request defers a publish of the variant to a future time (a "drop").
// The schedule and the variant's link to it commit atomically.
type Request struct {
	VariantID       string
	ExpectedVersion kernel.ExpectedVersion
	DropAt          time.Time
	CommandType     string // defaults to variant.publish
	Actor           string
}

type Interactor struct {
	UoW   *kernel.UnitOfWork
	Clock clock.Clock
}

func NewInteractor(uow *kernel.UnitOfWork, clk clock.Clock) *Interactor {
	return &Interactor{UoW: uow, Clock: clk}
}

// Execute links a new pending schedule to the variant and returns the
// schedule id.
func (it *Interactor) Execute(ctx context.Context, req Request) (string, error) {
	now := it.Clock.Now()
	scheduleID := uuid.NewString()
	commandType := req.CommandType
	if commandType == "" {
		commandType = "variant.publish"
	}

	err := it.UoW.WithTransaction(ctx, func(ctx context.Context, r *kernel.Repos) error {
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
		if err := v.ScheduleDrop(scheduleID, req.Actor, now); err != nil {
			return err
		}

		sched, err := scheduledomain.NewSchedule(scheduledomain.NewScheduleParams{
			ScheduleID:          scheduleID,
			CorrelationID:       v.CorrelationID(),
			TargetAggregateID:   req.VariantID,
			TargetAggregateType: domain.AggregateType,
			CommandType:         commandType,
			CommandData:         json.RawMessage(`{}`),
			ScheduledFor:        req.DropAt,
			CreatedBy:           req.Actor,
		}, now)
		if err != nil {
			return err
		}

		if err := r.Stage(ctx, v); err != nil {
			return err
		}
		return r.Stage(ctx, sched)
	})
	if err != nil {
		return "", err
	}
	return scheduleID, nil
}

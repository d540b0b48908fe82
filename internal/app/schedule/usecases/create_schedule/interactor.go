package create_schedule

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/murkotick/commerce-kernel/internal/app/schedule/domain"
	"github.com/murkotick/commerce-kernel/internal/kernel"
	"github.com/murkotick/commerce-kernel/internal/pkg/clock"
)

// Request is the application-level create-schedule request.
type Request struct {
	TargetAggregateID   string
	TargetAggregateType string
	CommandType         string
	CommandData         json.RawMessage
	ScheduledFor        time.Time
	CreatedBy           string
}

// Interactor creates a deferred command for the poller to execute.
type Interactor struct {
	UoW   *kernel.UnitOfWork
	Clock clock.Clock
}

func NewInteractor(uow *kernel.UnitOfWork, clk clock.Clock) *Interactor {
	return &Interactor{UoW: uow, Clock: clk}
}

// Execute creates the schedule and commits it, returning the new id.
func (it *Interactor) Execute(ctx context.Context, req Request) (string, error) {
	now := it.Clock.Now()
	id := uuid.NewString()

	err := it.UoW.WithTransaction(ctx, func(ctx context.Context, r *kernel.Repos) error {
		sched, err := domain.NewSchedule(domain.NewScheduleParams{
			ScheduleID:          id,
			CorrelationID:       uuid.NewString(),
			TargetAggregateID:   req.TargetAggregateID,
			TargetAggregateType: req.TargetAggregateType,
			CommandType:         req.CommandType,
			CommandData:         req.CommandData,
			ScheduledFor:        req.ScheduledFor,
			CreatedBy:           req.CreatedBy,
		}, now)
		if err != nil {
			return err
		}
		return r.Stage(ctx, sched)
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

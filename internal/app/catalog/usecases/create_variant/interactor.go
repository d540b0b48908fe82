package create_variant

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/murkotick/commerce-kernel/internal/app/catalog/domain"
	"github.com/murkotick/commerce-kernel/internal/kernel"
	"github.com/murkotick/commerce-kernel/internal/pkg/clock"
)

// Request is the application-level create-variant request.
type Request struct {
	SKU   string
	Name  string
	Price decimal.Decimal
	Actor string
}

// Interactor creates a draft variant: event, snapshot, outbox entry and
// view row land in one physical commit.
type Interactor struct {
	UoW   *kernel.UnitOfWork
	Clock clock.Clock
}

func NewInteractor(uow *kernel.UnitOfWork, clk clock.Clock) *Interactor {
	return &Interactor{UoW: uow, Clock: clk}
}

// Execute creates the variant and returns its id.
func (it *Interactor) Execute(ctx context.Context, req Request) (string, error) {
	now := it.Clock.Now()
	id := uuid.NewString()

	err := it.UoW.WithTransaction(ctx, func(ctx context.Context, r *kernel.Repos) error {
		v, err := domain.NewVariant(id, uuid.NewString(), req.SKU, req.Name, req.Price, req.Actor, now)
		if err != nil {
			return err
		}
		return r.Stage(ctx, v)
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

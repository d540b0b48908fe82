package contracts

import (
	"context"

	"github.com/murkotick/commerce-kernel/internal/app/catalog/dto"
)

// ReadModel is the query-side surface over the denormalized views.
type ReadModel interface {
	GetVariant(ctx context.Context, variantID string) (*dto.VariantDTO, error)
	ListVariants(ctx context.Context, status string, limit, offset int) ([]*dto.VariantDTO, error)
	GetSchedule(ctx context.Context, scheduleID string) (*dto.ScheduleDTO, error)
}

// Package catalog wires the variant aggregate's read model and scheduled
// command handlers into the kernel.
package catalog

import (
	"context"

	"github.com/murkotick/commerce-kernel/internal/app/catalog/domain"
	"github.com/murkotick/commerce-kernel/internal/kernel"
	"github.com/murkotick/commerce-kernel/internal/models/m_variant_view"
	"github.com/murkotick/commerce-kernel/internal/projection"
)

// RegisterProjections subscribes the variant_view handler to every
// variant event type.
func RegisterProjections(e *projection.Engine) {
	for _, et := range []string{
		domain.EventVariantCreated,
		domain.EventVariantPublished,
		domain.EventVariantUnpublished,
		domain.EventVariantArchived,
		domain.EventVariantPriceChanged,
		domain.EventVariantDropSet,
		domain.EventVariantDropCleared,
	} {
		e.Register(et, projectVariantView)
	}
}

// projectVariantView upserts the denormalized variant row from the
// event's new state. Re-applying the same event version writes an
// identical row.
func projectVariantView(_ context.Context, ev kernel.Event, w kernel.Writer) error {
	p, err := kernel.UnmarshalPayload[domain.VariantState](ev.Payload)
	if err != nil {
		return err
	}
	s := p.New
	w.Queue(m_variant_view.UpsertCommand(
		s.VariantID, s.SKU, s.Name, s.Price.String(),
		string(s.Status), s.DropScheduleID, ev.Version, s.UpdatedAt,
	))
	return nil
}

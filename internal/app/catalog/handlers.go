package catalog

import (
	"context"
	"errors"

	"github.com/murkotick/commerce-kernel/internal/app/catalog/domain"
	"github.com/murkotick/commerce-kernel/internal/app/catalog/usecases/publish_variant"
	"github.com/murkotick/commerce-kernel/internal/app/catalog/usecases/unpublish_variant"
	"github.com/murkotick/commerce-kernel/internal/app/schedule/poller"
	"github.com/murkotick/commerce-kernel/internal/kernel"
)

// Command types the catalog registers with the poller.
const (
	CommandPublishVariant   = "variant.publish"
	CommandUnpublishVariant = "variant.unpublish"
)

// PublishHandler executes a deferred variant publish. Scheduled commands
// run against current state, so the version check is skipped, and a
// variant already in the target state counts as success (the poller
// delivers at least once).
type PublishHandler struct {
	Publish *publish_variant.Interactor
}

func (h *PublishHandler) Execute(ctx context.Context, cmd poller.Command) error {
	err := h.Publish.Execute(ctx, publish_variant.Request{
		VariantID:       cmd.TargetAggregateID,
		ExpectedVersion: kernel.AnyVersion(),
		Actor:           cmd.CreatedBy,
	})
	if errors.Is(err, domain.ErrAlreadyPublished) {
		return nil
	}
	return err
}

// UnpublishHandler executes a deferred variant unpublish.
type UnpublishHandler struct {
	Unpublish *unpublish_variant.Interactor
}

func (h *UnpublishHandler) Execute(ctx context.Context, cmd poller.Command) error {
	err := h.Unpublish.Execute(ctx, unpublish_variant.Request{
		VariantID:       cmd.TargetAggregateID,
		ExpectedVersion: kernel.AnyVersion(),
		Actor:           cmd.CreatedBy,
	})
	if errors.Is(err, domain.ErrNotPublished) {
		return nil
	}
	return err
}

// RegisterCommandHandlers wires the catalog's deferred commands into the
// poller.
func RegisterCommandHandlers(p *poller.Poller, publish *publish_variant.Interactor, unpublish *unpublish_variant.Interactor) {
	p.RegisterCommandHandler(CommandPublishVariant, &PublishHandler{Publish: publish})
	p.RegisterCommandHandler(CommandUnpublishVariant, &UnpublishHandler{Unpublish: unpublish})
}

package catalog_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/murkotick/commerce-kernel/internal/app/catalog"
	"github.com/murkotick/commerce-kernel/internal/app/catalog/domain"
	"github.com/murkotick/commerce-kernel/internal/kernel"
	"github.com/murkotick/commerce-kernel/internal/models/m_variant_view"
	"github.com/murkotick/commerce-kernel/internal/pkg/batcher"
	"github.com/murkotick/commerce-kernel/internal/pkg/clock"
	"github.com/murkotick/commerce-kernel/internal/pkg/sqlitetest"
	"github.com/murkotick/commerce-kernel/internal/projection"
)

func projectionEngine() *projection.Engine {
	e := projection.NewEngine()
	catalog.RegisterProjections(e)
	return e
}

func TestVariantViewFollowsEvents(t *testing.T) {
	db := sqlitetest.Open(t)
	b := batcher.New(db, batcher.Config{FlushInterval: 5 * time.Millisecond}, nil)
	b.Start()
	t.Cleanup(func() { b.Stop(context.Background()) })

	engine := projectionEngine()
	clk := clock.NewFake(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	uow := kernel.NewUnitOfWork(db, b, engine, clk, nil)
	ctx := context.Background()

	err := uow.WithTransaction(ctx, func(ctx context.Context, r *kernel.Repos) error {
		v, err := domain.NewVariant("v-1", "corr-1", "SKU-1", "Tee", decimal.NewFromInt(25), "tester", clk.Now())
		if err != nil {
			return err
		}
		if err := v.Publish("tester", clk.Now()); err != nil {
			return err
		}
		return r.Stage(ctx, v)
	})
	require.NoError(t, err)

	var row m_variant_view.Row
	require.NoError(t, db.Get(&row, m_variant_view.SelectByIDSQL, "v-1"))
	assert.Equal(t, "SKU-1", row.SKU)
	assert.Equal(t, "active", row.Status)
	assert.Equal(t, "25", row.Price)
	assert.Equal(t, int64(1), row.Version)
	assert.Nil(t, row.DropScheduleID)
}

func TestVariantProjectionIsIdempotent(t *testing.T) {
	db := sqlitetest.Open(t)
	b := batcher.New(db, batcher.Config{FlushInterval: 5 * time.Millisecond}, nil)
	b.Start()
	t.Cleanup(func() { b.Stop(context.Background()) })

	engine := projectionEngine()
	clk := clock.NewFake(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	uow := kernel.NewUnitOfWork(db, b, nil, clk, nil)
	ctx := context.Background()

	v, err := domain.NewVariant("v-1", "corr-1", "SKU-1", "Tee", decimal.NewFromInt(25), "tester", clk.Now())
	require.NoError(t, err)
	events := v.UncommittedEvents()
	require.Len(t, events, 1)
	ev := events[0]

	apply := func() {
		err := uow.WithTransaction(ctx, func(ctx context.Context, r *kernel.Repos) error {
			return engine.Dispatch(ctx, ev, r)
		})
		require.NoError(t, err)
	}
	apply()
	apply()

	var rows []m_variant_view.Row
	require.NoError(t, db.Select(&rows, m_variant_view.SelectByIDSQL, "v-1"))
	require.Len(t, rows, 1)
	assert.Equal(t, "SKU-1", rows[0].SKU)
	assert.Equal(t, "draft", rows[0].Status)
	assert.Equal(t, int64(0), rows[0].Version)
}

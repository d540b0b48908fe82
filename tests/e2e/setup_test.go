package e2e

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/murkotick/commerce-kernel/internal/app/catalog"
	"github.com/murkotick/commerce-kernel/internal/app/catalog/queries"
	"github.com/murkotick/commerce-kernel/internal/app/catalog/usecases/archive_variant"
	"github.com/murkotick/commerce-kernel/internal/app/catalog/usecases/cancel_drop"
	"github.com/murkotick/commerce-kernel/internal/app/catalog/usecases/change_price"
	"github.com/murkotick/commerce-kernel/internal/app/catalog/usecases/create_variant"
	"github.com/murkotick/commerce-kernel/internal/app/catalog/usecases/publish_variant"
	"github.com/murkotick/commerce-kernel/internal/app/catalog/usecases/schedule_drop"
	"github.com/murkotick/commerce-kernel/internal/app/catalog/usecases/unpublish_variant"
	"github.com/murkotick/commerce-kernel/internal/app/schedule"
	"github.com/murkotick/commerce-kernel/internal/app/schedule/poller"
	"github.com/murkotick/commerce-kernel/internal/app/schedule/usecases/cancel_schedule"
	"github.com/murkotick/commerce-kernel/internal/app/schedule/usecases/create_schedule"
	"github.com/murkotick/commerce-kernel/internal/app/schedule/usecases/update_schedule"
	"github.com/murkotick/commerce-kernel/internal/kernel"
	"github.com/murkotick/commerce-kernel/internal/pkg/batcher"
	"github.com/murkotick/commerce-kernel/internal/pkg/clock"
	"github.com/murkotick/commerce-kernel/internal/pkg/sqlitetest"
	"github.com/murkotick/commerce-kernel/internal/projection"
)

var (
	db  *sqlx.DB
	clk *clock.FakeClock
	uow *kernel.UnitOfWork
	plr *poller.Poller

	createUC    *create_variant.Interactor
	publishUC   *publish_variant.Interactor
	unpublishUC *unpublish_variant.Interactor
	archiveUC   *archive_variant.Interactor
	priceUC     *change_price.Interactor
	dropUC      *schedule_drop.Interactor
	cancelDrpUC *cancel_drop.Interactor

	createSchedUC *create_schedule.Interactor
	updateSchedUC *update_schedule.Interactor
	cancelSchedUC *cancel_schedule.Interactor

	readModel *queries.SqliteReadModel
)

func TestMain(m *testing.M) {
	clk = clock.NewFake(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))

	var err error
	db, err = sqlx.Open("sqlite", ":memory:")
	if err != nil {
		panic(fmt.Sprintf("open in-memory sqlite: %v", err))
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(sqlitetest.Schema); err != nil {
		panic(fmt.Sprintf("apply schema: %v", err))
	}

	// A fast timer keeps WithTransaction latency low without relying on
	// the threshold flush.
	b := batcher.New(db, batcher.Config{FlushInterval: 5 * time.Millisecond}, nil)
	b.Start()

	engine := projection.NewEngine()
	catalog.RegisterProjections(engine)
	schedule.RegisterProjections(engine)
	uow = kernel.NewUnitOfWork(db, b, engine, clk, nil)

	createUC = create_variant.NewInteractor(uow, clk)
	publishUC = publish_variant.NewInteractor(uow, clk)
	unpublishUC = unpublish_variant.NewInteractor(uow, clk)
	archiveUC = archive_variant.NewInteractor(uow, clk)
	priceUC = change_price.NewInteractor(uow, clk)
	dropUC = schedule_drop.NewInteractor(uow, clk)
	cancelDrpUC = cancel_drop.NewInteractor(uow, clk)
	createSchedUC = create_schedule.NewInteractor(uow, clk)
	updateSchedUC = update_schedule.NewInteractor(uow, clk)
	cancelSchedUC = cancel_schedule.NewInteractor(uow, clk)

	readModel = queries.NewSqliteReadModel(db)

	// The poller is driven manually via Tick so tests control time.
	plr = poller.New(db, uow, clk, poller.Config{Interval: time.Hour}, nil)
	catalog.RegisterCommandHandlers(plr, publishUC, unpublishUC)

	code := m.Run()

	_ = b.Stop(context.Background())
	_ = db.Close()
	os.Exit(code)
}

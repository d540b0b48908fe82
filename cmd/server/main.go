package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/murkotick/commerce-kernel/internal/app/catalog"
	"github.com/murkotick/commerce-kernel/internal/app/catalog/usecases/publish_variant"
	"github.com/murkotick/commerce-kernel/internal/app/catalog/usecases/unpublish_variant"
	"github.com/murkotick/commerce-kernel/internal/app/schedule"
	"github.com/murkotick/commerce-kernel/internal/app/schedule/poller"
	"github.com/murkotick/commerce-kernel/internal/config"
	"github.com/murkotick/commerce-kernel/internal/kernel"
	"github.com/murkotick/commerce-kernel/internal/outbox"
	"github.com/murkotick/commerce-kernel/internal/pkg/batcher"
	"github.com/murkotick/commerce-kernel/internal/pkg/clock"
	"github.com/murkotick/commerce-kernel/internal/pkg/logger"
	"github.com/murkotick/commerce-kernel/internal/projection"
)

func main() {
	cfg := config.Load()

	zlog, err := logger.New(cfg.AppMode)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer zlog.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle SIGINT/SIGTERM.
	go func() {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
		<-ch
		zlog.Info("shutdown signal received")
		cancel()
	}()

	// The embedded store has a single physical writer: the batcher.
	db, err := sqlx.Open("sqlite", cfg.DBPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		zlog.Fatal("open database", zap.String("path", cfg.DBPath), zap.Error(err))
	}
	defer db.Close()
	db.SetMaxOpenConns(1)

	clk := clock.RealClock{}

	b := batcher.New(db, batcher.Config{
		FlushInterval:      cfg.BatchFlushInterval,
		BatchSizeThreshold: cfg.BatchSizeThreshold,
		MaxQueueDepth:      cfg.BatchMaxQueueDepth,
	}, zlog)
	b.Start()

	engine := projection.NewEngine()
	catalog.RegisterProjections(engine)
	schedule.RegisterProjections(engine)

	uow := kernel.NewUnitOfWork(db, b, engine, clk, zlog)

	p := poller.New(db, uow, clk, poller.Config{
		Interval:   cfg.PollInterval,
		MaxRetries: cfg.ScheduleMaxRetries,
	}, zlog)
	catalog.RegisterCommandHandlers(p,
		publish_variant.NewInteractor(uow, clk),
		unpublish_variant.NewInteractor(uow, clk),
	)
	p.Start(ctx)

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	defer rdb.Close()

	relay := outbox.NewRelay(db, outbox.NewRedisPublisher(rdb), clk, outbox.Config{
		Interval:      cfg.OutboxPollInterval,
		BatchSize:     cfg.OutboxBatchSize,
		MaxRetries:    cfg.OutboxMaxRetries,
		ChannelPrefix: cfg.OutboxChannelPrefix,
	}, zlog)
	relay.Run(ctx)

	zlog.Info("commerce kernel started",
		zap.String("db_path", cfg.DBPath),
		zap.Duration("flush_interval", cfg.BatchFlushInterval),
		zap.Duration("poll_interval", cfg.PollInterval))

	<-ctx.Done()

	// Stop producers before the batcher so the final flush drains
	// everything they queued.
	p.Stop()
	relay.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := b.Stop(shutdownCtx); err != nil {
		zlog.Error("batcher drain failed", zap.Error(err))
	}

	zlog.Info("server stopped")
}

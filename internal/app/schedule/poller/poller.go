// Package poller executes due schedules independently of request
// traffic, reusing the same Unit of Work stack as external callers.
package poller

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/murkotick/commerce-kernel/internal/app/schedule/domain"
	"github.com/murkotick/commerce-kernel/internal/kernel"
	"github.com/murkotick/commerce-kernel/internal/models/m_schedule_view"
	"github.com/murkotick/commerce-kernel/internal/pkg/clock"
	"github.com/murkotick/commerce-kernel/internal/pkg/timeutil"
)

// Actor recorded on schedule transitions driven by the poller.
const Actor = "scheduler"

// Command is the deferred command handed to a registered handler.
type Command struct {
	ScheduleID          string
	TargetAggregateID   string
	TargetAggregateType string
	CommandType         string
	Data                json.RawMessage
	CreatedBy           string
}

// CommandHandler executes one deferred command. Execution is
// at-least-once: a crash after the handler commits but before the
// schedule transition is recorded re-runs the handler on the next tick,
// so handlers must be idempotent.
type CommandHandler interface {
	Execute(ctx context.Context, cmd Command) error
}

// Config controls the poll loop.
type Config struct {
	Interval   time.Duration
	MaxRetries int
	BatchSize  int
}

func (c Config) withDefaults() Config {
	if c.Interval <= 0 {
		c.Interval = 5 * time.Second
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = domain.DefaultMaxRetries
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 50
	}
	return c
}

// Poller scans for due schedules on its own timer and invokes the
// registered handler for each one.
type Poller struct {
	db  *sqlx.DB
	uow *kernel.UnitOfWork
	clk clock.Clock
	log *zap.Logger
	cfg Config

	mu       sync.RWMutex
	handlers map[string]CommandHandler

	stop      chan struct{}
	wg        sync.WaitGroup
	startOnce sync.Once
	stopOnce  sync.Once
}

// New creates a poller bound to the given Unit of Work stack.
func New(db *sqlx.DB, uow *kernel.UnitOfWork, clk clock.Clock, cfg Config, log *zap.Logger) *Poller {
	if log == nil {
		log = zap.NewNop()
	}
	if clk == nil {
		clk = clock.RealClock{}
	}
	return &Poller{
		db:       db,
		uow:      uow,
		clk:      clk,
		log:      log,
		cfg:      cfg.withDefaults(),
		handlers: make(map[string]CommandHandler),
		stop:     make(chan struct{}),
	}
}

// RegisterCommandHandler maps a command type to its handler.
func (p *Poller) RegisterCommandHandler(commandType string, h CommandHandler) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.handlers[commandType] = h
}

func (p *Poller) handler(commandType string) CommandHandler {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.handlers[commandType]
}

// Start launches the tick loop.
func (p *Poller) Start(ctx context.Context) {
	p.startOnce.Do(func() {
		p.wg.Add(1)
		go p.run(ctx)
	})
}

func (p *Poller) run(ctx context.Context) {
	defer p.wg.Done()
	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-p.stop:
			return
		case <-ticker.C:
			if err := p.Tick(ctx); err != nil {
				p.log.Error("poll tick failed", zap.Error(err))
			}
		}
	}
}

// Stop halts the tick loop and waits for the in-flight tick.
func (p *Poller) Stop() {
	p.stopOnce.Do(func() { close(p.stop) })
	p.wg.Wait()
}

// Tick runs one poll pass: find due schedules, execute each handler in
// its own Unit of Work, then record the outcome on the schedule in a
// second Unit of Work.
func (p *Poller) Tick(ctx context.Context) error {
	now := timeutil.Format(p.clk.Now())

	var due []m_schedule_view.Row
	if err := p.db.SelectContext(ctx, &due, m_schedule_view.SelectDueSQL, now, now, p.cfg.BatchSize); err != nil {
		return fmt.Errorf("select due schedules: %w", err)
	}

	for _, row := range due {
		if err := p.executeOne(ctx, row); err != nil {
			p.log.Error("schedule transition failed",
				zap.String("schedule_id", row.ScheduleID),
				zap.Error(err))
		}
	}
	return nil
}

func (p *Poller) executeOne(ctx context.Context, row m_schedule_view.Row) error {
	var execErr error
	if h := p.handler(row.CommandType); h != nil {
		execErr = h.Execute(ctx, Command{
			ScheduleID:          row.ScheduleID,
			TargetAggregateID:   row.TargetAggregateID,
			TargetAggregateType: row.TargetAggregateType,
			CommandType:         row.CommandType,
			Data:                json.RawMessage(row.CommandData),
			CreatedBy:           row.CreatedBy,
		})
	} else {
		execErr = fmt.Errorf("no handler registered for command type %s", row.CommandType)
	}

	if execErr != nil {
		p.log.Warn("scheduled command failed",
			zap.String("schedule_id", row.ScheduleID),
			zap.String("command_type", row.CommandType),
			zap.Int("retry_count", row.RetryCount),
			zap.Error(execErr))
	}

	// The schedule's own transition runs in its own Unit of Work so a
	// crash mid-execution leaves the schedule pending and retryable.
	return p.uow.WithTransaction(ctx, func(ctx context.Context, r *kernel.Repos) error {
		snap, err := r.Snapshots.Get(ctx, domain.AggregateType, row.ScheduleID)
		if err != nil {
			return err
		}
		if snap == nil {
			return kernel.NewNotFound("Schedule", row.ScheduleID)
		}
		sched, err := domain.LoadSchedule(snap)
		if err != nil {
			return err
		}
		now := p.clk.Now()
		if execErr == nil {
			if err := sched.MarkExecuted(Actor, now); err != nil {
				return err
			}
		} else {
			if err := sched.MarkFailed(execErr.Error(), p.cfg.MaxRetries, Actor, now); err != nil {
				return err
			}
		}
		return r.Stage(ctx, sched)
	})
}

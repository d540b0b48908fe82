// Package batcher implements group commit: SQL mutations from many
// concurrent logical operations are queued and committed together in one
// physical transaction, amortizing commit cost on the single embedded
// database connection.
package batcher

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// ErrQueueFull is returned by Enqueue when accepting a group would exceed
// MaxQueueDepth. Callers should fail fast or retry the whole operation.
var ErrQueueFull = errors.New("batch queue is full")

// CommitError wraps a failed flush. Every logical operation whose
// commands were in the batch receives it; the outcome of the operation is
// unknown and it must be retried in full.
type CommitError struct {
	Cause error
}

func (e *CommitError) Error() string {
	return fmt.Sprintf("batch commit failed: %v", e.Cause)
}

func (e *CommitError) Unwrap() error { return e.Cause }

// IsCommitError reports whether err is a CommitError.
func IsCommitError(err error) bool {
	var ce *CommitError
	return errors.As(err, &ce)
}

// Config controls flush cadence and backpressure.
type Config struct {
	// FlushInterval is the periodic flush timer armed by Start.
	FlushInterval time.Duration
	// BatchSizeThreshold triggers an immediate flush once the queued
	// command count reaches it, bounding latency under load.
	BatchSizeThreshold int
	// MaxQueueDepth is the maximum queued command count before Enqueue
	// rejects with ErrQueueFull.
	MaxQueueDepth int
}

func (c Config) withDefaults() Config {
	if c.FlushInterval <= 0 {
		c.FlushInterval = 50 * time.Millisecond
	}
	if c.BatchSizeThreshold <= 0 {
		c.BatchSizeThreshold = 200
	}
	if c.MaxQueueDepth <= 0 {
		c.MaxQueueDepth = 5000
	}
	return c
}

// group is one logical operation's commands plus its result channel.
// Groups enter and leave the queue whole; they are never split across two
// physical commits.
type group struct {
	cmds   []Command
	result chan error
}

// Batcher is an owned, injectable write-combining engine. Construct
// isolated instances per test; there is no package-level singleton.
type Batcher struct {
	db  *sqlx.DB
	cfg Config
	log *zap.Logger

	mu    sync.Mutex
	queue []*group
	depth int

	kick chan struct{}
	stop chan struct{}
	wg   sync.WaitGroup

	startOnce sync.Once
	stopOnce  sync.Once
}

// New creates a Batcher bound to the given database handle.
func New(db *sqlx.DB, cfg Config, log *zap.Logger) *Batcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Batcher{
		db:   db,
		cfg:  cfg.withDefaults(),
		log:  log,
		kick: make(chan struct{}, 1),
		stop: make(chan struct{}),
	}
}

// Enqueue adds one logical operation's commands as a single unsplittable
// group. The returned channel delivers exactly one result: nil once the
// group's flush commits, or the flush error. The group is admitted
// atomically under the queue lock, so a concurrent flush can never
// observe part of it.
func (b *Batcher) Enqueue(ctx context.Context, cmds []Command) (<-chan error, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	done := make(chan error, 1)
	if len(cmds) == 0 {
		done <- nil
		return done, nil
	}

	b.mu.Lock()
	if b.depth+len(cmds) > b.cfg.MaxQueueDepth {
		b.mu.Unlock()
		return nil, ErrQueueFull
	}
	b.queue = append(b.queue, &group{cmds: cmds, result: done})
	b.depth += len(cmds)
	overThreshold := b.depth >= b.cfg.BatchSizeThreshold
	b.mu.Unlock()

	if overThreshold {
		select {
		case b.kick <- struct{}{}:
		default:
		}
	}
	return done, nil
}

// Start arms the periodic flush timer. Safe to call once.
func (b *Batcher) Start() {
	b.startOnce.Do(func() {
		b.wg.Add(1)
		go b.run()
	})
}

func (b *Batcher) run() {
	defer b.wg.Done()
	ticker := time.NewTicker(b.cfg.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-b.stop:
			return
		case <-ticker.C:
			b.flushLogged("timer")
		case <-b.kick:
			b.flushLogged("threshold")
		}
	}
}

func (b *Batcher) flushLogged(reason string) {
	if err := b.Flush(context.Background()); err != nil {
		b.log.Error("batch flush failed",
			zap.String("trigger", reason),
			zap.Error(err))
	}
}

// Stop cancels the timer and performs one final flush so no queued
// command is silently dropped on shutdown.
func (b *Batcher) Stop(ctx context.Context) error {
	b.stopOnce.Do(func() { close(b.stop) })
	b.wg.Wait()
	return b.Flush(ctx)
}

// Flush atomically takes the current queue and executes every command of
// every group inside one transaction. On any failure the whole batch is
// rolled back and the error is delivered to every group in it.
func (b *Batcher) Flush(ctx context.Context) error {
	b.mu.Lock()
	groups := b.queue
	depth := b.depth
	b.queue = nil
	b.depth = 0
	b.mu.Unlock()

	if len(groups) == 0 {
		return nil
	}

	err := b.commit(ctx, groups)
	if err != nil {
		cerr := &CommitError{Cause: err}
		for _, g := range groups {
			g.result <- cerr
		}
		return cerr
	}

	for _, g := range groups {
		g.result <- nil
	}
	b.log.Debug("batch committed",
		zap.Int("groups", len(groups)),
		zap.Int("commands", depth))
	return nil
}

func (b *Batcher) commit(ctx context.Context, groups []*group) error {
	tx, err := b.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	for _, g := range groups {
		for _, cmd := range g.cmds {
			if _, err := tx.ExecContext(ctx, cmd.SQL, cmd.Args...); err != nil {
				_ = tx.Rollback()
				return fmt.Errorf("exec %s: %w", cmd.Kind, err)
			}
		}
	}
	if err := tx.Commit(); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Depth returns the current queued command count.
func (b *Batcher) Depth() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.depth
}

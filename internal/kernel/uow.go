package kernel

import (
	"context"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/murkotick/commerce-kernel/internal/pkg/batcher"
	"github.com/murkotick/commerce-kernel/internal/pkg/clock"
)

// UnitOfWork scopes one logical business transaction. Repositories bound
// to it stage their writes locally; when the work function returns, the
// whole buffer is handed to the batcher as one unsplittable group and the
// call blocks until that group's physical commit. Returning nil therefore
// means durably committed, which also gives read-your-own-writes for any
// follow-up command in the same process.
type UnitOfWork struct {
	db          *sqlx.DB
	batcher     *batcher.Batcher
	projections Dispatcher
	clk         clock.Clock
	log         *zap.Logger
}

// NewUnitOfWork wires the repositories' database handle, the batcher and
// the projection dispatcher (nil to disable projections).
func NewUnitOfWork(db *sqlx.DB, b *batcher.Batcher, projections Dispatcher, clk clock.Clock, log *zap.Logger) *UnitOfWork {
	if log == nil {
		log = zap.NewNop()
	}
	if clk == nil {
		clk = clock.RealClock{}
	}
	return &UnitOfWork{db: db, batcher: b, projections: projections, clk: clk, log: log}
}

// WithTransaction runs fn with a fresh repository set. If fn returns an
// error nothing is enqueued; domain errors propagate unmodified to the
// command-handler boundary. On success the staged commands are enqueued
// as one group and the result of that group's flush is returned.
func (u *UnitOfWork) WithTransaction(ctx context.Context, fn func(ctx context.Context, r *Repos) error) error {
	repos := newRepos(u.db, u.projections, u.clk.Now)

	if err := fn(ctx, repos); err != nil {
		return err
	}

	cmds := repos.drain()
	if len(cmds) == 0 {
		return nil
	}

	done, err := u.batcher.Enqueue(ctx, cmds)
	if err != nil {
		return err
	}
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		// The group may still commit; the caller must treat the
		// outcome as unknown.
		return ctx.Err()
	}
}

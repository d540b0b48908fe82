package kernel

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/murkotick/commerce-kernel/internal/models/m_event"
	"github.com/murkotick/commerce-kernel/internal/models/m_outbox"
	"github.com/murkotick/commerce-kernel/internal/models/m_snapshot"
	"github.com/murkotick/commerce-kernel/internal/pkg/batcher"
)

// Writer is the surface projection handlers see: queue deferred view
// mutations into the current logical transaction, or read committed data
// directly.
type Writer interface {
	Queue(cmd batcher.Command)
	GetContext(ctx context.Context, dest any, query string, args ...any) error
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
}

// Dispatcher routes a committed-to-be event to its registered projection
// handlers. Implemented by projection.Engine; declared here so the
// kernel does not depend on the registry package.
type Dispatcher interface {
	Dispatch(ctx context.Context, ev Event, w Writer) error
}

// Repos binds the event, snapshot and outbox repositories to one logical
// transaction. Writes stage into a private buffer; nothing reaches the
// batcher until the work function returns, so a flush can never split
// the group.
type Repos struct {
	db         *sqlx.DB
	dispatcher Dispatcher
	pending    []batcher.Command
	now        func() time.Time

	Events    *EventRepo
	Snapshots *SnapshotRepo
	Outbox    *OutboxRepo
}

func newRepos(db *sqlx.DB, dispatcher Dispatcher, now func() time.Time) *Repos {
	r := &Repos{db: db, dispatcher: dispatcher, now: now}
	r.Events = &EventRepo{r: r}
	r.Snapshots = &SnapshotRepo{r: r}
	r.Outbox = &OutboxRepo{r: r}
	return r
}

// Queue adds one deferred command to the logical transaction.
func (r *Repos) Queue(cmd batcher.Command) {
	r.pending = append(r.pending, cmd)
}

// GetContext reads committed data directly, bypassing the batch queue.
func (r *Repos) GetContext(ctx context.Context, dest any, query string, args ...any) error {
	return r.db.GetContext(ctx, dest, query, args...)
}

// SelectContext reads committed rows directly, bypassing the batch queue.
func (r *Repos) SelectContext(ctx context.Context, dest any, query string, args ...any) error {
	return r.db.SelectContext(ctx, dest, query, args...)
}

// Stage is the common save path for a mutated aggregate: every
// uncommitted event is appended to the event store, mirrored into the
// outbox and dispatched to projections, then the snapshot is upserted.
// All of it lands in the same physical commit.
func (r *Repos) Stage(ctx context.Context, agg Aggregate) error {
	for _, ev := range agg.UncommittedEvents() {
		r.Events.Append(ev)
		r.Outbox.Add(ev)
		if r.dispatcher != nil {
			if err := r.dispatcher.Dispatch(ctx, ev, r); err != nil {
				return fmt.Errorf("project %s: %w", ev.EventType, err)
			}
		}
	}
	snap, err := agg.Snapshot()
	if err != nil {
		return err
	}
	r.Snapshots.Save(snap)
	agg.ClearUncommitted()
	return nil
}

func (r *Repos) drain() []batcher.Command {
	cmds := r.pending
	r.pending = nil
	return cmds
}

// EventRepo appends domain events, keyed by (aggregate, version).
type EventRepo struct {
	r *Repos
}

// Append queues an append-only insert for the event.
func (e *EventRepo) Append(ev Event) {
	e.r.Queue(m_event.InsertCommand(
		ev.AggregateType, ev.AggregateID, ev.Version,
		ev.EventID, ev.EventType, ev.CorrelationID, ev.Actor,
		ev.Payload, ev.OccurredAt,
	))
}

// SnapshotRepo reads committed snapshots synchronously and queues
// version-guarded upserts.
type SnapshotRepo struct {
	r *Repos
}

// Get returns the latest committed snapshot, or (nil, nil) when the
// aggregate does not exist. Callers translate the nil case into their
// entity's NotFound error.
func (s *SnapshotRepo) Get(ctx context.Context, aggregateType, aggregateID string) (*Snapshot, error) {
	var row m_snapshot.Row
	err := s.r.db.GetContext(ctx, &row, m_snapshot.SelectSQL, aggregateType, aggregateID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get snapshot %s %s: %w", aggregateType, aggregateID, err)
	}
	return &Snapshot{
		AggregateID:   row.AggregateID,
		AggregateType: row.AggregateType,
		CorrelationID: row.CorrelationID,
		Version:       row.Version,
		Payload:       []byte(row.Payload),
	}, nil
}

// Save queues the snapshot upsert.
func (s *SnapshotRepo) Save(snap *Snapshot) {
	s.r.Queue(m_snapshot.UpsertCommand(
		snap.AggregateType, snap.AggregateID, snap.CorrelationID,
		snap.Version, snap.Payload, s.r.now(),
	))
}

// OutboxRepo mirrors events into the durable delivery queue.
type OutboxRepo struct {
	r *Repos
}

// Add queues the pending outbox insert for an event.
func (o *OutboxRepo) Add(ev Event) {
	o.r.Queue(m_outbox.InsertCommand(
		ev.EventID, ev.EventType, ev.AggregateType, ev.AggregateID,
		ev.Payload, ev.OccurredAt,
	))
}

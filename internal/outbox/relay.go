// Package outbox relays committed events to external consumers. Delivery
// is at-least-once: a crash between publish and mark re-delivers, so
// consumers must be idempotent.
package outbox

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/murkotick/commerce-kernel/internal/models/m_outbox"
	"github.com/murkotick/commerce-kernel/internal/pkg/clock"
	"github.com/murkotick/commerce-kernel/internal/pkg/timeutil"
)

// Envelope is the wire format published for each outbox row.
type Envelope struct {
	EventID       string          `json:"eventId"`
	EventType     string          `json:"eventType"`
	AggregateType string          `json:"aggregateType"`
	AggregateID   string          `json:"aggregateId"`
	OccurredAt    string          `json:"occurredAt"`
	Payload       json.RawMessage `json:"payload"`
}

// Config controls the relay loop.
type Config struct {
	Interval      time.Duration
	BatchSize     int
	MaxRetries    int
	ChannelPrefix string
}

func (c Config) withDefaults() Config {
	if c.Interval <= 0 {
		c.Interval = 2 * time.Second
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 100
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = 5
	}
	if c.ChannelPrefix == "" {
		c.ChannelPrefix = "events:"
	}
	return c
}

// Relay polls pending outbox rows and publishes them. Rows whose source
// event committed are already durable, so the relay only moves delivery
// state forward; it never touches the event store.
type Relay struct {
	db  *sqlx.DB
	pub Publisher
	clk clock.Clock
	log *zap.Logger
	cfg Config

	stop     chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once
}

func NewRelay(db *sqlx.DB, pub Publisher, clk clock.Clock, cfg Config, log *zap.Logger) *Relay {
	if log == nil {
		log = zap.NewNop()
	}
	if clk == nil {
		clk = clock.RealClock{}
	}
	return &Relay{
		db:   db,
		pub:  pub,
		clk:  clk,
		log:  log,
		cfg:  cfg.withDefaults(),
		stop: make(chan struct{}),
	}
}

// Run polls until the context is done or Stop is called.
func (r *Relay) Run(ctx context.Context) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		ticker := time.NewTicker(r.cfg.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-r.stop:
				return
			case <-ticker.C:
				r.ProcessBatch(ctx)
			}
		}
	}()
}

// Stop halts the loop and waits for the in-flight batch.
func (r *Relay) Stop() {
	r.stopOnce.Do(func() { close(r.stop) })
	r.wg.Wait()
}

// ProcessBatch delivers up to BatchSize pending rows.
func (r *Relay) ProcessBatch(ctx context.Context) {
	var rows []m_outbox.Row
	if err := r.db.SelectContext(ctx, &rows, m_outbox.SelectPendingSQL, r.cfg.BatchSize); err != nil {
		r.log.Error("select pending outbox rows", zap.Error(err))
		return
	}

	for _, row := range rows {
		if row.RetryCount >= r.cfg.MaxRetries {
			r.exec(ctx, m_outbox.MarkFailedSQL, "max retries exceeded", row.EventID)
			continue
		}

		env := Envelope{
			EventID:       row.EventID,
			EventType:     row.EventType,
			AggregateType: row.AggregateType,
			AggregateID:   row.AggregateID,
			OccurredAt:    row.CreatedAt,
			Payload:       json.RawMessage(row.Payload),
		}
		payload, err := json.Marshal(env)
		if err != nil {
			r.exec(ctx, m_outbox.MarkRetrySQL, err.Error(), row.EventID)
			continue
		}

		channel := r.cfg.ChannelPrefix + row.AggregateType
		if err := r.pub.Publish(ctx, channel, payload); err != nil {
			r.log.Warn("outbox publish failed",
				zap.String("event_id", row.EventID),
				zap.String("channel", channel),
				zap.Error(err))
			r.exec(ctx, m_outbox.MarkRetrySQL, err.Error(), row.EventID)
			continue
		}

		r.exec(ctx, m_outbox.MarkProcessedSQL, timeutil.Format(r.clk.Now()), row.EventID)
	}
}

func (r *Relay) exec(ctx context.Context, query string, args ...any) {
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		r.log.Error("outbox state update failed", zap.Error(err))
	}
}

// Package sqlitetest opens throwaway in-memory databases carrying the
// full schema for tests.
package sqlitetest

import (
	"testing"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// Schema mirrors migrations/000001_init.up.sql.
const Schema = `
CREATE TABLE events (
    aggregate_type TEXT NOT NULL,
    aggregate_id   TEXT NOT NULL,
    version        INTEGER NOT NULL,
    event_id       TEXT NOT NULL,
    event_type     TEXT NOT NULL,
    correlation_id TEXT NOT NULL,
    actor          TEXT NOT NULL DEFAULT '',
    payload        TEXT NOT NULL,
    occurred_at    TEXT NOT NULL,
    PRIMARY KEY (aggregate_type, aggregate_id, version)
);

CREATE TABLE snapshots (
    aggregate_type TEXT NOT NULL,
    aggregate_id   TEXT NOT NULL,
    correlation_id TEXT NOT NULL,
    version        INTEGER NOT NULL,
    payload        TEXT NOT NULL,
    updated_at     TEXT NOT NULL,
    PRIMARY KEY (aggregate_type, aggregate_id)
);

CREATE TABLE outbox_events (
    event_id       TEXT PRIMARY KEY,
    event_type     TEXT NOT NULL,
    aggregate_type TEXT NOT NULL,
    aggregate_id   TEXT NOT NULL,
    payload        TEXT NOT NULL,
    status         TEXT NOT NULL DEFAULT 'pending',
    retry_count    INTEGER NOT NULL DEFAULT 0,
    created_at     TEXT NOT NULL,
    processed_at   TEXT,
    last_error     TEXT
);

CREATE TABLE variant_view (
    variant_id       TEXT PRIMARY KEY,
    sku              TEXT NOT NULL,
    name             TEXT NOT NULL,
    price            TEXT NOT NULL,
    status           TEXT NOT NULL,
    drop_schedule_id TEXT,
    version          INTEGER NOT NULL,
    updated_at       TEXT NOT NULL
);

CREATE TABLE schedule_view (
    schedule_id           TEXT PRIMARY KEY,
    target_aggregate_id   TEXT NOT NULL,
    target_aggregate_type TEXT NOT NULL,
    command_type          TEXT NOT NULL,
    command_data          TEXT NOT NULL DEFAULT '',
    scheduled_for         TEXT NOT NULL,
    status                TEXT NOT NULL,
    retry_count           INTEGER NOT NULL DEFAULT 0,
    next_retry_at         TEXT,
    error_message         TEXT NOT NULL DEFAULT '',
    created_by            TEXT NOT NULL DEFAULT '',
    version               INTEGER NOT NULL,
    updated_at            TEXT NOT NULL
);
`

// Open returns an in-memory database with the schema applied. The handle
// is limited to one connection so every statement sees the same store.
func Open(t *testing.T) *sqlx.DB {
	t.Helper()

	db, err := sqlx.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open in-memory sqlite: %v", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		t.Fatalf("apply schema: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

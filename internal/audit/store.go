// Package audit persists an append-only log of editorial actions
// (saves, creations, publishes, cache clears) with their origin address.
package audit

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// EventType enumerates audited actions.
type EventType string

const (
	EventFileSave   EventType = "file_save"
	EventFileCreate EventType = "file_create"
	EventPublish    EventType = "publish"
	EventCacheClear EventType = "cache_clear"
)

// Event is one audited action.
type Event struct {
	ID         string    `json:"id"`
	Type       EventType `json:"type"`
	Path       string    `json:"path,omitempty"`
	RemoteAddr string    `json:"remote_addr,omitempty"`
	Detail     string    `json:"detail,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Store is a SQLite-backed audit log.
type Store struct {
	db *sql.DB
}

// Open creates (or opens) the audit database at path.
// Use ":memory:" for an in-memory store.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open audit database: %w", err)
	}
	s := &Store{db: db}
	if err := s.initialize(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize audit schema: %w", err)
	}
	return s, nil
}

func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS audit_events (
		id TEXT PRIMARY KEY,
		event_type TEXT NOT NULL,
		path TEXT,
		remote_addr TEXT,
		detail TEXT,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_audit_created_at ON audit_events(created_at);
	CREATE INDEX IF NOT EXISTS idx_audit_event_type ON audit_events(event_type);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Record appends an event. A missing ID or timestamp is filled in.
func (s *Store) Record(ctx context.Context, e Event) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO audit_events (id, event_type, path, remote_addr, detail, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		e.ID, string(e.Type), e.Path, e.RemoteAddr, e.Detail, e.CreatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

// Recent returns up to limit events, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, event_type, path, remote_addr, detail, created_at FROM audit_events ORDER BY created_at DESC, id LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		var typ string
		var createdAt int64
		if err := rows.Scan(&e.ID, &typ, &e.Path, &e.RemoteAddr, &e.Detail, &createdAt); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		e.Type = EventType(typ)
		e.CreatedAt = time.Unix(0, createdAt)
		events = append(events, e)
	}
	return events, rows.Err()
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

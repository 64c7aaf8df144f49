// Package sqlite provides SQLite-backed persistence for gift telemetry.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/gratefulday/gratefulday.space/internal/platform/storage/sqlitemigrate"
	"github.com/gratefulday/gratefulday.space/internal/services/gift/storage"
	"github.com/gratefulday/gratefulday.space/internal/services/gift/storage/sqlite/migrations"
	_ "modernc.org/sqlite"
)

// Store provides SQLite-backed persistence for telemetry events.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a telemetry SQLite store at the provided path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	store := &Store{sqlDB: sqlDB}
	if err := sqlitemigrate.ApplyMigrations(sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return store, nil
}

// Close closes the underlying SQLite database.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// AppendTelemetryEvent persists one telemetry event row.
func (s *Store) AppendTelemetryEvent(ctx context.Context, event storage.TelemetryEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	name := strings.TrimSpace(event.Name)
	if name == "" {
		return fmt.Errorf("telemetry event name is required")
	}

	attrs := event.Attributes
	if attrs == nil {
		attrs = map[string]string{}
	}
	attrsJSON, err := json.Marshal(attrs)
	if err != nil {
		return fmt.Errorf("marshal telemetry attributes: %w", err)
	}

	severity := strings.TrimSpace(event.Severity)
	if severity == "" {
		severity = "INFO"
	}
	timestamp := event.Timestamp
	if timestamp.IsZero() {
		timestamp = time.Now().UTC()
	}

	_, err = s.sqlDB.ExecContext(ctx, `
INSERT INTO telemetry_events (name, severity, attributes, trace_id, span_id, timestamp)
VALUES (?, ?, ?, ?, ?, ?)`,
		name, severity, string(attrsJSON), event.TraceID, event.SpanID, toMillis(timestamp),
	)
	if err != nil {
		return fmt.Errorf("insert telemetry event: %w", err)
	}
	return nil
}

// ListTelemetryEvents returns the most recent telemetry events, newest first.
func (s *Store) ListTelemetryEvents(ctx context.Context, limit int) ([]storage.TelemetryEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT name, severity, attributes, trace_id, span_id, timestamp
FROM telemetry_events
ORDER BY timestamp DESC, id DESC
LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list telemetry events: %w", err)
	}
	defer rows.Close()

	var events []storage.TelemetryEvent
	for rows.Next() {
		var (
			event     storage.TelemetryEvent
			attrsJSON string
			timestamp int64
		)
		if err := rows.Scan(&event.Name, &event.Severity, &attrsJSON, &event.TraceID, &event.SpanID, &timestamp); err != nil {
			return nil, fmt.Errorf("scan telemetry event: %w", err)
		}
		if err := json.Unmarshal([]byte(attrsJSON), &event.Attributes); err != nil {
			return nil, fmt.Errorf("unmarshal telemetry attributes: %w", err)
		}
		event.Timestamp = fromMillis(timestamp)
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate telemetry events: %w", err)
	}
	return events, nil
}

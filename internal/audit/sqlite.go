package audit

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// SQLiteBackend stores events in a local SQLite file. Suitable for
// development and lightweight deployments; use PostgresBackend for
// high-volume production traffic.
type SQLiteBackend struct {
	db     *sqlx.DB
	path   string
	logger *zap.Logger
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS audit_events (
	id          TEXT PRIMARY KEY,
	event_type  TEXT NOT NULL,
	timestamp   DATETIME NOT NULL,
	user_id     TEXT NOT NULL DEFAULT '',
	session_id  TEXT NOT NULL DEFAULT '',
	resource_id TEXT NOT NULL DEFAULT '',
	action      TEXT NOT NULL DEFAULT '',
	data        TEXT NOT NULL DEFAULT '',
	metadata    TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS ix_audit_events_timestamp_type ON audit_events (timestamp, event_type);
CREATE INDEX IF NOT EXISTS ix_audit_events_user_timestamp ON audit_events (user_id, timestamp);
`

// NewSQLiteBackend creates a backend writing to the given database file.
func NewSQLiteBackend(path string, logger *zap.Logger) *SQLiteBackend {
	return &SQLiteBackend{path: path, logger: logger}
}

// Initialize opens the database and creates the schema.
func (b *SQLiteBackend) Initialize(ctx context.Context) error {
	db, err := sqlx.Open("sqlite", b.path)
	if err != nil {
		return fmt.Errorf("failed to open sqlite database: %w", err)
	}

	// SQLite serializes writers; a single connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return fmt.Errorf("sqlite ping failed: %w", err)
	}

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return fmt.Errorf("failed to create audit schema: %w", err)
	}

	b.db = db
	b.logger.Info("SQLite audit backend initialized", zap.String("path", b.path))
	return nil
}

// Close closes the database connection.
func (b *SQLiteBackend) Close() error {
	if b.db == nil {
		return nil
	}
	return b.db.Close()
}

// Write persists an event.
func (b *SQLiteBackend) Write(ctx context.Context, event *Event) (string, error) {
	query := `
		INSERT INTO audit_events (id, event_type, timestamp, user_id, session_id, resource_id, action, data, metadata)
		VALUES (:id, :event_type, :timestamp, :user_id, :session_id, :resource_id, :action, :data, :metadata)`

	if _, err := b.db.NamedExecContext(ctx, query, event); err != nil {
		b.logger.Error("Failed to write audit event",
			zap.Error(err),
			zap.String("event_type", event.EventType))
		return "", fmt.Errorf("failed to write audit event: %w", err)
	}
	return event.ID, nil
}

// Query returns matching events, newest first.
func (b *SQLiteBackend) Query(ctx context.Context, filters Filters) ([]*Event, error) {
	where, args := buildWhere(filters)
	query := fmt.Sprintf(`
		SELECT id, event_type, timestamp, user_id, session_id, resource_id, action, data, metadata
		FROM audit_events %s
		ORDER BY timestamp DESC
		LIMIT ? OFFSET ?`, where)
	args = append(args, filters.limit(), filters.Offset)

	var events []*Event
	if err := b.db.SelectContext(ctx, &events, b.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to query audit events: %w", err)
	}
	if events == nil {
		events = []*Event{}
	}
	return events, nil
}

// GetByID fetches a single event by ID.
func (b *SQLiteBackend) GetByID(ctx context.Context, eventID string) (*Event, error) {
	query := `
		SELECT id, event_type, timestamp, user_id, session_id, resource_id, action, data, metadata
		FROM audit_events WHERE id = ?`

	var event Event
	err := b.db.GetContext(ctx, &event, b.db.Rebind(query), eventID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get audit event: %w", err)
	}
	return &event, nil
}

// DeleteBefore removes events older than the cutoff.
func (b *SQLiteBackend) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := b.db.ExecContext(ctx, b.db.Rebind(`DELETE FROM audit_events WHERE timestamp < ?`), cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete audit events: %w", err)
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return deleted, nil
}

// Count returns the number of events matching the filters.
func (b *SQLiteBackend) Count(ctx context.Context, filters Filters) (int64, error) {
	where, args := buildWhere(filters)
	query := fmt.Sprintf(`SELECT COUNT(*) FROM audit_events %s`, where)

	var n int64
	if err := b.db.GetContext(ctx, &n, b.db.Rebind(query), args...); err != nil {
		return 0, fmt.Errorf("failed to count audit events: %w", err)
	}
	return n, nil
}

// buildWhere assembles a WHERE clause with "?" placeholders; callers
// rebind it for their driver.
func buildWhere(filters Filters) (string, []interface{}) {
	var clauses []string
	var args []interface{}

	if filters.EventType != "" {
		clauses = append(clauses, "event_type = ?")
		args = append(args, filters.EventType)
	}
	if filters.UserID != "" {
		clauses = append(clauses, "user_id = ?")
		args = append(args, filters.UserID)
	}
	if filters.ResourceID != "" {
		clauses = append(clauses, "resource_id = ?")
		args = append(args, filters.ResourceID)
	}
	if !filters.StartDate.IsZero() {
		clauses = append(clauses, "timestamp >= ?")
		args = append(args, filters.StartDate)
	}
	if !filters.EndDate.IsZero() {
		clauses = append(clauses, "timestamp <= ?")
		args = append(args, filters.EndDate)
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(clauses, " AND "), args
}

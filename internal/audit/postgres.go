package audit

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

// PostgresConfig contains connection settings for the Postgres backend.
type PostgresConfig struct {
	DatabaseURL  string `yaml:"database_url" mapstructure:"database_url"`
	MaxOpenConns int    `yaml:"max_open_conns" mapstructure:"max_open_conns"`
	MaxIdleConns int    `yaml:"max_idle_conns" mapstructure:"max_idle_conns"`
}

// PostgresBackend stores events in PostgreSQL for production deployments.
type PostgresBackend struct {
	db     *sqlx.DB
	config PostgresConfig
	logger *zap.Logger
}

const postgresSchema = `
CREATE TABLE IF NOT EXISTS audit_events (
	id          VARCHAR(36) PRIMARY KEY,
	event_type  VARCHAR(50) NOT NULL,
	timestamp   TIMESTAMPTZ NOT NULL,
	user_id     VARCHAR(255) NOT NULL DEFAULT '',
	session_id  VARCHAR(255) NOT NULL DEFAULT '',
	resource_id VARCHAR(255) NOT NULL DEFAULT '',
	action      VARCHAR(100) NOT NULL DEFAULT '',
	data        TEXT NOT NULL DEFAULT '',
	metadata    TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS ix_audit_events_timestamp_type ON audit_events (timestamp, event_type);
CREATE INDEX IF NOT EXISTS ix_audit_events_user_timestamp ON audit_events (user_id, timestamp);
`

// NewPostgresBackend creates a backend for the given connection settings.
func NewPostgresBackend(config PostgresConfig, logger *zap.Logger) *PostgresBackend {
	return &PostgresBackend{config: config, logger: logger}
}

// Initialize connects to the database, configures the pool and creates
// the schema.
func (b *PostgresBackend) Initialize(ctx context.Context) error {
	db, err := sqlx.ConnectContext(ctx, "postgres", b.config.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if b.config.MaxOpenConns > 0 {
		db.SetMaxOpenConns(b.config.MaxOpenConns)
	}
	if b.config.MaxIdleConns > 0 {
		db.SetMaxIdleConns(b.config.MaxIdleConns)
	}
	db.SetConnMaxLifetime(time.Hour)

	if _, err := db.ExecContext(ctx, postgresSchema); err != nil {
		db.Close()
		return fmt.Errorf("failed to create audit schema: %w", err)
	}

	b.db = db
	b.logger.Info("Postgres audit backend initialized",
		zap.Int("max_open_conns", b.config.MaxOpenConns),
		zap.Int("max_idle_conns", b.config.MaxIdleConns))
	return nil
}

// Close closes the connection pool.
func (b *PostgresBackend) Close() error {
	if b.db == nil {
		return nil
	}
	return b.db.Close()
}

// Write persists an event.
func (b *PostgresBackend) Write(ctx context.Context, event *Event) (string, error) {
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
func (b *PostgresBackend) Query(ctx context.Context, filters Filters) ([]*Event, error) {
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
func (b *PostgresBackend) GetByID(ctx context.Context, eventID string) (*Event, error) {
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
func (b *PostgresBackend) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
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
func (b *PostgresBackend) Count(ctx context.Context, filters Filters) (int64, error) {
	where, args := buildWhere(filters)
	query := fmt.Sprintf(`SELECT COUNT(*) FROM audit_events %s`, where)

	var n int64
	if err := b.db.GetContext(ctx, &n, b.db.Rebind(query), args...); err != nil {
		return 0, fmt.Errorf("failed to count audit events: %w", err)
	}
	return n, nil
}

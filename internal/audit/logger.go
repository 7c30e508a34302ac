package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Charlescifix/gdpr-safe-rag/internal/config"
)

// Logger is the main entry point for audit logging. It wraps a storage
// backend with typed log methods for each GDPR-relevant event.
type Logger struct {
	backend       Backend
	retentionDays int
	logger        *zap.Logger
}

// New creates an audit logger with the backend named in the configuration.
func New(cfg config.AuditConfig, log *zap.Logger) (*Logger, error) {
	var backend Backend
	switch cfg.Backend {
	case "memory", "":
		backend = NewMemoryBackend()
	case "sqlite":
		backend = NewSQLiteBackend(cfg.SQLitePath, log)
	case "postgres":
		backend = NewPostgresBackend(PostgresConfig{
			DatabaseURL:  cfg.DatabaseURL,
			MaxOpenConns: cfg.MaxOpenConns,
			MaxIdleConns: cfg.MaxIdleConns,
		}, log)
	default:
		return nil, fmt.Errorf("unknown audit backend: %q", cfg.Backend)
	}

	return &Logger{
		backend:       backend,
		retentionDays: cfg.RetentionDays,
		logger:        log,
	}, nil
}

// NewWithBackend creates an audit logger around an existing backend.
func NewWithBackend(backend Backend, retentionDays int, log *zap.Logger) *Logger {
	return &Logger{backend: backend, retentionDays: retentionDays, logger: log}
}

// Backend returns the underlying storage backend.
func (l *Logger) Backend() Backend {
	return l.backend
}

// RetentionDays returns the configured retention period.
func (l *Logger) RetentionDays() int {
	return l.retentionDays
}

// Initialize prepares the backend.
func (l *Logger) Initialize(ctx context.Context) error {
	return l.backend.Initialize(ctx)
}

// Close shuts down the backend.
func (l *Logger) Close() error {
	return l.backend.Close()
}

func (l *Logger) write(ctx context.Context, event *Event, data map[string]interface{}) (string, error) {
	if data != nil {
		encoded, err := json.Marshal(data)
		if err != nil {
			return "", fmt.Errorf("failed to encode event data: %w", err)
		}
		event.Data = string(encoded)
	}

	id, err := l.backend.Write(ctx, event)
	if err != nil {
		return "", err
	}

	l.logger.Debug("Audit event recorded",
		zap.String("event_id", id),
		zap.String("event_type", event.EventType))
	return id, nil
}

// LogIngestion records a document ingestion, including whether PII was
// detected and how much. Only counts are stored, never values.
func (l *Logger) LogIngestion(ctx context.Context, documentID, userID string, piiDetected bool, piiCount int) (string, error) {
	event := NewEvent(EventIngestion)
	event.UserID = userID
	event.ResourceID = documentID
	event.Action = "ingest"
	return l.write(ctx, event, map[string]interface{}{
		"pii_detected": piiDetected,
		"pii_count":    piiCount,
	})
}

// LogQuery records a query event. Callers must pass the redacted query
// text so the audit trail itself stays free of raw PII.
func (l *Logger) LogQuery(ctx context.Context, userID, sessionID, redactedQuery string, retrievedDocs []string) (string, error) {
	event := NewEvent(EventQuery)
	event.UserID = userID
	event.SessionID = sessionID
	event.Action = "query"
	if retrievedDocs == nil {
		retrievedDocs = []string{}
	}
	return l.write(ctx, event, map[string]interface{}{
		"query_text":      redactedQuery,
		"retrieved_docs":  retrievedDocs,
		"retrieved_count": len(retrievedDocs),
	})
}

// LogAccess records a data access event with its purpose.
func (l *Logger) LogAccess(ctx context.Context, userID, action, resource, purpose string) (string, error) {
	event := NewEvent(EventAccess)
	event.UserID = userID
	event.ResourceID = resource
	event.Action = action

	var data map[string]interface{}
	if purpose != "" {
		data = map[string]interface{}{"purpose": purpose}
	}
	return l.write(ctx, event, data)
}

// LogDeletion records a data deletion with its reason, e.g.
// "user_request" or "retention_policy".
func (l *Logger) LogDeletion(ctx context.Context, userID, resource, reason string) (string, error) {
	event := NewEvent(EventDeletion)
	event.UserID = userID
	event.ResourceID = resource
	event.Action = "delete"
	return l.write(ctx, event, map[string]interface{}{"reason": reason})
}

// LogConsentUpdate records a consent grant or revocation.
func (l *Logger) LogConsentUpdate(ctx context.Context, userID, consentType string, granted bool) (string, error) {
	event := NewEvent(EventConsentUpdate)
	event.UserID = userID
	event.Action = "consent_update"
	return l.write(ctx, event, map[string]interface{}{
		"consent_type": consentType,
		"granted":      granted,
	})
}

// LogExport records a data export event.
func (l *Logger) LogExport(ctx context.Context, userID, format string, resourceIDs []string) (string, error) {
	event := NewEvent(EventExport)
	event.UserID = userID
	event.Action = "export"
	if resourceIDs == nil {
		resourceIDs = []string{}
	}
	return l.write(ctx, event, map[string]interface{}{
		"format":         format,
		"resource_ids":   resourceIDs,
		"resource_count": len(resourceIDs),
	})
}

// Query returns audit events matching the filters.
func (l *Logger) Query(ctx context.Context, filters Filters) ([]*Event, error) {
	return l.backend.Query(ctx, filters)
}

// UserActivity returns a user's events from the last N days.
func (l *Logger) UserActivity(ctx context.Context, userID string, days int) ([]*Event, error) {
	return l.backend.Query(ctx, Filters{
		UserID:    userID,
		StartDate: time.Now().UTC().AddDate(0, 0, -days),
		Limit:     1000,
	})
}

// EnforceRetention deletes events older than the retention period and
// records the enforcement itself as a retention_check event.
func (l *Logger) EnforceRetention(ctx context.Context) (int64, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -l.retentionDays)
	deleted, err := l.backend.DeleteBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to enforce retention: %w", err)
	}

	event := NewEvent(EventRetentionCheck)
	event.Action = "enforce_retention"
	if _, err := l.write(ctx, event, map[string]interface{}{
		"deleted_count":  deleted,
		"retention_days": l.retentionDays,
	}); err != nil {
		return deleted, err
	}

	l.logger.Info("Retention policy enforced",
		zap.Int64("deleted", deleted),
		zap.Int("retention_days", l.retentionDays))
	return deleted, nil
}

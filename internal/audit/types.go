package audit

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// EventType classifies audit events.
type EventType string

const (
	EventIngestion       EventType = "ingestion"
	EventQuery           EventType = "query"
	EventAccess          EventType = "access"
	EventDeletion        EventType = "deletion"
	EventExport          EventType = "export"
	EventConsentUpdate   EventType = "consent_update"
	EventRetentionCheck  EventType = "retention_check"
	EventComplianceCheck EventType = "compliance_check"
)

// ErrNotFound is returned when an event ID does not exist in the backend.
var ErrNotFound = errors.New("audit event not found")

// Event is a single audit trail entry. Data and Metadata hold JSON-encoded
// payloads so every backend can store them as plain text columns.
type Event struct {
	ID         string    `db:"id" json:"id"`
	EventType  string    `db:"event_type" json:"event_type"`
	Timestamp  time.Time `db:"timestamp" json:"timestamp"`
	UserID     string    `db:"user_id" json:"user_id,omitempty"`
	SessionID  string    `db:"session_id" json:"session_id,omitempty"`
	ResourceID string    `db:"resource_id" json:"resource_id,omitempty"`
	Action     string    `db:"action" json:"action,omitempty"`
	Data       string    `db:"data" json:"data,omitempty"`
	Metadata   string    `db:"metadata" json:"metadata,omitempty"`
}

// NewEvent creates an event with a fresh UUID and the current timestamp.
func NewEvent(eventType EventType) *Event {
	return &Event{
		ID:        uuid.NewString(),
		EventType: string(eventType),
		Timestamp: time.Now().UTC(),
	}
}

// Filters narrows backend queries. Zero values mean "no constraint";
// Limit defaults to 100 when unset.
type Filters struct {
	EventType  string
	UserID     string
	ResourceID string
	StartDate  time.Time
	EndDate    time.Time
	Limit      int
	Offset     int
}

func (f *Filters) limit() int {
	if f.Limit <= 0 {
		return 100
	}
	return f.Limit
}

// Matches reports whether an event satisfies every set filter.
func (f *Filters) Matches(e *Event) bool {
	if f.EventType != "" && e.EventType != f.EventType {
		return false
	}
	if f.UserID != "" && e.UserID != f.UserID {
		return false
	}
	if f.ResourceID != "" && e.ResourceID != f.ResourceID {
		return false
	}
	if !f.StartDate.IsZero() && e.Timestamp.Before(f.StartDate) {
		return false
	}
	if !f.EndDate.IsZero() && e.Timestamp.After(f.EndDate) {
		return false
	}
	return true
}

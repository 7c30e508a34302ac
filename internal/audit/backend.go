package audit

import (
	"context"
	"time"
)

// Backend is the storage interface shared by the memory, SQLite and
// PostgreSQL implementations.
type Backend interface {
	// Initialize prepares the backend (creates tables, verifies connectivity).
	Initialize(ctx context.Context) error

	// Close releases backend resources.
	Close() error

	// Write persists an event and returns its ID.
	Write(ctx context.Context, event *Event) (string, error)

	// Query returns events matching the filters, newest first.
	Query(ctx context.Context, filters Filters) ([]*Event, error)

	// GetByID fetches a single event, returning ErrNotFound when absent.
	GetByID(ctx context.Context, eventID string) (*Event, error)

	// DeleteBefore removes events older than the cutoff and returns the
	// number deleted. Used for retention enforcement.
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)

	// Count returns the number of events matching the filters, ignoring
	// limit and offset.
	Count(ctx context.Context, filters Filters) (int64, error)
}

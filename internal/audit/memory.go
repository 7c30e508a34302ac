package audit

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryBackend keeps events in process memory. Intended for tests and
// single-run tooling where durability is not required.
type MemoryBackend struct {
	mu     sync.RWMutex
	events []*Event
}

// NewMemoryBackend creates an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{}
}

// Initialize is a no-op for the memory backend.
func (b *MemoryBackend) Initialize(ctx context.Context) error {
	return nil
}

// Close drops all stored events.
func (b *MemoryBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = nil
	return nil
}

// Write stores a copy of the event.
func (b *MemoryBackend) Write(ctx context.Context, event *Event) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	stored := *event
	b.events = append(b.events, &stored)
	return stored.ID, nil
}

// Query returns matching events, newest first.
func (b *MemoryBackend) Query(ctx context.Context, filters Filters) ([]*Event, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var matched []*Event
	for _, e := range b.events {
		if filters.Matches(e) {
			copied := *e
			matched = append(matched, &copied)
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Timestamp.After(matched[j].Timestamp)
	})

	if filters.Offset >= len(matched) {
		return []*Event{}, nil
	}
	matched = matched[filters.Offset:]
	if limit := filters.limit(); len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

// GetByID fetches a single event by ID.
func (b *MemoryBackend) GetByID(ctx context.Context, eventID string) (*Event, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, e := range b.events {
		if e.ID == eventID {
			copied := *e
			return &copied, nil
		}
	}
	return nil, ErrNotFound
}

// DeleteBefore removes events older than the cutoff.
func (b *MemoryBackend) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	kept := b.events[:0]
	var deleted int64
	for _, e := range b.events {
		if e.Timestamp.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, e)
	}
	b.events = kept
	return deleted, nil
}

// Count returns the number of events matching the filters.
func (b *MemoryBackend) Count(ctx context.Context, filters Filters) (int64, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var n int64
	for _, e := range b.events {
		if filters.Matches(e) {
			n++
		}
	}
	return n, nil
}

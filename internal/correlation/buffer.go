// Argus - Home Security Event Processing Backend
// Copyright 2026 Argus Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/argushq/argus

// Package correlation implements the multi-camera event correlation engine:
// a sliding-window buffer of recent events, a candidate matcher, a group
// resolver, and the asynchronous service that ties them to persistence.
//
// Events from different cameras that observe the same real-world occurrence
// (same detection type, within a short time window) are linked under a shared
// correlation group id. The buffer is purely an in-memory optimization; the
// persisted correlation_group_id column is the durable source of truth, so
// losing the buffer on restart degrades correlation but never corrupts data.
package correlation

import (
	"sync"
	"time"
)

// Event is the narrow projection of a persisted event that the correlation
// engine depends on. The ingestion layer adapts its own record into this
// shape before calling the service.
type Event struct {
	ID                 string
	CameraID           string
	ControllerID       *string
	Timestamp          time.Time
	DetectionType      *string
	CorrelationGroupID *string
}

// BufferedEvent is a snapshot of an event's correlation-relevant fields held
// in the sliding window. CorrelationGroupID is mutated in place when a group
// is resolved so later events can discover it; all other fields are fixed at
// insertion time.
type BufferedEvent struct {
	ID                 string
	CameraID           string
	ControllerID       *string
	Timestamp          time.Time
	DetectionType      *string
	CorrelationGroupID *string
}

// bufferEntry pairs a buffered event with its insertion time, which drives
// sliding-window eviction. Insertion times are monotonic in entry order.
type bufferEntry struct {
	insertedAt time.Time
	event      *BufferedEvent
}

// Stats describes the buffer for observability. Ages are nil when the buffer
// is empty.
type Stats struct {
	BufferSize            int      `json:"buffer_size"`
	OldestEventAgeSeconds *float64 `json:"oldest_event_age_seconds"`
	NewestEventAgeSeconds *float64 `json:"newest_event_age_seconds"`
}

// Buffer is the insertion-ordered sliding window of recently seen events.
// Entries older than maxAge are evicted on every Add. An id index makes
// annotation O(1). All methods are safe for concurrent use; the mutex is
// never held across I/O.
type Buffer struct {
	mu      sync.Mutex
	maxAge  time.Duration
	entries []bufferEntry
	index   map[string]*BufferedEvent

	// now is swappable for deterministic eviction tests.
	now func() time.Time
}

// NewBuffer creates an empty buffer with the given maximum entry age.
func NewBuffer(maxAge time.Duration) *Buffer {
	return &Buffer{
		maxAge: maxAge,
		index:  make(map[string]*BufferedEvent),
		now:    time.Now,
	}
}

// Add snapshots the event into the buffer and evicts expired entries.
// Each event id appears at most once; re-adding an id returns the existing
// entry unchanged. The returned BufferedEvent is the buffer's own record,
// so annotating it later is visible to subsequent candidate scans.
func (b *Buffer) Add(event Event) *BufferedEvent {
	b.mu.Lock()
	defer b.mu.Unlock()

	if existing, ok := b.index[event.ID]; ok {
		return existing
	}

	buffered := &BufferedEvent{
		ID:                 event.ID,
		CameraID:           event.CameraID,
		ControllerID:       event.ControllerID,
		Timestamp:          event.Timestamp,
		DetectionType:      event.DetectionType,
		CorrelationGroupID: event.CorrelationGroupID,
	}

	now := b.now()
	b.entries = append(b.entries, bufferEntry{insertedAt: now, event: buffered})
	b.index[event.ID] = buffered
	b.evictLocked(now)
	return buffered
}

// evictLocked drops entries older than maxAge from the front. Entries are
// insertion-ordered, so eviction stops at the first fresh entry; each entry
// is evicted exactly once over its lifetime.
func (b *Buffer) evictLocked(now time.Time) {
	cutoff := now.Add(-b.maxAge)
	i := 0
	for i < len(b.entries) && b.entries[i].insertedAt.Before(cutoff) {
		delete(b.index, b.entries[i].event.ID)
		b.entries[i] = bufferEntry{}
		i++
	}
	if i > 0 {
		b.entries = b.entries[i:]
	}
}

// Annotate sets the group id on the buffered entry with this event id.
// Returns false when the entry has already expired from the window, in which
// case the persisted record is the only place the group id lives.
func (b *Buffer) Annotate(eventID, groupID string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	buffered, ok := b.index[eventID]
	if !ok {
		return false
	}
	id := groupID
	buffered.CorrelationGroupID = &id
	return true
}

// Snapshot returns the current entries in insertion order. The returned
// slice is a copy but the events are the buffer's live records.
func (b *Buffer) Snapshot() []*BufferedEvent {
	b.mu.Lock()
	defer b.mu.Unlock()

	events := make([]*BufferedEvent, len(b.entries))
	for i, entry := range b.entries {
		events[i] = entry.event
	}
	return events
}

// Size returns the current entry count.
func (b *Buffer) Size() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.entries)
}

// Stats reports the buffer size and the ages of the oldest and newest
// entries relative to now.
func (b *Buffer) Stats() Stats {
	b.mu.Lock()
	defer b.mu.Unlock()

	stats := Stats{BufferSize: len(b.entries)}
	if len(b.entries) == 0 {
		return stats
	}

	now := b.now()
	oldest := now.Sub(b.entries[0].insertedAt).Seconds()
	newest := now.Sub(b.entries[len(b.entries)-1].insertedAt).Seconds()
	stats.OldestEventAgeSeconds = &oldest
	stats.NewestEventAgeSeconds = &newest
	return stats
}

// Clear empties the buffer and returns the number of entries removed.
func (b *Buffer) Clear() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	removed := len(b.entries)
	b.entries = nil
	b.index = make(map[string]*BufferedEvent)
	return removed
}

// Argus - Home Security Event Processing Backend
// Copyright 2026 Argus Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/argushq/argus

package correlation

import (
	"fmt"
	"testing"
	"time"
)

func strPtr(s string) *string { return &s }

func makeEvent(id, cameraID string, ts time.Time, detectionType string) Event {
	event := Event{ID: id, CameraID: cameraID, Timestamp: ts}
	if detectionType != "" {
		event.DetectionType = strPtr(detectionType)
	}
	return event
}

func TestBufferAddAndSnapshot(t *testing.T) {
	buf := NewBuffer(time.Minute)
	now := time.Now().UTC()

	buf.Add(makeEvent("evt-1", "cam1", now, "person"))
	buf.Add(makeEvent("evt-2", "cam2", now.Add(time.Second), "person"))

	events := buf.Snapshot()
	if len(events) != 2 {
		t.Fatalf("snapshot size = %d, want 2", len(events))
	}
	if events[0].ID != "evt-1" || events[1].ID != "evt-2" {
		t.Errorf("snapshot order = [%s %s], want insertion order [evt-1 evt-2]", events[0].ID, events[1].ID)
	}
}

func TestBufferRejectsDuplicateID(t *testing.T) {
	buf := NewBuffer(time.Minute)
	now := time.Now().UTC()

	first := buf.Add(makeEvent("evt-1", "cam1", now, "person"))
	second := buf.Add(makeEvent("evt-1", "cam2", now.Add(time.Second), "vehicle"))

	if first != second {
		t.Error("re-adding an id should return the existing entry")
	}
	if buf.Size() != 1 {
		t.Errorf("buffer size = %d, want 1", buf.Size())
	}
	if second.CameraID != "cam1" {
		t.Errorf("existing entry mutated: camera = %s, want cam1", second.CameraID)
	}
}

func TestBufferEviction(t *testing.T) {
	buf := NewBuffer(60 * time.Second)

	// Drive the clock manually so eviction is deterministic.
	clock := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	buf.now = func() time.Time { return clock }

	// Insert 10 events 20s apart; the window spans 60s, so by the last
	// insert only the freshest entries survive.
	for i := 0; i < 10; i++ {
		buf.Add(makeEvent(fmt.Sprintf("evt-%d", i), "cam1", clock, "person"))
		clock = clock.Add(20 * time.Second)
	}

	// Eviction runs on insert, and the loop leaves the clock 20s past the
	// last one. Insert once more at the current clock so the window
	// invariant is measured at the same instant it was last enforced.
	buf.Add(makeEvent("evt-final", "cam1", clock, "person"))

	if buf.Size() >= 10 {
		t.Fatalf("no eviction happened: size = %d", buf.Size())
	}
	for _, event := range buf.Snapshot() {
		if _, ok := buf.index[event.ID]; !ok {
			t.Errorf("entry %s missing from index", event.ID)
		}
	}

	stats := buf.Stats()
	if stats.OldestEventAgeSeconds == nil {
		t.Fatal("expected oldest age for non-empty buffer")
	}
	if *stats.OldestEventAgeSeconds > 60 {
		t.Errorf("oldest entry age %.1fs exceeds the 60s window", *stats.OldestEventAgeSeconds)
	}
}

func TestBufferEvictionRemovesFromIndex(t *testing.T) {
	buf := NewBuffer(10 * time.Second)
	clock := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	buf.now = func() time.Time { return clock }

	buf.Add(makeEvent("evt-old", "cam1", clock, "person"))
	clock = clock.Add(30 * time.Second)
	buf.Add(makeEvent("evt-new", "cam2", clock, "person"))

	if buf.Size() != 1 {
		t.Fatalf("buffer size = %d, want 1 after eviction", buf.Size())
	}
	if buf.Annotate("evt-old", "group-1") {
		t.Error("annotating an evicted entry should return false")
	}
	if !buf.Annotate("evt-new", "group-1") {
		t.Error("annotating a live entry should return true")
	}
}

func TestBufferAnnotate(t *testing.T) {
	buf := NewBuffer(time.Minute)
	buf.Add(makeEvent("evt-1", "cam1", time.Now().UTC(), "person"))

	if !buf.Annotate("evt-1", "group-1") {
		t.Fatal("Annotate returned false for buffered entry")
	}

	events := buf.Snapshot()
	if events[0].CorrelationGroupID == nil || *events[0].CorrelationGroupID != "group-1" {
		t.Errorf("group id = %v, want group-1", events[0].CorrelationGroupID)
	}
}

func TestBufferStatsEmpty(t *testing.T) {
	buf := NewBuffer(time.Minute)

	stats := buf.Stats()
	if stats.BufferSize != 0 {
		t.Errorf("size = %d, want 0", stats.BufferSize)
	}
	if stats.OldestEventAgeSeconds != nil || stats.NewestEventAgeSeconds != nil {
		t.Error("expected nil ages for empty buffer")
	}
}

func TestBufferClear(t *testing.T) {
	buf := NewBuffer(time.Minute)
	now := time.Now().UTC()
	buf.Add(makeEvent("evt-1", "cam1", now, "person"))
	buf.Add(makeEvent("evt-2", "cam2", now, "person"))

	if removed := buf.Clear(); removed != 2 {
		t.Errorf("Clear removed %d, want 2", removed)
	}
	if buf.Size() != 0 {
		t.Errorf("size after clear = %d, want 0", buf.Size())
	}

	// Buffer remains usable after clear.
	buf.Add(makeEvent("evt-3", "cam1", now, "person"))
	if buf.Size() != 1 {
		t.Errorf("size after re-add = %d, want 1", buf.Size())
	}
}

// Argus - Home Security Event Processing Backend
// Copyright 2026 Argus Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/argushq/argus

package models

import (
	"testing"
)

func TestCorrelatedIDsRoundTrip(t *testing.T) {
	ids := []string{"event-1", "event-2", "event-3"}

	encoded, err := EncodeCorrelatedIDs(ids)
	if err != nil {
		t.Fatalf("EncodeCorrelatedIDs failed: %v", err)
	}

	event := &Event{ID: "event-1", CorrelatedEventIDs: &encoded}
	decoded, err := event.CorrelatedIDs()
	if err != nil {
		t.Fatalf("CorrelatedIDs failed: %v", err)
	}

	if len(decoded) != 3 {
		t.Fatalf("decoded %d ids, want 3", len(decoded))
	}
	for i, id := range ids {
		if decoded[i] != id {
			t.Errorf("decoded[%d] = %q, want %q", i, decoded[i], id)
		}
	}
}

func TestCorrelatedIDsNilWhenUncorrelated(t *testing.T) {
	event := &Event{ID: "event-1"}

	ids, err := event.CorrelatedIDs()
	if err != nil {
		t.Fatalf("CorrelatedIDs failed: %v", err)
	}
	if ids != nil {
		t.Errorf("expected nil ids for uncorrelated event, got %v", ids)
	}
}

func TestCorrelatedIDsMalformed(t *testing.T) {
	malformed := "{not json"
	event := &Event{ID: "event-1", CorrelatedEventIDs: &malformed}

	if _, err := event.CorrelatedIDs(); err == nil {
		t.Fatal("expected decode error for malformed correlated_event_ids")
	}
}

// Argus - Home Security Event Processing Backend
// Copyright 2026 Argus Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/argushq/argus

package correlation

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestResolveGroupMintsNewID(t *testing.T) {
	base := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	event := makeEvent("evt-2", "cam2", base.Add(5*time.Second), "person")
	candidates := []*BufferedEvent{
		buffered("evt-1", "cam1", base, "person"),
	}

	res := ResolveGroup(event, candidates)

	if res.Reused {
		t.Error("Reused = true, want false for ungrouped candidates")
	}
	if _, err := uuid.Parse(res.GroupID); err != nil {
		t.Errorf("minted group id %q is not a UUID: %v", res.GroupID, err)
	}
	if len(res.MemberIDs) != 2 || res.MemberIDs[0] != "evt-2" || res.MemberIDs[1] != "evt-1" {
		t.Errorf("MemberIDs = %v, want [evt-2 evt-1]", res.MemberIDs)
	}
}

func TestResolveGroupReusesExistingID(t *testing.T) {
	base := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	candidate := buffered("evt-3", "cam3", base, "person")
	candidate.CorrelationGroupID = strPtr("G1")

	event := makeEvent("evt-4", "cam4", base.Add(3*time.Second), "person")
	res := ResolveGroup(event, []*BufferedEvent{candidate})

	if !res.Reused {
		t.Error("Reused = false, want true")
	}
	if res.GroupID != "G1" {
		t.Errorf("GroupID = %q, want G1", res.GroupID)
	}
	if len(res.MemberIDs) != 2 || res.MemberIDs[0] != "evt-4" || res.MemberIDs[1] != "evt-3" {
		t.Errorf("MemberIDs = %v, want [evt-4 evt-3]", res.MemberIDs)
	}
	if len(res.BridgedGroupIDs) != 0 {
		t.Errorf("BridgedGroupIDs = %v, want empty", res.BridgedGroupIDs)
	}
}

func TestResolveGroupPicksFirstWhenBridging(t *testing.T) {
	base := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	c1 := buffered("evt-1", "cam1", base, "person")
	c1.CorrelationGroupID = strPtr("G1")
	c2 := buffered("evt-2", "cam2", base.Add(time.Second), "person")
	c2.CorrelationGroupID = strPtr("G2")
	c3 := buffered("evt-3", "cam3", base.Add(2*time.Second), "person")
	c3.CorrelationGroupID = strPtr("G2")

	event := makeEvent("evt-4", "cam4", base.Add(3*time.Second), "person")
	res := ResolveGroup(event, []*BufferedEvent{c1, c2, c3})

	// First group id in buffer order wins; the bridged group is reported
	// once, not merged.
	if res.GroupID != "G1" {
		t.Errorf("GroupID = %q, want G1 (first in buffer order)", res.GroupID)
	}
	if len(res.BridgedGroupIDs) != 1 || res.BridgedGroupIDs[0] != "G2" {
		t.Errorf("BridgedGroupIDs = %v, want [G2]", res.BridgedGroupIDs)
	}
	if len(res.MemberIDs) != 4 {
		t.Errorf("MemberIDs = %v, want all 4 events", res.MemberIDs)
	}
}

func TestResolveGroupDeduplicatesMembers(t *testing.T) {
	base := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	c := buffered("evt-1", "cam1", base, "person")

	event := makeEvent("evt-2", "cam2", base.Add(time.Second), "person")
	res := ResolveGroup(event, []*BufferedEvent{c, c})

	if len(res.MemberIDs) != 2 {
		t.Errorf("MemberIDs = %v, want deduplicated [evt-2 evt-1]", res.MemberIDs)
	}
}

func TestResolveGroupIgnoresEmptyGroupID(t *testing.T) {
	base := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	c := buffered("evt-1", "cam1", base, "person")
	c.CorrelationGroupID = strPtr("")

	event := makeEvent("evt-2", "cam2", base.Add(time.Second), "person")
	res := ResolveGroup(event, []*BufferedEvent{c})

	if res.Reused {
		t.Error("empty-string group id should not be reused")
	}
	if _, err := uuid.Parse(res.GroupID); err != nil {
		t.Errorf("expected freshly minted UUID, got %q", res.GroupID)
	}
}

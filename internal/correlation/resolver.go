// Argus - Home Security Event Processing Backend
// Copyright 2026 Argus Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/argushq/argus

package correlation

import "github.com/google/uuid"

// Resolution is the outcome of group resolution for a new event and its
// candidates.
type Resolution struct {
	// GroupID is the id assigned to the new event and every candidate.
	GroupID string

	// MemberIDs is the ordered unique membership list: the new event first,
	// then candidates in buffer order. Previously persisted members that
	// have expired from the buffer are not visible here; the service unions
	// them in from storage before writing.
	MemberIDs []string

	// Reused is true when GroupID came from a candidate rather than being
	// freshly minted.
	Reused bool

	// BridgedGroupIDs lists pre-existing group ids among the candidates
	// that were NOT chosen. Non-empty means a new event sits within the
	// window of two previously separate groups; the groups are not merged
	// retroactively, so this is logged for operators.
	BridgedGroupIDs []string
}

// ResolveGroup decides the correlation group id for a new event and its
// candidates. If any candidate already carries a group id, the first one in
// buffer order is reused so group ids stay stable as more cameras join an
// occurrence; otherwise a new id is minted. A lone event with no candidates
// never reaches this function and keeps a null group id until a later event
// links it.
func ResolveGroup(event Event, candidates []*BufferedEvent) Resolution {
	res := Resolution{
		MemberIDs: make([]string, 0, len(candidates)+1),
	}

	seen := make(map[string]struct{}, len(candidates)+1)
	res.MemberIDs = append(res.MemberIDs, event.ID)
	seen[event.ID] = struct{}{}

	for _, candidate := range candidates {
		if _, ok := seen[candidate.ID]; !ok {
			res.MemberIDs = append(res.MemberIDs, candidate.ID)
			seen[candidate.ID] = struct{}{}
		}
		if candidate.CorrelationGroupID == nil || *candidate.CorrelationGroupID == "" {
			continue
		}
		groupID := *candidate.CorrelationGroupID
		if res.GroupID == "" {
			res.GroupID = groupID
			res.Reused = true
		} else if groupID != res.GroupID && !contains(res.BridgedGroupIDs, groupID) {
			res.BridgedGroupIDs = append(res.BridgedGroupIDs, groupID)
		}
	}

	if res.GroupID == "" {
		res.GroupID = uuid.New().String()
	}
	return res
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

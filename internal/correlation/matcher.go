// Argus - Home Security Event Processing Backend
// Copyright 2026 Argus Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/argushq/argus

package correlation

import "time"

// Matcher decides which buffered events are eligible to correlate with a
// new event. Matching is a pure linear scan; the buffer is bounded by its
// max age times peak event rate, so the scan stays well under the 10ms
// latency target at production sizes.
type Matcher struct {
	window time.Duration
}

// NewMatcher creates a matcher with the given symmetric time window.
func NewMatcher(window time.Duration) *Matcher {
	return &Matcher{window: window}
}

// FindCandidates returns the buffered events eligible to correlate with
// event, in buffer insertion order. An entry is a candidate iff all hold:
//
//   - its timestamp is within the window of the event's own timestamp,
//     inclusive and symmetric; arrival order may differ from timestamp
//     order under clock skew, so buffer position is never used;
//   - it originates from a different camera (a single camera's sequential
//     events are motion continuation, not multi-camera correlation);
//   - both detection types are set and equal; unclassified events never
//     correlate.
//
// The returned events are the buffer's live records, not copies.
func (m *Matcher) FindCandidates(event Event, buffered []*BufferedEvent) []*BufferedEvent {
	if event.DetectionType == nil {
		return nil
	}

	var candidates []*BufferedEvent
	for _, candidate := range buffered {
		if candidate.ID == event.ID {
			continue
		}
		if candidate.CameraID == event.CameraID {
			continue
		}
		if candidate.DetectionType == nil || *candidate.DetectionType != *event.DetectionType {
			continue
		}
		delta := event.Timestamp.Sub(candidate.Timestamp)
		if delta < 0 {
			delta = -delta
		}
		if delta > m.window {
			continue
		}
		candidates = append(candidates, candidate)
	}
	return candidates
}

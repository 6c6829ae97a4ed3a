// Argus - Home Security Event Processing Backend
// Copyright 2026 Argus Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/argushq/argus

package correlation

import (
	"context"
	"fmt"
	"strings"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/argushq/argus/internal/logging"
	"github.com/argushq/argus/internal/metrics"
)

// EventStore is the persistence surface the correlation engine writes
// through. Implemented by the database layer; rows deleted between buffering
// and resolution must be silently skipped, never errored.
type EventStore interface {
	// UpdateCorrelation writes the group id and serialized member list to
	// every row whose id is in eventIDs and returns the rows modified.
	UpdateCorrelation(ctx context.Context, groupID string, eventIDs []string) (int, error)

	// GetCorrelatedEventIDs returns all event ids already persisted under a
	// group, so buffer-expired members can be unioned into an update.
	GetCorrelatedEventIDs(ctx context.Context, groupID string) ([]string, error)
}

// Config holds the correlation engine tunables.
type Config struct {
	// TimeWindow is the symmetric matching window around an event's
	// timestamp. Inclusive at the boundary.
	TimeWindow time.Duration

	// BufferMaxAge bounds how long events stay retrievable as candidates.
	// Must be comfortably larger than TimeWindow.
	BufferMaxAge time.Duration

	// PersistTimeout bounds each correlation write so a stuck database
	// cannot accumulate unbounded in-flight background work.
	PersistTimeout time.Duration

	// Circuit breaker settings for the persistence path.
	BreakerMaxRequests      uint32
	BreakerInterval         time.Duration
	BreakerTimeout          time.Duration
	BreakerFailureThreshold uint32
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		TimeWindow:              10 * time.Second,
		BufferMaxAge:            60 * time.Second,
		PersistTimeout:          5 * time.Second,
		BreakerMaxRequests:      3,
		BreakerInterval:         30 * time.Second,
		BreakerTimeout:          30 * time.Second,
		BreakerFailureThreshold: 5,
	}
}

// Service orchestrates buffer maintenance, candidate matching, group
// resolution, and persistence. It is the single entry point the ingestion
// pipeline calls, fire-and-forget, after persisting each event.
type Service struct {
	cfg     Config
	buffer  *Buffer
	matcher *Matcher
	store   EventStore
	breaker *gobreaker.CircuitBreaker[int]
}

// NewService creates a correlation service. store may be nil in tests that
// only exercise the in-memory pipeline; persistence is then skipped.
func NewService(cfg Config, store EventStore) *Service {
	defaults := DefaultConfig()
	if cfg.TimeWindow <= 0 {
		cfg.TimeWindow = defaults.TimeWindow
	}
	if cfg.BufferMaxAge <= 0 {
		cfg.BufferMaxAge = defaults.BufferMaxAge
	}
	if cfg.PersistTimeout <= 0 {
		cfg.PersistTimeout = defaults.PersistTimeout
	}
	if cfg.BreakerFailureThreshold == 0 {
		cfg.BreakerFailureThreshold = defaults.BreakerFailureThreshold
	}
	if cfg.BreakerTimeout <= 0 {
		cfg.BreakerTimeout = defaults.BreakerTimeout
	}

	s := &Service{
		cfg:     cfg,
		buffer:  NewBuffer(cfg.BufferMaxAge),
		matcher: NewMatcher(cfg.TimeWindow),
		store:   store,
	}

	s.breaker = gobreaker.NewCircuitBreaker[int](gobreaker.Settings{
		Name:        "correlation-persist",
		MaxRequests: cfg.BreakerMaxRequests,
		Interval:    cfg.BreakerInterval,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.BreakerFailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Correlation persistence circuit breaker state change")
		},
	})

	return s
}

// ProcessEvent correlates a freshly persisted event against the buffer and
// returns the resolved group id, or "" when the event found no partner (it
// stays in the buffer and may be linked by a later event).
//
// Never panics and never surfaces errors: correlation is best-effort
// enrichment, and a failure here must not affect event ingestion. Callers
// dispatch it in a goroutine and discard the result.
func (s *Service) ProcessEvent(ctx context.Context, event Event) (groupID string) {
	defer func() {
		if r := recover(); r != nil {
			metrics.CorrelationErrors.Inc()
			logging.Error().
				Str("event_id", event.ID).
				Interface("panic", r).
				Msg("Recovered panic in correlation processing")
			groupID = ""
		}
	}()

	metrics.CorrelationEventsProcessed.Inc()

	s.buffer.Add(event)
	metrics.CorrelationBufferSize.Set(float64(s.buffer.Size()))

	candidates := s.FindCandidates(event)
	if len(candidates) == 0 {
		logging.Debug().
			Str("event_id", event.ID).
			Str("camera_id", event.CameraID).
			Msg("No correlation candidates")
		return ""
	}

	res := ResolveGroup(event, candidates)
	if len(res.BridgedGroupIDs) > 0 {
		logging.Warn().
			Str("event_id", event.ID).
			Str("group_id", res.GroupID).
			Str("bridged_group_ids", strings.Join(res.BridgedGroupIDs, ",")).
			Msg("Event bridges pre-existing correlation groups; keeping first, not merging")
	}

	memberIDs := res.MemberIDs
	if res.Reused {
		memberIDs = s.unionPersistedMembers(ctx, res.GroupID, memberIDs)
	}

	rows, err := s.UpdateCorrelationInDB(ctx, res.GroupID, memberIDs)

	// The buffer keeps the locally resolved id even when the durable write
	// failed; future candidates then reuse the same id rather than minting
	// a divergent one.
	for _, id := range memberIDs {
		s.buffer.Annotate(id, res.GroupID)
	}

	if err != nil {
		metrics.CorrelationPersistFailures.Inc()
		logging.Warn().
			Err(err).
			Str("event_id", event.ID).
			Str("group_id", res.GroupID).
			Msg("Failed to persist correlation group")
		return ""
	}

	if res.Reused {
		metrics.CorrelationGroupsJoined.Inc()
	} else {
		metrics.CorrelationGroupsCreated.Inc()
	}

	logging.Debug().
		Str("event_id", event.ID).
		Str("group_id", res.GroupID).
		Int("members", len(memberIDs)).
		Int("rows_updated", rows).
		Bool("reused", res.Reused).
		Msg("Correlated event")
	return res.GroupID
}

// unionPersistedMembers merges ids already recorded under a reused group
// into the membership list. Older members may have expired from the buffer,
// and overwriting correlated_event_ids without them would shrink the
// persisted group. Read failures degrade to buffer-visible members only.
func (s *Service) unionPersistedMembers(ctx context.Context, groupID string, memberIDs []string) []string {
	if s.store == nil {
		return memberIDs
	}

	readCtx, cancel := context.WithTimeout(ctx, s.cfg.PersistTimeout)
	defer cancel()

	persisted, err := s.store.GetCorrelatedEventIDs(readCtx, groupID)
	if err != nil {
		logging.Warn().
			Err(err).
			Str("group_id", groupID).
			Msg("Failed to read persisted group members; using buffer-visible members only")
		return memberIDs
	}

	seen := make(map[string]struct{}, len(memberIDs)+len(persisted))
	for _, id := range memberIDs {
		seen[id] = struct{}{}
	}
	for _, id := range persisted {
		if _, ok := seen[id]; !ok {
			memberIDs = append(memberIDs, id)
			seen[id] = struct{}{}
		}
	}
	return memberIDs
}

// UpdateCorrelationInDB writes the group id and member list to storage
// through the circuit breaker, bounded by the persist timeout. Returns the
// number of rows modified.
func (s *Service) UpdateCorrelationInDB(ctx context.Context, groupID string, eventIDs []string) (int, error) {
	if s.store == nil {
		return 0, fmt.Errorf("no event store configured")
	}

	writeCtx, cancel := context.WithTimeout(ctx, s.cfg.PersistTimeout)
	defer cancel()

	return s.breaker.Execute(func() (int, error) {
		return s.store.UpdateCorrelation(writeCtx, groupID, eventIDs)
	})
}

// AddToBuffer snapshots the event into the sliding window without running
// correlation. Exposed for direct testing and buffer priming.
func (s *Service) AddToBuffer(event Event) *BufferedEvent {
	buffered := s.buffer.Add(event)
	metrics.CorrelationBufferSize.Set(float64(s.buffer.Size()))
	return buffered
}

// FindCandidates scans the buffer for events eligible to correlate with
// event, in buffer insertion order.
func (s *Service) FindCandidates(event Event) []*BufferedEvent {
	start := time.Now()
	candidates := s.matcher.FindCandidates(event, s.buffer.Snapshot())
	metrics.CorrelationScanDuration.Observe(time.Since(start).Seconds())
	return candidates
}

// DetermineGroup resolves the group id and membership for an event and its
// candidates without touching storage.
func (s *Service) DetermineGroup(event Event, candidates []*BufferedEvent) Resolution {
	return ResolveGroup(event, candidates)
}

// UpdateBufferWithCorrelation annotates a buffered entry with a resolved
// group id. Returns false if the entry has expired from the window.
func (s *Service) UpdateBufferWithCorrelation(eventID, groupID string) bool {
	return s.buffer.Annotate(eventID, groupID)
}

// BufferStats reports the buffer size and entry ages for the system
// endpoint.
func (s *Service) BufferStats() Stats {
	return s.buffer.Stats()
}

// ClearBuffer empties the sliding window and returns the entries removed.
// Used by tests and the administrative reset endpoint.
func (s *Service) ClearBuffer() int {
	removed := s.buffer.Clear()
	metrics.CorrelationBufferSize.Set(0)
	return removed
}

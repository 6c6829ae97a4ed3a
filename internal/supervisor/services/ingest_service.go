// Argus - Home Security Event Processing Backend
// Copyright 2026 Argus Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/argushq/argus

package services

import (
	"context"
	"errors"
	"fmt"
)

// IngestRunner matches the blocking consume loop of the event ingest
// pipeline. An interface so the wrapper stays decoupled from the NATS
// wiring and tests can use fakes.
//
// Satisfied by the bound handler+subscriber pair assembled in cmd/server:
// Run subscribes to the camera event topic and processes messages until
// the context is canceled.
type IngestRunner interface {
	Run(ctx context.Context) error
}

// IngestService wraps the NATS event consumer as a supervised service.
//
// Run already blocks until context cancellation, so Serve is a thin
// translation: a clean context-canceled return maps to ctx.Err() so suture
// treats it as an orderly stop, while any other error propagates and
// triggers a supervised restart. The underlying JetStream consumer is
// durable, so a restart resumes from the last acknowledged message.
type IngestService struct {
	runner IngestRunner
	name   string
}

// NewIngestService creates a new ingest service wrapper.
func NewIngestService(runner IngestRunner) *IngestService {
	return &IngestService{
		runner: runner,
		name:   "event-ingest",
	}
}

// Serve implements suture.Service.
func (s *IngestService) Serve(ctx context.Context) error {
	err := s.runner.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("event ingest failed: %w", err)
	}
	return ctx.Err()
}

// String implements fmt.Stringer for supervisor logging.
func (s *IngestService) String() string {
	return s.name
}

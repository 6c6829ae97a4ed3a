// Argus - Home Security Event Processing Backend
// Copyright 2026 Argus Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/argushq/argus

package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/thejerf/suture/v4"
)

// mockIngestRunner is a test double for the IngestRunner interface.
type mockIngestRunner struct {
	runErr  error
	started chan struct{}
}

func newMockIngestRunner() *mockIngestRunner {
	return &mockIngestRunner{started: make(chan struct{})}
}

func (m *mockIngestRunner) Run(ctx context.Context) error {
	close(m.started)
	if m.runErr != nil {
		return m.runErr
	}
	<-ctx.Done()
	return ctx.Err()
}

func TestIngestServiceImplementsSutureService(t *testing.T) {
	var _ suture.Service = (*IngestService)(nil)
}

func TestIngestServiceCleanShutdown(t *testing.T) {
	runner := newMockIngestRunner()
	svc := NewIngestService(runner)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()

	select {
	case <-runner.started:
	case <-time.After(time.Second):
		t.Fatal("runner never started")
	}
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve returned %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after cancellation")
	}
}

func TestIngestServicePropagatesRunnerError(t *testing.T) {
	runner := newMockIngestRunner()
	runner.runErr = errors.New("subscribe failed")
	svc := NewIngestService(runner)

	err := svc.Serve(context.Background())
	if err == nil || !errors.Is(err, runner.runErr) {
		t.Errorf("Serve returned %v, want wrapped runner error", err)
	}
}

func TestIngestServiceString(t *testing.T) {
	svc := NewIngestService(newMockIngestRunner())
	if svc.String() != "event-ingest" {
		t.Errorf("String() = %q, want event-ingest", svc.String())
	}
}

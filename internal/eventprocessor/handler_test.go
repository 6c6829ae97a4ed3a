// Argus - Home Security Event Processing Backend
// Copyright 2026 Argus Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/argushq/argus

package eventprocessor

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/argushq/argus/internal/correlation"
	"github.com/argushq/argus/internal/models"
)

type fakeWriter struct {
	mu       sync.Mutex
	inserted []*models.Event
	fail     bool
}

func (f *fakeWriter) InsertEvent(_ context.Context, event *models.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("database unreachable")
	}
	f.inserted = append(f.inserted, event)
	return nil
}

func (f *fakeWriter) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.inserted)
}

type fakeCorrelator struct {
	dispatched chan correlation.Event
}

func newFakeCorrelator() *fakeCorrelator {
	return &fakeCorrelator{dispatched: make(chan correlation.Event, 16)}
}

func (f *fakeCorrelator) ProcessEvent(_ context.Context, event correlation.Event) string {
	f.dispatched <- event
	return ""
}

func eventMessage(t *testing.T, event *CameraEvent) *message.Message {
	t.Helper()
	data, err := event.EncodePayload()
	if err != nil {
		t.Fatalf("EncodePayload failed: %v", err)
	}
	return message.NewMessage(event.EventID, data)
}

func TestHandleMessagePersistsAndDispatches(t *testing.T) {
	writer := &fakeWriter{}
	correlator := newFakeCorrelator()
	handler := NewIngestHandler(DefaultHandlerConfig(), writer, correlator)

	event := validEvent()
	if err := handler.HandleMessage(context.Background(), eventMessage(t, event)); err != nil {
		t.Fatalf("HandleMessage failed: %v", err)
	}

	if writer.count() != 1 {
		t.Fatalf("inserted %d events, want 1", writer.count())
	}

	select {
	case dispatched := <-correlator.dispatched:
		if dispatched.ID != event.EventID {
			t.Errorf("dispatched event id = %q, want %q", dispatched.ID, event.EventID)
		}
		if dispatched.DetectionType == nil || *dispatched.DetectionType != models.DetectionTypePerson {
			t.Errorf("dispatched detection type = %v, want person", dispatched.DetectionType)
		}
	case <-time.After(time.Second):
		t.Fatal("correlation dispatch never happened")
	}
}

func TestHandleMessageDropsMalformedPayload(t *testing.T) {
	writer := &fakeWriter{}
	handler := NewIngestHandler(DefaultHandlerConfig(), writer, nil)

	msg := message.NewMessage("bad", []byte("{not json"))
	if err := handler.HandleMessage(context.Background(), msg); err != nil {
		t.Errorf("malformed payload should be dropped without error, got %v", err)
	}
	if writer.count() != 0 {
		t.Error("malformed payload should not be persisted")
	}
}

func TestHandleMessageDropsInvalidEvent(t *testing.T) {
	writer := &fakeWriter{}
	handler := NewIngestHandler(DefaultHandlerConfig(), writer, nil)

	// Serialize manually to bypass publish-side validation.
	msg := message.NewMessage("bad", []byte(`{"event_id":"e1","camera_id":"","timestamp":"2026-08-30T12:00:00Z"}`))
	if err := handler.HandleMessage(context.Background(), msg); err != nil {
		t.Errorf("invalid event should be dropped without error, got %v", err)
	}
	if writer.count() != 0 {
		t.Error("invalid event should not be persisted")
	}
}

func TestHandleMessageDeadLettersPoisonPayloads(t *testing.T) {
	writer := &fakeWriter{}
	handler := NewIngestHandler(DefaultHandlerConfig(), writer, nil)

	pub := &fakePublisher{}
	dlq, err := NewDeadLetterQueue(pub, "")
	if err != nil {
		t.Fatalf("NewDeadLetterQueue failed: %v", err)
	}
	handler.SetDeadLetterQueue(dlq)

	// Undecodable payload.
	msg := message.NewMessage("bad-1", []byte("{not json"))
	if err := handler.HandleMessage(context.Background(), msg); err != nil {
		t.Errorf("poison payload should still be acked, got %v", err)
	}

	// Decodable but invalid event.
	msg = message.NewMessage("bad-2", []byte(`{"event_id":"e1","camera_id":"","timestamp":"2026-08-30T12:00:00Z"}`))
	if err := handler.HandleMessage(context.Background(), msg); err != nil {
		t.Errorf("invalid event should still be acked, got %v", err)
	}

	msgs := pub.published()
	if len(msgs) != 2 {
		t.Fatalf("dead-lettered %d messages, want 2", len(msgs))
	}
	if got := msgs[0].Metadata.Get(DLQMetaReason); got != "deserialize" {
		t.Errorf("first reason = %q, want deserialize", got)
	}
	if got := msgs[1].Metadata.Get(DLQMetaReason); got != "validate" {
		t.Errorf("second reason = %q, want validate", got)
	}
	if writer.count() != 0 {
		t.Error("poison payloads should not be persisted")
	}
}

func TestHandleMessageAcksWhenDeadLetteringFails(t *testing.T) {
	writer := &fakeWriter{}
	handler := NewIngestHandler(DefaultHandlerConfig(), writer, nil)

	dlq, err := NewDeadLetterQueue(&fakePublisher{fail: true}, "")
	if err != nil {
		t.Fatalf("NewDeadLetterQueue failed: %v", err)
	}
	handler.SetDeadLetterQueue(dlq)

	// A broken dead letter path must not turn a drop into a redelivery loop.
	msg := message.NewMessage("bad", []byte("{not json"))
	if err := handler.HandleMessage(context.Background(), msg); err != nil {
		t.Errorf("message should be acked even when dead-lettering fails, got %v", err)
	}
}

func TestHandleMessageNacksOnDatabaseError(t *testing.T) {
	writer := &fakeWriter{fail: true}
	handler := NewIngestHandler(DefaultHandlerConfig(), writer, nil)

	err := handler.HandleMessage(context.Background(), eventMessage(t, validEvent()))
	if err == nil {
		t.Error("database failure should return an error so the message is redelivered")
	}
}

func TestHandleMessageWithoutCorrelator(t *testing.T) {
	writer := &fakeWriter{}
	handler := NewIngestHandler(DefaultHandlerConfig(), writer, nil)

	if err := handler.HandleMessage(context.Background(), eventMessage(t, validEvent())); err != nil {
		t.Fatalf("HandleMessage failed: %v", err)
	}
	if writer.count() != 1 {
		t.Errorf("inserted %d events, want 1", writer.count())
	}
}

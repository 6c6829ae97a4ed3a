// Argus - Home Security Event Processing Backend
// Copyright 2026 Argus Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/argushq/argus

package eventprocessor

import (
	"github.com/ThreeDotsLabs/watermill"
	"github.com/rs/zerolog"

	"github.com/argushq/argus/internal/logging"
)

// WatermillLogger adapts Watermill's logging interface to the application's
// zerolog logger so transport internals log through one pipeline.
type WatermillLogger struct {
	fields watermill.LogFields
}

// NewWatermillLogger creates a logger adapter for Watermill components.
func NewWatermillLogger() *WatermillLogger {
	return &WatermillLogger{}
}

// Error logs a transport error.
func (l *WatermillLogger) Error(msg string, err error, fields watermill.LogFields) {
	l.emit(logging.Error().Err(err), msg, fields)
}

// Info logs transport lifecycle messages at debug level; Watermill's info
// output is operational noise at the application's info level.
func (l *WatermillLogger) Info(msg string, fields watermill.LogFields) {
	l.emit(logging.Debug(), msg, fields)
}

// Debug logs transport debug messages.
func (l *WatermillLogger) Debug(msg string, fields watermill.LogFields) {
	l.emit(logging.Debug(), msg, fields)
}

// Trace logs transport trace messages.
func (l *WatermillLogger) Trace(msg string, fields watermill.LogFields) {
	l.emit(logging.Trace(), msg, fields)
}

// With returns a logger that includes the given fields on every message.
func (l *WatermillLogger) With(fields watermill.LogFields) watermill.LoggerAdapter {
	return &WatermillLogger{fields: l.fields.Add(fields)}
}

func (l *WatermillLogger) emit(event *zerolog.Event, msg string, fields watermill.LogFields) {
	for k, v := range l.fields {
		event = event.Interface(k, v)
	}
	for k, v := range fields {
		event = event.Interface(k, v)
	}
	event.Msg(msg)
}

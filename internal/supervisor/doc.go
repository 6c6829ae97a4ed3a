// Argus - Home Security Event Processing Backend
// Copyright 2026 Argus Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/argushq/argus

/*
Package supervisor provides process supervision for Argus using suture v4.

The supervisor tree organizes long-running services into two layers for
failure isolation:

	RootSupervisor ("argus")
	├── IngestSupervisor ("ingest-layer")
	│   └── IngestService (NATS JetStream consumer, if enabled)
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

A crash in the ingest pipeline restarts only that layer; the HTTP API keeps
serving queries against already-persisted events. Crashed services are
restarted with exponential backoff, and the whole tree shuts down gracefully
on context cancellation.

Supervisor lifecycle events are logged through sutureslog, bridged to the
application's zerolog output via logging.NewSlogLogger.
*/
package supervisor

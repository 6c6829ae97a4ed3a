// Argus - Home Security Event Processing Backend
// Copyright 2026 Argus Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/argushq/argus

/*
Package services provides suture.Service wrappers for Argus components.

Each wrapper adapts a component lifecycle (ListenAndServe, blocking Run) to
suture's context-aware Serve pattern, handling graceful shutdown via context
cancellation and error propagation for supervisor restart decisions. All
wrappers implement fmt.Stringer so suture can identify them in logs.
*/
package services

// Argus - Home Security Event Processing Backend
// Copyright 2026 Argus Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/argushq/argus

package correlation

import "sync"

// All ingestion paths must share one buffer, so production runs exactly one
// service per process. The entry point constructs it explicitly and installs
// it with SetDefault; Default falls back to a lazily built instance without
// persistence so library consumers never get a nil service.
var (
	defaultMu      sync.Mutex
	defaultService *Service
)

// Default returns the process-wide correlation service, lazily constructing
// one with default settings and no event store if none was installed.
func Default() *Service {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	if defaultService == nil {
		defaultService = NewService(DefaultConfig(), nil)
	}
	return defaultService
}

// SetDefault installs the process-wide correlation service. Called once at
// startup after the store is wired.
func SetDefault(svc *Service) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultService = svc
}

// Reset tears down the process-wide instance and clears its buffer. Test
// isolation only.
func Reset() {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	if defaultService != nil {
		defaultService.ClearBuffer()
		defaultService = nil
	}
}

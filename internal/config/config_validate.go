// Argus - Home Security Event Processing Backend
// Copyright 2026 Argus Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/argushq/argus

package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// validate is the shared validator instance for struct tag validation.
var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the configuration for invalid or inconsistent values.
// Struct tag validation covers field-level constraints; the checks below
// cover relationships between fields that tags cannot express.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
			ve := verrs[0]
			return fmt.Errorf("invalid config value for %s (rule %q)", ve.Namespace(), ve.Tag())
		}
		return fmt.Errorf("config validation: %w", err)
	}

	checks := []func() error{
		c.validateCorrelation,
		c.validateNATS,
		c.validateAPI,
	}
	for _, check := range checks {
		if err := check(); err != nil {
			return err
		}
	}
	return nil
}

// validateCorrelation enforces the buffer/window relationship: an event must
// stay in the buffer at least as long as later events can match against it.
func (c *Config) validateCorrelation() error {
	if c.Correlation.BufferMaxAgeSeconds < c.Correlation.TimeWindowSeconds {
		return fmt.Errorf(
			"correlation.buffer_max_age_seconds (%d) must be >= correlation.time_window_seconds (%d)",
			c.Correlation.BufferMaxAgeSeconds, c.Correlation.TimeWindowSeconds,
		)
	}
	return nil
}

func (c *Config) validateNATS() error {
	if !c.NATS.Enabled {
		return nil
	}
	if c.NATS.URL == "" {
		return fmt.Errorf("nats.url is required when nats.enabled is true")
	}
	if c.NATS.EmbeddedServer && c.NATS.StoreDir == "" {
		return fmt.Errorf("nats.store_dir is required when nats.embedded_server is true")
	}
	if c.NATS.StreamName == "" {
		return fmt.Errorf("nats.stream_name is required when nats.enabled is true")
	}
	return nil
}

func (c *Config) validateAPI() error {
	if c.API.MaxPageSize < c.API.DefaultPageSize {
		return fmt.Errorf(
			"api.max_page_size (%d) must be >= api.default_page_size (%d)",
			c.API.MaxPageSize, c.API.DefaultPageSize,
		)
	}
	return nil
}

// Mixtape - Playlist Continuation Model Training
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mixtape

package config

import (
	"errors"

	"github.com/tomtom215/mixtape/internal/validation"
)

// Validate checks struct tags first, then rules spanning several fields.
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(c); err != nil {
		return err
	}

	if err := c.validateData(); err != nil {
		return err
	}

	if err := c.validateStorage(); err != nil {
		return err
	}

	return c.validateMetrics()
}

func (c *Config) validateData() error {
	if len(c.Data.SliceStarts) == 0 && c.Data.ChallengePath == "" {
		return errors.New("data.slice_starts or data.challenge_path must be set")
	}
	return nil
}

func (c *Config) validateStorage() error {
	if !c.Storage.InMemory && c.Storage.Path == "" {
		return errors.New("storage.path is required unless storage.in_memory is set")
	}
	return nil
}

func (c *Config) validateMetrics() error {
	if c.Metrics.Enabled && c.Metrics.Addr == "" {
		return errors.New("metrics.addr is required when metrics.enabled is set")
	}
	return nil
}

// Mixtape - Playlist Continuation Model Training
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mixtape

package sampler

import "fmt"

// Config contains configuration for the instance generator.
type Config struct {
	// NumNegatives is the number of negatives emitted after each positive.
	// Default: 4.
	NumNegatives int

	// MaxRetries caps the draws spent on a single negative slot.
	// Default: 1000.
	MaxRetries int

	// Workers is the number of goroutines generating row shards.
	// Default: 1.
	Workers int
}

// DefaultConfig returns default generator configuration.
func DefaultConfig() Config {
	return Config{
		NumNegatives: 4,
		MaxRetries:   1000,
		Workers:      1,
	}
}

// WithDefaults fills zero fields.
func (c Config) WithDefaults() Config {
	def := DefaultConfig()
	if c.NumNegatives == 0 {
		c.NumNegatives = def.NumNegatives
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = def.MaxRetries
	}
	if c.Workers == 0 {
		c.Workers = def.Workers
	}
	return c
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.NumNegatives <= 0 {
		return fmt.Errorf("sampler.num_negatives must be positive, got %d", c.NumNegatives)
	}
	if c.MaxRetries <= 0 {
		return fmt.Errorf("sampler.max_retries must be positive, got %d", c.MaxRetries)
	}
	if c.Workers <= 0 {
		return fmt.Errorf("sampler.workers must be positive, got %d", c.Workers)
	}
	return nil
}

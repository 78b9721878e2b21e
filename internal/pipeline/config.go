// Mixtape - Playlist Continuation Model Training
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mixtape

package pipeline

import (
	"fmt"

	"github.com/tomtom215/mixtape/internal/gmf"
	"github.com/tomtom215/mixtape/internal/sampler"
)

// Config controls a pipeline run.
type Config struct {
	// NumPlaylists is the matrix row count. 0 uses the largest training
	// playlist id plus one.
	NumPlaylists int

	// SkipMalformed drops track entries without a uri instead of failing.
	SkipMalformed bool

	// Epochs is the number of generate-then-train passes. Default: 15.
	Epochs int

	// Sampler configures instance generation.
	Sampler sampler.Config

	// SamplerSeed seeds the epoch seed stream. Default: 42.
	SamplerSeed uint64

	// Model configures the GMF scorer built by NewModel.
	Model gmf.Config

	// K is the default recommendation list length. Default: 500.
	K int

	// IncludeKnown keeps a playlist's own tracks as ranking candidates.
	IncludeKnown bool
}

// DefaultConfig returns default pipeline configuration.
func DefaultConfig() Config {
	return Config{
		Epochs:      15,
		Sampler:     sampler.DefaultConfig(),
		SamplerSeed: 42,
		Model:       gmf.DefaultConfig(),
		K:           500,
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.NumPlaylists < 0 {
		return fmt.Errorf("dataset.num_playlists must be non-negative, got %d", c.NumPlaylists)
	}
	if c.Epochs <= 0 {
		return fmt.Errorf("model.epochs must be positive, got %d", c.Epochs)
	}
	if c.K <= 0 {
		return fmt.Errorf("recommend.k must be positive, got %d", c.K)
	}
	if err := c.Sampler.Validate(); err != nil {
		return err
	}
	return c.Model.Validate()
}

// Mixtape - Playlist Continuation Model Training
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mixtape

package gmf

import "fmt"

// Config contains configuration for the GMF model.
type Config struct {
	// LatentDim is the size of the playlist and track embeddings.
	// Default: 8.
	LatentDim int

	// RegPlaylist and RegTrack are L2 penalties on embedding rows.
	// Default: 0.
	RegPlaylist float64
	RegTrack    float64

	// LearningRate is the Adam step size.
	// Default: 0.001.
	LearningRate float64

	// Beta1, Beta2 and Epsilon are the Adam moment parameters.
	// Defaults: 0.9, 0.999, 1e-7.
	Beta1   float64
	Beta2   float64
	Epsilon float64

	// BatchSize is the number of instances per gradient step.
	// Default: 200.
	BatchSize int

	// ValidationSplit is the trailing fraction of each epoch's instances
	// held out for evaluation. Must be in [0, 1).
	// Default: 0.2.
	ValidationSplit float64

	// InitStdDev is the standard deviation of the embedding initialiser.
	// Default: 0.01.
	InitStdDev float64

	// Seed for initialisation and shuffling.
	// If 0, uses a default seed.
	Seed int64
}

// DefaultConfig returns default GMF configuration.
func DefaultConfig() Config {
	return Config{
		LatentDim:       8,
		LearningRate:    0.001,
		Beta1:           0.9,
		Beta2:           0.999,
		Epsilon:         1e-7,
		BatchSize:       200,
		ValidationSplit: 0.2,
		InitStdDev:      0.01,
		Seed:            42,
	}
}

// WithDefaults fills zero fields. ValidationSplit and the regularisers keep
// zero as a meaningful value.
func (c Config) WithDefaults() Config {
	def := DefaultConfig()
	if c.LatentDim == 0 {
		c.LatentDim = def.LatentDim
	}
	if c.LearningRate == 0 {
		c.LearningRate = def.LearningRate
	}
	if c.Beta1 == 0 {
		c.Beta1 = def.Beta1
	}
	if c.Beta2 == 0 {
		c.Beta2 = def.Beta2
	}
	if c.Epsilon == 0 {
		c.Epsilon = def.Epsilon
	}
	if c.BatchSize == 0 {
		c.BatchSize = def.BatchSize
	}
	if c.InitStdDev == 0 {
		c.InitStdDev = def.InitStdDev
	}
	if c.Seed == 0 {
		c.Seed = def.Seed
	}
	return c
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.LatentDim <= 0 {
		return fmt.Errorf("model.latent_dim must be positive, got %d", c.LatentDim)
	}
	if c.LearningRate <= 0 {
		return fmt.Errorf("model.learning_rate must be positive, got %g", c.LearningRate)
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("model.batch_size must be positive, got %d", c.BatchSize)
	}
	if c.RegPlaylist < 0 || c.RegTrack < 0 {
		return fmt.Errorf("model regularisation must be non-negative, got %g/%g", c.RegPlaylist, c.RegTrack)
	}
	if c.ValidationSplit < 0 || c.ValidationSplit >= 1 {
		return fmt.Errorf("model.validation_split must be in [0, 1), got %g", c.ValidationSplit)
	}
	if c.Beta1 < 0 || c.Beta1 >= 1 || c.Beta2 < 0 || c.Beta2 >= 1 {
		return fmt.Errorf("model adam betas must be in [0, 1), got %g/%g", c.Beta1, c.Beta2)
	}
	if c.Epsilon <= 0 || c.InitStdDev <= 0 {
		return fmt.Errorf("model epsilon and init_std_dev must be positive")
	}
	return nil
}

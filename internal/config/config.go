// Mixtape - Playlist Continuation Model Training
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mixtape

package config

import (
	"os"

	"github.com/tomtom215/mixtape/internal/gmf"
	"github.com/tomtom215/mixtape/internal/ingest"
	"github.com/tomtom215/mixtape/internal/logging"
	"github.com/tomtom215/mixtape/internal/pipeline"
	"github.com/tomtom215/mixtape/internal/sampler"
	"github.com/tomtom215/mixtape/internal/storage"
)

// Config holds all application configuration.
type Config struct {
	Data      DataConfig      `koanf:"data"`
	Dataset   DatasetConfig   `koanf:"dataset"`
	Sampler   SamplerConfig   `koanf:"sampler"`
	Model     ModelConfig     `koanf:"model"`
	Recommend RecommendConfig `koanf:"recommend"`
	Storage   StorageConfig   `koanf:"storage"`
	Metrics   MetricsConfig   `koanf:"metrics"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// DataConfig locates the MPD files.
type DataConfig struct {
	Dir           string `koanf:"dir" validate:"required"`
	SliceStarts   []int  `koanf:"slice_starts" validate:"dive,slicestart"`
	ChallengePath string `koanf:"challenge_path"`
	Workers       int    `koanf:"workers" validate:"min=1"`
}

// DatasetConfig controls flattening and matrix shape.
type DatasetConfig struct {
	// NumPlaylists is the matrix row count. 0 derives it from the data.
	NumPlaylists  int  `koanf:"num_playlists" validate:"gte=0"`
	SkipMalformed bool `koanf:"skip_malformed"`
}

// SamplerConfig controls training-instance generation.
type SamplerConfig struct {
	NumNegatives int    `koanf:"num_negatives" validate:"min=1"`
	MaxRetries   int    `koanf:"max_retries" validate:"min=1"`
	Workers      int    `koanf:"workers" validate:"min=1"`
	Seed         uint64 `koanf:"seed"`
}

// ModelConfig holds GMF hyperparameters.
type ModelConfig struct {
	LatentDim       int     `koanf:"latent_dim" validate:"min=1"`
	RegPlaylist     float64 `koanf:"reg_playlist" validate:"gte=0"`
	RegTrack        float64 `koanf:"reg_track" validate:"gte=0"`
	LearningRate    float64 `koanf:"learning_rate" validate:"gt=0"`
	BatchSize       int     `koanf:"batch_size" validate:"min=1"`
	Epochs          int     `koanf:"epochs" validate:"min=1"`
	ValidationSplit float64 `koanf:"validation_split" validate:"gte=0,lt=1"`
	Seed            int64   `koanf:"seed"`
}

// RecommendConfig controls ranking output.
type RecommendConfig struct {
	K          int    `koanf:"k" validate:"min=1"`
	OutputPath string `koanf:"output_path"`

	// IncludeKnown keeps tracks already in the playlist as candidates.
	IncludeKnown bool `koanf:"include_known"`
}

// StorageConfig locates the artifact store.
type StorageConfig struct {
	Path         string `koanf:"path"`
	InMemory     bool   `koanf:"in_memory"`
	SyncWrites   bool   `koanf:"sync_writes"`
	KeepVersions int    `koanf:"keep_versions" validate:"gte=0"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `koanf:"enabled"`
	Addr    string `koanf:"addr" validate:"omitempty,hostname_port"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error disabled"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// IngestConfig returns the loader configuration.
func (c *Config) IngestConfig() ingest.Config {
	return ingest.Config{
		Dir:           c.Data.Dir,
		SliceStarts:   append([]int(nil), c.Data.SliceStarts...),
		ChallengePath: c.Data.ChallengePath,
		Workers:       c.Data.Workers,
	}
}

// SamplerConfig returns the generator configuration.
func (c *Config) SamplerConfig() sampler.Config {
	return sampler.Config{
		NumNegatives: c.Sampler.NumNegatives,
		MaxRetries:   c.Sampler.MaxRetries,
		Workers:      c.Sampler.Workers,
	}
}

// ModelConfig returns the GMF configuration.
func (c *Config) ModelConfig() gmf.Config {
	cfg := gmf.DefaultConfig()
	cfg.LatentDim = c.Model.LatentDim
	cfg.RegPlaylist = c.Model.RegPlaylist
	cfg.RegTrack = c.Model.RegTrack
	cfg.LearningRate = c.Model.LearningRate
	cfg.BatchSize = c.Model.BatchSize
	cfg.ValidationSplit = c.Model.ValidationSplit
	cfg.Seed = c.Model.Seed
	return cfg
}

// PipelineConfig returns the engine configuration.
func (c *Config) PipelineConfig() pipeline.Config {
	return pipeline.Config{
		NumPlaylists:  c.Dataset.NumPlaylists,
		SkipMalformed: c.Dataset.SkipMalformed,
		Epochs:        c.Model.Epochs,
		Sampler:       c.SamplerConfig(),
		SamplerSeed:   c.Sampler.Seed,
		Model:         c.ModelConfig(),
		K:             c.Recommend.K,
		IncludeKnown:  c.Recommend.IncludeKnown,
	}
}

// StorageConfig returns the artifact store configuration.
func (c *Config) StorageConfig() storage.Config {
	return storage.Config{
		Path:       c.Storage.Path,
		InMemory:   c.Storage.InMemory,
		SyncWrites: c.Storage.SyncWrites,
	}
}

// LoggingConfig returns the logger configuration.
func (c *Config) LoggingConfig() logging.Config {
	cfg := logging.DefaultConfig()
	cfg.Level = c.Logging.Level
	cfg.Format = c.Logging.Format
	cfg.Caller = c.Logging.Caller
	cfg.Output = os.Stderr
	return cfg
}

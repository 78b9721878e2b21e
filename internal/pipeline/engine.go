// Mixtape - Playlist Continuation Model Training
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mixtape

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/tomtom215/mixtape/internal/gmf"
	"github.com/tomtom215/mixtape/internal/interaction"
	"github.com/tomtom215/mixtape/internal/metrics"
	"github.com/tomtom215/mixtape/internal/playlist"
	"github.com/tomtom215/mixtape/internal/rank"
	"github.com/tomtom215/mixtape/internal/sampler"
	"github.com/tomtom215/mixtape/internal/trackindex"
)

// DataProvider supplies raw playlists. *ingest.Loader implements it.
type DataProvider interface {
	LoadPlaylists(ctx context.Context) ([]playlist.Playlist, error)
}

// Scorer is a trainable (playlist, track) scorer. *gmf.Model implements it.
type Scorer interface {
	rank.Predictor

	// Train runs one epoch over instances.
	Train(ctx context.Context, instances []sampler.Instance) (gmf.LossMetrics, error)
}

// Dataset is the prepared, read-only input of a run.
type Dataset struct {
	// Playlists is the number of playlist records loaded.
	Playlists int

	// ChallengeIDs lists challenge playlists in first-seen order,
	// including those without seed tracks.
	ChallengeIDs []int

	Records   []playlist.RawInteractionRecord
	Training  []playlist.RawInteractionRecord
	Challenge []playlist.RawInteractionRecord
	Malformed []*playlist.MalformedRecordError
	Index     *trackindex.Index
	Matrix    *interaction.Matrix
}

// Stats summarises a dataset.
type Stats struct {
	Playlists          int     `json:"playlists"`
	ChallengePlaylists int     `json:"challenge_playlists"`
	MatrixRows         int     `json:"matrix_rows"`
	TrainingRows       int     `json:"training_rows"`
	ChallengeRows      int     `json:"challenge_rows"`
	Malformed          int     `json:"malformed"`
	Tracks             int     `json:"tracks"`
	Nonzeros           int     `json:"nonzeros"`
	Density            float64 `json:"density"`
}

// Stats returns the dataset summary.
func (d *Dataset) Stats() Stats {
	return Stats{
		Playlists:          d.Playlists,
		ChallengePlaylists: len(d.ChallengeIDs),
		MatrixRows:         d.Matrix.NumPlaylists(),
		TrainingRows:       len(d.Training),
		ChallengeRows:      len(d.Challenge),
		Malformed:          len(d.Malformed),
		Tracks:             d.Index.Len(),
		Nonzeros:           d.Matrix.NNZ(),
		Density:            d.Matrix.Density(),
	}
}

// Engine runs the prepare, train and recommend stages.
type Engine struct {
	config   Config
	provider DataProvider
	logger   zerolog.Logger

	trainMu sync.Mutex
}

// NewEngine creates an engine reading playlists from provider.
//
//nolint:gocritic // hugeParam: logger is passed by value throughout the codebase
func NewEngine(cfg Config, provider DataProvider, logger zerolog.Logger) (*Engine, error) {
	if provider == nil {
		return nil, errors.New("pipeline: nil data provider")
	}
	def := DefaultConfig()
	if cfg.Epochs == 0 {
		cfg.Epochs = def.Epochs
	}
	if cfg.K == 0 {
		cfg.K = def.K
	}
	if cfg.SamplerSeed == 0 {
		cfg.SamplerSeed = def.SamplerSeed
	}
	cfg.Sampler = cfg.Sampler.WithDefaults()
	// A zero model config takes the full defaults, including the
	// validation split that a partial config may leave at zero.
	if cfg.Model == (gmf.Config{}) {
		cfg.Model = def.Model
	}
	cfg.Model = cfg.Model.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Engine{
		config:   cfg,
		provider: provider,
		logger:   logger.With().Str("component", "pipeline").Logger(),
	}, nil
}

// Config returns the effective configuration.
func (e *Engine) Config() Config {
	return e.config
}

// Prepare loads, flattens and indexes the playlists and builds the
// training matrix.
func (e *Engine) Prepare(ctx context.Context) (*Dataset, error) {
	playlists, err := e.provider.LoadPlaylists(ctx)
	if err != nil {
		return nil, fmt.Errorf("load playlists: %w", err)
	}

	flat, err := playlist.Flatten(playlists, playlist.FlattenOptions{
		SkipMalformed: e.config.SkipMalformed,
		Logger:        e.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("flatten playlists: %w", err)
	}
	metrics.RecordFlatten(len(flat.Records), len(flat.Skipped))
	if len(flat.Skipped) > 0 {
		e.logger.Warn().Int("skipped", len(flat.Skipped)).Msg("skipped malformed track entries")
	}

	training, challenge := playlist.Split(flat.Records)
	if len(training) == 0 {
		return nil, ErrNoTrainingData
	}

	// The index spans both partitions so challenge seeds resolve too.
	idx := trackindex.Build(playlist.URIs(flat.Records))

	numPlaylists := e.config.NumPlaylists
	if numPlaylists == 0 {
		numPlaylists = interaction.MinPlaylists(training)
	}
	m, err := interaction.FromRecords(training, idx, numPlaylists)
	if err != nil {
		return nil, fmt.Errorf("build matrix: %w", err)
	}

	ds := &Dataset{
		Playlists:    len(playlists),
		ChallengeIDs: playlist.ChallengeIDs(playlists),
		Records:      flat.Records,
		Training:     training,
		Challenge:    challenge,
		Malformed:    flat.Skipped,
		Index:        idx,
		Matrix:       m,
	}
	stats := ds.Stats()
	metrics.SetDatasetShape(stats.Tracks, stats.MatrixRows, stats.Nonzeros)
	e.logger.Info().
		Int("playlists", stats.Playlists).
		Int("challenge_playlists", stats.ChallengePlaylists).
		Int("training_rows", stats.TrainingRows).
		Int("challenge_rows", stats.ChallengeRows).
		Int("tracks", stats.Tracks).
		Int("nonzeros", stats.Nonzeros).
		Float64("density", stats.Density).
		Msg("prepared dataset")

	return ds, nil
}

// NewModel returns an untrained GMF model sized for ds.
func (e *Engine) NewModel(ds *Dataset) (*gmf.Model, error) {
	numPlaylists, numTracks := ds.Matrix.Shape()
	return gmf.New(numPlaylists, numTracks, e.config.Model)
}

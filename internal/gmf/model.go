// Mixtape - Playlist Continuation Model Training
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mixtape

package gmf

import (
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"
)

// Model is a two-tower generalized matrix factorization scorer.
type Model struct {
	config       Config
	numPlaylists int
	numTracks    int

	// playlistFactors is numPlaylists x LatentDim, row-major
	playlistFactors []float64

	// trackFactors is numTracks x LatentDim, row-major
	trackFactors []float64

	// weights and bias form the projection layer
	weights []float64
	bias    float64

	opt *adam
	rng *rand.Rand

	epochs        int
	lastTrainedAt time.Time
	mu            sync.RWMutex
}

// New creates a model for numPlaylists x numTracks ids. Zero config fields
// take their defaults.
func New(numPlaylists, numTracks int, cfg Config) (*Model, error) {
	if numPlaylists <= 0 || numTracks <= 0 {
		return nil, fmt.Errorf("model dimensions must be positive, got %dx%d", numPlaylists, numTracks)
	}
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	//nolint:gosec // G404: math/rand is acceptable for ML initialization (not security)
	rng := rand.New(rand.NewSource(cfg.Seed))
	dim := cfg.LatentDim

	m := &Model{
		config:          cfg,
		numPlaylists:    numPlaylists,
		numTracks:       numTracks,
		playlistFactors: make([]float64, numPlaylists*dim),
		trackFactors:    make([]float64, numTracks*dim),
		weights:         make([]float64, dim),
		rng:             rng,
	}

	for i := range m.playlistFactors {
		m.playlistFactors[i] = rng.NormFloat64() * cfg.InitStdDev
	}
	for i := range m.trackFactors {
		m.trackFactors[i] = rng.NormFloat64() * cfg.InitStdDev
	}

	// LeCun uniform: U(-sqrt(3/fanIn), sqrt(3/fanIn))
	limit := math.Sqrt(3.0 / float64(dim))
	for k := range m.weights {
		m.weights[k] = (rng.Float64()*2 - 1) * limit
	}

	m.opt = newAdam(cfg, len(m.playlistFactors), len(m.trackFactors))
	return m, nil
}

// Config returns the effective configuration.
func (m *Model) Config() Config {
	return m.config
}

// Dims returns (numPlaylists, numTracks).
func (m *Model) Dims() (numPlaylists, numTracks int) {
	return m.numPlaylists, m.numTracks
}

// Epochs returns the number of completed training epochs.
func (m *Model) Epochs() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.epochs
}

// LastTrainedAt returns when the last epoch finished.
func (m *Model) LastTrainedAt() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastTrainedAt
}

// Predict returns the affinity of playlist p for track t, in [0, 1].
func (m *Model) Predict(p, t int) (float64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.epochs == 0 {
		return 0, ErrNotTrained
	}
	if err := m.checkRange(p, t); err != nil {
		return 0, err
	}
	return sigmoid(m.logit(p, t)), nil
}

func (m *Model) checkRange(p, t int) error {
	if p < 0 || p >= m.numPlaylists || t < 0 || t >= m.numTracks {
		return &OutOfVocabularyError{
			Playlist:     p,
			Track:        t,
			NumPlaylists: m.numPlaylists,
			NumTracks:    m.numTracks,
		}
	}
	return nil
}

func (m *Model) playlistRow(p int) []float64 {
	dim := m.config.LatentDim
	return m.playlistFactors[p*dim : (p+1)*dim]
}

func (m *Model) trackRow(t int) []float64 {
	dim := m.config.LatentDim
	return m.trackFactors[t*dim : (t+1)*dim]
}

// logit computes the pre-activation score. Caller holds a lock.
func (m *Model) logit(p, t int) float64 {
	pe, qe := m.playlistRow(p), m.trackRow(t)
	z := m.bias
	for k, w := range m.weights {
		z += w * pe[k] * qe[k]
	}
	return z
}

func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}

// bceEpsilon clamps predictions away from 0 and 1 in the loss.
const bceEpsilon = 1e-7

func binaryCrossEntropy(yhat, y float64) float64 {
	yhat = math.Min(math.Max(yhat, bceEpsilon), 1-bceEpsilon)
	return -(y*math.Log(yhat) + (1-y)*math.Log(1-yhat))
}

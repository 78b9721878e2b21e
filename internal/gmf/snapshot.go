// Mixtape - Playlist Continuation Model Training
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mixtape

package gmf

import (
	"fmt"
	"time"
)

// Snapshot is the serialisable parameter set of a trained model.
// Optimiser state is not included; a restored model predicts but resumes
// training with fresh Adam moments.
type Snapshot struct {
	Config          Config
	NumPlaylists    int
	NumTracks       int
	PlaylistFactors []float64
	TrackFactors    []float64
	Weights         []float64
	Bias            float64
	Epochs          int
	TrainedAt       time.Time
}

// Snapshot copies the current parameters.
func (m *Model) Snapshot() *Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return &Snapshot{
		Config:          m.config,
		NumPlaylists:    m.numPlaylists,
		NumTracks:       m.numTracks,
		PlaylistFactors: append([]float64(nil), m.playlistFactors...),
		TrackFactors:    append([]float64(nil), m.trackFactors...),
		Weights:         append([]float64(nil), m.weights...),
		Bias:            m.bias,
		Epochs:          m.epochs,
		TrainedAt:       m.lastTrainedAt,
	}
}

// Restore builds a model from a snapshot.
func Restore(s *Snapshot) (*Model, error) {
	if s == nil {
		return nil, fmt.Errorf("restore model: nil snapshot")
	}
	m, err := New(s.NumPlaylists, s.NumTracks, s.Config)
	if err != nil {
		return nil, fmt.Errorf("restore model: %w", err)
	}

	dim := m.config.LatentDim
	switch {
	case len(s.PlaylistFactors) != s.NumPlaylists*dim:
		return nil, fmt.Errorf("restore model: playlist factors have %d values, want %d", len(s.PlaylistFactors), s.NumPlaylists*dim)
	case len(s.TrackFactors) != s.NumTracks*dim:
		return nil, fmt.Errorf("restore model: track factors have %d values, want %d", len(s.TrackFactors), s.NumTracks*dim)
	case len(s.Weights) != dim:
		return nil, fmt.Errorf("restore model: weights have %d values, want %d", len(s.Weights), dim)
	}

	copy(m.playlistFactors, s.PlaylistFactors)
	copy(m.trackFactors, s.TrackFactors)
	copy(m.weights, s.Weights)
	m.bias = s.Bias
	m.epochs = s.Epochs
	m.lastTrainedAt = s.TrainedAt
	return m, nil
}

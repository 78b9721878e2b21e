// Mixtape - Playlist Continuation Model Training
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mixtape

package gmf

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/mixtape/internal/sampler"
)

// LossMetrics summarises one training epoch.
type LossMetrics struct {
	Loss         float64       `json:"loss"`
	Accuracy     float64       `json:"accuracy"`
	ValLoss      float64       `json:"val_loss"`
	ValAccuracy  float64       `json:"val_accuracy"`
	Instances    int           `json:"instances"`
	ValInstances int           `json:"val_instances"`
	Duration     time.Duration `json:"duration"`
}

// gradients accumulates one batch worth of parameter gradients.
type gradients struct {
	dim       int
	playlists map[int][]float64
	tracks    map[int][]float64
	weights   []float64
	bias      float64

	loss    float64
	correct int
}

func newGradients(dim int) *gradients {
	return &gradients{
		dim:       dim,
		playlists: make(map[int][]float64),
		tracks:    make(map[int][]float64),
		weights:   make([]float64, dim),
	}
}

func (g *gradients) reset() {
	clear(g.playlists)
	clear(g.tracks)
	clear(g.weights)
	g.bias = 0
	g.loss = 0
	g.correct = 0
}

func rowOf(rows map[int][]float64, id, dim int) []float64 {
	r, ok := rows[id]
	if !ok {
		r = make([]float64, dim)
		rows[id] = r
	}
	return r
}

// Train runs one epoch over instances and returns its loss metrics.
//
// The trailing ValidationSplit fraction of instances is evaluated but not
// trained on. The remaining instances are shuffled before batching, so
// callers may pass them in any order.
func (m *Model) Train(ctx context.Context, instances []sampler.Instance) (LossMetrics, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	start := time.Now()
	if len(instances) == 0 {
		return LossMetrics{}, ErrNoInstances
	}
	for i := range instances {
		if err := m.checkRange(instances[i].Playlist, instances[i].Track); err != nil {
			return LossMetrics{}, fmt.Errorf("instance %d: %w", i, err)
		}
	}

	splitAt := int(float64(len(instances)) * (1 - m.config.ValidationSplit))
	if splitAt == 0 {
		splitAt = len(instances)
	}
	trainSet, valSet := instances[:splitAt], instances[splitAt:]

	order := m.rng.Perm(len(trainSet))
	g := newGradients(m.config.LatentDim)
	batch := make([]sampler.Instance, 0, m.config.BatchSize)

	var lossSum float64
	var correct int
	for lo := 0; lo < len(order); lo += m.config.BatchSize {
		if err := ctx.Err(); err != nil {
			return LossMetrics{}, err
		}
		hi := min(lo+m.config.BatchSize, len(order))

		batch = batch[:0]
		for _, i := range order[lo:hi] {
			batch = append(batch, trainSet[i])
		}

		g.reset()
		m.accumulate(batch, g)
		m.apply(g)
		lossSum += g.loss
		correct += g.correct
	}

	metrics := LossMetrics{
		Loss:      lossSum / float64(len(trainSet)),
		Accuracy:  float64(correct) / float64(len(trainSet)),
		Instances: len(trainSet),
	}
	if len(valSet) > 0 {
		metrics.ValLoss, metrics.ValAccuracy = m.evaluate(valSet)
		metrics.ValInstances = len(valSet)
	}

	m.epochs++
	m.lastTrainedAt = time.Now()
	metrics.Duration = time.Since(start)
	return metrics, nil
}

// Evaluate returns mean loss and accuracy over instances without training.
func (m *Model) Evaluate(instances []sampler.Instance) (loss, accuracy float64, err error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if len(instances) == 0 {
		return 0, 0, ErrNoInstances
	}
	for i := range instances {
		if err := m.checkRange(instances[i].Playlist, instances[i].Track); err != nil {
			return 0, 0, fmt.Errorf("instance %d: %w", i, err)
		}
	}
	loss, accuracy = m.evaluate(instances)
	return loss, accuracy, nil
}

func (m *Model) evaluate(instances []sampler.Instance) (loss, accuracy float64) {
	correct := 0
	for _, in := range instances {
		yhat := sigmoid(m.logit(in.Playlist, in.Track))
		y := float64(in.Label)
		loss += binaryCrossEntropy(yhat, y)
		if (yhat > 0.5) == (in.Label == sampler.Positive) {
			correct++
		}
	}
	n := float64(len(instances))
	return loss / n, float64(correct) / n
}

// accumulate adds the mean-loss gradients of batch into g.
func (m *Model) accumulate(batch []sampler.Instance, g *gradients) {
	scale := 1 / float64(len(batch))
	dim := m.config.LatentDim

	for _, in := range batch {
		pe, qe := m.playlistRow(in.Playlist), m.trackRow(in.Track)
		yhat := sigmoid(m.logit(in.Playlist, in.Track))
		y := float64(in.Label)

		g.loss += binaryCrossEntropy(yhat, y)
		if (yhat > 0.5) == (in.Label == sampler.Positive) {
			g.correct++
		}

		// d(bce)/dz for a sigmoid output is yhat - y
		dz := (yhat - y) * scale
		gp := rowOf(g.playlists, in.Playlist, dim)
		gq := rowOf(g.tracks, in.Track, dim)
		for k, w := range m.weights {
			g.weights[k] += dz * pe[k] * qe[k]
			gp[k] += dz * w * qe[k]
			gq[k] += dz * w * pe[k]
		}
		g.bias += dz
	}
}

// apply performs one Adam step with the accumulated gradients.
func (m *Model) apply(g *gradients) {
	lrT := m.opt.begin()
	dim := m.config.LatentDim

	for p, grad := range g.playlists {
		if reg := m.config.RegPlaylist; reg > 0 {
			row := m.playlistRow(p)
			for k := range grad {
				grad[k] += 2 * reg * row[k]
			}
		}
		m.opt.update(m.playlistFactors, m.opt.mPlaylist, m.opt.vPlaylist, p*dim, grad, lrT)
	}
	for t, grad := range g.tracks {
		if reg := m.config.RegTrack; reg > 0 {
			row := m.trackRow(t)
			for k := range grad {
				grad[k] += 2 * reg * row[k]
			}
		}
		m.opt.update(m.trackFactors, m.opt.mTrack, m.opt.vTrack, t*dim, grad, lrT)
	}
	m.opt.update(m.weights, m.opt.mWeights, m.opt.vWeights, 0, g.weights, lrT)
	m.opt.updateScalar(&m.bias, &m.opt.mBias, &m.opt.vBias, g.bias, lrT)
}

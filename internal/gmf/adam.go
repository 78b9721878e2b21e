// Mixtape - Playlist Continuation Model Training
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mixtape

package gmf

import "math"

// adam holds first and second moment estimates for every parameter.
type adam struct {
	lr, beta1, beta2, eps float64
	step                  int

	mPlaylist, vPlaylist []float64
	mTrack, vTrack       []float64
	mWeights, vWeights   []float64
	mBias, vBias         float64
}

func newAdam(cfg Config, playlistParams, trackParams int) *adam {
	return &adam{
		lr:        cfg.LearningRate,
		beta1:     cfg.Beta1,
		beta2:     cfg.Beta2,
		eps:       cfg.Epsilon,
		mPlaylist: make([]float64, playlistParams),
		vPlaylist: make([]float64, playlistParams),
		mTrack:    make([]float64, trackParams),
		vTrack:    make([]float64, trackParams),
		mWeights:  make([]float64, cfg.LatentDim),
		vWeights:  make([]float64, cfg.LatentDim),
	}
}

// begin advances the step counter and returns the bias-corrected rate.
func (a *adam) begin() float64 {
	a.step++
	t := float64(a.step)
	return a.lr * math.Sqrt(1-math.Pow(a.beta2, t)) / (1 - math.Pow(a.beta1, t))
}

// update applies one step to params[offset:offset+len(grad)].
func (a *adam) update(params, m, v []float64, offset int, grad []float64, lrT float64) {
	for k, g := range grad {
		i := offset + k
		m[i] = a.beta1*m[i] + (1-a.beta1)*g
		v[i] = a.beta2*v[i] + (1-a.beta2)*g*g
		params[i] -= lrT * m[i] / (math.Sqrt(v[i]) + a.eps)
	}
}

func (a *adam) updateScalar(param, m, v *float64, g, lrT float64) {
	*m = a.beta1*(*m) + (1-a.beta1)*g
	*v = a.beta2*(*v) + (1-a.beta2)*g*g
	*param -= lrT * (*m) / (math.Sqrt(*v) + a.eps)
}

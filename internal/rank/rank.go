// Mixtape - Playlist Continuation Model Training
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mixtape

// Package rank orders candidate tracks for a playlist by model score.
package rank

import (
	"context"
	"fmt"
	"sort"
)

// Predictor scores a (playlist, track) pair in [0, 1].
type Predictor interface {
	Predict(playlist, track int) (float64, error)
}

// Scored is a candidate track with its score.
type Scored struct {
	Track int     `json:"track"`
	Score float64 `json:"score"`
}

// Rank scores every candidate for playlist and returns them by descending
// score, ties broken by ascending track code. k > 0 truncates the result.
func Rank(ctx context.Context, pred Predictor, playlist int, candidates []int, k int) ([]Scored, error) {
	out := make([]Scored, 0, len(candidates))
	for i, t := range candidates {
		if i%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		s, err := pred.Predict(playlist, t)
		if err != nil {
			return nil, fmt.Errorf("score playlist %d track %d: %w", playlist, t, err)
		}
		out = append(out, Scored{Track: t, Score: s})
	}

	Sort(out)
	if k > 0 && len(out) > k {
		out = out[:k]
	}
	return out, nil
}

// Sort orders scored tracks by descending score then ascending track.
func Sort(s []Scored) {
	sort.Slice(s, func(i, j int) bool {
		if s[i].Score != s[j].Score {
			return s[i].Score > s[j].Score
		}
		return s[i].Track < s[j].Track
	})
}

// Candidates returns every track code in [0, numTracks) not in exclude,
// in ascending order.
func Candidates(numTracks int, exclude map[int]struct{}) []int {
	out := make([]int, 0, max(numTracks-len(exclude), 0))
	for t := 0; t < numTracks; t++ {
		if _, ok := exclude[t]; !ok {
			out = append(out, t)
		}
	}
	return out
}

// Mixtape - Playlist Continuation Model Training
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mixtape

package pipeline

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/tomtom215/mixtape/internal/metrics"
	"github.com/tomtom215/mixtape/internal/rank"
)

// ScoredTrack is one recommended track.
type ScoredTrack struct {
	URI   string  `json:"track_uri"`
	Code  int     `json:"code"`
	Score float64 `json:"score"`
}

// Recommendation is the ranked continuation of one playlist.
type Recommendation struct {
	PlaylistID int           `json:"pid"`
	Tracks     []ScoredTrack `json:"tracks"`
}

// RecommendResult holds recommendations in challenge order and the
// challenge playlists that could not be ranked.
type RecommendResult struct {
	Recommendations []Recommendation `json:"recommendations"`
	Skipped         []int            `json:"skipped"`
}

// Recommend ranks candidates for every challenge playlist that has a
// training row, with or without seed tracks. Candidates are all indexed tracks except those already in
// the playlist, from either partition. k <= 0 uses the configured K.
//
// A model can only score playlists it was trained on, so challenge
// playlists without training positives are skipped and reported.
func (e *Engine) Recommend(ctx context.Context, ds *Dataset, pred rank.Predictor, k int) (*RecommendResult, error) {
	if k <= 0 {
		k = e.config.K
	}

	order, known, err := e.challengePlaylists(ds)
	if err != nil {
		return nil, err
	}

	res := &RecommendResult{Recommendations: make([]Recommendation, 0, len(order))}
	numTracks := ds.Index.Len()
	for _, pid := range order {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if pid < 0 || pid >= ds.Matrix.NumPlaylists() || ds.Matrix.RowNNZ(pid) == 0 {
			res.Skipped = append(res.Skipped, pid)
			continue
		}

		var exclude map[int]struct{}
		if !e.config.IncludeKnown {
			exclude = known[pid]
			if exclude == nil {
				exclude = make(map[int]struct{})
			}
			for _, t := range ds.Matrix.Row(pid) {
				exclude[t] = struct{}{}
			}
		}

		start := time.Now()
		scored, err := rank.Rank(ctx, pred, pid, rank.Candidates(numTracks, exclude), k)
		if err != nil {
			return nil, fmt.Errorf("rank playlist %d: %w", pid, err)
		}
		metrics.RecordRecommendation(time.Since(start))

		rec := Recommendation{PlaylistID: pid, Tracks: make([]ScoredTrack, len(scored))}
		for i, s := range scored {
			uri, err := ds.Index.URIOf(s.Track)
			if err != nil {
				return nil, fmt.Errorf("playlist %d: %w", pid, err)
			}
			rec.Tracks[i] = ScoredTrack{URI: uri, Code: s.Track, Score: s.Score}
		}
		res.Recommendations = append(res.Recommendations, rec)
	}

	if len(res.Skipped) > 0 {
		metrics.RecordRecommendSkipped(len(res.Skipped))
		e.logger.Warn().
			Int("skipped", len(res.Skipped)).
			Int("ranked", len(res.Recommendations)).
			Msg("skipped challenge playlists without training rows")
	}
	return res, nil
}

// challengePlaylists returns challenge pids in first-seen order and the
// seed track codes of each. Seedless playlists have no entry in the map.
func (e *Engine) challengePlaylists(ds *Dataset) ([]int, map[int]map[int]struct{}, error) {
	order := slices.Clone(ds.ChallengeIDs)
	listed := make(map[int]struct{}, len(order))
	for _, pid := range order {
		listed[pid] = struct{}{}
	}

	known := make(map[int]map[int]struct{})
	for i := range ds.Challenge {
		r := &ds.Challenge[i]
		if _, ok := listed[r.PlaylistID]; !ok {
			listed[r.PlaylistID] = struct{}{}
			order = append(order, r.PlaylistID)
		}
		seeds, ok := known[r.PlaylistID]
		if !ok {
			seeds = make(map[int]struct{})
			known[r.PlaylistID] = seeds
		}
		code, err := ds.Index.CodeOf(r.TrackURI)
		if err != nil {
			return nil, nil, fmt.Errorf("resolve challenge row %d: %w", i, err)
		}
		seeds[code] = struct{}{}
	}
	return order, known, nil
}

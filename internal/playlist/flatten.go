// Mixtape - Playlist Continuation Model Training
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mixtape

package playlist

import (
	"github.com/rs/zerolog"
)

// FlattenOptions controls how Flatten treats malformed track entries.
type FlattenOptions struct {
	// SkipMalformed drops malformed entries instead of failing.
	SkipMalformed bool

	// Logger receives one warning per skipped entry. The zero value is
	// a disabled logger.
	Logger zerolog.Logger
}

// FlattenResult holds the flattened rows and the entries that were skipped.
type FlattenResult struct {
	Records []RawInteractionRecord
	Skipped []*MalformedRecordError
}

// Flatten produces one RawInteractionRecord per (playlist, track entry) pair.
//
// Rows keep playlist order and track order. Duplicate entries inside a
// playlist produce duplicate rows. NumHoldouts is copied from the parent
// playlist onto every row.
func Flatten(playlists []Playlist, opts FlattenOptions) (*FlattenResult, error) {
	total := 0
	for i := range playlists {
		total += len(playlists[i].Tracks)
	}

	res := &FlattenResult{Records: make([]RawInteractionRecord, 0, total)}
	for i := range playlists {
		pl := &playlists[i]
		for pos := range pl.Tracks {
			tr := &pl.Tracks[pos]
			if tr.URI == "" {
				merr := &MalformedRecordError{PlaylistID: pl.ID, Position: pos, Field: "track_uri"}
				if !opts.SkipMalformed {
					return nil, merr
				}
				opts.Logger.Warn().
					Int("playlist_id", pl.ID).
					Int("position", pos).
					Msg("skipping track entry without uri")
				res.Skipped = append(res.Skipped, merr)
				continue
			}
			res.Records = append(res.Records, RawInteractionRecord{
				TrackURI:    tr.URI,
				ArtistName:  tr.ArtistName,
				TrackName:   tr.TrackName,
				PlaylistID:  pl.ID,
				NumHoldouts: pl.NumHoldouts,
			})
		}
	}
	return res, nil
}

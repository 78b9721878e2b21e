// Mixtape - Playlist Continuation Model Training
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mixtape

package interaction

import (
	"fmt"

	"github.com/tomtom215/mixtape/internal/playlist"
	"github.com/tomtom215/mixtape/internal/trackindex"
)

// FromRecords builds the training matrix from flattened rows.
//
// Only training-partition rows are used. Each row's track URI is resolved
// through idx, and the track dimension is idx.Len(). Rows from the
// evaluation partition are ignored.
func FromRecords(rows []playlist.RawInteractionRecord, idx *trackindex.Index, numPlaylists int) (*Matrix, error) {
	b, err := NewBuilder(numPlaylists, idx.Len())
	if err != nil {
		return nil, err
	}

	for i := range rows {
		r := &rows[i]
		if !r.IsTraining() {
			continue
		}
		code, err := idx.CodeOf(r.TrackURI)
		if err != nil {
			return nil, fmt.Errorf("resolve row %d: %w", i, err)
		}
		if err := b.Set(r.PlaylistID, code); err != nil {
			return nil, fmt.Errorf("set row %d: %w", i, err)
		}
	}

	return b.Build(), nil
}

// MinPlaylists returns the smallest playlist dimension that fits every
// training row, i.e. the maximum training playlist id plus one.
func MinPlaylists(rows []playlist.RawInteractionRecord) int {
	n := 0
	for i := range rows {
		if rows[i].IsTraining() && rows[i].PlaylistID+1 > n {
			n = rows[i].PlaylistID + 1
		}
	}
	return n
}

// Mixtape - Playlist Continuation Model Training
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mixtape

package interaction

import (
	"errors"
	"fmt"
)

// ErrIndexOutOfRange is matched by every *IndexOutOfRangeError.
var ErrIndexOutOfRange = errors.New("index out of range")

// IndexOutOfRangeError reports a cell outside the declared matrix shape.
type IndexOutOfRangeError struct {
	Playlist     int
	Track        int
	NumPlaylists int
	NumTracks    int
}

func (e *IndexOutOfRangeError) Error() string {
	return fmt.Sprintf("cell (%d, %d) outside matrix shape %dx%d",
		e.Playlist, e.Track, e.NumPlaylists, e.NumTracks)
}

func (e *IndexOutOfRangeError) Unwrap() error {
	return ErrIndexOutOfRange
}

// Mixtape - Playlist Continuation Model Training
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mixtape

package playlist

import (
	"errors"
	"fmt"
)

// ErrMalformedRecord is matched by every *MalformedRecordError.
var ErrMalformedRecord = errors.New("malformed record")

// MalformedRecordError reports a track entry missing a required field.
type MalformedRecordError struct {
	PlaylistID int
	Position   int
	Field      string
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("malformed record: playlist %d track %d missing %s", e.PlaylistID, e.Position, e.Field)
}

func (e *MalformedRecordError) Unwrap() error {
	return ErrMalformedRecord
}

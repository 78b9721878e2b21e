// Mixtape - Playlist Continuation Model Training
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mixtape

package gmf

import (
	"errors"
	"fmt"
)

var (
	// ErrOutOfVocabulary is matched by every *OutOfVocabularyError.
	ErrOutOfVocabulary = errors.New("id outside model vocabulary")

	// ErrNoInstances is returned by Train when there is nothing to fit.
	ErrNoInstances = errors.New("no training instances")

	// ErrNotTrained is returned when predicting with an untrained model.
	ErrNotTrained = errors.New("model not trained")
)

// OutOfVocabularyError reports a playlist or track id the model has no
// embedding for.
type OutOfVocabularyError struct {
	Playlist     int
	Track        int
	NumPlaylists int
	NumTracks    int
}

func (e *OutOfVocabularyError) Error() string {
	return fmt.Sprintf("pair (%d, %d) outside model vocabulary %dx%d",
		e.Playlist, e.Track, e.NumPlaylists, e.NumTracks)
}

func (e *OutOfVocabularyError) Unwrap() error {
	return ErrOutOfVocabulary
}

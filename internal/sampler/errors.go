// Mixtape - Playlist Continuation Model Training
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mixtape

package sampler

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyMatrix is returned when the matrix has no positives to train on.
	ErrEmptyMatrix = errors.New("interaction matrix has no nonzero cells")

	// ErrSamplingExhausted is matched by every *SamplingExhaustedError.
	ErrSamplingExhausted = errors.New("negative sampling exhausted")
)

// SamplingExhaustedError records negative slots skipped for one positive
// because no negative was found within the retry cap.
type SamplingExhaustedError struct {
	Playlist int
	Track    int
	Skipped  int
	Retries  int
	RowNNZ   int
}

func (e *SamplingExhaustedError) Error() string {
	return fmt.Sprintf("negative sampling exhausted for playlist %d positive %d: skipped %d slots after %d retries (row has %d positives)",
		e.Playlist, e.Track, e.Skipped, e.Retries, e.RowNNZ)
}

func (e *SamplingExhaustedError) Unwrap() error {
	return ErrSamplingExhausted
}

// Mixtape - Playlist Continuation Model Training
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mixtape

package pipeline

import "errors"

var (
	// ErrNoTrainingData is returned when flattening leaves no training rows.
	ErrNoTrainingData = errors.New("no training interactions")

	// ErrTrainingInProgress is returned when Train is called during a run.
	ErrTrainingInProgress = errors.New("training already in progress")
)

// Mixtape - Playlist Continuation Model Training
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mixtape

// Package interaction builds the sparse playlist x track implicit-feedback
// matrix.
//
// The matrix is stored as a dictionary of keys: only observed cells exist
// and every observed cell holds 1.0. Playlist ids are used as row indices
// without remapping, so the declared playlist dimension must exceed every
// training playlist id. Cell writes are idempotent, which makes building
// from rows with duplicates safe.
//
// A Matrix is produced by Builder.Build and never mutated afterwards. All
// Matrix methods are safe for concurrent use.
package interaction

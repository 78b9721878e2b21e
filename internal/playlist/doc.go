// Mixtape - Playlist Continuation Model Training
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mixtape

// Package playlist defines the playlist data model and flattens nested
// playlist records into one interaction row per (playlist, track) pair.
//
// # Partitions
//
// A playlist whose NumHoldouts is nil belongs to the training partition.
// A non-nil NumHoldouts marks an evaluation (challenge) playlist. The flag is
// copied onto every row produced from the playlist and is the only thing
// downstream stages use to split training rows from evaluation rows.
//
// # Malformed Entries
//
// A track entry without a URI is malformed. By default Flatten stops at the
// first malformed entry and returns a *MalformedRecordError. With
// FlattenOptions.SkipMalformed the entry is dropped, counted in the result,
// and flattening continues.
package playlist

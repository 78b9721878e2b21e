// Mixtape - Playlist Continuation Model Training
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mixtape

// Package ingest reads Million Playlist Dataset slice files and the
// challenge set into playlist records.
//
// Slice files are named mpd.slice.{start}-{start+999}.json. Each holds a
// "playlists" array whose entries carry a pid, a tracks array and, for
// challenge playlists only, num_holdouts. Unknown fields are ignored.
//
// Loader reads the configured slices concurrently and returns their
// playlists in slice order followed by the challenge playlists.
package ingest

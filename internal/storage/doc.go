// Mixtape - Playlist Continuation Model Training
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mixtape

// Package storage persists training artifacts in BadgerDB.
//
// Two kinds of artifact are stored: the track index of the last prepared
// dataset and versioned model snapshots. Model parameters are gob encoded,
// gzip compressed and stored next to a JSON metadata record that carries a
// SHA-256 checksum of the uncompressed data. Load verifies the checksum.
//
// # Key Layout
//
//	index:uris            JSON array of track URIs ordered by code
//	index:meta            JSON IndexMetadata
//	model:data:<version>  gzip(gob(snapshot))
//	model:meta:<version>  JSON ModelMetadata
//
// Versions are zero padded so key order matches version order.
package storage

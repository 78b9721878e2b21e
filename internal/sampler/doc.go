// Mixtape - Playlist Continuation Model Training
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mixtape

// Package sampler turns an interaction matrix into one epoch of labelled
// training instances.
//
// For every nonzero cell (p, t) the generator emits the positive (p, t, 1)
// immediately followed by NumNegatives negatives (p, j, 0). Each j is drawn
// uniformly from [0, numTracks) and redrawn while (p, j) is a nonzero cell,
// so a negative is never a known positive.
//
// # Bounded Rejection Sampling
//
// Each negative slot gets at most MaxRetries draws. When the cap is reached
// the slot is skipped and recorded as a *SamplingExhaustedError on the
// epoch. This only happens for rows whose cardinality approaches the track
// universe; a row that already holds every track is skipped without
// drawing. Skips are recoverable and never abort the epoch.
//
// # Randomness and Parallelism
//
// The generator owns an injected *rand.Rand. Each Generate call draws one
// epoch seed from it, and every playlist row samples from its own PCG
// stream keyed by (epoch seed, playlist id). Rows are split into contiguous
// shards processed by Workers goroutines; because the stream depends only
// on the row, the output is identical for any worker count.
//
// Output is grouped, not shuffled. Consumers shuffle before training.
package sampler

// Mixtape - Playlist Continuation Model Training
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mixtape

// Package gmf implements a generalized matrix factorization scorer.
//
// The model keeps one latent vector per playlist and one per track. The
// affinity of a pair is the elementwise product of the two vectors fed
// through a single learned projection and a logistic link:
//
//	predict(p, t) = sigmoid(sum_k w[k] * P[p][k] * Q[t][k] + b)
//
// Training minimises binary cross-entropy over labelled instances with the
// Adam optimiser in mini-batches. Each Train call is one epoch: the trailing
// ValidationSplit fraction of the instances is held out, and the rest is
// shuffled with the model's own random source before batching.
//
// # Lazy Adam
//
// Embedding tables are large and each batch touches only a few rows. Adam
// moments for embedding rows are updated only when the row receives a
// gradient; the projection weights and bias are updated every step. L2
// regularisation is applied to touched rows and is not included in the
// reported loss.
//
// # Thread Safety
//
// Train acquires an exclusive lock. Predict and Snapshot take a shared lock
// and may run concurrently with each other.
package gmf

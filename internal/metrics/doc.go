// Mixtape - Playlist Continuation Model Training
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mixtape

/*
Package metrics provides Prometheus metrics for the training pipeline.

Collectors are registered on the default registry with promauto under the
"mixtape" namespace and exposed by the supervisor's HTTP service:

	curl http://localhost:9090/metrics

# Available Metrics

Dataset:
  - mixtape_records_flattened_total: interaction records produced
  - mixtape_records_malformed_total: track entries skipped as malformed
  - mixtape_tracks_indexed: distinct track URIs in the index
  - mixtape_matrix_playlists, mixtape_matrix_nonzeros: matrix shape

Sampling:
  - mixtape_instances_generated_total{label}: positive/negative instances
  - mixtape_sampling_exhausted_total: negative slots skipped after the retry cap
  - mixtape_generate_duration_seconds: time to build one epoch

Training:
  - mixtape_epoch_duration_seconds: time per training epoch
  - mixtape_training_loss{split}, mixtape_training_accuracy{split}: last epoch
  - mixtape_training_runs_total{status}: finished runs

Recommendation and storage:
  - mixtape_recommend_duration_seconds: time to rank one playlist
  - mixtape_recommend_skipped_total: challenge playlists with no training row
  - mixtape_storage_operation_duration_seconds{operation}
  - mixtape_storage_errors_total{operation}

The Record* and Set* helpers are the only writers; callers never touch the
collectors directly.
*/
package metrics

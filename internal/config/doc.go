// Mixtape - Playlist Continuation Model Training
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mixtape

/*
Package config loads and validates Mixtape configuration.

Configuration is layered with Koanf v2. Later sources override earlier ones:

 1. Built-in defaults (defaultConfig)
 2. An optional YAML file, located through CONFIG_PATH or DefaultConfigPaths
 3. MIXTAPE_* environment variables

Unmapped environment variables are ignored.

# Sections

  - data: MPD slice directory, slice starts, challenge set path
  - dataset: playlist count and malformed-record handling
  - sampler: negatives per positive, retry cap, workers, seed
  - model: GMF hyperparameters and epoch count
  - recommend: list length and output file
  - storage: BadgerDB path and model retention
  - metrics: Prometheus endpoint
  - logging: level, format, caller

# Example

	data:
	  dir: /data/mpd
	  slice_starts: [0, 1000, 2000]
	  challenge_path: /data/mpd/challenge_set.json
	sampler:
	  num_negatives: 4
	model:
	  latent_dim: 8
	  epochs: 15

Each stage package owns its own config type. The converters on Config
(SamplerConfig, ModelConfig, ...) translate a loaded Config into them.
*/
package config

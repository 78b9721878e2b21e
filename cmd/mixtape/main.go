// Mixtape - Playlist Continuation Model Training
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mixtape

// Package main is the mixtape command line tool.
//
// Mixtape trains a generalized matrix factorization model on Million
// Playlist Dataset slices and ranks continuation tracks for the challenge
// set.
//
// # Commands
//
//	mixtape train [--serve-metrics]     prepare, train, persist index and model
//	mixtape recommend [--k N] [--out F] rank tracks for challenge playlists
//	mixtape stats [--models]            print dataset statistics
//	mixtape version                     print build information
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest priority wins):
//   - MIXTAPE_* environment variables
//   - Config file (--config, CONFIG_PATH, ./config.yaml, /etc/mixtape/config.yaml)
//   - Built-in defaults
//
// # Example Usage
//
//	export MIXTAPE_DATA_DIR=/data/mpd
//	export MIXTAPE_DATA_SLICE_STARTS=0,1000,2000
//	export MIXTAPE_DATA_CHALLENGE_PATH=/data/mpd/challenge_set.json
//	mixtape train --serve-metrics
//	mixtape recommend --k 500 --out submission.json
//
// # Signal Handling
//
// SIGINT and SIGTERM cancel the running command. Training stops between
// mini-batches and nothing is persisted for the interrupted run.
package main

import (
	"os"

	"github.com/tomtom215/mixtape/internal/logging"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logging.Err(err).Msg("command failed")
		os.Exit(1)
	}
}

// Mixtape - Playlist Continuation Model Training
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mixtape

/*
Package supervisor runs long-lived Mixtape services under suture v4.

# Overview

	RootSupervisor ("mixtape")
	├── TrainingSupervisor ("training-layer")
	│   └── TrainingService (one pipeline run, then terminates the tree)
	└── APISupervisor ("api-layer")
	    └── HTTPServerService (/metrics, /healthz)

The API layer only exists for "train --serve-metrics", so scrapers can
watch a run in progress. When the training service finishes it returns
suture.ErrTerminateSupervisorTree and the whole tree shuts down, stopping
the HTTP server gracefully.

Supervisor events are logged through sutureslog, backed by the zerolog
logger via logging.NewSlogLogger.
*/
package supervisor

// Mixtape - Playlist Continuation Model Training
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mixtape

/*
Package pipeline wires the dataset stages, the negative sampler and a
scorer into one training run.

# Stages

	Prepare:   DataProvider -> Flatten -> Index -> Matrix        (Dataset)
	Train:     for each epoch: Generate -> Scorer.Train          (TrainingReport)
	Recommend: for each challenge playlist: Candidates -> Rank   (RecommendResult)

The Dataset is read-only once prepared. Train may be called again on the
same Dataset with a fresh scorer; a second concurrent call fails with
ErrTrainingInProgress.

# Example

	eng, err := pipeline.NewEngine(cfg, loader, logger)
	ds, err := eng.Prepare(ctx)
	model, err := eng.NewModel(ds)
	report, err := eng.Train(ctx, ds, model)
	recs, err := eng.Recommend(ctx, ds, model, 500)
*/
package pipeline

// Mixtape - Playlist Continuation Model Training
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mixtape

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/mixtape/internal/gmf"
	"github.com/tomtom215/mixtape/internal/logging"
	"github.com/tomtom215/mixtape/internal/metrics"
	"github.com/tomtom215/mixtape/internal/sampler"
)

// EpochReport describes one generate-then-train pass.
type EpochReport struct {
	Epoch     int             `json:"epoch"`
	Positives int             `json:"positives"`
	Negatives int             `json:"negatives"`
	Skipped   int             `json:"skipped"`
	Metrics   gmf.LossMetrics `json:"metrics"`
}

// TrainingReport describes a training run.
type TrainingReport struct {
	RunID     string        `json:"run_id"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
	Epochs    []EpochReport `json:"epochs"`
}

// Final returns the last epoch, or false if none completed.
func (r *TrainingReport) Final() (EpochReport, bool) {
	if len(r.Epochs) == 0 {
		return EpochReport{}, false
	}
	return r.Epochs[len(r.Epochs)-1], true
}

// Train runs the configured number of epochs against scorer. Every epoch
// draws fresh negatives. The run id is taken from ctx when present.
//
// On cancellation the report holds the completed epochs and the context
// error is returned.
func (e *Engine) Train(ctx context.Context, ds *Dataset, scorer Scorer) (*TrainingReport, error) {
	if !e.trainMu.TryLock() {
		return nil, ErrTrainingInProgress
	}
	defer e.trainMu.Unlock()

	runID := logging.RunIDFromContext(ctx)
	if runID == "" {
		runID = logging.NewRunID()
		ctx = logging.ContextWithRunID(ctx, runID)
	}
	logger := logging.Ctx(ctx, e.logger)

	rng := rand.New(rand.NewPCG(e.config.SamplerSeed, e.config.SamplerSeed^0x9e3779b97f4a7c15)) //nolint:gosec // G404: sampling does not need crypto randomness
	gen, err := sampler.NewGenerator(ds.Matrix, e.config.Sampler, rng, logger)
	if err != nil {
		metrics.RecordTrainingRun(metrics.StatusFailed)
		return nil, fmt.Errorf("create generator: %w", err)
	}

	report := &TrainingReport{RunID: runID, StartedAt: time.Now()}
	logger.Info().
		Int("epochs", e.config.Epochs).
		Int("num_negatives", gen.Config().NumNegatives).
		Int("nonzeros", ds.Matrix.NNZ()).
		Msg("starting training run")

	for epoch := 1; epoch <= e.config.Epochs; epoch++ {
		er, err := e.runEpoch(ctx, gen, scorer, epoch)
		if err != nil {
			report.Duration = time.Since(report.StartedAt)
			e.finishRun(logger, report, err)
			return report, err
		}
		report.Epochs = append(report.Epochs, er)
	}

	report.Duration = time.Since(report.StartedAt)
	e.finishRun(logger, report, nil)
	return report, nil
}

func (e *Engine) runEpoch(ctx context.Context, gen *sampler.Generator, scorer Scorer, epoch int) (EpochReport, error) {
	if err := ctx.Err(); err != nil {
		return EpochReport{}, err
	}
	logger := logging.Ctx(ctx, e.logger).With().Int("epoch", epoch).Logger()

	genStart := time.Now()
	ep, err := gen.Generate(ctx)
	if err != nil {
		return EpochReport{}, fmt.Errorf("generate epoch %d: %w", epoch, err)
	}
	metrics.RecordGeneration(ep.Positives, ep.Negatives, ep.Skipped(), time.Since(genStart))

	lm, err := scorer.Train(ctx, ep.Instances)
	if err != nil {
		return EpochReport{}, fmt.Errorf("train epoch %d: %w", epoch, err)
	}
	metrics.RecordEpoch(lm.Loss, lm.Accuracy, lm.ValLoss, lm.ValAccuracy, lm.ValInstances, lm.Duration)

	logger.Info().
		Int("instances", len(ep.Instances)).
		Int("skipped", ep.Skipped()).
		Float64("loss", lm.Loss).
		Float64("accuracy", lm.Accuracy).
		Float64("val_loss", lm.ValLoss).
		Float64("val_accuracy", lm.ValAccuracy).
		Dur("duration", lm.Duration).
		Msg("epoch complete")

	return EpochReport{
		Epoch:     epoch,
		Positives: ep.Positives,
		Negatives: ep.Negatives,
		Skipped:   ep.Skipped(),
		Metrics:   lm,
	}, nil
}

//nolint:gocritic // hugeParam: logger is passed by value throughout the codebase
func (e *Engine) finishRun(logger zerolog.Logger, report *TrainingReport, err error) {
	switch {
	case err == nil:
		metrics.RecordTrainingRun(metrics.StatusSuccess)
		logger.Info().
			Int("epochs", len(report.Epochs)).
			Dur("duration", report.Duration).
			Msg("training run complete")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		metrics.RecordTrainingRun(metrics.StatusCancelled)
		logger.Warn().
			Int("epochs", len(report.Epochs)).
			Msg("training run cancelled")
	default:
		metrics.RecordTrainingRun(metrics.StatusFailed)
		logger.Error().Err(err).
			Int("epochs", len(report.Epochs)).
			Msg("training run failed")
	}
}

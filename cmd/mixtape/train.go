// Mixtape - Playlist Continuation Model Training
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mixtape

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/mixtape/internal/gmf"
	"github.com/tomtom215/mixtape/internal/logging"
	"github.com/tomtom215/mixtape/internal/pipeline"
	"github.com/tomtom215/mixtape/internal/storage"
	"github.com/tomtom215/mixtape/internal/supervisor"
	"github.com/tomtom215/mixtape/internal/supervisor/services"
)

func newTrainCmd(a *app) *cobra.Command {
	var serveMetrics bool

	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train a GMF model and persist it with its track index",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if serveMetrics || a.cfg.Metrics.Enabled {
				return a.trainSupervised(ctx)
			}
			return a.train(ctx)
		},
	}
	cmd.Flags().BoolVar(&serveMetrics, "serve-metrics", false, "serve /metrics and /healthz on metrics.addr while training")
	return cmd
}

// train runs one complete training run and persists the result.
func (a *app) train(ctx context.Context) error {
	eng, err := a.engine()
	if err != nil {
		return err
	}
	ds, err := eng.Prepare(ctx)
	if err != nil {
		return fmt.Errorf("prepare dataset: %w", err)
	}
	model, err := eng.NewModel(ds)
	if err != nil {
		return fmt.Errorf("create model: %w", err)
	}

	ctx = logging.ContextWithRunID(ctx, logging.NewRunID())
	report, err := eng.Train(ctx, ds, model)
	if err != nil {
		return fmt.Errorf("train: %w", err)
	}

	return a.withStore(func(store *storage.Store) error {
		return a.persist(ctx, store, ds, model, report)
	})
}

// persist saves the track index and the model snapshot, then prunes old
// model versions.
func (a *app) persist(ctx context.Context, store *storage.Store, ds *pipeline.Dataset, model *gmf.Model, report *pipeline.TrainingReport) error {
	if _, err := store.SaveIndex(ctx, ds.Index); err != nil {
		return fmt.Errorf("save index: %w", err)
	}

	numPlaylists, numTracks := model.Dims()
	meta := storage.ModelMetadata{
		RunID:              report.RunID,
		TrainedAt:          model.LastTrainedAt(),
		NumPlaylists:       numPlaylists,
		NumTracks:          numTracks,
		LatentDim:          model.Config().LatentDim,
		Epochs:             model.Epochs(),
		Nonzeros:           ds.Matrix.NNZ(),
		TrainingDurationMS: report.Duration.Milliseconds(),
	}
	if final, ok := report.Final(); ok {
		meta.Loss = final.Metrics.Loss
		meta.Accuracy = final.Metrics.Accuracy
		meta.ValLoss = final.Metrics.ValLoss
		meta.ValAccuracy = final.Metrics.ValAccuracy
	}

	saved, err := store.SaveModel(ctx, model.Snapshot(), meta)
	if err != nil {
		return fmt.Errorf("save model: %w", err)
	}

	logger := logging.Ctx(ctx, a.logger)
	if keep := a.cfg.Storage.KeepVersions; keep > 0 {
		pruned, err := store.Prune(ctx, keep)
		if err != nil {
			return fmt.Errorf("prune models: %w", err)
		}
		if pruned > 0 {
			logger.Info().Int("pruned", pruned).Int("keep", keep).Msg("pruned old model versions")
		}
	}

	logger.Info().
		Int("version", saved.Version).
		Float64("loss", saved.Loss).
		Float64("val_loss", saved.ValLoss).
		Msg("model persisted")
	return nil
}

// trainSupervised runs training under the supervisor tree with the
// metrics endpoint alongside it.
func (a *app) trainSupervised(ctx context.Context) error {
	tree := supervisor.NewTree(logging.NewSlogLogger(a.logger), supervisor.DefaultTreeConfig())

	training := services.NewTrainingService(services.TrainingRunnerFunc(a.train), services.TrainingServiceConfig{}, a.logger)
	tree.AddTrainingService(training)

	server := &http.Server{
		Handler:           services.NewRouter(nil, training.Running),
		ReadHeaderTimeout: 5 * time.Second,
	}
	tree.AddAPIService(services.NewHTTPServerService(server, services.HTTPServiceConfig{
		Addr:            a.cfg.Metrics.Addr,
		ShutdownTimeout: 10 * time.Second,
	}, a.logger))

	if err := tree.Serve(ctx); err != nil &&
		!errors.Is(err, suture.ErrTerminateSupervisorTree) &&
		!errors.Is(err, context.Canceled) {
		return fmt.Errorf("supervisor: %w", err)
	}

	select {
	case <-training.Done():
		return training.Err()
	default:
		return ctx.Err()
	}
}

// Mixtape - Playlist Continuation Model Training
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mixtape

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"slices"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tomtom215/mixtape/internal/gmf"
	"github.com/tomtom215/mixtape/internal/pipeline"
	"github.com/tomtom215/mixtape/internal/storage"
	"github.com/tomtom215/mixtape/internal/trackindex"
)

// errDatasetMismatch is returned when the stored model was trained on a
// different dataset than the one prepared now.
var errDatasetMismatch = errors.New("stored model does not match the dataset; retrain")

func newRecommendCmd(a *app) *cobra.Command {
	var (
		k       int
		out     string
		version int
	)

	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Rank continuation tracks for every challenge playlist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if k <= 0 {
				k = a.cfg.Recommend.K
			}
			if out == "" {
				out = a.cfg.Recommend.OutputPath
			}

			res, err := a.recommend(ctx, version, k)
			if err != nil {
				return err
			}
			if out == "-" {
				return pipeline.WriteJSON(cmd.OutOrStdout(), res)
			}
			if err := pipeline.WriteJSONFile(out, res); err != nil {
				return fmt.Errorf("write recommendations: %w", err)
			}
			a.logger.Info().
				Str("path", out).
				Int("playlists", len(res.Recommendations)).
				Int("skipped", len(res.Skipped)).
				Msg("recommendations written")
			return nil
		},
	}
	cmd.Flags().IntVar(&k, "k", 0, "tracks per playlist (default recommend.k)")
	cmd.Flags().StringVar(&out, "out", "", `output file, "-" for stdout (default recommend.output_path)`)
	cmd.Flags().IntVar(&version, "model-version", 0, "model version to load (0 = latest)")
	return cmd
}

func (a *app) recommend(ctx context.Context, version, k int) (*pipeline.RecommendResult, error) {
	eng, err := a.engine()
	if err != nil {
		return nil, err
	}
	ds, err := eng.Prepare(ctx)
	if err != nil {
		return nil, fmt.Errorf("prepare dataset: %w", err)
	}

	var snap gmf.Snapshot
	err = a.withStore(func(store *storage.Store) error {
		idx, _, err := store.LoadIndex(ctx)
		if err != nil {
			return fmt.Errorf("load index: %w", err)
		}
		if !sameIndex(idx, ds.Index) {
			return fmt.Errorf("track index: %w", errDatasetMismatch)
		}
		meta, err := store.LoadModel(ctx, version, &snap)
		if err != nil {
			return fmt.Errorf("load model: %w", err)
		}
		a.logger.Info().
			Int("version", meta.Version).
			Str("run_id", meta.RunID).
			Int("epochs", meta.Epochs).
			Msg("model loaded")
		return nil
	})
	if err != nil {
		return nil, err
	}

	model, err := gmf.Restore(&snap)
	if err != nil {
		return nil, fmt.Errorf("restore model: %w", err)
	}
	numPlaylists, numTracks := model.Dims()
	if p, t := ds.Matrix.Shape(); p != numPlaylists || t != numTracks {
		return nil, fmt.Errorf("model shape %dx%d, dataset %dx%d: %w", numPlaylists, numTracks, p, t, errDatasetMismatch)
	}

	return eng.Recommend(ctx, ds, model, k)
}

func sameIndex(a, b *trackindex.Index) bool {
	return a.Len() == b.Len() && slices.Equal(a.URIs(), b.URIs())
}

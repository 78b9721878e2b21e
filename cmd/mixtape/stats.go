// Mixtape - Playlist Continuation Model Training
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mixtape

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tomtom215/mixtape/internal/pipeline"
	"github.com/tomtom215/mixtape/internal/storage"
)

type statsOutput struct {
	Dataset pipeline.Stats          `json:"dataset"`
	Models  []storage.ModelMetadata `json:"models,omitempty"`
}

func newStatsCmd(a *app) *cobra.Command {
	var models bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print dataset statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			eng, err := a.engine()
			if err != nil {
				return err
			}
			ds, err := eng.Prepare(ctx)
			if err != nil {
				return fmt.Errorf("prepare dataset: %w", err)
			}

			out := statsOutput{Dataset: ds.Stats()}
			if models {
				err := a.withStore(func(store *storage.Store) error {
					var err error
					out.Models, err = store.ListModels(ctx)
					return err
				})
				if err != nil {
					return fmt.Errorf("list models: %w", err)
				}
			}
			return pipeline.WriteJSON(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().BoolVar(&models, "models", false, "also list stored model versions")
	return cmd
}

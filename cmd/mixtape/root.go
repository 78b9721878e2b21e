// Mixtape - Playlist Continuation Model Training
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mixtape

package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/tomtom215/mixtape/internal/config"
	"github.com/tomtom215/mixtape/internal/ingest"
	"github.com/tomtom215/mixtape/internal/logging"
	"github.com/tomtom215/mixtape/internal/pipeline"
	"github.com/tomtom215/mixtape/internal/storage"
)

// app carries state shared by subcommands once configuration is loaded.
type app struct {
	configPath string
	cfg        *config.Config
	logger     zerolog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "mixtape",
		Short:         "Playlist continuation model training",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			return a.load()
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "path to a YAML config file (sets "+config.ConfigPathEnvVar+")")

	root.AddCommand(
		newTrainCmd(a),
		newRecommendCmd(a),
		newStatsCmd(a),
		newVersionCmd(),
	)

	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return fmt.Errorf("%w\n\n%s", err, cmd.UsageString())
	})
	return root
}

// load reads configuration and initializes logging.
func (a *app) load() error {
	if a.configPath != "" {
		if err := os.Setenv(config.ConfigPathEnvVar, a.configPath); err != nil {
			return fmt.Errorf("set %s: %w", config.ConfigPathEnvVar, err)
		}
	}

	cfg, err := config.LoadWithKoanf()
	if err != nil {
		return err
	}
	logging.Init(cfg.LoggingConfig())

	a.cfg = cfg
	a.logger = logging.Logger()
	logging.Debug().
		Str("data_dir", cfg.Data.Dir).
		Ints("slice_starts", cfg.Data.SliceStarts).
		Str("storage_path", cfg.Storage.Path).
		Msg("configuration loaded")
	return nil
}

// engine builds a pipeline engine reading from the configured MPD files.
func (a *app) engine() (*pipeline.Engine, error) {
	loader, err := ingest.NewLoader(a.cfg.IngestConfig(), a.logger)
	if err != nil {
		return nil, fmt.Errorf("create loader: %w", err)
	}
	eng, err := pipeline.NewEngine(a.cfg.PipelineConfig(), loader, a.logger)
	if err != nil {
		return nil, fmt.Errorf("create engine: %w", err)
	}
	return eng, nil
}

// withStore opens the artifact store, runs fn and closes the store.
func (a *app) withStore(fn func(*storage.Store) error) (err error) {
	store, err := storage.Open(a.cfg.StorageConfig(), a.logger)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() {
		if cerr := store.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close store: %w", cerr)
		}
	}()
	return fn(store)
}

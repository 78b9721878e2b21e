// Mixtape - Playlist Continuation Model Training
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mixtape

package ingest

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/mixtape/internal/playlist"
)

// Config selects the files a Loader reads.
type Config struct {
	// Dir is the directory holding the slice files.
	Dir string

	// SliceStarts lists the first pid of every slice to read.
	SliceStarts []int

	// ChallengePath is the challenge set file. Empty skips it.
	ChallengePath string

	// Workers bounds concurrent file reads. Default: 4.
	Workers int
}

// Loader reads playlists from MPD files on disk.
type Loader struct {
	config Config
	logger zerolog.Logger
}

// NewLoader validates the slice starts and returns a loader.
//
//nolint:gocritic // hugeParam: logger is passed by value throughout the codebase
func NewLoader(cfg Config, logger zerolog.Logger) (*Loader, error) {
	for _, start := range cfg.SliceStarts {
		if _, err := SliceName(start); err != nil {
			return nil, err
		}
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	return &Loader{
		config: cfg,
		logger: logger.With().Str("component", "ingest").Logger(),
	}, nil
}

// LoadPlaylists reads every configured slice followed by the challenge set.
func (l *Loader) LoadPlaylists(ctx context.Context) ([]playlist.Playlist, error) {
	start := time.Now()
	slices := make([][]playlist.Playlist, len(l.config.SliceStarts))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(l.config.Workers)
	for i, sliceStart := range l.config.SliceStarts {
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			name, err := SliceName(sliceStart)
			if err != nil {
				return err
			}
			pls, err := ReadFile(filepath.Join(l.config.Dir, name))
			if err != nil {
				return err
			}
			slices[i] = pls
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, fmt.Errorf("load slices: %w", err)
	}

	var out []playlist.Playlist
	for _, pls := range slices {
		out = append(out, pls...)
	}
	training := len(out)

	if l.config.ChallengePath != "" {
		challenge, err := ReadFile(l.config.ChallengePath)
		if err != nil {
			return nil, fmt.Errorf("load challenge set: %w", err)
		}
		out = append(out, challenge...)
	}

	l.logger.Info().
		Int("slices", len(l.config.SliceStarts)).
		Int("slice_playlists", training).
		Int("challenge_playlists", len(out)-training).
		Dur("duration", time.Since(start)).
		Msg("loaded playlists")

	return out, nil
}

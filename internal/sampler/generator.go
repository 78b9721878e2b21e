// Mixtape - Playlist Continuation Model Training
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mixtape

package sampler

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/mixtape/internal/interaction"
)

// Label values carried by instances.
const (
	Negative uint8 = 0
	Positive uint8 = 1
)

// Instance is one (playlist, track, label) training triple.
type Instance struct {
	Playlist int
	Track    int
	Label    uint8
}

// Epoch is the instance stream generated for one training pass.
type Epoch struct {
	Instances []Instance
	Positives int
	Negatives int

	// Exhausted lists every positive whose negative slots were cut short.
	Exhausted []*SamplingExhaustedError

	// Seed is the epoch seed the row streams were derived from.
	Seed uint64
}

// Skipped returns the number of negative slots that were not emitted.
func (e *Epoch) Skipped() int {
	n := 0
	for _, ex := range e.Exhausted {
		n += ex.Skipped
	}
	return n
}

// Generator produces training epochs from a read-only interaction matrix.
type Generator struct {
	matrix *interaction.Matrix
	config Config
	logger zerolog.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

// NewGenerator creates a generator over m. Zero config fields take their
// defaults. rng supplies epoch seeds; pass a seeded source for
// reproducible epochs.
//
//nolint:gocritic // hugeParam: logger is passed by value throughout the codebase
func NewGenerator(m *interaction.Matrix, cfg Config, rng *rand.Rand, logger zerolog.Logger) (*Generator, error) {
	if m == nil {
		return nil, fmt.Errorf("sampler: nil matrix")
	}
	if rng == nil {
		return nil, fmt.Errorf("sampler: nil random source")
	}
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &Generator{
		matrix: m,
		config: cfg,
		rng:    rng,
		logger: logger.With().Str("component", "sampler").Logger(),
	}, nil
}

// Config returns the effective configuration.
func (g *Generator) Config() Config {
	return g.config
}

// Generate produces one epoch. It returns ErrEmptyMatrix when the matrix
// has no positives. Exhausted negative slots are reported on the epoch,
// not as an error.
func (g *Generator) Generate(ctx context.Context) (*Epoch, error) {
	if g.matrix.NNZ() == 0 {
		return nil, ErrEmptyMatrix
	}

	g.mu.Lock()
	seed := g.rng.Uint64()
	g.mu.Unlock()

	shards := g.shardRows()
	results := make([]*Epoch, len(shards))

	eg, egCtx := errgroup.WithContext(ctx)
	for i, rows := range shards {
		eg.Go(func() error {
			out, err := g.generateShard(egCtx, seed, rows)
			if err != nil {
				return err
			}
			results[i] = out
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, fmt.Errorf("generate epoch: %w", err)
	}

	k := g.config.NumNegatives
	epoch := &Epoch{
		Instances: make([]Instance, 0, g.matrix.NNZ()*(1+k)),
		Seed:      seed,
	}
	for _, r := range results {
		epoch.Instances = append(epoch.Instances, r.Instances...)
		epoch.Positives += r.Positives
		epoch.Negatives += r.Negatives
		epoch.Exhausted = append(epoch.Exhausted, r.Exhausted...)
	}

	if len(epoch.Exhausted) > 0 {
		g.logger.Warn().
			Int("positives_affected", len(epoch.Exhausted)).
			Int("slots_skipped", epoch.Skipped()).
			Int("max_retries", g.config.MaxRetries).
			Msg("negative sampling exhausted for dense rows")
	}
	g.logger.Debug().
		Int("positives", epoch.Positives).
		Int("negatives", epoch.Negatives).
		Uint64("seed", seed).
		Msg("generated epoch")

	return epoch, nil
}

// shardRows splits the non-empty rows into at most Workers contiguous
// shards of roughly equal positive counts.
func (g *Generator) shardRows() [][]int {
	rows := g.matrix.Playlists()
	workers := g.config.Workers
	if workers > len(rows) {
		workers = len(rows)
	}
	if workers <= 1 {
		return [][]int{rows}
	}

	target := (g.matrix.NNZ() + workers - 1) / workers
	shards := make([][]int, 0, workers)
	start, acc := 0, 0
	for i, p := range rows {
		acc += g.matrix.RowNNZ(p)
		if acc >= target && len(shards) < workers-1 {
			shards = append(shards, rows[start:i+1])
			start, acc = i+1, 0
		}
	}
	if start < len(rows) {
		shards = append(shards, rows[start:])
	}
	return shards
}

func (g *Generator) generateShard(ctx context.Context, seed uint64, rows []int) (*Epoch, error) {
	k := g.config.NumNegatives
	out := &Epoch{}
	for _, p := range rows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		row := g.matrix.Row(p)
		rng := rand.New(rand.NewPCG(seed, uint64(p))) //nolint:gosec // G404: math/rand is acceptable for ML sampling
		full := len(row) >= g.matrix.NumTracks()

		for _, t := range row {
			out.Instances = append(out.Instances, Instance{Playlist: p, Track: t, Label: Positive})
			out.Positives++

			skipped := 0
			for n := 0; n < k; n++ {
				j, ok := g.drawNegative(rng, p, full)
				if !ok {
					skipped++
					continue
				}
				out.Instances = append(out.Instances, Instance{Playlist: p, Track: j, Label: Negative})
				out.Negatives++
			}
			if skipped > 0 {
				out.Exhausted = append(out.Exhausted, &SamplingExhaustedError{
					Playlist: p,
					Track:    t,
					Skipped:  skipped,
					Retries:  g.config.MaxRetries,
					RowNNZ:   len(row),
				})
			}
		}
	}
	return out, nil
}

// drawNegative rejection-samples a track not observed in row p.
func (g *Generator) drawNegative(rng *rand.Rand, p int, full bool) (int, bool) {
	if full {
		return 0, false
	}
	numTracks := g.matrix.NumTracks()
	for tries := 0; tries < g.config.MaxRetries; tries++ {
		j := rng.IntN(numTracks)
		if !g.matrix.Contains(p, j) {
			return j, true
		}
	}
	return 0, false
}

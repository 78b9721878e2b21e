// Mixtape - Playlist Continuation Model Training
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mixtape

// Package services provides suture service wrappers for Mixtape components.
package services

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/thejerf/suture/v4"
)

// TrainingRunner performs one complete training run.
type TrainingRunner interface {
	Run(ctx context.Context) error
}

// TrainingRunnerFunc adapts a function to TrainingRunner.
type TrainingRunnerFunc func(ctx context.Context) error

// Run calls f(ctx).
func (f TrainingRunnerFunc) Run(ctx context.Context) error {
	return f(ctx)
}

// TrainingServiceConfig holds configuration for the training service.
type TrainingServiceConfig struct {
	// Timeout bounds the run. Zero means no limit.
	Timeout time.Duration
}

// TrainingService runs a single training run under supervision and then
// terminates the supervisor tree, whatever the outcome. The outcome is
// available from Err once Done is closed. A run is never restarted.
type TrainingService struct {
	runner TrainingRunner
	config TrainingServiceConfig
	logger zerolog.Logger
	name   string

	running atomic.Bool
	once    sync.Once
	done    chan struct{}
	err     error
}

// NewTrainingService creates a training service around runner.
//
//nolint:gocritic // hugeParam: logger is passed by value throughout the codebase
func NewTrainingService(runner TrainingRunner, cfg TrainingServiceConfig, logger zerolog.Logger) *TrainingService {
	return &TrainingService{
		runner: runner,
		config: cfg,
		logger: logger.With().Str("service", "training").Logger(),
		name:   "training-service",
		done:   make(chan struct{}),
	}
}

// Serve implements suture.Service.
func (s *TrainingService) Serve(ctx context.Context) error {
	started := false
	s.once.Do(func() { started = true })
	if !started {
		return suture.ErrDoNotRestart
	}

	runCtx := ctx
	if s.config.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, s.config.Timeout)
		defer cancel()
	}

	start := time.Now()
	s.running.Store(true)
	s.logger.Info().Dur("timeout", s.config.Timeout).Msg("training service starting")

	err := s.runner.Run(runCtx)

	s.running.Store(false)
	s.err = err
	close(s.done)

	if err != nil {
		s.logger.Error().Err(err).Dur("duration", time.Since(start)).Msg("training run failed")
	} else {
		s.logger.Info().Dur("duration", time.Since(start)).Msg("training run finished")
	}
	return suture.ErrTerminateSupervisorTree
}

// Running reports whether a run is in progress.
func (s *TrainingService) Running() bool {
	return s.running.Load()
}

// Done is closed when the run has finished.
func (s *TrainingService) Done() <-chan struct{} {
	return s.done
}

// Err returns the run's error. It is only meaningful after Done is closed.
func (s *TrainingService) Err() error {
	select {
	case <-s.done:
		return s.err
	default:
		return nil
	}
}

// String returns the service name for logging.
func (s *TrainingService) String() string {
	return s.name
}

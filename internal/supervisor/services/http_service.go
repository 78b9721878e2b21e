// Mixtape - Playlist Continuation Model Training
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mixtape

package services

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// HTTPServer is the lifecycle subset of *http.Server.
type HTTPServer interface {
	Serve(l net.Listener) error
	Shutdown(ctx context.Context) error
}

// HTTPServiceConfig configures the metrics endpoint service.
type HTTPServiceConfig struct {
	// Addr is the listen address. ":0" picks a free port.
	Addr string

	// ShutdownTimeout bounds graceful shutdown. Default: 10s.
	ShutdownTimeout time.Duration
}

// HTTPServerService runs the metrics and health endpoint under suture.
// It binds the listener itself so the resolved address is known before
// the first request, then serves until the supervisor cancels it:
//
//	server := &http.Server{Handler: services.NewRouter(nil, training.Running)}
//	svc := services.NewHTTPServerService(server, services.HTTPServiceConfig{Addr: ":9090"}, logger)
//	tree.AddAPIService(svc)
type HTTPServerService struct {
	server HTTPServer
	config HTTPServiceConfig
	logger zerolog.Logger

	mu    sync.RWMutex
	bound string
}

// NewHTTPServerService wraps server.
//
//nolint:gocritic // hugeParam: logger is passed by value throughout the codebase
func NewHTTPServerService(server HTTPServer, cfg HTTPServiceConfig, logger zerolog.Logger) *HTTPServerService {
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}
	return &HTTPServerService{
		server: server,
		config: cfg,
		logger: logger.With().Str("component", "metrics-http").Logger(),
	}
}

// Addr returns the bound address, or "" before the listener is open.
func (h *HTTPServerService) Addr() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.bound
}

// Serve implements suture.Service. http.ErrServerClosed is not an error.
func (h *HTTPServerService) Serve(ctx context.Context) error {
	ln, err := net.Listen("tcp", h.config.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", h.config.Addr, err)
	}
	addr := ln.Addr().String()
	h.mu.Lock()
	h.bound = addr
	h.mu.Unlock()
	h.logger.Info().Str("addr", addr).Msg("metrics endpoint listening")

	errCh := make(chan error, 1)
	go func() {
		if err := h.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			h.logger.Error().Err(err).Str("addr", addr).Msg("metrics endpoint failed")
			return fmt.Errorf("serve metrics on %s: %w", addr, err)
		}
		return nil

	case <-ctx.Done():
		// ctx is already cancelled; shut down on a fresh one.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), h.config.ShutdownTimeout)
		defer cancel()

		start := time.Now()
		if err := h.server.Shutdown(shutdownCtx); err != nil {
			h.logger.Warn().Err(err).Dur("timeout", h.config.ShutdownTimeout).Msg("metrics endpoint shutdown failed")
			return fmt.Errorf("shutdown metrics endpoint: %w", err)
		}
		<-errCh
		h.logger.Info().Str("addr", addr).Dur("took", time.Since(start)).Msg("metrics endpoint stopped")
		return ctx.Err()
	}
}

// String implements fmt.Stringer for suture's logs.
func (h *HTTPServerService) String() string {
	return "metrics-http"
}

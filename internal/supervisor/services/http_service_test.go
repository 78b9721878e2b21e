// Mixtape - Playlist Continuation Model Training
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mixtape

package services

import (
	"bytes"
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/thejerf/suture/v4"
)

// fakeHTTPServer blocks in Serve until Shutdown unless serveErr is set.
type fakeHTTPServer struct {
	serveErr    error
	shutdownErr error

	serves    atomic.Int32
	shutdowns atomic.Int32
	started   chan struct{}
	stopOnce  sync.Once
	stop      chan struct{}
}

func newFakeHTTPServer() *fakeHTTPServer {
	return &fakeHTTPServer{
		started: make(chan struct{}, 1),
		stop:    make(chan struct{}),
	}
}

func (f *fakeHTTPServer) Serve(l net.Listener) error {
	defer l.Close()
	f.serves.Add(1)
	select {
	case f.started <- struct{}{}:
	default:
	}
	if f.serveErr != nil {
		return f.serveErr
	}
	<-f.stop
	return http.ErrServerClosed
}

func (f *fakeHTTPServer) Shutdown(context.Context) error {
	f.shutdowns.Add(1)
	f.stopOnce.Do(func() { close(f.stop) })
	return f.shutdownErr
}

// syncBuffer is a bytes.Buffer safe for the logger goroutine and the test.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func waitStarted(t *testing.T, f *fakeHTTPServer) {
	t.Helper()
	select {
	case <-f.started:
	case <-time.After(time.Second):
		t.Fatal("server did not start")
	}
}

func localConfig() HTTPServiceConfig {
	return HTTPServiceConfig{Addr: "127.0.0.1:0", ShutdownTimeout: time.Second}
}

var _ suture.Service = (*HTTPServerService)(nil)

func TestNewHTTPServerService(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		timeout time.Duration
		want    time.Duration
	}{
		{"explicit", 3 * time.Second, 3 * time.Second},
		{"zero", 0, 10 * time.Second},
		{"negative", -time.Second, 10 * time.Second},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc := NewHTTPServerService(newFakeHTTPServer(), HTTPServiceConfig{ShutdownTimeout: tt.timeout}, zerolog.Nop())
			if svc.config.ShutdownTimeout != tt.want {
				t.Errorf("ShutdownTimeout = %v, want %v", svc.config.ShutdownTimeout, tt.want)
			}
			if svc.String() != "metrics-http" {
				t.Errorf("String() = %q, want metrics-http", svc.String())
			}
			if svc.Addr() != "" {
				t.Errorf("Addr() before Serve = %q, want empty", svc.Addr())
			}
		})
	}
}

func TestHTTPServerService_Serve(t *testing.T) {
	t.Parallel()

	t.Run("graceful shutdown on cancel", func(t *testing.T) {
		t.Parallel()
		server := newFakeHTTPServer()
		var logs syncBuffer
		svc := NewHTTPServerService(server, localConfig(), zerolog.New(&logs))

		ctx, cancel := context.WithCancel(context.Background())
		errCh := make(chan error, 1)
		go func() { errCh <- svc.Serve(ctx) }()

		waitStarted(t, server)
		addr := svc.Addr()
		if !strings.HasPrefix(addr, "127.0.0.1:") || strings.HasSuffix(addr, ":0") {
			t.Errorf("Addr() = %q, want a resolved loopback port", addr)
		}
		cancel()

		select {
		case err := <-errCh:
			if !errors.Is(err, context.Canceled) {
				t.Errorf("Serve() error = %v, want context.Canceled", err)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("Serve did not return after cancellation")
		}
		if got := server.shutdowns.Load(); got != 1 {
			t.Errorf("Shutdown calls = %d, want 1", got)
		}

		out := logs.String()
		for _, want := range []string{
			`"message":"metrics endpoint listening"`,
			`"message":"metrics endpoint stopped"`,
			`"addr":"` + addr + `"`,
			`"component":"metrics-http"`,
		} {
			if !strings.Contains(out, want) {
				t.Errorf("logs missing %s: %s", want, out)
			}
		}
	})

	t.Run("serve failure", func(t *testing.T) {
		t.Parallel()
		serveErr := errors.New("accept: too many open files")
		server := newFakeHTTPServer()
		server.serveErr = serveErr

		err := NewHTTPServerService(server, localConfig(), zerolog.Nop()).Serve(context.Background())
		if !errors.Is(err, serveErr) {
			t.Errorf("Serve() error = %v, want %v", err, serveErr)
		}
	})

	t.Run("address in use", func(t *testing.T) {
		t.Parallel()
		taken, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			t.Fatalf("net.Listen() error = %v", err)
		}
		defer taken.Close()

		server := newFakeHTTPServer()
		cfg := HTTPServiceConfig{Addr: taken.Addr().String()}
		err = NewHTTPServerService(server, cfg, zerolog.Nop()).Serve(context.Background())
		if err == nil || !strings.Contains(err.Error(), "listen on "+cfg.Addr) {
			t.Errorf("Serve() error = %v, want a listen error", err)
		}
		if server.serves.Load() != 0 {
			t.Error("server started without a listener")
		}
	})

	t.Run("shutdown failure", func(t *testing.T) {
		t.Parallel()
		shutdownErr := errors.New("shutdown timeout")
		server := newFakeHTTPServer()
		server.shutdownErr = shutdownErr
		svc := NewHTTPServerService(server, localConfig(), zerolog.Nop())

		ctx, cancel := context.WithCancel(context.Background())
		errCh := make(chan error, 1)
		go func() { errCh <- svc.Serve(ctx) }()

		waitStarted(t, server)
		cancel()

		select {
		case err := <-errCh:
			if !errors.Is(err, shutdownErr) {
				t.Errorf("Serve() error = %v, want %v", err, shutdownErr)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("Serve did not return")
		}
	})
}

func TestHTTPServerService_RealServer(t *testing.T) {
	t.Parallel()

	server := &http.Server{Handler: NewRouter(nil, func() bool { return true }), ReadHeaderTimeout: time.Second}
	svc := NewHTTPServerService(server, localConfig(), zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Serve(ctx) }()

	deadline := time.Now().Add(2 * time.Second)
	for svc.Addr() == "" && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if svc.Addr() == "" {
		cancel()
		t.Fatal("listener not bound")
	}

	resp, err := http.Get("http://" + svc.Addr() + "/healthz")
	if err != nil {
		cancel()
		t.Fatalf("GET /healthz error = %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("GET /healthz status = %d, want 200", resp.StatusCode)
	}

	cancel()
	if err := <-errCh; !errors.Is(err, context.Canceled) {
		t.Errorf("Serve() error = %v, want context.Canceled", err)
	}
}

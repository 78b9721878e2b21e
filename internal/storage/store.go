// Mixtape - Playlist Continuation Model Training
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mixtape

package storage

import (
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog"

	"github.com/tomtom215/mixtape/internal/metrics"
)

// Key prefixes for BadgerDB storage
const (
	indexURIsKey    = "index:uris"
	indexMetaKey    = "index:meta"
	modelDataPrefix = "model:data:"
	modelMetaPrefix = "model:meta:"
)

var (
	// ErrNotFound is returned when a requested artifact does not exist.
	ErrNotFound = errors.New("artifact not found")

	// ErrChecksumMismatch is returned when stored model data is corrupt.
	ErrChecksumMismatch = errors.New("checksum mismatch")
)

// Config contains configuration for the artifact store.
type Config struct {
	// Path is the BadgerDB directory. Ignored when InMemory is set.
	Path string

	// InMemory keeps everything in memory, for tests and dry runs.
	InMemory bool

	// SyncWrites fsyncs every write.
	SyncWrites bool
}

// Store is a BadgerDB-backed artifact store.
type Store struct {
	db     *badger.DB
	logger zerolog.Logger
}

// Open opens (or creates) the store described by cfg.
//
//nolint:gocritic // hugeParam: logger is passed by value throughout the codebase
func Open(cfg Config, logger zerolog.Logger) (*Store, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, fmt.Errorf("storage.path is required unless storage.in_memory is set")
	}

	path := cfg.Path
	if cfg.InMemory {
		path = ""
	}
	opts := badger.DefaultOptions(path).WithInMemory(cfg.InMemory)
	opts.SyncWrites = cfg.SyncWrites

	// Reduce logging verbosity
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open BadgerDB: %w", err)
	}

	s := &Store{
		db:     db,
		logger: logger.With().Str("component", "storage").Logger(),
	}
	s.logger.Debug().
		Str("path", cfg.Path).
		Bool("in_memory", cfg.InMemory).
		Msg("artifact store opened")
	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// observe records the duration and outcome of a store operation.
func observe(operation string, start time.Time, err *error) {
	metrics.RecordStorageOperation(operation, time.Since(start), *err)
}

// get reads the value at key, mapping a missing key to ErrNotFound.
func (s *Store) get(key string) ([]byte, error) {
	var out []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("get %s: %w", key, err)
		}
		out, err = item.ValueCopy(nil)
		return err
	})
	return out, err
}

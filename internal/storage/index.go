// Mixtape - Playlist Continuation Model Training
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mixtape

package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/mixtape/internal/trackindex"
)

// IndexMetadata describes the stored track index.
type IndexMetadata struct {
	Tracks   int       `json:"tracks"`
	Checksum string    `json:"checksum"`
	SavedAt  time.Time `json:"saved_at"`
}

// SaveIndex replaces the stored track index.
func (s *Store) SaveIndex(ctx context.Context, idx *trackindex.Index) (_ *IndexMetadata, err error) {
	defer observe("save_index", time.Now(), &err)

	data, err := json.Marshal(idx.URIs())
	if err != nil {
		return nil, fmt.Errorf("marshal index: %w", err)
	}
	hash := sha256.Sum256(data)
	meta := &IndexMetadata{
		Tracks:   idx.Len(),
		Checksum: hex.EncodeToString(hash[:]),
		SavedAt:  time.Now().UTC(),
	}
	metaData, err := json.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("marshal index metadata: %w", err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set([]byte(indexURIsKey), data); err != nil {
			return fmt.Errorf("set index: %w", err)
		}
		return txn.Set([]byte(indexMetaKey), metaData)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int("tracks", meta.Tracks).Msg("track index saved")
	return meta, nil
}

// LoadIndex restores the stored track index.
func (s *Store) LoadIndex(ctx context.Context) (_ *trackindex.Index, _ *IndexMetadata, err error) {
	defer observe("load_index", time.Now(), &err)

	metaData, err := s.get(indexMetaKey)
	if err != nil {
		return nil, nil, fmt.Errorf("load index metadata: %w", err)
	}
	var meta IndexMetadata
	if err := json.Unmarshal(metaData, &meta); err != nil {
		return nil, nil, fmt.Errorf("unmarshal index metadata: %w", err)
	}

	data, err := s.get(indexURIsKey)
	if err != nil {
		return nil, nil, fmt.Errorf("load index: %w", err)
	}
	hash := sha256.Sum256(data)
	if got := hex.EncodeToString(hash[:]); got != meta.Checksum {
		return nil, nil, fmt.Errorf("index %w: expected %s, got %s", ErrChecksumMismatch, meta.Checksum, got)
	}

	var uris []string
	if err := json.Unmarshal(data, &uris); err != nil {
		return nil, nil, fmt.Errorf("unmarshal index: %w", err)
	}
	idx, err := trackindex.FromOrdered(uris)
	if err != nil {
		return nil, nil, fmt.Errorf("rebuild index: %w", err)
	}
	return idx, &meta, nil
}

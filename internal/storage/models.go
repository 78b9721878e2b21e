// Mixtape - Playlist Continuation Model Training
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mixtape

package storage

import (
	"bytes"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
)

// ModelMetadata contains information about a stored model.
type ModelMetadata struct {
	// Version is the model version (monotonically increasing).
	Version int `json:"version"`

	// RunID identifies the training run that produced the model.
	RunID string `json:"run_id"`

	// TrainedAt is when the last epoch finished.
	TrainedAt time.Time `json:"trained_at"`

	// SavedAt is when the model was saved.
	SavedAt time.Time `json:"saved_at"`

	NumPlaylists int `json:"num_playlists"`
	NumTracks    int `json:"num_tracks"`
	LatentDim    int `json:"latent_dim"`
	Epochs       int `json:"epochs"`

	// Nonzeros is the number of training positives.
	Nonzeros int `json:"nonzeros"`

	// Final epoch metrics.
	Loss        float64 `json:"loss"`
	Accuracy    float64 `json:"accuracy"`
	ValLoss     float64 `json:"val_loss"`
	ValAccuracy float64 `json:"val_accuracy"`

	// Checksum is the SHA-256 checksum of the uncompressed model data.
	Checksum string `json:"checksum"`

	// SizeBytes is the compressed model size in bytes.
	SizeBytes int64 `json:"size_bytes"`

	// TrainingDurationMS is how long training took.
	TrainingDurationMS int64 `json:"training_duration_ms"`
}

func versionKey(prefix string, version int) []byte {
	return []byte(fmt.Sprintf("%s%010d", prefix, version))
}

func parseVersionKey(prefix string, key []byte) (int, bool) {
	v, err := strconv.Atoi(strings.TrimPrefix(string(key), prefix))
	if err != nil {
		return 0, false
	}
	return v, true
}

// SaveModel stores data as the next model version and returns its metadata.
// Version, checksum, size and save time in meta are filled in by the store.
//
//nolint:gocritic // meta passed by value is acceptable for this write operation
func (s *Store) SaveModel(ctx context.Context, data any, meta ModelMetadata) (_ *ModelMetadata, err error) {
	defer observe("save_model", time.Now(), &err)

	// Serialize model data
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(data); err != nil {
		return nil, fmt.Errorf("encode model: %w", err)
	}
	raw := buf.Bytes()

	hash := sha256.Sum256(raw)
	meta.Checksum = hex.EncodeToString(hash[:])

	var compressed bytes.Buffer
	gzw := gzip.NewWriter(&compressed)
	if _, err := gzw.Write(raw); err != nil {
		return nil, fmt.Errorf("compress model: %w", err)
	}
	if err := gzw.Close(); err != nil {
		return nil, fmt.Errorf("finalize compression: %w", err)
	}
	meta.SizeBytes = int64(compressed.Len())
	meta.SavedAt = time.Now().UTC()

	err = s.db.Update(func(txn *badger.Txn) error {
		latest, _, err := latestVersion(txn)
		if err != nil {
			return err
		}
		meta.Version = latest + 1

		metaData, err := json.Marshal(meta)
		if err != nil {
			return fmt.Errorf("marshal metadata: %w", err)
		}
		if err := txn.Set(versionKey(modelDataPrefix, meta.Version), compressed.Bytes()); err != nil {
			return fmt.Errorf("set model data: %w", err)
		}
		if err := txn.Set(versionKey(modelMetaPrefix, meta.Version), metaData); err != nil {
			return fmt.Errorf("set model metadata: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Int("version", meta.Version).
		Str("run_id", meta.RunID).
		Int64("size_bytes", meta.SizeBytes).
		Msg("model saved")
	return &meta, nil
}

// LoadModel decodes the given version into target. Version 0 loads the
// latest version.
func (s *Store) LoadModel(ctx context.Context, version int, target any) (_ *ModelMetadata, err error) {
	defer observe("load_model", time.Now(), &err)

	if version == 0 {
		latest, ok, err := s.LatestVersion(ctx)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("no model stored: %w", ErrNotFound)
		}
		version = latest
	}

	metaData, err := s.get(string(versionKey(modelMetaPrefix, version)))
	if err != nil {
		return nil, fmt.Errorf("load model %d metadata: %w", version, err)
	}
	var meta ModelMetadata
	if err := json.Unmarshal(metaData, &meta); err != nil {
		return nil, fmt.Errorf("unmarshal model %d metadata: %w", version, err)
	}

	compressed, err := s.get(string(versionKey(modelDataPrefix, version)))
	if err != nil {
		return nil, fmt.Errorf("load model %d: %w", version, err)
	}

	gzr, err := gzip.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, fmt.Errorf("decompress model: %w", err)
	}
	defer func() { _ = gzr.Close() }() //nolint:errcheck // error on gzip close after read is not actionable

	raw, err := io.ReadAll(gzr)
	if err != nil {
		return nil, fmt.Errorf("read decompressed data: %w", err)
	}

	hash := sha256.Sum256(raw)
	if got := hex.EncodeToString(hash[:]); got != meta.Checksum {
		return nil, fmt.Errorf("model %d %w: expected %s, got %s", version, ErrChecksumMismatch, meta.Checksum, got)
	}

	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(target); err != nil {
		return nil, fmt.Errorf("decode model: %w", err)
	}
	return &meta, nil
}

// LatestVersion returns the highest stored model version.
func (s *Store) LatestVersion(ctx context.Context) (int, bool, error) {
	var (
		version int
		ok      bool
	)
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		version, ok, err = latestVersion(txn)
		return err
	})
	return version, ok, err
}

func latestVersion(txn *badger.Txn) (int, bool, error) {
	opts := badger.DefaultIteratorOptions
	opts.Reverse = true
	opts.PrefetchValues = false
	it := txn.NewIterator(opts)
	defer it.Close()

	prefix := []byte(modelMetaPrefix)
	it.Seek(append([]byte(modelMetaPrefix), 0xff))
	if !it.ValidForPrefix(prefix) {
		return 0, false, nil
	}
	v, ok := parseVersionKey(modelMetaPrefix, it.Item().Key())
	if !ok {
		return 0, false, fmt.Errorf("malformed model key %q", it.Item().Key())
	}
	return v, true, nil
}

// ListModels returns metadata for all stored models in version order.
func (s *Store) ListModels(ctx context.Context) ([]ModelMetadata, error) {
	var models []ModelMetadata
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(modelMetaPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var meta ModelMetadata
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &meta)
			})
			if err != nil {
				return fmt.Errorf("unmarshal %q: %w", it.Item().Key(), err)
			}
			models = append(models, meta)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list models: %w", err)
	}
	return models, nil
}

// Delete removes a specific model version.
func (s *Store) Delete(ctx context.Context, version int) error {
	return s.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(versionKey(modelMetaPrefix, version))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("model %d: %w", version, ErrNotFound)
		}
		if err != nil {
			return err
		}
		if err := txn.Delete(versionKey(modelDataPrefix, version)); err != nil {
			return fmt.Errorf("delete model data: %w", err)
		}
		return txn.Delete(versionKey(modelMetaPrefix, version))
	})
}

// Prune removes old model versions, keeping only the latest keep versions.
// It returns the number of versions removed.
func (s *Store) Prune(ctx context.Context, keep int) (int, error) {
	if keep < 1 {
		keep = 1
	}
	models, err := s.ListModels(ctx)
	if err != nil {
		return 0, err
	}
	if len(models) <= keep {
		return 0, nil
	}

	removed := 0
	for _, m := range models[:len(models)-keep] {
		if err := s.Delete(ctx, m.Version); err != nil {
			return removed, fmt.Errorf("prune model %d: %w", m.Version, err)
		}
		removed++
	}
	s.logger.Info().Int("removed", removed).Int("kept", keep).Msg("pruned model versions")
	return removed, nil
}

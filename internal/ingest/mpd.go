// Mixtape - Playlist Continuation Model Training
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mixtape

package ingest

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-json"

	"github.com/tomtom215/mixtape/internal/playlist"
)

// Slice geometry of the Million Playlist Dataset.
const (
	SliceSize = 1000
	MaxPID    = 1000000
)

// ErrInvalidSlice is matched by every *InvalidSliceError.
var ErrInvalidSlice = errors.New("invalid slice start")

// InvalidSliceError reports a slice start that is not a slice boundary.
type InvalidSliceError struct {
	Start int
}

func (e *InvalidSliceError) Error() string {
	return fmt.Sprintf("invalid slice start pid %d: must be a multiple of %d in [0, %d]", e.Start, SliceSize, MaxPID-SliceSize)
}

func (e *InvalidSliceError) Unwrap() error {
	return ErrInvalidSlice
}

// SliceName returns the file name of the slice starting at start.
func SliceName(start int) (string, error) {
	if start < 0 || start >= MaxPID || start%SliceSize != 0 {
		return "", &InvalidSliceError{Start: start}
	}
	return fmt.Sprintf("mpd.slice.%d-%d.json", start, start+SliceSize-1), nil
}

// mpdFile mirrors the on-disk layout of slice and challenge files.
type mpdFile struct {
	Info      map[string]any `json:"info"`
	Playlists []mpdPlaylist  `json:"playlists"`
}

type mpdPlaylist struct {
	PID         int        `json:"pid"`
	Name        string     `json:"name"`
	NumTracks   int        `json:"num_tracks"`
	NumHoldouts *int       `json:"num_holdouts"`
	Tracks      []mpdTrack `json:"tracks"`
}

type mpdTrack struct {
	Pos        int    `json:"pos"`
	TrackURI   string `json:"track_uri"`
	ArtistName string `json:"artist_name"`
	TrackName  string `json:"track_name"`
	AlbumName  string `json:"album_name"`
	DurationMS int    `json:"duration_ms"`
}

// Decode reads one slice or challenge document.
func Decode(r io.Reader) ([]playlist.Playlist, error) {
	var doc mpdFile
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode playlists: %w", err)
	}

	out := make([]playlist.Playlist, len(doc.Playlists))
	for i := range doc.Playlists {
		src := &doc.Playlists[i]
		tracks := make([]playlist.TrackEntry, len(src.Tracks))
		for j := range src.Tracks {
			tracks[j] = playlist.TrackEntry{
				URI:        src.Tracks[j].TrackURI,
				ArtistName: src.Tracks[j].ArtistName,
				TrackName:  src.Tracks[j].TrackName,
			}
		}
		out[i] = playlist.Playlist{
			ID:          src.PID,
			Name:        src.Name,
			Tracks:      tracks,
			NumHoldouts: src.NumHoldouts,
		}
	}
	return out, nil
}

// ReadFile decodes the document at path.
func ReadFile(path string) ([]playlist.Playlist, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	pls, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return pls, nil
}

// Mixtape - Playlist Continuation Model Training
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mixtape

package interaction

import (
	"fmt"
	"sort"
)

// Cell addresses one matrix entry.
type Cell struct {
	Playlist int
	Track    int
}

// Matrix is an immutable sparse binary interaction matrix.
type Matrix struct {
	numPlaylists int
	numTracks    int

	// cells is the dictionary of keys; presence means value 1.0
	cells map[Cell]struct{}

	// rows holds the sorted track codes of every non-empty row
	rows map[int][]int

	// keys lists every cell in (playlist, track) order
	keys []Cell
}

// Shape returns (numPlaylists, numTracks).
func (m *Matrix) Shape() (numPlaylists, numTracks int) {
	return m.numPlaylists, m.numTracks
}

// NumPlaylists returns the row dimension.
func (m *Matrix) NumPlaylists() int { return m.numPlaylists }

// NumTracks returns the column dimension.
func (m *Matrix) NumTracks() int { return m.numTracks }

// NNZ returns the number of nonzero cells.
func (m *Matrix) NNZ() int {
	return len(m.keys)
}

// Contains reports whether (p, t) is a nonzero cell. Out-of-range
// coordinates are never contained.
func (m *Matrix) Contains(p, t int) bool {
	_, ok := m.cells[Cell{Playlist: p, Track: t}]
	return ok
}

// At returns the cell value, 1.0 for observed pairs and 0 otherwise.
func (m *Matrix) At(p, t int) float32 {
	if m.Contains(p, t) {
		return 1
	}
	return 0
}

// NonZeros returns a copy of all nonzero cells in (playlist, track) order.
func (m *Matrix) NonZeros() []Cell {
	out := make([]Cell, len(m.keys))
	copy(out, m.keys)
	return out
}

// Row returns a copy of the sorted track codes observed in playlist p.
func (m *Matrix) Row(p int) []int {
	row := m.rows[p]
	out := make([]int, len(row))
	copy(out, row)
	return out
}

// RowNNZ returns the number of tracks observed in playlist p.
func (m *Matrix) RowNNZ(p int) int {
	return len(m.rows[p])
}

// Playlists returns the ids of all non-empty rows in ascending order.
func (m *Matrix) Playlists() []int {
	ids := make([]int, 0, len(m.rows))
	for p := range m.rows {
		ids = append(ids, p)
	}
	sort.Ints(ids)
	return ids
}

// Density returns NNZ divided by the number of cells.
func (m *Matrix) Density() float64 {
	total := float64(m.numPlaylists) * float64(m.numTracks)
	if total == 0 {
		return 0
	}
	return float64(len(m.keys)) / total
}

// Builder accumulates cells for a Matrix of fixed shape.
type Builder struct {
	numPlaylists int
	numTracks    int
	cells        map[Cell]struct{}
}

// NewBuilder returns a builder for a numPlaylists x numTracks matrix.
func NewBuilder(numPlaylists, numTracks int) (*Builder, error) {
	if numPlaylists <= 0 {
		return nil, fmt.Errorf("numPlaylists must be positive, got %d", numPlaylists)
	}
	if numTracks <= 0 {
		return nil, fmt.Errorf("numTracks must be positive, got %d", numTracks)
	}
	return &Builder{
		numPlaylists: numPlaylists,
		numTracks:    numTracks,
		cells:        make(map[Cell]struct{}),
	}, nil
}

// Set marks (p, t) as observed. Setting a cell more than once has no
// further effect.
func (b *Builder) Set(p, t int) error {
	if p < 0 || p >= b.numPlaylists || t < 0 || t >= b.numTracks {
		return &IndexOutOfRangeError{
			Playlist:     p,
			Track:        t,
			NumPlaylists: b.numPlaylists,
			NumTracks:    b.numTracks,
		}
	}
	b.cells[Cell{Playlist: p, Track: t}] = struct{}{}
	return nil
}

// Len returns the number of distinct cells set so far.
func (b *Builder) Len() int {
	return len(b.cells)
}

// Build freezes the accumulated cells into a Matrix. The builder must not
// be used afterwards.
func (b *Builder) Build() *Matrix {
	keys := make([]Cell, 0, len(b.cells))
	for c := range b.cells {
		keys = append(keys, c)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Playlist != keys[j].Playlist {
			return keys[i].Playlist < keys[j].Playlist
		}
		return keys[i].Track < keys[j].Track
	})

	rows := make(map[int][]int)
	for _, c := range keys {
		rows[c.Playlist] = append(rows[c.Playlist], c.Track)
	}

	m := &Matrix{
		numPlaylists: b.numPlaylists,
		numTracks:    b.numTracks,
		cells:        b.cells,
		rows:         rows,
		keys:         keys,
	}
	b.cells = nil
	return m
}

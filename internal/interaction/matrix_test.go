// Mixtape - Playlist Continuation Model Training
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mixtape

package interaction

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/tomtom215/mixtape/internal/playlist"
	"github.com/tomtom215/mixtape/internal/trackindex"
)

func scenarioRows() []playlist.RawInteractionRecord {
	return []playlist.RawInteractionRecord{
		{PlaylistID: 0, TrackURI: "a"},
		{PlaylistID: 0, TrackURI: "b"},
		{PlaylistID: 1, TrackURI: "a"},
	}
}

func TestFromRecords_Scenario(t *testing.T) {
	t.Parallel()

	rows := scenarioRows()
	idx := trackindex.Build(playlist.URIs(rows))

	m, err := FromRecords(rows, idx, 2)
	if err != nil {
		t.Fatalf("FromRecords() error = %v", err)
	}

	if p, tr := m.Shape(); p != 2 || tr != 2 {
		t.Fatalf("Shape() = (%d, %d), want (2, 2)", p, tr)
	}

	tests := []struct {
		p, t int
		want float32
	}{
		{0, 0, 1},
		{0, 1, 1},
		{1, 0, 1},
		{1, 1, 0},
	}
	for _, tt := range tests {
		if got := m.At(tt.p, tt.t); got != tt.want {
			t.Errorf("At(%d, %d) = %v, want %v", tt.p, tt.t, got, tt.want)
		}
	}
	if m.NNZ() != 3 {
		t.Errorf("NNZ() = %d, want 3", m.NNZ())
	}
}

func TestFromRecords_Idempotent(t *testing.T) {
	t.Parallel()

	rows := []playlist.RawInteractionRecord{
		{PlaylistID: 0, TrackURI: "a"},
		{PlaylistID: 0, TrackURI: "c"},
		{PlaylistID: 2, TrackURI: "b"},
		{PlaylistID: 3, TrackURI: "a"},
		{PlaylistID: 3, TrackURI: "d"},
	}
	idx := trackindex.Build(playlist.URIs(rows))

	want, err := FromRecords(rows, idx, 4)
	if err != nil {
		t.Fatalf("FromRecords() error = %v", err)
	}

	rng := rand.New(rand.NewSource(3)) //nolint:gosec // G404: test data
	for trial := 0; trial < 10; trial++ {
		dup := append([]playlist.RawInteractionRecord(nil), rows...)
		for i := 0; i < 20; i++ {
			dup = append(dup, rows[rng.Intn(len(rows))])
		}
		rng.Shuffle(len(dup), func(i, j int) { dup[i], dup[j] = dup[j], dup[i] })

		got, err := FromRecords(dup, idx, 4)
		if err != nil {
			t.Fatalf("trial %d: FromRecords() error = %v", trial, err)
		}
		assertSameCells(t, got, want)
	}
}

func TestFromRecords_IgnoresChallengeRows(t *testing.T) {
	t.Parallel()

	rows := []playlist.RawInteractionRecord{
		{PlaylistID: 0, TrackURI: "a"},
		{PlaylistID: 1000002, TrackURI: "b", NumHoldouts: playlist.Holdouts(10)},
	}
	idx := trackindex.Build(playlist.URIs(rows))

	m, err := FromRecords(rows, idx, 1)
	if err != nil {
		t.Fatalf("FromRecords() error = %v", err)
	}
	if m.NNZ() != 1 {
		t.Errorf("NNZ() = %d, want 1", m.NNZ())
	}
	if m.NumTracks() != 2 {
		t.Errorf("NumTracks() = %d, want 2 (union universe)", m.NumTracks())
	}
}

func TestFromRecords_Errors(t *testing.T) {
	t.Parallel()

	rows := scenarioRows()

	tests := []struct {
		name         string
		idx          *trackindex.Index
		numPlaylists int
		want         error
	}{
		{
			name:         "playlist out of range",
			idx:          trackindex.Build([]string{"a", "b"}),
			numPlaylists: 1,
			want:         ErrIndexOutOfRange,
		},
		{
			name:         "unknown track",
			idx:          trackindex.Build([]string{"a"}),
			numPlaylists: 2,
			want:         trackindex.ErrUnknownTrack,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := FromRecords(rows, tt.idx, tt.numPlaylists)
			if !errors.Is(err, tt.want) {
				t.Errorf("FromRecords() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestBuilder_Set(t *testing.T) {
	t.Parallel()

	b, err := NewBuilder(3, 5)
	if err != nil {
		t.Fatalf("NewBuilder() error = %v", err)
	}

	tests := []struct {
		name    string
		p, t    int
		wantErr bool
	}{
		{"origin", 0, 0, false},
		{"corner", 2, 4, false},
		{"repeat", 2, 4, false},
		{"row too large", 3, 0, true},
		{"column too large", 0, 5, true},
		{"negative row", -1, 0, true},
		{"negative column", 0, -1, true},
	}
	for _, tt := range tests {
		err := b.Set(tt.p, tt.t)
		if (err != nil) != tt.wantErr {
			t.Errorf("%s: Set(%d, %d) error = %v, wantErr %v", tt.name, tt.p, tt.t, err, tt.wantErr)
		}
		if err != nil {
			var oerr *IndexOutOfRangeError
			if !errors.As(err, &oerr) || oerr.NumPlaylists != 3 || oerr.NumTracks != 5 {
				t.Errorf("%s: error = %#v, want IndexOutOfRangeError with shape 3x5", tt.name, err)
			}
		}
	}
	if b.Len() != 2 {
		t.Errorf("Len() = %d, want 2", b.Len())
	}
}

func TestNewBuilder_InvalidShape(t *testing.T) {
	t.Parallel()

	for _, dims := range [][2]int{{0, 1}, {1, 0}, {-1, 5}} {
		if _, err := NewBuilder(dims[0], dims[1]); err == nil {
			t.Errorf("NewBuilder(%d, %d) error = nil, want error", dims[0], dims[1])
		}
	}
}

func TestMatrix_Accessors(t *testing.T) {
	t.Parallel()

	b, _ := NewBuilder(4, 10)
	for _, c := range []Cell{{3, 9}, {0, 4}, {3, 1}, {0, 2}, {0, 4}} {
		if err := b.Set(c.Playlist, c.Track); err != nil {
			t.Fatalf("Set(%v) error = %v", c, err)
		}
	}
	m := b.Build()

	nz := m.NonZeros()
	want := []Cell{{0, 2}, {0, 4}, {3, 1}, {3, 9}}
	if len(nz) != len(want) {
		t.Fatalf("NonZeros() len = %d, want %d", len(nz), len(want))
	}
	for i := range want {
		if nz[i] != want[i] {
			t.Errorf("NonZeros()[%d] = %v, want %v", i, nz[i], want[i])
		}
	}

	if row := m.Row(3); len(row) != 2 || row[0] != 1 || row[1] != 9 {
		t.Errorf("Row(3) = %v, want [1 9]", row)
	}
	if m.RowNNZ(1) != 0 {
		t.Errorf("RowNNZ(1) = %d, want 0", m.RowNNZ(1))
	}
	if ps := m.Playlists(); len(ps) != 2 || ps[0] != 0 || ps[1] != 3 {
		t.Errorf("Playlists() = %v, want [0 3]", ps)
	}
	if m.Contains(4, 0) || m.Contains(0, 10) {
		t.Error("Contains() true for out-of-range cell")
	}
	if got := m.Density(); got != 0.1 {
		t.Errorf("Density() = %v, want 0.1", got)
	}

	// Returned slices are copies.
	nz[0] = Cell{1, 1}
	if m.Contains(1, 1) {
		t.Error("mutating NonZeros() result changed the matrix")
	}
}

func TestMinPlaylists(t *testing.T) {
	t.Parallel()

	rows := []playlist.RawInteractionRecord{
		{PlaylistID: 4},
		{PlaylistID: 2},
		{PlaylistID: 999, NumHoldouts: playlist.Holdouts(1)},
	}
	if got := MinPlaylists(rows); got != 5 {
		t.Errorf("MinPlaylists() = %d, want 5", got)
	}
	if got := MinPlaylists(nil); got != 0 {
		t.Errorf("MinPlaylists(nil) = %d, want 0", got)
	}
}

func assertSameCells(t *testing.T, got, want *Matrix) {
	t.Helper()
	if got.NNZ() != want.NNZ() {
		t.Fatalf("NNZ() = %d, want %d", got.NNZ(), want.NNZ())
	}
	g, w := got.NonZeros(), want.NonZeros()
	for i := range w {
		if g[i] != w[i] {
			t.Fatalf("cell %d = %v, want %v", i, g[i], w[i])
		}
	}
}

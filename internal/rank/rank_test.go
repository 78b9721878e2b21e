// Mixtape - Playlist Continuation Model Training
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mixtape

package rank

import (
	"context"
	"errors"
	"testing"
)

type mockPredictor struct {
	scores map[int]float64
	err    error
}

func (m *mockPredictor) Predict(_, track int) (float64, error) {
	if m.err != nil {
		return 0, m.err
	}
	return m.scores[track], nil
}

func TestRank(t *testing.T) {
	t.Parallel()

	pred := &mockPredictor{scores: map[int]float64{0: 0.5, 1: 0.9, 2: 0.5, 3: 0.1, 4: 0.9}}

	tests := []struct {
		name       string
		candidates []int
		k          int
		want       []int
	}{
		{"all with ties", []int{3, 2, 1, 0, 4}, 0, []int{1, 4, 0, 2, 3}},
		{"truncated", []int{0, 1, 2, 3, 4}, 2, []int{1, 4}},
		{"k larger than candidates", []int{3, 0}, 10, []int{0, 3}},
		{"empty", nil, 5, []int{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := Rank(context.Background(), pred, 0, tt.candidates, tt.k)
			if err != nil {
				t.Fatalf("Rank() error = %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("len(Rank()) = %d, want %d", len(got), len(tt.want))
			}
			for i := range tt.want {
				if got[i].Track != tt.want[i] {
					t.Errorf("Rank()[%d].Track = %d, want %d", i, got[i].Track, tt.want[i])
				}
			}
		})
	}
}

func TestRank_Errors(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	if _, err := Rank(context.Background(), &mockPredictor{err: boom}, 0, []int{1}, 0); !errors.Is(err, boom) {
		t.Errorf("Rank() error = %v, want wrapped predictor error", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Rank(ctx, &mockPredictor{}, 0, []int{1}, 0); !errors.Is(err, context.Canceled) {
		t.Errorf("Rank() error = %v, want context.Canceled", err)
	}
}

func TestCandidates(t *testing.T) {
	t.Parallel()

	got := Candidates(6, map[int]struct{}{1: {}, 4: {}})
	want := []int{0, 2, 3, 5}
	if len(got) != len(want) {
		t.Fatalf("Candidates() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Candidates()[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}

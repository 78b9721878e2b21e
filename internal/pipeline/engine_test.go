// Mixtape - Playlist Continuation Model Training
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mixtape

package pipeline

import (
	"bytes"
	"context"
	"errors"
	"math"
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/mixtape/internal/gmf"
	"github.com/tomtom215/mixtape/internal/interaction"
	"github.com/tomtom215/mixtape/internal/logging"
	"github.com/tomtom215/mixtape/internal/playlist"
	"github.com/tomtom215/mixtape/internal/sampler"
)

type mockProvider struct {
	playlists []playlist.Playlist
	err       error
}

func (m *mockProvider) LoadPlaylists(context.Context) ([]playlist.Playlist, error) {
	return m.playlists, m.err
}

// fakeScorer scores lower track codes higher and records Train calls.
type fakeScorer struct {
	mu        sync.Mutex
	calls     int
	instances []int
	positives []int
	err       error
}

func (f *fakeScorer) Predict(_, track int) (float64, error) {
	return 1 / float64(1+track), nil
}

func (f *fakeScorer) Train(_ context.Context, instances []sampler.Instance) (gmf.LossMetrics, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return gmf.LossMetrics{}, f.err
	}
	f.calls++
	pos := 0
	for _, in := range instances {
		if in.Label == sampler.Positive {
			pos++
		}
	}
	f.instances = append(f.instances, len(instances))
	f.positives = append(f.positives, pos)
	return gmf.LossMetrics{Loss: 0.5, Accuracy: 0.75, Instances: len(instances)}, nil
}

func tracks(names ...string) []playlist.TrackEntry {
	out := make([]playlist.TrackEntry, len(names))
	for i, n := range names {
		out[i] = playlist.TrackEntry{URI: "spotify:track:" + n, ArtistName: "artist " + n, TrackName: "track " + n}
	}
	return out
}

// fixture: three training playlists over tracks a..e, one challenge
// playlist sharing pid 1 and one challenge playlist (pid 7) absent from
// training.
func fixture() []playlist.Playlist {
	return []playlist.Playlist{
		{ID: 0, Name: "zero", Tracks: tracks("a", "b", "c")},
		{ID: 1, Name: "one", Tracks: tracks("c", "d")},
		{ID: 2, Name: "two", Tracks: tracks("a", "e")},
		{ID: 1, Name: "one seeds", Tracks: tracks("e"), NumHoldouts: playlist.Holdouts(3)},
		{ID: 7, Name: "seven", Tracks: tracks("a"), NumHoldouts: playlist.Holdouts(5)},
	}
}

func newTestEngine(t *testing.T, cfg Config, playlists []playlist.Playlist) *Engine {
	t.Helper()
	e, err := NewEngine(cfg, &mockProvider{playlists: playlists}, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	return e
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Epochs = 3
	cfg.Sampler.NumNegatives = 2
	cfg.Sampler.Workers = 2
	return cfg
}

func TestNewEngine(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		cfg      Config
		provider DataProvider
		wantErr  bool
	}{
		{"zero config takes defaults", Config{}, &mockProvider{}, false},
		{"nil provider", Config{}, nil, true},
		{"negative playlists", Config{NumPlaylists: -1}, &mockProvider{}, true},
		{"negative epochs", Config{Epochs: -1}, &mockProvider{}, true},
		{"bad sampler", Config{Sampler: sampler.Config{NumNegatives: -1, MaxRetries: 1, Workers: 1}}, &mockProvider{}, true},
		{"partial sampler", Config{Sampler: sampler.Config{NumNegatives: 2}}, &mockProvider{}, false},
		{"partial model", Config{Model: gmf.Config{LatentDim: 16}}, &mockProvider{}, false},
		{"bad model", Config{Model: gmf.Config{LearningRate: -1}}, &mockProvider{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			e, err := NewEngine(tt.cfg, tt.provider, zerolog.Nop())
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewEngine() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && e.Config().Epochs != 15 {
				t.Errorf("Config().Epochs = %d, want 15", e.Config().Epochs)
			}
		})
	}
}

func TestNewEngine_PartialConfigDefaults(t *testing.T) {
	t.Parallel()

	cfg := Config{
		Sampler: sampler.Config{NumNegatives: 2},
		Model:   gmf.Config{LatentDim: 16, ValidationSplit: 0.1},
	}
	e := newTestEngine(t, cfg, fixture())

	got := e.Config()
	wantSampler := sampler.DefaultConfig()
	wantSampler.NumNegatives = 2
	if got.Sampler != wantSampler {
		t.Errorf("Sampler = %+v, want %+v", got.Sampler, wantSampler)
	}
	wantModel := gmf.DefaultConfig()
	wantModel.LatentDim = 16
	wantModel.ValidationSplit = 0.1
	if got.Model != wantModel {
		t.Errorf("Model = %+v, want %+v", got.Model, wantModel)
	}

	ds, err := e.Prepare(context.Background())
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	if _, err := e.NewModel(ds); err != nil {
		t.Errorf("NewModel() error = %v", err)
	}
}

func TestPrepare(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, testConfig(), fixture())
	ds, err := e.Prepare(context.Background())
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}

	want := Stats{
		Playlists:          5,
		ChallengePlaylists: 2,
		MatrixRows:         3,
		TrainingRows:       7,
		ChallengeRows:      2,
		Tracks:             5,
		Nonzeros:           7,
		Density:            7.0 / 15.0,
	}
	if got := ds.Stats(); got != want {
		t.Errorf("Stats() = %+v, want %+v", got, want)
	}

	code, err := ds.Index.CodeOf("spotify:track:e")
	if err != nil {
		t.Fatalf("CodeOf(e) error = %v", err)
	}
	if code != 4 {
		t.Errorf("CodeOf(e) = %d, want 4", code)
	}
	if ds.Matrix.Contains(1, code) {
		t.Error("challenge seed (1, e) is in the training matrix")
	}
	if !ds.Matrix.Contains(2, code) {
		t.Error("training cell (2, e) missing from the matrix")
	}
}

func TestPrepare_Errors(t *testing.T) {
	t.Parallel()

	malformed := fixture()
	malformed[0].Tracks[1].URI = ""

	onlyChallenge := []playlist.Playlist{
		{ID: 0, Tracks: tracks("a"), NumHoldouts: playlist.Holdouts(1)},
	}

	loadErr := errors.New("disk on fire")

	tests := []struct {
		name      string
		cfg       func(c *Config)
		provider  *mockProvider
		wantIs    error
		wantStats *Stats
	}{
		{
			name:     "malformed fails",
			provider: &mockProvider{playlists: malformed},
			wantIs:   playlist.ErrMalformedRecord,
		},
		{
			name:     "malformed skipped",
			cfg:      func(c *Config) { c.SkipMalformed = true },
			provider: &mockProvider{playlists: malformed},
			wantStats: &Stats{
				Playlists: 5, ChallengePlaylists: 2, MatrixRows: 3,
				TrainingRows: 6, ChallengeRows: 2, Malformed: 1,
				Tracks: 4, Nonzeros: 6, Density: 0.5,
			},
		},
		{
			name:     "no training rows",
			provider: &mockProvider{playlists: onlyChallenge},
			wantIs:   ErrNoTrainingData,
		},
		{
			name:     "playlist dimension too small",
			cfg:      func(c *Config) { c.NumPlaylists = 2 },
			provider: &mockProvider{playlists: fixture()},
			wantIs:   interaction.ErrIndexOutOfRange,
		},
		{
			name:     "provider error",
			provider: &mockProvider{err: loadErr},
			wantIs:   loadErr,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := testConfig()
			if tt.cfg != nil {
				tt.cfg(&cfg)
			}
			e, err := NewEngine(cfg, tt.provider, zerolog.Nop())
			if err != nil {
				t.Fatalf("NewEngine() error = %v", err)
			}

			ds, err := e.Prepare(context.Background())
			if tt.wantIs != nil {
				if !errors.Is(err, tt.wantIs) {
					t.Fatalf("Prepare() error = %v, want %v", err, tt.wantIs)
				}
				return
			}
			if err != nil {
				t.Fatalf("Prepare() error = %v", err)
			}
			if got := ds.Stats(); got != *tt.wantStats {
				t.Errorf("Stats() = %+v, want %+v", got, *tt.wantStats)
			}
		})
	}
}

func TestTrain(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, testConfig(), fixture())
	ds, err := e.Prepare(context.Background())
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}

	scorer := &fakeScorer{}
	ctx := logging.ContextWithRunID(context.Background(), "run-123")
	report, err := e.Train(ctx, ds, scorer)
	if err != nil {
		t.Fatalf("Train() error = %v", err)
	}

	if report.RunID != "run-123" {
		t.Errorf("RunID = %q, want run-123", report.RunID)
	}
	if len(report.Epochs) != 3 || scorer.calls != 3 {
		t.Fatalf("epochs = %d, scorer calls = %d, want 3 and 3", len(report.Epochs), scorer.calls)
	}
	for i, ep := range report.Epochs {
		if ep.Epoch != i+1 {
			t.Errorf("Epochs[%d].Epoch = %d, want %d", i, ep.Epoch, i+1)
		}
		if ep.Positives != 7 || ep.Negatives != 14 || ep.Skipped != 0 {
			t.Errorf("Epochs[%d] = %+v, want 7 positives, 14 negatives, 0 skipped", i, ep)
		}
		if scorer.instances[i] != 21 || scorer.positives[i] != 7 {
			t.Errorf("scorer saw %d instances with %d positives, want 21 and 7", scorer.instances[i], scorer.positives[i])
		}
	}
	final, ok := report.Final()
	if !ok || final.Metrics.Loss != 0.5 {
		t.Errorf("Final() = %+v, %v, want loss 0.5", final, ok)
	}
}

func TestTrain_GeneratesRunID(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, testConfig(), fixture())
	ds, err := e.Prepare(context.Background())
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	report, err := e.Train(context.Background(), ds, &fakeScorer{})
	if err != nil {
		t.Fatalf("Train() error = %v", err)
	}
	if report.RunID == "" {
		t.Error("RunID is empty")
	}
}

func TestTrain_Errors(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, testConfig(), fixture())
	ds, err := e.Prepare(context.Background())
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		report, err := e.Train(ctx, ds, &fakeScorer{})
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("Train() error = %v, want context.Canceled", err)
		}
		if len(report.Epochs) != 0 {
			t.Errorf("completed epochs = %d, want 0", len(report.Epochs))
		}
	})

	t.Run("scorer failure", func(t *testing.T) {
		boom := errors.New("boom")
		_, err := e.Train(context.Background(), ds, &fakeScorer{err: boom})
		if !errors.Is(err, boom) {
			t.Fatalf("Train() error = %v, want %v", err, boom)
		}
		if !strings.Contains(err.Error(), "train epoch 1") {
			t.Errorf("Train() error = %q, want it to name epoch 1", err)
		}
	})

	t.Run("in progress", func(t *testing.T) {
		e.trainMu.Lock()
		defer e.trainMu.Unlock()
		if _, err := e.Train(context.Background(), ds, &fakeScorer{}); !errors.Is(err, ErrTrainingInProgress) {
			t.Fatalf("Train() error = %v, want ErrTrainingInProgress", err)
		}
	})
}

func TestTrain_GMF(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.Model.LatentDim = 4
	cfg.Model.BatchSize = 4
	e := newTestEngine(t, cfg, fixture())
	ds, err := e.Prepare(context.Background())
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	model, err := e.NewModel(ds)
	if err != nil {
		t.Fatalf("NewModel() error = %v", err)
	}
	report, err := e.Train(context.Background(), ds, model)
	if err != nil {
		t.Fatalf("Train() error = %v", err)
	}
	if model.Epochs() != 3 {
		t.Errorf("model.Epochs() = %d, want 3", model.Epochs())
	}
	for _, ep := range report.Epochs {
		if math.IsNaN(ep.Metrics.Loss) || ep.Metrics.Loss <= 0 {
			t.Errorf("epoch %d loss = %v, want a positive finite value", ep.Epoch, ep.Metrics.Loss)
		}
	}

	res, err := e.Recommend(context.Background(), ds, model, 10)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	for _, rec := range res.Recommendations {
		for _, tr := range rec.Tracks {
			if tr.Score < 0 || tr.Score > 1 {
				t.Errorf("score %v outside [0, 1]", tr.Score)
			}
		}
	}
}

func TestRecommend(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		includeKnown bool
		k            int
		wantTracks   []string
	}{
		{"excludes known tracks", false, 10, []string{"a", "b"}},
		{"truncates to k", false, 1, []string{"a"}},
		{"includes known tracks", true, 3, []string{"a", "b", "c"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := testConfig()
			cfg.IncludeKnown = tt.includeKnown
			e := newTestEngine(t, cfg, fixture())
			ds, err := e.Prepare(context.Background())
			if err != nil {
				t.Fatalf("Prepare() error = %v", err)
			}

			res, err := e.Recommend(context.Background(), ds, &fakeScorer{}, tt.k)
			if err != nil {
				t.Fatalf("Recommend() error = %v", err)
			}
			if !reflect.DeepEqual(res.Skipped, []int{7}) {
				t.Errorf("Skipped = %v, want [7]", res.Skipped)
			}
			if len(res.Recommendations) != 1 || res.Recommendations[0].PlaylistID != 1 {
				t.Fatalf("Recommendations = %+v, want one for pid 1", res.Recommendations)
			}

			var got []string
			for _, tr := range res.Recommendations[0].Tracks {
				got = append(got, strings.TrimPrefix(tr.URI, "spotify:track:"))
				if want := 1 / float64(1+tr.Code); tr.Score != want {
					t.Errorf("score of %s = %v, want %v", tr.URI, tr.Score, want)
				}
			}
			if !reflect.DeepEqual(got, tt.wantTracks) {
				t.Errorf("tracks = %v, want %v", got, tt.wantTracks)
			}
		})
	}
}

func TestRecommend_SeedlessChallenge(t *testing.T) {
	t.Parallel()

	playlists := []playlist.Playlist{
		{ID: 0, Tracks: tracks("a", "b")},
		{ID: 1, Tracks: tracks("c")},
		{ID: 1, Name: "title only", NumHoldouts: playlist.Holdouts(5)},
		{ID: 9, Name: "unknown", NumHoldouts: playlist.Holdouts(5)},
	}

	cfg := testConfig()
	cfg.Sampler.NumNegatives = 1
	e := newTestEngine(t, cfg, playlists)
	ds, err := e.Prepare(context.Background())
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	if !reflect.DeepEqual(ds.ChallengeIDs, []int{1, 9}) {
		t.Fatalf("ChallengeIDs = %v, want [1 9]", ds.ChallengeIDs)
	}
	if got := ds.Stats().ChallengeRows; got != 0 {
		t.Errorf("ChallengeRows = %d, want 0", got)
	}

	res, err := e.Recommend(context.Background(), ds, &fakeScorer{}, 10)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if !reflect.DeepEqual(res.Skipped, []int{9}) {
		t.Errorf("Skipped = %v, want [9]", res.Skipped)
	}
	if len(res.Recommendations) != 1 || res.Recommendations[0].PlaylistID != 1 {
		t.Fatalf("Recommendations = %+v, want one for pid 1", res.Recommendations)
	}

	var got []string
	for _, tr := range res.Recommendations[0].Tracks {
		got = append(got, strings.TrimPrefix(tr.URI, "spotify:track:"))
	}
	if want := []string{"a", "b"}; !reflect.DeepEqual(got, want) {
		t.Errorf("tracks = %v, want %v", got, want)
	}
}

func TestRecommend_DefaultK(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.K = 1
	e := newTestEngine(t, cfg, fixture())
	ds, err := e.Prepare(context.Background())
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	res, err := e.Recommend(context.Background(), ds, &fakeScorer{}, 0)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if got := len(res.Recommendations[0].Tracks); got != 1 {
		t.Errorf("len(Tracks) = %d, want 1", got)
	}
}

func TestWriteJSON(t *testing.T) {
	t.Parallel()

	res := &RecommendResult{
		Recommendations: []Recommendation{{
			PlaylistID: 1,
			Tracks:     []ScoredTrack{{URI: "spotify:track:a", Code: 0, Score: 0.9}},
		}},
		Skipped: []int{7},
	}

	var buf bytes.Buffer
	if err := WriteJSON(&buf, res); err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}
	if !strings.Contains(buf.String(), `"track_uri": "spotify:track:a"`) {
		t.Errorf("output %s missing indented track_uri", buf.String())
	}

	var decoded RecommendResult
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if !reflect.DeepEqual(&decoded, res) {
		t.Errorf("decoded = %+v, want %+v", decoded, *res)
	}
}

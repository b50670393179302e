package rigplan

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.viam.com/rdk/logging"

	rigeval "github.com/calibsight/rigplan/rig_eval"
)

// fakeClock drives the live rotation deterministically in tests.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func testStation(t *testing.T, cfg StationConfig, clock rigeval.Clock) *Station {
	t.Helper()
	s, err := NewStation(cfg, clock, logging.NewTestLogger(t))
	if err != nil {
		t.Fatalf("NewStation: %v", err)
	}
	return s
}

func TestNewStation_RequiresSensors(t *testing.T) {
	_, err := NewStation(StationConfig{}, nil, logging.NewTestLogger(t))
	if !errors.Is(err, rigeval.ErrEmptyRig) {
		t.Fatalf("got %v, want ErrEmptyRig", err)
	}
}

func TestNewStation_AppliesDefaults(t *testing.T) {
	cfg := StationConfig{Core: rigeval.DefaultConfig()}
	cfg.Core.Rig.GoodVisibleThreshold = 0
	s := testStation(t, cfg, nil)

	if got, want := s.cfg.Core.Rig.GoodVisibleThreshold, 5; got != want {
		t.Errorf("threshold: got %d, want %d", got, want)
	}
	if got, want := s.cfg.Interval, defaultWatchInterval; got != want {
		t.Errorf("interval: got %v, want %v", got, want)
	}
}

func TestEvaluateOnce_StoresReport(t *testing.T) {
	s := testStation(t, StationConfig{Core: rigeval.DefaultConfig()}, nil)

	report, err := s.EvaluateOnce(context.Background())
	if err != nil {
		t.Fatalf("EvaluateOnce: %v", err)
	}
	if got, want := report.Objective, -32.129072605281; math.Abs(got-want) > 1e-5 {
		t.Errorf("objective: got %f, want %f", got, want)
	}

	state := s.State()
	if state.LastReport == nil {
		t.Fatal("LastReport not stored")
	}
	if got, want := len(state.LastReport.CoveredFaces), 20; got != want {
		t.Errorf("covered faces: got %d, want %d", got, want)
	}
}

func TestEvaluateOnce_CancelledContext(t *testing.T) {
	s := testStation(t, StationConfig{Core: rigeval.DefaultConfig()}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.EvaluateOnce(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("got %v, want context.Canceled", err)
	}
}

func TestEvaluateOnce_LiveRotationFollowsClock(t *testing.T) {
	clock := newFakeClock()
	cfg := StationConfig{Core: rigeval.DefaultConfig()}
	cfg.Core.Visibility.Mode = rigeval.ModeCone
	cfg.Core.Rig.LiveRotation = true
	s := testStation(t, cfg, clock)

	clock.Advance(time.Second)
	report, err := s.EvaluateOnce(context.Background())
	if err != nil {
		t.Fatalf("EvaluateOnce: %v", err)
	}

	// After one second of spin the +X sensor's cone sweeps onto these faces.
	want := []int{0, 6, 7, 10, 11, 14, 15, 16}
	if diff := cmp.Diff(want, report.Sensors[0].VisibleFaces()); diff != "" {
		t.Errorf("sensor 1 visible faces after 1s (-want +got):\n%s", diff)
	}
}

func TestState_CopyDoesNotAliasSeries(t *testing.T) {
	s := testStation(t, StationConfig{Core: rigeval.DefaultConfig()}, nil)
	s.mu.Lock()
	s.state.Series = []SeriesPoint{{Tick: 1, Sensor: 0, VisibleCount: 6}}
	s.mu.Unlock()

	got := s.State()
	got.Series[0].VisibleCount = 99

	if s.State().Series[0].VisibleCount != 6 {
		t.Error("State returned an aliased series")
	}
}

func TestSearchViewpoint_CachesInMemory(t *testing.T) {
	cfg := StationConfig{Core: rigeval.DefaultConfig(), Seed: 7}
	cfg.Core.Search.Iterations = 5
	s := testStation(t, cfg, nil)

	first, err := s.SearchViewpoint(context.Background())
	if err != nil {
		t.Fatalf("SearchViewpoint: %v", err)
	}

	// A second call must not re-run the search: break the search config and
	// confirm the cached candidate still comes back.
	s.cfg.Core.Search.Step = -1
	second, err := s.SearchViewpoint(context.Background())
	if err != nil {
		t.Fatalf("SearchViewpoint (cached): %v", err)
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("cached result differs (-first +second):\n%s", diff)
	}
}

func TestSearchViewpoint_DiskCacheRoundTrip(t *testing.T) {
	dir := t.TempDir()
	cfg := StationConfig{Core: rigeval.DefaultConfig(), HistoryDir: dir, Seed: 7}
	cfg.Core.Search.Iterations = 5

	s1 := testStation(t, cfg, nil)
	first, err := s1.SearchViewpoint(context.Background())
	if err != nil {
		t.Fatalf("SearchViewpoint: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, viewpointCacheFile)); err != nil {
		t.Fatalf("cache file not written: %v", err)
	}

	// A fresh station with the same history dir reuses the result without
	// searching.
	cfg.Core.Search.Step = -1
	s2 := testStation(t, cfg, nil)
	second, err := s2.SearchViewpoint(context.Background())
	if err != nil {
		t.Fatalf("SearchViewpoint (disk cache): %v", err)
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("disk cache result differs (-first +second):\n%s", diff)
	}
}

func TestSearchViewpoint_CorruptCacheIsIgnored(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, viewpointCacheFile)
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := StationConfig{Core: rigeval.DefaultConfig(), HistoryDir: dir, Seed: 7}
	cfg.Core.Search.Iterations = 5
	s := testStation(t, cfg, nil)

	best, err := s.SearchViewpoint(context.Background())
	if err != nil {
		t.Fatalf("SearchViewpoint: %v", err)
	}
	if best.VisibleCount < 6 {
		t.Errorf("got %d visible faces, want at least the start point's six", best.VisibleCount)
	}

	// The corrupt file is replaced by the fresh result.
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read rewritten cache: %v", err)
	}
	var cached rigeval.Candidate
	if err := json.Unmarshal(data, &cached); err != nil {
		t.Fatalf("rewritten cache is not valid JSON: %v", err)
	}
	if diff := cmp.Diff(best, cached); diff != "" {
		t.Errorf("cache content differs from result (-want +got):\n%s", diff)
	}
}

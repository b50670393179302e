package rigplan

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	rigeval "github.com/calibsight/rigplan/rig_eval"
)

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestWatch_TicksAndWritesArtifacts(t *testing.T) {
	dir := t.TempDir()
	cfg := StationConfig{
		Core:        rigeval.DefaultConfig(),
		SnapshotCSV: filepath.Join(dir, "snapshot.csv"),
		SeriesCSV:   filepath.Join(dir, "series.csv"),
		ChartPNG:    filepath.Join(dir, "chart.png"),
		CloudPath:   filepath.Join(dir, "coverage.pcd"),
		Interval:    2 * time.Millisecond,
	}
	s := testStation(t, cfg, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Watch(ctx, s) }()

	waitFor(t, 5*time.Second, func() bool { return s.State().TicksCompleted >= 3 })
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Watch: %v", err)
	}

	state := s.State()
	if got, want := len(state.Series), state.TicksCompleted*6; got != want {
		t.Errorf("series length: got %d, want %d (6 sensors per tick)", got, want)
	}
	for _, name := range []string{"snapshot.csv", "series.csv", "chart.png", "coverage.pcd"} {
		fi, err := os.Stat(filepath.Join(dir, name))
		if err != nil {
			t.Errorf("artifact %s: %v", name, err)
			continue
		}
		if fi.Size() == 0 {
			t.Errorf("artifact %s is empty", name)
		}
	}
}

func TestWatch_SkipsTicksWhileBusy(t *testing.T) {
	cfg := StationConfig{Core: rigeval.DefaultConfig(), Interval: 2 * time.Millisecond}
	s := testStation(t, cfg, nil)

	// Hold the single-flight lock: every tick must be skipped, not queued.
	s.flight.Lock()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Watch(ctx, s) }()

	time.Sleep(50 * time.Millisecond)
	if got := s.State().TicksCompleted; got != 0 {
		t.Errorf("got %d ticks while the lock was held, want 0", got)
	}

	s.flight.Unlock()
	waitFor(t, 5*time.Second, func() bool { return s.State().TicksCompleted >= 1 })

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Watch: %v", err)
	}
}

func TestWatch_KeepsCachedViewpoint(t *testing.T) {
	cfg := StationConfig{Core: rigeval.DefaultConfig(), Interval: 2 * time.Millisecond, Seed: 7}
	cfg.Core.Search.Iterations = 3
	s := testStation(t, cfg, nil)

	if _, err := s.SearchViewpoint(context.Background()); err != nil {
		t.Fatalf("SearchViewpoint: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Watch(ctx, s) }()
	waitFor(t, 5*time.Second, func() bool { return s.State().TicksCompleted >= 1 })
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Watch: %v", err)
	}

	if s.State().BestViewpoint == nil {
		t.Error("watch session dropped the cached viewpoint")
	}
}

func TestSeriesFromReport_Flattens(t *testing.T) {
	report := defaultRigReport(t)

	pts := seriesFromReport(report, 3, 1500*time.Millisecond)
	if got, want := len(pts), 6; got != want {
		t.Fatalf("got %d points, want %d", got, want)
	}
	for i, pt := range pts {
		if pt.Tick != 3 {
			t.Errorf("point %d: tick %d, want 3", i, pt.Tick)
		}
		if pt.Elapsed != 1.5 {
			t.Errorf("point %d: elapsed %f, want 1.5", i, pt.Elapsed)
		}
		if pt.Sensor != i {
			t.Errorf("point %d: sensor %d, want %d", i, pt.Sensor, i)
		}
		if pt.VisibleCount != 6 {
			t.Errorf("point %d: visible %d, want 6", i, pt.VisibleCount)
		}
	}
}

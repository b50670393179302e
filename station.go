package rigplan

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.viam.com/rdk/logging"

	rigeval "github.com/calibsight/rigplan/rig_eval"
)

// defaultWatchInterval is the snapshot cadence when none is configured.
const defaultWatchInterval = 3 * time.Second

// viewpointCacheFile is the name of the persisted search result in HistoryDir.
const viewpointCacheFile = "best_viewpoint.json"

// StationConfig configures an evaluation station: the rig under test plus
// the output artifacts it maintains.
type StationConfig struct {
	// Core holds the visibility, rig, and search configuration.
	Core rigeval.Config

	// SnapshotCSV is the per-pair visibility report, rewritten in full on
	// every evaluation. Empty disables it.
	SnapshotCSV string

	// SeriesCSV, when set, accumulates one row per sensor per watch tick.
	SeriesCSV string

	// ChartPNG, when set, receives a visible-count chart of the session.
	ChartPNG string

	// CloudPath, when set, receives the coverage point cloud as PCD.
	CloudPath string

	// HistoryDir, when set, is a directory for persisting viewpoint search
	// results to disk. If empty, results are cached in memory only.
	HistoryDir string

	// Interval is the watch cadence; zero means defaultWatchInterval.
	Interval time.Duration

	// Seed fixes the viewpoint search's perturbation stream. Zero keeps the
	// search's own default.
	Seed int64
}

// StationState tracks the state of the current evaluation session.
type StationState struct {
	// Last full rig evaluation.
	LastReport *rigeval.RigReport

	// Per-sensor series accumulated across watch ticks.
	Series []SeriesPoint

	// Watch ticks completed this session.
	TicksCompleted int

	// Best viewpoint found by search, once run.
	BestViewpoint *rigeval.Candidate
}

// Station owns one rig evaluation session: the mesh, the clock driving the
// live rotation, and all accumulated results.
type Station struct {
	logger logging.Logger
	cfg    StationConfig
	mesh   *rigeval.Mesh
	clock  rigeval.Clock
	start  time.Time

	// mu guards state; flight keeps watch ticks single-flight.
	mu     sync.Mutex
	flight sync.Mutex
	state  *StationState
}

// NewStation validates the configuration and prepares a station around the
// calibration mesh. A nil clock falls back to the wall clock.
func NewStation(cfg StationConfig, clock rigeval.Clock, logger logging.Logger) (*Station, error) {
	if len(cfg.Core.Rig.Positions) == 0 {
		return nil, fmt.Errorf("station: %w", rigeval.ErrEmptyRig)
	}
	if cfg.Core.Rig.GoodVisibleThreshold <= 0 {
		cfg.Core.Rig.GoodVisibleThreshold = rigeval.DefaultConfig().Rig.GoodVisibleThreshold
	}
	if cfg.Interval <= 0 {
		cfg.Interval = defaultWatchInterval
	}
	if clock == nil {
		clock = rigeval.SystemClock()
	}

	return &Station{
		logger: logger,
		cfg:    cfg,
		mesh:   rigeval.NewIcosahedron(),
		clock:  clock,
		start:  clock.Now(),
		state:  &StationState{},
	}, nil
}

// Mesh returns the calibration mesh under evaluation.
func (s *Station) Mesh() *rigeval.Mesh {
	return s.mesh
}

// State returns a copy of the session state.
func (s *Station) State() StationState {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := *s.state
	out.Series = append([]SeriesPoint(nil), s.state.Series...)
	return out
}

// elapsed is the spin time of the calibration object since station start.
func (s *Station) elapsed() time.Duration {
	return s.clock.Now().Sub(s.start)
}

// buildPoses resolves the current sensor poses: the static rotation table,
// or the shared live rotation when the object is spinning.
func (s *Station) buildPoses() ([]rigeval.SensorPose, error) {
	if s.cfg.Core.Rig.LiveRotation {
		return rigeval.LivePoses(s.cfg.Core.Rig, s.elapsed()), nil
	}
	return rigeval.StaticPoses(s.cfg.Core.Rig)
}

// EvaluateOnce evaluates the whole rig at the current object orientation and
// stores the report. Degenerate-geometry exclusions are logged and do not
// fail the evaluation.
func (s *Station) EvaluateOnce(ctx context.Context) (rigeval.RigReport, error) {
	if err := ctx.Err(); err != nil {
		return rigeval.RigReport{}, err
	}

	poses, err := s.buildPoses()
	if err != nil {
		return rigeval.RigReport{}, err
	}

	report, err := rigeval.EvaluateRig(s.mesh, poses, s.cfg.Core)
	if err != nil {
		if errors.Is(err, rigeval.ErrUnknownVisibilityMode) || errors.Is(err, rigeval.ErrSensorAtOrigin) {
			return rigeval.RigReport{}, err
		}
		s.logger.Warnf("Excluded degenerate geometry: %v", err)
	}

	s.mu.Lock()
	s.state.LastReport = &report
	s.mu.Unlock()

	return report, nil
}

// SearchViewpoint runs the beam search for the best single-sensor viewpoint,
// reusing a previously cached result when one exists.
func (s *Station) SearchViewpoint(ctx context.Context) (rigeval.Candidate, error) {
	if err := ctx.Err(); err != nil {
		return rigeval.Candidate{}, err
	}

	s.mu.Lock()
	cached := s.state.BestViewpoint
	s.mu.Unlock()
	if cached == nil {
		cached = s.loadCachedViewpoint()
	}
	if cached != nil {
		s.logger.Infof("Reusing cached viewpoint (%.3f, %.3f, %.3f) with %d visible faces",
			cached.Position.X, cached.Position.Y, cached.Position.Z, cached.VisibleCount)
		return *cached, nil
	}

	var rng *rand.Rand
	if s.cfg.Seed != 0 {
		rng = rand.New(rand.NewSource(s.cfg.Seed)) //nolint:gosec
	}

	s.logger.Info("Searching for best viewpoint (first run; result will be cached)")
	best, err := rigeval.SelectBestViewpoint(s.mesh, s.cfg.Core.Search.InitialPosition, s.cfg.Core.Search, rng)
	if err != nil {
		return rigeval.Candidate{}, err
	}

	s.mu.Lock()
	s.state.BestViewpoint = &best
	s.mu.Unlock()
	s.saveCachedViewpoint(best)

	return best, nil
}

// loadCachedViewpoint loads a search result from HistoryDir.
// Returns nil if HistoryDir is unset, the file doesn't exist, or parsing fails.
func (s *Station) loadCachedViewpoint() *rigeval.Candidate {
	if s.cfg.HistoryDir == "" {
		return nil
	}
	path := filepath.Join(s.cfg.HistoryDir, viewpointCacheFile)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	var c rigeval.Candidate
	if err := json.Unmarshal(data, &c); err != nil {
		s.logger.Warnf("Failed to parse cached viewpoint %s: %v", path, err)
		return nil
	}
	s.logger.Infof("Loaded cached viewpoint from %s", path)

	s.mu.Lock()
	s.state.BestViewpoint = &c
	s.mu.Unlock()
	return &c
}

// saveCachedViewpoint writes a search result to HistoryDir as JSON.
// No-op if HistoryDir is unset; logs a warning on write failure.
func (s *Station) saveCachedViewpoint(c rigeval.Candidate) {
	if s.cfg.HistoryDir == "" {
		return
	}
	if err := os.MkdirAll(s.cfg.HistoryDir, 0o755); err != nil {
		s.logger.Warnf("Failed to create history dir %s: %v", s.cfg.HistoryDir, err)
		return
	}
	path := filepath.Join(s.cfg.HistoryDir, viewpointCacheFile)
	data, err := json.Marshal(c)
	if err != nil {
		s.logger.Warnf("Failed to serialize viewpoint for %s: %v", path, err)
		return
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		s.logger.Warnf("Failed to write viewpoint to %s: %v", path, err)
		return
	}
	s.logger.Infof("Saved viewpoint to %s", path)
}

// resetSession clears per-session accumulations for a new watch run, keeping
// any cached viewpoint.
func (s *Station) resetSession() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = &StationState{
		BestViewpoint: s.state.BestViewpoint,
	}
}

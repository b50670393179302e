package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/calibsight/rigplan"
	"github.com/calibsight/rigplan/internal/rigconfig"
	rigeval "github.com/calibsight/rigplan/rig_eval"

	"go.viam.com/rdk/logging"
)

var steps = map[string]func(context.Context, *rigplan.Station) error{
	"evaluate": rigplan.Evaluate,
	"diagnose": rigplan.Diagnose,
	"snapshot": rigplan.Snapshot,
	"chart":    rigplan.Chart,
	"export":   rigplan.Export,
}

const validSteps = "run, watch, search, evaluate, diagnose, snapshot, chart, export"

func main() {
	configPath := flag.String("config", "", "path to station config JSON file (optional; default rig otherwise)")
	step := flag.String("step", "run", "step to run: "+validSteps)
	snapshotCSV := flag.String("csv", "", "snapshot CSV path (overrides config)")
	seriesCSV := flag.String("series", "", "series CSV path (overrides config)")
	chartPNG := flag.String("chart", "", "chart image path (overrides config)")
	cloudPath := flag.String("cloud", "", "coverage cloud PCD path (overrides config)")
	historyDir := flag.String("history-dir", "", "directory for cached viewpoint results (optional)")
	seed := flag.Int64("seed", 0, "viewpoint search seed (overrides config)")
	iterations := flag.Int("iterations", 0, "viewpoint search iteration budget (overrides config)")
	interval := flag.Duration("interval", 0, "watch interval (overrides config)")
	live := flag.Bool("live", false, "spin the calibration object during watch")
	flag.Parse()

	logger := logging.NewLogger("rigplan-cli")

	// Validate step name.
	switch *step {
	case "run", "watch", "search":
	default:
		if _, ok := steps[*step]; !ok {
			logger.Fatalf("unknown step %q; valid steps: %s", *step, validSteps)
		}
	}

	cfg := rigplan.StationConfig{Core: rigeval.DefaultConfig()}
	if *configPath != "" {
		def, err := rigconfig.Load(*configPath)
		if err != nil {
			logger.Fatal(err)
		}
		cfg, err = def.StationConfig()
		if err != nil {
			logger.Fatal(err)
		}
	}

	if *snapshotCSV != "" {
		cfg.SnapshotCSV = *snapshotCSV
	}
	if *seriesCSV != "" {
		cfg.SeriesCSV = *seriesCSV
	}
	if *chartPNG != "" {
		cfg.ChartPNG = *chartPNG
	}
	if *cloudPath != "" {
		cfg.CloudPath = *cloudPath
	}
	if *historyDir != "" {
		cfg.HistoryDir = *historyDir
	}
	if *seed != 0 {
		cfg.Seed = *seed
	}
	if *iterations > 0 {
		cfg.Core.Search.Iterations = *iterations
	}
	if *interval > 0 {
		cfg.Interval = *interval
	}
	if *live {
		cfg.Core.Rig.LiveRotation = true
	}
	if cfg.SnapshotCSV == "" {
		cfg.SnapshotCSV = "visibility_report.csv"
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	station, err := rigplan.NewStation(cfg, nil, logger)
	if err != nil {
		logger.Fatal(err)
	}

	logger.Infof("=== Running step: %s ===", *step)

	started := time.Now()
	switch *step {
	case "run":
		err = rigplan.RunOnce(ctx, station)
	case "watch":
		err = rigplan.Watch(ctx, station)
	case "search":
		err = runSearch(ctx, station, logger)
	default:
		err = steps[*step](ctx, station)
	}
	if err != nil {
		logger.Fatal(err)
	}
	logger.Infof("Step %s completed in %v", *step, time.Since(started).Round(time.Millisecond))
}

func runSearch(ctx context.Context, station *rigplan.Station, logger logging.Logger) error {
	best, err := station.SearchViewpoint(ctx)
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}

	logger.Infof("Best viewpoint: (%.3f, %.3f, %.3f) seeing %d faces",
		best.Position.X, best.Position.Y, best.Position.Z, best.VisibleCount)
	return nil
}

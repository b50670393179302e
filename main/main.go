package main

import (
	"context"
	"flag"

	"github.com/calibsight/rigplan"
	"github.com/calibsight/rigplan/internal/rigconfig"
	rigeval "github.com/calibsight/rigplan/rig_eval"

	"go.viam.com/rdk/logging"
	goutils "go.viam.com/utils"
)

func main() {
	goutils.ContextualMain(mainWithArgs, logging.NewDebugLogger("rigplan"))
}

func mainWithArgs(ctx context.Context, args []string, logger logging.Logger) error {
	flags := flag.NewFlagSet(args[0], flag.ExitOnError)
	configPath := flags.String("config", "", "path to station config JSON file")
	interval := flags.Duration("interval", 0, "watch interval (overrides config)")
	if err := flags.Parse(args[1:]); err != nil {
		return err
	}

	cfg := rigplan.StationConfig{Core: rigeval.DefaultConfig()}
	if *configPath != "" {
		def, err := rigconfig.Load(*configPath)
		if err != nil {
			return err
		}
		cfg, err = def.StationConfig()
		if err != nil {
			return err
		}
	}
	if *interval > 0 {
		cfg.Interval = *interval
	}
	if cfg.SnapshotCSV == "" {
		cfg.SnapshotCSV = "visibility_report.csv"
	}

	station, err := rigplan.NewStation(cfg, nil, logger)
	if err != nil {
		return err
	}

	logger.Info("Watching sensor rig")
	return rigplan.Watch(ctx, station)
}

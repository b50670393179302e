package rigplan

import (
	"context"
	"fmt"
)

// RunOnce executes a single evaluation cycle: evaluate → diagnose → snapshot
// → chart → export. Steps with no configured output path are skipped.
func RunOnce(ctx context.Context, s *Station) error {
	steps := []struct {
		name string
		fn   func(context.Context, *Station) error
	}{
		{"Evaluate", Evaluate},
		{"Diagnose", Diagnose},
		{"Snapshot", Snapshot},
		{"Chart", Chart},
		{"Export", Export},
	}

	for _, step := range steps {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		s.logger.Infof("=== %s ===", step.name)
		if err := step.fn(ctx, s); err != nil {
			return fmt.Errorf("%s: %w", step.name, err)
		}
	}

	return nil
}

// Evaluate runs the full rig evaluation and logs the headline numbers.
func Evaluate(ctx context.Context, s *Station) error {
	report, err := s.EvaluateOnce(ctx)
	if err != nil {
		return err
	}

	s.logger.Infof("Coverage %.0f%% (%d/%d faces), objective %.3f",
		report.CoverageFraction*100, len(report.CoveredFaces), s.mesh.FaceCount(), report.Objective)
	s.logger.Infof("Total distance %.2f, angle penalty %.2f, overlap %d",
		report.TotalDistance, report.AnglePenalty, report.OverlapPenalty)
	return nil
}

// Diagnose compares each sensor's visible set against its expected faces and
// logs mismatches and per-sensor aggregates.
func Diagnose(ctx context.Context, s *Station) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	report := s.state.LastReport
	s.mu.Unlock()
	if report == nil {
		return fmt.Errorf("no evaluation to diagnose")
	}

	for _, rep := range report.Sensors {
		s.logger.Infof("Sensor %d: %d visible, status %s, coverage score %.2f",
			rep.SensorIndex+1, len(rep.Records), rep.Status, rep.CoverageScore)

		if len(rep.MissingFaces) > 0 {
			s.logger.Warnf("Sensor %d MISMATCH: missing expected faces %v", rep.SensorIndex+1, rep.MissingFaces)
		}
		if len(rep.UnexpectedFaces) > 0 {
			s.logger.Warnf("Sensor %d MISMATCH: unexpected faces %v", rep.SensorIndex+1, rep.UnexpectedFaces)
		}
		if len(rep.Records) > 0 {
			s.logger.Debugf("  mean distance %.2f (±%.2f), mean angle %.2f (±%.2f)",
				rep.MeanDistance, rep.StdDevDistance, rep.MeanAngle, rep.StdDevAngle)
		}
	}

	return nil
}

// Snapshot rewrites the per-pair visibility CSV from the last evaluation.
func Snapshot(ctx context.Context, s *Station) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.cfg.SnapshotCSV == "" {
		s.logger.Debug("No snapshot path configured; skipping")
		return nil
	}

	s.mu.Lock()
	report := s.state.LastReport
	s.mu.Unlock()
	if report == nil {
		return fmt.Errorf("no evaluation to snapshot")
	}

	if err := WriteSnapshot(s.cfg.SnapshotCSV, *report); err != nil {
		return err
	}
	s.logger.Infof("Wrote snapshot to %s", s.cfg.SnapshotCSV)
	return nil
}

// Chart renders the visible-count chart. Outside a watch session the series
// holds a single tick from the last evaluation.
func Chart(ctx context.Context, s *Station) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.cfg.ChartPNG == "" {
		s.logger.Debug("No chart path configured; skipping")
		return nil
	}

	s.mu.Lock()
	series := append([]SeriesPoint(nil), s.state.Series...)
	report := s.state.LastReport
	s.mu.Unlock()

	if len(series) == 0 {
		if report == nil {
			return fmt.Errorf("no evaluation to chart")
		}
		series = seriesFromReport(*report, 1, s.elapsed())
	}

	if err := WriteChart(s.cfg.ChartPNG, series); err != nil {
		return err
	}
	s.logger.Infof("Wrote chart to %s", s.cfg.ChartPNG)
	return nil
}

// Export writes the coverage point cloud from the last evaluation.
func Export(ctx context.Context, s *Station) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.cfg.CloudPath == "" {
		s.logger.Debug("No cloud path configured; skipping")
		return nil
	}

	s.mu.Lock()
	report := s.state.LastReport
	s.mu.Unlock()
	if report == nil {
		return fmt.Errorf("no evaluation to export")
	}

	cloud, err := BuildCoverageCloud(s.mesh, *report, s.cfg.Core.Visibility.FOVDegrees)
	if err != nil {
		return err
	}
	if err := WriteCoverageCloud(s.cfg.CloudPath, cloud); err != nil {
		return err
	}
	s.logger.Infof("Wrote coverage cloud to %s (%d points)", s.cfg.CloudPath, cloud.Size())
	return nil
}

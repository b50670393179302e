package rigplan

import (
	"context"
	"fmt"
	"sync"
	"time"

	rigeval "github.com/calibsight/rigplan/rig_eval"
)

// Watch runs the periodic evaluation loop until the context is cancelled.
// Each tick re-evaluates the rig at the object's current orientation,
// appends to the series, and rewrites the CSV artifacts. A tick that fires
// while the previous evaluation is still running is skipped, never queued.
// On shutdown the in-flight tick is drained and the session chart and
// coverage cloud are written.
func Watch(ctx context.Context, s *Station) error {
	s.resetSession()
	s.logger.Infof("Watching rig every %v", s.cfg.Interval)

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	var wg sync.WaitGroup
	for {
		select {
		case <-ctx.Done():
			wg.Wait()
			s.flushSession()
			s.logger.Info("Watch stopped")
			return nil
		case <-ticker.C:
		}

		if !s.flight.TryLock() {
			s.logger.Debug("Previous evaluation still running; skipping tick")
			continue
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer s.flight.Unlock()
			if err := s.tick(ctx); err != nil {
				s.logger.Warnf("Tick failed: %v", err)
			}
		}()
	}
}

// tick performs one watch evaluation and rewrites the CSV artifacts.
func (s *Station) tick(ctx context.Context) error {
	report, err := s.EvaluateOnce(ctx)
	if err != nil {
		return err
	}
	elapsed := s.elapsed()

	s.mu.Lock()
	s.state.TicksCompleted++
	tickNo := s.state.TicksCompleted
	s.state.Series = append(s.state.Series, seriesFromReport(report, tickNo, elapsed)...)
	series := append([]SeriesPoint(nil), s.state.Series...)
	s.mu.Unlock()

	good := 0
	for _, rep := range report.Sensors {
		if rep.Status == rigeval.StatusGood {
			good++
		}
	}
	s.logger.Infof("Tick %d: %d/%d sensors GOOD, %d/%d faces covered",
		tickNo, good, len(report.Sensors), len(report.CoveredFaces), s.mesh.FaceCount())

	if s.cfg.SnapshotCSV != "" {
		if err := WriteSnapshot(s.cfg.SnapshotCSV, report); err != nil {
			return fmt.Errorf("write snapshot: %w", err)
		}
	}
	if s.cfg.SeriesCSV != "" {
		if err := WriteSeries(s.cfg.SeriesCSV, series); err != nil {
			return fmt.Errorf("write series: %w", err)
		}
	}
	return nil
}

// flushSession writes the end-of-session artifacts: chart and coverage cloud.
func (s *Station) flushSession() {
	s.mu.Lock()
	series := append([]SeriesPoint(nil), s.state.Series...)
	report := s.state.LastReport
	s.mu.Unlock()

	if s.cfg.ChartPNG != "" && len(series) > 0 {
		if err := WriteChart(s.cfg.ChartPNG, series); err != nil {
			s.logger.Warnf("Failed to write chart: %v", err)
		} else {
			s.logger.Infof("Wrote chart to %s", s.cfg.ChartPNG)
		}
	}

	if s.cfg.CloudPath != "" && report != nil {
		cloud, err := BuildCoverageCloud(s.mesh, *report, s.cfg.Core.Visibility.FOVDegrees)
		if err == nil {
			err = WriteCoverageCloud(s.cfg.CloudPath, cloud)
		}
		if err != nil {
			s.logger.Warnf("Failed to write coverage cloud: %v", err)
		} else {
			s.logger.Infof("Wrote coverage cloud to %s", s.cfg.CloudPath)
		}
	}
}

// seriesFromReport flattens one rig report into per-sensor series points.
func seriesFromReport(report rigeval.RigReport, tick int, elapsed time.Duration) []SeriesPoint {
	pts := make([]SeriesPoint, 0, len(report.Sensors))
	for _, rep := range report.Sensors {
		pts = append(pts, SeriesPoint{
			Tick:         tick,
			Elapsed:      elapsed.Seconds(),
			Sensor:       rep.SensorIndex,
			VisibleCount: len(rep.Records),
			MeanDistance: rep.MeanDistance,
			MeanAngle:    rep.MeanAngle,
			Status:       rep.Status,
		})
	}
	return pts
}

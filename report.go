package rigplan

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	rigeval "github.com/calibsight/rigplan/rig_eval"
)

// SeriesPoint is one sensor's summary at one watch tick.
type SeriesPoint struct {
	Tick         int
	Elapsed      float64 // seconds since station start
	Sensor       int
	VisibleCount int
	MeanDistance float64
	MeanAngle    float64
	Status       rigeval.SensorStatus
}

// SnapshotWriter wraps csv.Writer for the per-pair visibility report.
type SnapshotWriter struct {
	w *csv.Writer
}

// NewSnapshotWriter creates a SnapshotWriter over the given writer.
func NewSnapshotWriter(w io.Writer) *SnapshotWriter {
	return &SnapshotWriter{w: csv.NewWriter(w)}
}

// WriteHeader writes the snapshot column header.
func (sw *SnapshotWriter) WriteHeader() error {
	return sw.w.Write([]string{
		"Sensor", "Pose", "Face", "Distance", "Angle",
		"Alpha", "Beta", "Theta", "Status", "Score",
	})
}

// WriteSensor writes one row per visible face of the sensor. Sensors are
// numbered from 1 in the report; a sensor with nothing visible contributes
// no rows.
func (sw *SnapshotWriter) WriteSensor(rep rigeval.SensorReport) error {
	for _, rec := range rep.Records {
		row := []string{
			fmt.Sprintf("Sensor %d", rep.SensorIndex+1),
			fmt.Sprintf("(%.1f, %.1f, %.1f)", rep.Position.X, rep.Position.Y, rep.Position.Z),
			fmt.Sprintf("%d", rec.FaceIndex),
			fmt.Sprintf("%.2f", rec.Distance),
			fmt.Sprintf("%.2f", rec.Angle),
			fmt.Sprintf("%.2f", rep.Euler.Alpha),
			fmt.Sprintf("%.2f", rep.Euler.Beta),
			fmt.Sprintf("%.2f", rep.Euler.Theta),
			rep.Status.String(),
			fmt.Sprintf("%.2f", rep.CoverageScore),
		}
		if err := sw.w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes buffered rows and reports any write error.
func (sw *SnapshotWriter) Flush() error {
	sw.w.Flush()
	return sw.w.Error()
}

// WriteSnapshot rewrites the snapshot CSV at path from a rig report. The
// file is truncated first; every run reflects only the latest evaluation.
func WriteSnapshot(path string, report rigeval.RigReport) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create snapshot: %w", err)
	}
	defer f.Close()

	sw := NewSnapshotWriter(f)
	if err := sw.WriteHeader(); err != nil {
		return err
	}
	for _, rep := range report.Sensors {
		if err := sw.WriteSensor(rep); err != nil {
			return err
		}
	}
	return sw.Flush()
}

// SeriesWriter wraps csv.Writer for the watch session time series.
type SeriesWriter struct {
	w *csv.Writer
}

// NewSeriesWriter creates a SeriesWriter over the given writer.
func NewSeriesWriter(w io.Writer) *SeriesWriter {
	return &SeriesWriter{w: csv.NewWriter(w)}
}

// WriteHeader writes the series column header.
func (sw *SeriesWriter) WriteHeader() error {
	return sw.w.Write([]string{
		"Tick", "Elapsed", "Sensor", "Visible", "MeanDistance", "MeanAngle", "Status",
	})
}

// WriteRow writes one series point.
func (sw *SeriesWriter) WriteRow(pt SeriesPoint) error {
	return sw.w.Write([]string{
		fmt.Sprintf("%d", pt.Tick),
		fmt.Sprintf("%.2f", pt.Elapsed),
		fmt.Sprintf("Sensor %d", pt.Sensor+1),
		fmt.Sprintf("%d", pt.VisibleCount),
		fmt.Sprintf("%.2f", pt.MeanDistance),
		fmt.Sprintf("%.2f", pt.MeanAngle),
		pt.Status.String(),
	})
}

// Flush flushes buffered rows and reports any write error.
func (sw *SeriesWriter) Flush() error {
	sw.w.Flush()
	return sw.w.Error()
}

// WriteSeries rewrites the series CSV at path with the whole session so
// far, so the file stays consistent even if the watch is interrupted.
func WriteSeries(path string, pts []SeriesPoint) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create series: %w", err)
	}
	defer f.Close()

	sw := NewSeriesWriter(f)
	if err := sw.WriteHeader(); err != nil {
		return err
	}
	for _, pt := range pts {
		if err := sw.WriteRow(pt); err != nil {
			return err
		}
	}
	return sw.Flush()
}

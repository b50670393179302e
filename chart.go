package rigplan

import (
	"fmt"
	"sort"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// WriteChart renders the per-sensor visible-count series to path. The image
// format follows the file extension.
func WriteChart(path string, series []SeriesPoint) error {
	if len(series) == 0 {
		return fmt.Errorf("no series points to chart")
	}

	p := plot.New()
	p.Title.Text = "Visible faces per sensor"
	p.X.Label.Text = "Elapsed (s)"
	p.Y.Label.Text = "Visible faces"

	bySensor := make(map[int]plotter.XYs)
	for _, pt := range series {
		bySensor[pt.Sensor] = append(bySensor[pt.Sensor],
			plotter.XY{X: pt.Elapsed, Y: float64(pt.VisibleCount)})
	}

	var sensors []int
	for idx := range bySensor {
		sensors = append(sensors, idx)
	}
	sort.Ints(sensors)

	for _, idx := range sensors {
		line, err := plotter.NewLine(bySensor[idx])
		if err != nil {
			return fmt.Errorf("sensor %d line: %w", idx+1, err)
		}
		line.Color = sensorColors[idx%len(sensorColors)]
		p.Add(line)
		p.Legend.Add(fmt.Sprintf("Sensor %d", idx+1), line)
	}

	p.Legend.Top = true
	if err := p.Save(10*vg.Inch, 5*vg.Inch, path); err != nil {
		return fmt.Errorf("save chart: %w", err)
	}
	return nil
}

// Package rigconfig loads station configuration from JSON definition files.
package rigconfig

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/golang/geo/r3"

	"github.com/calibsight/rigplan"
	rigeval "github.com/calibsight/rigplan/rig_eval"
)

// Definition is the on-disk shape of a station configuration file. Zero
// values defer to the built-in defaults.
type Definition struct {
	Mode                 string      `mapstructure:"mode"`           // "backface" or "cone"
	FOVDegrees           float64     `mapstructure:"fov_degrees"`    // cone aperture
	RotationOrder        string      `mapstructure:"rotation_order"` // "zx" or "xz"
	RotationTable        string      `mapstructure:"rotation_table"` // "", "survey", or "turntable"
	LiveRotation         bool        `mapstructure:"live_rotation"`
	GoodVisibleThreshold int         `mapstructure:"good_visible_threshold"`
	Sensors              []SensorDef `mapstructure:"sensors"`
	Search               SearchDef   `mapstructure:"search"`
	SnapshotCSV          string      `mapstructure:"snapshot_csv"`
	SeriesCSV            string      `mapstructure:"series_csv"`
	ChartPNG             string      `mapstructure:"chart_png"`
	CloudPath            string      `mapstructure:"cloud_path"`
	HistoryDir           string      `mapstructure:"history_dir"`
	IntervalSeconds      float64     `mapstructure:"interval_seconds"`
	Seed                 int64       `mapstructure:"seed"`
}

// SensorDef describes one sensor of the rig. Per-sensor rotations are
// ignored when the definition names a built-in rotation table.
type SensorDef struct {
	Position      []float64 `mapstructure:"position"` // [x, y, z]
	RotationXDeg  float64   `mapstructure:"rotation_x_deg"`
	RotationZDeg  float64   `mapstructure:"rotation_z_deg"`
	ExpectedFaces []int     `mapstructure:"expected_faces"`
}

// SearchDef overrides viewpoint search parameters.
type SearchDef struct {
	Initial    []float64 `mapstructure:"initial_position"`
	Step       float64   `mapstructure:"step"`
	Iterations int       `mapstructure:"iterations"`
	Children   int       `mapstructure:"children"`
	BeamWidth  int       `mapstructure:"beam_width"`
}

// Load reads and decodes a station definition from a JSON file.
func Load(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	var def Definition
	if err := mapstructure.Decode(raw, &def); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	return &def, nil
}

// StationConfig validates the definition and converts it to a station
// configuration, filling unset fields from the built-in defaults.
func (d *Definition) StationConfig() (rigplan.StationConfig, error) {
	var zero rigplan.StationConfig

	if len(d.Sensors) == 0 {
		return zero, fmt.Errorf("config declares no sensors")
	}

	cfg := rigeval.DefaultConfig()

	mode, err := parseMode(d.Mode)
	if err != nil {
		return zero, err
	}
	cfg.Visibility.Mode = mode
	if d.FOVDegrees > 0 {
		cfg.Visibility.FOVDegrees = d.FOVDegrees
	}

	order, err := parseOrder(d.RotationOrder)
	if err != nil {
		return zero, err
	}

	faceCount := rigeval.NewIcosahedron().FaceCount()
	positions := make([]r3.Vector, len(d.Sensors))
	rotations := make([]rigeval.RotationSpec, len(d.Sensors))
	expected := make(map[int][]int)
	for i, sd := range d.Sensors {
		if len(sd.Position) != 3 {
			return zero, fmt.Errorf("sensor %d: position needs 3 coordinates, got %d", i, len(sd.Position))
		}
		positions[i] = r3.Vector{X: sd.Position[0], Y: sd.Position[1], Z: sd.Position[2]}
		rotations[i] = rigeval.RotationSpec{XDeg: sd.RotationXDeg, ZDeg: sd.RotationZDeg, Order: order}

		if sd.ExpectedFaces != nil {
			for _, f := range sd.ExpectedFaces {
				if f < 0 || f >= faceCount {
					return zero, fmt.Errorf("sensor %d: expected face %d outside [0, %d)", i, f, faceCount)
				}
			}
			expected[i] = sd.ExpectedFaces
		}
	}

	switch d.RotationTable {
	case "":
	case "survey":
		rotations = rigeval.SurveyRotationTable()
	case "turntable":
		rotations = rigeval.TurntableRotationTable()
	default:
		return zero, fmt.Errorf("unknown rotation table %q", d.RotationTable)
	}
	if len(rotations) < len(positions) {
		return zero, fmt.Errorf("rotation table %q has %d entries for %d sensors",
			d.RotationTable, len(rotations), len(positions))
	}

	cfg.Rig.Positions = positions
	cfg.Rig.Rotations = rotations
	cfg.Rig.ExpectedFaces = expected
	cfg.Rig.LiveRotation = d.LiveRotation
	if d.GoodVisibleThreshold > 0 {
		cfg.Rig.GoodVisibleThreshold = d.GoodVisibleThreshold
	}

	switch len(d.Search.Initial) {
	case 0:
	case 3:
		cfg.Search.InitialPosition = r3.Vector{X: d.Search.Initial[0], Y: d.Search.Initial[1], Z: d.Search.Initial[2]}
	default:
		return zero, fmt.Errorf("search initial_position needs 3 coordinates, got %d", len(d.Search.Initial))
	}
	if d.Search.Step > 0 {
		cfg.Search.Step = d.Search.Step
	}
	if d.Search.Iterations > 0 {
		cfg.Search.Iterations = d.Search.Iterations
	}
	if d.Search.Children > 0 {
		cfg.Search.Children = d.Search.Children
	}
	if d.Search.BeamWidth > 0 {
		cfg.Search.BeamWidth = d.Search.BeamWidth
	}

	return rigplan.StationConfig{
		Core:        cfg,
		SnapshotCSV: d.SnapshotCSV,
		SeriesCSV:   d.SeriesCSV,
		ChartPNG:    d.ChartPNG,
		CloudPath:   d.CloudPath,
		HistoryDir:  d.HistoryDir,
		Interval:    time.Duration(d.IntervalSeconds * float64(time.Second)),
		Seed:        d.Seed,
	}, nil
}

func parseMode(s string) (rigeval.VisibilityMode, error) {
	switch s {
	case "", "backface":
		return rigeval.ModeBackFace, nil
	case "cone":
		return rigeval.ModeCone, nil
	default:
		return 0, fmt.Errorf("unknown visibility mode %q", s)
	}
}

func parseOrder(s string) (rigeval.CompositionOrder, error) {
	switch s {
	case "", "zx":
		return rigeval.OrderZX, nil
	case "xz":
		return rigeval.OrderXZ, nil
	default:
		return 0, fmt.Errorf("unknown rotation order %q", s)
	}
}

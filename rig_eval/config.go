package rigeval

import "github.com/golang/geo/r3"

// Config holds all configuration for rig visibility evaluation and search.
type Config struct {
	Visibility VisibilityConfig
	Rig        RigConfig
	Search     SearchConfig
}

// VisibilityConfig holds parameters for the per-face visibility test.
type VisibilityConfig struct {
	Mode       VisibilityMode // Back-face culling or FOV cone test
	FOVDegrees float64        // Full cone aperture in degrees; ModeCone only
}

// RotationSpec declares one sensor's static orientation as an X rotation and
// a Z rotation with an explicit composition order.
type RotationSpec struct {
	XDeg  float64         // Rotation about X in degrees
	ZDeg  float64         // Rotation about Z in degrees
	Order CompositionOrder
}

// RigConfig describes the sensor rig under evaluation.
type RigConfig struct {
	Positions            []r3.Vector    // Sensor positions, world frame
	Rotations            []RotationSpec // Static orientation table, one per sensor
	ExpectedFaces        map[int][]int  // Ground-truth visible faces per sensor index
	GoodVisibleThreshold int            // Min visible faces for StatusGood
	LiveRotation         bool           // Derive orientation from elapsed time instead of the table
}

// SearchConfig holds parameters for the viewpoint beam search.
type SearchConfig struct {
	InitialPosition r3.Vector // Starting candidate; its norm fixes the search sphere radius
	Step            float64   // Per-axis perturbation bound
	Iterations      int       // Fixed iteration budget
	Children        int       // Perturbed children per held candidate per iteration
	BeamWidth       int       // Candidates kept after each merge
}

// DefaultConfig returns the six-sensor survey rig configuration.
func DefaultConfig() Config {
	return Config{
		Visibility: VisibilityConfig{
			Mode:       ModeBackFace,
			FOVDegrees: 60.0,
		},
		Rig: RigConfig{
			Positions: []r3.Vector{
				{X: 8, Y: 0, Z: 0}, {X: -8, Y: 0, Z: 0},
				{X: 0, Y: 8, Z: 0}, {X: 0, Y: -8, Z: 0},
				{X: 0, Y: 0, Z: 8}, {X: 0, Y: 0, Z: -8},
			},
			Rotations: SurveyRotationTable(),
			ExpectedFaces: map[int][]int{
				0: {0, 1, 5},
				1: {3, 4, 10},
				2: {6, 7, 8},
				3: {9, 10, 11},
				4: {12, 13, 14},
				5: {15, 16, 17},
			},
			GoodVisibleThreshold: 5,
		},
		Search: SearchConfig{
			InitialPosition: r3.Vector{X: 10, Y: 0, Z: 0},
			Step:            1.0,
			Iterations:      50,
			Children:        5,
			BeamWidth:       10,
		},
	}
}

// SurveyRotationTable is the orientation table of the original survey rig:
// X tilt 42° for the first row of sensors, 60° for the second, Z swings of
// 30/60/90° across each row, composed Rz·Rx.
func SurveyRotationTable() []RotationSpec {
	return []RotationSpec{
		{XDeg: 42, ZDeg: 30, Order: OrderZX},
		{XDeg: 42, ZDeg: 60, Order: OrderZX},
		{XDeg: 42, ZDeg: 90, Order: OrderZX},
		{XDeg: 60, ZDeg: 30, Order: OrderZX},
		{XDeg: 60, ZDeg: 60, Order: OrderZX},
		{XDeg: 60, ZDeg: 90, Order: OrderZX},
	}
}

// TurntableRotationTable is the orientation table of the turntable rig:
// sensor 0 unrotated, the rest sharing a 42° X tilt with Z steps every 30°.
// Note the composition order differs from the survey table.
func TurntableRotationTable() []RotationSpec {
	return []RotationSpec{
		{XDeg: 0, ZDeg: 0, Order: OrderXZ},
		{XDeg: 42, ZDeg: 60, Order: OrderXZ},
		{XDeg: 42, ZDeg: 90, Order: OrderXZ},
		{XDeg: 42, ZDeg: 120, Order: OrderXZ},
		{XDeg: 42, ZDeg: 150, Order: OrderXZ},
		{XDeg: 42, ZDeg: 180, Order: OrderXZ},
	}
}

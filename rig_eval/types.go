package rigeval

import (
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"
)

// VisibilityMode selects how a face is judged visible to a sensor.
type VisibilityMode int

const (
	// ModeBackFace declares a face visible when its outward normal points
	// toward the sensor.
	ModeBackFace VisibilityMode = iota
	// ModeCone declares a face visible when the sensor-to-face direction
	// falls inside the sensor's field-of-view cone.
	ModeCone
)

func (m VisibilityMode) String() string {
	switch m {
	case ModeBackFace:
		return "backface"
	case ModeCone:
		return "cone"
	default:
		return "unknown"
	}
}

// SensorStatus classifies a sensor's health from its visible-face count.
type SensorStatus int

const (
	StatusBad SensorStatus = iota
	StatusGood
)

func (s SensorStatus) String() string {
	switch s {
	case StatusGood:
		return "GOOD"
	case StatusBad:
		return "BAD"
	default:
		return "unknown"
	}
}

// CompositionOrder fixes the multiplication order when a sensor's rotation
// is assembled from its X and Z axis rotations. The two rig generations
// disagree on this, so it is carried as data rather than unified.
type CompositionOrder int

const (
	// OrderZX composes Rz·Rx (survey rigs).
	OrderZX CompositionOrder = iota
	// OrderXZ composes Rx·Rz (turntable rigs).
	OrderXZ
)

func (o CompositionOrder) String() string {
	switch o {
	case OrderZX:
		return "zx"
	case OrderXZ:
		return "xz"
	default:
		return "unknown"
	}
}

// EulerAngles holds a rotation decomposed as intrinsic X/Y/Z angles in degrees.
type EulerAngles struct {
	Alpha float64 // Rotation about X
	Beta  float64 // Rotation about Y
	Theta float64 // Rotation about Z
}

// VisibilityRecord describes one face judged visible from a sensor.
type VisibilityRecord struct {
	FaceIndex  int
	Distance   float64   // Sensor to face center, same units as the mesh
	Angle      float64   // Degrees; meaning depends on the visibility mode
	FaceCenter r3.Vector // Face centroid at evaluation time
}

// SensorPose is a sensor placement: a position and a rotation matrix.
type SensorPose struct {
	Position r3.Vector
	Rotation *mat.Dense
}

// SensorReport is the full evaluation result for one sensor.
type SensorReport struct {
	SensorIndex int
	Position    r3.Vector
	Rotation    *mat.Dense
	Euler       EulerAngles
	Records     []VisibilityRecord
	Status      SensorStatus

	// CoverageScore is |actual ∩ expected| / max(|expected|, 1) against the
	// configured expected-face set; zero when no expectation is configured.
	CoverageScore float64

	// Set differences against the expected faces, for diagnostics.
	MissingFaces    []int
	UnexpectedFaces []int

	// Distance/angle aggregates over the visible records.
	MeanDistance   float64
	MeanAngle      float64
	StdDevDistance float64
	StdDevAngle    float64
}

// VisibleFaces returns the sorted face indices this sensor saw.
func (r SensorReport) VisibleFaces() []int {
	out := make([]int, len(r.Records))
	for i, rec := range r.Records {
		out[i] = rec.FaceIndex
	}
	return out
}

// RigReport aggregates sensor reports with the rig-level objective terms.
type RigReport struct {
	Sensors []SensorReport

	// CoveredFaces is the sorted union of faces visible to any sensor.
	CoveredFaces []int

	// Objective terms. The scalarization is the one the legacy rig tooling
	// produced; its weights are part of the contract.
	CoverageFraction float64
	TotalDistance    float64
	AnglePenalty     float64
	OverlapPenalty   int
	Objective        float64
}

// Candidate is a viewpoint-search pool entry.
type Candidate struct {
	Position     r3.Vector
	VisibleCount int
}

package rigeval

import (
	"errors"
	"fmt"

	"github.com/golang/geo/r3"
)

var (
	// ErrEmptyRig is returned when a rig evaluation is requested with no sensors.
	ErrEmptyRig = errors.New("rig has no sensors")

	// ErrInvalidSensorIndex is returned when a sensor index falls outside the
	// configured rig size.
	ErrInvalidSensorIndex = errors.New("invalid sensor index")

	// ErrUnknownCompositionOrder is returned for a CompositionOrder value
	// outside the two known rig conventions.
	ErrUnknownCompositionOrder = errors.New("unknown rotation composition order")

	// ErrUnknownVisibilityMode is returned for a VisibilityMode value with no
	// implemented test.
	ErrUnknownVisibilityMode = errors.New("unknown visibility mode")

	// ErrInvalidSearchConfig is returned when search parameters cannot drive
	// the candidate loop (zero beam, zero children, non-positive step).
	ErrInvalidSearchConfig = errors.New("invalid search configuration")

	// ErrZeroRadius is returned when the search's initial position sits at
	// the origin, leaving no sphere to search on.
	ErrZeroRadius = errors.New("initial position has zero norm")

	// ErrSensorAtOrigin is returned in cone mode when a sensor sits at the
	// origin, leaving its view axis undefined.
	ErrSensorAtOrigin = errors.New("sensor at origin has no view axis")
)

// DegenerateFaceError reports a face whose vertices are collinear or
// coincident, leaving its normal undefined.
type DegenerateFaceError struct {
	FaceIndex int
}

func (e *DegenerateFaceError) Error() string {
	return fmt.Sprintf("face %d is degenerate: vertices are collinear or coincident", e.FaceIndex)
}

// DegenerateGeometryError reports a sensor position coinciding with a face
// center, leaving the view vector undefined. The face is excluded from the
// visibility set; the error is advisory.
type DegenerateGeometryError struct {
	FaceIndex      int
	SensorPosition r3.Vector
}

func (e *DegenerateGeometryError) Error() string {
	return fmt.Sprintf("sensor at (%.3f, %.3f, %.3f) coincides with center of face %d",
		e.SensorPosition.X, e.SensorPosition.Y, e.SensorPosition.Z, e.FaceIndex)
}

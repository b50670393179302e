package rigeval

import (
	"errors"
	"fmt"
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"
)

// ViewAxis returns the sensor's viewing direction for cone-mode tests: the
// unit vector from the sensor toward the origin, respun by the calibration
// object's rotation.
func ViewAxis(sensorPos r3.Vector, objectRotation mat.Matrix) r3.Vector {
	base := sensorPos.Mul(-1.0 / sensorPos.Norm())
	if objectRotation == nil {
		return base
	}
	return ApplyRotation(objectRotation, base)
}

// Evaluate runs the per-face visibility test for one sensor and returns the
// visible records in face-index order.
//
// In ModeBackFace a face is visible when its outward normal points toward
// the sensor; the record angle is between the normal and the face-to-sensor
// direction. viewAxis is unused. In ModeCone a face is visible when the
// sensor-to-face direction lies within half the configured FOV of viewAxis;
// the record angle is that off-axis angle.
//
// Faces whose center coincides with the sensor position are excluded and
// reported through the returned error (joined DegenerateGeometryErrors);
// the records remain valid alongside it.
func Evaluate(mesh *Mesh, sensorPos, viewAxis r3.Vector, cfg VisibilityConfig) ([]VisibilityRecord, error) {
	if cfg.Mode != ModeBackFace && cfg.Mode != ModeCone {
		return nil, fmt.Errorf("%w: %d", ErrUnknownVisibilityMode, int(cfg.Mode))
	}

	var records []VisibilityRecord
	var degenerate []error

	for i := 0; i < mesh.FaceCount(); i++ {
		center := mesh.FaceCenter(i)
		toSensor := sensorPos.Sub(center)
		dist := toSensor.Norm()
		if dist*dist < degenerateEps {
			degenerate = append(degenerate, &DegenerateGeometryError{FaceIndex: i, SensorPosition: sensorPos})
			continue
		}

		switch cfg.Mode {
		case ModeBackFace:
			normal, err := mesh.FaceNormal(i)
			if err != nil {
				degenerate = append(degenerate, err)
				continue
			}
			dot := normal.Dot(toSensor.Mul(1.0 / dist))
			if dot <= 0 {
				continue
			}
			records = append(records, VisibilityRecord{
				FaceIndex:  i,
				Distance:   dist,
				Angle:      degreesFromCos(dot),
				FaceCenter: center,
			})

		case ModeCone:
			toFace := toSensor.Mul(-1.0 / dist)
			angle := degreesFromCos(toFace.Dot(viewAxis))
			if angle >= cfg.FOVDegrees/2 {
				continue
			}
			records = append(records, VisibilityRecord{
				FaceIndex:  i,
				Distance:   dist,
				Angle:      angle,
				FaceCenter: center,
			})
		}
	}

	return records, errors.Join(degenerate...)
}

// degreesFromCos converts a dot product of unit vectors to an angle in
// degrees, clamping into [-1, 1] first so floating-point overshoot never
// reaches acos.
func degreesFromCos(c float64) float64 {
	if c > 1 {
		c = 1
	} else if c < -1 {
		c = -1
	}
	return math.Acos(c) * 180 / math.Pi
}

package rigeval

import (
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/mat"
)

// Live rotation rates of the calibration object, degrees per second.
const (
	liveRateYDegPerSec = 30.0
	liveRateXDegPerSec = 20.0
)

// Clock supplies the current time. Production code uses SystemClock; tests
// inject a fake to drive the live rotation deterministically.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns a Clock backed by the wall clock.
func SystemClock() Clock { return systemClock{} }

// LiveRotation returns the calibration object's rotation after the given
// elapsed spin time: 30°/s about Y and 20°/s about X, composed Rx·Ry.
func LiveRotation(elapsed time.Duration) *mat.Dense {
	sec := elapsed.Seconds()
	angleY := math.Mod(sec*liveRateYDegPerSec, 360)
	angleX := math.Mod(sec*liveRateXDegPerSec, 360)

	var out mat.Dense
	out.Mul(RotationX(angleX), RotationY(angleY))
	return &out
}

// RotationForSensor resolves one sensor's static rotation from the table.
func RotationForSensor(table []RotationSpec, sensorIdx int) (*mat.Dense, error) {
	if sensorIdx < 0 || sensorIdx >= len(table) {
		return nil, fmt.Errorf("%w: %d (table has %d sensors)", ErrInvalidSensorIndex, sensorIdx, len(table))
	}
	return table[sensorIdx].Matrix()
}

// StaticRotations materializes a whole rotation table.
func StaticRotations(table []RotationSpec) ([]*mat.Dense, error) {
	out := make([]*mat.Dense, len(table))
	for i := range table {
		r, err := RotationForSensor(table, i)
		if err != nil {
			return nil, err
		}
		out[i] = r
	}
	return out, nil
}

// StaticPoses pairs each configured sensor position with its rotation from
// the static table. An empty table leaves every rotation nil (identity); a
// non-empty table must cover every sensor.
func StaticPoses(cfg RigConfig) ([]SensorPose, error) {
	poses := make([]SensorPose, len(cfg.Positions))
	for i, p := range cfg.Positions {
		poses[i] = SensorPose{Position: p}
	}
	if len(cfg.Rotations) == 0 {
		return poses, nil
	}
	if len(cfg.Rotations) < len(cfg.Positions) {
		return nil, fmt.Errorf("%w: rotation table has %d entries for %d sensors",
			ErrInvalidSensorIndex, len(cfg.Rotations), len(cfg.Positions))
	}
	for i := range poses {
		r, err := RotationForSensor(cfg.Rotations, i)
		if err != nil {
			return nil, err
		}
		poses[i].Rotation = r
	}
	return poses, nil
}

// LivePoses pairs each configured sensor position with the single live
// rotation of the spinning calibration object at the given elapsed time.
func LivePoses(cfg RigConfig, elapsed time.Duration) []SensorPose {
	rot := LiveRotation(elapsed)
	poses := make([]SensorPose, len(cfg.Positions))
	for i, p := range cfg.Positions {
		poses[i] = SensorPose{Position: p, Rotation: rot}
	}
	return poses
}

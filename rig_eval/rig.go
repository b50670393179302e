package rigeval

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/stat"
)

// Objective weights of the legacy rig scorer. The scalarization has no
// normalization guarantee across terms; the weights are part of the contract.
const (
	objectiveDistanceDivisor = 100.0
	objectiveOverlapDivisor  = 10.0
)

// EvaluateSensor evaluates one sensor against the mesh: visibility records,
// Euler decomposition, Good/Bad status, and (when expected is non-nil) the
// coverage score and expected-vs-actual set differences.
//
// A non-nil error alongside non-empty records is advisory (degenerate faces
// were excluded); an error with a zero report is fatal.
func EvaluateSensor(mesh *Mesh, sensorIdx int, pose SensorPose, expected []int, visCfg VisibilityConfig, goodThreshold int) (SensorReport, error) {
	rot := pose.Rotation
	if rot == nil {
		rot = Identity()
	}

	var axis r3.Vector
	if visCfg.Mode == ModeCone {
		if pose.Position.Norm2() < degenerateEps {
			return SensorReport{}, fmt.Errorf("sensor %d: %w", sensorIdx, ErrSensorAtOrigin)
		}
		axis = ViewAxis(pose.Position, rot)
	}

	records, degErr := Evaluate(mesh, pose.Position, axis, visCfg)
	if errors.Is(degErr, ErrUnknownVisibilityMode) {
		return SensorReport{}, fmt.Errorf("sensor %d: %w", sensorIdx, degErr)
	}

	rep := SensorReport{
		SensorIndex: sensorIdx,
		Position:    pose.Position,
		Rotation:    rot,
		Euler:       MatrixToEuler(rot),
		Records:     records,
		Status:      StatusBad,
	}
	if len(records) >= goodThreshold {
		rep.Status = StatusGood
	}

	if expected != nil {
		actual := make(map[int]bool, len(records))
		for _, rec := range records {
			actual[rec.FaceIndex] = true
		}
		matched := 0
		for _, f := range expected {
			if actual[f] {
				matched++
			} else {
				rep.MissingFaces = append(rep.MissingFaces, f)
			}
		}
		expectedSet := make(map[int]bool, len(expected))
		for _, f := range expected {
			expectedSet[f] = true
		}
		for _, rec := range records {
			if !expectedSet[rec.FaceIndex] {
				rep.UnexpectedFaces = append(rep.UnexpectedFaces, rec.FaceIndex)
			}
		}
		sort.Ints(rep.MissingFaces)
		sort.Ints(rep.UnexpectedFaces)
		rep.CoverageScore = float64(matched) / math.Max(float64(len(expected)), 1)
	}

	if len(records) > 0 {
		dists := make([]float64, len(records))
		angles := make([]float64, len(records))
		for i, rec := range records {
			dists[i] = rec.Distance
			angles[i] = rec.Angle
		}
		rep.MeanDistance = stat.Mean(dists, nil)
		rep.MeanAngle = stat.Mean(angles, nil)
		if len(records) > 1 {
			rep.StdDevDistance = stat.StdDev(dists, nil)
			rep.StdDevAngle = stat.StdDev(angles, nil)
		}
	}

	return rep, degErr
}

// EvaluateRig evaluates every sensor in parallel and aggregates the rig-level
// objective. Sensor order in the result matches input order regardless of
// completion order. Advisory degenerate-geometry errors from individual
// sensors are joined into the returned error; the report stays valid.
func EvaluateRig(mesh *Mesh, poses []SensorPose, cfg Config) (RigReport, error) {
	if len(poses) == 0 {
		return RigReport{}, ErrEmptyRig
	}

	reports := make([]SensorReport, len(poses))
	errs := make([]error, len(poses))

	var wg sync.WaitGroup
	for i := range poses {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			reports[i], errs[i] = EvaluateSensor(
				mesh, i, poses[i], cfg.Rig.ExpectedFaces[i],
				cfg.Visibility, cfg.Rig.GoodVisibleThreshold,
			)
		}(i)
	}
	wg.Wait()

	rig := summarizeRig(reports, mesh.FaceCount())
	return rig, errors.Join(errs...)
}

// summarizeRig computes the union coverage, pairwise overlap, and the legacy
// objective from per-sensor reports:
//
//	objective = coverage − totalDistance/100 − Σ 1/(1+cos(angle)) − overlap/10
//
// where coverage is the covered fraction of all faces and the distance and
// angle sums run over every visible (sensor, face) pair.
func summarizeRig(reports []SensorReport, faceCount int) RigReport {
	rig := RigReport{Sensors: reports}

	union := make(map[int]bool)
	faceSets := make([]map[int]bool, len(reports))
	for i, rep := range reports {
		faceSets[i] = make(map[int]bool, len(rep.Records))
		for _, rec := range rep.Records {
			union[rec.FaceIndex] = true
			faceSets[i][rec.FaceIndex] = true
			rig.TotalDistance += rec.Distance
			rig.AnglePenalty += 1.0 / (1.0 + math.Cos(rec.Angle*math.Pi/180))
		}
	}

	for f := range union {
		rig.CoveredFaces = append(rig.CoveredFaces, f)
	}
	sort.Ints(rig.CoveredFaces)

	for i := 0; i < len(faceSets); i++ {
		for j := i + 1; j < len(faceSets); j++ {
			for f := range faceSets[i] {
				if faceSets[j][f] {
					rig.OverlapPenalty++
				}
			}
		}
	}

	if faceCount > 0 {
		rig.CoverageFraction = float64(len(union)) / float64(faceCount)
	}
	rig.Objective = rig.CoverageFraction -
		rig.TotalDistance/objectiveDistanceDivisor -
		rig.AnglePenalty -
		float64(rig.OverlapPenalty)/objectiveOverlapDivisor

	return rig
}

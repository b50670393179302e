package rigplan

import (
	"fmt"
	"image/color"
	"os"

	"github.com/golang/geo/r3"
	"go.viam.com/rdk/pointcloud"
	"go.viam.com/rdk/spatialmath"

	rigeval "github.com/calibsight/rigplan/rig_eval"
)

// sensorColors assigns each sensor a stable display color, shared by the
// chart and the coverage cloud.
var sensorColors = []color.NRGBA{
	{R: 220, G: 50, B: 47, A: 255},  // red
	{R: 50, G: 180, B: 60, A: 255},  // green
	{R: 40, G: 90, B: 220, A: 255},  // blue
	{R: 240, G: 150, B: 20, A: 255}, // orange
	{R: 150, G: 60, B: 200, A: 255}, // purple
	{R: 220, G: 40, B: 160, A: 255}, // magenta
}

// uncoveredColor marks face centers no sensor can see.
var uncoveredColor = color.NRGBA{R: 120, G: 120, B: 120, A: 255}

// frustumEdgeSamples is the number of segments per frustum wireframe edge.
const frustumEdgeSamples = 25

// SensorPoses returns each sensor's pose with its orientation vector aimed
// at the calibration target.
func SensorPoses(report rigeval.RigReport) []spatialmath.Pose {
	poses := make([]spatialmath.Pose, 0, len(report.Sensors))
	for _, rep := range report.Sensors {
		lookDir := rep.Position.Mul(-1)
		norm := lookDir.Norm()
		if norm < 1e-9 {
			poses = append(poses, spatialmath.NewPoseFromPoint(rep.Position))
			continue
		}
		lookDir = lookDir.Mul(1.0 / norm)

		ov := &spatialmath.OrientationVector{
			OX: lookDir.X,
			OY: lookDir.Y,
			OZ: lookDir.Z,
		}
		poses = append(poses, spatialmath.NewPose(rep.Position, ov))
	}
	return poses
}

// BuildCoverageCloud assembles a colored point cloud of the evaluation:
// each sensor position and frustum wireframe in the sensor's color, seen
// face centers in the color of a sensor seeing them, unseen centers gray.
func BuildCoverageCloud(mesh *rigeval.Mesh, report rigeval.RigReport, fovDegrees float64) (pointcloud.PointCloud, error) {
	cloud := pointcloud.NewBasicEmpty()

	covered := make(map[int]bool, len(report.CoveredFaces))
	for _, f := range report.CoveredFaces {
		covered[f] = true
	}

	for _, rep := range report.Sensors {
		clr := pointcloud.NewColoredData(sensorColors[rep.SensorIndex%len(sensorColors)])

		if err := cloud.Set(rep.Position, clr); err != nil {
			return nil, fmt.Errorf("sensor %d position: %w", rep.SensorIndex, err)
		}
		for _, rec := range rep.Records {
			if err := cloud.Set(rec.FaceCenter, clr); err != nil {
				return nil, fmt.Errorf("sensor %d face %d: %w", rep.SensorIndex, rec.FaceIndex, err)
			}
		}

		corners, err := rigeval.FrustumCorners(rep.Position, r3.Vector{}, fovDegrees)
		if err != nil {
			return nil, fmt.Errorf("sensor %d frustum: %w", rep.SensorIndex, err)
		}
		for _, edge := range rigeval.FrustumEdges() {
			a, b := corners[edge[0]], corners[edge[1]]
			step := b.Sub(a).Mul(1.0 / frustumEdgeSamples)
			for k := 0; k <= frustumEdgeSamples; k++ {
				if err := cloud.Set(a.Add(step.Mul(float64(k))), clr); err != nil {
					return nil, fmt.Errorf("sensor %d frustum edge: %w", rep.SensorIndex, err)
				}
			}
		}
	}

	gray := pointcloud.NewColoredData(uncoveredColor)
	for i := 0; i < mesh.FaceCount(); i++ {
		if covered[i] {
			continue
		}
		if err := cloud.Set(mesh.FaceCenter(i), gray); err != nil {
			return nil, fmt.Errorf("uncovered face %d: %w", i, err)
		}
	}

	return cloud, nil
}

// WriteCoverageCloud writes the cloud to path as ASCII PCD.
func WriteCoverageCloud(path string, cloud pointcloud.PointCloud) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create cloud file: %w", err)
	}
	defer f.Close()

	if err := pointcloud.ToPCD(cloud, f, pointcloud.PCDAscii); err != nil {
		return fmt.Errorf("write PCD: %w", err)
	}
	return nil
}

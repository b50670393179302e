package rigeval

import (
	"errors"
	"math"

	"github.com/golang/geo/r3"
)

// Frustum plane distances and aspect ratio, in mesh units. These mirror the
// rig visualizer and only affect exported wireframes, not visibility tests.
const (
	frustumNear   = 0.25
	frustumFar    = 3.0
	frustumAspect = 1.5
)

// FrustumCorners returns the eight world-space corners of a sensor's viewing
// frustum aimed from sensorPos at lookAt: the near plane's top-left,
// top-right, bottom-right, bottom-left, then the far plane's in the same
// order. fovDegrees is the full vertical field of view.
func FrustumCorners(sensorPos, lookAt r3.Vector, fovDegrees float64) ([8]r3.Vector, error) {
	dir := lookAt.Sub(sensorPos)
	norm := dir.Norm()
	if norm*norm < degenerateEps {
		return [8]r3.Vector{}, errors.New("frustum look-at coincides with sensor position")
	}
	dir = dir.Mul(1.0 / norm)

	tanHalf := math.Tan(fovDegrees / 2 * math.Pi / 180)
	hNear := tanHalf * frustumNear
	wNear := hNear * frustumAspect
	hFar := tanHalf * frustumFar
	wFar := hFar * frustumAspect

	local := [8]r3.Vector{
		{X: -wNear, Y: hNear, Z: frustumNear},
		{X: wNear, Y: hNear, Z: frustumNear},
		{X: wNear, Y: -hNear, Z: frustumNear},
		{X: -wNear, Y: -hNear, Z: frustumNear},
		{X: -wFar, Y: hFar, Z: frustumFar},
		{X: wFar, Y: hFar, Z: frustumFar},
		{X: wFar, Y: -hFar, Z: frustumFar},
		{X: -wFar, Y: -hFar, Z: frustumFar},
	}

	rot := RotationBetween(r3.Vector{Z: 1}, dir)
	var out [8]r3.Vector
	for i, corner := range local {
		out[i] = ApplyRotation(rot, corner).Add(sensorPos)
	}
	return out, nil
}

// FrustumEdges lists the twelve corner-index pairs forming the frustum
// wireframe: four near-plane edges, four far-plane edges, four connectors.
func FrustumEdges() [12][2]int {
	return [12][2]int{
		{0, 1}, {1, 2}, {2, 3}, {3, 0},
		{4, 5}, {5, 6}, {6, 7}, {7, 4},
		{0, 4}, {1, 5}, {2, 6}, {3, 7},
	}
}

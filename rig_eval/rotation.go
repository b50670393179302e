package rigeval

import (
	"fmt"
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"
)

// eulerSingularEps bounds sqrt(R00²+R10²) below which the Euler extraction
// switches to its gimbal-lock branch.
const eulerSingularEps = 1e-6

// RotationX returns the right-handed rotation matrix about X by deg degrees.
func RotationX(deg float64) *mat.Dense {
	c, s := math.Cos(deg*math.Pi/180), math.Sin(deg*math.Pi/180)
	return mat.NewDense(3, 3, []float64{
		1, 0, 0,
		0, c, -s,
		0, s, c,
	})
}

// RotationY returns the right-handed rotation matrix about Y by deg degrees.
func RotationY(deg float64) *mat.Dense {
	c, s := math.Cos(deg*math.Pi/180), math.Sin(deg*math.Pi/180)
	return mat.NewDense(3, 3, []float64{
		c, 0, s,
		0, 1, 0,
		-s, 0, c,
	})
}

// RotationZ returns the right-handed rotation matrix about Z by deg degrees.
func RotationZ(deg float64) *mat.Dense {
	c, s := math.Cos(deg*math.Pi/180), math.Sin(deg*math.Pi/180)
	return mat.NewDense(3, 3, []float64{
		c, -s, 0,
		s, c, 0,
		0, 0, 1,
	})
}

// Identity returns the 3×3 identity matrix.
func Identity() *mat.Dense {
	return mat.NewDense(3, 3, []float64{
		1, 0, 0,
		0, 1, 0,
		0, 0, 1,
	})
}

// Matrix assembles the rotation matrix in the declared composition order.
func (s RotationSpec) Matrix() (*mat.Dense, error) {
	rx := RotationX(s.XDeg)
	rz := RotationZ(s.ZDeg)
	var out mat.Dense
	switch s.Order {
	case OrderZX:
		out.Mul(rz, rx)
	case OrderXZ:
		out.Mul(rx, rz)
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownCompositionOrder, int(s.Order))
	}
	return &out, nil
}

// ApplyRotation transforms v by the 3×3 matrix r.
func ApplyRotation(r mat.Matrix, v r3.Vector) r3.Vector {
	return r3.Vector{
		X: r.At(0, 0)*v.X + r.At(0, 1)*v.Y + r.At(0, 2)*v.Z,
		Y: r.At(1, 0)*v.X + r.At(1, 1)*v.Y + r.At(1, 2)*v.Z,
		Z: r.At(2, 0)*v.X + r.At(2, 1)*v.Y + r.At(2, 2)*v.Z,
	}
}

// MatrixToEuler decomposes a rotation matrix into degrees about X, Y, Z.
// Near beta = ±90° the decomposition is singular; theta is pinned to 0 there
// and only the alpha/theta difference is recoverable.
func MatrixToEuler(r mat.Matrix) EulerAngles {
	sy := math.Sqrt(r.At(0, 0)*r.At(0, 0) + r.At(1, 0)*r.At(1, 0))

	var alpha, beta, theta float64
	if sy >= eulerSingularEps {
		alpha = math.Atan2(r.At(2, 1), r.At(2, 2))
		beta = math.Atan2(-r.At(2, 0), sy)
		theta = math.Atan2(r.At(1, 0), r.At(0, 0))
	} else {
		alpha = math.Atan2(-r.At(1, 2), r.At(1, 1))
		beta = math.Atan2(-r.At(2, 0), sy)
		theta = 0
	}

	return EulerAngles{
		Alpha: alpha * 180 / math.Pi,
		Beta:  beta * 180 / math.Pi,
		Theta: theta * 180 / math.Pi,
	}
}

// EulerToMatrix builds Rz(theta)·Ry(beta)·Rx(alpha) from angles in degrees.
func EulerToMatrix(e EulerAngles) *mat.Dense {
	var yx, zyx mat.Dense
	yx.Mul(RotationY(e.Beta), RotationX(e.Alpha))
	zyx.Mul(RotationZ(e.Theta), &yx)
	return &zyx
}

// RotationBetween returns the matrix rotating unit direction from onto unit
// direction to, via the Rodrigues construction. Near-parallel inputs return
// identity; opposite inputs also fall back to identity, matching the rig
// tooling this reproduces (its frusta never face backwards).
func RotationBetween(from, to r3.Vector) *mat.Dense {
	a := from.Mul(1.0 / from.Norm())
	b := to.Mul(1.0 / to.Norm())
	v := a.Cross(b)
	c := a.Dot(b)

	if v.Norm2() < degenerateEps {
		return Identity()
	}

	k := mat.NewDense(3, 3, []float64{
		0, -v.Z, v.Y,
		v.Z, 0, -v.X,
		-v.Y, v.X, 0,
	})

	var k2 mat.Dense
	k2.Mul(k, k)
	k2.Scale((1-c)/v.Norm2(), &k2)

	var out mat.Dense
	out.Add(Identity(), k)
	out.Add(&out, &k2)
	return &out
}

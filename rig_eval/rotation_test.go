package rigeval

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"
)

func TestRotationMatrices_AxisMapping(t *testing.T) {
	cases := []struct {
		name string
		rot  *mat.Dense
		in   r3.Vector
		want r3.Vector
	}{
		{"Rz(90) x->y", RotationZ(90), r3.Vector{X: 1}, r3.Vector{Y: 1}},
		{"Rx(90) y->z", RotationX(90), r3.Vector{Y: 1}, r3.Vector{Z: 1}},
		{"Ry(90) z->x", RotationY(90), r3.Vector{Z: 1}, r3.Vector{X: 1}},
	}
	for _, tc := range cases {
		got := ApplyRotation(tc.rot, tc.in)
		if got.Sub(tc.want).Norm() > 1e-12 {
			t.Errorf("%s: got %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestRotationSpec_CompositionOrderMatters(t *testing.T) {
	zx, err := RotationSpec{XDeg: 42, ZDeg: 30, Order: OrderZX}.Matrix()
	if err != nil {
		t.Fatalf("zx: %v", err)
	}
	xz, err := RotationSpec{XDeg: 42, ZDeg: 30, Order: OrderXZ}.Matrix()
	if err != nil {
		t.Fatalf("xz: %v", err)
	}

	if mat.EqualApprox(zx, xz, 1e-9) {
		t.Error("Rz·Rx and Rx·Rz agree for non-trivial angles; composition order is being ignored")
	}
}

func TestRotationSpec_UnknownOrder(t *testing.T) {
	_, err := RotationSpec{XDeg: 1, ZDeg: 2, Order: CompositionOrder(99)}.Matrix()
	if err == nil {
		t.Fatal("expected error for unknown composition order")
	}
}

func TestMatrixToEuler_RoundTrip(t *testing.T) {
	cases := []EulerAngles{
		{Alpha: 10, Beta: 20, Theta: 30},
		{Alpha: -45, Beta: 30, Theta: 120},
		{Alpha: 5, Beta: -80, Theta: 170},
	}
	for _, want := range cases {
		got := MatrixToEuler(EulerToMatrix(want))
		if math.Abs(got.Alpha-want.Alpha) > 1e-9 ||
			math.Abs(got.Beta-want.Beta) > 1e-9 ||
			math.Abs(got.Theta-want.Theta) > 1e-9 {
			t.Errorf("round trip of %+v = %+v", want, got)
		}
	}
}

func TestMatrixToEuler_GimbalLock(t *testing.T) {
	// At beta = 90 the decomposition collapses: theta pins to 0 and alpha
	// absorbs the difference. Rz(25)·Ry(90)·Rx(10) must come back as
	// (10-25, 90, 0).
	got := MatrixToEuler(EulerToMatrix(EulerAngles{Alpha: 10, Beta: 90, Theta: 25}))

	if math.Abs(got.Alpha-(-15)) > 1e-6 {
		t.Errorf("alpha = %.6f, want -15", got.Alpha)
	}
	if math.Abs(got.Beta-90) > 1e-6 {
		t.Errorf("beta = %.6f, want 90", got.Beta)
	}
	if got.Theta != 0 {
		t.Errorf("theta = %.6f, want 0", got.Theta)
	}
}

func TestSurveyRotationTable_Eulers(t *testing.T) {
	want := []EulerAngles{
		{Alpha: 42, Beta: 0, Theta: 30},
		{Alpha: 42, Beta: 0, Theta: 60},
		{Alpha: 42, Beta: 0, Theta: 90},
		{Alpha: 60, Beta: 0, Theta: 30},
		{Alpha: 60, Beta: 0, Theta: 60},
		{Alpha: 60, Beta: 0, Theta: 90},
	}

	table := SurveyRotationTable()
	if len(table) != len(want) {
		t.Fatalf("table has %d entries, want %d", len(table), len(want))
	}
	for i, spec := range table {
		r, err := spec.Matrix()
		if err != nil {
			t.Fatalf("entry %d: %v", i, err)
		}
		got := MatrixToEuler(r)
		if math.Abs(got.Alpha-want[i].Alpha) > 1e-9 ||
			math.Abs(got.Beta-want[i].Beta) > 1e-9 ||
			math.Abs(got.Theta-want[i].Theta) > 1e-9 {
			t.Errorf("entry %d: euler = %+v, want %+v", i, got, want[i])
		}
	}
}

func TestTurntableRotationTable_Eulers(t *testing.T) {
	want := []EulerAngles{
		{Alpha: 0, Beta: 0, Theta: 0},
		{Alpha: 24.237370, Beta: -35.414265, Theta: 52.156315},
		{Alpha: 0, Beta: -42, Theta: 90},
		{Alpha: -24.237370, Beta: -35.414265, Theta: 127.843685},
		{Alpha: -37.946136, Beta: -19.546106, Theta: 156.778013},
		{Alpha: -42, Beta: 0, Theta: 180},
	}

	table := TurntableRotationTable()
	if len(table) != len(want) {
		t.Fatalf("table has %d entries, want %d", len(table), len(want))
	}
	for i, spec := range table {
		r, err := spec.Matrix()
		if err != nil {
			t.Fatalf("entry %d: %v", i, err)
		}
		got := MatrixToEuler(r)
		if math.Abs(got.Alpha-want[i].Alpha) > 1e-5 ||
			math.Abs(got.Beta-want[i].Beta) > 1e-5 ||
			math.Abs(got.Theta-want[i].Theta) > 1e-5 {
			t.Errorf("entry %d: euler = %+v, want %+v", i, got, want[i])
		}
	}
}

func TestRotationBetween_MapsDirection(t *testing.T) {
	from := r3.Vector{Z: 1}
	to := r3.Vector{X: 1, Y: 1, Z: 1}.Normalize()

	r := RotationBetween(from, to)

	got := ApplyRotation(r, from)
	if got.Sub(to).Norm() > 1e-9 {
		t.Errorf("rotated direction = %v, want %v", got, to)
	}

	// A rotation matrix satisfies Rᵀ·R = I.
	var prod mat.Dense
	prod.Mul(r.T(), r)
	if !mat.EqualApprox(&prod, Identity(), 1e-9) {
		t.Error("RotationBetween result is not orthonormal")
	}
}

func TestRotationBetween_ParallelIsIdentity(t *testing.T) {
	r := RotationBetween(r3.Vector{Z: 1}, r3.Vector{Z: 4})
	if !mat.EqualApprox(r, Identity(), 1e-12) {
		t.Error("parallel directions should yield the identity rotation")
	}
}

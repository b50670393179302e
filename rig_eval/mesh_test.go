package rigeval

import (
	"errors"
	"math"
	"testing"

	"github.com/golang/geo/r3"
)

func TestIcosahedron_Dimensions(t *testing.T) {
	m := NewIcosahedron()

	if m.VertexCount() != 12 {
		t.Errorf("vertex count = %d, want 12", m.VertexCount())
	}
	if m.FaceCount() != 20 {
		t.Errorf("face count = %d, want 20", m.FaceCount())
	}

	// Every vertex of a centered regular icosahedron sits on the same sphere;
	// the scaling pins that radius to 5.
	for i := 0; i < m.VertexCount(); i++ {
		norm := m.Vertex(i).Norm()
		if math.Abs(norm-5.0) > 1e-9 {
			t.Errorf("vertex %d: norm = %.12f, want 5", i, norm)
		}
	}
}

func TestIcosahedron_ClosedMesh(t *testing.T) {
	m := NewIcosahedron()

	counts := m.EdgeUseCounts()
	if len(counts) != 30 {
		t.Fatalf("edge count = %d, want 30", len(counts))
	}
	for edge, n := range counts {
		if n != 2 {
			t.Errorf("edge %v used by %d faces, want 2", edge, n)
		}
	}
}

func TestIcosahedron_OutwardUnitNormals(t *testing.T) {
	m := NewIcosahedron()

	for i := 0; i < m.FaceCount(); i++ {
		normal, err := m.FaceNormal(i)
		if err != nil {
			t.Fatalf("face %d: unexpected error: %v", i, err)
		}
		if math.Abs(normal.Norm()-1.0) > 1e-9 {
			t.Errorf("face %d: normal norm = %.12f, want 1", i, normal.Norm())
		}
		// Winding must put normals outward for the back-face test to mean
		// anything: the normal points away from the origin.
		if normal.Dot(m.FaceCenter(i)) <= 0 {
			t.Errorf("face %d: normal points inward", i)
		}
	}
}

func TestNewMesh_RejectsOutOfRangeIndex(t *testing.T) {
	verts := []r3.Vector{{X: 1}, {Y: 1}, {Z: 1}}

	_, err := NewMesh(verts, [][3]int{{0, 1, 3}})
	if err == nil {
		t.Fatal("expected error for face index 3 with 3 vertices")
	}

	_, err = NewMesh(verts, [][3]int{{0, 1, -1}})
	if err == nil {
		t.Fatal("expected error for negative face index")
	}
}

func TestFaceNormal_DegenerateFace(t *testing.T) {
	p := r3.Vector{X: 1, Y: 2, Z: 3}
	m, err := NewMesh([]r3.Vector{p, p, p}, [][3]int{{0, 1, 2}})
	if err != nil {
		t.Fatalf("NewMesh: %v", err)
	}

	_, err = m.FaceNormal(0)
	var degErr *DegenerateFaceError
	if !errors.As(err, &degErr) {
		t.Fatalf("FaceNormal error = %v, want DegenerateFaceError", err)
	}
	if degErr.FaceIndex != 0 {
		t.Errorf("degenerate face index = %d, want 0", degErr.FaceIndex)
	}
}

func TestRotatedBy_PreservesShape(t *testing.T) {
	m := NewIcosahedron()
	rotated := m.RotatedBy(RotationZ(90))

	if rotated.FaceCount() != m.FaceCount() {
		t.Fatalf("rotated face count = %d, want %d", rotated.FaceCount(), m.FaceCount())
	}

	// Rz(90) maps (x, y, z) to (-y, x, z).
	for i := 0; i < m.VertexCount(); i++ {
		v := m.Vertex(i)
		want := r3.Vector{X: -v.Y, Y: v.X, Z: v.Z}
		got := rotated.Vertex(i)
		if got.Sub(want).Norm() > 1e-9 {
			t.Errorf("vertex %d: rotated = %v, want %v", i, got, want)
		}
	}

	// The source mesh is untouched.
	if m.Vertex(0) != NewIcosahedron().Vertex(0) {
		t.Error("rotation mutated the source mesh")
	}
}

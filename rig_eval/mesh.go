package rigeval

import (
	"fmt"
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"
)

// degenerateEps is the squared-norm floor below which a cross product or a
// view vector is considered degenerate.
const degenerateEps = 1e-12

// Mesh is an immutable triangle mesh: vertices plus a face index table.
type Mesh struct {
	vertices []r3.Vector
	faces    [][3]int
}

// NewMesh builds a mesh after checking that every face index is in range.
func NewMesh(vertices []r3.Vector, faces [][3]int) (*Mesh, error) {
	for fi, f := range faces {
		for _, vi := range f {
			if vi < 0 || vi >= len(vertices) {
				return nil, fmt.Errorf("face %d references vertex %d, mesh has %d vertices", fi, vi, len(vertices))
			}
		}
	}
	m := &Mesh{
		vertices: make([]r3.Vector, len(vertices)),
		faces:    make([][3]int, len(faces)),
	}
	copy(m.vertices, vertices)
	copy(m.faces, faces)
	return m, nil
}

// NewIcosahedron builds the calibration target: a regular icosahedron from
// the three golden-ratio rectangles, scaled so the first vertex sits at
// norm 5.
func NewIcosahedron() *Mesh {
	phi := (1 + math.Sqrt(5)) / 2

	vertices := []r3.Vector{
		{X: -1, Y: phi, Z: 0}, {X: 1, Y: phi, Z: 0},
		{X: -1, Y: -phi, Z: 0}, {X: 1, Y: -phi, Z: 0},
		{X: 0, Y: -1, Z: phi}, {X: 0, Y: 1, Z: phi},
		{X: 0, Y: -1, Z: -phi}, {X: 0, Y: 1, Z: -phi},
		{X: phi, Y: 0, Z: -1}, {X: phi, Y: 0, Z: 1},
		{X: -phi, Y: 0, Z: -1}, {X: -phi, Y: 0, Z: 1},
	}
	scale := 5.0 / vertices[0].Norm()
	for i := range vertices {
		vertices[i] = vertices[i].Mul(scale)
	}

	faces := [][3]int{
		{0, 11, 5}, {0, 5, 1}, {0, 1, 7}, {0, 7, 10}, {0, 10, 11},
		{1, 5, 9}, {5, 11, 4}, {11, 10, 2}, {10, 7, 6}, {7, 1, 8},
		{3, 9, 4}, {3, 4, 2}, {3, 2, 6}, {3, 6, 8}, {3, 8, 9},
		{4, 9, 5}, {2, 4, 11}, {6, 2, 10}, {8, 6, 7}, {9, 8, 1},
	}

	return &Mesh{vertices: vertices, faces: faces}
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int { return len(m.vertices) }

// FaceCount returns the number of faces.
func (m *Mesh) FaceCount() int { return len(m.faces) }

// Vertex returns vertex i.
func (m *Mesh) Vertex(i int) r3.Vector { return m.vertices[i] }

// Face returns the vertex indices of face i.
func (m *Mesh) Face(i int) [3]int { return m.faces[i] }

// FaceCenter returns the centroid of face i.
func (m *Mesh) FaceCenter(i int) r3.Vector {
	f := m.faces[i]
	sum := m.vertices[f[0]].Add(m.vertices[f[1]]).Add(m.vertices[f[2]])
	return sum.Mul(1.0 / 3.0)
}

// FaceNormal returns the outward unit normal of face i, derived from the
// winding order as normalize((v1−v0)×(v2−v0)). Collinear or coincident
// vertices yield a DegenerateFaceError.
func (m *Mesh) FaceNormal(i int) (r3.Vector, error) {
	f := m.faces[i]
	v0 := m.vertices[f[0]]
	e1 := m.vertices[f[1]].Sub(v0)
	e2 := m.vertices[f[2]].Sub(v0)
	cr := e1.Cross(e2)
	n := cr.Norm()
	if n*n < degenerateEps {
		return r3.Vector{}, &DegenerateFaceError{FaceIndex: i}
	}
	return cr.Mul(1.0 / n), nil
}

// RotatedBy returns a new mesh with every vertex transformed by R (v' = R·v).
// The face table is shared structure-by-value; the receiver is unchanged.
func (m *Mesh) RotatedBy(r mat.Matrix) *Mesh {
	out := &Mesh{
		vertices: make([]r3.Vector, len(m.vertices)),
		faces:    make([][3]int, len(m.faces)),
	}
	for i, v := range m.vertices {
		out.vertices[i] = ApplyRotation(r, v)
	}
	copy(out.faces, m.faces)
	return out
}

// EdgeUseCounts returns how many faces share each undirected edge. A closed
// manifold mesh has every count equal to exactly 2.
func (m *Mesh) EdgeUseCounts() map[[2]int]int {
	counts := make(map[[2]int]int, len(m.faces)*3/2)
	for _, f := range m.faces {
		pairs := [3][2]int{{f[0], f[1]}, {f[1], f[2]}, {f[2], f[0]}}
		for _, p := range pairs {
			if p[0] > p[1] {
				p[0], p[1] = p[1], p[0]
			}
			counts[p]++
		}
	}
	return counts
}

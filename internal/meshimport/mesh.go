package meshimport

import (
	"fmt"

	"shadow-demo/internal/linalg"
)

// Face is a triangle of vertex indices.
type Face [3]uint32

// Mesh holds flat vertex attribute arrays and triangle faces. Normals and UVs
// are either empty or the same length as Positions.
type Mesh struct {
	Positions []linalg.Vec3
	Normals   []linalg.Vec3
	UVs       []linalg.Vec2
	Faces     []Face
}

func (m *Mesh) Empty() bool {
	return m == nil || len(m.Positions) == 0 || len(m.Faces) == 0
}

func (m *Mesh) VertexCount() int {
	if m == nil {
		return 0
	}
	return len(m.Positions)
}

// Indices flattens Faces into a GL element array.
func (m *Mesh) Indices() []uint32 {
	if m == nil {
		return nil
	}
	out := make([]uint32, 0, len(m.Faces)*3)
	for _, f := range m.Faces {
		out = append(out, f[0], f[1], f[2])
	}
	return out
}

// Validate checks attribute lengths and that every index refers to a vertex.
func (m *Mesh) Validate() error {
	n := len(m.Positions)
	if len(m.Normals) != 0 && len(m.Normals) != n {
		return fmt.Errorf("%d normals for %d vertices", len(m.Normals), n)
	}
	if len(m.UVs) != 0 && len(m.UVs) != n {
		return fmt.Errorf("%d uvs for %d vertices", len(m.UVs), n)
	}
	for i, f := range m.Faces {
		for _, idx := range f {
			if int(idx) >= n {
				return fmt.Errorf("face %d: index %d out of range (%d vertices)", i, idx, n)
			}
		}
	}
	return nil
}

// FlatPositions returns xyz triples.
func (m *Mesh) FlatPositions() []float32 { return flatten3(m.Positions) }

// FlatNormals returns xyz triples, or nil when the mesh has no normals.
func (m *Mesh) FlatNormals() []float32 { return flatten3(m.Normals) }

// FlatUVs returns uv pairs, or nil when the mesh has no texture coordinates.
func (m *Mesh) FlatUVs() []float32 {
	if len(m.UVs) == 0 {
		return nil
	}
	out := make([]float32, 0, len(m.UVs)*2)
	for _, uv := range m.UVs {
		out = append(out, uv.X, uv.Y)
	}
	return out
}

func flatten3(vs []linalg.Vec3) []float32 {
	if len(vs) == 0 {
		return nil
	}
	out := make([]float32, 0, len(vs)*3)
	for _, v := range vs {
		out = append(out, v.X, v.Y, v.Z)
	}
	return out
}

package meshimport

import "shadow-demo/internal/linalg"

// smoothNormals averages area weighted face normals over every vertex that
// shares a source position, so UV seams do not split the shading.
func smoothNormals(m *Mesh, srcPos []int) []linalg.Vec3 {
	acc := make(map[int]linalg.Vec3, len(m.Positions))
	for _, f := range m.Faces {
		a, b, c := m.Positions[f[0]], m.Positions[f[1]], m.Positions[f[2]]
		n := b.Sub(a).Cross(c.Sub(a))
		for _, idx := range f {
			key := srcPos[idx]
			acc[key] = acc[key].Add(n)
		}
	}
	normals := make([]linalg.Vec3, len(m.Positions))
	for i := range normals {
		normals[i] = acc[srcPos[i]].Normalise()
	}
	return normals
}

// reorderByFirstUse renumbers vertices in the order faces first reference
// them, which keeps the post-transform cache warm and makes the vertex fetch
// sequential. Unreferenced vertices are dropped.
func reorderByFirstUse(m *Mesh) {
	remap := make([]int, len(m.Positions))
	for i := range remap {
		remap[i] = -1
	}
	order := make([]uint32, 0, len(m.Positions))
	for fi := range m.Faces {
		for k, idx := range m.Faces[fi] {
			if remap[idx] < 0 {
				remap[idx] = len(order)
				order = append(order, idx)
			}
			m.Faces[fi][k] = uint32(remap[idx])
		}
	}

	positions := make([]linalg.Vec3, len(order))
	for i, old := range order {
		positions[i] = m.Positions[old]
	}
	m.Positions = positions

	if len(m.Normals) > 0 {
		normals := make([]linalg.Vec3, len(order))
		for i, old := range order {
			normals[i] = m.Normals[old]
		}
		m.Normals = normals
	}
	if len(m.UVs) > 0 {
		uvs := make([]linalg.Vec2, len(order))
		for i, old := range order {
			uvs[i] = m.UVs[old]
		}
		m.UVs = uvs
	}
}

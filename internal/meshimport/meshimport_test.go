package meshimport

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shadow-demo/internal/linalg"
)

const eps = 1e-5

func TestFlagBits(t *testing.T) {
	assert.Equal(t, Flags(0b10000000), FlagCentre)
	assert.Equal(t, Flags(0b01000000), FlagUnitRescale)
	assert.Equal(t, Flags(0b00100000), FlagFlipNormals)
	assert.Equal(t, Flags(0b00010000), FlagFlipWinding)

	for f := Flags(0); f < 16; f++ {
		packed := f << 4
		o := OptionsFromFlags(packed)
		assert.Equal(t, packed, o.Flags())
		assert.True(t, o.MergeVertices && o.SmoothNormals && o.ImproveCacheLocality)
	}

	o := OptionsFromFlags(FlagCentre | FlagFlipNormals)
	assert.True(t, o.Centre)
	assert.True(t, o.FlipNormals)
	assert.False(t, o.UnitRescale)
	assert.False(t, o.FlipWinding)
}

func TestLoadUnitCube(t *testing.T) {
	m, err := Load(NewFileImporter(), "testdata/cube.obj", OptionsFromFlags(FlagCentre|FlagUnitRescale))
	require.NoError(t, err)

	assert.Equal(t, 8, m.VertexCount())
	assert.Len(t, m.Faces, 12)
	require.NoError(t, m.Validate())

	b := ComputeBounds(m.Positions)
	for axis := 0; axis < 3; axis++ {
		assert.InDelta(t, -0.5, b.Min.Component(axis), eps)
		assert.InDelta(t, 0.5, b.Max.Component(axis), eps)
	}

	// generated smooth normals point away from the centre
	require.Len(t, m.Normals, 8)
	for i, n := range m.Normals {
		assert.InDelta(t, 1, n.Magnitude(), eps)
		assert.Greater(t, n.Dot(m.Positions[i]), float32(0))
	}
}

func TestLoadFlipNormals(t *testing.T) {
	m, err := Load(NewFileImporter(), "testdata/cube.obj", OptionsFromFlags(FlagFlipNormals))
	require.NoError(t, err)
	for i, n := range m.Normals {
		assert.Less(t, n.Dot(m.Positions[i]), float32(0))
	}
}

func TestCentre(t *testing.T) {
	positions := []linalg.Vec3{{2, -1, 10}, {6, 3, 11}, {4, 0, 10.5}}
	Centre(positions, ComputeBounds(positions))

	b := ComputeBounds(positions)
	assert.Less(t, abs(b.Min.X+b.Max.X), float32(eps))
	assert.Less(t, abs(b.Min.Y+b.Max.Y), float32(eps))
	assert.Less(t, abs(b.Min.Z+b.Max.Z), float32(eps))
}

func TestComputeBoundsAwayFromOrigin(t *testing.T) {
	b := ComputeBounds([]linalg.Vec3{{2, 3, 4}, {5, 6, 7}})
	assert.Equal(t, linalg.Vec3{X: 2, Y: 3, Z: 4}, b.Min)
	assert.Equal(t, linalg.Vec3{X: 5, Y: 6, Z: 7}, b.Max)
	assert.Equal(t, BoundingBox{}, ComputeBounds(nil))
}

func TestNormaliseScale(t *testing.T) {
	tests := []struct {
		name      string
		positions []linalg.Vec3
	}{
		{"two unit cube", []linalg.Vec3{{-1, -1, -1}, {1, 1, 1}}},
		{"long x", []linalg.Vec3{{0, 0, 0}, {10, 2, 1}}},
		{"flat plane", []linalg.Vec3{{-3, 0, -2}, {3, 0, 2}}},
	}
	for _, c := range tests {
		t.Run(c.name, func(t *testing.T) {
			require.NoError(t, NormaliseScale(c.positions, ComputeBounds(c.positions)))
			assert.InDelta(t, 1, ComputeBounds(c.positions).LargestExtent(), eps)
		})
	}

	cube := []linalg.Vec3{{-1, -1, -1}, {1, 1, 1}}
	require.NoError(t, NormaliseScale(cube, ComputeBounds(cube)))
	assert.Equal(t, linalg.Vec3{X: -0.5, Y: -0.5, Z: -0.5}, cube[0])
}

func TestNormaliseScaleDegenerate(t *testing.T) {
	positions := []linalg.Vec3{{1, 1, 1}, {1, 1, 1}}
	err := NormaliseScale(positions, ComputeBounds(positions))
	assert.ErrorIs(t, err, ErrDegenerateBounds)
	assert.Equal(t, linalg.Vec3{X: 1, Y: 1, Z: 1}, positions[0])
}

func TestParseOBJTriangulates(t *testing.T) {
	src := `
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
v -1 0.5 0
vt 0 0
vt 1 0
vt 1 1
vt 0 1
vn 0 0 1
f 1/1/1 2/2/1 3/3/1 4/4/1
f -5//1 -2//1 -1//1
`
	opts := DefaultOptions()
	opts.ImproveCacheLocality = false
	m, err := ParseOBJ(strings.NewReader(src), opts)
	require.NoError(t, err)

	assert.Equal(t, []Face{{0, 1, 2}, {0, 2, 3}, {4, 5, 6}}, m.Faces)
	assert.Len(t, m.UVs, m.VertexCount())
	assert.Equal(t, linalg.Vec2{X: 1, Y: 1}, m.UVs[2])
	assert.Equal(t, linalg.Vec3{Z: 1}, m.Normals[0])
	require.NoError(t, m.Validate())
}

func TestParseOBJPentagonFan(t *testing.T) {
	src := "v 0 0 0\nv 1 0 0\nv 1.5 1 0\nv 0.5 2 0\nv -0.5 1 0\nf 1 2 3 4 5\n"
	m, err := ParseOBJ(strings.NewReader(src), DefaultOptions())
	require.NoError(t, err)
	assert.Len(t, m.Faces, 3)
	for _, n := range m.Normals {
		assert.InDelta(t, 1, n.Z, eps)
	}
}

func TestParseOBJFlipWinding(t *testing.T) {
	src := "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3\n"
	opts := DefaultOptions()
	opts.FlipWinding = true
	m, err := ParseOBJ(strings.NewReader(src), opts)
	require.NoError(t, err)

	f := m.Faces[0]
	a, b, c := m.Positions[f[0]], m.Positions[f[1]], m.Positions[f[2]]
	assert.Less(t, b.Sub(a).Cross(c.Sub(a)).Z, float32(0))
	// generated normals follow the flipped winding
	assert.InDelta(t, -1, m.Normals[0].Z, eps)
}

func TestParseOBJWithoutMerge(t *testing.T) {
	src := "v 0 0 0\nv 1 0 0\nv 1 1 0\nv 0 1 0\nf 1 2 3\nf 1 3 4\n"
	opts := DefaultOptions()
	opts.MergeVertices = false
	m, err := ParseOBJ(strings.NewReader(src), opts)
	require.NoError(t, err)
	assert.Equal(t, 6, m.VertexCount())

	m, err = ParseOBJ(strings.NewReader(src), DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 4, m.VertexCount())
}

func TestParseOBJCacheOrder(t *testing.T) {
	src := "v 0 0 0\nv 1 0 0\nv 1 1 0\nv 0 1 0\nf 4 3 1\n"
	m, err := ParseOBJ(strings.NewReader(src), DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, []Face{{0, 1, 2}}, m.Faces)
	assert.Equal(t, linalg.Vec3{Y: 1}, m.Positions[0])
	assert.Equal(t, 3, m.VertexCount())
}

func TestParseOBJErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"index out of range", "v 0 0 0\nf 1 2 3\n"},
		{"bad float", "v 0 x 0\n"},
		{"two vertex face", "v 0 0 0\nv 1 0 0\nf 1 2\n"},
		{"bad index", "v 0 0 0\nf a b c\n"},
	}
	for _, c := range tests {
		t.Run(c.name, func(t *testing.T) {
			_, err := ParseOBJ(strings.NewReader(c.src), DefaultOptions())
			assert.Error(t, err)
		})
	}

	_, err := ParseOBJ(strings.NewReader("# nothing\nv 0 0 0\n"), DefaultOptions())
	assert.ErrorIs(t, err, ErrEmptyScene)
}

func TestLoadFailuresReturnEmptyMesh(t *testing.T) {
	m, err := Load(NewFileImporter(), "testdata/missing.obj", DefaultOptions())
	assert.ErrorIs(t, err, ErrImport)
	require.NotNil(t, m)
	assert.True(t, m.Empty())

	m, err = Load(NewFileImporter(), "testdata/cube.fbx", DefaultOptions())
	assert.ErrorIs(t, err, ErrImport)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
	assert.True(t, m.Empty())

	empty := ImporterFunc(func(string, Options) (*Mesh, error) { return &Mesh{}, nil })
	_, err = Load(empty, "x.obj", DefaultOptions())
	assert.ErrorIs(t, err, ErrEmptyScene)

	broken := ImporterFunc(func(string, Options) (*Mesh, error) {
		return &Mesh{Positions: []linalg.Vec3{{}}, Faces: []Face{{0, 0, 4}}}, nil
	})
	m, err = Load(broken, "x.obj", DefaultOptions())
	assert.ErrorIs(t, err, ErrImport)
	assert.True(t, m.Empty())
}

func TestIndicesAndFlatten(t *testing.T) {
	m := &Mesh{
		Positions: []linalg.Vec3{{1, 2, 3}, {4, 5, 6}, {7, 8, 9}},
		UVs:       []linalg.Vec2{{0, 1}, {1, 0}, {1, 1}},
		Faces:     []Face{{0, 1, 2}},
	}
	assert.Equal(t, []uint32{0, 1, 2}, m.Indices())
	assert.Equal(t, []float32{1, 2, 3, 4, 5, 6, 7, 8, 9}, m.FlatPositions())
	assert.Nil(t, m.FlatNormals())
	assert.Equal(t, []float32{0, 1, 1, 0, 1, 1}, m.FlatUVs())

	var nilMesh *Mesh
	assert.True(t, nilMesh.Empty())
	assert.Nil(t, nilMesh.Indices())
}

func abs(f float32) float32 {
	if f < 0 {
		return -f
	}
	return f
}

package meshimport

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"shadow-demo/internal/linalg"
)

// OBJ imports Wavefront .obj geometry. Every object and group in the file is
// merged into one mesh; materials are ignored.
type OBJ struct{}

func (OBJ) Import(path string, opts Options) (*Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrImport, err)
	}
	defer f.Close()

	m, err := ParseOBJ(f, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrImport, path, err)
	}
	return m, nil
}

// objCorner holds the resolved 0-based indices of one face corner; -1 marks a
// missing attribute.
type objCorner struct {
	v, vt, vn int
}

type objReader struct {
	opts Options

	positions []linalg.Vec3
	uvs       []linalg.Vec2
	normals   []linalg.Vec3

	mesh   Mesh
	srcPos []int // position index each mesh vertex came from
	lookup map[objCorner]uint32

	missingNormal bool
}

// ParseOBJ reads OBJ text from r, triangulating polygons as fans.
func ParseOBJ(r io.Reader, opts Options) (*Mesh, error) {
	o := &objReader{
		opts:   opts,
		lookup: make(map[objCorner]uint32),
	}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || text[0] == '#' {
			continue
		}
		fields := strings.Fields(text)
		var err error
		switch fields[0] {
		case "v":
			var v linalg.Vec3
			v, err = parseVec3(fields[1:])
			o.positions = append(o.positions, v)
		case "vn":
			var v linalg.Vec3
			v, err = parseVec3(fields[1:])
			o.normals = append(o.normals, v)
		case "vt":
			var v linalg.Vec2
			v, err = parseVec2(fields[1:])
			o.uvs = append(o.uvs, v)
		case "f":
			err = o.face(fields[1:])
		default:
			// o, g, s, mtllib, usemtl and friends carry nothing we keep
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(o.mesh.Faces) == 0 {
		return nil, ErrEmptyScene
	}
	return o.finish(), nil
}

func (o *objReader) face(refs []string) error {
	if len(refs) < 3 {
		return fmt.Errorf("face with %d vertices", len(refs))
	}
	idx := make([]uint32, len(refs))
	for i, ref := range refs {
		c, err := o.corner(ref)
		if err != nil {
			return err
		}
		idx[i] = o.vertex(c)
	}
	for i := 1; i+1 < len(idx); i++ {
		f := Face{idx[0], idx[i], idx[i+1]}
		if o.opts.FlipWinding {
			f[1], f[2] = f[2], f[1]
		}
		o.mesh.Faces = append(o.mesh.Faces, f)
	}
	return nil
}

func (o *objReader) corner(ref string) (objCorner, error) {
	c := objCorner{-1, -1, -1}
	parts := strings.Split(ref, "/")
	if len(parts) > 3 {
		return c, fmt.Errorf("bad face reference %q", ref)
	}
	var err error
	if c.v, err = resolve(parts[0], len(o.positions)); err != nil {
		return c, err
	}
	if c.v < 0 {
		return c, fmt.Errorf("face reference %q has no position", ref)
	}
	if len(parts) > 1 {
		if c.vt, err = resolve(parts[1], len(o.uvs)); err != nil {
			return c, err
		}
	}
	if len(parts) > 2 {
		if c.vn, err = resolve(parts[2], len(o.normals)); err != nil {
			return c, err
		}
	}
	return c, nil
}

// resolve converts a 1-based or negative OBJ index to 0-based. Empty means absent.
func resolve(s string, n int) (int, error) {
	if s == "" {
		return -1, nil
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return -1, fmt.Errorf("bad index %q: %w", s, err)
	}
	if i < 0 {
		i = n + i
	} else {
		i--
	}
	if i < 0 || i >= n {
		return -1, fmt.Errorf("index %s out of range (%d defined)", s, n)
	}
	return i, nil
}

func (o *objReader) vertex(c objCorner) uint32 {
	if o.opts.MergeVertices {
		if idx, ok := o.lookup[c]; ok {
			return idx
		}
	}
	idx := uint32(len(o.mesh.Positions))
	o.mesh.Positions = append(o.mesh.Positions, o.positions[c.v])
	o.srcPos = append(o.srcPos, c.v)

	var uv linalg.Vec2
	if c.vt >= 0 {
		uv = o.uvs[c.vt]
	}
	o.mesh.UVs = append(o.mesh.UVs, uv)

	var n linalg.Vec3
	if c.vn >= 0 {
		n = o.normals[c.vn]
	} else {
		o.missingNormal = true
	}
	o.mesh.Normals = append(o.mesh.Normals, n)

	if o.opts.MergeVertices {
		o.lookup[c] = idx
	}
	return idx
}

func (o *objReader) finish() *Mesh {
	m := &o.mesh
	if len(o.uvs) == 0 {
		m.UVs = nil
	}
	if o.missingNormal {
		m.Normals = nil
		if o.opts.SmoothNormals {
			m.Normals = smoothNormals(m, o.srcPos)
		}
	}
	if o.opts.ImproveCacheLocality {
		reorderByFirstUse(m)
	}
	return m
}

func parseVec3(fields []string) (linalg.Vec3, error) {
	if len(fields) < 3 {
		return linalg.Vec3{}, fmt.Errorf("want 3 components, got %d", len(fields))
	}
	var out [3]float32
	for i := range out {
		f, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return linalg.Vec3{}, err
		}
		out[i] = float32(f)
	}
	return linalg.Vec3{X: out[0], Y: out[1], Z: out[2]}, nil
}

func parseVec2(fields []string) (linalg.Vec2, error) {
	if len(fields) < 2 {
		return linalg.Vec2{}, fmt.Errorf("want 2 components, got %d", len(fields))
	}
	u, err := strconv.ParseFloat(fields[0], 32)
	if err != nil {
		return linalg.Vec2{}, err
	}
	v, err := strconv.ParseFloat(fields[1], 32)
	if err != nil {
		return linalg.Vec2{}, err
	}
	return linalg.Vec2{X: float32(u), Y: float32(v)}, nil
}

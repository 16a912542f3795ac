package meshimport

import (
	"errors"

	"shadow-demo/internal/linalg"
)

// ErrDegenerateBounds is returned by NormaliseScale when the mesh has no extent.
var ErrDegenerateBounds = errors.New("mesh bounding box has zero extent")

// BoundingBox is an axis aligned box.
type BoundingBox struct {
	Min, Max linalg.Vec3
}

// ComputeBounds returns the tight box around positions. It starts from the
// first vertex, so meshes that do not straddle the origin get correct bounds.
func ComputeBounds(positions []linalg.Vec3) BoundingBox {
	if len(positions) == 0 {
		return BoundingBox{}
	}
	b := BoundingBox{Min: positions[0], Max: positions[0]}
	for _, p := range positions[1:] {
		b.Min = b.Min.Min(p)
		b.Max = b.Max.Max(p)
	}
	return b
}

func (b BoundingBox) Extent() linalg.Vec3 { return b.Max.Sub(b.Min) }

func (b BoundingBox) Centre() linalg.Vec3 { return b.Min.Add(b.Max).Scale(0.5) }

// LargestExtent returns the length of the longest axis.
func (b BoundingBox) LargestExtent() float32 {
	e := b.Extent()
	return max(e.X, e.Y, e.Z)
}

// Centre translates positions so the box centre sits at the local origin.
func Centre(positions []linalg.Vec3, bounds BoundingBox) {
	offset := bounds.Centre()
	for i := range positions {
		positions[i] = positions[i].Sub(offset)
	}
}

// NormaliseScale uniformly scales positions by the reciprocal of the largest
// axis extent, so the longest side of the box becomes 1. A box with no extent
// on any axis is left untouched and reported.
func NormaliseScale(positions []linalg.Vec3, bounds BoundingBox) error {
	largest := bounds.LargestExtent()
	if largest <= 0 {
		return ErrDegenerateBounds
	}
	s := 1 / largest
	for i := range positions {
		positions[i] = positions[i].Scale(s)
	}
	return nil
}

// FlipNormals negates every normal component.
func FlipNormals(normals []linalg.Vec3) {
	for i := range normals {
		normals[i] = normals[i].Negate()
	}
}

// PostProcess runs the backend independent second pass: centre, unit rescale
// and normal flip. Bounds are measured once before any step runs.
func PostProcess(m *Mesh, opts Options) error {
	if m == nil || !opts.needsPostProcess() {
		return nil
	}
	var err error
	if opts.Centre || opts.UnitRescale {
		bounds := ComputeBounds(m.Positions)
		if opts.Centre {
			Centre(m.Positions, bounds)
		}
		if opts.UnitRescale {
			err = NormaliseScale(m.Positions, bounds)
		}
	}
	if opts.FlipNormals {
		FlipNormals(m.Normals)
	}
	return err
}

package render

import (
	"github.com/chewxy/math32"

	"shadow-demo/internal/linalg"
)

// LightCamera is the directional light's point of view: an orthographic box
// placed at Position and turned by Pitch then Yaw. The box does not follow
// the view frustum.
type LightCamera struct {
	Position linalg.Vec3
	Pitch    float32 // radians about x
	Yaw      float32 // radians about y

	Extent    float32 // half size of the ortho box
	Near, Far float32
}

// View is Rx(pitch) * Ry(yaw) * T(-position).
func (l LightCamera) View() linalg.Mat4 {
	m := linalg.Identity4()
	m.RotateX(l.Pitch)
	m.RotateY(l.Yaw)
	m.Translate(-l.Position.X, -l.Position.Y, -l.Position.Z)
	return m
}

func (l LightCamera) Projection() linalg.Mat4 {
	e := l.Extent
	return linalg.Orthographic(-e, e, e, -e, l.Near, l.Far)
}

// ViewProjection maps world space into the light's clip space.
func (l LightCamera) ViewProjection() linalg.Mat4 {
	return l.Projection().Mul(l.View())
}

// Orbit moves the light onto the sphere of the given radius so that its
// current Pitch and Yaw aim it at the origin.
func (l *LightCamera) Orbit(radius float32) {
	sp, cp := math32.Sincos(l.Pitch)
	sy, cy := math32.Sincos(l.Yaw)
	l.Position = linalg.Vec3{X: -radius * cp * sy, Y: radius * sp, Z: radius * cp * cy}
}

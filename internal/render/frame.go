// Package render draws a scene.Arena with a shadow depth pre-pass followed by
// a lit pass that samples the resulting depth map.
package render

import (
	"shadow-demo/internal/linalg"
)

// MVPMode selects how u_mvp is built for objects with a parent.
type MVPMode int

const (
	// LocalMVP uses projection * view * model and ignores ancestors, while
	// u_model still carries the full world matrix.
	LocalMVP MVPMode = iota
	// WorldMVP uses projection * view * world.
	WorldMVP
)

func (m MVPMode) String() string {
	if m == WorldMVP {
		return "world"
	}
	return "local"
}

// FrameContext is everything one frame needs to know about the camera, the
// light and the toggles the user controls. It is built fresh by the driver
// every frame.
type FrameContext struct {
	View       linalg.Mat4
	Projection linalg.Mat4
	ViewPos    linalg.Vec3

	Light LightCamera

	Width, Height int

	Wireframe bool
	Shadows   bool
	MVP       MVPMode
}

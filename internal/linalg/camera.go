package linalg

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

func DegToRad(degrees float32) float32 {
	return degrees * (math32.Pi / 180)
}

// Orthographic builds an OpenGL style orthographic projection mapping the box
// [left,right] x [bottom,top] x [-near,-far] onto the NDC cube. Degenerate
// bounds divide by zero; callers validate them.
func Orthographic(left, right, top, bottom, near, far float32) Mat4 {
	m := Identity4()
	m[0] = 2 / (right - left)
	m[5] = 2 / (top - bottom)
	m[10] = -2 / (far - near)
	m[3] = -(right + left) / (right - left)
	m[7] = -(top + bottom) / (top - bottom)
	m[11] = -(far + near) / (far - near)
	return m
}

// Perspective builds a symmetric frustum projection. fovY is in radians and
// far must be greater than near.
func Perspective(fovY, aspect, near, far float32) Mat4 {
	h := 2 * near * math32.Tan(fovY/2)
	w := aspect * h

	var m Mat4
	m[0] = (2 * near) / w
	m[5] = (2 * near) / h
	m[10] = -(far + near) / (far - near)
	m[11] = -(2 * far * near) / (far - near)
	m[14] = -1
	m[15] = 0
	return m
}

// LookAt builds a right-handed view matrix.
func LookAt(eye, centre, up Vec3) Mat4 {
	return FromGL(mgl32.LookAtV(
		mgl32.Vec3{eye.X, eye.Y, eye.Z},
		mgl32.Vec3{centre.X, centre.Y, centre.Z},
		mgl32.Vec3{up.X, up.Y, up.Z},
	))
}

package linalg

import (
	"strconv"
	"strings"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Mat3 is a row-major 3x3 matrix.
type Mat3 [9]float32

// Mat4 is a row-major 4x4 matrix.
//
// Every transform helper right-multiplies: m.Translate(...) sets m = m * T.
// Building a model matrix therefore goes translate, rotate, scale, which yields
// the usual scale-then-rotate-then-translate when the shader computes M * v.
type Mat4 [16]float32

func setIdentity(data []float32, n int) {
	for i := range data {
		if i%n == i/n {
			data[i] = 1
		} else {
			data[i] = 0
		}
	}
}

// multiply computes dst = dst * with for n x n row-major matrices. The product
// is accumulated in a scratch buffer before it is copied back.
func multiply(dst, with []float32, n int) {
	var scratch [16]float32
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			var sum float32
			for k := 0; k < n; k++ {
				sum += dst[n*i+k] * with[n*k+j]
			}
			scratch[n*i+j] = sum
		}
	}
	copy(dst, scratch[:n*n])
}

func format(data []float32, n int) string {
	var sb strings.Builder
	for i, v := range data {
		sb.WriteString(strconv.FormatFloat(float64(v), 'f', 6, 32))
		if (i+1)%n == 0 {
			sb.WriteByte('\n')
		} else {
			sb.WriteByte(' ')
		}
	}
	return sb.String()
}

func Identity3() Mat3 {
	var m Mat3
	setIdentity(m[:], 3)
	return m
}

func Zero3() Mat3 { return Mat3{} }

// Multiply sets m = m * with.
func (m *Mat3) Multiply(with Mat3) {
	multiply(m[:], with[:], 3)
}

// Mul returns m * with without modifying m.
func (m Mat3) Mul(with Mat3) Mat3 {
	m.Multiply(with)
	return m
}

// Translate applies a 2D translation.
func (m *Mat3) Translate(x, y float32) {
	m.Multiply(Mat3{
		1, 0, x,
		0, 1, y,
		0, 0, 1,
	})
}

// Rotate applies a 2D rotation. The sign layout is the one the 2D demos were
// written against: [[c, s], [-s, c]].
func (m *Mat3) Rotate(radians float32) {
	s, c := math32.Sincos(radians)
	m.Multiply(Mat3{
		c, s, 0,
		-s, c, 0,
		0, 0, 1,
	})
}

func (m *Mat3) Scale(x, y float32) {
	m.Multiply(Mat3{
		x, 0, 0,
		0, y, 0,
		0, 0, 1,
	})
}

// Transform applies translate, rotate and scale in that order.
func (m *Mat3) Transform(x, y, radians, sx, sy float32) {
	m.Translate(x, y)
	m.Rotate(radians)
	m.Scale(sx, sy)
}

func (m Mat3) MulVec3(v Vec3) Vec3 {
	return Vec3{
		m[0]*v.X + m[1]*v.Y + m[2]*v.Z,
		m[3]*v.X + m[4]*v.Y + m[5]*v.Z,
		m[6]*v.X + m[7]*v.Y + m[8]*v.Z,
	}
}

// GL returns the column-major copy expected by glUniformMatrix3fv with transpose=false.
func (m Mat3) GL() mgl32.Mat3 {
	return mgl32.Mat3{
		m[0], m[3], m[6],
		m[1], m[4], m[7],
		m[2], m[5], m[8],
	}
}

func (m Mat3) ApproxEqual(o Mat3, eps float32) bool {
	for i := range m {
		if math32.Abs(m[i]-o[i]) > eps {
			return false
		}
	}
	return true
}

func (m Mat3) String() string { return format(m[:], 3) }

func Identity4() Mat4 {
	var m Mat4
	setIdentity(m[:], 4)
	return m
}

func Zero4() Mat4 { return Mat4{} }

// Multiply sets m = m * with.
func (m *Mat4) Multiply(with Mat4) {
	multiply(m[:], with[:], 4)
}

// Mul returns m * with without modifying m.
func (m Mat4) Mul(with Mat4) Mat4 {
	m.Multiply(with)
	return m
}

func (m *Mat4) Translate(x, y, z float32) {
	m.Multiply(Mat4{
		1, 0, 0, x,
		0, 1, 0, y,
		0, 0, 1, z,
		0, 0, 0, 1,
	})
}

func (m *Mat4) RotateX(radians float32) {
	s, c := math32.Sincos(radians)
	m.Multiply(Mat4{
		1, 0, 0, 0,
		0, c, -s, 0,
		0, s, c, 0,
		0, 0, 0, 1,
	})
}

func (m *Mat4) RotateY(radians float32) {
	s, c := math32.Sincos(radians)
	m.Multiply(Mat4{
		c, 0, s, 0,
		0, 1, 0, 0,
		-s, 0, c, 0,
		0, 0, 0, 1,
	})
}

func (m *Mat4) RotateZ(radians float32) {
	s, c := math32.Sincos(radians)
	m.Multiply(Mat4{
		c, -s, 0, 0,
		s, c, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	})
}

func (m *Mat4) Scale(x, y, z float32) {
	m.Multiply(Mat4{
		x, 0, 0, 0,
		0, y, 0, 0,
		0, 0, z, 0,
		0, 0, 0, 1,
	})
}

func (m Mat4) MulVec4(v Vec4) Vec4 {
	return Vec4{
		m[0]*v.X + m[1]*v.Y + m[2]*v.Z + m[3]*v.W,
		m[4]*v.X + m[5]*v.Y + m[6]*v.Z + m[7]*v.W,
		m[8]*v.X + m[9]*v.Y + m[10]*v.Z + m[11]*v.W,
		m[12]*v.X + m[13]*v.Y + m[14]*v.Z + m[15]*v.W,
	}
}

// TransformPoint multiplies (p, 1) and applies the perspective divide.
func (m Mat4) TransformPoint(p Vec3) Vec3 {
	return m.MulVec4(p.Vec4(1)).Vec3()
}

func (m Mat4) Transpose() Mat4 {
	var t Mat4
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			t[c*4+r] = m[r*4+c]
		}
	}
	return t
}

// Translation returns the translation column.
func (m Mat4) Translation() Vec3 {
	return Vec3{m[3], m[7], m[11]}
}

// Mat3 returns the upper-left 3x3 block.
func (m Mat4) Mat3() Mat3 {
	return Mat3{
		m[0], m[1], m[2],
		m[4], m[5], m[6],
		m[8], m[9], m[10],
	}
}

// GL returns the column-major copy expected by glUniformMatrix4fv with transpose=false.
func (m Mat4) GL() mgl32.Mat4 {
	return mgl32.Mat4(m.Transpose())
}

// FromGL converts a column-major mgl32 matrix back to row-major.
func FromGL(g mgl32.Mat4) Mat4 {
	return Mat4(g).Transpose()
}

func (m Mat4) ApproxEqual(o Mat4, eps float32) bool {
	for i := range m {
		if math32.Abs(m[i]-o[i]) > eps {
			return false
		}
	}
	return true
}

func (m Mat4) String() string { return format(m[:], 4) }

package linalg

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

const tol = 1e-5

func assertMat4(t *testing.T, want, got Mat4, delta float64) {
	t.Helper()
	assert.InDeltaSlice(t, want[:], got[:], delta, "want\n%vgot\n%v", want, got)
}

func sample() Mat4 {
	return Mat4{
		1, 2, 3, 4,
		5, 6, 7, 8,
		9, 10, 11, 12,
		13, 14, 15, 16,
	}
}

func TestIdentityAndZero(t *testing.T) {
	id := Identity4()
	for i, v := range id {
		if i%5 == 0 {
			assert.Equal(t, float32(1), v, "diagonal %d", i)
		} else {
			assert.Equal(t, float32(0), v, "off diagonal %d", i)
		}
	}
	assert.Equal(t, Mat4{}, Zero4())
	assert.Equal(t, Mat3{1, 0, 0, 0, 1, 0, 0, 0, 1}, Identity3())
	assert.Equal(t, Mat3{}, Zero3())
}

func TestIdentityIsNeutral(t *testing.T) {
	m := sample()
	assertMat4(t, m, Identity4().Mul(m), 0)
	assertMat4(t, m, m.Mul(Identity4()), 0)

	m3 := Mat3{1, 2, 3, 4, 5, 6, 7, 8, 9}
	assert.Equal(t, m3, Identity3().Mul(m3))
	assert.Equal(t, m3, m3.Mul(Identity3()))
}

func TestMultiplyInPlace(t *testing.T) {
	m := sample()
	m.Multiply(sample())
	want := FromGL(sample().GL().Mul4(sample().GL()))
	assertMat4(t, want, m, tol)
}

func TestMultiplyIsNotCommutative(t *testing.T) {
	tr := Identity4()
	tr.Translate(1, 0, 0)
	rot := Identity4()
	rot.RotateZ(math32.Pi / 2)
	assert.False(t, tr.Mul(rot).ApproxEqual(rot.Mul(tr), tol))
}

func TestRotationsMatchMathGL(t *testing.T) {
	angles := []float32{0, 0.3, math32.Pi / 2, -1.2, math32.Pi}
	for _, a := range angles {
		x, y, z := Identity4(), Identity4(), Identity4()
		x.RotateX(a)
		y.RotateY(a)
		z.RotateZ(a)
		assertMat4(t, FromGL(mgl32.HomogRotate3DX(a)), x, tol)
		assertMat4(t, FromGL(mgl32.HomogRotate3DY(a)), y, tol)
		assertMat4(t, FromGL(mgl32.HomogRotate3DZ(a)), z, tol)
	}
}

func TestRotateYLayout(t *testing.T) {
	m := Identity4()
	m.RotateY(0.5)
	s, c := math32.Sincos(0.5)
	assertMat4(t, Mat4{
		c, 0, s, 0,
		0, 1, 0, 0,
		-s, 0, c, 0,
		0, 0, 0, 1,
	}, m, 0)
}

func TestTranslateRotateScaleOrder(t *testing.T) {
	m := Identity4()
	m.Translate(1, 2, 3)
	m.RotateY(DegToRad(90))
	m.Scale(2, 2, 2)

	// scale first, then rotate, then translate
	got := m.TransformPoint(Vec3{1, 0, 0})
	assert.InDelta(t, 1, got.X, tol)
	assert.InDelta(t, 2, got.Y, tol)
	assert.InDelta(t, 1, got.Z, tol)

	ref := mgl32.Translate3D(1, 2, 3).Mul4(mgl32.HomogRotate3DY(DegToRad(90))).Mul4(mgl32.Scale3D(2, 2, 2))
	assertMat4(t, FromGL(ref), m, tol)
}

func TestRotateYFullTurn(t *testing.T) {
	for _, steps := range []int{4, 12, 360} {
		start := Identity4()
		start.Translate(3, -1, 2)
		start.Scale(1.5, 1.5, 1.5)

		m := start
		step := 2 * math32.Pi / float32(steps)
		for i := 0; i < steps; i++ {
			m.RotateY(step)
		}
		assertMat4(t, start, m, 1e-4)
	}
}

func TestTransposeRoundTrip(t *testing.T) {
	m := sample()
	assert.Equal(t, m, m.Transpose().Transpose())
	assert.Equal(t, m, FromGL(m.GL()))
	assert.Equal(t, float32(2), m.GL()[4])
}

func TestMat3Transform(t *testing.T) {
	m := Identity3()
	m.Transform(2, 1, 0, 0.5, 0.5)
	got := m.MulVec3(Vec3{1, 0, 1})
	assert.InDelta(t, 2.5, got.X, tol)
	assert.InDelta(t, 1, got.Y, tol)
	assert.InDelta(t, 1, got.Z, tol)

	r := Identity3()
	r.Rotate(DegToRad(90))
	got = r.MulVec3(Vec3{1, 0, 1})
	assert.InDelta(t, 0, got.X, tol)
	assert.InDelta(t, -1, got.Y, tol)
}

func TestMat3GL(t *testing.T) {
	m := Mat3{1, 2, 3, 4, 5, 6, 7, 8, 9}
	assert.Equal(t, mgl32.Mat3{1, 4, 7, 2, 5, 8, 3, 6, 9}, m.GL())
	assert.Equal(t, Mat3{1, 2, 3, 5, 6, 7, 9, 10, 11}, sample().Mat3())
}

func TestString(t *testing.T) {
	assert.Equal(t,
		"1.000000 0.000000 0.000000\n0.000000 1.000000 0.000000\n0.000000 0.000000 1.000000\n",
		Identity3().String())
}

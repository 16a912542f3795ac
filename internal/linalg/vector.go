package linalg

import "github.com/chewxy/math32"

// Vec2 is a two component float32 vector
type Vec2 struct {
	X, Y float32
}

// Vec3 is a three component float32 vector
type Vec3 struct {
	X, Y, Z float32
}

// Vec4 is a four component float32 vector
type Vec4 struct {
	X, Y, Z, W float32
}

func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v.X + o.X, v.Y + o.Y} }
func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{v.X - o.X, v.Y - o.Y} }
func (v Vec2) Negate() Vec2    { return Vec2{-v.X, -v.Y} }
func (v Vec2) Dot(o Vec2) float32 {
	return v.X*o.X + v.Y*o.Y
}

func (v Vec2) Magnitude() float32 {
	return math32.Sqrt(v.Dot(v))
}

// Normalise returns v scaled to unit length. A zero vector is returned unchanged.
func (v Vec2) Normalise() Vec2 {
	m := v.Magnitude()
	if m == 0 {
		return v
	}
	return Vec2{v.X / m, v.Y / m}
}

func (v Vec3) Add(o Vec3) Vec3          { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }
func (v Vec3) Sub(o Vec3) Vec3          { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }
func (v Vec3) Negate() Vec3             { return Vec3{-v.X, -v.Y, -v.Z} }
func (v Vec3) Scale(s float32) Vec3     { return Vec3{v.X * s, v.Y * s, v.Z * s} }
func (v Vec3) Dot(o Vec3) float32       { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }
func (v Vec3) Magnitude() float32       { return math32.Sqrt(v.Dot(v)) }
func (v Vec3) Vec4(w float32) Vec4      { return Vec4{v.X, v.Y, v.Z, w} }
func (v Vec3) Elem() (x, y, z float32)  { return v.X, v.Y, v.Z }
func (v Vec3) Min(o Vec3) Vec3          { return Vec3{min(v.X, o.X), min(v.Y, o.Y), min(v.Z, o.Z)} }
func (v Vec3) Max(o Vec3) Vec3          { return Vec3{max(v.X, o.X), max(v.Y, o.Y), max(v.Z, o.Z)} }
func (v Vec3) Component(i int) float32  { return [3]float32{v.X, v.Y, v.Z}[i] }

// Cross returns the right-handed cross product v x o.
func (v Vec3) Cross(o Vec3) Vec3 {
	return Vec3{
		v.Y*o.Z - v.Z*o.Y,
		v.Z*o.X - v.X*o.Z,
		v.X*o.Y - v.Y*o.X,
	}
}

// Normalise returns v scaled to unit length. A zero vector is returned unchanged.
func (v Vec3) Normalise() Vec3 {
	m := v.Magnitude()
	if m == 0 {
		return v
	}
	return Vec3{v.X / m, v.Y / m, v.Z / m}
}

func (v Vec4) Add(o Vec4) Vec4 { return Vec4{v.X + o.X, v.Y + o.Y, v.Z + o.Z, v.W + o.W} }
func (v Vec4) Sub(o Vec4) Vec4 { return Vec4{v.X - o.X, v.Y - o.Y, v.Z - o.Z, v.W - o.W} }
func (v Vec4) Negate() Vec4    { return Vec4{-v.X, -v.Y, -v.Z, -v.W} }
func (v Vec4) Dot(o Vec4) float32 {
	return v.X*o.X + v.Y*o.Y + v.Z*o.Z + v.W*o.W
}

func (v Vec4) Magnitude() float32 {
	return math32.Sqrt(v.Dot(v))
}

// Normalise returns v scaled to unit length. A zero vector is returned unchanged.
func (v Vec4) Normalise() Vec4 {
	m := v.Magnitude()
	if m == 0 {
		return v
	}
	return Vec4{v.X / m, v.Y / m, v.Z / m, v.W / m}
}

// Vec3 drops W after the perspective divide. W == 0 returns XYZ as is.
func (v Vec4) Vec3() Vec3 {
	if v.W == 0 || v.W == 1 {
		return Vec3{v.X, v.Y, v.Z}
	}
	return Vec3{v.X / v.W, v.Y / v.W, v.Z / v.W}
}

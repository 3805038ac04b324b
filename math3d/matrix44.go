package math3d

import (
	"fmt"
	"math"

	"github.com/golang/geo/r3"
)

// Matrix44 is a row-major affine transform, applied to row vectors (v*M), so
// the translation lives in the fourth row and transforms compose left to
// right: MultiplyMatrices(a, b) applies a first, then b.
type Matrix44 struct {
	m11, m12, m13, m14 float64
	m21, m22, m23, m24 float64
	m31, m32, m33, m34 float64
	m41, m42, m43, m44 float64
}

var (
	Identity = Matrix44{m11: 1, m22: 1, m33: 1, m44: 1}
)

func MakeMatrix44(v r3.Vector, ea EulerAngles) Matrix44 {
	m := Matrix44{}
	m.SetRotation(ea)
	m.SetTranslation(v)
	return m
}

// MakeTranslation returns a matrix which only translates by v.
func MakeTranslation(v r3.Vector) Matrix44 {
	m := Identity
	m.SetTranslation(v)
	return m
}

func (m Matrix44) String() string {
	return fmt.Sprintf(
		"&M44{%+.4f %+.4f %+.4f %+.4f | %+.4f %+.4f %+.4f %+.4f | %+.4f %+.4f %+.4f %+.4f | %+.4f %+.4f %+.4f %+.4f}",
		m.m11, m.m12, m.m13, m.m14,
		m.m21, m.m22, m.m23, m.m24,
		m.m31, m.m32, m.m33, m.m34,
		m.m41, m.m42, m.m43, m.m44)
}

// Elements returns the matrix as a 4x4 array. This is pretty much only useful
// for dumping its contents, and for tests.
func (m Matrix44) Elements() [4][4]float64 {
	return [4][4]float64{
		{m.m11, m.m12, m.m13, m.m14},
		{m.m21, m.m22, m.m23, m.m24},
		{m.m31, m.m32, m.m33, m.m34},
		{m.m41, m.m42, m.m43, m.m44},
	}
}

// Transform returns the point v transformed by this matrix.
func (m Matrix44) Transform(v r3.Vector) r3.Vector {
	return r3.Vector{
		X: (v.X * m.m11) + (v.Y * m.m21) + (v.Z * m.m31) + m.m41,
		Y: (v.X * m.m12) + (v.Y * m.m22) + (v.Z * m.m32) + m.m42,
		Z: (v.X * m.m13) + (v.Y * m.m23) + (v.Z * m.m33) + m.m43,
	}
}

// Rotate returns the direction v rotated by this matrix, ignoring the
// translation.
func (m Matrix44) Rotate(v r3.Vector) r3.Vector {
	return r3.Vector{
		X: (v.X * m.m11) + (v.Y * m.m21) + (v.Z * m.m31),
		Y: (v.X * m.m12) + (v.Y * m.m22) + (v.Z * m.m32),
		Z: (v.X * m.m13) + (v.Y * m.m23) + (v.Z * m.m33),
	}
}

// Translation returns the fourth row, i.e. where the origin ends up.
func (m Matrix44) Translation() r3.Vector {
	return r3.Vector{X: m.m41, Y: m.m42, Z: m.m43}
}

// RigidInverse returns the inverse of a matrix made of a rotation and a
// translation only. The rotation block is orthonormal, so its inverse is the
// transpose; the translation is rotated back and negated.
func (m Matrix44) RigidInverse() Matrix44 {
	inv := Matrix44{
		m11: m.m11, m12: m.m21, m13: m.m31,
		m21: m.m12, m22: m.m22, m23: m.m32,
		m31: m.m13, m32: m.m23, m33: m.m33,
		m44: 1,
	}

	t := inv.Rotate(m.Translation())
	inv.SetTranslation(r3.Vector{X: -t.X, Y: -t.Y, Z: -t.Z})
	return inv
}

// MultiplyMatrices multiplies two 4x4 matrices together. The result applies a,
// then b.
func MultiplyMatrices(a Matrix44, b Matrix44) Matrix44 {
	return Matrix44{
		(a.m11 * b.m11) + (a.m12 * b.m21) + (a.m13 * b.m31) + (a.m14 * b.m41),
		(a.m11 * b.m12) + (a.m12 * b.m22) + (a.m13 * b.m32) + (a.m14 * b.m42),
		(a.m11 * b.m13) + (a.m12 * b.m23) + (a.m13 * b.m33) + (a.m14 * b.m43),
		(a.m11 * b.m14) + (a.m12 * b.m24) + (a.m13 * b.m34) + (a.m14 * b.m44),
		(a.m21 * b.m11) + (a.m22 * b.m21) + (a.m23 * b.m31) + (a.m24 * b.m41),
		(a.m21 * b.m12) + (a.m22 * b.m22) + (a.m23 * b.m32) + (a.m24 * b.m42),
		(a.m21 * b.m13) + (a.m22 * b.m23) + (a.m23 * b.m33) + (a.m24 * b.m43),
		(a.m21 * b.m14) + (a.m22 * b.m24) + (a.m23 * b.m34) + (a.m24 * b.m44),
		(a.m31 * b.m11) + (a.m32 * b.m21) + (a.m33 * b.m31) + (a.m34 * b.m41),
		(a.m31 * b.m12) + (a.m32 * b.m22) + (a.m33 * b.m32) + (a.m34 * b.m42),
		(a.m31 * b.m13) + (a.m32 * b.m23) + (a.m33 * b.m33) + (a.m34 * b.m43),
		(a.m31 * b.m14) + (a.m32 * b.m24) + (a.m33 * b.m34) + (a.m34 * b.m44),
		(a.m41 * b.m11) + (a.m42 * b.m21) + (a.m43 * b.m31) + (a.m44 * b.m41),
		(a.m41 * b.m12) + (a.m42 * b.m22) + (a.m43 * b.m32) + (a.m44 * b.m42),
		(a.m41 * b.m13) + (a.m42 * b.m23) + (a.m43 * b.m33) + (a.m44 * b.m43),
		(a.m41 * b.m14) + (a.m42 * b.m24) + (a.m43 * b.m34) + (a.m44 * b.m44),
	}
}

// SetRotation overwrites the upper 3x3 block with the rotation described by
// the given Euler angles, and resets the translation.
func (m *Matrix44) SetRotation(ea EulerAngles) {
	cy := math.Cos(ea.Heading)
	sy := math.Sin(ea.Heading)
	cx := math.Cos(ea.Pitch)
	sx := math.Sin(ea.Pitch)
	cz := math.Cos(ea.Bank)
	sz := math.Sin(ea.Bank)

	m.m11 = cy * cz
	m.m21 = -cy * sz
	m.m31 = sy
	m.m14 = 0
	m.m12 = (cx * sz) + ((sx * cz) * sy)
	m.m22 = (cx * cz) - ((sx * sz) * sy)
	m.m32 = -sx * cy
	m.m24 = 0
	m.m13 = (sx * sz) - ((cx * cz) * sy)
	m.m23 = (sx * cz) + ((cx * sz) * sy)
	m.m33 = cx * cy
	m.m34 = 0
	m.m41 = 0
	m.m42 = 0
	m.m43 = 0
	m.m44 = 1
}

// SetTranslation sets the translation of a matrix by overwriting the fourth
// row. Other cells are left alone.
func (m *Matrix44) SetTranslation(v r3.Vector) {
	m.m41 = v.X
	m.m42 = v.Y
	m.m43 = v.Z
}

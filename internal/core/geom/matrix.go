// Package geom holds the small amount of affine math the visualizer needs:
// 4x4 transforms, quaternion rotations and the WGS84 east-north-up frame.
package geom

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Matrix4 is an affine 4x4 transform stored row-major, translation in the
// last column.
type Matrix4 [16]float64

// Identity is the identity transform.
var Identity = Matrix4{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, 1, 0,
	0, 0, 0, 1,
}

func (m Matrix4) dense() *mat.Dense {
	return mat.NewDense(4, 4, m[:])
}

func fromDense(d *mat.Dense) Matrix4 {
	var m Matrix4
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			m[r*4+c] = d.At(r, c)
		}
	}
	return m
}

// FromTranslation returns a pure translation.
func FromTranslation(t r3.Vec) Matrix4 {
	m := Identity
	m[3], m[7], m[11] = t.X, t.Y, t.Z
	return m
}

// FromBasis builds a transform whose rotation columns are x, y, z and whose
// translation is origin.
func FromBasis(x, y, z, origin r3.Vec) Matrix4 {
	return Matrix4{
		x.X, y.X, z.X, origin.X,
		x.Y, y.Y, z.Y, origin.Y,
		x.Z, y.Z, z.Z, origin.Z,
		0, 0, 0, 1,
	}
}

// FromRotationTranslation builds a transform from a rotation quaternion and a
// translation. The quaternion is normalised first; a zero quaternion yields
// no rotation.
func FromRotationTranslation(q quat.Number, t r3.Vec) Matrix4 {
	n := quat.Abs(q)
	if n == 0 || math.IsNaN(n) {
		return FromTranslation(t)
	}
	rot := r3.Rotation(quat.Scale(1/n, q))
	return FromBasis(
		rot.Rotate(r3.Vec{X: 1}),
		rot.Rotate(r3.Vec{Y: 1}),
		rot.Rotate(r3.Vec{Z: 1}),
		t,
	)
}

// Multiply returns a*b.
func Multiply(a, b Matrix4) Matrix4 {
	var out mat.Dense
	out.Mul(a.dense(), b.dense())
	return fromDense(&out)
}

// MultiplyByPoint transforms p as a point (w = 1).
func (m Matrix4) MultiplyByPoint(p r3.Vec) r3.Vec {
	var out mat.VecDense
	out.MulVec(m.dense(), mat.NewVecDense(4, []float64{p.X, p.Y, p.Z, 1}))
	return r3.Vec{X: out.AtVec(0), Y: out.AtVec(1), Z: out.AtVec(2)}
}

// Translation returns the translation column.
func (m Matrix4) Translation() r3.Vec {
	return r3.Vec{X: m[3], Y: m[7], Z: m[11]}
}

// EqualsEpsilon reports whether every element of m and o differs by at most eps.
func (m Matrix4) EqualsEpsilon(o Matrix4, eps float64) bool {
	return mat.EqualApprox(m.dense(), o.dense(), eps)
}

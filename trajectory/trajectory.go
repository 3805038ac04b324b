// Package trajectory stores values sampled at increasing moments in time (or
// at increasing phase fractions), and interpolates between them.
package trajectory

import (
	"sort"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"
)

type knot struct {
	t float64
	v mgl64.Vec3
}

// curve is the shared implementation behind Trajectory1D and Trajectory3D.
// Knots are kept sorted by time.
type curve struct {
	knots []knot
}

func (c *curve) add(t float64, v mgl64.Vec3) {
	i := sort.Search(len(c.knots), func(i int) bool { return c.knots[i].t > t })
	c.knots = append(c.knots, knot{})
	copy(c.knots[i+1:], c.knots[i:])
	c.knots[i] = knot{t, v}
}

// segment returns the index i such that knots[i].t <= t < knots[i+1].t. The
// caller must have handled t outside of the knot range.
func (c *curve) segment(t float64) int {
	i := sort.Search(len(c.knots), func(i int) bool { return c.knots[i].t > t })
	return i - 1
}

// tangent returns the finite-difference slope at knot i, using its neighbors
// (or itself, at the ends).
func (c *curve) tangent(i int) mgl64.Vec3 {
	lo, hi := i-1, i+1
	if lo < 0 {
		lo = 0
	}
	if hi > len(c.knots)-1 {
		hi = len(c.knots) - 1
	}

	dt := c.knots[hi].t - c.knots[lo].t
	if dt <= 0 {
		return mgl64.Vec3{}
	}

	return c.knots[hi].v.Sub(c.knots[lo].v).Mul(1 / dt)
}

// catmullRom evaluates the non-uniform Catmull-Rom spline through the knots.
// Each segment is the cubic Hermite curve between two knots, which is written
// here as the equivalent cubic Bézier: the inner control points sit a third of
// the segment duration along each tangent.
func (c *curve) catmullRom(t float64) mgl64.Vec3 {
	n := len(c.knots)
	switch {
	case n == 0:
		return mgl64.Vec3{}
	case t <= c.knots[0].t:
		return c.knots[0].v
	case t >= c.knots[n-1].t:
		return c.knots[n-1].v
	}

	i := c.segment(t)
	k0, k1 := c.knots[i], c.knots[i+1]
	h := k1.t - k0.t
	if h <= 0 {
		return k1.v
	}

	p1 := k0.v.Add(c.tangent(i).Mul(h / 3))
	p2 := k1.v.Sub(c.tangent(i + 1).Mul(h / 3))
	return mgl64.CubicBezierCurve3D((t-k0.t)/h, k0.v, p1, p2, k1.v)
}

func (c *curve) linear(t float64) mgl64.Vec3 {
	n := len(c.knots)
	switch {
	case n == 0:
		return mgl64.Vec3{}
	case t <= c.knots[0].t:
		return c.knots[0].v
	case t >= c.knots[n-1].t:
		return c.knots[n-1].v
	}

	i := c.segment(t)
	k0, k1 := c.knots[i], c.knots[i+1]
	h := k1.t - k0.t
	if h <= 0 {
		return k1.v
	}

	return k0.v.Add(k1.v.Sub(k0.v).Mul((t - k0.t) / h))
}

func (c *curve) clone() curve {
	return curve{knots: append([]knot(nil), c.knots...)}
}

// Trajectory3D is a sequence of time-stamped points.
type Trajectory3D struct {
	c curve
}

// AddKnot inserts a knot, keeping the knots ordered by time.
func (tr *Trajectory3D) AddKnot(t float64, v r3.Vector) {
	tr.c.add(t, toVec3(v))
}

func (tr *Trajectory3D) KnotCount() int {
	return len(tr.c.knots)
}

func (tr *Trajectory3D) KnotTime(i int) float64 {
	return tr.c.knots[i].t
}

func (tr *Trajectory3D) KnotValue(i int) r3.Vector {
	return fromVec3(tr.c.knots[i].v)
}

// SetKnotValue replaces the value of an existing knot, leaving its time alone.
func (tr *Trajectory3D) SetKnotValue(i int, v r3.Vector) {
	tr.c.knots[i].v = toVec3(v)
}

// Last returns the value of the final knot. It panics if there are none.
func (tr *Trajectory3D) Last() r3.Vector {
	return tr.KnotValue(tr.KnotCount() - 1)
}

func (tr *Trajectory3D) Clear() {
	tr.c.knots = tr.c.knots[:0]
}

// Evaluate returns the Catmull-Rom interpolated value at t. Outside the range
// of the knots, the first or last value is held.
func (tr *Trajectory3D) Evaluate(t float64) r3.Vector {
	return fromVec3(tr.c.catmullRom(t))
}

// EvaluateLinear returns the linearly interpolated value at t.
func (tr *Trajectory3D) EvaluateLinear(t float64) r3.Vector {
	return fromVec3(tr.c.linear(t))
}

func (tr *Trajectory3D) Clone() Trajectory3D {
	return Trajectory3D{c: tr.c.clone()}
}

// Trajectory1D is a sequence of time-stamped scalars.
type Trajectory1D struct {
	c curve
}

func (tr *Trajectory1D) AddKnot(t float64, v float64) {
	tr.c.add(t, mgl64.Vec3{v, 0, 0})
}

func (tr *Trajectory1D) KnotCount() int {
	return len(tr.c.knots)
}

func (tr *Trajectory1D) KnotTime(i int) float64 {
	return tr.c.knots[i].t
}

func (tr *Trajectory1D) KnotValue(i int) float64 {
	return tr.c.knots[i].v[0]
}

func (tr *Trajectory1D) SetKnotValue(i int, v float64) {
	tr.c.knots[i].v[0] = v
}

func (tr *Trajectory1D) Clear() {
	tr.c.knots = tr.c.knots[:0]
}

func (tr *Trajectory1D) Evaluate(t float64) float64 {
	return tr.c.catmullRom(t)[0]
}

func (tr *Trajectory1D) EvaluateLinear(t float64) float64 {
	return tr.c.linear(t)[0]
}

func (tr *Trajectory1D) Clone() Trajectory1D {
	return Trajectory1D{c: tr.c.clone()}
}

func toVec3(v r3.Vector) mgl64.Vec3 {
	return mgl64.Vec3{v.X, v.Y, v.Z}
}

func fromVec3(v mgl64.Vec3) r3.Vector {
	return r3.Vector{X: v[0], Y: v[1], Z: v[2]}
}

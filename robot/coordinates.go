package robot

import (
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"

	"github.com/adammck/locomotion/math3d"
)

// Perturbation used when estimating Jacobians by central differences.
const jacobianDelta = 1e-6

// Coordinates is a generalized coordinates view of a Model: a flat q vector
// (base position, base heading/pitch/bank, then one angle per joint) which can
// be modified freely without touching the model, until Sync is called.
type Coordinates struct {
	model  *Model
	q      []float64
	frames []math3d.Matrix44
	dirty  bool
}

func newCoordinates(m *Model) *Coordinates {
	return &Coordinates{
		model: m,
		q:     m.q(),
		dirty: true,
	}
}

// Size returns the length of q.
func (c *Coordinates) Size() int {
	return len(c.q)
}

// Q returns a copy of the current coordinates.
func (c *Coordinates) Q() []float64 {
	return append([]float64(nil), c.q...)
}

// SetQ replaces the coordinates. The model isn't affected until Sync.
func (c *Coordinates) SetQ(q []float64) {
	if len(q) != len(c.q) {
		panic("SetQ: wrong number of coordinates")
	}

	copy(c.q, q)
	c.dirty = true
}

func (c *Coordinates) framesFor() []math3d.Matrix44 {
	if c.dirty {
		c.frames = c.model.framesFor(c.q, c.frames)
		c.dirty = false
	}

	return c.frames
}

// WorldCoordinates returns the point p (in the space of body b) in the world,
// according to q.
func (c *Coordinates) WorldCoordinates(p r3.Vector, b *Body) r3.Vector {
	return c.framesFor()[b.index].Transform(p)
}

// EstimateLinearJacobian returns the 3xN matrix of partial derivatives of the
// world position of p (in the space of b) with respect to every coordinate,
// estimated by central differences.
func (c *Coordinates) EstimateLinearJacobian(p r3.Vector, b *Body) *mat.Dense {
	n := len(c.q)
	J := mat.NewDense(3, n, nil)

	q := c.Q()
	var frames []math3d.Matrix44

	for i := 0; i < n; i++ {
		orig := q[i]

		q[i] = orig + jacobianDelta
		frames = c.model.framesFor(q, frames)
		pp := frames[b.index].Transform(p)

		q[i] = orig - jacobianDelta
		frames = c.model.framesFor(q, frames)
		pm := frames[b.index].Transform(p)

		q[i] = orig

		d := pp.Sub(pm).Mul(1 / (2 * jacobianDelta))
		J.Set(0, i, d.X)
		J.Set(1, i, d.Y)
		J.Set(2, i, d.Z)
	}

	return J
}

// Sync writes q back to the model, all at once.
func (c *Coordinates) Sync() {
	c.model.setQ(c.q)
}

package math3d

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"github.com/stretchr/testify/assert"
)

const math90 = math.Pi / 2

func TestAdd(t *testing.T) {
	type eg struct {
		recv Pose
		arg  Pose
		out  Pose
	}

	examples := []eg{
		{
			recv: Pose{r3.Vector{X: +0, Y: +0, Z: +0}, 0},
			arg:  Pose{r3.Vector{X: +0, Y: +0, Z: +0}, 0},
			out:  Pose{r3.Vector{X: +0, Y: +0, Z: +0}, 0},
		},
		{
			recv: Pose{r3.Vector{X: +0, Y: +0, Z: +0}, math90},
			arg:  Pose{r3.Vector{X: +1, Y: +0, Z: +0}, 0},
			out:  Pose{r3.Vector{X: +0, Y: +0, Z: -1}, math90},
		},
		{
			recv: Pose{r3.Vector{X: +0, Y: +0, Z: +0}, math.Pi},
			arg:  Pose{r3.Vector{X: +1, Y: +0, Z: +0}, 0},
			out:  Pose{r3.Vector{X: -1, Y: +0, Z: +0}, math.Pi},
		},
		{
			recv: Pose{r3.Vector{X: +0, Y: +0, Z: +0}, 3 * math90},
			arg:  Pose{r3.Vector{X: +1, Y: +0, Z: +0}, 0},
			out:  Pose{r3.Vector{X: +0, Y: +0, Z: +1}, 3 * math90},
		},
		{
			recv: Pose{r3.Vector{X: +9, Y: +1, Z: +9}, math90},
			arg:  Pose{r3.Vector{X: +1, Y: +0, Z: +0}, math90},
			out:  Pose{r3.Vector{X: +9, Y: +1, Z: +8}, math.Pi},
		},
	}

	for i, x := range examples {
		act := x.recv.Add(x.arg)
		assert.InDelta(t, x.out.Position.X, act.Position.X, 0.01, "expected example %d:X to be %0.2f, but was %0.2f", i+1, x.out.Position.X, act.Position.X)
		assert.InDelta(t, x.out.Position.Y, act.Position.Y, 0.01, "expected example %d:Y to be %0.2f, but was %0.2f", i+1, x.out.Position.Y, act.Position.Y)
		assert.InDelta(t, x.out.Position.Z, act.Position.Z, 0.01, "expected example %d:Z to be %0.2f, but was %0.2f", i+1, x.out.Position.Z, act.Position.Z)
		assert.InDelta(t, x.out.Heading, act.Heading, 0.01, "expected example %d:H to be %0.2f, but was %0.2f", i+1, x.out.Heading, act.Heading)
	}
}

func TestWorldAndLocal(t *testing.T) {
	type eg struct {
		pos r3.Vector
		rot float64
		vec r3.Vector
		exp r3.Vector
	}

	examples := []eg{
		{r3.Vector{}, 0.0, r3.Vector{X: 10, Y: 20, Z: 30}, r3.Vector{X: 10, Y: 20, Z: 30}},
		{r3.Vector{Z: 10}, 0.0, r3.Vector{X: 10, Y: 20, Z: 30}, r3.Vector{X: 10, Y: 20, Z: 20}},
		{r3.Vector{Z: 20}, 0.0, r3.Vector{X: 10, Y: 20, Z: 30}, r3.Vector{X: 10, Y: 20, Z: 10}},
		{r3.Vector{Z: 30}, math90, r3.Vector{X: 10, Y: 20, Z: 30}, r3.Vector{X: 0, Y: 20, Z: 10}},
	}

	for i, x := range examples {
		p := Pose{Position: x.pos, Heading: x.rot}

		local := p.ToLocal().Transform(x.vec)
		assert.InDelta(t, 0, local.Distance(x.exp), 1e-6, "example #%d: got %v, expected %v", i+1, local, x.exp)

		world := p.ToWorld().Transform(local)
		assert.InDelta(t, 0, world.Distance(x.vec), 1e-6, "example #%d: round trip", i+1)
	}
}

func TestRotateHeading(t *testing.T) {
	fwd := RotateHeading(r3.Vector{Z: 1}, math90)
	assert.InDelta(t, 1, fwd.X, 1e-9)
	assert.InDelta(t, 0, fwd.Z, 1e-9)

	side := RotateHeading(r3.Vector{X: 1}, math90)
	assert.InDelta(t, 0, side.X, 1e-9)
	assert.InDelta(t, -1, side.Z, 1e-9)
}

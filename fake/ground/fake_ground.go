package ground

import (
	"github.com/adammck/locomotion/terrain"
)

// Query is one call to Height.
type Query struct {
	X float64
	Z float64
}

// FakeGround wraps a terrain and records every height query made against it.
type FakeGround struct {
	terrain terrain.Ground
	Queries []Query
}

func New(t terrain.Ground) *FakeGround {
	return &FakeGround{terrain: t}
}

// NewFlat returns a fake flat ground at height y.
func NewFlat(y float64) *FakeGround {
	return New(terrain.Flat{Y: y})
}

func (g *FakeGround) Height(x, z float64) float64 {
	g.Queries = append(g.Queries, Query{X: x, Z: z})
	return g.terrain.Height(x, z)
}

func (g *FakeGround) Reset() {
	g.Queries = nil
}

package ik

import (
	"testing"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adammck/locomotion"
	"github.com/adammck/locomotion/robot"
)

func model(t *testing.T, name string) *robot.Model {
	m, err := robot.LoadModel(name)
	require.NoError(t, err)
	return m
}

func TestParse(t *testing.T) {
	r, err := ParseUpdateRule("LM")
	require.NoError(t, err)
	assert.Equal(t, LevenbergMarquardt, r)

	r, err = ParseUpdateRule("gauss-newton")
	require.NoError(t, err)
	assert.Equal(t, GaussNewton, r)

	_, err = ParseUpdateRule("newton")
	assert.True(t, errors.Is(err, locomotion.ErrConfiguration))

	c, err := ParseConstraintMethod("clamp")
	require.NoError(t, err)
	assert.Equal(t, Clamp, c)

	_, err = ParseConstraintMethod("squish")
	assert.True(t, errors.Is(err, locomotion.ErrConfiguration))
}

func TestNewSolverFailsFast(t *testing.T) {
	m := model(t, "bob")

	type eg struct {
		mod func(*Options)
	}

	for i, eg := range []eg{
		{func(o *Options) { o.Rule = UpdateRule(7) }},
		{func(o *Options) { o.Constraint = ConstraintMethod(-1) }},
		{func(o *Options) { o.Constraint = Project }},
		{func(o *Options) { o.Alpha = 0 }},
		{func(o *Options) { o.Lambda = -1 }},
	} {
		opts := DefaultOptions()
		eg.mod(&opts)
		_, err := NewSolver(m, opts)
		require.Error(t, err, "example #%d", i+1)
		assert.True(t, errors.Is(err, locomotion.ErrConfiguration), "example #%d", i+1)
	}

	_, err := NewSolver(m, DefaultOptions())
	assert.NoError(t, err)
}

func TestConvergence(t *testing.T) {
	m := model(t, "bob")
	l, _ := m.LimbByName("lLowerLeg")
	s, err := NewSolver(m, Options{Rule: LevenbergMarquardt, Constraint: Clamp, Alpha: 1.0, Lambda: 0.0001})
	require.NoError(t, err)

	target := l.EEWorldPos().Add(r3.Vector{X: 0.02, Y: 0.03, Z: 0.05})
	s.AddLimbTarget(l, target)

	res, err := s.Solve(10)
	require.NoError(t, err)
	assert.Equal(t, 10, res.Iterations)
	require.Len(t, res.Residuals, 11)

	for i := 1; i < len(res.Residuals); i++ {
		assert.True(t, res.Residuals[i] <= res.Residuals[i-1]+1e-9, "iteration %d: %.9f -> %.9f", i, res.Residuals[i-1], res.Residuals[i])
	}

	assert.True(t, res.Residuals[1] < res.Residuals[0])
	assert.InDelta(t, 0, res.Final(), 1e-5)

	// Written back to the model.
	assert.InDelta(t, 0, l.EEWorldPos().Sub(target).Norm(), 1e-5)
}

func TestGaussNewton(t *testing.T) {
	m := model(t, "dog")
	l, _ := m.LimbByName("hr")
	s, err := NewSolver(m, Options{Rule: GaussNewton, Constraint: None, Alpha: 1.0})
	require.NoError(t, err)

	target := l.EEWorldPos().Add(r3.Vector{X: -0.01, Y: 0.02, Z: 0.03})
	s.AddLimbTarget(l, target)

	res, err := s.Solve(10)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Skipped)
	assert.InDelta(t, 0, res.Final(), 1e-5)
}

func TestJointLimits(t *testing.T) {
	m := model(t, "bob")
	s, err := NewSolver(m, DefaultOptions())
	require.NoError(t, err)

	// Far out of reach in every direction.
	for _, name := range []string{"lLowerLeg", "rLowerLeg", "lHand", "rHand", "head"} {
		l, _ := m.LimbByName(name)
		s.AddLimbTarget(l, l.EEWorldPos().Add(r3.Vector{X: 3, Y: 5, Z: -4}))
	}

	_, err = s.Solve(10)
	require.NoError(t, err)

	q := m.Coordinates().Q()
	for i, j := range m.Joints() {
		v := q[robot.BaseDOF+i]
		assert.True(t, v >= j.MinAngle && v <= j.MaxAngle, "%s=%.3f outside [%.3f, %.3f]", j.Name, v, j.MinAngle, j.MaxAngle)
	}
}

func TestBaseNotMoved(t *testing.T) {
	m := model(t, "dog")
	l, _ := m.LimbByName("fl")
	before := m.Coordinates().Q()[:robot.BaseDOF]

	s, err := NewSolver(m, DefaultOptions())
	require.NoError(t, err)
	s.AddLimbTarget(l, l.EEWorldPos().Add(r3.Vector{Y: 0.1}))
	_, err = s.Solve(5)
	require.NoError(t, err)

	assert.Equal(t, before, m.Coordinates().Q()[:robot.BaseDOF])
}

func TestTargetsCleared(t *testing.T) {
	m := model(t, "dog")
	l, _ := m.LimbByName("fl")
	l2, _ := m.LimbByName("fr")

	s, err := NewSolver(m, DefaultOptions())
	require.NoError(t, err)
	s.AddLimbTarget(l, r3.Vector{X: 1})
	s.AddLimbTarget(l2, r3.Vector{X: 2})

	ts := s.Targets()
	require.Len(t, ts, 2)
	assert.Equal(t, r3.Vector{X: 1}, ts[0].World)
	assert.Equal(t, r3.Vector{X: 2}, ts[1].World)

	_, err = s.Solve(1)
	require.NoError(t, err)
	assert.Empty(t, s.Targets())

	// Even when the solve fails.
	s.AddLimbTarget(l, r3.Vector{})
	_, err = s.Solve(-1)
	assert.Error(t, err)
	assert.Empty(t, s.Targets())
}

// Conflicting targets on the same point: each iteration ends with the last
// one applied, so that's where the point ends up.
func TestInsertionOrder(t *testing.T) {
	run := func(first, second r3.Vector) r3.Vector {
		m := model(t, "dog")
		l, _ := m.LimbByName("fl")
		s, err := NewSolver(m, DefaultOptions())
		require.NoError(t, err)

		base := l.EEWorldPos()
		s.AddLimbTarget(l, base.Add(first))
		s.AddLimbTarget(l, base.Add(second))
		_, err = s.Solve(3)
		require.NoError(t, err)

		return l.EEWorldPos().Sub(base)
	}

	a := r3.Vector{Z: 0.03}
	b := r3.Vector{Z: -0.03}

	ab := run(a, b)
	assert.True(t, ab.Sub(b).Norm() < ab.Sub(a).Norm(), "a then b: %v", ab)

	ba := run(b, a)
	assert.True(t, ba.Sub(a).Norm() < ba.Sub(b).Norm(), "b then a: %v", ba)
}

package limbs_test

import (
	"testing"

	"github.com/golang/geo/r3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adammck/locomotion/limbs"
	"github.com/adammck/locomotion/robot"
)

func limb(t *testing.T, model, name string) *robot.Limb {
	m, err := robot.LoadModel(model)
	require.NoError(t, err)
	l, ok := m.LimbByName(name)
	require.True(t, ok, name)
	return l
}

func assertVec(t *testing.T, exp, act r3.Vector, msgAndArgs ...interface{}) {
	t.Helper()
	assert.InDelta(t, exp.X, act.X, 1e-9, msgAndArgs...)
	assert.InDelta(t, exp.Y, act.Y, 1e-9, msgAndArgs...)
	assert.InDelta(t, exp.Z, act.Z, 1e-9, msgAndArgs...)
}

func TestFootProfile(t *testing.T) {
	p, err := limbs.NewProfile(limb(t, "bob", "lLowerLeg"), 0.5, limbs.DefaultTuning())
	require.NoError(t, err)

	assert.Equal(t, 1.0, p.SwingHeight)
	assert.Equal(t, 0.7, p.SafetyFactor)
	assert.InDelta(t, 0.35, p.MidStancePhase(), 1e-9)
	assertVec(t, r3.Vector{}, p.Offset(0))
	assertVec(t, r3.Vector{Y: 0.35, Z: -0.075}, p.Offset(0.2))
	assertVec(t, r3.Vector{Y: 0.4}, p.Offset(0.6))
	assertVec(t, r3.Vector{}, p.Offset(1))
	assertVec(t, r3.Vector{X: 0.7, Y: -2, Z: 3}, p.StepOffset(r3.Vector{X: 1, Y: -2, Z: 3}))
	assert.InDelta(t, 1.028, p.ContactHeight(1, 0.04), 1e-9)

	// Dog legs are feet too, with a lower arc.
	p, err = limbs.NewProfile(limb(t, "dog", "hr"), 0.5, limbs.DefaultTuning())
	require.NoError(t, err)
	assert.Equal(t, 0.1, p.SwingHeight)
	assert.Equal(t, robot.KindFoot, p.Kind)
}

func TestHandProfile(t *testing.T) {
	left, err := limbs.NewProfile(limb(t, "bob", "lHand"), 0.5, limbs.DefaultTuning())
	require.NoError(t, err)
	right, err := limbs.NewProfile(limb(t, "bob", "rHand"), 0.5, limbs.DefaultTuning())
	require.NoError(t, err)

	// Mirrored inwards swing.
	assert.InDelta(t, -0.05, left.Offset(0.125).X, 1e-9)
	assert.InDelta(t, 0.05, right.Offset(0.125).X, 1e-9)
	assert.InDelta(t, 0.35, left.Offset(0.125).Y, 1e-9)
	assert.InDelta(t, -0.2, left.Offset(0.625).Z, 1e-9)

	// The cycle closes.
	assertVec(t, left.Offset(0), left.Offset(1))
	assert.Equal(t, 0.0, left.SafetyFactor)

	// Standing still, the hands don't move at all.
	still, err := limbs.NewProfile(limb(t, "bob", "lHand"), 0, limbs.DefaultTuning())
	require.NoError(t, err)
	for _, pct := range []float64{0, 0.1, 0.3, 0.5, 0.7, 0.9} {
		assertVec(t, r3.Vector{}, still.Offset(pct))
	}
}

func TestHeadProfile(t *testing.T) {
	tu := limbs.DefaultTuning()

	walk, err := limbs.NewProfile(limb(t, "bob", "head"), 0.1, tu)
	require.NoError(t, err)
	assertVec(t, r3.Vector{Y: 0.01}, walk.Offset(0.125))
	assertVec(t, r3.Vector{Y: -0.01}, walk.Offset(0.375))

	// Leaning forwards when running.
	run, err := limbs.NewProfile(limb(t, "bob", "head"), 0.5, tu)
	require.NoError(t, err)
	assertVec(t, r3.Vector{Y: 0.01, Z: 0.15}, run.Offset(0.125))
	assertVec(t, r3.Vector{Z: 0.15}, run.Offset(0))
}

func TestPelvisProfile(t *testing.T) {
	tu := limbs.DefaultTuning()
	tu.PelvisBop = 0.02

	p, err := limbs.NewProfile(limb(t, "bob", "pelvis"), 0.3, tu)
	require.NoError(t, err)
	assertVec(t, r3.Vector{Y: -0.05}, p.Offset(0.125))
	assertVec(t, r3.Vector{Y: -0.025}, p.Offset(0))
	assertVec(t, r3.Vector{}, p.Offset(0.875))
}

func TestProfileSpeedRange(t *testing.T) {
	_, err := limbs.NewProfile(limb(t, "bob", "head"), 1.5, limbs.DefaultTuning())
	assert.Error(t, err)

	_, err = limbs.NewProfile(limb(t, "bob", "head"), -0.1, limbs.DefaultTuning())
	assert.Error(t, err)
}

func TestProfiles(t *testing.T) {
	m, err := robot.LoadModel("dog")
	require.NoError(t, err)

	ps, err := limbs.Profiles(m, []string{"fl", "hr"}, 0.2, limbs.DefaultTuning())
	require.NoError(t, err)
	assert.Len(t, ps, 2)
	assert.Equal(t, "hr", ps["hr"].Limb)

	_, err = limbs.Profiles(m, []string{"lHand"}, 0.2, limbs.DefaultTuning())
	assert.Error(t, err)
}

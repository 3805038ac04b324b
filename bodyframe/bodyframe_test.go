package bodyframe

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adammck/locomotion"
	"github.com/adammck/locomotion/fake/ground"
	"github.com/adammck/locomotion/gait"
	"github.com/adammck/locomotion/terrain"
	"github.com/adammck/locomotion/trajectory"
)

type fixedPhase gait.PhaseInfo

func (p fixedPhase) PhaseInfo(limb string, t float64) gait.PhaseInfo {
	return gait.PhaseInfo(p)
}

func knots(tr *Trajectory) []r3.Vector {
	out := []r3.Vector{}
	for i := 0; i < tr.Position.KnotCount(); i++ {
		out = append(out, tr.Position.KnotValue(i))
	}
	return out
}

func TestStraight(t *testing.T) {
	g := ground.NewFlat(0)
	gen := Generator{Ground: g, MaxSpeed: 10}
	cmd := locomotion.Command{ForwardSpeed: 1, BodyHeight: 0.9}

	tr, err := gen.Generate(State{Position: r3.Vector{Y: 0.5}}, 0, 1, 0.1, cmd)
	require.NoError(t, err)
	require.Equal(t, 10, tr.Position.KnotCount())

	// The first knot is the initial state; later ones are pinned.
	assert.Equal(t, 0.5, tr.Position.KnotValue(0).Y)
	for i := 1; i < 10; i++ {
		v := tr.Position.KnotValue(i)
		assert.InDelta(t, 0.9, v.Y, 1e-9)
		assert.InDelta(t, 0.1*float64(i), v.Z, 1e-9)
		assert.InDelta(t, 0, v.X, 1e-9)
		assert.InDelta(t, 0.1*float64(i), tr.Position.KnotTime(i), 1e-9)
	}

	// One ground query per knot.
	assert.Len(t, g.Queries, 10)
}

func TestHeadingAndSideways(t *testing.T) {
	gen := Generator{Ground: terrain.Flat{}, MaxSpeed: 10}

	// Facing +X, walking forwards and stepping right (towards +Z).
	cmd := locomotion.Command{ForwardSpeed: 1, SidewaysSpeed: -0.5, BodyHeight: 1}
	tr, err := gen.Generate(State{Heading: math.Pi / 2}, 0, 1, 0.25, cmd)
	require.NoError(t, err)

	s := tr.StateAt(0.75)
	assert.InDelta(t, 0.75, s.Position.X, 1e-9)
	assert.InDelta(t, 1, s.Position.Y, 1e-9)
	assert.InDelta(t, 0.375, s.Position.Z, 1e-9)
}

func TestTurning(t *testing.T) {
	gen := Generator{Ground: terrain.Flat{}, MaxSpeed: 10}
	cmd := locomotion.Command{TurningSpeed: 0.5, BodyHeight: 1}

	tr, err := gen.Generate(State{}, 2, 3, 0.1, cmd)
	require.NoError(t, err)

	for i := 0; i < tr.Heading.KnotCount(); i++ {
		assert.InDelta(t, 0.05*float64(i), tr.Heading.KnotValue(i), 1e-9)
	}
}

func TestClamped(t *testing.T) {
	gen := Generator{Ground: terrain.Flat{}, MaxSpeed: 10}

	tr, err := gen.Generate(State{}, 0, 1, 0.5, locomotion.Command{ForwardSpeed: 25})
	require.NoError(t, err)
	assert.Equal(t, 10.0, tr.VelocityAt(0.7).Forward)
	assert.InDelta(t, 5, tr.Position.KnotValue(1).Z, 1e-9)

	tr, err = gen.Generate(State{}, 0, 1, 0.5, locomotion.Command{ForwardSpeed: -3, TurningSpeed: 0.2})
	require.NoError(t, err)
	assert.Equal(t, Velocity{Forward: 0, Turning: 0.2}, tr.VelocityAt(0))
	assert.InDelta(t, 0, tr.Position.KnotValue(1).Z, 1e-9)
}

func TestRollingGround(t *testing.T) {
	rolling := terrain.Rolling{Amplitude: 0.2, Wavelength: 3}
	gen := Generator{Ground: rolling, MaxSpeed: 10}
	cmd := locomotion.Command{ForwardSpeed: 2, SidewaysSpeed: 0.3, BodyHeight: 0.8}

	tr, err := gen.Generate(State{}, 0, 2, 1/60.0, cmd)
	require.NoError(t, err)

	for i := 1; i < tr.Position.KnotCount(); i++ {
		v := tr.Position.KnotValue(i)
		assert.InDelta(t, 0.8+rolling.Height(v.X, v.Z), v.Y, 1e-9)
	}
}

func TestIdempotent(t *testing.T) {
	offset := &trajectory.Trajectory3D{}
	offset.AddKnot(0, r3.Vector{})
	offset.AddKnot(0.5, r3.Vector{Y: -0.05})
	offset.AddKnot(1, r3.Vector{})

	s := gait.NewSchedule("test", gait.FixedStride(0.8))
	require.NoError(t, s.AddSwingPhase("pelvis", 0, 0.999))

	gen := Generator{
		Ground:   terrain.Rolling{Amplitude: 0.1, Wavelength: 2},
		MaxSpeed: 10,
		Bounce: &Bounce{
			Limb:   "pelvis",
			Phases: gait.Periodic{Schedule: s, StrideDuration: 0.8},
			Offset: offset,
		},
	}

	initial := State{Position: r3.Vector{X: 1, Y: 0.9, Z: -2}, Heading: 0.3}
	cmd := locomotion.Command{ForwardSpeed: 1.3, SidewaysSpeed: 0.1, TurningSpeed: -0.2, BodyHeight: 0.9}

	a, err := gen.Generate(initial, 3.2, 4.7, 1/60.0, cmd)
	require.NoError(t, err)
	b, err := gen.Generate(initial, 3.2, 4.7, 1/60.0, cmd)
	require.NoError(t, err)

	assert.Equal(t, knots(a), knots(b))
	assert.Equal(t, a.Heading, b.Heading)
	assert.Equal(t, a.Velocity, b.Velocity)
}

func TestBounce(t *testing.T) {
	offset := &trajectory.Trajectory3D{}
	offset.AddKnot(0, r3.Vector{Y: 0.1})
	offset.AddKnot(1, r3.Vector{Y: 0.1})

	gen := Generator{
		Ground:   terrain.Flat{},
		MaxSpeed: 10,
		Bounce: &Bounce{
			Limb:   "pelvis",
			Phases: fixedPhase{Elapsed: 0.5, Remaining: 0.5, Duration: 1},
			Offset: offset,
		},
	}

	cmd := locomotion.Command{ForwardSpeed: 1, BodyHeight: 1}

	// No bounce at the very start.
	tr, err := gen.Generate(State{Position: r3.Vector{Y: 1}}, 0, 0.5, 0.1, cmd)
	require.NoError(t, err)
	for i := 1; i < tr.Position.KnotCount(); i++ {
		assert.InDelta(t, 1.0, tr.Position.KnotValue(i).Y, 1e-9)
	}

	tr, err = gen.Generate(State{Position: r3.Vector{Y: 1}}, 1, 1.5, 0.1, cmd)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, tr.Position.KnotValue(0).Y, 1e-9)
	for i := 1; i < tr.Position.KnotCount(); i++ {
		assert.InDelta(t, 1.1, tr.Position.KnotValue(i).Y, 1e-9)
	}
}

func TestInvalidHorizon(t *testing.T) {
	gen := Generator{Ground: terrain.Flat{}, MaxSpeed: 10}

	_, err := gen.Generate(State{}, 0, 1, 0, locomotion.Command{})
	assert.Error(t, err)

	_, err = gen.Generate(State{}, 1, 1, 0.1, locomotion.Command{})
	assert.Error(t, err)
}

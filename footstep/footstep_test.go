package footstep

import (
	"testing"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adammck/locomotion"
	"github.com/adammck/locomotion/bodyframe"
	"github.com/adammck/locomotion/gait"
	"github.com/adammck/locomotion/limbs"
	"github.com/adammck/locomotion/robot"
	"github.com/adammck/locomotion/terrain"
)

type fixture struct {
	model    *robot.Model
	schedule *gait.Schedule
	phases   gait.Periodic
	profiles map[string]*limbs.Profile
	limbs    []*robot.Limb
	bf       *bodyframe.Trajectory
}

func setup(t *testing.T, name string, tStart, tEnd float64) *fixture {
	m, err := robot.LoadModel(name)
	require.NoError(t, err)

	gp, err := gait.ForModel(m, false)
	require.NoError(t, err)
	s, err := gp.Schedule(m, 1)
	require.NoError(t, err)
	T, err := s.StrideDuration(1)
	require.NoError(t, err)

	ls := []*robot.Limb{}
	for _, n := range s.Limbs() {
		l, _ := m.LimbByName(n)
		ls = append(ls, l)
	}

	profiles, err := limbs.Profiles(m, s.Limbs(), 0.1, limbs.DefaultTuning())
	require.NoError(t, err)

	gen := bodyframe.Generator{Ground: terrain.Flat{}, MaxSpeed: gait.MaxSpeed}
	cmd := locomotion.Command{ForwardSpeed: 1, BodyHeight: m.BaseHeight}
	initial := bodyframe.State{Position: r3.Vector{Y: m.BaseHeight}}
	bf, err := gen.Generate(initial, tStart, tEnd, 1/60.0, cmd)
	require.NoError(t, err)

	return &fixture{
		model:    m,
		schedule: s,
		phases:   gait.Periodic{Schedule: s, StrideDuration: T},
		profiles: profiles,
		limbs:    ls,
		bf:       bf,
	}
}

func TestOrdered(t *testing.T) {
	for _, name := range []string{"bob", "dog"} {
		for _, tStart := range []float64{0, 0.2, 0.45, 1.3} {
			f := setup(t, name, tStart, tStart+1.5)
			pl := Planner{Phases: f.phases, Ground: terrain.Flat{}}

			plan, err := pl.Plan(f.limbs, f.profiles, f.bf, tStart, tStart+1.5)
			require.NoError(t, err)
			assert.Equal(t, f.schedule.Limbs(), plan.Limbs())

			for limb, cs := range plan.Contacts {
				require.NotEmpty(t, cs, limb)
				for i, c := range cs {
					assert.True(t, c.TStart < c.TEnd, "%s #%d: %s", limb, i, c)
					assert.Equal(t, i == 0 && c.Fixed, c.Fixed, "only the first can be fixed")
					if i > 0 {
						assert.True(t, cs[i-1].TEnd <= c.TStart, "%s #%d: %s then %s", limb, i, cs[i-1], c)
					}
				}
			}
		}
	}
}

func TestContactLocation(t *testing.T) {
	f := setup(t, "bob", 0, 1.5)
	pl := Planner{Phases: f.phases, Ground: terrain.Flat{}}

	plan, err := pl.Plan(f.limbs, f.profiles, f.bf, 0, 1.5)
	require.NoError(t, err)

	// Swinging at t=0, landing at the end of the swing phase.
	cs := plan.Contacts["lLowerLeg"]
	require.NotEmpty(t, cs)
	c := cs[0]
	assert.False(t, c.Fixed)
	assert.InDelta(t, 0.48, c.TStart, 1e-6)
	assert.InDelta(t, 0.696, c.TEnd, 1e-6)

	// Placed where the body will be at 39% of the stance phase, with the
	// default offset narrowed.
	tMid := 0.48 + 0.216*0.39
	assert.InDelta(t, 0.07, c.Location.X, 1e-6)
	assert.InDelta(t, 0.04*0.7, c.Location.Y, 1e-9)
	assert.InDelta(t, tMid, c.Location.Z, 1e-6)
}

func TestFixedContact(t *testing.T) {
	f := setup(t, "bob", 0.2, 1.7)
	pl := Planner{Phases: f.phases, Ground: terrain.Flat{}}

	plan, err := pl.Plan(f.limbs, f.profiles, f.bf, 0.2, 1.7)
	require.NoError(t, err)

	// The right foot is in stance during [0.08, 0.296).
	cs := plan.Contacts["rLowerLeg"]
	require.NotEmpty(t, cs)
	c := cs[0]
	assert.True(t, c.Fixed)
	assert.InDelta(t, 0.2, c.TStart, 1e-9)
	assert.InDelta(t, 0.296, c.TEnd, 1e-6)

	l, _ := f.model.LimbByName("rLowerLeg")
	ee := l.EEWorldPos()
	assert.InDelta(t, ee.X, c.Location.X, 1e-9)
	assert.InDelta(t, ee.Z, c.Location.Z, 1e-9)
	assert.InDelta(t, 0.028, c.Location.Y, 1e-9)
}

func TestCurrentOrUpcoming(t *testing.T) {
	plan := newPlan()
	plan.add("a", PlannedContact{TStart: 0, TEnd: 1, Location: r3.Vector{X: 1}})
	plan.add("a", PlannedContact{TStart: 2, TEnd: 3, Location: r3.Vector{X: 2}})

	type eg struct {
		t   float64
		idx int
	}

	for _, eg := range []eg{{0.5, 0}, {1.0, 1}, {1.5, 1}, {2.5, 1}, {3, -1}} {
		assert.Equal(t, eg.idx, plan.IndexOfCurrentOrUpcoming("a", eg.t), "t=%.1f", eg.t)
	}

	loc, ok := plan.LandingAt("a", 1.5)
	assert.True(t, ok)
	assert.Equal(t, r3.Vector{X: 2}, loc)

	_, ok = plan.CurrentOrUpcoming("b", 0)
	assert.False(t, ok)
}

type alwaysSwing struct{}

func (alwaysSwing) PhaseInfo(limb string, t float64) gait.PhaseInfo {
	return gait.PhaseInfo{Stance: false, Elapsed: 0.1, Remaining: 0.1, Duration: 0.2}
}

func TestConsistencyViolation(t *testing.T) {
	f := setup(t, "dog", 0, 1.5)
	pl := Planner{Phases: alwaysSwing{}, Ground: terrain.Flat{}}

	_, err := pl.Plan(f.limbs, f.profiles, f.bf, 0, 1.5)
	require.Error(t, err)
	assert.True(t, errors.Is(err, locomotion.ErrConsistency))
}

func TestMissingProfile(t *testing.T) {
	f := setup(t, "dog", 0, 1.5)
	pl := Planner{Phases: f.phases, Ground: terrain.Flat{}}

	delete(f.profiles, "fl")
	_, err := pl.Plan(f.limbs, f.profiles, f.bf, 0, 1.5)
	assert.True(t, errors.Is(err, locomotion.ErrConfiguration))
}

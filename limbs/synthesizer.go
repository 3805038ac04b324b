package limbs

import (
	"github.com/golang/geo/r3"

	"github.com/adammck/locomotion"
	"github.com/adammck/locomotion/bodyframe"
	"github.com/adammck/locomotion/gait"
	"github.com/adammck/locomotion/math3d"
	"github.com/adammck/locomotion/robot"
	"github.com/adammck/locomotion/terrain"
	"github.com/adammck/locomotion/trajectory"
)

// Feet aim to arrive this long before the end of the swing phase.
const landEarly = 0.001

// Landings is the part of a footstep plan which the synthesizer needs: where
// a limb is (or will next be) in contact, as of time t.
type Landings interface {
	LandingAt(limb string, t float64) (r3.Vector, bool)
}

type Synthesizer struct {
	Phases gait.Phases
	Ground terrain.Ground
}

// sampler steps through [tStart, tEnd) in increments of dt, without
// accumulating rounding error.
type sampler struct {
	tStart, dt float64
	i          int
}

func (s *sampler) t() float64 {
	return s.tStart + float64(s.i)*s.dt
}

func (s *sampler) next() float64 {
	s.i++
	return s.t()
}

// Synthesize returns the world space trajectory of the limb's end effector.
func (s *Synthesizer) Synthesize(l *robot.Limb, plan Landings, bf *bodyframe.Trajectory, p *Profile, tStart, tEnd, dt float64) (*trajectory.Trajectory3D, error) {
	if !(dt > 0) || !(tEnd > tStart) {
		return nil, locomotion.ConfigurationErrorf("bad horizon for %s: [%.3f, %.3f) dt=%v", l.Name, tStart, tEnd, dt)
	}

	if l.IsFoot() {
		return s.Foot(l, plan, bf, p, tStart, tEnd, dt)
	}

	return s.NonFoot(l, bf, p, tStart, tEnd, dt), nil
}

// Foot returns the trajectory of a foot. In stance it stays where it landed,
// at contact height. In swing it closes the remaining distance to the planned
// landing a little on every sample, with the step arc added on top.
func (s *Synthesizer) Foot(l *robot.Limb, plan Landings, bf *bodyframe.Trajectory, p *Profile, tStart, tEnd, dt float64) (*trajectory.Trajectory3D, error) {
	traj := &trajectory.Trajectory3D{}

	// Displacement only, without the arc. Each swing sample moves on from the
	// previous one of these.
	raw := &trajectory.Trajectory3D{}

	r := l.Point.Radius
	start := l.EEWorldPos()
	if s.Phases.PhaseInfo(l.Name, tStart).Stance {
		start.Y = p.ContactHeight(s.Ground.Height(start.X, start.Z), r)
	}

	traj.AddKnot(tStart, start)
	raw.AddKnot(tStart, start)

	smp := &sampler{tStart: tStart, dt: dt}
	t := smp.next()

	for t < tEnd {
		pi := s.Phases.PhaseInfo(l.Name, t)

		if pi.Stance {
			tEndStance := t + pi.Remaining

			ee := traj.Last()
			ee.Y = p.ContactHeight(s.Ground.Height(ee.X, ee.Z), r)

			for t <= tEndStance && t < tEnd {
				traj.AddKnot(t, ee)
				raw.AddKnot(t, ee)
				t = smp.next()
			}

			continue
		}

		tEndSwing := t + pi.Remaining

		// The first sample of a swing phase is probably some way into it,
		// since phase boundaries don't fall on the sample grid. Only move as
		// far as that part of the phase would have.
		first := pi.Elapsed < dt

		for t <= tEndSwing && t < tEnd {
			ps := s.Phases.PhaseInfo(l.Name, t)

			final, ok := plan.LandingAt(l.Name, tEndSwing)
			if !ok {
				return nil, locomotion.ConsistencyErrorf("%s: no planned landing after swing ending at t=%.4f", l.Name, tEndSwing)
			}

			factor := 1.0
			if first {
				factor = pi.Elapsed / dt
				first = false
			}

			step := 1.0
			if ps.Remaining-landEarly > dt {
				step = dt / (ps.Remaining - landEarly) * factor
			}

			old := raw.Last()
			ee := old.Add(final.Sub(old).Mul(step))
			raw.AddKnot(t, ee)

			g := s.Ground.Height(ee.X, ee.Z)
			off := p.Offset(ps.PercentElapsed())
			ee = ee.Add(math3d.RotateHeading(off, bf.StateAt(t).Heading))
			ee.Y = p.ContactHeight(g, r) + off.Y*p.SwingHeight

			traj.AddKnot(t, ee)
			t = smp.next()
		}
	}

	return traj, nil
}

// NonFoot returns the trajectory of a limb which never bears weight: the body
// frame, plus the limb's default offset, plus its oscillation, all turned to
// the heading.
func (s *Synthesizer) NonFoot(l *robot.Limb, bf *bodyframe.Trajectory, p *Profile, tStart, tEnd, dt float64) *trajectory.Trajectory3D {
	traj := &trajectory.Trajectory3D{}
	traj.AddKnot(tStart, l.EEWorldPos())

	smp := &sampler{tStart: tStart, dt: dt}
	for t := smp.next(); t < tEnd; t = smp.next() {
		st := bf.StateAt(t)
		pct := s.Phases.PhaseInfo(l.Name, t).PercentElapsed()
		off := l.DefaultOffset.Add(p.Offset(pct))
		traj.AddKnot(t, st.Position.Add(math3d.RotateHeading(off, st.Heading)))
	}

	return traj
}

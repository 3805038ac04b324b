// Package bodyframe integrates velocity commands into a reference trajectory
// for the trunk: where it should be, and which way it should be facing, over
// the planning horizon. This is the idealized motion; sway and bounce are
// layered on top.
package bodyframe

import (
	"fmt"

	"github.com/golang/geo/r3"
	"github.com/sirupsen/logrus"

	"github.com/adammck/locomotion"
	"github.com/adammck/locomotion/gait"
	"github.com/adammck/locomotion/math3d"
	"github.com/adammck/locomotion/terrain"
	"github.com/adammck/locomotion/trajectory"
	"github.com/adammck/locomotion/utils"
)

var log = logrus.WithFields(logrus.Fields{
	"pkg": "bodyframe",
})

// Horizons starting before this are treated as starting at zero, and get no
// bounce. The character is standing still at the very start.
const bounceAfter = 0.001

var (
	forward  = r3.Vector{Z: 1}
	sideways = r3.Vector{Y: 1}.Cross(forward)
)

// State is the trunk reference at an instant.
type State struct {
	Position r3.Vector
	Heading  float64
}

func (s State) String() string {
	return fmt.Sprintf("BF{x=%+.3f y=%+.3f z=%+.3f h=%+.1f°}", s.Position.X, s.Position.Y, s.Position.Z, utils.Deg(s.Heading))
}

func (s State) Pose() math3d.Pose {
	return math3d.Pose{Position: s.Position, Heading: s.Heading}
}

// InitialState returns the state of a trunk at the given pose.
func InitialState(p math3d.Pose) State {
	return State{Position: p.Position, Heading: p.Heading}
}

// Velocity is the body frame velocity which was active leaving a knot.
type Velocity struct {
	Forward  float64
	Sideways float64
	Turning  float64
}

// Trajectory is the sampled body frame over a horizon. The three curves share
// knot times.
type Trajectory struct {
	Position trajectory.Trajectory3D
	Heading  trajectory.Trajectory1D

	// X is forward speed, Y is sideways speed, Z is turning speed.
	Velocity trajectory.Trajectory3D

	TStart float64
	TEnd   float64
	Dt     float64
}

// StateAt returns the interpolated state at time t.
func (tr *Trajectory) StateAt(t float64) State {
	return State{
		Position: tr.Position.Evaluate(t),
		Heading:  tr.Heading.Evaluate(t),
	}
}

// VelocityAt returns the velocity recorded at the last knot at or before t.
func (tr *Trajectory) VelocityAt(t float64) Velocity {
	n := tr.Velocity.KnotCount()
	if n == 0 {
		return Velocity{}
	}

	i := 0
	for i+1 < n && tr.Velocity.KnotTime(i+1) <= t {
		i++
	}

	v := tr.Velocity.KnotValue(i)
	return Velocity{Forward: v.X, Sideways: v.Y, Turning: v.Z}
}

// Bounce is the oscillation superimposed onto the trunk: a phase keyed offset
// (in the heading frame) driven by the phase of one scheduled limb.
type Bounce struct {
	Limb   string
	Phases gait.Phases
	Offset *trajectory.Trajectory3D
}

func (b *Bounce) at(t, heading float64) r3.Vector {
	pct := b.Phases.PhaseInfo(b.Limb, t).PercentElapsed()
	return math3d.RotateHeading(b.Offset.Evaluate(pct), heading)
}

type Generator struct {
	Ground   terrain.Ground
	MaxSpeed float64

	// Optional.
	Bounce *Bounce
}

// Generate integrates the command forwards from the initial state over
// [tStart, tEnd), one knot every dt. The first knot is the initial state
// as-is; every later knot has its height pinned to the commanded body height
// above the ground beneath it. The bounce, if any, is added to every knot
// after the first, since the initial state already carries it. The result
// depends only on the arguments.
func (g *Generator) Generate(initial State, tStart, tEnd, dt float64, cmd locomotion.Command) (*Trajectory, error) {
	if !(dt > 0) {
		return nil, locomotion.ConfigurationErrorf("body frame dt must be positive, got %v", dt)
	}

	if !(tEnd > tStart) {
		return nil, locomotion.ConfigurationErrorf("empty body frame horizon: [%.3f, %.3f)", tStart, tEnd)
	}

	cmd = cmd.Clamped(g.MaxSpeed)
	vel := r3.Vector{X: cmd.ForwardSpeed, Y: cmd.SidewaysSpeed, Z: cmd.TurningSpeed}

	tr := &Trajectory{TStart: tStart, TEnd: tEnd, Dt: dt}
	pos := initial.Position
	heading := initial.Heading

	for i := 0; ; i++ {
		t := tStart + float64(i)*dt
		if t >= tEnd {
			break
		}

		tr.Position.AddKnot(t, pos)
		tr.Heading.AddKnot(t, heading)
		tr.Velocity.AddKnot(t, vel)

		step := math3d.RotateHeading(forward, heading).Mul(cmd.ForwardSpeed).
			Add(math3d.RotateHeading(sideways, heading).Mul(cmd.SidewaysSpeed))

		pos = pos.Add(step.Mul(dt))
		pos.Y = cmd.BodyHeight + g.Ground.Height(pos.X, pos.Z)
		heading += dt * cmd.TurningSpeed
	}

	if g.Bounce != nil && tStart > bounceAfter {
		for i := 1; i < tr.Position.KnotCount(); i++ {
			t := tr.Position.KnotTime(i)
			off := g.Bounce.at(t, tr.Heading.KnotValue(i))
			tr.Position.SetKnotValue(i, tr.Position.KnotValue(i).Add(off))
		}
	}

	log.Debugf("generated %d knots over [%.3f, %.3f) from %s with %s", tr.Position.KnotCount(), tStart, tEnd, initial, cmd)
	return tr, nil
}

// Package walker drives the planning pipeline once per tick: keep the gait
// timeline topped up, track the current trajectories with IK, and replan
// everything over the next horizon.
package walker

import (
	"fmt"
	"math"
	"time"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"github.com/adammck/locomotion"
	"github.com/adammck/locomotion/bodyframe"
	"github.com/adammck/locomotion/footstep"
	"github.com/adammck/locomotion/gait"
	"github.com/adammck/locomotion/ik"
	"github.com/adammck/locomotion/limbs"
	"github.com/adammck/locomotion/robot"
	"github.com/adammck/locomotion/terrain"
	"github.com/adammck/locomotion/trajectory"
)

type State string

const (
	sDefault State = ""
	sWalking State = "sWalking"
	sHalt    State = "sHalt"
)

var log = logrus.WithFields(logrus.Fields{
	"pkg": "walker",
})

// Options are the knobs of the pipeline which don't change while walking.
type Options struct {

	// Simulation step (s). Trajectories are sampled at this rate, and the IK
	// runs once per step.
	Dt float64

	// Length of the planning horizon (s).
	Horizon float64

	// Simulated time per tick (s). Each tick runs as many steps as fit.
	Frame float64

	// IK iterations per step.
	Iterations int

	// Forward speed is clamped to [0, MaxSpeed] m/s.
	MaxSpeed float64

	IK     ik.Options
	Tuning limbs.Tuning
}

func DefaultOptions() Options {
	return Options{
		Dt:         1.0 / 60,
		Horizon:    1.5,
		Frame:      1.0 / 60,
		Iterations: 10,
		MaxSpeed:   gait.MaxSpeed,
		IK:         ik.DefaultOptions(),
		Tuning:     limbs.DefaultTuning(),
	}
}

func (o Options) Validate() error {
	switch {
	case !(o.Dt > 0):
		return locomotion.ConfigurationErrorf("dt must be positive, got %v", o.Dt)
	case !(o.Horizon > o.Dt):
		return locomotion.ConfigurationErrorf("horizon (%v) must be longer than dt (%v)", o.Horizon, o.Dt)
	case !(o.Frame > 0):
		return locomotion.ConfigurationErrorf("frame must be positive, got %v", o.Frame)
	case o.Iterations < 0:
		return locomotion.ConfigurationErrorf("iterations must not be negative, got %d", o.Iterations)
	case !(o.MaxSpeed > 0):
		return locomotion.ConfigurationErrorf("max speed must be positive, got %v", o.MaxSpeed)
	}

	return o.IK.Validate()
}

type Walker struct {
	Model  *robot.Model
	Gait   gait.Planner
	Ground terrain.Ground
	Opts   Options

	// The state that the walker is currently in.
	State        State
	stateCounter int

	// Simulation time (s).
	t float64

	timeline *gait.Timeline
	solver   *ik.Solver
	bfGen    *bodyframe.Generator
	fsPlan   *footstep.Planner
	synth    *limbs.Synthesizer

	// The command which the current plan was generated from.
	cmd locomotion.Command

	// Output of the most recent replan.
	bf      *bodyframe.Trajectory
	plan    *footstep.Plan
	trajs   map[string]*trajectory.Trajectory3D
	lastIK  ik.Result
	replans int
}

// New returns a walker for the model. Every option is checked here, so a
// walker which was constructed can always tick.
func New(m *robot.Model, gp gait.Planner, ground terrain.Ground, opts Options) (*Walker, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	s, err := ik.NewSolver(m, opts.IK)
	if err != nil {
		return nil, err
	}

	tl := gait.NewTimeline()

	return &Walker{
		Model:    m,
		Gait:     gp,
		Ground:   ground,
		Opts:     opts,
		State:    sDefault,
		timeline: tl,
		solver:   s,
		bfGen:    &bodyframe.Generator{Ground: ground, MaxSpeed: opts.MaxSpeed},
		fsPlan:   &footstep.Planner{Phases: tl, Ground: ground},
		synth:    &limbs.Synthesizer{Phases: tl, Ground: ground},
		trajs:    map[string]*trajectory.Trajectory3D{},
	}, nil
}

// Boot puts the trunk at its standing height above the ground, and checks
// that the gait planner is happy with the model.
func (w *Walker) Boot() error {
	pos, ea := w.Model.RootPose()
	pos.Y = w.Model.BaseHeight + w.Ground.Height(pos.X, pos.Z)
	w.Model.SetRootPose(pos, ea)

	if _, err := w.Gait.Schedule(w.Model, 0); err != nil {
		return errors.Wrapf(err, "gait %s can't drive %s", w.Gait.Name(), w.Model.Name)
	}

	log.Infof("booted %s with gait=%s, %s", w.Model.Name, w.Gait.Name(), w.Opts.IK)
	return nil
}

func (w *Walker) SetState(s State) {
	log.Infof("state=%v", s)
	w.stateCounter = 0
	w.State = s
}

// Time returns the simulation time.
func (w *Walker) Time() float64 {
	return w.t
}

func (w *Walker) Tick(now time.Time, state *locomotion.State) error {
	w.stateCounter += 1

	switch w.State {
	case sDefault:
		if err := w.replan(state.Command); err != nil {
			return err
		}

		w.SetState(sWalking)

	case sHalt:
		if w.stateCounter == 1 {
			log.Infof("halted at t=%.3f, pose=%s", w.t, w.Model.Pose())
		}

	case sWalking:
		if state.Shutdown {
			w.SetState(sHalt)
			break
		}

		// Commands which changed since the last tick take effect right away,
		// rather than at the end of the step.
		if cmd := w.command(state.Command); cmd != w.cmd {
			log.Infof("command changed: %s -> %s", w.cmd, cmd)
			if err := w.replan(state.Command); err != nil {
				return err
			}
		}

		for i := 0; i < w.stepsPerFrame(); i++ {
			if err := w.Advance(w.Opts.Dt); err != nil {
				return err
			}
		}

		if err := w.replan(state.Command); err != nil {
			return err
		}

	default:
		return fmt.Errorf("unknown state: %#v", w.State)
	}

	state.Time = w.t
	return nil
}

func (w *Walker) stepsPerFrame() int {
	return lo.Max([]int{1, int(math.Round(w.Opts.Frame / w.Opts.Dt))})
}

// replan is the two pipeline entry points, back to back.
func (w *Walker) replan(cmd locomotion.Command) error {
	if _, err := w.AppendGaitIfNeeded(cmd); err != nil {
		return err
	}

	return w.GenerateMotionTrajectories(cmd)
}

// command fills in the body height, if the command doesn't specify one.
func (w *Walker) command(cmd locomotion.Command) locomotion.Command {
	if cmd.BodyHeight <= 0 {
		cmd.BodyHeight = w.Model.BaseHeight
	}

	return cmd.Clamped(w.Opts.MaxSpeed)
}

// AppendGaitIfNeeded makes sure that the gait timeline covers the next horizon
// with the periodic gait for the commanded speed. Returns true if the timeline
// changed.
func (w *Walker) AppendGaitIfNeeded(cmd locomotion.Command) (bool, error) {
	speed := w.command(cmd).ForwardSpeed

	s, err := w.Gait.Schedule(w.Model, speed)
	if err != nil {
		return false, err
	}

	return w.timeline.AppendIfNeeded(s, speed, w.t, w.Opts.Horizon)
}

// GenerateMotionTrajectories replans the body frame, the footsteps and the
// trajectory of every scheduled limb over [now, now+horizon).
func (w *Walker) GenerateMotionTrajectories(cmd locomotion.Command) error {
	if w.timeline.Empty() {
		return locomotion.ConfigurationErrorf("no gait to plan with at t=%.3f", w.t)
	}

	cmd = w.command(cmd)
	tStart := w.t
	tEnd := w.t + w.Opts.Horizon
	speed := cmd.NormalizedSpeed(w.Opts.MaxSpeed)

	names := w.timeline.Limbs()
	profiles, err := limbs.Profiles(w.Model, names, speed, w.Opts.Tuning)
	if err != nil {
		return err
	}

	ls := lo.FilterMap(names, func(name string, _ int) (*robot.Limb, bool) {
		return w.Model.LimbByName(name)
	})

	// The trunk bounces in time with whichever limb is the pelvis.
	w.bfGen.Bounce = nil
	for _, l := range ls {
		if l.Kind == robot.KindPelvis {
			w.bfGen.Bounce = &bodyframe.Bounce{
				Limb:   l.Name,
				Phases: w.timeline,
				Offset: &profiles[l.Name].SwingOffset,
			}
			break
		}
	}

	bf, err := w.bfGen.Generate(bodyframe.InitialState(w.Model.Pose()), tStart, tEnd, w.Opts.Dt, cmd)
	if err != nil {
		return err
	}

	plan, err := w.fsPlan.Plan(ls, profiles, bf, tStart, tEnd)
	if err != nil {
		return err
	}

	trajs := make(map[string]*trajectory.Trajectory3D, len(ls))
	for _, l := range ls {
		tr, err := w.synth.Synthesize(l, plan, bf, profiles[l.Name], tStart, tEnd, w.Opts.Dt)
		if err != nil {
			return errors.Wrapf(err, "synthesizing %s", l.Name)
		}

		trajs[l.Name] = tr
	}

	w.cmd = cmd
	w.bf = bf
	w.plan = plan
	w.trajs = trajs
	w.replans++

	log.Debugf("replanned [%.3f, %.3f) with %s", tStart, tEnd, cmd)
	return nil
}

// Advance moves time on by dt, puts the trunk where the body frame says it
// should be by then, and solves for the joint angles which put every limb on
// its trajectory.
func (w *Walker) Advance(dt float64) error {
	if w.bf == nil {
		return locomotion.ConfigurationErrorf("advance before any trajectories were generated")
	}

	w.t += dt

	bfs := w.bf.StateAt(w.t)
	_, ea := w.Model.RootPose()
	ea.Heading = bfs.Heading
	w.Model.SetRootPose(bfs.Position, ea)

	for _, l := range w.Model.Limbs() {
		tr, ok := w.trajs[l.Name]
		if !ok || l.Kind == robot.KindPelvis {
			continue
		}

		w.solver.AddLimbTarget(l, tr.Evaluate(w.t))
	}

	res, err := w.solver.Solve(w.Opts.Iterations)
	if err != nil {
		return err
	}

	w.lastIK = res
	if res.Skipped > 0 {
		log.Warnf("t=%.3f: skipped %d degenerate IK updates", w.t, res.Skipped)
	}

	return nil
}

// Plan returns the most recent footstep plan.
func (w *Walker) Plan() *footstep.Plan {
	return w.plan
}

// BodyFrame returns the most recent body frame trajectory.
func (w *Walker) BodyFrame() *bodyframe.Trajectory {
	return w.bf
}

// Trajectory returns the most recent end effector trajectory of the limb.
func (w *Walker) Trajectory(limb string) (*trajectory.Trajectory3D, bool) {
	tr, ok := w.trajs[limb]
	return tr, ok
}

// Timeline returns the gait timeline, which answers phase queries.
func (w *Walker) Timeline() *gait.Timeline {
	return w.timeline
}

// LastIK returns the result of the most recent IK solve.
func (w *Walker) LastIK() ik.Result {
	return w.lastIK
}

// Replans returns how many times the trajectories have been generated.
func (w *Walker) Replans() int {
	return w.replans
}

// Errors returns the distance between each limb's end effector and where its
// trajectory says it should be right now.
func (w *Walker) Errors() map[string]float64 {
	out := map[string]float64{}
	for name, tr := range w.trajs {
		l, ok := w.Model.LimbByName(name)
		if !ok || l.Kind == robot.KindPelvis {
			continue
		}

		out[name] = l.EEWorldPos().Sub(tr.Evaluate(w.t)).Norm()
	}

	return out
}

// Feet returns the world position of every foot.
func (w *Walker) Feet() map[string]r3.Vector {
	return lo.SliceToMap(w.Model.FootLimbs(), func(l *robot.Limb) (string, r3.Vector) {
		return l.Name, l.EEWorldPos()
	})
}

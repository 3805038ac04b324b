// Package ik moves a robot's joints so that points on its bodies reach world
// space targets, by iterated damped least squares on the linear Jacobian.
package ik

import (
	"fmt"
	"math"
	"strings"

	"github.com/golang/geo/r3"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/adammck/locomotion"
	"github.com/adammck/locomotion/robot"
	"github.com/adammck/locomotion/utils"
)

var log = logrus.WithFields(logrus.Fields{
	"pkg": "ik",
})

// Singular values below this fraction of the largest are dropped by the
// fallback solve.
const rcond = 1e-10

type UpdateRule int

const (
	GaussNewton UpdateRule = iota
	LevenbergMarquardt
)

func ParseUpdateRule(s string) (UpdateRule, error) {
	switch strings.ToLower(s) {
	case "gauss-newton", "gaussnewton", "gn":
		return GaussNewton, nil
	case "levenberg-marquardt", "levenbergmarquardt", "lm":
		return LevenbergMarquardt, nil
	}

	return 0, locomotion.ConfigurationErrorf("unknown IK update rule: %q", s)
}

func (r UpdateRule) String() string {
	switch r {
	case GaussNewton:
		return "gauss-newton"
	case LevenbergMarquardt:
		return "levenberg-marquardt"
	}

	return fmt.Sprintf("UpdateRule(%d)", int(r))
}

// ConstraintMethod is how joint limits are enforced after each update.
type ConstraintMethod int

const (
	None ConstraintMethod = iota
	Clamp
	Project
)

func ParseConstraintMethod(s string) (ConstraintMethod, error) {
	switch strings.ToLower(s) {
	case "none":
		return None, nil
	case "clamp":
		return Clamp, nil
	case "project":
		return Project, nil
	}

	return 0, locomotion.ConfigurationErrorf("unknown IK constraint method: %q", s)
}

func (c ConstraintMethod) String() string {
	switch c {
	case None:
		return "none"
	case Clamp:
		return "clamp"
	case Project:
		return "project"
	}

	return fmt.Sprintf("ConstraintMethod(%d)", int(c))
}

type Options struct {
	Rule       UpdateRule
	Constraint ConstraintMethod

	// Step size.
	Alpha float64

	// Damping, for Levenberg-Marquardt only.
	Lambda float64
}

func DefaultOptions() Options {
	return Options{
		Rule:       LevenbergMarquardt,
		Constraint: Clamp,
		Alpha:      1.0,
		Lambda:     1e-4,
	}
}

func (o Options) String() string {
	return fmt.Sprintf("%s/%s α=%g λ=%g", o.Rule, o.Constraint, o.Alpha, o.Lambda)
}

// Validate returns an error for any option which the solver can't honor.
// Nothing is ever quietly replaced by a default.
func (o Options) Validate() error {
	switch o.Rule {
	case GaussNewton, LevenbergMarquardt:
	default:
		return locomotion.ConfigurationErrorf("unknown IK update rule: %s", o.Rule)
	}

	switch o.Constraint {
	case None, Clamp:
	case Project:
		return locomotion.ConfigurationErrorf("IK constraint method %s is not implemented", o.Constraint)
	default:
		return locomotion.ConfigurationErrorf("unknown IK constraint method: %s", o.Constraint)
	}

	if !(o.Alpha > 0) {
		return locomotion.ConfigurationErrorf("IK step size must be positive, got %v", o.Alpha)
	}

	if o.Lambda < 0 || math.IsNaN(o.Lambda) {
		return locomotion.ConfigurationErrorf("IK damping can't be negative, got %v", o.Lambda)
	}

	return nil
}

// Target asks for Point (in the space of Body) to be at World.
type Target struct {
	Body  *robot.Body
	Point r3.Vector
	World r3.Vector
}

func (t Target) String() string {
	return fmt.Sprintf("Target{%s (%.3f, %.3f, %.3f)}", t.Body.Name, t.World.X, t.World.Y, t.World.Z)
}

// Result describes a solve. Residuals[0] is the error before the first
// iteration, and Residuals[i] the error after iteration i.
type Result struct {
	Iterations int
	Residuals  []float64
	Skipped    int
}

// Final returns the residual after the last iteration.
func (r Result) Final() float64 {
	if len(r.Residuals) == 0 {
		return 0
	}

	return r.Residuals[len(r.Residuals)-1]
}

type Solver struct {
	model   *robot.Model
	opts    Options
	targets []Target
}

func NewSolver(m *robot.Model, opts Options) (*Solver, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	return &Solver{model: m, opts: opts}, nil
}

func (s *Solver) Options() Options {
	return s.opts
}

// AddTarget accumulates a target for the next solve.
func (s *Solver) AddTarget(b *robot.Body, point, world r3.Vector) {
	s.targets = append(s.targets, Target{Body: b, Point: point, World: world})
}

// AddLimbTarget asks for the end effector of the limb to be at world.
func (s *Solver) AddLimbTarget(l *robot.Limb, world r3.Vector) {
	s.AddTarget(l.EE, l.Point.Offset, world)
}

// Targets returns the accumulated targets, in the order they'll be applied.
func (s *Solver) Targets() []Target {
	return append([]Target(nil), s.targets...)
}

// Solve runs up to n iterations. Within an iteration, the targets are applied
// one after another in the order they were added, each seeing the joints as
// left by the one before. The base is never moved. The result is written to
// the model in one step at the end, and the targets are cleared either way.
func (s *Solver) Solve(n int) (Result, error) {
	defer func() {
		s.targets = s.targets[:0]
	}()

	if n < 0 {
		return Result{}, locomotion.ConfigurationErrorf("negative IK iteration count: %d", n)
	}

	c := s.model.Coordinates()
	q := c.Q()
	nj := len(q) - robot.BaseDOF

	res := Result{Residuals: []float64{s.residual(c)}}
	if nj == 0 || len(s.targets) == 0 {
		return res, nil
	}

	dq := mat.NewVecDense(nj, nil)

	for it := 0; it < n; it++ {
		for _, tg := range s.targets {
			c.SetQ(q)

			if !s.step(c, tg, dq) {
				res.Skipped++
				continue
			}

			floats.AddScaled(q[robot.BaseDOF:], s.opts.Alpha, dq.RawVector().Data)

			if s.opts.Constraint == Clamp {
				for i := 0; i < nj; i++ {
					lo, hi := s.model.JointLimits(i)
					q[robot.BaseDOF+i] = utils.Clamp(q[robot.BaseDOF+i], lo, hi)
				}
			}
		}

		c.SetQ(q)
		res.Iterations++
		res.Residuals = append(res.Residuals, s.residual(c))
	}

	c.Sync()
	log.Debugf("solved %d targets in %d iterations: residual %.6f -> %.6f", len(s.targets), res.Iterations, res.Residuals[0], res.Final())
	return res, nil
}

// step computes the joint update for one target into dq. Returns false if the
// linear system couldn't be solved, in which case the target is skipped.
func (s *Solver) step(c *robot.Coordinates, tg Target, dq *mat.VecDense) bool {
	J := c.EstimateLinearJacobian(tg.Point, tg.Body)
	_, cols := J.Dims()
	Jq := J.Slice(0, 3, robot.BaseDOF, cols)

	p := c.WorldCoordinates(tg.Point, tg.Body)
	d := tg.World.Sub(p)
	e := mat.NewVecDense(3, []float64{d.X, d.Y, d.Z})

	var A mat.SymDense
	A.SymOuterK(1, Jq.T())

	if s.opts.Rule == LevenbergMarquardt {
		n := A.SymmetricDim()
		for i := 0; i < n; i++ {
			A.SetSym(i, i, A.At(i, i)+s.opts.Lambda)
		}
	}

	var b mat.VecDense
	b.MulVec(Jq.T(), e)

	var chol mat.Cholesky
	if chol.Factorize(&A) {
		if err := chol.SolveVecTo(dq, &b); err == nil && !hasNaN(dq) {
			return true
		}
	}

	// Not positive definite, which is expected for Gauss-Newton with fewer
	// task dimensions than joints. Fall back to the minimum norm solution.
	var svd mat.SVD
	if svd.Factorize(&A, mat.SVDThin) {
		if rank := svd.Rank(rcond); rank > 0 {
			svd.SolveVecTo(dq, &b, rank)
			if !hasNaN(dq) {
				return true
			}
		}
	}

	log.Warnf("couldn't solve for %s; skipping", tg)
	return false
}

func hasNaN(v *mat.VecDense) bool {
	for i := 0; i < v.Len(); i++ {
		if x := v.AtVec(i); math.IsNaN(x) || math.IsInf(x, 0) {
			return true
		}
	}

	return false
}

// residual returns the combined distance of every target from where its point
// is according to c.
func (s *Solver) residual(c *robot.Coordinates) float64 {
	sum := 0.0
	for _, tg := range s.targets {
		d := tg.World.Sub(c.WorldCoordinates(tg.Point, tg.Body))
		sum += d.Norm2()
	}

	return math.Sqrt(sum)
}

// Package footstep decides where and when each limb will be in contact with
// the ground over the planning horizon.
package footstep

import (
	"fmt"

	"github.com/golang/geo/r3"
	"github.com/sirupsen/logrus"

	"github.com/adammck/locomotion"
	"github.com/adammck/locomotion/bodyframe"
	"github.com/adammck/locomotion/gait"
	"github.com/adammck/locomotion/limbs"
	"github.com/adammck/locomotion/math3d"
	"github.com/adammck/locomotion/robot"
	"github.com/adammck/locomotion/terrain"
)

var log = logrus.WithFields(logrus.Fields{
	"pkg": "footstep",
})

// Nudge past phase boundaries, so that the next query lands inside the next
// phase rather than on the edge of the last one.
const tTiny = 1e-4

// PlannedContact is one stance phase of one limb. Fixed contacts are already
// happening, so their location is wherever the limb is now.
type PlannedContact struct {
	TStart   float64
	TEnd     float64
	Location r3.Vector
	Fixed    bool
}

func (c PlannedContact) String() string {
	f := ""
	if c.Fixed {
		f = " fixed"
	}

	return fmt.Sprintf("Contact{[%.3f, %.3f) x=%+.3f y=%+.3f z=%+.3f%s}", c.TStart, c.TEnd, c.Location.X, c.Location.Y, c.Location.Z, f)
}

// Plan is the time ordered contacts of every planned limb.
type Plan struct {
	Contacts map[string][]PlannedContact
	order    []string
}

func newPlan() *Plan {
	return &Plan{Contacts: map[string][]PlannedContact{}}
}

func (p *Plan) add(limb string, c PlannedContact) {
	if _, ok := p.Contacts[limb]; !ok {
		p.order = append(p.order, limb)
	}

	p.Contacts[limb] = append(p.Contacts[limb], c)
}

// Limbs returns the planned limbs, in the order they were planned.
func (p *Plan) Limbs() []string {
	return append([]string(nil), p.order...)
}

// IndexOfCurrentOrUpcoming returns the index of the contact which the limb is
// in at time t or, if it's in swing, the one it's swinging towards. Returns -1
// if there's no such contact in the plan.
func (p *Plan) IndexOfCurrentOrUpcoming(limb string, t float64) int {
	for i, c := range p.Contacts[limb] {
		if t < c.TEnd {
			return i
		}
	}

	return -1
}

func (p *Plan) CurrentOrUpcoming(limb string, t float64) (PlannedContact, bool) {
	i := p.IndexOfCurrentOrUpcoming(limb, t)
	if i < 0 {
		return PlannedContact{}, false
	}

	return p.Contacts[limb][i], true
}

// LandingAt returns the location of the current or upcoming contact.
func (p *Plan) LandingAt(limb string, t float64) (r3.Vector, bool) {
	c, ok := p.CurrentOrUpcoming(limb, t)
	return c.Location, ok
}

type Planner struct {
	Phases gait.Phases
	Ground terrain.Ground
}

// Plan places the contacts of every given limb over [tStart, tEnd). Every
// limb needs a profile. The contacts of each limb are strictly ordered and
// don't overlap.
func (pl *Planner) Plan(ls []*robot.Limb, profiles map[string]*limbs.Profile, bf *bodyframe.Trajectory, tStart, tEnd float64) (*Plan, error) {
	plan := newPlan()

	for _, l := range ls {
		prof, ok := profiles[l.Name]
		if !ok {
			return nil, locomotion.ConfigurationErrorf("no motion profile for limb %s", l.Name)
		}

		if err := pl.planLimb(plan, l, prof, bf, tStart, tEnd); err != nil {
			return nil, err
		}
	}

	return plan, nil
}

func (pl *Planner) planLimb(plan *Plan, l *robot.Limb, prof *limbs.Profile, bf *bodyframe.Trajectory, tStart, tEnd float64) error {
	t := tStart

	// Already in contact? Then that contact is where the limb is right now.
	pi := pl.Phases.PhaseInfo(l.Name, t)
	if pi.Stance {
		if pi.Remaining > 0 {
			pos := l.EEWorldPos()
			pos.Y = prof.ContactHeight(pl.Ground.Height(pos.X, pos.Z), l.Point.Radius)
			plan.add(l.Name, PlannedContact{TStart: t, TEnd: t + pi.Remaining, Location: pos, Fixed: true})
		}

		t += pi.Remaining + tTiny
	}

	for t < tEnd {
		pi = pl.Phases.PhaseInfo(l.Name, t)
		if pi.Stance {
			return locomotion.ConsistencyErrorf("%s: expected swing at t=%.4f, got %s", l.Name, t, pi)
		}

		t += pi.Remaining

		pi = pl.Phases.PhaseInfo(l.Name, t+tTiny)
		if !pi.Stance {
			return locomotion.ConsistencyErrorf("%s: expected stance at t=%.4f, got %s", l.Name, t+tTiny, pi)
		}

		cStart := t
		cEnd := t + tTiny + pi.Remaining
		tMid := cStart + (cEnd-cStart)*prof.MidStancePhase()

		st := bf.StateAt(tMid)
		pos := st.Position.Add(math3d.RotateHeading(prof.StepOffset(l.DefaultOffset), st.Heading))
		pos.Y = prof.ContactHeight(pl.Ground.Height(pos.X, pos.Z), l.Point.Radius)

		c := PlannedContact{TStart: cStart, TEnd: cEnd, Location: pos}
		plan.add(l.Name, c)
		log.Debugf("%s: %s", l.Name, c)

		t = cEnd + tTiny
	}

	return nil
}

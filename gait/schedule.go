// Package gait describes when each limb is in the air. A Schedule is one
// periodic gait: a swing interval per limb, expressed as fractions of a stride,
// plus a function giving the stride duration for a speed. A Timeline strings
// schedules together in absolute time, and answers phase queries.
package gait

import (
	"fmt"
	"math"
	"sort"

	"github.com/sirupsen/logrus"
	"go.uber.org/multierr"

	"github.com/adammck/locomotion"
	"github.com/adammck/locomotion/robot"
)

var log = logrus.WithFields(logrus.Fields{
	"pkg": "gait",
})

// SwingInterval is the part of the stride cycle during which a limb is in the
// air. Either end may fall outside of [0,1], to express an interval which wraps
// around the cycle boundary, but it must be shorter than a whole cycle.
type SwingInterval struct {
	Start float64
	End   float64
}

func (si SwingInterval) Length() float64 {
	return si.End - si.Start
}

func (si SwingInterval) String() string {
	return fmt.Sprintf("[%+.3f, %+.3f)", si.Start, si.End)
}

// Schedule is a periodic gait.
type Schedule struct {
	Name   string
	Swing  map[string]SwingInterval
	Stride StrideFunc

	// Limb names in the order they were added, so that everything iterating
	// over the schedule does so deterministically.
	order []string
}

func NewSchedule(name string, stride StrideFunc) *Schedule {
	return &Schedule{
		Name:   name,
		Swing:  map[string]SwingInterval{},
		Stride: stride,
	}
}

// AddSwingPhase sets the swing interval of a limb. Adding the same limb again
// replaces the interval.
func (s *Schedule) AddSwingPhase(limb string, start, end float64) error {
	si := SwingInterval{Start: start, End: end}

	if math.IsNaN(start) || math.IsNaN(end) {
		return locomotion.ConfigurationErrorf("swing interval for %s is NaN", limb)
	}

	if si.Length() <= 0 || si.Length() >= 1 {
		return locomotion.ConfigurationErrorf("swing interval for %s must be in (0, 1) long, got %s", limb, si)
	}

	if _, ok := s.Swing[limb]; !ok {
		s.order = append(s.order, limb)
	}

	s.Swing[limb] = si
	return nil
}

// Limbs returns the names of the scheduled limbs, in the order they were
// added.
func (s *Schedule) Limbs() []string {
	return append([]string(nil), s.order...)
}

// StrideDuration returns the length of one cycle in seconds at the given
// speed.
func (s *Schedule) StrideDuration(speed float64) (float64, error) {
	if s.Stride == nil {
		return 0, locomotion.ConfigurationErrorf("schedule %s has no stride function", s.Name)
	}

	d := s.Stride(speed)
	if !(d > 0) {
		return 0, locomotion.ConfigurationErrorf("schedule %s: stride duration at %.2f m/s is %.3f", s.Name, speed, d)
	}

	return d, nil
}

// Validate checks the schedule against the robot which will follow it. Every
// scheduled limb must exist, and every foot must be scheduled (or it would
// never step).
func (s *Schedule) Validate(m *robot.Model) error {
	var err error

	if len(s.order) == 0 {
		err = multierr.Append(err, locomotion.ConfigurationErrorf("schedule %s is empty", s.Name))
	}

	for _, name := range s.order {
		if _, ok := m.LimbByName(name); !ok {
			err = multierr.Append(err, locomotion.ConfigurationErrorf("schedule %s references limb %q, which %s doesn't have", s.Name, name, m.Name))
		}
	}

	for _, l := range m.FootLimbs() {
		if _, ok := s.Swing[l.Name]; !ok {
			err = multierr.Append(err, locomotion.ConfigurationErrorf("schedule %s has no swing phase for foot %q", s.Name, l.Name))
		}
	}

	return err
}

// Equal returns true if the two schedules would produce the same phases at
// the same speed.
func (s *Schedule) Equal(o *Schedule) bool {
	if s == o {
		return true
	}

	if s == nil || o == nil || len(s.Swing) != len(o.Swing) {
		return false
	}

	for k, v := range s.Swing {
		if ov, ok := o.Swing[k]; !ok || ov != v {
			return false
		}
	}

	return true
}

func (s *Schedule) String() string {
	names := s.Limbs()
	sort.Strings(names)

	str := fmt.Sprintf("&Schedule{%s", s.Name)
	for _, n := range names {
		str += fmt.Sprintf(" %s=%s", n, s.Swing[n])
	}

	return str + "}"
}

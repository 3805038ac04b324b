package gait

import (
	"github.com/adammck/locomotion"
	"github.com/adammck/locomotion/robot"
)

// Planner returns the periodic gait which a robot should follow at a speed.
// There's one for each morphology; pick one with ForModel.
type Planner interface {
	Name() string
	Schedule(m *robot.Model, speed float64) (*Schedule, error)
}

// Biped alternates the legs, with the arms swinging against them. The hands,
// head and pelvis are "in swing" for (almost) the whole stride, which is how
// their oscillations are keyed to the cycle.
type Biped struct {

	// Use the human stride duration and swing fraction for the speed, rather
	// than a fixed 0.8s stride with 73% swing.
	Empirical bool
}

func (b Biped) Name() string {
	if b.Empirical {
		return "biped-empirical"
	}

	return "biped"
}

func (b Biped) Schedule(m *robot.Model, speed float64) (*Schedule, error) {
	stride := FixedStride(0.8)
	swing := 0.73
	if b.Empirical {
		stride = EmpiricalStride
		swing = SwingFraction(speed)
	}

	s := NewSchedule(b.Name(), stride)
	add := func(limb string, start, end float64) error {
		return s.AddSwingPhase(limb, start, end)
	}

	for _, err := range []error{
		add("lLowerLeg", -0.13, -0.13+swing),
		add("rLowerLeg", 0.37, 0.37+swing),
		add("lHand", 0.0, 0.999),
		add("rHand", -0.5, 0.499),
		add("head", 0.0, 0.999),
		add("pelvis", 0.0, 0.999),
	} {
		if err != nil {
			return nil, err
		}
	}

	if err := s.Validate(m); err != nil {
		return nil, err
	}

	return s, nil
}

// Quadruped is a trot: diagonal pairs of legs swing together.
type Quadruped struct{}

func (q Quadruped) Name() string {
	return "quadruped"
}

func (q Quadruped) Schedule(m *robot.Model, speed float64) (*Schedule, error) {
	s := NewSchedule(q.Name(), FixedStride(0.5))

	for _, err := range []error{
		s.AddSwingPhase("hl", 0.0, 0.5),
		s.AddSwingPhase("fl", 0.5, 1.0),
		s.AddSwingPhase("hr", 0.5, 1.0),
		s.AddSwingPhase("fr", 0.0, 0.5),
	} {
		if err != nil {
			return nil, err
		}
	}

	if err := s.Validate(m); err != nil {
		return nil, err
	}

	return s, nil
}

// ForModel picks the gait planner for a robot: the one named in its
// description, or else one by the number of feet.
func ForModel(m *robot.Model, empirical bool) (Planner, error) {
	switch m.Gait {
	case "biped":
		return Biped{Empirical: empirical}, nil
	case "quadruped":
		return Quadruped{}, nil
	case "":
	default:
		return nil, locomotion.ConfigurationErrorf("robot %s has unknown gait: %q", m.Name, m.Gait)
	}

	switch n := len(m.FootLimbs()); n {
	case 2:
		return Biped{Empirical: empirical}, nil
	case 4:
		return Quadruped{}, nil
	default:
		return nil, locomotion.ConfigurationErrorf("no gait for robot %s with %d feet", m.Name, n)
	}
}

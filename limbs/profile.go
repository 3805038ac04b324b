// Package limbs turns a footstep plan and a body frame trajectory into a
// continuous world space trajectory for every limb's end effector.
package limbs

import (
	"fmt"

	"github.com/golang/geo/r3"
	"github.com/sirupsen/logrus"

	"github.com/adammck/locomotion"
	"github.com/adammck/locomotion/gait"
	"github.com/adammck/locomotion/robot"
	"github.com/adammck/locomotion/trajectory"
)

var log = logrus.WithFields(logrus.Fields{
	"pkg": "limbs",
})

// Tuning holds the amplitudes and proportions which shape the motion of every
// limb. The defaults are what looks right for the built-in characters.
type Tuning struct {
	SafetyFactor          float64 `yaml:"safety_factor"`
	DefaultStancePhase    float64 `yaml:"default_stance_phase"`
	StanceSpeedCorrection float64 `yaml:"stance_speed_correction"`
	StepWidthX            float64 `yaml:"step_width_x"`
	StepWidthZ            float64 `yaml:"step_width_z"`
	HeadBop               float64 `yaml:"head_bop"`
	HeadLean              float64 `yaml:"head_lean"`
	PelvisBop             float64 `yaml:"pelvis_bop"`
}

func DefaultTuning() Tuning {
	return Tuning{
		SafetyFactor:          0.7,
		DefaultStancePhase:    0.4,
		StanceSpeedCorrection: 0.1,
		StepWidthX:            0.7,
		StepWidthZ:            1.0,
		HeadBop:               0.01,
		HeadLean:              0.3,
		PelvisBop:             0.05,
	}
}

// Profile is the speed dependent motion of one limb.
type Profile struct {
	Limb  string
	Kind  robot.Kind
	Speed float64

	// Offset from the nominal path, in the heading frame, keyed by how far
	// through the swing phase the limb is. For feet, Y is scaled by
	// SwingHeight rather than added.
	SwingOffset trajectory.Trajectory3D
	SwingHeight float64

	// Fraction of the stance phase at which the foot should be right below
	// its default offset, at zero speed.
	DefaultStancePhase    float64
	StanceSpeedCorrection float64

	// How much of the end effector radius to keep above the ground.
	SafetyFactor float64

	// Scale of the default offset when placing footsteps.
	StepWidthX float64
	StepWidthZ float64
}

func (p *Profile) String() string {
	return fmt.Sprintf("&Profile{%s %s speed=%.2f}", p.Limb, p.Kind, p.Speed)
}

// Offset returns the swing offset at the given fraction of the phase.
func (p *Profile) Offset(pct float64) r3.Vector {
	return p.SwingOffset.Evaluate(pct)
}

// MidStancePhase returns the fraction of the stance phase at which the body
// frame should be sampled to place the footstep.
func (p *Profile) MidStancePhase() float64 {
	return p.DefaultStancePhase - p.StanceSpeedCorrection*p.Speed
}

// StepOffset scales the limb's default offset into the nominal step offset.
func (p *Profile) StepOffset(def r3.Vector) r3.Vector {
	return r3.Vector{X: def.X * p.StepWidthX, Y: def.Y, Z: def.Z * p.StepWidthZ}
}

// ContactHeight returns the height at which an end effector of radius r
// touches ground at height y.
func (p *Profile) ContactHeight(y, r float64) float64 {
	return y + r*p.SafetyFactor
}

// NewProfile builds the profile of a limb at the given normalized speed
// (forward speed over max speed, in [0, 1]).
func NewProfile(limb *robot.Limb, speed float64, tu Tuning) (*Profile, error) {
	if speed < 0 || speed > 1 {
		return nil, locomotion.ConfigurationErrorf("normalized speed out of range: %.3f", speed)
	}

	p := &Profile{
		Limb:                  limb.Name,
		Kind:                  limb.Kind,
		Speed:                 speed,
		DefaultStancePhase:    tu.DefaultStancePhase,
		StanceSpeedCorrection: tu.StanceSpeedCorrection,
		StepWidthX:            tu.StepWidthX,
		StepWidthZ:            tu.StepWidthZ,
	}

	if m := limb.Model(); m != nil {
		p.SwingHeight = m.SwingFootHeight
	}

	o := &p.SwingOffset
	s := speed

	switch limb.Kind {
	case robot.KindFoot:
		p.SafetyFactor = tu.SafetyFactor
		o.AddKnot(0, r3.Vector{})
		o.AddKnot(0.2, r3.Vector{Y: 0.1 + s*0.5, Z: s * -0.15})
		o.AddKnot(0.6, r3.Vector{Y: 0.1 + s*0.6})
		o.AddKnot(0.8, r3.Vector{Y: 0.1 + s*0.3, Z: s * 0.1})
		o.AddKnot(1, r3.Vector{})

	case robot.KindHand:
		var yMaxFor, zMaxFor, zMaxBack, yMaxBack, yMinMid, xIn float64
		if s != 0 {
			yMaxFor = 0.05 + s*0.6
			zMaxFor = 0.2 + s*0.1
			zMaxBack = 0.2*s + 0.1
			yMaxBack = 0.05 + s*0.1
			yMinMid = 0.2 * s
			xIn = s * 0.1
		}

		// Both hands swing in towards the middle.
		if limb.Side == robot.SideLeft {
			xIn = -xIn
		}

		meet := r3.Vector{Y: yMinMid + (yMaxFor-yMinMid)/2, Z: 0.9 * zMaxFor}
		o.AddKnot(0, meet)
		o.AddKnot(0.125, r3.Vector{X: xIn, Y: yMaxFor, Z: zMaxFor})
		o.AddKnot(0.25, r3.Vector{Y: yMinMid, Z: 0.25 * zMaxFor})
		o.AddKnot(0.625, r3.Vector{Y: yMaxBack, Z: -zMaxBack})
		o.AddKnot(0.75, r3.Vector{Y: yMinMid, Z: 0.5 * zMaxFor})
		o.AddKnot(1, meet)

	case robot.KindHead:
		bop := tu.HeadBop
		lean := 0.0
		if s > gait.WalkToRunSpeed/gait.MaxSpeed {
			lean = s * tu.HeadLean
		}

		o.AddKnot(0, r3.Vector{Z: lean})
		o.AddKnot(0.125, r3.Vector{Y: bop, Z: lean})
		o.AddKnot(0.375, r3.Vector{Y: -bop, Z: lean})
		o.AddKnot(0.635, r3.Vector{Y: bop, Z: lean})
		o.AddKnot(0.875, r3.Vector{Y: -bop, Z: lean})
		o.AddKnot(1, r3.Vector{Z: lean})

	case robot.KindPelvis:
		bop := tu.PelvisBop + s*0.1
		o.AddKnot(0, r3.Vector{Y: -0.5 * bop})
		o.AddKnot(0.125, r3.Vector{Y: -bop})
		o.AddKnot(0.375, r3.Vector{})
		o.AddKnot(0.625, r3.Vector{Y: -bop})
		o.AddKnot(0.875, r3.Vector{})
		o.AddKnot(1, r3.Vector{Y: -0.5 * bop})

	default:
		return nil, locomotion.ConfigurationErrorf("no motion profile for limb %s of kind %s", limb.Name, limb.Kind)
	}

	log.Debugf("built %s", p)
	return p, nil
}

// Profiles builds the profile of every named limb of the model.
func Profiles(m *robot.Model, names []string, speed float64, tu Tuning) (map[string]*Profile, error) {
	out := make(map[string]*Profile, len(names))
	for _, name := range names {
		l, ok := m.LimbByName(name)
		if !ok {
			return nil, locomotion.ConfigurationErrorf("no such limb: %q", name)
		}

		p, err := NewProfile(l, speed, tu)
		if err != nil {
			return nil, err
		}

		out[name] = p
	}

	return out, nil
}

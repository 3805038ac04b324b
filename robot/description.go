package robot

import (
	"bytes"
	"io"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/adammck/locomotion"
	"github.com/adammck/locomotion/math3d"
	"github.com/adammck/locomotion/utils"
)

// Description is the on-disk form of a Model. Bodies are implied by the
// joints: every joint names its parent and child body, and the trunk is the
// only body which is never a child. Angles are degrees, lengths are meters.
type Description struct {
	Name            string  `yaml:"name"`
	BaseHeight      float64 `yaml:"base_height"`
	SwingFootHeight float64 `yaml:"swing_foot_height"`
	Gait            string  `yaml:"gait"`
	Trunk           string  `yaml:"trunk"`

	Joints []JointDescription `yaml:"joints"`
	Limbs  []LimbDescription  `yaml:"limbs"`
}

type JointDescription struct {
	Name    string     `yaml:"name"`
	Parent  string     `yaml:"parent"`
	Child   string     `yaml:"child"`
	Axis    string     `yaml:"axis"`
	Offset  [3]float64 `yaml:"offset"`
	Min     float64    `yaml:"min"`
	Max     float64    `yaml:"max"`
	Initial float64    `yaml:"initial"`
}

type LimbDescription struct {
	Name   string     `yaml:"name"`
	EE     string     `yaml:"ee"`
	Kind   string     `yaml:"kind"`
	Side   string     `yaml:"side"`
	Offset [3]float64 `yaml:"offset"`
	Radius float64    `yaml:"radius"`
}

func vec(a [3]float64) r3.Vector {
	return r3.Vector{X: a[0], Y: a[1], Z: a[2]}
}

// ParseDescription decodes a YAML robot description. Unknown fields are
// rejected, so typos don't silently fall back to zero.
func ParseDescription(r io.Reader) (*Description, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	d := &Description{}
	if err := dec.Decode(d); err != nil {
		return nil, locomotion.ConfigurationErrorf("decoding robot description: %s", err)
	}

	return d, nil
}

// LoadDescription parses the description and builds a model from it.
func LoadDescription(data []byte) (*Model, error) {
	d, err := ParseDescription(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	return d.Build()
}

// Validate returns every problem with the description, combined.
func (d *Description) Validate() error {
	var err error

	if d.Name == "" {
		err = multierr.Append(err, locomotion.ConfigurationErrorf("robot has no name"))
	}

	if d.BaseHeight <= 0 {
		err = multierr.Append(err, locomotion.ConfigurationErrorf("robot %q: base_height must be positive", d.Name))
	}

	if d.SwingFootHeight < 0 {
		err = multierr.Append(err, locomotion.ConfigurationErrorf("robot %q: swing_foot_height can't be negative", d.Name))
	}

	if d.Trunk == "" {
		err = multierr.Append(err, locomotion.ConfigurationErrorf("robot %q has no trunk", d.Name))
	}

	// Bodies which exist so far. Joints must be listed parent-first.
	bodies := map[string]bool{d.Trunk: true}
	joints := map[string]bool{}

	for i, j := range d.Joints {
		if j.Name == "" {
			err = multierr.Append(err, locomotion.ConfigurationErrorf("joint #%d has no name", i))
		} else if joints[j.Name] {
			err = multierr.Append(err, locomotion.ConfigurationErrorf("duplicate joint: %q", j.Name))
		}
		joints[j.Name] = true

		if _, aerr := math3d.ParseRotation(j.Axis); aerr != nil {
			err = multierr.Append(err, locomotion.ConfigurationErrorf("joint %q: %s", j.Name, aerr))
		}

		if !bodies[j.Parent] {
			err = multierr.Append(err, locomotion.ConfigurationErrorf("joint %q: parent body %q is not defined by an earlier joint", j.Name, j.Parent))
		}

		if j.Child == "" {
			err = multierr.Append(err, locomotion.ConfigurationErrorf("joint %q has no child", j.Name))
		} else if bodies[j.Child] {
			err = multierr.Append(err, locomotion.ConfigurationErrorf("joint %q: body %q already has a parent", j.Name, j.Child))
		}
		bodies[j.Child] = true

		if j.Min > j.Max {
			err = multierr.Append(err, locomotion.ConfigurationErrorf("joint %q: min (%.1f) > max (%.1f)", j.Name, j.Min, j.Max))
		} else if j.Initial < j.Min || j.Initial > j.Max {
			err = multierr.Append(err, locomotion.ConfigurationErrorf("joint %q: initial angle %.1f is outside [%.1f, %.1f]", j.Name, j.Initial, j.Min, j.Max))
		}
	}

	limbs := map[string]bool{}
	for i, l := range d.Limbs {
		if l.Name == "" {
			err = multierr.Append(err, locomotion.ConfigurationErrorf("limb #%d has no name", i))
		} else if limbs[l.Name] {
			err = multierr.Append(err, locomotion.ConfigurationErrorf("duplicate limb: %q", l.Name))
		}
		limbs[l.Name] = true

		if !bodies[l.EE] {
			err = multierr.Append(err, locomotion.ConfigurationErrorf("limb %q: unknown end effector body %q", l.Name, l.EE))
		}

		if _, kerr := ParseKind(l.Kind); kerr != nil {
			err = multierr.Append(err, locomotion.ConfigurationErrorf("limb %q: %s", l.Name, kerr))
		}

		if _, serr := ParseSide(l.Side); serr != nil {
			err = multierr.Append(err, locomotion.ConfigurationErrorf("limb %q: %s", l.Name, serr))
		}

		if l.Radius < 0 {
			err = multierr.Append(err, locomotion.ConfigurationErrorf("limb %q: radius can't be negative", l.Name))
		}
	}

	return err
}

// Build validates the description and returns a model in its initial pose,
// with the trunk at base height above the origin.
func (d *Description) Build() (*Model, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}

	m := &Model{
		Name:            d.Name,
		BaseHeight:      d.BaseHeight,
		SwingFootHeight: d.SwingFootHeight,
		Gait:            d.Gait,
		bodyIndex:       map[string]*Body{},
		jointIndex:      map[string]*Joint{},
		limbIndex:       map[string]*Limb{},
	}

	m.trunk = m.addBody(d.Trunk)

	for i, jd := range d.Joints {
		// Already validated.
		axis, _ := math3d.ParseRotation(jd.Axis)

		j := &Joint{
			Name:     jd.Name,
			Index:    i,
			Parent:   m.bodyIndex[jd.Parent],
			Axis:     axis,
			Offset:   vec(jd.Offset),
			MinAngle: utils.Rad(jd.Min),
			MaxAngle: utils.Rad(jd.Max),
			Angle:    utils.Rad(jd.Initial),
		}

		j.Child = m.addBody(jd.Child)
		j.Child.Parent = j

		m.joints = append(m.joints, j)
		m.jointIndex[j.Name] = j
	}

	for _, ld := range d.Limbs {
		kind, _ := ParseKind(ld.Kind)
		side, _ := ParseSide(ld.Side)

		l := &Limb{
			Name:  ld.Name,
			Kind:  kind,
			Side:  side,
			EE:    m.bodyIndex[ld.EE],
			Point: EndEffector{Offset: vec(ld.Offset), Radius: ld.Radius},
			model: m,
		}

		// Walk from the end effector back to the trunk, then flip.
		for b := l.EE; b.Parent != nil; b = b.Parent.Parent {
			l.Joints = append([]*Joint{b.Parent}, l.Joints...)
		}

		m.limbs = append(m.limbs, l)
		m.limbIndex[l.Name] = l
	}

	// Default offsets are measured in the initial pose, with the trunk level.
	m.SetRootPose(r3.Vector{Y: d.BaseHeight}, math3d.IdentityOrientation)
	for _, l := range m.limbs {
		l.DefaultOffset = l.EEWorldPos().Sub(m.position)
	}

	if len(m.FootLimbs()) == 0 {
		log.Warnf("robot %s has no feet", m.Name)
	}

	log.Debugf("built %s", m)
	return m, nil
}

func (m *Model) addBody(name string) *Body {
	b := &Body{Name: name, index: len(m.bodies)}
	m.bodies = append(m.bodies, b)
	m.bodyIndex[name] = b
	return b
}

// Load reads a description from r and builds the model.
func Load(r io.Reader) (*Model, error) {
	d, err := ParseDescription(r)
	if err != nil {
		return nil, err
	}

	m, err := d.Build()
	if err != nil {
		return nil, errors.Wrapf(err, "building robot %q", d.Name)
	}

	return m, nil
}

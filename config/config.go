// Package config loads everything needed to set up a walking character from a
// single YAML file. Anything missing from the file keeps its default.
package config

import (
	"bytes"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/adammck/locomotion"
	"github.com/adammck/locomotion/components/walker"
	"github.com/adammck/locomotion/gait"
	"github.com/adammck/locomotion/ik"
	"github.com/adammck/locomotion/limbs"
	"github.com/adammck/locomotion/robot"
	"github.com/adammck/locomotion/terrain"
)

var log = logrus.WithFields(logrus.Fields{
	"pkg": "config",
})

type Config struct {

	// Name of a built-in model, or the path to a robot description file.
	Model string `yaml:"model"`

	// One of auto, biped, biped-empirical, quadruped. Auto picks by the
	// model's description.
	Gait string `yaml:"gait"`

	Ground Ground `yaml:"ground"`

	Dt       float64 `yaml:"dt"`
	Frame    float64 `yaml:"frame"`
	Horizon  float64 `yaml:"horizon"`
	MaxSpeed float64 `yaml:"max_speed"`

	IK     IK           `yaml:"ik"`
	Tuning limbs.Tuning `yaml:"tuning"`

	// The command to start with.
	Command locomotion.Command `yaml:"command"`
}

type Ground struct {
	Kind       string  `yaml:"kind"`
	Height     float64 `yaml:"height"`
	Amplitude  float64 `yaml:"amplitude"`
	Wavelength float64 `yaml:"wavelength"`
}

type IK struct {
	Iterations int     `yaml:"iterations"`
	Rule       string  `yaml:"rule"`
	Constraint string  `yaml:"constraint"`
	Alpha      float64 `yaml:"alpha"`
	Lambda     float64 `yaml:"lambda"`
}

func Default() *Config {
	wo := walker.DefaultOptions()

	return &Config{
		Model:    "bob",
		Gait:     "auto",
		Ground:   Ground{Kind: "flat"},
		Dt:       wo.Dt,
		Frame:    wo.Frame,
		Horizon:  wo.Horizon,
		MaxSpeed: wo.MaxSpeed,
		IK: IK{
			Iterations: wo.Iterations,
			Rule:       "lm",
			Constraint: "clamp",
			Alpha:      wo.IK.Alpha,
			Lambda:     wo.IK.Lambda,
		},
		Tuning: wo.Tuning,
	}
}

// Parse reads a config on top of the defaults. Unknown keys are an error.
func Parse(r io.Reader) (*Config, error) {
	c := Default()

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && err != io.EOF {
		return nil, locomotion.ConfigurationErrorf("parsing config: %s", err)
	}

	return c, nil
}

// Load reads the config file at path. An empty path gives the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading config")
	}

	c, err := Parse(bytes.NewReader(b))
	if err != nil {
		return nil, errors.Wrapf(err, "in %s", path)
	}

	log.Infof("loaded %s", path)
	return c, nil
}

// Validate returns every problem with the config at once.
func (c *Config) Validate() error {
	var err error

	if c.Model == "" {
		err = multierr.Append(err, locomotion.ConfigurationErrorf("model is required"))
	}

	switch c.Gait {
	case "auto", "biped", "biped-empirical", "quadruped":
	default:
		err = multierr.Append(err, locomotion.ConfigurationErrorf("unknown gait: %q", c.Gait))
	}

	if _, e := c.ground(); e != nil {
		err = multierr.Append(err, e)
	}

	if _, e := c.ikOptions(); e != nil {
		err = multierr.Append(err, e)
	} else if e := c.walkerOptions().Validate(); e != nil {
		err = multierr.Append(err, e)
	}

	if c.Tuning.SafetyFactor < 0 || c.Tuning.SafetyFactor > 1 {
		err = multierr.Append(err, locomotion.ConfigurationErrorf("tuning.safety_factor must be in [0, 1], got %v", c.Tuning.SafetyFactor))
	}

	if c.Tuning.DefaultStancePhase <= 0 || c.Tuning.DefaultStancePhase >= 1 {
		err = multierr.Append(err, locomotion.ConfigurationErrorf("tuning.default_stance_phase must be in (0, 1), got %v", c.Tuning.DefaultStancePhase))
	}

	return err
}

func (c *Config) ground() (terrain.Ground, error) {
	switch strings.ToLower(c.Ground.Kind) {
	case "", "flat":
		return terrain.Flat{Y: c.Ground.Height}, nil
	case "rolling":
		if !(c.Ground.Wavelength > 0) {
			return nil, locomotion.ConfigurationErrorf("rolling ground needs a positive wavelength, got %v", c.Ground.Wavelength)
		}

		return terrain.Rolling{Amplitude: c.Ground.Amplitude, Wavelength: c.Ground.Wavelength}, nil
	}

	return nil, locomotion.ConfigurationErrorf("unknown ground: %q", c.Ground.Kind)
}

func (c *Config) ikOptions() (ik.Options, error) {
	var o ik.Options

	rule, err := ik.ParseUpdateRule(c.IK.Rule)
	if err != nil {
		return o, err
	}

	cm, err := ik.ParseConstraintMethod(c.IK.Constraint)
	if err != nil {
		return o, err
	}

	o = ik.Options{Rule: rule, Constraint: cm, Alpha: c.IK.Alpha, Lambda: c.IK.Lambda}
	return o, o.Validate()
}

func (c *Config) walkerOptions() walker.Options {
	o, _ := c.ikOptions()

	return walker.Options{
		Dt:         c.Dt,
		Frame:      c.Frame,
		Horizon:    c.Horizon,
		Iterations: c.IK.Iterations,
		MaxSpeed:   c.MaxSpeed,
		IK:         o,
		Tuning:     c.Tuning,
	}
}

func (c *Config) model() (*robot.Model, error) {
	if strings.HasSuffix(c.Model, ".yaml") || strings.HasSuffix(c.Model, ".yml") {
		f, err := os.Open(c.Model)
		if err != nil {
			return nil, errors.Wrap(err, "opening model")
		}
		defer f.Close()

		return robot.Load(f)
	}

	return robot.LoadModel(c.Model)
}

func (c *Config) planner(m *robot.Model) (gait.Planner, error) {
	switch c.Gait {
	case "biped":
		return gait.Biped{}, nil
	case "biped-empirical":
		return gait.Biped{Empirical: true}, nil
	case "quadruped":
		return gait.Quadruped{}, nil
	}

	return gait.ForModel(m, false)
}

// Walker validates the config and builds the walker it describes.
func (c *Config) Walker() (*walker.Walker, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	m, err := c.model()
	if err != nil {
		return nil, err
	}

	gp, err := c.planner(m)
	if err != nil {
		return nil, err
	}

	g, err := c.ground()
	if err != nil {
		return nil, err
	}

	return walker.New(m, gp, g, c.walkerOptions())
}

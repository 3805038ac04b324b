package locomotion

import (
	"fmt"

	"github.com/samber/lo"
)

// Command is the high-level motion request: how fast to walk forwards and
// sideways (m/s), how fast to turn (rad/s), and how high the body frame should
// be above the ground (m). It's a value; replanning is a pure function of it.
type Command struct {
	ForwardSpeed  float64 `yaml:"forward"`
	SidewaysSpeed float64 `yaml:"sideways"`
	TurningSpeed  float64 `yaml:"turning"`
	BodyHeight    float64 `yaml:"height"`
}

func (c Command) String() string {
	return fmt.Sprintf("Cmd{fwd=%+.2f side=%+.2f turn=%+.2f h=%.3f}", c.ForwardSpeed, c.SidewaysSpeed, c.TurningSpeed, c.BodyHeight)
}

// Clamped returns a copy of the command with the forward speed limited to
// [0, maxSpeed]. Backwards walking isn't supported, so negative speeds stop.
func (c Command) Clamped(maxSpeed float64) Command {
	c.ForwardSpeed = lo.Clamp(c.ForwardSpeed, 0, maxSpeed)
	return c
}

// NormalizedSpeed returns the clamped forward speed as a fraction of maxSpeed.
// The motion profiles are all keyed by this rather than the raw speed.
func (c Command) NormalizedSpeed(maxSpeed float64) float64 {
	if maxSpeed <= 0 {
		return 0
	}

	return c.Clamped(maxSpeed).ForwardSpeed / maxSpeed
}

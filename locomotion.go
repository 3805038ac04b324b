package locomotion

import (
	"time"

	"github.com/sirupsen/logrus"
)

var log = logrus.WithFields(logrus.Fields{
	"pkg": "locomotion",
})

// State is shared by every component within a single tick. It's only ever
// touched from the goroutine running the loop, so needs no locking.
type State struct {

	// The command which the character should currently be following. This is
	// replaced wholesale (never mutated field by field) by the command sources,
	// so that everything downstream of a replan sees one consistent value.
	Command Command

	// Simulation time, in seconds, advanced by whichever component owns the
	// clock (the walker).
	Time float64

	// Components can set this to true to indicate that the character should
	// stop. The loop keeps ticking for a little while afterwards, to let the
	// components finish gracefully.
	Shutdown bool
}

type Component interface {
	Boot() error
	Tick(now time.Time, state *State) error
}

type Character struct {
	Components []Component
	State      *State
}

// NewCharacter creates a new Character with an initial command.
func NewCharacter(cmd Command) *Character {
	return &Character{
		Components: []Component{},
		State:      &State{Command: cmd},
	}
}

// Add registers a component to receive ticks every frame.
func (c *Character) Add(comp Component) {
	c.Components = append(c.Components, comp)
}

// Boot calls Boot on each component.
func (c *Character) Boot() error {
	for _, comp := range c.Components {
		err := comp.Boot()
		if err != nil {
			return err
		}
	}

	return nil
}

// Tick calls Tick on each component, in the order they were added. The first
// error aborts the tick, since later components depend on earlier ones.
func (c *Character) Tick(now time.Time) error {
	for _, comp := range c.Components {
		err := comp.Tick(now, c.State)
		if err != nil {
			log.Errorf("tick failed at t=%0.3f: %s", c.State.Time, err)
			return err
		}
	}

	return nil
}

package controller

import (
	"io"
	"math"
	"time"

	"github.com/adammck/sixaxis"

	"github.com/adammck/locomotion"
	"github.com/adammck/locomotion/gait"
)

const (

	// Speeds with the sticks fully pressed.
	maxForward  = gait.WalkToRunSpeed // m/s
	maxSideways = 0.5                 // m/s
	maxTurning  = 1.0                 // rad/s

	// How much the body height changes per tick while the d-pad is held.
	heightStep = 0.002

	// Full deflection of a stick axis.
	stickRange = 127.0
)

// Gamepad reads a sixaxis controller. Unlike the key stream, the command is
// rebuilt from the state of the sticks on every tick:
//
//	left stick   forward and sideways speed
//	right stick  turning speed
//	d-pad        body height up and down
//	start        shut down
type Gamepad struct {
	sa   *sixaxis.SA
	quit Latch

	// Current body height (m). The d-pad moves this, and it's kept between
	// ticks. Zero means the model's default, which the d-pad can't move.
	BodyHeight float64
	MaxSpeed   float64
}

func NewGamepad(r io.Reader, height float64) *Gamepad {
	return &Gamepad{
		sa:         sixaxis.New(r),
		BodyHeight: height,
		MaxSpeed:   gait.MaxSpeed,
	}
}

func (g *Gamepad) Boot() error {
	go g.sa.Run()
	return nil
}

// Command returns the command which the controller is currently asking for.
// Forward on the stick is negative Y. Right on either stick is positive X,
// which is negative sideways (+X is to the left) and negative turning.
func (g *Gamepad) Command() locomotion.Command {
	if g.BodyHeight > 0 {
		if g.sa.Up > 0 {
			g.BodyHeight += heightStep
		}

		if g.sa.Down > 0 {
			g.BodyHeight = math.Max(heightStep, g.BodyHeight-heightStep)
		}
	}

	return locomotion.Command{
		ForwardSpeed:  (float64(-g.sa.LeftStick.Y) / stickRange) * maxForward,
		SidewaysSpeed: (float64(-g.sa.LeftStick.X) / stickRange) * maxSideways,
		TurningSpeed:  (float64(-g.sa.RightStick.X) / stickRange) * maxTurning,
		BodyHeight:    g.BodyHeight,
	}.Clamped(g.MaxSpeed)
}

func (g *Gamepad) Tick(now time.Time, state *locomotion.State) error {
	cmd := g.Command()
	if cmd != state.Command {
		log.Debugf("cmd=%s (gamepad)", cmd)
		state.Command = cmd
	}

	// At any time, pressing start shuts down the character.
	if g.quit.Run(g.sa.Start) {
		log.Infof("pressed START, shutting down")
		state.Shutdown = true
	}

	return nil
}

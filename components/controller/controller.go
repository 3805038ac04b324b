package controller

import (
	"bufio"
	"io"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/adammck/locomotion"
	"github.com/adammck/locomotion/gait"
)

const (

	// How much each key press changes the forward speed (m/s) or the turning
	// speed (rad/s).
	speedStep = 0.1

	// Tokens are buffered between Run and Tick. Any more than this in a single
	// frame are dropped.
	bufferSize = 64
)

var log = logrus.WithFields(logrus.Fields{
	"pkg": "controller",
})

// Controller turns a stream of whitespace separated key names into commands:
//
//	up, down     forward speed
//	left, right  turning speed
//	stop         stand still
//	quit         shut down
//
// Unknown tokens are logged and ignored.
type Controller struct {
	r        io.Reader
	tokens   chan string
	quit     Latch
	MaxSpeed float64
}

func New(r io.Reader) *Controller {
	return &Controller{
		r:        r,
		tokens:   make(chan string, bufferSize),
		MaxSpeed: gait.MaxSpeed,
	}
}

func (c *Controller) Boot() error {
	go c.Run()
	return nil
}

// Run reads tokens until the reader is exhausted. It's called by Boot, in its
// own goroutine.
func (c *Controller) Run() {
	sc := bufio.NewScanner(c.r)
	sc.Split(bufio.ScanWords)

	for sc.Scan() {
		select {
		case c.tokens <- strings.ToLower(sc.Text()):
		default:
			log.Warnf("dropped key: %s", sc.Text())
		}
	}

	if err := sc.Err(); err != nil {
		log.Errorf("error reading keys: %s", err)
	}

	close(c.tokens)
}

// Tick applies every token which arrived since the last tick. The command is
// replaced, never mutated in place.
func (c *Controller) Tick(now time.Time, state *locomotion.State) error {
	cmd := state.Command
	quit := false

	for done := false; !done; {
		select {
		case tok, ok := <-c.tokens:
			if !ok {
				done = true
				break
			}

			var known bool
			cmd, known = Apply(cmd, tok)
			if !known {
				log.Warnf("unknown key: %q", tok)
			}

			if tok == "quit" {
				quit = true
			}

		default:
			done = true
		}
	}

	cmd = cmd.Clamped(c.MaxSpeed)
	if cmd != state.Command {
		log.Infof("cmd=%s", cmd)
		state.Command = cmd
	}

	// At any time, quit shuts down the character.
	if c.quit.Run(quit) {
		log.Infof("pressed quit, shutting down")
		state.Shutdown = true
	}

	return nil
}

// Apply returns the command after a single key press, and whether the key
// meant anything.
func Apply(cmd locomotion.Command, tok string) (locomotion.Command, bool) {
	switch tok {
	case "up":
		cmd.ForwardSpeed += speedStep
	case "down":
		cmd.ForwardSpeed -= speedStep
	case "left":
		cmd.TurningSpeed += speedStep
	case "right":
		cmd.TurningSpeed -= speedStep
	case "stop":
		cmd.ForwardSpeed = 0
		cmd.SidewaysSpeed = 0
		cmd.TurningSpeed = 0
	case "quit":
	default:
		return cmd, false
	}

	return cmd, true
}

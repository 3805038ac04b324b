package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"github.com/adammck/locomotion"
	"github.com/adammck/locomotion/components/controller"
	"github.com/adammck/locomotion/components/watchdog"
)

const (
	flagKeys        = "keys"
	flagCommandFile = "command-file"
	flagGamepad     = "gamepad"
	flagDuration    = "duration"
	flagMaxError    = "max-error"

	// Ticks to keep running after shutdown is requested, to let the
	// components finish gracefully.
	shutdownTicks = 60
)

var runCommand = &cli.Command{
	Name:  "run",
	Usage: "walk in real time until interrupted",
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:  flagKeys,
			Usage: "read key names (up, down, left, right, stop, quit) from stdin",
		},
		&cli.StringFlag{
			Name:  flagCommandFile,
			Usage: "watch `FILE` for commands in YAML",
		},
		&cli.StringFlag{
			Name:  flagGamepad,
			Usage: "read a sixaxis controller from `PATH` (e.g. /dev/input/js0)",
		},
		&cli.Float64Flag{
			Name:  flagMaxError,
			Value: watchdog.DefaultMaximum,
			Usage: "shut down when any limb is further than this (m) from its trajectory",
		},
		&cli.DurationFlag{
			Name:  flagDuration,
			Usage: "stop after this long (zero runs forever)",
		},
	},
	Action: runAction,
}

func runAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	w, err := cfg.Walker()
	if err != nil {
		return err
	}

	ch := locomotion.NewCharacter(cfg.Command)
	ch.Add(w)

	wd := watchdog.New(w)
	wd.Maximum = c.Float64(flagMaxError)
	ch.Add(wd)

	if c.Bool(flagKeys) {
		ch.Add(controller.New(os.Stdin))
	}

	if path := c.String(flagCommandFile); path != "" {
		fs := controller.NewFileSource(path)
		defer fs.Close()
		ch.Add(fs)
	}

	if path := c.String(flagGamepad); path != "" {
		f, err := os.Open(path)
		if err != nil {
			return errors.Wrap(err, "opening gamepad")
		}
		defer f.Close()

		h := cfg.Command.BodyHeight
		if h <= 0 {
			h = w.Model.BaseHeight
		}

		ch.Add(controller.NewGamepad(f, h))
	}

	log.Infof("booting components...")
	if err := ch.Boot(); err != nil {
		return errors.Wrap(err, "booting")
	}

	t := time.NewTicker(time.Duration(cfg.Frame * float64(time.Second)))
	defer t.Stop()

	// Catch both SIGINT (ctrl+c) and SIGTERM (kill/systemd), to allow the
	// character to come to a halt before exiting.
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sig)

	var deadline <-chan time.Time
	if d := c.Duration(flagDuration); d > 0 {
		deadline = time.After(d)
	}

	log.Infof("starting loop...")
	remaining := -1
	for {
		select {
		case <-sig:
			log.Infof("caught signal, shutting down...")
			ch.State.Shutdown = true

		case <-deadline:
			log.Infof("duration elapsed, shutting down...")
			ch.State.Shutdown = true

		case now := <-t.C:
			if err := ch.Tick(now); err != nil {
				return err
			}

			if ch.State.Shutdown {
				if remaining < 0 {
					remaining = shutdownTicks
				}

				remaining--
				if remaining == 0 {
					log.Infof("stopped at t=%.3f, pose=%s", ch.State.Time, w.Model.Pose())
					return nil
				}
			}
		}
	}
}

package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/adammck/locomotion/config"
)

var log = logrus.WithFields(logrus.Fields{
	"pkg": "main",
})

const (
	flagConfig  = "config"
	flagModel   = "model"
	flagForward = "forward"
	flagTurn    = "turn"
	flagDebug   = "debug"
)

var app = &cli.App{
	Name:            "locomotion",
	Usage:           "plan and track walking motion for legged characters",
	HideHelpCommand: true,
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    flagConfig,
			Aliases: []string{"c"},
			Usage:   "load configuration from `FILE`",
		},
		&cli.StringFlag{
			Name:    flagModel,
			Aliases: []string{"m"},
			Usage:   "built-in model name or description `FILE`, overriding the config",
		},
		&cli.Float64Flag{
			Name:  flagForward,
			Usage: "initial forward speed (m/s), overriding the config",
		},
		&cli.Float64Flag{
			Name:  flagTurn,
			Usage: "initial turning speed (rad/s), overriding the config",
		},
		&cli.BoolFlag{
			Name:  flagDebug,
			Usage: "enable debug logging",
		},
	},
	Before: func(c *cli.Context) error {
		if c.Bool(flagDebug) {
			logrus.SetLevel(logrus.DebugLevel)
		}

		return nil
	},
	Commands: []*cli.Command{
		runCommand,
		plotCommand,
		modelsCommand,
	},
}

// loadConfig reads the config file, and then applies the flags on top.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.String(flagConfig))
	if err != nil {
		return nil, err
	}

	if c.IsSet(flagModel) {
		cfg.Model = c.String(flagModel)
	}

	if c.IsSet(flagForward) {
		cfg.Command.ForwardSpeed = c.Float64(flagForward)
	}

	if c.IsSet(flagTurn) {
		cfg.Command.TurningSpeed = c.Float64(flagTurn)
	}

	return cfg, nil
}

func main() {
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(1)
	}
}


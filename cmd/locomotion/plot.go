package main

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"github.com/adammck/locomotion/plots"
)

const (
	flagSeconds = "seconds"
	flagOut     = "out"
)

var plotCommand = &cli.Command{
	Name:  "plot",
	Usage: "walk for a while as fast as possible, and plot the results",
	Flags: []cli.Flag{
		&cli.Float64Flag{
			Name:  flagSeconds,
			Value: 3,
			Usage: "simulated time to walk for",
		},
		&cli.StringFlag{
			Name:  flagOut,
			Value: ".",
			Usage: "write PNGs to `DIR`",
		},
	},
	Action: plotAction,
}

func plotAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	w, err := cfg.Walker()
	if err != nil {
		return err
	}

	if err := w.Boot(); err != nil {
		return err
	}

	if _, err := w.AppendGaitIfNeeded(cfg.Command); err != nil {
		return err
	}

	if err := w.GenerateMotionTrajectories(cfg.Command); err != nil {
		return err
	}

	rec := plots.NewRecorder()
	rec.Record(w.Time(), w.Model.Pose().Position, w.Feet())

	n := int(c.Float64(flagSeconds) / cfg.Dt)
	for i := 0; i < n; i++ {
		if err := w.Advance(cfg.Dt); err != nil {
			return err
		}

		rec.Record(w.Time(), w.Model.Pose().Position, w.Feet())

		if _, err := w.AppendGaitIfNeeded(cfg.Command); err != nil {
			return err
		}

		if err := w.GenerateMotionTrajectories(cfg.Command); err != nil {
			return err
		}
	}

	dir := c.String(flagOut)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, "creating output dir")
	}

	p, err := plots.FootHeights(rec)
	if err != nil {
		return err
	}

	if err := plots.Save(p, filepath.Join(dir, "foot_height.png")); err != nil {
		return err
	}

	p, err = plots.Footsteps(w.BodyFrame(), w.Plan())
	if err != nil {
		return err
	}

	if err := plots.Save(p, filepath.Join(dir, "footsteps.png")); err != nil {
		return err
	}

	log.Infof("wrote plots of %d samples to %s", rec.Len(), dir)
	return nil
}

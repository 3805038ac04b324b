package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/adammck/locomotion/gait"
	"github.com/adammck/locomotion/robot"
)

var modelsCommand = &cli.Command{
	Name:  "models",
	Usage: "list the built-in models",
	Action: func(c *cli.Context) error {
		for _, name := range robot.Catalog() {
			m, err := robot.LoadModel(name)
			if err != nil {
				return err
			}

			gp, err := gait.ForModel(m, false)
			if err != nil {
				return err
			}

			fmt.Fprintf(c.App.Writer, "%-8s joints=%-3d limbs=%-3d feet=%d gait=%s\n", name, len(m.Joints()), len(m.Limbs()), len(m.FootLimbs()), gp.Name())
		}

		return nil
	},
}

package main

import "github.com/urfave/cli/v2"

func stripCommand() *cli.Command {
	return &cli.Command{
		Name:      "strip",
		Usage:     "remove all metadata and chapters, leaving the audio stream untouched",
		ArgsUsage: "<file>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "force", Usage: "confirm the removal; strip refuses to run without it"},
		},
		Action: func(c *cli.Context) error {
			path := c.Args().First()
			if path == "" {
				return usageError("strip: missing <file>")
			}
			if !c.Bool("force") {
				return usageError("strip: pass --force to confirm")
			}

			facade, err := newFacade(c)
			if err != nil {
				return err
			}
			if err := facade.Strip(path); err != nil {
				return err
			}
			printOK("stripped %s", path)
			return nil
		},
	}
}

package main

import "github.com/urfave/cli/v2"

func infoCommand() *cli.Command {
	return &cli.Command{
		Name:      "info",
		Usage:     "print a file's detected format, metadata and chapters",
		ArgsUsage: "<file>",
		Action: func(c *cli.Context) error {
			path := c.Args().First()
			if path == "" {
				return usageError("info: missing <file>")
			}

			facade, err := newFacade(c)
			if err != nil {
				return err
			}

			format, err := facade.DetectFormat(path)
			if err != nil {
				return err
			}
			info, err := facade.Read(path)
			if err != nil {
				return err
			}

			printField("Format", format.String())
			printTextInfo(path, info)
			return nil
		},
	}
}

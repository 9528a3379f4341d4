// Command audio-marker is the CLI front end for the audiomarker
// library: read, write, strip and validate MP3/M4A/M4B metadata,
// import and export chapters and lyrics in any of the supported text
// formats, and run batch operations over many files at once.
package main

import (
	"fmt"
	"os"

	"github.com/atelier-socle/audiomarker"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "audio-marker",
		Usage: "inspect and edit MP3/M4A/M4B metadata, chapters and lyrics",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Usage: "path to an .audiomarker.yaml config file"},
		},
		Commands: []*cli.Command{
			readCommand(),
			writeCommand(),
			chaptersCommand(),
			lyricsCommand(),
			artworkCommand(),
			validateCommand(),
			stripCommand(),
			batchCommand(),
			infoCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		printError(err)
		os.Exit(exitCodeFor(err))
	}
}

// exitCodeFor maps an error to the CLI exit codes spec §6 names: 1 for
// an operation error, 2 for invalid usage (cli.Exit errors already
// carry their own code).
func exitCodeFor(err error) int {
	if coder, ok := err.(cli.ExitCoder); ok {
		return coder.ExitCode()
	}
	return 1
}

func newFacade(c *cli.Context) (*audiomarker.Facade, error) {
	if path := c.String("config"); path != "" {
		cfg, err := audiomarker.LoadConfigFile(path)
		if err != nil {
			return nil, err
		}
		return audiomarker.NewFacade(cfg), nil
	}
	return audiomarker.New(), nil
}

func usageError(format string, args ...interface{}) error {
	return cli.Exit(fmt.Sprintf(format, args...), 2)
}

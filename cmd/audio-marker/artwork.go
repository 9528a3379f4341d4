package main

import (
	"os"

	"github.com/atelier-socle/audiomarker/model"
	"github.com/urfave/cli/v2"
)

func artworkCommand() *cli.Command {
	return &cli.Command{
		Name:  "artwork",
		Usage: "set, extract or remove a file's embedded cover art",
		Subcommands: []*cli.Command{
			artworkSetCommand(),
			artworkExtractCommand(),
			artworkRemoveCommand(),
		},
	}
}

func artworkSetCommand() *cli.Command {
	return &cli.Command{
		Name:      "set",
		Usage:     "embed a JPEG or PNG image as cover art",
		ArgsUsage: "<file>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "image", Required: true, Usage: "path to a JPEG or PNG file"},
		},
		Action: func(c *cli.Context) error {
			path := c.Args().First()
			if path == "" {
				return usageError("artwork set: missing <file>")
			}

			data, err := os.ReadFile(c.String("image"))
			if err != nil {
				return err
			}
			art, err := model.NewArtwork(data)
			if err != nil {
				return err
			}

			facade, err := newFacade(c)
			if err != nil {
				return err
			}
			return facade.Modify(path, func(info *model.AudioFileInfo) error {
				info.Metadata.Artwork = &art
				return nil
			})
		},
	}
}

func artworkExtractCommand() *cli.Command {
	return &cli.Command{
		Name:      "extract",
		Usage:     "write a file's embedded cover art to disk",
		ArgsUsage: "<file>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "to", Required: true, Usage: "output image path"},
		},
		Action: func(c *cli.Context) error {
			path := c.Args().First()
			if path == "" {
				return usageError("artwork extract: missing <file>")
			}

			facade, err := newFacade(c)
			if err != nil {
				return err
			}
			info, err := facade.Read(path)
			if err != nil {
				return err
			}
			if info.Metadata.Artwork == nil {
				return usageError("artwork extract: %s has no embedded artwork", path)
			}

			if err := os.WriteFile(c.String("to"), info.Metadata.Artwork.Data, 0o644); err != nil {
				return err
			}
			printOK("extracted %s artwork to %s", info.Metadata.Artwork.Format, c.String("to"))
			return nil
		},
	}
}

func artworkRemoveCommand() *cli.Command {
	return &cli.Command{
		Name:      "remove",
		Usage:     "remove a file's embedded cover art",
		ArgsUsage: "<file>",
		Action: func(c *cli.Context) error {
			path := c.Args().First()
			if path == "" {
				return usageError("artwork remove: missing <file>")
			}

			facade, err := newFacade(c)
			if err != nil {
				return err
			}
			return facade.Modify(path, func(info *model.AudioFileInfo) error {
				info.Metadata.Artwork = nil
				return nil
			})
		},
	}
}

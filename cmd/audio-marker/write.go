package main

import (
	"github.com/atelier-socle/audiomarker/model"
	"github.com/urfave/cli/v2"
)

func writeCommand() *cli.Command {
	return &cli.Command{
		Name:      "write",
		Usage:     "replace a file's metadata, preserving chapters and unmapped data",
		ArgsUsage: "<file>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "title"},
			&cli.StringFlag{Name: "artist"},
			&cli.StringFlag{Name: "album"},
			&cli.StringFlag{Name: "genre"},
			&cli.IntFlag{Name: "year"},
			&cli.StringFlag{Name: "composer"},
			&cli.StringFlag{Name: "album-artist"},
			&cli.StringFlag{Name: "publisher"},
			&cli.StringFlag{Name: "copyright"},
			&cli.StringFlag{Name: "comment"},
			&cli.StringFlag{Name: "language"},
			&cli.IntFlag{Name: "track"},
			&cli.IntFlag{Name: "track-total"},
			&cli.IntFlag{Name: "disc"},
			&cli.IntFlag{Name: "disc-total"},
		},
		Action: func(c *cli.Context) error {
			path := c.Args().First()
			if path == "" {
				return usageError("write: missing <file>")
			}

			facade, err := newFacade(c)
			if err != nil {
				return err
			}

			return facade.Modify(path, func(info *model.AudioFileInfo) error {
				applyMetadataFlags(c, &info.Metadata)
				return nil
			})
		},
	}
}

// applyMetadataFlags overwrites fields in meta for every flag the
// caller actually set, leaving the rest of the current tag untouched.
func applyMetadataFlags(c *cli.Context, meta *model.AudioMetadata) {
	if c.IsSet("title") {
		meta.Title = c.String("title")
	}
	if c.IsSet("artist") {
		meta.Artist = c.String("artist")
	}
	if c.IsSet("album") {
		meta.Album = c.String("album")
	}
	if c.IsSet("genre") {
		meta.Genre = c.String("genre")
	}
	if c.IsSet("year") {
		y := c.Int("year")
		meta.Year = &y
	}
	if c.IsSet("composer") {
		meta.Composer = c.String("composer")
	}
	if c.IsSet("album-artist") {
		meta.AlbumArtist = c.String("album-artist")
	}
	if c.IsSet("publisher") {
		meta.Publisher = c.String("publisher")
	}
	if c.IsSet("copyright") {
		meta.Copyright = c.String("copyright")
	}
	if c.IsSet("comment") {
		meta.Comment = c.String("comment")
	}
	if c.IsSet("language") {
		meta.Language = c.String("language")
	}
	if c.IsSet("track") {
		meta.TrackNumber = &model.TrackPosition{Number: c.Int("track"), Total: c.Int("track-total")}
	}
	if c.IsSet("disc") {
		meta.DiscNumber = &model.TrackPosition{Number: c.Int("disc"), Total: c.Int("disc-total")}
	}
}

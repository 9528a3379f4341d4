package main

import (
	"encoding/json"
	"fmt"

	"github.com/atelier-socle/audiomarker/model"
	"github.com/urfave/cli/v2"
)

func readCommand() *cli.Command {
	return &cli.Command{
		Name:      "read",
		Usage:     "print a file's metadata",
		ArgsUsage: "<file>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "format", Value: "text", Usage: "text or json"},
		},
		Action: func(c *cli.Context) error {
			path := c.Args().First()
			if path == "" {
				return usageError("read: missing <file>")
			}

			facade, err := newFacade(c)
			if err != nil {
				return err
			}

			info, err := facade.Read(path)
			if err != nil {
				return err
			}

			switch c.String("format") {
			case "json":
				data, err := json.MarshalIndent(newInfoView(info), "", "  ")
				if err != nil {
					return err
				}
				fmt.Println(string(data))
			case "text", "":
				printTextInfo(path, info)
			default:
				return usageError("read: unknown --format %q", c.String("format"))
			}
			return nil
		},
	}
}

func printTextInfo(path string, info model.AudioFileInfo) {
	v := newInfoView(info)
	printHeading("%s", path)
	printField("Title", v.Title)
	printField("Artist", v.Artist)
	printField("Album", v.Album)
	printField("Genre", v.Genre)
	if v.Year != nil {
		printField("Year", itoa(*v.Year))
	}
	printField("Track", v.TrackNumber)
	printField("Disc", v.DiscNumber)
	printField("Duration", v.Duration)
	if v.HasArtwork {
		printField("Artwork", "present")
	}
	if len(v.Chapters) > 0 {
		fmt.Printf("  %-14s %d\n", "Chapters:", len(v.Chapters))
		for i, ch := range v.Chapters {
			fmt.Printf("    %2d. %s  %s\n", i+1, ch.Start, ch.Title)
		}
	}
}

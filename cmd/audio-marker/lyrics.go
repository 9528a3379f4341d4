package main

import (
	"fmt"
	"os"

	"github.com/atelier-socle/audiomarker/exchange"
	"github.com/atelier-socle/audiomarker/model"
	"github.com/urfave/cli/v2"
)

func lyricsCommand() *cli.Command {
	return &cli.Command{
		Name:  "lyrics",
		Usage: "export, import or clear a file's lyrics",
		Subcommands: []*cli.Command{
			lyricsExportCommand(),
			lyricsImportCommand(),
			lyricsClearCommand(),
		},
	}
}

func lyricsExportCommand() *cli.Command {
	return &cli.Command{
		Name:      "export",
		Usage:     "print a file's lyrics",
		ArgsUsage: "<file>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "format", Value: "text", Usage: "text, lrc or ttml"},
			&cli.StringFlag{Name: "to", Usage: "write to a file instead of stdout"},
		},
		Action: func(c *cli.Context) error {
			path := c.Args().First()
			if path == "" {
				return usageError("lyrics export: missing <file>")
			}

			facade, err := newFacade(c)
			if err != nil {
				return err
			}
			info, err := facade.Read(path)
			if err != nil {
				return err
			}

			var text string
			switch c.String("format") {
			case "text":
				text = info.Metadata.UnsynchronizedLyrics
			case "lrc":
				if len(info.Metadata.SynchronizedLyrics) == 0 {
					return usageError("lyrics export: %s has no synchronized lyrics", path)
				}
				text = exchange.EmitLRCLyrics(info.Metadata.SynchronizedLyrics[0])
			case "ttml":
				if len(info.Metadata.SynchronizedLyrics) == 0 {
					return usageError("lyrics export: %s has no synchronized lyrics", path)
				}
				text = exchange.EmitTTMLLyrics(info.Metadata.SynchronizedLyrics)
			default:
				return usageError("lyrics export: unknown --format %q", c.String("format"))
			}

			if out := c.String("to"); out != "" {
				return os.WriteFile(out, []byte(text), 0o644)
			}
			fmt.Print(text)
			return nil
		},
	}
}

func lyricsImportCommand() *cli.Command {
	return &cli.Command{
		Name:      "import",
		Usage:     "replace a file's synchronized lyrics from an LRC or TTML file",
		ArgsUsage: "<file>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "from", Required: true},
			&cli.StringFlag{Name: "format", Required: true, Usage: "lrc or ttml"},
			&cli.StringFlag{Name: "language", Value: "und", Usage: "ISO 639-2 language code, used by --format lrc"},
		},
		Action: func(c *cli.Context) error {
			path := c.Args().First()
			if path == "" {
				return usageError("lyrics import: missing <file>")
			}

			data, err := os.ReadFile(c.String("from"))
			if err != nil {
				return err
			}

			var tracks []model.SynchronizedLyrics
			switch c.String("format") {
			case "lrc":
				sl, err := exchange.ParseLRCLyrics(string(data), c.String("language"))
				if err != nil {
					return err
				}
				tracks = []model.SynchronizedLyrics{*sl}
			case "ttml":
				tracks, err = exchange.ParseTTMLLyrics(string(data))
				if err != nil {
					return err
				}
			default:
				return usageError("lyrics import: unknown --format %q", c.String("format"))
			}

			facade, err := newFacade(c)
			if err != nil {
				return err
			}
			if err := facade.Modify(path, func(info *model.AudioFileInfo) error {
				info.Metadata.SynchronizedLyrics = tracks
				return nil
			}); err != nil {
				return err
			}
			printOK("imported lyrics into %s", path)
			return nil
		},
	}
}

func lyricsClearCommand() *cli.Command {
	return &cli.Command{
		Name:      "clear",
		Usage:     "remove all lyrics (plain and synchronized)",
		ArgsUsage: "<file>",
		Action: func(c *cli.Context) error {
			path := c.Args().First()
			if path == "" {
				return usageError("lyrics clear: missing <file>")
			}

			facade, err := newFacade(c)
			if err != nil {
				return err
			}
			return facade.Modify(path, func(info *model.AudioFileInfo) error {
				info.Metadata.UnsynchronizedLyrics = ""
				info.Metadata.SynchronizedLyrics = nil
				return nil
			})
		},
	}
}

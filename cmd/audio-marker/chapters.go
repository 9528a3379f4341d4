package main

import (
	"fmt"
	"os"

	"github.com/atelier-socle/audiomarker/exchange"
	"github.com/atelier-socle/audiomarker/model"
	"github.com/urfave/cli/v2"
)

func chaptersCommand() *cli.Command {
	return &cli.Command{
		Name:  "chapters",
		Usage: "add, import, export or clear a file's chapters",
		Subcommands: []*cli.Command{
			chaptersAddCommand(),
			chaptersImportCommand(),
			chaptersExportCommand(),
			chaptersClearCommand(),
		},
	}
}

func chaptersAddCommand() *cli.Command {
	return &cli.Command{
		Name:      "add",
		Usage:     "append one chapter",
		ArgsUsage: "<file>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "start", Required: true, Usage: "HH:MM:SS.mmm"},
			&cli.StringFlag{Name: "end", Usage: "HH:MM:SS.mmm"},
			&cli.StringFlag{Name: "title", Required: true},
			&cli.StringFlag{Name: "url"},
		},
		Action: func(c *cli.Context) error {
			path := c.Args().First()
			if path == "" {
				return usageError("chapters add: missing <file>")
			}

			start, err := model.ParseTimestamp(c.String("start"))
			if err != nil {
				return err
			}
			chapter, err := model.NewChapter(start, c.String("title"))
			if err != nil {
				return err
			}
			if c.IsSet("end") {
				end, err := model.ParseTimestamp(c.String("end"))
				if err != nil {
					return err
				}
				chapter, err = chapter.WithEnd(end)
				if err != nil {
					return err
				}
			}
			chapter.URL = c.String("url")

			facade, err := newFacade(c)
			if err != nil {
				return err
			}

			return facade.Modify(path, func(info *model.AudioFileInfo) error {
				if info.Chapters == nil {
					info.Chapters = model.NewChapterList()
				}
				info.Chapters.Append(chapter)
				info.Chapters.SortByStart()
				return nil
			})
		},
	}
}

func chaptersImportCommand() *cli.Command {
	return &cli.Command{
		Name:      "import",
		Usage:     "replace a file's chapters from a text interchange file",
		ArgsUsage: "<file>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "from", Required: true, Usage: "path to the interchange text file"},
			&cli.StringFlag{Name: "format", Required: true, Usage: chapterFormatUsage},
		},
		Action: func(c *cli.Context) error {
			path := c.Args().First()
			if path == "" {
				return usageError("chapters import: missing <file>")
			}

			format, err := parseChapterFormat(c.String("format"))
			if err != nil {
				return err
			}

			data, err := os.ReadFile(c.String("from"))
			if err != nil {
				return err
			}

			facade, err := newFacade(c)
			if err != nil {
				return err
			}
			if err := facade.ImportChapters(string(data), format, path); err != nil {
				return err
			}
			printOK("imported chapters into %s", path)
			return nil
		},
	}
}

func chaptersExportCommand() *cli.Command {
	return &cli.Command{
		Name:      "export",
		Usage:     "print a file's chapters in a text interchange format",
		ArgsUsage: "<file>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "format", Required: true, Usage: chapterFormatUsage},
			&cli.StringFlag{Name: "to", Usage: "write to a file instead of stdout"},
		},
		Action: func(c *cli.Context) error {
			path := c.Args().First()
			if path == "" {
				return usageError("chapters export: missing <file>")
			}

			format, err := parseChapterFormat(c.String("format"))
			if err != nil {
				return err
			}

			facade, err := newFacade(c)
			if err != nil {
				return err
			}
			text, err := facade.ExportChapters(path, format)
			if err != nil {
				return err
			}

			if out := c.String("to"); out != "" {
				return os.WriteFile(out, []byte(text), 0o644)
			}
			fmt.Print(text)
			return nil
		},
	}
}

func chaptersClearCommand() *cli.Command {
	return &cli.Command{
		Name:      "clear",
		Usage:     "remove every chapter, preserving other metadata",
		ArgsUsage: "<file>",
		Action: func(c *cli.Context) error {
			path := c.Args().First()
			if path == "" {
				return usageError("chapters clear: missing <file>")
			}

			facade, err := newFacade(c)
			if err != nil {
				return err
			}
			return facade.WriteChapters(path, model.NewChapterList())
		},
	}
}

const chapterFormatUsage = "podlove-json, podlove-xml, mp4chaps, ffmetadata, podcasting2, cuesheet, lrc, ttml, webvtt, srt or markdown (export-only)"

func parseChapterFormat(s string) (exchange.Format, error) {
	switch s {
	case "podlove-json":
		return exchange.FormatPodloveJSON, nil
	case "podlove-xml":
		return exchange.FormatPodloveXML, nil
	case "mp4chaps":
		return exchange.FormatMP4Chaps, nil
	case "ffmetadata":
		return exchange.FormatFFMetadata, nil
	case "podcasting2":
		return exchange.FormatPodcasting2, nil
	case "cuesheet":
		return exchange.FormatCueSheet, nil
	case "lrc":
		return exchange.FormatLRC, nil
	case "ttml":
		return exchange.FormatTTML, nil
	case "webvtt":
		return exchange.FormatWebVTT, nil
	case "srt":
		return exchange.FormatSRT, nil
	case "markdown":
		return exchange.FormatMarkdown, nil
	default:
		return 0, usageError("unknown chapter format %q (want one of: %s)", s, chapterFormatUsage)
	}
}

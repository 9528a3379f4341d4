package main

import (
	"github.com/atelier-socle/audiomarker/validate"
	"github.com/urfave/cli/v2"
)

func validateCommand() *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Usage:     "run the validation rules over a file's current metadata",
		ArgsUsage: "<file>",
		Action: func(c *cli.Context) error {
			path := c.Args().First()
			if path == "" {
				return usageError("validate: missing <file>")
			}

			facade, err := newFacade(c)
			if err != nil {
				return err
			}
			info, err := facade.Read(path)
			if err != nil {
				return err
			}

			result := facade.Validate(info)
			if len(result.Issues) == 0 {
				printOK("%s: no issues", path)
				return nil
			}

			for _, issue := range result.Issues {
				printIssue(issue)
			}
			if !result.IsValid() {
				return cli.Exit("validation failed", 1)
			}
			return nil
		},
	}
}

func printIssue(issue validate.Issue) {
	line := issue.Rule + ": " + issue.Message
	if issue.Context != "" {
		line += " (" + issue.Context + ")"
	}
	if issue.Severity == validate.SeverityError {
		printError2(line)
		return
	}
	printWarn("%s", line)
}

func printError2(line string) {
	errorColor.Printf("%s\n", line)
}

package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
)

var (
	errorColor = color.New(color.FgRed, color.Bold)
	okColor    = color.New(color.FgGreen)
	warnColor  = color.New(color.FgYellow)
	headColor  = color.New(color.FgCyan, color.Bold)
)

func printError(err error) {
	errorColor.Fprintf(os.Stderr, "error: %v\n", err)
}

func printOK(format string, args ...interface{}) {
	okColor.Printf(format+"\n", args...)
}

func printWarn(format string, args ...interface{}) {
	warnColor.Printf(format+"\n", args...)
}

func printHeading(format string, args ...interface{}) {
	headColor.Printf(format+"\n", args...)
}

func printField(name, value string) {
	if value == "" {
		return
	}
	fmt.Printf("  %-14s %s\n", name+":", value)
}

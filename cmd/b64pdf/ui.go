package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"

	b64pdf "github.com/porticus-lab/go-b64pdf"
)

var (
	infoColor    = color.New(color.FgCyan)
	successColor = color.New(color.FgGreen)
	warnColor    = color.New(color.FgYellow)
	errorColor   = color.New(color.FgRed)
)

// printStatus renders the manager's status line on stderr. The empty
// status prints nothing.
func printStatus(s b64pdf.Status) {
	switch s.Level {
	case b64pdf.LevelInfo:
		infoColor.Fprintf(os.Stderr, "ℹ %s\n", s.Message)
	case b64pdf.LevelSuccess:
		successColor.Fprintf(os.Stderr, "✓ %s\n", s.Message)
	case b64pdf.LevelError:
		errorColor.Fprintf(os.Stderr, "✗ %s\n", s.Message)
	}
}

func printSuccess(format string, args ...any) {
	successColor.Fprintf(os.Stderr, "✓ %s\n", fmt.Sprintf(format, args...))
}

func printWarning(format string, args ...any) {
	warnColor.Fprintf(os.Stderr, "⚠ %s\n", fmt.Sprintf(format, args...))
}

func printInfo(format string, args ...any) {
	infoColor.Fprintf(os.Stderr, "ℹ %s\n", fmt.Sprintf(format, args...))
}

package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	verrors "github.com/vango-dev/vloop/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const banner = `
  ╦  ╦┬  ┌─┐┌─┐┌─┐
  ╚╗╔╝│  │ ││ │├─┘
   ╚╝ ┴─┘└─┘└─┘┴
`

// Error output formats.
const (
	formatPretty  = "pretty"
	formatCompact = "compact"
	formatJSON    = "json"
)

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		pf := root.PersistentFlags()
		format, _ := pf.GetString("error-format")
		noColor, _ := pf.GetBool("no-color")
		setColor(noColor)
		reportError(os.Stderr, format, err)
		os.Exit(1)
	}
}

func validFormat(format string) bool {
	switch format {
	case formatPretty, formatCompact, formatJSON:
		return true
	}
	return false
}

// setColor turns ANSI colors in error output off when asked to, either by
// flag or by a non-empty NO_COLOR.
func setColor(noColor bool) {
	if noColor || os.Getenv("NO_COLOR") != "" {
		verrors.DisableColors()
		return
	}
	verrors.EnableColors()
}

// reportError writes err to w in the given format. Unknown formats fall
// back to pretty.
func reportError(w io.Writer, format string, err error) {
	var le *verrors.LoopError
	if !errors.As(err, &le) {
		le = verrors.Newf(verrors.CategoryCLI, "%s", err)
	}
	fmt.Fprintln(w, formatError(le, format))
}

func formatError(le *verrors.LoopError, format string) string {
	switch format {
	case formatJSON:
		return le.FormatJSON()
	case formatCompact:
		return le.FormatCompact()
	default:
		return le.Format()
	}
}

// printBanner prints the vloop ASCII art banner.
func printBanner(w io.Writer) {
	fmt.Fprint(w, banner)
}

// success prints a success message.
func success(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "  %s\n", fmt.Sprintf(format, args...))
}

package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"clipforge/internal/services"
)

const (
	ansiReset = "\x1b[0m"
	ansiRed   = "\x1b[31m"
	ansiGreen = "\x1b[32m"
	ansiBlue  = "\x1b[34m"
)

// renderHealthReport prints one verdict line per check, padded so the
// verdicts line up, and returns the number of failing checks.
func renderHealthReport(out io.Writer, checks []services.Health) int {
	colorize := terminalWriter(out)
	title := "== Health =="
	rule := strings.Repeat("-", len(title))
	if colorize {
		title = ansiBlue + title + ansiReset
		rule = ansiBlue + rule + ansiReset
	}
	fmt.Fprintln(out, title)
	fmt.Fprintln(out, rule)

	width := 0
	for _, check := range checks {
		if len(check.Name) > width {
			width = len(check.Name)
		}
	}

	failed := 0
	for _, check := range checks {
		verdict, color := "[OK]", ansiGreen
		if !check.Ready {
			verdict, color = "[ERROR]", ansiRed
			failed++
		}
		line := fmt.Sprintf("  %-*s %s", width+1, check.Name+":", verdict)
		if check.Detail != "" {
			line += " " + check.Detail
		}
		if colorize {
			line = color + line + ansiReset
		}
		fmt.Fprintln(out, line)
	}
	return failed
}

func terminalWriter(out io.Writer) bool {
	file, ok := out.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

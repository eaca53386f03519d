package main

import (
	"io"
	"os"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// colorEnabled resolves the --color mode against the output destination:
// "always" and "never" are unconditional, "auto" colors only terminals.
func colorEnabled(mode string, out io.Writer) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	default:
		f, ok := out.(*os.File)
		return ok && term.IsTerminal(int(f.Fd()))
	}
}

// colorizeTemplate wraps the whole template source in red, so every
// rendered decoration stands out from the surrounding text. Coloring the
// source once, before compilation, keeps the escape codes inside the cached
// decorations instead of re-wrapping on every emit.
func colorizeTemplate(src string) string {
	red := color.New(color.FgRed)
	red.EnableColor()
	return red.Sprint(src)
}

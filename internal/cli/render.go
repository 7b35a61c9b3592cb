package cli

import (
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"

	"github.com/dshills/crev/internal/repl"
)

const (
	defaultWidth = 80
	maxWidth     = 120
)

// terminal describes where user-facing output goes.
type terminal struct {
	tty   bool
	color bool
	width int
}

func detectTerminal(w io.Writer, noColor bool) terminal {
	t := terminal{width: defaultWidth}
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		t.tty = true
		if width, _, err := term.GetSize(int(f.Fd())); err == nil && width > 0 {
			t.width = min(width, maxWidth)
		}
	}
	t.color = t.tty && !noColor && os.Getenv("NO_COLOR") == ""
	if !t.color {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
	return t
}

// stdinIsTerminal reports whether r is an interactive terminal.
func stdinIsTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// markdownRenderer returns a glamour renderer for replies, or nil when
// output is not a terminal and replies should be printed verbatim.
func (t terminal) markdownRenderer() func(string) string {
	if !t.tty {
		return nil
	}
	style := glamour.WithAutoStyle()
	if !t.color {
		style = glamour.WithStandardStyle("notty")
	}
	r, err := glamour.NewTermRenderer(style, glamour.WithWordWrap(t.width-4))
	if err != nil {
		return nil
	}
	return func(md string) string {
		out, err := r.Render(md)
		if err != nil {
			return md
		}
		return strings.Trim(out, "\n")
	}
}

func (t terminal) theme() repl.Theme {
	if t.color {
		return repl.DefaultTheme()
	}
	return repl.PlainTheme()
}

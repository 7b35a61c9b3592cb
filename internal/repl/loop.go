package repl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dshills/crev/internal/output"
	"github.com/dshills/crev/internal/providers"
	"github.com/dshills/crev/internal/review"
	"github.com/dshills/crev/internal/session"
)

// Agent is the conversation the loop drives.
type Agent interface {
	Chat(ctx context.Context, message string) (string, error)
	ReviewCode(ctx context.Context, code, language string) (string, error)
	LoadFile(path string) (review.Source, error)
	ReviewSource(ctx context.Context, src review.Source) (string, error)
	ExplainLast(ctx context.Context) (string, error)
	Clear()
	History() *session.History
	Provider() string
	Model() string
}

// Theme styles the loop's own messages. Replies are never styled.
type Theme struct {
	Banner lipgloss.Style
	Prompt lipgloss.Style
	Agent  lipgloss.Style
	Info   lipgloss.Style
	Error  lipgloss.Style
}

// DefaultTheme returns the coloured theme.
func DefaultTheme() Theme {
	return Theme{
		Banner: lipgloss.NewStyle().Foreground(lipgloss.Color("#A78BFA")).Bold(true),
		Prompt: lipgloss.NewStyle().Foreground(lipgloss.Color("#22D3EE")).Bold(true),
		Agent:  lipgloss.NewStyle().Foreground(lipgloss.Color("#34D399")).Bold(true),
		Info:   lipgloss.NewStyle().Foreground(lipgloss.Color("#9CA3AF")),
		Error:  lipgloss.NewStyle().Foreground(lipgloss.Color("#F87171")).Bold(true),
	}
}

// PlainTheme returns a theme without any styling.
func PlainTheme() Theme {
	s := lipgloss.NewStyle()
	return Theme{Banner: s, Prompt: s, Agent: s, Info: s, Error: s}
}

const (
	promptText = "You > "
	pasteText  = "... "
	pasteEnd   = "."
)

const helpText = `Commands:
  review <code>   - review an inline snippet ("review" alone is chat)
  file <path>     - review a local file ("file" alone is chat)
  paste [lang]    - enter a multi-line snippet, end with a line containing "."
  explain         - explain the last reviewed code
  clear           - start a new session
  save <path>     - save the session as JSON
  help            - show this help
  exit / quit     - exit the agent

Anything else is sent to the agent as a chat message.`

// Loop is the interactive read-prompt-print loop.
type Loop struct {
	Agent Agent
	In    LineReader
	Out   io.Writer
	Theme Theme
	// Render turns a markdown reply into terminal output. Nil prints the
	// reply as is.
	Render  func(markdown string) string
	Version string
	Logger  *slog.Logger
}

// Run prints the banner and processes lines until exit, EOF or Ctrl+C.
// Failed requests are reported and the loop continues.
func (l *Loop) Run(ctx context.Context) error {
	if l.Logger == nil {
		l.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	l.banner()

	for {
		line, err := l.In.ReadLine(promptText)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, ErrAborted) {
				l.goodbye()
				return nil
			}
			return fmt.Errorf("reading input: %w", err)
		}
		if ctx.Err() != nil {
			l.goodbye()
			return nil
		}

		cmd := Parse(line)
		l.Logger.Debug("repl command", "kind", cmd.Kind.String())
		if done := l.dispatch(ctx, cmd); done {
			return nil
		}
		if ctx.Err() != nil {
			l.goodbye()
			return nil
		}
	}
}

// dispatch runs one command and reports whether the loop should stop.
func (l *Loop) dispatch(ctx context.Context, cmd Command) bool {
	switch cmd.Kind {
	case KindEmpty:
	case KindExit:
		l.goodbye()
		return true
	case KindHelp:
		fmt.Fprintln(l.Out, helpText)
		fmt.Fprintln(l.Out)
	case KindClear:
		l.Agent.Clear()
		fmt.Fprintln(l.Out, l.Theme.Info.Render("🔄 Session cleared. Starting fresh!"))
		fmt.Fprintln(l.Out)
	case KindExplain:
		l.respond(l.Agent.ExplainLast(ctx))
	case KindReview:
		l.respond(l.Agent.ReviewCode(ctx, cmd.Arg, ""))
	case KindFile:
		l.reviewFile(ctx, cmd.Arg)
	case KindPaste:
		l.paste(ctx, cmd.Arg)
	case KindSave:
		if cmd.Arg == "" {
			l.usage("save <path>")
			return false
		}
		l.save(cmd.Arg)
	case KindChat:
		l.respond(l.Agent.Chat(ctx, cmd.Arg))
	}
	return false
}

func (l *Loop) reviewFile(ctx context.Context, path string) {
	src, err := l.Agent.LoadFile(path)
	if err != nil {
		l.printError(err)
		return
	}
	fmt.Fprintln(l.Out, l.Theme.Info.Render(fmt.Sprintf("📂 Reviewing file: %s (%s)", src.Path, src.Language)))
	l.respond(l.Agent.ReviewSource(ctx, src))
}

// paste collects lines until a lone "." and reviews them.
func (l *Loop) paste(ctx context.Context, language string) {
	fmt.Fprintln(l.Out, l.Theme.Info.Render(`Paste your code. End with a line containing only "."`))
	var lines []string
	for {
		line, err := l.In.ReadLine(pasteText)
		if err != nil {
			if errors.Is(err, ErrAborted) {
				fmt.Fprintln(l.Out, l.Theme.Info.Render("Paste cancelled."))
				return
			}
			break
		}
		if strings.TrimSpace(line) == pasteEnd {
			break
		}
		lines = append(lines, line)
	}
	code := strings.Join(lines, "\n")
	if strings.TrimSpace(code) == "" {
		fmt.Fprintln(l.Out, l.Theme.Info.Render("Nothing pasted."))
		return
	}
	l.respond(l.Agent.ReviewCode(ctx, code, language))
}

func (l *Loop) save(path string) {
	t := output.FromSession(l.Agent.History(), l.Agent.Provider(), l.Agent.Model(), l.Version)
	if err := output.SaveTranscript(path, t); err != nil {
		l.printError(err)
		return
	}
	fmt.Fprintln(l.Out, l.Theme.Info.Render("💾 Session saved to "+path))
	fmt.Fprintln(l.Out)
}

func (l *Loop) respond(reply string, err error) {
	if err != nil {
		l.printError(err)
		return
	}
	if l.Render != nil {
		reply = l.Render(reply)
	}
	fmt.Fprintln(l.Out)
	fmt.Fprintln(l.Out, l.Theme.Agent.Render("Agent >"))
	fmt.Fprintln(l.Out, strings.TrimRight(reply, "\n"))
	fmt.Fprintln(l.Out)
}

func (l *Loop) printError(err error) {
	switch {
	case errors.Is(err, review.ErrNoCode):
		msg := err.Error()
		fmt.Fprintln(l.Out, l.Theme.Info.Render(strings.ToUpper(msg[:1])+msg[1:]+"."))
	case providers.IsAuthError(err):
		fmt.Fprintln(l.Out, l.Theme.Error.Render("❌ "+err.Error()))
		fmt.Fprintln(l.Out, l.Theme.Info.Render("   Check your credentials and try again."))
	case errors.Is(err, context.DeadlineExceeded):
		fmt.Fprintln(l.Out, l.Theme.Error.Render("❌ Request timed out. Try again or raise timeout_seconds in the config."))
	default:
		fmt.Fprintln(l.Out, l.Theme.Error.Render("❌ "+err.Error()))
	}
	fmt.Fprintln(l.Out)
}

func (l *Loop) usage(form string) {
	fmt.Fprintln(l.Out, l.Theme.Info.Render("Usage: "+form))
	fmt.Fprintln(l.Out)
}

func (l *Loop) banner() {
	title := "🤖  CodeReview Agent"
	if l.Version != "" {
		title += " " + l.Version
	}
	box := lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		Padding(0, 2).
		Render(l.Theme.Banner.Render(title) + "\n" +
			l.Theme.Info.Render(fmt.Sprintf("%s · %s", l.Agent.Provider(), l.Agent.Model())))
	fmt.Fprintln(l.Out, box)
	fmt.Fprintln(l.Out, helpText)
	fmt.Fprintln(l.Out)
	fmt.Fprintln(l.Out, "Type your message or a command to get started.")
	fmt.Fprintln(l.Out)
}

func (l *Loop) goodbye() {
	fmt.Fprintln(l.Out)
	fmt.Fprintln(l.Out, "👋 Goodbye!")
}

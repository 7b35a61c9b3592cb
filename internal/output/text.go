package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/dshills/crev/internal/review"
)

// TextWriter outputs a short header followed by the reply. Render, when set,
// turns the markdown reply into terminal output.
type TextWriter struct {
	Render func(markdown string) string
}

func (t *TextWriter) Write(w io.Writer, tr *Transcript) error {
	ew := &errWriter{w: w}

	ew.printf("crev code review: %s\n", subject(tr))
	ew.printf("Provider: %s | Model: %s\n", tr.Provider, tr.Model)
	if tr.Review != nil {
		ew.println(strings.Repeat("─", 60))
		if tr.Review.Verdict != "" {
			ew.printf("Verdict: %s\n", tr.Review.Verdict)
		}
		ew.printf("Issues: %s\n", countLine(tr.Review))
	}
	ew.println(strings.Repeat("─", 60))

	reply, ok := LastReply(tr.History)
	if !ok {
		ew.println("(no reply)")
		return ew.err
	}
	if t.Render != nil {
		reply = t.Render(reply)
	}
	ew.println(strings.TrimRight(reply, "\n"))
	return ew.err
}

func subject(tr *Transcript) string {
	name := tr.File
	if name == "" {
		name = "inline snippet"
	}
	if tr.Language != "" {
		return fmt.Sprintf("%s (%s)", name, tr.Language)
	}
	return name
}

func countLine(r *review.Review) string {
	c := r.Counts()
	total := len(r.Issues)
	if total == 0 {
		return "none"
	}
	var parts []string
	for _, p := range []struct {
		n     int
		label string
	}{
		{c.Critical, "critical"},
		{c.High, "high"},
		{c.Medium, "medium"},
		{c.Low, "low"},
		{c.Ungraded, "ungraded"},
	} {
		if p.n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", p.n, p.label))
		}
	}
	return fmt.Sprintf("%d total (%s)", total, strings.Join(parts, ", "))
}

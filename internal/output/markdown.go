package output

import (
	"io"
	"strings"

	"github.com/dshills/crev/internal/review"
)

// MarkdownWriter outputs a PR-comment-friendly markdown report.
type MarkdownWriter struct{}

func (m *MarkdownWriter) Write(w io.Writer, tr *Transcript) error {
	ew := &errWriter{w: w}

	ew.printf("## crev Code Review\n\n")
	ew.printf("**Subject:** `%s`  \n", subject(tr))
	ew.printf("**Model:** %s / %s\n\n", tr.Provider, tr.Model)

	r := tr.Review
	if r == nil {
		reply, ok := LastReply(tr.History)
		if !ok {
			ew.println("_No reply._")
			return ew.err
		}
		ew.println(strings.TrimRight(reply, "\n"))
		return ew.err
	}

	if r.Verdict != "" {
		ew.printf("**Verdict:** %s %s\n\n", verdictIcon(r.Verdict), r.Verdict)
	} else if r.Summary != "" {
		ew.printf("**Summary:** %s\n\n", r.Summary)
	}

	c := r.Counts()
	ew.printf("| Severity | Count |\n")
	ew.printf("|----------|-------|\n")
	ew.printf("| Critical | %d |\n", c.Critical)
	ew.printf("| High | %d |\n", c.High)
	ew.printf("| Medium | %d |\n", c.Medium)
	ew.printf("| Low | %d |\n", c.Low)
	ew.printf("| **Total** | **%d** |\n\n", len(r.Issues))

	ew.printf("### Issues\n\n")
	if len(r.Issues) == 0 {
		ew.printf("No issues found. :white_check_mark:\n\n")
	}
	for _, is := range r.Issues {
		label := "UNGRADED"
		if is.Severity != "" {
			label = strings.ToUpper(string(is.Severity))
		}
		ew.printf("%d. %s **%s** %s\n", is.Index, mdSeverityIcon(is.Severity), label, strings.ReplaceAll(is.Text, "\n", "\n   "))
	}
	if len(r.Issues) > 0 {
		ew.println("")
	}

	if len(r.Suggestions) > 0 {
		ew.printf("### Suggestions\n\n")
		for _, s := range r.Suggestions {
			ew.printf("- %s\n", strings.ReplaceAll(s, "\n", "\n  "))
		}
		ew.println("")
	}

	lang := fenceLang(tr.Language)
	if r.Refactored != "" {
		ew.printf("<details>\n<summary>Refactored snippet</summary>\n\n```%s\n%s\n```\n\n</details>\n\n", lang, r.Refactored)
	}
	if r.TestStubs != "" {
		ew.printf("<details>\n<summary>Test stubs</summary>\n\n```%s\n%s\n```\n\n</details>\n\n", lang, r.TestStubs)
	}
	return ew.err
}

func verdictIcon(v review.Verdict) string {
	switch v {
	case review.VerdictPass:
		return ":white_check_mark:"
	case review.VerdictNeedWork:
		return ":warning:"
	case review.VerdictCritical:
		return ":rotating_light:"
	default:
		return ""
	}
}

func mdSeverityIcon(s review.Severity) string {
	switch s {
	case review.SeverityCritical:
		return ":rotating_light:"
	case review.SeverityHigh:
		return ":red_circle:"
	case review.SeverityMedium:
		return ":orange_circle:"
	case review.SeverityLow:
		return ":yellow_circle:"
	default:
		return ":white_circle:"
	}
}

// fenceLang maps a detected language name to a code fence info string.
func fenceLang(language string) string {
	l := strings.ToLower(language)
	switch l {
	case "", "unknown", review.AutoDetect:
		return ""
	case "c++":
		return "cpp"
	case "c#":
		return "csharp"
	case "typescript/react":
		return "tsx"
	case "javascript/react":
		return "jsx"
	case "c/c++":
		return "c"
	}
	return strings.ReplaceAll(l, " ", "")
}

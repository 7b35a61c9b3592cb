package review

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

type section int

const (
	secNone section = iota
	secSummary
	secIssues
	secSuggestions
	secRefactor
	secTests
)

// headingKeywords are matched against the start of a normalized heading,
// longest first so "issues found" wins over "issues".
var headingKeywords = []struct {
	word string
	sec  section
}{
	{"refactored snippet", secRefactor},
	{"refactored code", secRefactor},
	{"refactored", secRefactor},
	{"refactor", secRefactor},
	{"issues found", secIssues},
	{"issues", secIssues},
	{"suggestions", secSuggestions},
	{"test stubs", secTests},
	{"unit tests", secTests},
	{"tests", secTests},
	{"summary", secSummary},
	{"verdict", secSummary},
}

var (
	listItemRe     = regexp.MustCompile(`^\s*(?:(\d+)[.)]|[-*•])\s+(.*)$`)
	bracketSevRe   = regexp.MustCompile(`(?i)[\[(]\s*(low|medium|high|critical)\s*[\])]`)
	boldSevRe      = regexp.MustCompile(`(?i)\*\*\s*(low|medium|high|critical)\s*\*\*`)
	leadingSevRe   = regexp.MustCompile(`(?i)^(low|medium|high|critical)\s*[:\-–—]\s*`)
	noIssuesRe     = regexp.MustCompile(`(?i)^(none|no issues( found)?|n/a)\.?$`)
	verdictRe      = regexp.MustCompile(`\b(pass(?:es|ed)?|needs work|critical issues?)\b`)
	headingTrimSet = "*_:–—-. \t"
)

// Parse splits a model reply into the sections requested by the system
// prompt. It never fails: an unrecognized reply yields a Review holding only
// Raw.
func Parse(reply string) Review {
	r := Review{Raw: reply, Issues: []Issue{}}

	bodies := splitSections(reply)

	if body, ok := bodies[secSummary]; ok {
		r.Summary = strings.TrimSpace(strings.Join(body, "\n"))
		r.Verdict = detectVerdict(r.Summary)
	}
	if body, ok := bodies[secIssues]; ok {
		r.Issues = parseIssues(body)
	}
	if body, ok := bodies[secSuggestions]; ok {
		r.Suggestions = parseItems(body)
	}
	if body, ok := bodies[secRefactor]; ok {
		r.Refactored = codeOrText(body)
	}
	if body, ok := bodies[secTests]; ok {
		r.TestStubs = codeOrText(body)
	}
	return r
}

// splitSections assigns each line of the reply to the most recent heading.
// Lines inside fenced code blocks never start a new section.
func splitSections(reply string) map[section][]string {
	bodies := make(map[section][]string)
	current := secNone
	inFence := false

	for _, line := range strings.Split(reply, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") {
			inFence = !inFence
			if current != secNone {
				bodies[current] = append(bodies[current], line)
			}
			continue
		}
		if !inFence {
			if sec, rest, ok := matchHeading(line); ok {
				current = sec
				if _, seen := bodies[sec]; !seen {
					bodies[sec] = []string{}
				}
				if rest != "" {
					bodies[sec] = append(bodies[sec], rest)
				}
				continue
			}
		}
		if current != secNone {
			bodies[current] = append(bodies[current], line)
		}
	}
	return bodies
}

// matchHeading recognizes "## Summary", "**Summary**: ...", and
// "1. 📋 **Issues Found** – ..." style lines.
func matchHeading(line string) (section, string, bool) {
	trimmed := strings.TrimSpace(line)
	isMarkdownHeading := strings.HasPrefix(trimmed, "#")
	if !isMarkdownHeading && !strings.Contains(trimmed, "**") {
		return secNone, "", false
	}
	// Bullets are list content, even when they start with a bold keyword.
	for _, bullet := range []string{"- ", "* ", "• "} {
		if strings.HasPrefix(trimmed, bullet) {
			return secNone, "", false
		}
	}

	s := strings.TrimLeft(trimmed, "#")
	s = strings.TrimLeftFunc(s, func(r rune) bool {
		return unicode.IsDigit(r) || r == '.' || r == ')' || unicode.IsSpace(r)
	})
	// Skip emoji and other decoration ahead of the keyword.
	s = strings.TrimLeftFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r)
	})

	lower := strings.ToLower(s)
	for _, kw := range headingKeywords {
		if !strings.HasPrefix(lower, kw.word) {
			continue
		}
		rest := s[len(kw.word):]
		// "Issues" must not match "Issuesome"; require a word boundary.
		if r, _ := utf8.DecodeRuneInString(rest); unicode.IsLetter(r) {
			continue
		}
		// Only the emphasized part may be the heading; "**Summary of x**"
		// style bold phrases are not.
		restTrimmed := strings.TrimLeft(rest, headingTrimSet)
		if !isMarkdownHeading && !strings.HasPrefix(strings.TrimLeft(rest, " "), "**") && !strings.HasPrefix(rest, ":") {
			continue
		}
		return kw.sec, strings.TrimSpace(restTrimmed), true
	}
	return secNone, "", false
}

// detectVerdict picks the earliest verdict phrase so that "Needs Work, no
// critical issues" reads as Needs Work.
func detectVerdict(summary string) Verdict {
	m := verdictRe.FindStringSubmatch(strings.ToLower(summary))
	if m == nil {
		if strings.Contains(strings.ToLower(summary), "critical") {
			return VerdictCritical
		}
		return ""
	}
	switch {
	case strings.HasPrefix(m[1], "critical"):
		return VerdictCritical
	case m[1] == "needs work":
		return VerdictNeedWork
	default:
		return VerdictPass
	}
}

func parseIssues(body []string) []Issue {
	issues := []Issue{}
	for _, item := range collectItems(body) {
		if noIssuesRe.MatchString(strings.TrimSpace(item.text)) {
			continue
		}
		is := Issue{Index: item.index}
		text := item.text
		if m := bracketSevRe.FindStringSubmatchIndex(text); m != nil {
			is.Severity = ParseSeverity(text[m[2]:m[3]])
			text = text[:m[0]] + text[m[1]:]
		} else if m := boldSevRe.FindStringSubmatchIndex(text); m != nil {
			is.Severity = ParseSeverity(text[m[2]:m[3]])
			text = text[:m[0]] + text[m[1]:]
		} else if m := leadingSevRe.FindStringSubmatchIndex(text); m != nil {
			is.Severity = ParseSeverity(text[m[2]:m[3]])
			text = text[m[1]:]
		}
		is.Text = strings.TrimSpace(strings.Trim(strings.TrimSpace(text), ":–—-"))
		if is.Index == 0 {
			is.Index = len(issues) + 1
		}
		if is.Text != "" {
			issues = append(issues, is)
		}
	}
	return issues
}

func parseItems(body []string) []string {
	var out []string
	for _, item := range collectItems(body) {
		if t := strings.TrimSpace(item.text); t != "" {
			out = append(out, t)
		}
	}
	return out
}

type listItem struct {
	index int
	text  string
}

// collectItems groups list entries with their continuation lines. Text
// before the first list marker becomes its own item.
func collectItems(body []string) []listItem {
	var items []listItem
	inFence := false
	for _, line := range body {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") {
			inFence = !inFence
		}
		if trimmed == "" {
			continue
		}
		if !inFence {
			if m := listItemRe.FindStringSubmatch(line); m != nil {
				idx, _ := strconv.Atoi(m[1])
				items = append(items, listItem{index: idx, text: m[2]})
				continue
			}
		}
		if len(items) == 0 {
			items = append(items, listItem{text: trimmed})
			continue
		}
		items[len(items)-1].text += "\n" + trimmed
	}
	for i := range items {
		items[i].text = strings.TrimSpace(items[i].text)
	}
	return items
}

// codeOrText returns the first fenced block's content, or the section text
// when there is no fence.
func codeOrText(body []string) string {
	var code []string
	inFence, found := false, false
	for _, line := range body {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			if inFence {
				found = true
				break
			}
			inFence = true
			continue
		}
		if inFence {
			code = append(code, line)
		}
	}
	if found || inFence {
		return strings.Join(code, "\n")
	}
	text := strings.TrimSpace(strings.Join(body, "\n"))
	if noIssuesRe.MatchString(text) {
		return ""
	}
	return text
}

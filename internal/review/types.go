package review

import "strings"

// Severity is the level the model assigns to an issue.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// ParseSeverity normalizes a label such as "HIGH" or " Medium ".
func ParseSeverity(s string) Severity {
	switch Severity(strings.ToLower(strings.TrimSpace(s))) {
	case SeverityLow:
		return SeverityLow
	case SeverityMedium:
		return SeverityMedium
	case SeverityHigh:
		return SeverityHigh
	case SeverityCritical:
		return SeverityCritical
	default:
		return ""
	}
}

// SeverityRank returns a numeric rank for sorting (higher = more severe).
func SeverityRank(s Severity) int {
	switch s {
	case SeverityCritical:
		return 4
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	default:
		return 0
	}
}

// MeetsThreshold returns true if severity is at or above the threshold.
func MeetsThreshold(s Severity, threshold string) bool {
	if threshold == "none" || threshold == "" {
		return false
	}
	t := ParseSeverity(threshold)
	if t == "" {
		return false
	}
	return SeverityRank(s) >= SeverityRank(t)
}

// Verdict is the one-line outcome in the Summary section.
type Verdict string

const (
	VerdictPass     Verdict = "Pass"
	VerdictNeedWork Verdict = "Needs Work"
	VerdictCritical Verdict = "Critical Issues"
)

// Issue is one numbered entry from the "Issues Found" section.
type Issue struct {
	Index    int      `json:"index"`
	Severity Severity `json:"severity,omitempty"`
	Text     string   `json:"text"`
}

// Review is the model's reply split into the sections the system prompt
// asks for. Sections the model left out are empty; Raw always holds the
// reply verbatim.
type Review struct {
	Verdict     Verdict  `json:"verdict,omitempty"`
	Summary     string   `json:"summary,omitempty"`
	Issues      []Issue  `json:"issues"`
	Suggestions []string `json:"suggestions,omitempty"`
	Refactored  string   `json:"refactored,omitempty"`
	TestStubs   string   `json:"testStubs,omitempty"`
	Raw         string   `json:"raw"`
}

// Structured reports whether any section was recognized.
func (r Review) Structured() bool {
	return r.Verdict != "" || r.Summary != "" || len(r.Issues) > 0 ||
		len(r.Suggestions) > 0 || r.Refactored != "" || r.TestStubs != ""
}

// HighestSeverity returns the most severe issue level, or "" when there are
// no graded issues.
func (r Review) HighestSeverity() Severity {
	var highest Severity
	for _, is := range r.Issues {
		if SeverityRank(is.Severity) > SeverityRank(highest) {
			highest = is.Severity
		}
	}
	return highest
}

// SeverityCounts holds counts by severity level.
type SeverityCounts struct {
	Low      int `json:"low"`
	Medium   int `json:"medium"`
	High     int `json:"high"`
	Critical int `json:"critical"`
	Ungraded int `json:"ungraded,omitempty"`
}

// Counts tallies issues by severity.
func (r Review) Counts() SeverityCounts {
	var c SeverityCounts
	for _, is := range r.Issues {
		switch is.Severity {
		case SeverityLow:
			c.Low++
		case SeverityMedium:
			c.Medium++
		case SeverityHigh:
			c.High++
		case SeverityCritical:
			c.Critical++
		default:
			c.Ungraded++
		}
	}
	return c
}

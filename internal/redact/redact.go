package redact

import (
	"path/filepath"
	"regexp"
	"strings"
)

const placeholder = "[REDACTED]"

// rule pairs a human-readable kind with the pattern that detects it.
type rule struct {
	kind string
	re   *regexp.Regexp
}

var rules = []rule{
	{"private key", regexp.MustCompile(`-----BEGIN\s+(RSA\s+|EC\s+|OPENSSH\s+)?PRIVATE KEY-----`)},
	{"github token", regexp.MustCompile(`gh[pousr]_[A-Za-z0-9_]{36,}`)},
	{"github fine-grained token", regexp.MustCompile(`github_pat_[A-Za-z0-9_]{22,}`)},
	{"slack token", regexp.MustCompile(`xox[bporas]-[A-Za-z0-9-]{10,}`)},
	{"anthropic key", regexp.MustCompile(`sk-ant-[A-Za-z0-9_-]{20,}`)},
	{"openai key", regexp.MustCompile(`sk-(proj-)?[A-Za-z0-9_-]{20,}`)},
	{"aws access key", regexp.MustCompile(`AKIA[0-9A-Z]{16}`)},
	{"aws secret key", regexp.MustCompile(`(?i)(aws[_-]?secret[_-]?access[_-]?key)\s*[:=]\s*["']?([A-Za-z0-9/+=]{40})["']?`)},
	{"api key", regexp.MustCompile(`(?i)(api[_-]?key|apikey|api[_-]?secret)\s*[:=]\s*["']?([A-Za-z0-9/+=_-]{20,})["']?`)},
	{"bearer token", regexp.MustCompile(`(?i)Bearer\s+[A-Za-z0-9._-]{20,}`)},
	{"jwt", regexp.MustCompile(`eyJ[A-Za-z0-9_-]{10,}\.eyJ[A-Za-z0-9_-]{10,}\.[A-Za-z0-9_-]{10,}`)},
	{"connection string", regexp.MustCompile(`(?i)\b(postgres(ql)?|mysql|mongodb(\+srv)?|redis|amqp)://[^:\s/]+:[^@\s]+@`)},
	{"credential assignment", regexp.MustCompile(`(?i)(secret|token|password|passwd|credential)\s*[:=]\s*["']([^"']{8,})["']`)},
	{"hex secret", regexp.MustCompile(`(?i)(key|secret|token)\s*[:=]\s*["']?[0-9a-f]{32,}["']?`)},
}

// Result describes what a redaction pass removed.
type Result struct {
	Text  string
	Count int
	Kinds []string
}

// Secrets replaces detected secrets in code with [REDACTED] and reports
// how many were found.
func Secrets(code string) Result {
	res := Result{Text: code}
	seen := make(map[string]bool)
	for _, r := range rules {
		n := 0
		res.Text = r.re.ReplaceAllStringFunc(res.Text, func(string) string {
			n++
			return placeholder
		})
		if n > 0 {
			res.Count += n
			if !seen[r.kind] {
				seen[r.kind] = true
				res.Kinds = append(res.Kinds, r.kind)
			}
		}
	}
	return res
}

// ShouldRedactPath reports whether a file path matches any redaction pattern.
func ShouldRedactPath(path string, patterns []string) bool {
	base := filepath.Base(path)
	for _, pattern := range patterns {
		if matched, err := filepath.Match(pattern, path); err == nil && matched {
			return true
		}
		// "**/.env" style patterns match on the file name alone.
		if clean := strings.TrimPrefix(pattern, "**/"); clean != pattern {
			if matched, err := filepath.Match(clean, base); err == nil && matched {
				return true
			}
		}
	}
	return false
}

// File withholds a whole file when its path matches a redaction pattern and
// otherwise scrubs the secrets inside it.
func File(content, path string, patterns []string) Result {
	if ShouldRedactPath(path, patterns) {
		return Result{
			Text:  placeholder + " (file content withheld by path policy)\n",
			Count: 1,
			Kinds: []string{"path policy"},
		}
	}
	return Secrets(content)
}

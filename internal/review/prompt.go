package review

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/alecthomas/chroma/v2/lexers"
)

const systemPrompt = `You are **CodeReview Agent**, an expert AI assistant specialised in reviewing code.

Your capabilities:
- Detect bugs, logic errors, and security vulnerabilities
- Suggest performance optimisations and best practices
- Enforce coding standards (PEP8, SOLID, DRY, etc.)
- Explain complex code in plain English
- Generate unit-test stubs for reviewed functions
- Provide refactored alternatives where relevant

Response format:
1. 📋 **Summary** – one-line verdict (Pass / Needs Work / Critical Issues)
2. 🐛 **Issues Found** – numbered list with severity [LOW / MEDIUM / HIGH / CRITICAL]
3. 💡 **Suggestions** – actionable improvements
4. ✅ **Refactored Snippet** – improved code (if applicable)
5. 🧪 **Test Stubs** – basic unit tests (if applicable)

Always be concise, constructive, and beginner-friendly.`

// AutoDetect is the language label used when the caller gives no hint.
const AutoDetect = "auto-detect"

const explainPrompt = "Can you explain what the last reviewed code does in simple terms?"

// SystemPrompt returns the system prompt that opens every conversation.
func SystemPrompt() string {
	return systemPrompt
}

// BuildReviewPrompt wraps code in the review request sent as a user turn.
func BuildReviewPrompt(code, language string) string {
	if strings.TrimSpace(language) == "" {
		language = AutoDetect
	}
	return fmt.Sprintf("Please review the following %s code:\n\n```\n%s\n```", language, code)
}

// ExplainPrompt returns the follow-up question for the last reviewed code.
func ExplainPrompt() string {
	return explainPrompt
}

var langMap = map[string]string{
	".py":    "Python",
	".js":    "JavaScript",
	".ts":    "TypeScript",
	".tsx":   "TypeScript/React",
	".jsx":   "JavaScript/React",
	".java":  "Java",
	".cs":    "C#",
	".go":    "Go",
	".rs":    "Rust",
	".cpp":   "C++",
	".cc":    "C++",
	".c":     "C",
	".h":     "C/C++",
	".rb":    "Ruby",
	".php":   "PHP",
	".swift": "Swift",
	".kt":    "Kotlin",
	".sql":   "SQL",
	".sh":    "Shell",
}

// DetectLanguage names the language of a file from its path. Unknown
// extensions fall back to chroma's lexer registry, then to the bare
// extension.
func DetectLanguage(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if lang, ok := langMap[ext]; ok {
		return lang
	}
	if lexer := lexers.Match(filepath.Base(path)); lexer != nil {
		return lexer.Config().Name
	}
	if ext != "" {
		return strings.TrimPrefix(ext, ".")
	}
	return "unknown"
}

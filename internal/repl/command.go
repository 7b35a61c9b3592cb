package repl

import "strings"

// Kind identifies what a line typed at the prompt asks for.
type Kind int

const (
	KindEmpty Kind = iota
	KindChat
	KindReview
	KindFile
	KindExplain
	KindClear
	KindPaste
	KindSave
	KindHelp
	KindExit
)

func (k Kind) String() string {
	switch k {
	case KindEmpty:
		return "empty"
	case KindChat:
		return "chat"
	case KindReview:
		return "review"
	case KindFile:
		return "file"
	case KindExplain:
		return "explain"
	case KindClear:
		return "clear"
	case KindPaste:
		return "paste"
	case KindSave:
		return "save"
	case KindHelp:
		return "help"
	case KindExit:
		return "exit"
	default:
		return "unknown"
	}
}

// Command is a parsed prompt line.
type Command struct {
	Kind Kind
	// Arg is the text after the command word, or the whole line for chat.
	Arg string
}

// prefixed lists commands that take an argument, matched on the first word.
// review and file without an argument are ordinary chat.
var prefixed = map[string]Kind{
	"review": KindReview,
	"file":   KindFile,
	"paste":  KindPaste,
	"save":   KindSave,
}

// bare lists commands that must be the whole line.
var bare = map[string]Kind{
	"explain": KindExplain,
	"clear":   KindClear,
	"help":    KindHelp,
	"?":       KindHelp,
	"exit":    KindExit,
	"quit":    KindExit,
}

// Parse classifies a line. Command words are case-insensitive; anything
// that is not a command is free-form chat.
func Parse(line string) Command {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return Command{Kind: KindEmpty}
	}
	if k, ok := bare[strings.ToLower(trimmed)]; ok {
		return Command{Kind: k}
	}

	word, rest, _ := strings.Cut(trimmed, " ")
	if k, ok := prefixed[strings.ToLower(word)]; ok {
		arg := strings.TrimSpace(rest)
		if arg == "" && (k == KindReview || k == KindFile) {
			return Command{Kind: KindChat, Arg: trimmed}
		}
		return Command{Kind: k, Arg: arg}
	}
	return Command{Kind: KindChat, Arg: trimmed}
}

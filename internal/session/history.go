package session

import (
	"time"

	"github.com/google/uuid"

	"github.com/dshills/crev/internal/providers"
)

// History is the ordered conversation replayed to the remote model on every
// turn. The system prompt is held separately and is never truncated.
type History struct {
	id        string
	system    string
	turns     []providers.Message
	maxTurns  int
	startedAt time.Time

	// Most recently reviewed snippet.
	LastCode     string
	LastLanguage string
	LastPath     string
}

// New creates a history seeded with the system prompt. maxTurns bounds the
// number of user/assistant messages kept; zero or less keeps everything.
// Odd bounds are rounded up so a full exchange always fits.
func New(systemPrompt string, maxTurns int) *History {
	if maxTurns > 0 && maxTurns%2 != 0 {
		maxTurns++
	}
	return &History{
		id:        uuid.NewString(),
		system:    systemPrompt,
		maxTurns:  maxTurns,
		startedAt: time.Now().UTC(),
	}
}

// ID identifies the session. It changes on Reset.
func (h *History) ID() string { return h.id }

// StartedAt returns when the session (or its last reset) began.
func (h *History) StartedAt() time.Time { return h.startedAt }

// Append adds a turn and applies truncation.
func (h *History) Append(role, content string) {
	h.turns = append(h.turns, providers.Message{Role: role, Content: content})
	h.truncate()
}

// Messages returns the system prompt followed by all turns.
func (h *History) Messages() []providers.Message {
	msgs := make([]providers.Message, 0, len(h.turns)+1)
	msgs = append(msgs, providers.Message{Role: providers.RoleSystem, Content: h.system})
	return append(msgs, h.turns...)
}

// Turns returns a copy of the turns without the system prompt.
func (h *History) Turns() []providers.Message {
	out := make([]providers.Message, len(h.turns))
	copy(out, h.turns)
	return out
}

// Len counts messages including the system prompt.
func (h *History) Len() int { return len(h.turns) + 1 }

// Rollback drops the last n turns.
func (h *History) Rollback(n int) {
	if n <= 0 {
		return
	}
	if n > len(h.turns) {
		n = len(h.turns)
	}
	h.turns = h.turns[:len(h.turns)-n]
}

// Restore replaces the turns with a copy of turns, as returned by an
// earlier call to Turns. Truncation is not applied.
func (h *History) Restore(turns []providers.Message) {
	h.turns = make([]providers.Message, len(turns))
	copy(h.turns, turns)
}

// Reset returns the history to the system prompt only and forgets the last
// reviewed code.
func (h *History) Reset() {
	h.turns = nil
	h.LastCode = ""
	h.LastLanguage = ""
	h.LastPath = ""
	h.id = uuid.NewString()
	h.startedAt = time.Now().UTC()
}

// truncate drops the oldest turns two at a time so that user/assistant pairs
// stay aligned.
func (h *History) truncate() {
	if h.maxTurns <= 0 {
		return
	}
	for len(h.turns) > h.maxTurns {
		drop := 2
		if len(h.turns) < drop {
			drop = len(h.turns)
		}
		h.turns = h.turns[drop:]
	}
}

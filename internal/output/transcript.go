package output

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dshills/crev/internal/providers"
	"github.com/dshills/crev/internal/review"
	"github.com/dshills/crev/internal/session"
)

// Transcript is the persisted form of a review session. History leaves out
// the system prompt and keeps every reply verbatim.
type Transcript struct {
	SessionID string              `json:"sessionId"`
	Tool      string              `json:"tool"`
	Version   string              `json:"version"`
	Provider  string              `json:"provider"`
	Model     string              `json:"model"`
	File      string              `json:"file,omitempty"`
	Code      string              `json:"code,omitempty"`
	Language  string              `json:"language,omitempty"`
	CreatedAt time.Time           `json:"createdAt"`
	History   []providers.Message `json:"history"`
	Review    *review.Review      `json:"review,omitempty"`
}

// FromSession captures a session. The last assistant reply is parsed into
// Review when it has recognizable sections.
func FromSession(h *session.History, provider, model, version string) *Transcript {
	t := &Transcript{
		SessionID: h.ID(),
		Tool:      "crev",
		Version:   version,
		Provider:  provider,
		Model:     model,
		File:      h.LastPath,
		Code:      h.LastCode,
		Language:  h.LastLanguage,
		CreatedAt: time.Now().UTC(),
		History:   h.Turns(),
	}
	if reply, ok := LastReply(t.History); ok {
		if r := review.Parse(reply); r.Structured() {
			t.Review = &r
		}
	}
	return t
}

// LastReply returns the most recent assistant message.
func LastReply(history []providers.Message) (string, bool) {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role == providers.RoleAssistant {
			return history[i].Content, true
		}
	}
	return "", false
}

// SaveTranscript writes t as indented JSON, creating parent directories.
func SaveTranscript(path string, t *Transcript) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
	}
	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling transcript: %w", err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing transcript: %w", err)
	}
	return nil
}

// LoadTranscript reads a transcript written by SaveTranscript.
func LoadTranscript(path string) (*Transcript, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading transcript: %w", err)
	}
	var t Transcript
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parsing transcript: %w", err)
	}
	return &t, nil
}

package review

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/dshills/crev/internal/cache"
	"github.com/dshills/crev/internal/providers"
	"github.com/dshills/crev/internal/redact"
	"github.com/dshills/crev/internal/session"
)

var (
	// ErrNoCode is returned by ExplainLast before anything was reviewed.
	ErrNoCode = errors.New("no code has been reviewed yet; please review some code first")
	// ErrEmptyCode is returned when asked to review an empty snippet.
	ErrEmptyCode = errors.New("no code to review")
	// ErrFileTooLarge is wrapped by FileError when a file exceeds MaxFileBytes.
	ErrFileTooLarge = errors.New("file too large")
)

// FileError reports a file that could not be loaded for review.
type FileError struct {
	Path string
	Err  error
}

func (e *FileError) Error() string {
	if errors.Is(e.Err, fs.ErrNotExist) {
		return "file not found: " + e.Path
	}
	return fmt.Sprintf("error reading file %s: %v", e.Path, e.Err)
}

func (e *FileError) Unwrap() error { return e.Err }

// Options tune an Agent.
type Options struct {
	Model        string
	Temperature  float64
	MaxTokens    int
	MaxHistory   int
	MaxFileBytes int64

	RedactSecrets bool
	RedactPaths   []string

	// Cache, when enabled, answers repeated identical conversations.
	Cache  *cache.Cache
	Logger *slog.Logger
}

// DefaultOptions mirror the sampling settings the agent was tuned with.
func DefaultOptions() Options {
	return Options{
		Temperature:   0.3,
		MaxTokens:     2048,
		MaxHistory:    40,
		MaxFileBytes:  200_000,
		RedactSecrets: true,
	}
}

// Source is a snippet loaded for review.
type Source struct {
	Path     string
	Language string
	Code     string
}

// Stats accumulates per-session counters.
type Stats struct {
	Requests   int
	CacheHits  int
	TokensUsed int
	LLMMs      int64
}

// Agent is a code-review conversation with the remote model.
type Agent struct {
	chatter providers.Chatter
	history *session.History
	opts    Options
	log     *slog.Logger
	stats   Stats
}

// NewAgent creates an agent whose history starts with the system prompt.
func NewAgent(chatter providers.Chatter, opts Options) *Agent {
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Agent{
		chatter: chatter,
		history: session.New(SystemPrompt(), opts.MaxHistory),
		opts:    opts,
		log:     log,
	}
}

// History exposes the conversation for persistence.
func (a *Agent) History() *session.History { return a.history }

// Provider returns the provider name.
func (a *Agent) Provider() string { return a.chatter.Name() }

// Model returns the configured model identifier.
func (a *Agent) Model() string { return a.opts.Model }

// Stats returns counters for the current process.
func (a *Agent) Stats() Stats { return a.stats }

// Chat sends a user message with the full history and records the reply.
// A failed request leaves the history as it was before the call.
func (a *Agent) Chat(ctx context.Context, message string) (string, error) {
	// Appending may truncate, so keep what to put back on failure.
	prev := a.history.Turns()
	a.history.Append(providers.RoleUser, message)

	req := providers.ChatRequest{
		Messages:    a.history.Messages(),
		MaxTokens:   a.opts.MaxTokens,
		Temperature: a.opts.Temperature,
	}

	var key string
	if a.opts.Cache != nil && a.opts.Cache.Enabled() {
		key = cache.BuildKey(a.chatter.Name(), a.opts.Model, req.Temperature, req.MaxTokens, req.Messages)
		if entry, ok := a.opts.Cache.Get(key); ok {
			a.stats.CacheHits++
			a.log.Debug("cache hit", "key", key[:12], "model", entry.Model)
			a.history.Append(providers.RoleAssistant, entry.Reply)
			return entry.Reply, nil
		}
	}

	start := time.Now()
	resp, err := a.chatter.Chat(ctx, req)
	elapsed := time.Since(start)
	a.stats.Requests++
	a.stats.LLMMs += elapsed.Milliseconds()
	if err != nil {
		a.history.Restore(prev)
		a.log.Debug("chat failed", "provider", a.chatter.Name(), "error", err)
		return "", fmt.Errorf("provider chat: %w", err)
	}
	a.stats.TokensUsed += resp.TokensUsed
	a.log.Debug("chat complete",
		"provider", a.chatter.Name(),
		"model", resp.Model,
		"tokens", resp.TokensUsed,
		"finish", resp.FinishReason,
		"ms", elapsed.Milliseconds(),
		"messages", len(req.Messages),
	)

	a.history.Append(providers.RoleAssistant, resp.Content)

	if key != "" {
		if err := a.opts.Cache.Put(key, cache.Entry{
			Provider:   a.chatter.Name(),
			Model:      resp.Model,
			Reply:      resp.Content,
			TokensUsed: resp.TokensUsed,
		}); err != nil {
			a.log.Warn("cache write failed", "error", err)
		}
	}
	return resp.Content, nil
}

// ReviewCode asks the model to review a snippet. An empty language means
// auto-detect.
func (a *Agent) ReviewCode(ctx context.Context, code, language string) (string, error) {
	return a.ReviewSource(ctx, Source{Code: code, Language: language})
}

// ReviewFile loads a file and reviews its content.
func (a *Agent) ReviewFile(ctx context.Context, path string) (string, error) {
	src, err := a.LoadFile(path)
	if err != nil {
		return "", err
	}
	return a.ReviewSource(ctx, src)
}

// LoadFile reads a file and detects its language without contacting the
// model.
func (a *Agent) LoadFile(path string) (Source, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Source{}, &FileError{Path: path, Err: err}
	}
	if info.IsDir() {
		return Source{}, &FileError{Path: path, Err: errors.New("is a directory")}
	}
	if a.opts.MaxFileBytes > 0 && info.Size() > a.opts.MaxFileBytes {
		return Source{}, &FileError{
			Path: path,
			Err:  fmt.Errorf("%w: %d bytes exceeds limit of %d", ErrFileTooLarge, info.Size(), a.opts.MaxFileBytes),
		}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Source{}, &FileError{Path: path, Err: err}
	}
	return Source{
		Path:     path,
		Language: DetectLanguage(path),
		Code:     string(data),
	}, nil
}

// ReviewSource records the snippet as the last reviewed code and sends it
// for review.
func (a *Agent) ReviewSource(ctx context.Context, src Source) (string, error) {
	if strings.TrimSpace(src.Code) == "" {
		return "", ErrEmptyCode
	}
	language := src.Language
	if strings.TrimSpace(language) == "" {
		language = AutoDetect
	}

	a.history.LastCode = src.Code
	a.history.LastLanguage = language
	a.history.LastPath = src.Path

	code := src.Code
	if a.opts.RedactSecrets {
		var res redact.Result
		if src.Path != "" {
			res = redact.File(code, src.Path, a.opts.RedactPaths)
		} else {
			res = redact.Secrets(code)
		}
		if res.Count > 0 {
			a.log.Info("redacted secrets before sending", "count", res.Count, "kinds", strings.Join(res.Kinds, ","))
		}
		code = res.Text
	}

	return a.Chat(ctx, BuildReviewPrompt(code, language))
}

// ExplainLast asks for a plain-language explanation of the last reviewed
// code.
func (a *Agent) ExplainLast(ctx context.Context) (string, error) {
	if a.history.LastCode == "" {
		return "", ErrNoCode
	}
	return a.Chat(ctx, ExplainPrompt())
}

// Clear starts a fresh conversation.
func (a *Agent) Clear() {
	a.history.Reset()
}

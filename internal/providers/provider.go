package providers

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"
)

// Message roles understood by chat-completion endpoints.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single turn replayed to the remote model.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest contains the conversation sent to the remote model.
type ChatRequest struct {
	Messages    []Message
	MaxTokens   int
	Temperature float64
}

// ChatResponse contains the model's reply.
type ChatResponse struct {
	Content      string
	Model        string
	TokensUsed   int
	FinishReason string
}

// Chatter is the provider abstraction interface.
type Chatter interface {
	Chat(ctx context.Context, req ChatRequest) (ChatResponse, error)
	Name() string
}

// Settings selects and configures a provider.
type Settings struct {
	Provider string
	Model    string
	// BaseURL overrides the provider's default endpoint.
	BaseURL string
	// APIKey overrides the credential read from the environment.
	APIKey  string
	Timeout time.Duration
}

const (
	defaultGitHubURL = "https://models.inference.ai.azure.com"
	defaultOpenAIURL = "https://api.openai.com/v1"
	defaultOllamaURL = "http://localhost:11434"
	defaultTimeout   = 120 * time.Second
)

// Known lists the supported provider names.
var Known = []string{"github", "openai", "ollama", "lmstudio"}

// New creates a provider by name.
func New(s Settings) (*OpenAICompat, error) {
	if s.Timeout <= 0 {
		s.Timeout = defaultTimeout
	}
	switch s.Provider {
	case "github", "copilot", "":
		return newWithCredential("github", s, "GITHUB_TOKEN", defaultGitHubURL)
	case "openai":
		return newWithCredential("openai", s, "OPENAI_API_KEY", defaultOpenAIURL)
	case "ollama", "lmstudio":
		return newLocal(s)
	default:
		return nil, fmt.Errorf("unknown provider: %s", s.Provider)
	}
}

func newWithCredential(name string, s Settings, envVar, defaultURL string) (*OpenAICompat, error) {
	key := s.APIKey
	if key == "" {
		key = os.Getenv(envVar)
	}
	if key == "" {
		return nil, &authError{
			provider: name,
			message:  envVar + " environment variable is not set",
		}
	}
	baseURL := s.BaseURL
	if baseURL == "" {
		baseURL = defaultURL
	}
	return NewOpenAICompat(name, s.Model, key, baseURL, s.Timeout), nil
}

// newLocal builds a provider for Ollama or LM Studio. No API key is
// required by default.
func newLocal(s Settings) (*OpenAICompat, error) {
	baseURL := s.BaseURL
	if baseURL == "" {
		baseURL = os.Getenv("OLLAMA_HOST")
	}
	if baseURL == "" {
		baseURL = defaultOllamaURL
	}
	key := s.APIKey
	if key == "" {
		key = os.Getenv("CREV_OLLAMA_API_KEY")
	}
	return NewOpenAICompat(s.Provider, s.Model, key, normalizeLocalURL(baseURL), s.Timeout), nil
}

// normalizeLocalURL accepts http://host:port, .../v1 and
// .../v1/chat/completions and returns the /v1 base.
func normalizeLocalURL(u string) string {
	u = strings.TrimRight(u, "/")
	u = strings.TrimSuffix(u, "/v1/chat/completions")
	u = strings.TrimSuffix(u, "/v1")
	return u + "/v1"
}

// DefaultModel returns the model used when none is configured.
func DefaultModel(provider string) string {
	switch provider {
	case "ollama":
		return "llama3.1"
	case "lmstudio":
		return "local-model"
	default:
		return "gpt-4o"
	}
}

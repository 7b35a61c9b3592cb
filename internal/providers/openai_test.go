package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type wireRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
}

func chatServer(t *testing.T, reply string, seen *wireRequest) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %q, want /chat/completions", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Error("Missing or wrong Authorization header")
		}
		if seen != nil {
			if err := json.NewDecoder(r.Body).Decode(seen); err != nil {
				t.Errorf("decoding request: %v", err)
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": "chatcmpl-1",
			"model": "gpt-4o-2024-08-06",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": ` + mustJSON(t, reply) + `}, "finish_reason": "stop"}],
			"usage": {"prompt_tokens": 40, "completion_tokens": 10, "total_tokens": 50}
		}`))
	}))
	t.Cleanup(server.Close)
	return server
}

func mustJSON(t *testing.T, s string) string {
	t.Helper()
	b, err := json.Marshal(s)
	require.NoError(t, err)
	return string(b)
}

func TestOpenAICompat_Chat(t *testing.T) {
	var seen wireRequest
	server := chatServer(t, "**Summary**: Pass", &seen)

	o := NewOpenAICompat("github", "gpt-4o", "test-key", server.URL, 5*time.Second)
	resp, err := o.Chat(context.Background(), ChatRequest{
		Messages: []Message{
			{Role: RoleSystem, Content: "sys"},
			{Role: RoleUser, Content: "review this"},
		},
		MaxTokens:   2048,
		Temperature: 0.3,
	})
	require.NoError(t, err)

	assert.Equal(t, "**Summary**: Pass", resp.Content)
	assert.Equal(t, 50, resp.TokensUsed)
	assert.Equal(t, "gpt-4o-2024-08-06", resp.Model)
	assert.Equal(t, "stop", resp.FinishReason)

	assert.Equal(t, "gpt-4o", seen.Model)
	assert.Equal(t, 2048, seen.MaxTokens)
	assert.InDelta(t, 0.3, seen.Temperature, 0.001)
	require.Len(t, seen.Messages, 2)
	assert.Equal(t, RoleSystem, seen.Messages[0].Role)
	assert.Equal(t, "review this", seen.Messages[1].Content)
}

// rawChatServer records the request body as decoded JSON fields.
func rawChatServer(t *testing.T, seen *map[string]json.RawMessage) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(seen); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id": "chatcmpl-1", "model": "o3-mini", "choices": [{"index": 0, "message": {"role": "assistant", "content": "ok"}, "finish_reason": "stop"}]}`))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestOpenAICompat_ReasoningModel(t *testing.T) {
	for _, model := range []string{"o3-mini", "o1", "o4-mini", "gpt-5"} {
		t.Run(model, func(t *testing.T) {
			var seen map[string]json.RawMessage
			server := rawChatServer(t, &seen)

			o := NewOpenAICompat("github", model, "test-key", server.URL, 5*time.Second)
			resp, err := o.Chat(context.Background(), ChatRequest{
				Messages:    []Message{{Role: RoleSystem, Content: "sys"}, {Role: RoleUser, Content: "hi"}},
				MaxTokens:   2048,
				Temperature: 0.3,
			})
			require.NoError(t, err)
			assert.Equal(t, "ok", resp.Content)

			assert.JSONEq(t, "2048", string(seen["max_completion_tokens"]))
			assert.NotContains(t, seen, "max_tokens")
			assert.NotContains(t, seen, "temperature")
		})
	}
}

func TestOpenAICompat_ZeroTemperatureIsSent(t *testing.T) {
	var seen map[string]json.RawMessage
	server := rawChatServer(t, &seen)

	o := NewOpenAICompat("openai", "gpt-4o", "test-key", server.URL, 5*time.Second)
	_, err := o.Chat(context.Background(), ChatRequest{
		Messages:  []Message{{Role: RoleUser, Content: "hi"}},
		MaxTokens: 100,
	})
	require.NoError(t, err)

	require.Contains(t, seen, "temperature")
	var temp float64
	require.NoError(t, json.Unmarshal(seen["temperature"], &temp))
	assert.InDelta(t, 0, temp, 1e-6)
	assert.NotContains(t, seen, "max_completion_tokens")
}

func TestOpenAICompat_AuthError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"Bad credentials","type":"invalid_request_error"}}`))
	}))
	defer server.Close()

	o := NewOpenAICompat("github", "gpt-4o", "bad-key", server.URL, 5*time.Second)
	_, err := o.Chat(context.Background(), ChatRequest{
		Messages: []Message{{Role: RoleUser, Content: "hi"}},
	})
	require.Error(t, err)
	assert.True(t, IsAuthError(err), "expected auth error, got %v", err)
	assert.Contains(t, err.Error(), "Bad credentials")
}

func TestOpenAICompat_ServerErrorIsNotRetried(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":{"message":"upstream failure","type":"server_error"}}`))
	}))
	defer server.Close()

	o := NewOpenAICompat("openai", "gpt-4", "test-key", server.URL, 5*time.Second)
	_, err := o.Chat(context.Background(), ChatRequest{
		Messages: []Message{{Role: RoleUser, Content: "hi"}},
	})
	require.Error(t, err)
	assert.False(t, IsAuthError(err))
	assert.Contains(t, err.Error(), "status 500")
	assert.Equal(t, 1, attempts)
}

func TestOpenAICompat_NoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"x","choices":[]}`))
	}))
	defer server.Close()

	o := NewOpenAICompat("openai", "gpt-4", "test-key", server.URL, 5*time.Second)
	_, err := o.Chat(context.Background(), ChatRequest{
		Messages: []Message{{Role: RoleUser, Content: "hi"}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no choices")
}

func TestOpenAICompat_EmptyContent(t *testing.T) {
	server := chatServer(t, "", nil)

	o := NewOpenAICompat("github", "gpt-4o", "test-key", server.URL, 5*time.Second)
	_, err := o.Chat(context.Background(), ChatRequest{
		Messages: []Message{{Role: RoleUser, Content: "hi"}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty text content")
}

func TestOpenAICompat_NoMessages(t *testing.T) {
	o := NewOpenAICompat("github", "gpt-4o", "k", "http://127.0.0.1:1", time.Second)
	_, err := o.Chat(context.Background(), ChatRequest{})
	require.Error(t, err)
}

func TestOpenAICompat_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	o := NewOpenAICompat("github", "gpt-4o", "test-key", url, time.Second)
	_, err := o.Chat(context.Background(), ChatRequest{
		Messages: []Message{{Role: RoleUser, Content: "hi"}},
	})
	require.Error(t, err)
	assert.False(t, IsAuthError(err))
	assert.Contains(t, err.Error(), "sending request")
}

func TestOpenAICompat_Models(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models" {
			t.Errorf("path = %q, want /models", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"object":"list","data":[{"id":"gpt-4o","object":"model"},{"id":"gpt-4o-mini","object":"model"}]}`))
	}))
	defer server.Close()

	o := NewOpenAICompat("github", "gpt-4o", "test-key", server.URL, 5*time.Second)
	ids, err := o.Models(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"gpt-4o", "gpt-4o-mini"}, ids)
}

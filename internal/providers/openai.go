package providers

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAICompat implements the Chatter interface for any endpoint that speaks
// the OpenAI chat-completions protocol (OpenAI, GitHub Models, Ollama,
// LM Studio).
type OpenAICompat struct {
	name    string
	model   string
	baseURL string
	client  *openai.Client
}

// NewOpenAICompat creates a client for an OpenAI-compatible endpoint.
func NewOpenAICompat(name, model, apiKey, baseURL string, timeout time.Duration) *OpenAICompat {
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = baseURL
	cfg.HTTPClient = &http.Client{Timeout: timeout}
	return &OpenAICompat{
		name:    name,
		model:   model,
		baseURL: baseURL,
		client:  openai.NewClientWithConfig(cfg),
	}
}

func (o *OpenAICompat) Name() string { return o.name }

// Model returns the model identifier sent with every request.
func (o *OpenAICompat) Model() string { return o.model }

// BaseURL returns the endpoint the client talks to.
func (o *OpenAICompat) BaseURL() string { return o.baseURL }

func (o *OpenAICompat) Chat(ctx context.Context, req ChatRequest) (ChatResponse, error) {
	if len(req.Messages) == 0 {
		return ChatResponse{}, errors.New("no messages to send")
	}

	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		})
	}

	body := openai.ChatCompletionRequest{
		Model:    o.model,
		Messages: messages,
	}
	if isReasoningModel(o.model) {
		// Reasoning models take max_completion_tokens and a fixed temperature.
		body.MaxCompletionTokens = req.MaxTokens
	} else {
		body.MaxTokens = req.MaxTokens
		body.Temperature = wireTemperature(req.Temperature)
	}

	result, err := o.client.CreateChatCompletion(ctx, body)
	if err != nil {
		return ChatResponse{}, o.classify(err)
	}

	if len(result.Choices) == 0 {
		return ChatResponse{}, fmt.Errorf("no choices in response")
	}
	content := result.Choices[0].Message.Content
	if content == "" {
		return ChatResponse{}, fmt.Errorf("empty text content in API response")
	}

	model := result.Model
	if model == "" {
		model = o.model
	}
	return ChatResponse{
		Content:      content,
		Model:        model,
		TokensUsed:   result.Usage.TotalTokens,
		FinishReason: string(result.Choices[0].FinishReason),
	}, nil
}

// isReasoningModel matches the model families for which the client rejects
// max_tokens and non-default sampling parameters.
func isReasoningModel(model string) bool {
	for _, prefix := range []string{"o1", "o3", "o4", "gpt-5"} {
		if strings.HasPrefix(model, prefix) {
			return true
		}
	}
	return false
}

// wireTemperature keeps an explicit zero on the wire; the request field is
// omitted when it is exactly zero.
func wireTemperature(t float64) float32 {
	if t == 0 {
		return math.SmallestNonzeroFloat32
	}
	return float32(t)
}

// Models lists the model IDs the endpoint advertises.
func (o *OpenAICompat) Models(ctx context.Context) ([]string, error) {
	list, err := o.client.ListModels(ctx)
	if err != nil {
		return nil, o.classify(err)
	}
	ids := make([]string, 0, len(list.Models))
	for _, m := range list.Models {
		ids = append(ids, m.ID)
	}
	return ids, nil
}

// classify maps client errors onto authError where the endpoint rejected
// the credential.
func (o *OpenAICompat) classify(err error) error {
	status := 0
	message := err.Error()

	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatusCode
		message = apiErr.Message
	case errors.As(err, &reqErr):
		status = reqErr.HTTPStatusCode
	}

	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		return &authError{provider: o.name, message: message, err: err}
	}
	if status != 0 {
		return fmt.Errorf("API error (status %d): %w", status, err)
	}
	return fmt.Errorf("sending request: %w", err)
}

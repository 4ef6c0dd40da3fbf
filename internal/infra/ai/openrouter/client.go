// Package openrouter adapts the chat-completion backend behind the
// analysis.Client port. It talks to any OpenAI-compatible endpoint
// (OpenRouter by default) and is a pure transport: no retries, no validation
// of content beyond fence stripping.
package openrouter

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/rizaldyaw/socmint/internal/domain/analysis"
)

const (
	DefaultBaseURL = "https://openrouter.ai/api/v1"
	DefaultModel   = "google/gemini-2.5-pro"

	defaultMaxTokens = 2048
)

type Client struct {
	api          *openai.Client
	defaultModel string
}

// NewClient builds a client against baseURL (OpenRouter when empty) using the
// given credential. Model is the fallback for tasks that do not set one.
func NewClient(apiKey, baseURL, model string) *Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	cfg.BaseURL = baseURL
	if model == "" {
		model = DefaultModel
	}
	return &Client{api: openai.NewClientWithConfig(cfg), defaultModel: model}
}

// Complete performs one chat completion for a task and returns the reply with
// any surrounding markdown fence removed. Errors are returned as-is; the
// orchestrator owns classification and failure isolation.
func (c *Client) Complete(ctx context.Context, task analysis.Task) (string, error) {
	model := task.Model
	if model == "" {
		model = c.defaultModel
	}
	maxTokens := task.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       model,
		MaxTokens:   maxTokens,
		Temperature: task.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: task.Prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion: no choices returned")
	}
	return analysis.StripFences(resp.Choices[0].Message.Content), nil
}

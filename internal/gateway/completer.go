package gateway

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"warmhome-backend/internal/config"
	"warmhome-backend/internal/utils"
)

// Completer is the single-shot text completion the gateway depends on.
// Tests swap in a stub; production uses the OpenAI-compatible client below.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

type openaiCompleter struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float32
}

// NewCompleter builds a Completer over an OpenAI-compatible endpoint. The
// Gemini API is reached through its OpenAI-compatibility BaseURL.
func NewCompleter(cfg config.GeminiConfig) Completer {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	if cfg.Timeout > 0 {
		clientConfig.HTTPClient = utils.NewHTTPClient(cfg.Timeout)
	}

	return &openaiCompleter{
		client:      openai.NewClientWithConfig(clientConfig),
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
	}
}

func (c *openaiCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in completion response")
	}

	return resp.Choices[0].Message.Content, nil
}

package analyzer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"journai/internal/config"
)

// ErrEmptyReply is returned by clients when the provider answered without text.
var ErrEmptyReply = errors.New("model reply is empty")

// Client sends a prompt to a text-generation provider and returns its raw reply.
type Client interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Name() string
}

// NewClient builds the client selected by AI_PROVIDER.
func NewClient(ctx context.Context, cfg config.Config) (Client, error) {
	timeout := time.Duration(cfg.AITimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 20 * time.Second
	}

	switch strings.ToLower(strings.TrimSpace(cfg.AIProvider)) {
	case config.ProviderGemini:
		client, err := NewGeminiClient(ctx, GeminiConfig{
			APIKey:          cfg.GeminiAPIKey,
			Model:           cfg.GeminiModel,
			BaseURL:         cfg.GeminiBaseURL,
			MaxOutputTokens: cfg.AIMaxOutputTokens,
			Timeout:         timeout,
		})
		if err != nil {
			return nil, err
		}
		return client, nil
	case config.ProviderOpenAI:
		client, err := NewOpenAIClient(OpenAIConfig{
			APIKey:          cfg.OpenAIAPIKey,
			Model:           cfg.OpenAIModel,
			BaseURL:         cfg.OpenAIBaseURL,
			MaxOutputTokens: cfg.AIMaxOutputTokens,
			Timeout:         timeout,
			MaxRetries:      2,
		})
		if err != nil {
			return nil, err
		}
		return client, nil
	case config.ProviderMock:
		return MockClient{}, nil
	default:
		return nil, fmt.Errorf("unsupported AI provider %q", cfg.AIProvider)
	}
}

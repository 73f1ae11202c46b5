// Package llm sends an assembled grading payload to a hosted multimodal
// model and returns the text of its reply.
package llm

import (
	"context"
	"fmt"

	"github.com/kdduha/exam-grader/backend/internal/config"
	"github.com/kdduha/exam-grader/backend/internal/models"
)

const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
	ProviderGemini    = "gemini"
)

// Request is one synchronous completion call. Blocks form the sole user
// turn, in order. A nil Temperature leaves the provider default.
type Request struct {
	MaxTokens   int
	Temperature *float64
	Blocks      []models.ContentBlock
}

type Dispatcher interface {
	Name() string
	Model() string
	// Configured reports a missing credential without touching the network.
	Configured() error
	Complete(ctx context.Context, req *Request) (string, error)
}

// New builds the dispatcher for the configured provider.
func New(cfg config.ModelConfig) (Dispatcher, error) {
	switch cfg.Provider {
	case ProviderAnthropic:
		return NewAnthropicDispatcher(cfg.Anthropic, cfg.Timeout), nil
	case ProviderOpenAI:
		return NewOpenAIDispatcher(cfg.OpenAI, cfg.Timeout), nil
	case ProviderGemini:
		return NewGeminiDispatcher(cfg.Gemini), nil
	default:
		return nil, fmt.Errorf("unsupported model provider {%s}", cfg.Provider)
	}
}

func missingKey(envName string) error {
	return models.NewConfigurationError(envName + " environment variable not set")
}

func emptyReply(provider string) error {
	return models.NewUpstreamError(provider+" reply contained no text block", nil)
}

package llm

import (
	"context"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	anthropicoption "github.com/anthropics/anthropic-sdk-go/option"
	"github.com/kdduha/exam-grader/backend/internal/config"
	"github.com/kdduha/exam-grader/backend/internal/models"
)

const anthropicKeyEnv = "ANTHROPIC_API_KEY"

type AnthropicDispatcher struct {
	client anthropic.Client
	model  string
	apiKey string
}

func NewAnthropicDispatcher(cfg config.AnthropicConfig, timeout time.Duration) *AnthropicDispatcher {
	opts := []anthropicoption.RequestOption{
		anthropicoption.WithAPIKey(cfg.APIKey),
		anthropicoption.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, anthropicoption.WithBaseURL(cfg.BaseURL))
	}
	if timeout > 0 {
		opts = append(opts, anthropicoption.WithRequestTimeout(timeout))
	}

	return &AnthropicDispatcher{
		client: anthropic.NewClient(opts...),
		model:  cfg.Model,
		apiKey: cfg.APIKey,
	}
}

func (a *AnthropicDispatcher) Name() string  { return ProviderAnthropic }
func (a *AnthropicDispatcher) Model() string { return a.model }

func (a *AnthropicDispatcher) Configured() error {
	if a.apiKey == "" {
		return missingKey(anthropicKeyEnv)
	}
	return nil
}

func (a *AnthropicDispatcher) Complete(ctx context.Context, req *Request) (string, error) {
	if err := a.Configured(); err != nil {
		return "", err
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: int64(req.MaxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(toAnthropicBlocks(req.Blocks)...),
		},
	}
	if req.Temperature != nil {
		params.Temperature = anthropic.Float(*req.Temperature)
	}

	msg, err := a.client.Messages.New(ctx, params)
	if err != nil {
		return "", models.NewUpstreamError("Anthropic client error", err)
	}

	for _, block := range msg.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}
	return "", emptyReply(ProviderAnthropic)
}

func toAnthropicBlocks(blocks []models.ContentBlock) []anthropic.ContentBlockParamUnion {
	out := make([]anthropic.ContentBlockParamUnion, 0, len(blocks))
	for _, b := range blocks {
		if b.IsImage() {
			out = append(out, anthropic.NewImageBlockBase64(b.MediaType, b.Data))
			continue
		}
		out = append(out, anthropic.NewTextBlock(b.Text))
	}
	return out
}

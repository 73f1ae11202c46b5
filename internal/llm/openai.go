package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/kdduha/exam-grader/backend/internal/config"
	"github.com/kdduha/exam-grader/backend/internal/models"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
)

const openAIKeyEnv = "OPENAI_API_KEY"

// OpenAIDispatcher talks to any OpenAI compatible chat completions
// endpoint (OpenAI, vLLM, LM Studio).
type OpenAIDispatcher struct {
	client openai.Client
	model  string
	apiKey string
}

func NewOpenAIDispatcher(cfg config.OpenAIConfig, timeout time.Duration) *OpenAIDispatcher {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(cfg.BaseURL),
		option.WithMaxRetries(0),
	}
	if timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(timeout))
	}

	return &OpenAIDispatcher{
		client: openai.NewClient(opts...),
		model:  cfg.Model,
		apiKey: cfg.APIKey,
	}
}

func (o *OpenAIDispatcher) Name() string  { return ProviderOpenAI }
func (o *OpenAIDispatcher) Model() string { return o.model }

func (o *OpenAIDispatcher) Configured() error {
	if o.apiKey == "" {
		return missingKey(openAIKeyEnv)
	}
	return nil
}

func (o *OpenAIDispatcher) Complete(ctx context.Context, req *Request) (string, error) {
	if err := o.Configured(); err != nil {
		return "", err
	}

	params := openai.ChatCompletionNewParams{
		Model: shared.ChatModel(o.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(toOpenAIParts(req.Blocks)),
		},
		MaxCompletionTokens: openai.Int(int64(req.MaxTokens)),
	}
	if req.Temperature != nil {
		params.Temperature = openai.Float(*req.Temperature)
	}

	resp, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", models.NewUpstreamError("OpenAI client error", err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", emptyReply(ProviderOpenAI)
	}
	return resp.Choices[0].Message.Content, nil
}

func toOpenAIParts(blocks []models.ContentBlock) []openai.ChatCompletionContentPartUnionParam {
	parts := make([]openai.ChatCompletionContentPartUnionParam, 0, len(blocks))
	for _, b := range blocks {
		if b.IsImage() {
			parts = append(parts, openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
				URL: fmt.Sprintf("data:%s;base64,%s", b.MediaType, b.Data),
			}))
			continue
		}
		parts = append(parts, openai.TextContentPart(b.Text))
	}
	return parts
}

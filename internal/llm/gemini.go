package llm

import (
	"context"
	"encoding/base64"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/kdduha/exam-grader/backend/internal/config"
	"github.com/kdduha/exam-grader/backend/internal/models"
	"google.golang.org/api/option"
)

const geminiKeyEnv = "GEMINI_API_KEY"

// GeminiDispatcher opens and closes an SDK client per call.
type GeminiDispatcher struct {
	apiKey string
	model  string
}

func NewGeminiDispatcher(cfg config.GeminiConfig) *GeminiDispatcher {
	return &GeminiDispatcher{
		apiKey: strings.TrimSpace(cfg.APIKey),
		model:  strings.TrimSpace(cfg.Model),
	}
}

func (g *GeminiDispatcher) Name() string  { return ProviderGemini }
func (g *GeminiDispatcher) Model() string { return g.model }

func (g *GeminiDispatcher) Configured() error {
	if g.apiKey == "" {
		return missingKey(geminiKeyEnv)
	}
	return nil
}

func (g *GeminiDispatcher) Complete(ctx context.Context, req *Request) (string, error) {
	if err := g.Configured(); err != nil {
		return "", err
	}

	parts, err := toGeminiParts(req.Blocks)
	if err != nil {
		return "", models.NewUpstreamError("Gemini payload error", err)
	}

	cl, err := genai.NewClient(ctx, option.WithAPIKey(g.apiKey))
	if err != nil {
		return "", models.NewUpstreamError("Gemini client error", err)
	}
	defer cl.Close()

	m := cl.GenerativeModel(g.model)
	m.GenerationConfig = genai.GenerationConfig{
		MaxOutputTokens: ptrInt32(int32(req.MaxTokens)),
	}
	if req.Temperature != nil {
		m.GenerationConfig.Temperature = ptrFloat32(float32(*req.Temperature))
	}

	resp, err := m.GenerateContent(ctx, parts...)
	if err != nil {
		return "", models.NewUpstreamError("Gemini client error", err)
	}

	txt := firstText(resp)
	if txt == "" {
		return "", emptyReply(ProviderGemini)
	}
	return txt, nil
}

func toGeminiParts(blocks []models.ContentBlock) ([]genai.Part, error) {
	parts := make([]genai.Part, 0, len(blocks))
	for _, b := range blocks {
		if !b.IsImage() {
			parts = append(parts, genai.Text(b.Text))
			continue
		}
		data, err := base64.StdEncoding.DecodeString(b.Data)
		if err != nil {
			return nil, err
		}
		parts = append(parts, &genai.Blob{MIMEType: b.MediaType, Data: data})
	}
	return parts, nil
}

func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	for _, c := range resp.Candidates {
		if c.Content == nil {
			continue
		}
		for _, p := range c.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				return string(t)
			}
		}
	}
	return ""
}

func ptrFloat32(v float32) *float32 { return &v }
func ptrInt32(v int32) *int32       { return &v }

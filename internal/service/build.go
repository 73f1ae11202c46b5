package service

import (
	"fmt"

	"github.com/kdduha/exam-grader/backend/internal/document"
	"github.com/kdduha/exam-grader/backend/internal/llm"
	"github.com/kdduha/exam-grader/backend/internal/models"
)

// AssemblePayload lays out the single user turn: the reference trio (when
// present), the student trio, and the prompt text last. Unlabeled payloads
// carry the bare image blocks.
func AssemblePayload(prompt, referenceImage, studentImage string, labeled bool) []models.ContentBlock {
	blocks := make([]models.ContentBlock, 0, 7)

	if referenceImage != "" {
		blocks = appendImage(blocks, referenceImage, referenceLabel, referenceEndLabel, labeled)
	}
	blocks = appendImage(blocks, studentImage, studentLabel, studentEndLabel, labeled)

	return append(blocks, models.TextBlock(prompt))
}

func appendImage(blocks []models.ContentBlock, data, label, endLabel string, labeled bool) []models.ContentBlock {
	if !labeled {
		return append(blocks, models.ImageBlock(data))
	}
	return append(blocks,
		models.TextBlock(label),
		models.ImageBlock(data),
		models.TextBlock(endLabel),
	)
}

func (g *GradeService) buildLLMReq(req *models.GradeRequest) (*llm.Request, error) {
	reference, err := rasterizeIfPDF(req.ReferenceImage, req.ReferenceMediaType())
	if err != nil {
		return nil, models.NewValidationError(fmt.Sprintf("reference answer: %v", err))
	}
	student, err := rasterizeIfPDF(req.StudentImage, req.StudentMediaType())
	if err != nil {
		return nil, models.NewValidationError(fmt.Sprintf("student answer: %v", err))
	}

	prompt, maxTokens := BuildPrompt(g.policy, req.Rubric, req.Context, reference != "", req.Verbose())

	return &llm.Request{
		MaxTokens:   maxTokens,
		Temperature: g.policy.Temperature,
		Blocks:      AssemblePayload(prompt, reference, student, g.policy.Labeled),
	}, nil
}

// rasterizeIfPDF turns an uploaded PDF scan into a JPEG of its first page;
// anything else is passed through untouched.
func rasterizeIfPDF(data, mediaType string) (string, error) {
	if data == "" || mediaType != models.MediaTypePDF {
		return data, nil
	}
	return document.RasterizePDF(data)
}

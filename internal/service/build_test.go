package service_test

import (
	"testing"

	"github.com/kdduha/exam-grader/backend/internal/models"
	"github.com/kdduha/exam-grader/backend/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func imageData(blocks []models.ContentBlock) []string {
	var out []string
	for _, b := range blocks {
		if b.IsImage() {
			out = append(out, b.Data)
		}
	}
	return out
}

func TestAssemblePayloadLabeledWithReference(t *testing.T) {
	blocks := service.AssemblePayload("PROMPT", "REF", "STUDENT", true)
	require.Len(t, blocks, 7)

	assert.Equal(t, models.BlockText, blocks[0].Type)
	assert.Contains(t, blocks[0].Text, "REFERENCE ANSWER")
	assert.Equal(t, models.ImageBlock("REF"), blocks[1])
	assert.Contains(t, blocks[2].Text, "END OF REFERENCE ANSWER")

	assert.Contains(t, blocks[3].Text, "STUDENT'S ANSWER")
	assert.Equal(t, models.ImageBlock("STUDENT"), blocks[4])
	assert.Contains(t, blocks[5].Text, "END OF STUDENT'S ANSWER")

	assert.Equal(t, models.TextBlock("PROMPT"), blocks[6])
}

func TestAssemblePayloadLabeledWithoutReference(t *testing.T) {
	blocks := service.AssemblePayload("PROMPT", "", "STUDENT", true)
	require.Len(t, blocks, 4)

	assert.Equal(t, []string{"STUDENT"}, imageData(blocks))
	assert.Equal(t, models.TextBlock("PROMPT"), blocks[len(blocks)-1])
}

func TestAssemblePayloadUnlabeled(t *testing.T) {
	blocks := service.AssemblePayload("PROMPT", "REF", "STUDENT", false)

	assert.Equal(t, []models.ContentBlock{
		models.ImageBlock("REF"),
		models.ImageBlock("STUDENT"),
		models.TextBlock("PROMPT"),
	}, blocks)

	noRef := service.AssemblePayload("PROMPT", "", "STUDENT", false)
	assert.Equal(t, []models.ContentBlock{
		models.ImageBlock("STUDENT"),
		models.TextBlock("PROMPT"),
	}, noRef)
}

func TestAssemblePayloadOrder(t *testing.T) {
	for _, labeled := range []bool{false, true} {
		blocks := service.AssemblePayload("PROMPT", "REF", "STUDENT", labeled)

		assert.Equal(t, []string{"REF", "STUDENT"}, imageData(blocks), "reference must precede student")
		assert.Equal(t, models.TextBlock("PROMPT"), blocks[len(blocks)-1], "prompt must be last")
		for _, b := range blocks {
			if b.IsImage() {
				assert.Equal(t, "image/jpeg", b.MediaType)
			}
		}
	}
}

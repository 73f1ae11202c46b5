package models

const (
	BlockText  = "text"
	BlockImage = "image"

	MediaTypeJPEG = "image/jpeg"
	MediaTypePDF  = "application/pdf"
)

// ContentBlock is one element of the single user turn sent upstream.
// Text blocks carry Text, image blocks carry base64 Data and MediaType.
type ContentBlock struct {
	Type      string `json:"type"`
	Text      string `json:"text,omitempty"`
	MediaType string `json:"media_type,omitempty"`
	Data      string `json:"data,omitempty"`
}

func TextBlock(text string) ContentBlock {
	return ContentBlock{Type: BlockText, Text: text}
}

func ImageBlock(data string) ContentBlock {
	return ContentBlock{Type: BlockImage, MediaType: MediaTypeJPEG, Data: data}
}

func (b ContentBlock) IsImage() bool { return b.Type == BlockImage }

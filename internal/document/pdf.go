// Package document converts scanned exam documents into images the
// models accept.
package document

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image/jpeg"

	"github.com/gen2brain/go-fitz"
)

const jpegQuality = 85

var ErrEmptyDocument = errors.New("document has no pages")

// RasterizePDF renders the first page of a base64 encoded PDF and returns
// it as a base64 encoded JPEG.
func RasterizePDF(pdfBase64 string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(pdfBase64)
	if err != nil {
		return "", fmt.Errorf("failed to decode base64: %w", err)
	}

	doc, err := fitz.NewFromMemory(raw)
	if err != nil {
		return "", fmt.Errorf("failed to open pdf: %w", err)
	}
	defer doc.Close()

	if doc.NumPage() == 0 {
		return "", ErrEmptyDocument
	}

	img, err := doc.Image(0)
	if err != nil {
		return "", fmt.Errorf("failed to render page: %w", err)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return "", fmt.Errorf("failed to encode jpeg: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

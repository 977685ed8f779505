package tesseract

import (
	"context"
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// Provider recognizes text in page images using Tesseract via gosseract.
// A fresh client is created per call: gosseract clients are not safe for
// concurrent reuse, and per-call construction lets the fallback processor
// run pages in parallel when configured to.
type Provider struct {
	languages []string
}

// NewProvider creates a Tesseract OCR provider with the given language hints.
func NewProvider(languages []string) *Provider {
	if len(languages) == 0 {
		languages = []string{"eng"}
	}
	return &Provider{languages: languages}
}

// ExtractText runs OCR over a single encoded page image.
func (p *Provider) ExtractText(ctx context.Context, image []byte) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}

	client := gosseract.NewClient()
	defer func() { _ = client.Close() }()

	if err := client.SetLanguage(p.languages...); err != nil {
		return "", fmt.Errorf("setting ocr languages: %w", err)
	}
	if err := client.SetImageFromBytes(image); err != nil {
		return "", fmt.Errorf("setting ocr image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("recognizing text: %w", err)
	}
	return strings.TrimSpace(text), nil
}

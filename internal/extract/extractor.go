package extract

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"doclens/internal/domain"
)

// DefaultScannedThreshold is the native-text length below which a document
// is treated as scanned. Heuristic, not a guarantee: a legitimate one-line
// PDF can fall under it.
const DefaultScannedThreshold = 50

// PDFExtractor pulls native text out of PDF documents.
type PDFExtractor struct {
	threshold int
}

// NewPDFExtractor creates an extractor with the given scanned-classification
// threshold; non-positive values fall back to DefaultScannedThreshold.
func NewPDFExtractor(threshold int) *PDFExtractor {
	if threshold <= 0 {
		threshold = DefaultScannedThreshold
	}
	return &PDFExtractor{threshold: threshold}
}

// Extract concatenates per-page text in document order and trims surrounding
// whitespace. Documents that cannot be opened as a PDF fail with
// domain.ErrExtraction.
func (e *PDFExtractor) Extract(ctx context.Context, pdfBytes []byte) (doc domain.ExtractedDocument, err error) {
	// The pdf package panics on some malformed inputs; convert those into
	// extraction errors instead of taking the request down.
	defer func() {
		if r := recover(); r != nil {
			doc = domain.ExtractedDocument{}
			err = fmt.Errorf("%w: %v", domain.ErrExtraction, r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(pdfBytes), int64(len(pdfBytes)))
	if err != nil {
		return domain.ExtractedDocument{}, fmt.Errorf("%w: %v", domain.ErrExtraction, err)
	}

	var sb strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		select {
		case <-ctx.Done():
			return domain.ExtractedDocument{}, ctx.Err()
		default:
		}

		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return domain.ExtractedDocument{}, fmt.Errorf("%w: page %d: %v", domain.ErrExtraction, i, err)
		}
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(text)
	}

	return domain.ExtractedDocument{
		Text:   strings.TrimSpace(sb.String()),
		Origin: domain.OriginNative,
	}, nil
}

// Scanned reports whether the natively extracted document is too sparse to
// trust, meaning OCR should be attempted instead.
func (e *PDFExtractor) Scanned(doc domain.ExtractedDocument) bool {
	return len(doc.Text) < e.threshold
}

// Threshold returns the configured classification cutoff.
func (e *PDFExtractor) Threshold() int {
	return e.threshold
}

package extract

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"doclens/internal/domain"
	"doclens/internal/port"
)

// pageSeparator joins per-page OCR results with a blank line between pages.
const pageSeparator = "\n\n"

// OCRFallback recovers text from scanned documents: rasterize every page,
// OCR each page image, join in page order.
type OCRFallback struct {
	raster      port.RasterProvider
	ocr         port.OCRProvider
	concurrency int
}

// NewOCRFallback creates the fallback processor. concurrency bounds how many
// pages are recognized in parallel; values below 1 mean sequential.
func NewOCRFallback(raster port.RasterProvider, ocr port.OCRProvider, concurrency int) *OCRFallback {
	if concurrency < 1 {
		concurrency = 1
	}
	return &OCRFallback{raster: raster, ocr: ocr, concurrency: concurrency}
}

// Process rasterizes the document with OCR-grade enhancement and recognizes
// every page. Zero rendered pages fail with domain.ErrRasterization; an
// aggregate with no text fails with domain.ErrOCRExtraction, since a scan
// that yields nothing is more likely blank or corrupt than legitimately empty.
func (f *OCRFallback) Process(ctx context.Context, pdfBytes []byte) (domain.ExtractedDocument, error) {
	images, err := f.raster.Rasterize(ctx, pdfBytes, true)
	if err != nil {
		return domain.ExtractedDocument{}, fmt.Errorf("%w: %v", domain.ErrRasterization, err)
	}
	if len(images) == 0 {
		return domain.ExtractedDocument{}, fmt.Errorf("%w: no page images produced", domain.ErrRasterization)
	}

	// Results land in an indexed slice so page order survives parallelism.
	texts := make([]string, len(images))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.concurrency)
	for i, img := range images {
		g.Go(func() error {
			text, err := f.ocr.ExtractText(gctx, img)
			if err != nil {
				return fmt.Errorf("page %d: %w", i+1, err)
			}
			texts[i] = text
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return domain.ExtractedDocument{}, fmt.Errorf("%w: %v", domain.ErrOCRExtraction, err)
	}

	combined := strings.TrimSpace(strings.Join(texts, pageSeparator))
	if combined == "" {
		return domain.ExtractedDocument{}, domain.ErrOCRExtraction
	}

	return domain.ExtractedDocument{
		Text:   combined,
		Origin: domain.OriginOCR,
	}, nil
}

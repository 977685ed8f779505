package mupdf

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"

	"github.com/gen2brain/go-fitz"
)

// Rasterizer renders PDF pages to PNG images using MuPDF via go-fitz.
type Rasterizer struct {
	dpi         int
	enhancedDPI int
}

// NewRasterizer creates a rasterizer. enhancedDPI is used when the caller
// asks for an OCR-grade rendering.
func NewRasterizer(dpi, enhancedDPI int) *Rasterizer {
	if dpi <= 0 {
		dpi = 150
	}
	if enhancedDPI <= 0 {
		enhancedDPI = 300
	}
	return &Rasterizer{dpi: dpi, enhancedDPI: enhancedDPI}
}

// Rasterize renders every page of the PDF to an encoded PNG, in page order.
// With enhance set, pages are rendered at the higher DPI and converted to
// grayscale, which Tesseract handles better than color scans.
func (r *Rasterizer) Rasterize(ctx context.Context, pdfBytes []byte, enhance bool) ([][]byte, error) {
	doc, err := fitz.NewFromMemory(pdfBytes)
	if err != nil {
		return nil, fmt.Errorf("opening pdf: %w", err)
	}
	defer func() { _ = doc.Close() }()

	dpi := r.dpi
	if enhance {
		dpi = r.enhancedDPI
	}

	pages := make([][]byte, 0, doc.NumPage())
	for n := 0; n < doc.NumPage(); n++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		rendered, err := doc.ImageDPI(n, float64(dpi))
		if err != nil {
			return nil, fmt.Errorf("rendering page %d: %w", n+1, err)
		}
		var img image.Image = rendered
		if enhance {
			img = toGrayscale(img)
		}

		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("encoding page %d: %w", n+1, err)
		}
		pages = append(pages, buf.Bytes())
	}
	return pages, nil
}

func toGrayscale(src image.Image) image.Image {
	bounds := src.Bounds()
	gray := image.NewGray(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			gray.Set(x, y, src.At(x, y))
		}
	}
	return gray
}

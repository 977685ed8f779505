package port

import (
	"context"

	"doclens/internal/domain"
)

// CompletionRequest carries the data for one completion call.
type CompletionRequest struct {
	Model  string
	Prompt domain.PromptPair
	Stream bool
}

// FragmentFunc receives completion fragments in emission order. Returning an
// error stops the stream and propagates out of Complete.
type FragmentFunc func(domain.Fragment) error

// CompletionProvider abstracts an LLM completion backend. Implementations are
// stateless with respect to request data and safe to share across requests.
// Fragments are delivered through fn as they arrive; a slow consumer
// back-pressures the underlying transport read.
type CompletionProvider interface {
	Complete(ctx context.Context, req CompletionRequest, fn FragmentFunc) error
}

// OCRProvider extracts text from a single page image. Batching and page
// ordering are owned by the caller.
type OCRProvider interface {
	ExtractText(ctx context.Context, image []byte) (string, error)
}

// RasterProvider renders a PDF into one encoded image per page, in page
// order. enhance requests a higher-fidelity rendering suited to OCR.
type RasterProvider interface {
	Rasterize(ctx context.Context, pdfBytes []byte, enhance bool) ([][]byte, error)
}

// Embedder maps texts into a shared vector space.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// TextExtractor pulls native text out of a document and classifies whether
// the result is sparse enough that the document should be treated as scanned.
type TextExtractor interface {
	Extract(ctx context.Context, pdfBytes []byte) (domain.ExtractedDocument, error)
	Scanned(doc domain.ExtractedDocument) bool
}

// FallbackProcessor recovers text from scanned documents via rasterization
// and OCR.
type FallbackProcessor interface {
	Process(ctx context.Context, pdfBytes []byte) (domain.ExtractedDocument, error)
}

// ContextRetriever reduces a long document to its most query-relevant
// excerpts before inference.
type ContextRetriever interface {
	BuildContext(ctx context.Context, text, query string, k int) (string, error)
}

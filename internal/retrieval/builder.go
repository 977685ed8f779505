package retrieval

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/philippgille/chromem-go"

	"doclens/internal/config"
	"doclens/internal/domain"
	"doclens/internal/port"
)

// addConcurrency bounds how many chunks are embedded in parallel while
// indexing a document.
const addConcurrency = 4

// Builder reduces a long document to its most query-relevant excerpts. Each
// call builds an ephemeral in-memory vector collection scoped to the request;
// nothing is shared or persisted.
type Builder struct {
	embedder port.Embedder
	cfg      config.RetrievalConfig
}

// NewBuilder creates a retrieval context builder backed by the given embedder.
func NewBuilder(embedder port.Embedder, cfg config.RetrievalConfig) *Builder {
	return &Builder{embedder: embedder, cfg: cfg}
}

// BuildContext splits text into overlapping windows, embeds and indexes
// them, and returns the top-k windows most similar to query, concatenated in
// similarity order. Failures in embedding or indexing wrap
// domain.ErrRetrieval.
func (b *Builder) BuildContext(ctx context.Context, text, query string, k int) (string, error) {
	chunks := SplitText(text, b.cfg.ChunkSize, b.cfg.ChunkOverlap)
	if len(chunks) == 0 {
		return "", fmt.Errorf("%w: document has no text to index", domain.ErrRetrieval)
	}
	if k <= 0 {
		k = b.cfg.TopK
	}
	if k > len(chunks) {
		k = len(chunks)
	}

	db := chromem.NewDB()
	collection, err := db.CreateCollection("doc", nil, b.embedOne)
	if err != nil {
		return "", fmt.Errorf("%w: creating collection: %v", domain.ErrRetrieval, err)
	}

	docs := make([]chromem.Document, len(chunks))
	for i, chunk := range chunks {
		docs[i] = chromem.Document{
			ID:      strconv.Itoa(i),
			Content: chunk,
		}
	}
	if err := collection.AddDocuments(ctx, docs, addConcurrency); err != nil {
		return "", fmt.Errorf("%w: indexing chunks: %v", domain.ErrRetrieval, err)
	}

	results, err := collection.Query(ctx, query, k, nil, nil)
	if err != nil {
		return "", fmt.Errorf("%w: querying index: %v", domain.ErrRetrieval, err)
	}

	// Results arrive ranked by similarity; keep that order, not document order.
	parts := make([]string, len(results))
	for i, res := range results {
		parts[i] = res.Content
	}
	return strings.Join(parts, "\n"), nil
}

// embedOne adapts the batch port.Embedder to chromem's per-text contract.
func (b *Builder) embedOne(ctx context.Context, text string) ([]float32, error) {
	vecs, err := b.embedder.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vecs) == 0 {
		return nil, fmt.Errorf("embedder returned no vector")
	}
	return vecs[0], nil
}

package provider

import (
	"fmt"

	"doclens/internal/config"
	"doclens/internal/domain"
	"doclens/internal/port"
	"doclens/internal/provider/groq"
	"doclens/internal/provider/mupdf"
	"doclens/internal/provider/ollama"
	"doclens/internal/provider/tesseract"
)

// Registry maps logical backend names to provider implementations. Providers
// are stateless with respect to request data, so they are constructed once
// here and shared read-only across requests; Resolve methods are pure map
// lookups and never build partial state.
type Registry struct {
	completions map[domain.CompletionBackend]port.CompletionProvider
	ocrs        map[string]port.OCRProvider
	rasters     map[string]port.RasterProvider
	embedder    port.Embedder
}

// NewRegistry constructs every configured provider. Adding a backend means
// adding one entry to the relevant map.
func NewRegistry(cfg *config.Config) *Registry {
	ollamaClient := ollama.NewClient(cfg.Ollama)
	groqClient := groq.NewClient(cfg.Groq)

	return &Registry{
		completions: map[domain.CompletionBackend]port.CompletionProvider{
			domain.BackendOllamaLocal: ollamaClient,
			domain.BackendGroqCloud:   groqClient,
		},
		ocrs: map[string]port.OCRProvider{
			"tesseract": tesseract.NewProvider(cfg.OCR.Languages),
		},
		rasters: map[string]port.RasterProvider{
			"mupdf": mupdf.NewRasterizer(cfg.Raster.DPI, cfg.Raster.EnhancedDPI),
		},
		embedder: ollamaClient,
	}
}

// Completion resolves a completion backend by its enumerated name.
func (r *Registry) Completion(backend domain.CompletionBackend) (port.CompletionProvider, error) {
	p, ok := r.completions[backend]
	if !ok {
		return nil, fmt.Errorf("%w: completion backend %q", domain.ErrUnsupportedBackend, string(backend))
	}
	return p, nil
}

// OCR resolves an OCR engine by name.
func (r *Registry) OCR(name string) (port.OCRProvider, error) {
	p, ok := r.ocrs[name]
	if !ok {
		return nil, fmt.Errorf("%w: ocr engine %q", domain.ErrUnsupportedBackend, name)
	}
	return p, nil
}

// Raster resolves a PDF rasterization engine by name.
func (r *Registry) Raster(name string) (port.RasterProvider, error) {
	p, ok := r.rasters[name]
	if !ok {
		return nil, fmt.Errorf("%w: raster engine %q", domain.ErrUnsupportedBackend, name)
	}
	return p, nil
}

// Embedder returns the embedding provider used by the retrieval path.
func (r *Registry) Embedder() port.Embedder {
	return r.embedder
}

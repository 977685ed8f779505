package provider

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"doclens/internal/config"
	"doclens/internal/domain"
)

func testConfig() *config.Config {
	return &config.Config{
		Ollama: config.OllamaConfig{BaseURL: "http://localhost:11434", EmbedModel: "nomic-embed-text"},
		Groq:   config.GroqConfig{BaseURL: "https://api.groq.com/openai/v1", APIKey: "test"},
		OCR:    config.OCRConfig{Languages: []string{"eng"}},
		Raster: config.RasterConfig{DPI: 150, EnhancedDPI: 300},
	}
}

func TestRegistry_ResolvesKnownBackends(t *testing.T) {
	r := NewRegistry(testConfig())

	local, err := r.Completion(domain.BackendOllamaLocal)
	require.NoError(t, err)
	require.NotNil(t, local)

	cloud, err := r.Completion(domain.BackendGroqCloud)
	require.NoError(t, err)
	require.NotNil(t, cloud)

	ocr, err := r.OCR("tesseract")
	require.NoError(t, err)
	require.NotNil(t, ocr)

	raster, err := r.Raster("mupdf")
	require.NoError(t, err)
	require.NotNil(t, raster)

	require.NotNil(t, r.Embedder())
}

func TestRegistry_UnknownName(t *testing.T) {
	r := NewRegistry(testConfig())

	_, err := r.Completion("bedrock_cloud")
	assert.True(t, errors.Is(err, domain.ErrUnsupportedBackend))
	assert.Contains(t, err.Error(), "bedrock_cloud")

	_, err = r.OCR("easyocr")
	assert.True(t, errors.Is(err, domain.ErrUnsupportedBackend))

	_, err = r.Raster("ghostscript")
	assert.True(t, errors.Is(err, domain.ErrUnsupportedBackend))
}

func TestRegistry_ProvidersAreShared(t *testing.T) {
	r := NewRegistry(testConfig())

	first, err := r.Completion(domain.BackendOllamaLocal)
	require.NoError(t, err)
	second, err := r.Completion(domain.BackendOllamaLocal)
	require.NoError(t, err)

	// Resolution is a lookup, not a constructor call.
	assert.Same(t, first, second)
}

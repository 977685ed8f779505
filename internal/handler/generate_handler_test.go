package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"doclens/internal/domain"
	"doclens/internal/port"
	"doclens/internal/service"
)

type fakeGenProvider struct {
	fragments []domain.Fragment
	err       error
	lastReq   port.CompletionRequest
}

func (p *fakeGenProvider) Complete(_ context.Context, req port.CompletionRequest, fn port.FragmentFunc) error {
	p.lastReq = req
	if p.err != nil {
		return p.err
	}
	for _, frag := range p.fragments {
		if err := fn(frag); err != nil {
			return err
		}
	}
	return nil
}

type fakeGenResolver struct {
	provider    port.CompletionProvider
	err         error
	lastBackend domain.CompletionBackend
}

func (f *fakeGenResolver) Completion(backend domain.CompletionBackend) (port.CompletionProvider, error) {
	f.lastBackend = backend
	return f.provider, f.err
}

func generateRouter(resolver service.CompletionResolver) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewGenerateHandler(resolver, service.NewCompletionService(zap.NewNop()))
	r.POST("/api/v1/generate", h.Generate)
	return r
}

func doGenerate(t *testing.T, r *gin.Engine, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/generate", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestGenerateHandler_Buffered(t *testing.T) {
	provider := &fakeGenProvider{fragments: []domain.Fragment{
		{Response: "Hel", Raw: []byte(`{"response":"Hel","done":false}`)},
		{Response: "lo", Raw: []byte(`{"response":"lo","done":true}`)},
	}}
	resolver := &fakeGenResolver{provider: provider}
	r := generateRouter(resolver)

	rec := doGenerate(t, r, `{"model":"llama3","prompt":"say hello","stream":false}`)

	require.Equal(t, http.StatusOK, rec.Code)

	var out struct {
		Results []json.RawMessage `json:"results"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Len(t, out.Results, 2)
	assert.JSONEq(t, `{"response":"Hel","done":false}`, string(out.Results[0]))
	assert.JSONEq(t, `{"response":"lo","done":true}`, string(out.Results[1]))

	assert.Equal(t, domain.BackendOllamaLocal, resolver.lastBackend)
	assert.False(t, provider.lastReq.Stream)
	assert.Equal(t, "say hello", provider.lastReq.Prompt.User)
}

func TestGenerateHandler_Stream(t *testing.T) {
	provider := &fakeGenProvider{fragments: []domain.Fragment{
		{Response: "a", Raw: []byte(`{"response":"a","done":false}`)},
		{Response: "b", Raw: []byte(`{"response":"b","done":true}`)},
	}}
	r := generateRouter(&fakeGenResolver{provider: provider})

	rec := doGenerate(t, r, `{"model":"llama3","prompt":"hi","stream":true}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/x-ndjson", rec.Header().Get("Content-Type"))
	assert.True(t, provider.lastReq.Stream)

	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	require.Len(t, lines, 2)
	assert.JSONEq(t, `{"response":"a","done":false}`, lines[0])
	assert.JSONEq(t, `{"response":"b","done":true}`, lines[1])
}

func TestGenerateHandler_InvalidBody(t *testing.T) {
	r := generateRouter(&fakeGenResolver{provider: &fakeGenProvider{}})

	rec := doGenerate(t, r, `not json at all`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "INVALID_BODY")
}

func TestGenerateHandler_MissingModel(t *testing.T) {
	r := generateRouter(&fakeGenResolver{provider: &fakeGenProvider{}})

	rec := doGenerate(t, r, `{"prompt":"hi"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "MISSING_MODEL")
}

func TestGenerateHandler_MissingPrompt(t *testing.T) {
	r := generateRouter(&fakeGenResolver{provider: &fakeGenProvider{}})

	rec := doGenerate(t, r, `{"model":"llama3"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "MISSING_PROMPT")
}

func TestGenerateHandler_ProviderFailure(t *testing.T) {
	provider := &fakeGenProvider{err: fmt.Errorf("%w: ollama returned status 500", domain.ErrCompletion)}
	r := generateRouter(&fakeGenResolver{provider: provider})

	rec := doGenerate(t, r, `{"model":"llama3","prompt":"hi","stream":false}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "COMPLETION_FAILED")
}

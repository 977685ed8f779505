package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"doclens/internal/domain"
)

type fakeProcessor struct {
	result    json.RawMessage
	err       error
	lastInput domain.ProcessFileInput
	calls     int
}

func (f *fakeProcessor) ProcessFile(_ context.Context, input domain.ProcessFileInput) (json.RawMessage, error) {
	f.calls++
	f.lastInput = input
	return f.result, f.err
}

func processRouter(p *fakeProcessor, maxMB int64) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/api/v1/process-file", NewProcessHandler(p, maxMB).ProcessFile)
	return r
}

type formFields struct {
	model          string
	processingType string
	prompt         string
	aiService      string
	fileName       string
	fileBody       []byte
}

func multipartBody(t *testing.T, f formFields) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if f.model != "" {
		require.NoError(t, w.WriteField("model", f.model))
	}
	if f.processingType != "" {
		require.NoError(t, w.WriteField("processing_type", f.processingType))
	}
	if f.prompt != "" {
		require.NoError(t, w.WriteField("prompt", f.prompt))
	}
	if f.aiService != "" {
		require.NoError(t, w.WriteField("ai_service", f.aiService))
	}
	if f.fileName != "" {
		part, err := w.CreateFormFile("file", f.fileName)
		require.NoError(t, err)
		_, err = part.Write(f.fileBody)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func doProcess(t *testing.T, r *gin.Engine, f formFields) *httptest.ResponseRecorder {
	t.Helper()
	body, contentType := multipartBody(t, f)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/process-file", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestProcessHandler_Success(t *testing.T) {
	p := &fakeProcessor{result: json.RawMessage(`{"number": "INV-1"}`)}
	r := processRouter(p, 50)

	rec := doProcess(t, r, formFields{
		model:          "llama3",
		processingType: "parse",
		fileName:       "invoice.pdf",
		fileBody:       []byte("%PDF-1.7 fake"),
	})

	require.Equal(t, http.StatusOK, rec.Code)

	var resp APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)

	data, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	assert.JSONEq(t, `{"number": "INV-1"}`, string(data))

	assert.Equal(t, "llama3", p.lastInput.Model)
	assert.Equal(t, domain.ProcessingTypeParse, p.lastInput.ProcessingType)
	assert.Equal(t, "invoice.pdf", p.lastInput.Filename)
	assert.Equal(t, []byte("%PDF-1.7 fake"), p.lastInput.FileBytes)
}

func TestProcessHandler_BackendDefaultsToLocal(t *testing.T) {
	p := &fakeProcessor{result: json.RawMessage(`{}`)}
	r := processRouter(p, 50)

	doProcess(t, r, formFields{
		model:          "llama3",
		processingType: "parse",
		fileName:       "doc.pdf",
		fileBody:       []byte("x"),
	})

	assert.Equal(t, domain.BackendOllamaLocal, p.lastInput.Backend)
}

func TestProcessHandler_ExplicitBackendForwarded(t *testing.T) {
	p := &fakeProcessor{result: json.RawMessage(`{}`)}
	r := processRouter(p, 50)

	doProcess(t, r, formFields{
		model:          "llama-3.3-70b-versatile",
		processingType: "prompt",
		prompt:         "total?",
		aiService:      "groq_cloud",
		fileName:       "doc.pdf",
		fileBody:       []byte("x"),
	})

	assert.Equal(t, domain.BackendGroqCloud, p.lastInput.Backend)
	assert.Equal(t, "total?", p.lastInput.Prompt)
}

func TestProcessHandler_MissingFile(t *testing.T) {
	p := &fakeProcessor{}
	r := processRouter(p, 50)

	rec := doProcess(t, r, formFields{model: "llama3", processingType: "parse"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "MISSING_FILE")
	assert.Zero(t, p.calls)
}

func TestProcessHandler_FileTooLarge(t *testing.T) {
	p := &fakeProcessor{}
	r := processRouter(p, 1)

	rec := doProcess(t, r, formFields{
		model:          "llama3",
		processingType: "parse",
		fileName:       "big.pdf",
		fileBody:       bytes.Repeat([]byte("x"), 2<<20),
	})

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Contains(t, rec.Body.String(), "FILE_TOO_LARGE")
	assert.Zero(t, p.calls)
}

func TestProcessHandler_DomainErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"invalid type", domain.ErrInvalidProcessingType, http.StatusBadRequest, "INVALID_PROCESSING_TYPE"},
		{"prompt required", domain.ErrPromptRequired, http.StatusBadRequest, "PROMPT_REQUIRED"},
		{"unsupported backend", fmt.Errorf("%w: %q", domain.ErrUnsupportedBackend, "azure"), http.StatusBadRequest, "UNSUPPORTED_BACKEND"},
		{"extraction", fmt.Errorf("%w: bad xref", domain.ErrExtraction), http.StatusInternalServerError, "EXTRACTION_FAILED"},
		{"rasterization", fmt.Errorf("%w: no pages", domain.ErrRasterization), http.StatusInternalServerError, "RASTERIZATION_FAILED"},
		{"ocr", domain.ErrOCRExtraction, http.StatusInternalServerError, "OCR_EXTRACTION_FAILED"},
		{"retrieval", fmt.Errorf("%w: embed down", domain.ErrRetrieval), http.StatusInternalServerError, "RETRIEVAL_FAILED"},
		{"completion", fmt.Errorf("%w: status 502", domain.ErrCompletion), http.StatusInternalServerError, "COMPLETION_FAILED"},
		{"malformed", &domain.MalformedResponseError{Raw: "not json", Err: fmt.Errorf("invalid character")}, http.StatusInternalServerError, "MALFORMED_RESPONSE"},
		{"unknown", fmt.Errorf("something else"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &fakeProcessor{err: tt.err}
			r := processRouter(p, 50)

			rec := doProcess(t, r, formFields{
				model:          "llama3",
				processingType: "parse",
				fileName:       "doc.pdf",
				fileBody:       []byte("x"),
			})

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantCode)
		})
	}
}

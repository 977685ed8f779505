package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"doclens/internal/domain"
)

// FileProcessor runs the document-to-structured-output pipeline.
type FileProcessor interface {
	ProcessFile(ctx context.Context, input domain.ProcessFileInput) (json.RawMessage, error)
}

// ProcessHandler handles document processing endpoints.
type ProcessHandler struct {
	processor    FileProcessor
	maxFileBytes int64
}

// NewProcessHandler creates a ProcessHandler. maxFileSizeMB bounds the size
// of accepted uploads.
func NewProcessHandler(processor FileProcessor, maxFileSizeMB int64) *ProcessHandler {
	if maxFileSizeMB <= 0 {
		maxFileSizeMB = 50
	}
	return &ProcessHandler{
		processor:    processor,
		maxFileBytes: maxFileSizeMB << 20,
	}
}

// ProcessFile handles POST /api/v1/process-file
// @Summary Process an uploaded document
// @Description Extract structured invoice data from a document, or answer a free-form question about it
// @Tags processing
// @Accept multipart/form-data
// @Produce json
// @Param model formData string true "Completion model name"
// @Param file formData file true "Document to process (PDF)"
// @Param processing_type formData string true "parse or prompt"
// @Param prompt formData string false "Question for prompt mode (required when processing_type=prompt)"
// @Param ai_service formData string false "ollama_local or groq_cloud" default(ollama_local)
// @Router /process-file [post]
func (h *ProcessHandler) ProcessFile(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "MISSING_FILE", "file field is required")
		return
	}
	defer func() { _ = file.Close() }()

	if header.Size > h.maxFileBytes {
		RespondError(c, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "file exceeds maximum allowed size")
		return
	}

	fileBytes, err := io.ReadAll(io.LimitReader(file, h.maxFileBytes+1))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "UNREADABLE_FILE", "could not read uploaded file")
		return
	}
	if int64(len(fileBytes)) > h.maxFileBytes {
		RespondError(c, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "file exceeds maximum allowed size")
		return
	}

	backend := c.PostForm("ai_service")
	if backend == "" {
		backend = string(domain.BackendOllamaLocal)
	}

	input := domain.ProcessFileInput{
		Model:          c.PostForm("model"),
		ProcessingType: domain.ProcessingType(c.PostForm("processing_type")),
		Prompt:         c.PostForm("prompt"),
		Backend:        domain.CompletionBackend(backend),
		FileBytes:      fileBytes,
		Filename:       header.Filename,
	}

	result, err := h.processor.ProcessFile(c.Request.Context(), input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, result)
}

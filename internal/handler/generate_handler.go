package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"doclens/internal/domain"
	"doclens/internal/port"
	"doclens/internal/service"
)

// GenerateRequest is the body for POST /api/v1/generate.
type GenerateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

// GenerateHandler passes prompts straight through to the local completion
// backend, optionally streaming fragments as they arrive.
type GenerateHandler struct {
	resolver    service.CompletionResolver
	completions *service.CompletionService
}

// NewGenerateHandler creates a GenerateHandler.
func NewGenerateHandler(resolver service.CompletionResolver, completions *service.CompletionService) *GenerateHandler {
	return &GenerateHandler{resolver: resolver, completions: completions}
}

// Generate handles POST /api/v1/generate
// @Summary Direct completion pass-through
// @Description Send a prompt to the local completion backend; stream=true returns newline-delimited JSON fragments
// @Tags generation
// @Accept json
// @Produce json
// @Router /generate [post]
func (h *GenerateHandler) Generate(c *gin.Context) {
	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_BODY", "body must be JSON with model, prompt, stream")
		return
	}
	if strings.TrimSpace(req.Model) == "" {
		RespondError(c, http.StatusBadRequest, "MISSING_MODEL", "model is required")
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		RespondError(c, http.StatusBadRequest, "MISSING_PROMPT", "prompt is required")
		return
	}

	provider, err := h.resolver.Completion(domain.BackendOllamaLocal)
	if err != nil {
		HandleError(c, err)
		return
	}

	completionReq := port.CompletionRequest{
		Model:  req.Model,
		Prompt: domain.PromptPair{User: req.Prompt},
		Stream: req.Stream,
	}

	if !req.Stream {
		var results []json.RawMessage
		err := h.completions.Stream(c.Request.Context(), provider, completionReq, func(frag domain.Fragment) error {
			results = append(results, frag.Raw)
			return nil
		})
		if err != nil {
			HandleError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"results": results})
		return
	}

	c.Header("Content-Type", "application/x-ndjson")
	c.Status(http.StatusOK)
	flusher, _ := c.Writer.(http.Flusher)

	err = h.completions.Stream(c.Request.Context(), provider, completionReq, func(frag domain.Fragment) error {
		if _, werr := c.Writer.Write(append(frag.Raw, '\n')); werr != nil {
			return werr
		}
		if flusher != nil {
			flusher.Flush()
		}
		return nil
	})
	if err != nil {
		// Headers are already sent; the disconnect or provider failure can
		// only be surfaced by terminating the stream.
		_ = c.Error(err)
	}
}

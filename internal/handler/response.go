package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"doclens/internal/domain"
	"doclens/internal/middleware"
	"doclens/pkg/logger"
)

// APIResponse is the standard envelope for all API responses.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
}

// APIError holds error details in the response.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// RespondOK sends a 200 success response.
func RespondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data})
}

// RespondError sends an error response with the given status code.
func RespondError(c *gin.Context, status int, code, msg string) {
	c.JSON(status, APIResponse{
		Success: false,
		Error:   &APIError{Code: code, Message: msg},
	})
}

// MapDomainError translates pipeline errors to HTTP status codes and error
// codes. The response message carries the wrapped stage + cause so callers
// can diagnose failures without server-side correlation.
func MapDomainError(err error) (status int, code string) {
	var malformed *domain.MalformedResponseError
	switch {
	case errors.Is(err, domain.ErrInvalidProcessingType):
		return http.StatusBadRequest, "INVALID_PROCESSING_TYPE"
	case errors.Is(err, domain.ErrPromptRequired):
		return http.StatusBadRequest, "PROMPT_REQUIRED"
	case errors.Is(err, domain.ErrMissingFile):
		return http.StatusBadRequest, "MISSING_FILE"
	case errors.Is(err, domain.ErrMissingModel):
		return http.StatusBadRequest, "MISSING_MODEL"
	case errors.Is(err, domain.ErrUnsupportedBackend):
		return http.StatusBadRequest, "UNSUPPORTED_BACKEND"
	case errors.Is(err, domain.ErrExtraction):
		return http.StatusInternalServerError, "EXTRACTION_FAILED"
	case errors.Is(err, domain.ErrRasterization):
		return http.StatusInternalServerError, "RASTERIZATION_FAILED"
	case errors.Is(err, domain.ErrOCRExtraction):
		return http.StatusInternalServerError, "OCR_EXTRACTION_FAILED"
	case errors.Is(err, domain.ErrRetrieval):
		return http.StatusInternalServerError, "RETRIEVAL_FAILED"
	case errors.Is(err, domain.ErrCompletion):
		return http.StatusInternalServerError, "COMPLETION_FAILED"
	case errors.As(err, &malformed):
		return http.StatusInternalServerError, "MALFORMED_RESPONSE"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR"
	}
}

// HandleError maps a domain error and sends the appropriate error response.
func HandleError(c *gin.Context, err error) {
	status, code := MapDomainError(err)
	if status >= http.StatusInternalServerError {
		logger.Get().Error("request failed",
			zap.String("request_id", c.GetString(middleware.RequestIDKey)),
			zap.String("code", code),
			zap.Error(err),
		)
	}
	RespondError(c, status, code, err.Error())
}

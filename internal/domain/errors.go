package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidProcessingType = errors.New("invalid processing type; use 'parse' or 'prompt'")
	ErrPromptRequired        = errors.New("prompt is required for 'prompt' processing type")
	ErrUnsupportedBackend    = errors.New("unsupported backend")
	ErrMissingFile           = errors.New("file is required")
	ErrMissingModel          = errors.New("model is required")
	ErrExtraction            = errors.New("failed to extract text from document")
	ErrRasterization         = errors.New("failed to rasterize document into page images")
	ErrOCRExtraction         = errors.New("ocr produced no text; document may be blank or corrupt")
	ErrRetrieval             = errors.New("failed to build retrieval context")
	ErrCompletion            = errors.New("completion provider call failed")
)

// MalformedResponseError indicates the completion provider returned text that
// is not valid JSON after sanitization. Raw carries the unmodified provider
// output for diagnosis.
type MalformedResponseError struct {
	Raw string
	Err error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed completion response: %v (raw: %s)", e.Err, truncate(e.Raw, 500))
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

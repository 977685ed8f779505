package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ProcessFileInput carries everything needed to process one uploaded document.
// The file bytes are owned by this request and discarded when it completes.
type ProcessFileInput struct {
	Model          string
	ProcessingType ProcessingType
	Prompt         string
	Backend        CompletionBackend
	FileBytes      []byte
	Filename       string
}

// Validate checks the request invariants before any provider work starts.
func (in *ProcessFileInput) Validate() error {
	if strings.TrimSpace(in.Model) == "" {
		return ErrMissingModel
	}
	if !in.ProcessingType.Valid() {
		return ErrInvalidProcessingType
	}
	if in.ProcessingType == ProcessingTypePrompt && strings.TrimSpace(in.Prompt) == "" {
		return ErrPromptRequired
	}
	if !in.Backend.Valid() {
		return fmt.Errorf("%w: %q is not a completion backend", ErrUnsupportedBackend, string(in.Backend))
	}
	if len(in.FileBytes) == 0 {
		return ErrMissingFile
	}
	return nil
}

// ExtractedDocument is the text pulled out of an uploaded document, either
// natively or through OCR. Immutable once created.
type ExtractedDocument struct {
	Text   string
	Origin TextOrigin
}

// PromptPair is the (system context, user instruction) pair sent to a
// completion provider.
type PromptPair struct {
	System string
	User   string
}

// Fragment is one incremental unit of a completion provider's response.
// Response is the textual payload used for aggregation; Raw is the provider's
// verbatim chunk JSON, forwarded untouched on streaming pass-through.
type Fragment struct {
	Response string
	Raw      json.RawMessage
}

// Invoice documents the structured output schema requested in parse mode.
// Tax lines are represented as line items whose description is the literal
// "TAX". The pipeline surfaces the model's JSON as-is; this type exists for
// callers that decode it.
type Invoice struct {
	Number  string     `json:"number"`
	Date    string     `json:"date"`
	DueDate string     `json:"dueDate"`
	Total   string     `json:"total"`
	Items   []LineItem `json:"items"`
}

// LineItem is a single invoice line.
type LineItem struct {
	Description string `json:"description"`
	Quantity    string `json:"quantity"`
	UnitPrice   string `json:"unit_price"`
}

package domain

// ProcessingType selects how an uploaded document is handled.
type ProcessingType string

const (
	// ProcessingTypeParse extracts structured invoice fields.
	ProcessingTypeParse ProcessingType = "parse"
	// ProcessingTypePrompt answers a caller-supplied question about the document.
	ProcessingTypePrompt ProcessingType = "prompt"
)

// Valid reports whether the processing type is one of the known values.
func (p ProcessingType) Valid() bool {
	return p == ProcessingTypeParse || p == ProcessingTypePrompt
}

// CompletionBackend identifies which completion provider answers a request.
type CompletionBackend string

const (
	BackendOllamaLocal CompletionBackend = "ollama_local"
	BackendGroqCloud   CompletionBackend = "groq_cloud"
)

// Valid reports whether the backend is one of the known values.
func (b CompletionBackend) Valid() bool {
	return b == BackendOllamaLocal || b == BackendGroqCloud
}

// TextOrigin records how a document's text was obtained.
type TextOrigin string

const (
	OriginNative TextOrigin = "native"
	OriginOCR    TextOrigin = "ocr"
)

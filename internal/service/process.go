package service

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"doclens/internal/domain"
	"doclens/internal/llm"
	"doclens/internal/port"
)

// CompletionResolver resolves a completion backend name to a provider.
// Implemented by the provider registry.
type CompletionResolver interface {
	Completion(backend domain.CompletionBackend) (port.CompletionProvider, error)
}

// ProcessService runs the document-to-structured-output pipeline:
// extract -> (ocr fallback) -> prompt -> (retrieval) -> complete -> parse.
// Every stage fails fast; there are no retries and no partial results.
type ProcessService struct {
	extractor   port.TextExtractor
	fallback    port.FallbackProcessor
	resolver    CompletionResolver
	retriever   port.ContextRetriever
	completions *CompletionService
	topK        int
	logger      *zap.Logger
}

// NewProcessService wires the pipeline stages together.
func NewProcessService(
	extractor port.TextExtractor,
	fallback port.FallbackProcessor,
	resolver CompletionResolver,
	retriever port.ContextRetriever,
	completions *CompletionService,
	topK int,
	logger *zap.Logger,
) *ProcessService {
	if topK <= 0 {
		topK = 5
	}
	return &ProcessService{
		extractor:   extractor,
		fallback:    fallback,
		resolver:    resolver,
		retriever:   retriever,
		completions: completions,
		topK:        topK,
		logger:      logger,
	}
}

// ProcessFile validates the request, extracts text (falling back to OCR for
// scanned documents), builds the mode-specific prompt, runs one buffered
// completion, and parses the sanitized answer as JSON. All intermediate
// state is request-scoped; ctx is propagated into every provider call so a
// disconnecting caller cancels in-flight upstream work.
func (s *ProcessService) ProcessFile(ctx context.Context, input domain.ProcessFileInput) (json.RawMessage, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	// Resolve up front: an unknown backend must fail before any document work.
	provider, err := s.resolver.Completion(input.Backend)
	if err != nil {
		return nil, err
	}

	doc, err := s.extractor.Extract(ctx, input.FileBytes)
	if err != nil {
		return nil, err
	}
	if s.extractor.Scanned(doc) {
		s.logger.Info("native text too sparse, falling back to ocr",
			zap.String("file", input.Filename),
			zap.Int("native_chars", len(doc.Text)),
		)
		doc, err = s.fallback.Process(ctx, input.FileBytes)
		if err != nil {
			return nil, err
		}
	}

	prompt, err := s.buildPrompt(ctx, input, doc)
	if err != nil {
		return nil, err
	}

	raw, err := s.completions.Complete(ctx, provider, input.Model, prompt)
	if err != nil {
		return nil, err
	}

	result, err := llm.ParseStructured(raw)
	if err != nil {
		return nil, err
	}

	s.logger.Info("document processed",
		zap.String("file", input.Filename),
		zap.String("type", string(input.ProcessingType)),
		zap.String("backend", string(input.Backend)),
		zap.String("origin", string(doc.Origin)),
	)
	return result, nil
}

func (s *ProcessService) buildPrompt(ctx context.Context, input domain.ProcessFileInput, doc domain.ExtractedDocument) (domain.PromptPair, error) {
	if input.ProcessingType == domain.ProcessingTypeParse {
		return llm.BuildParsePrompt(doc.Text), nil
	}

	// Free-form prompting: the cloud backend is the retrieval-capable path,
	// so long documents are reduced to their most relevant excerpts first.
	if input.Backend == domain.BackendGroqCloud {
		reduced, err := s.retriever.BuildContext(ctx, doc.Text, input.Prompt, s.topK)
		if err != nil {
			return domain.PromptPair{}, err
		}
		return llm.BuildRetrievalPrompt(reduced, input.Prompt), nil
	}

	return llm.BuildCustomPrompt(doc.Text, input.Prompt), nil
}

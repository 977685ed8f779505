package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"doclens/internal/domain"
	"doclens/internal/port"
)

// CompletionService drives completion calls against a provider chosen by the
// caller. The provider is always an explicit parameter so no request-scoped
// selection ever lives on shared state.
type CompletionService struct {
	logger *zap.Logger
}

// NewCompletionService creates a CompletionService.
func NewCompletionService(logger *zap.Logger) *CompletionService {
	return &CompletionService{logger: logger}
}

// Complete issues one buffered completion call and aggregates every fragment's
// textual payload in emission order.
func (s *CompletionService) Complete(ctx context.Context, provider port.CompletionProvider, model string, prompt domain.PromptPair) (string, error) {
	var sb strings.Builder
	req := port.CompletionRequest{Model: model, Prompt: prompt, Stream: false}
	err := provider.Complete(ctx, req, func(frag domain.Fragment) error {
		sb.WriteString(frag.Response)
		return nil
	})
	if err != nil {
		return "", err
	}
	s.logger.Debug("completion aggregated",
		zap.String("model", model),
		zap.Int("chars", sb.Len()),
	)
	return sb.String(), nil
}

// Stream forwards fragments to fn as the provider emits them. Used by the
// direct-generation path; a slow consumer back-pressures the transport read,
// and cancelling ctx aborts the in-flight provider call.
func (s *CompletionService) Stream(ctx context.Context, provider port.CompletionProvider, req port.CompletionRequest, fn port.FragmentFunc) error {
	return provider.Complete(ctx, req, fn)
}

package ai

import (
	"context"

	"wellness-companion/internal/domain/ports/adapter"
)

// Compile-time check
var _ adapter.AssistantAdapter = (*limitedAssistant)(nil)

type limitedAssistant struct {
	inner adapter.AssistantAdapter
	sem   chan struct{}
}

// NewLimitedAssistant bounds concurrent provider calls with a semaphore.
func NewLimitedAssistant(inner adapter.AssistantAdapter, maxConcurrent int) adapter.AssistantAdapter {
	if maxConcurrent <= 0 {
		return inner
	}
	return &limitedAssistant{
		inner: inner,
		sem:   make(chan struct{}, maxConcurrent),
	}
}

func (l *limitedAssistant) ListModels(ctx context.Context) ([]string, error) {
	return l.inner.ListModels(ctx)
}

func (l *limitedAssistant) Chat(ctx context.Context, model string, messages []adapter.Message) (string, error) {
	l.sem <- struct{}{}
	defer func() { <-l.sem }()
	return l.inner.Chat(ctx, model, messages)
}

func (l *limitedAssistant) CountTokens(ctx context.Context, model string, messages []adapter.Message) (int, error) {
	l.sem <- struct{}{}
	defer func() { <-l.sem }()
	return l.inner.CountTokens(ctx, model, messages)
}

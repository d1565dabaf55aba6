package ai

import (
	"context"
	"time"

	"wellness-companion/internal/domain/ports/adapter"
)

var _ adapter.AssistantAdapter = (*NoopAdapter)(nil)

// NoopAdapter is a local/dev stand-in that never calls a real provider.
type NoopAdapter struct{}

func NewNoopAdapter() *NoopAdapter {
	return &NoopAdapter{}
}

func (a *NoopAdapter) ListModels(ctx context.Context) ([]string, error) {
	return []string{"noop-model"}, nil
}

func (a *NoopAdapter) Chat(ctx context.Context, model string, messages []adapter.Message) (string, error) {
	select {
	case <-time.After(100 * time.Millisecond):
	case <-ctx.Done():
		return "", ctx.Err()
	}
	return "Thank you for sharing. I'm here to listen whenever you want to talk.", nil
}

func (a *NoopAdapter) CountTokens(ctx context.Context, model string, messages []adapter.Message) (int, error) {
	n := 0
	for _, m := range messages {
		n += len(m.Content) / 4
	}
	return n, nil
}

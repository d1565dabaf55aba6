package adapter

import "context"

// Message represents a chat message in provider wire shape.
type Message struct {
	Role    string `json:"role"` // "user", "assistant", "system"
	Content string `json:"content"`
}

// AssistantAdapter is the port for the remote assistant. It is an opaque
// request/response boundary: one prompt in, one reply out, or an error.
type AssistantAdapter interface {
	ListModels(ctx context.Context) ([]string, error)

	// Chat returns only the assistant text.
	Chat(ctx context.Context, model string, messages []Message) (string, error)

	// CountTokens must return prompt tokens for the provided messages
	// (provider-specific counting; best-effort when exact isn't available).
	CountTokens(ctx context.Context, model string, messages []Message) (int, error)
}

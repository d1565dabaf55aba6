package repository

import (
	"context"

	"wellness-companion/internal/domain/model"
)

// HandoffSlot is the single-use transfer mechanism that carries a past
// conversation from the history view into a freshly opened chat session.
// The slot holds at most one payload per user and Take consumes it: a second
// Take returns ErrNotFound until the next Put.
type HandoffSlot interface {
	Put(ctx context.Context, userID string, conv *model.Conversation) error
	Take(ctx context.Context, userID string) (*model.Conversation, error)
}

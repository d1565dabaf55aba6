package repository

import (
	"context"

	"wellness-companion/internal/domain/model"
)

// -----------------------------
// Conversations
// -----------------------------

// ConversationRepository is the durable store for conversations. Upsert is
// addressed by id: the store creates the row when it does not exist yet, so
// the write path never needs a separate create call.
type ConversationRepository interface {
	Upsert(ctx context.Context, qx Tx, conv *model.Conversation) error
	FindByID(ctx context.Context, qx Tx, id string) (*model.Conversation, error)
	FindAllByUser(ctx context.Context, qx Tx, userID string) ([]*model.Conversation, error)
	Delete(ctx context.Context, qx Tx, id string) error
	// DeleteAllByUser removes every conversation for a user (account removal cascade).
	DeleteAllByUser(ctx context.Context, qx Tx, userID string) error
}

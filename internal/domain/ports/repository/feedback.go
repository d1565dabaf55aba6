package repository

import (
	"context"

	"wellness-companion/internal/domain/model"
)

// -----------------------------
// Feedback
// -----------------------------

type FeedbackRepository interface {
	Save(ctx context.Context, qx Tx, entry *model.Feedback) error
	FindAll(ctx context.Context, qx Tx) ([]*model.Feedback, error)
	DeleteAllByUser(ctx context.Context, qx Tx, userID string) error
}

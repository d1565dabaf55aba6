package repository

import (
	"context"

	"wellness-companion/internal/domain/model"
)

// -----------------------------
// Mood entries
// -----------------------------

type MoodRepository interface {
	Save(ctx context.Context, qx Tx, entry *model.MoodEntry) error
	FindAllByUser(ctx context.Context, qx Tx, userID string) ([]*model.MoodEntry, error)
	DeleteAllByUser(ctx context.Context, qx Tx, userID string) error
}

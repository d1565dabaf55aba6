package repository

import (
	"context"
	"time"

	"wellness-companion/internal/domain/model"
)

// -----------------------------
// Users
// -----------------------------

type UserRepository interface {
	Save(ctx context.Context, qx Tx, user *model.User) error
	FindByEmail(ctx context.Context, qx Tx, email string) (*model.User, error)
	FindByID(ctx context.Context, qx Tx, id string) (*model.User, error)
	FindAll(ctx context.Context, qx Tx) ([]*model.User, error)
	Delete(ctx context.Context, qx Tx, id string) error
	UpdateSettings(ctx context.Context, qx Tx, id string, settings model.Settings) error
	UpdateSecurity(ctx context.Context, qx Tx, id string, security model.Security) error
	UpdatePassword(ctx context.Context, qx Tx, email, passwordHash string, changedAt time.Time) error
}

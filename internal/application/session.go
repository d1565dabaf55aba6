// File: internal/application/session.go
package application

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"wellness-companion/internal/domain/model"
	"wellness-companion/internal/infra/redis"
)

// SessionManager owns the server-side half of a signed-in session. Sign-in
// creates a record keyed by the token's JTI; sign-out tears it down along
// with whatever chat session it was holding.
type SessionManager struct {
	store *redis.SessionStore
	log   *zerolog.Logger
}

func NewSessionManager(store *redis.SessionStore, logger *zerolog.Logger) *SessionManager {
	return &SessionManager{store: store, log: logger}
}

// Init records the signed-in user under the token id.
func (m *SessionManager) Init(ctx context.Context, jti string, user *model.User) error {
	rec := &redis.SessionRecord{
		UserID:    user.ID,
		Email:     user.Email,
		CreatedAt: time.Now(),
	}
	if err := m.store.Put(ctx, jti, rec); err != nil {
		return fmt.Errorf("init session: %w", err)
	}
	return nil
}

// Current returns the live session record and extends its lifetime.
func (m *SessionManager) Current(ctx context.Context, jti string) (*redis.SessionRecord, error) {
	rec, err := m.store.Get(ctx, jti)
	if err != nil {
		return nil, err
	}
	if err := m.store.Touch(ctx, jti); err != nil {
		m.log.Debug().Err(err).Msg("session touch failed")
	}
	return rec, nil
}

// AttachChat remembers which chat session this sign-in currently drives.
func (m *SessionManager) AttachChat(ctx context.Context, jti, chatID string) error {
	rec, err := m.store.Get(ctx, jti)
	if err != nil {
		return err
	}
	rec.ChatID = chatID
	return m.store.Put(ctx, jti, rec)
}

// Teardown removes the record. The attached chat session id is returned so
// the caller can close the in-memory engine too.
func (m *SessionManager) Teardown(ctx context.Context, jti string) (string, error) {
	rec, err := m.store.Get(ctx, jti)
	if err != nil {
		return "", err
	}
	if err := m.store.Delete(ctx, jti); err != nil {
		return "", fmt.Errorf("teardown session: %w", err)
	}
	return rec.ChatID, nil
}

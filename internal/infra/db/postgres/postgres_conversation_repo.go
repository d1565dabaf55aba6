// File: internal/infra/db/postgres/postgres_conversation_repo.go
package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"wellness-companion/internal/domain"
	"wellness-companion/internal/domain/model"
	"wellness-companion/internal/domain/ports/repository"
	"wellness-companion/internal/infra/redis"
	"wellness-companion/internal/infra/security"
)

// ConversationRepo persists conversations with the message log serialized as
// a single JSON document, optionally encrypted at rest. The history list is
// cached per user and invalidated on every write.
var _ repository.ConversationRepository = (*ConversationRepo)(nil)

type ConversationRepo struct {
	pool          *pgxpool.Pool
	cache         *redis.ConversationCache
	encryptionSvc *security.EncryptionService
	encrypt       bool
}

func NewConversationRepo(pool *pgxpool.Pool, cache *redis.ConversationCache, encryptionSvc *security.EncryptionService, encrypt bool) *ConversationRepo {
	return &ConversationRepo{pool: pool, cache: cache, encryptionSvc: encryptionSvc, encrypt: encrypt}
}

func (r *ConversationRepo) payload(messages []model.Message) (string, bool, error) {
	data, err := json.Marshal(messages)
	if err != nil {
		return "", false, fmt.Errorf("marshal messages: %w", err)
	}
	if r.encrypt && r.encryptionSvc != nil {
		enc, err := r.encryptionSvc.Encrypt(string(data))
		if err != nil {
			return "", false, fmt.Errorf("encrypt messages: %w", err)
		}
		return enc, true, nil
	}
	return string(data), false, nil
}

func (r *ConversationRepo) decode(payload string, encrypted bool) ([]model.Message, error) {
	if encrypted {
		plain, err := r.encryptionSvc.Decrypt(payload)
		if err != nil {
			return nil, fmt.Errorf("decrypt messages: %w", err)
		}
		payload = plain
	}
	var messages []model.Message
	if err := json.Unmarshal([]byte(payload), &messages); err != nil {
		return nil, fmt.Errorf("unmarshal messages: %w", err)
	}
	return messages, nil
}

func (r *ConversationRepo) Upsert(ctx context.Context, qx repository.Tx, conv *model.Conversation) error {
	payload, encFlag, err := r.payload(conv.Messages)
	if err != nil {
		return err
	}
	const q = `
INSERT INTO conversations (id, user_id, date, topic, messages, encrypted, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,NOW())
ON CONFLICT (id) DO UPDATE SET
  date = EXCLUDED.date,
  topic = EXCLUDED.topic,
  messages = EXCLUDED.messages,
  encrypted = EXCLUDED.encrypted,
  updated_at = NOW();`
	if _, err := pick(r.pool, qx).Exec(ctx, q, conv.ID, conv.UserID, conv.Date, conv.Topic, payload, encFlag); err != nil {
		return fmt.Errorf("upsert conversation: %w", err)
	}
	if r.cache != nil {
		_ = r.cache.Invalidate(ctx, conv.UserID)
	}
	return nil
}

func (r *ConversationRepo) FindByID(ctx context.Context, qx repository.Tx, id string) (*model.Conversation, error) {
	const q = `SELECT id, user_id, date, topic, messages, encrypted FROM conversations WHERE id=$1;`
	return r.scanOne(pick(r.pool, qx).QueryRow(ctx, q, id))
}

func (r *ConversationRepo) FindAllByUser(ctx context.Context, qx repository.Tx, userID string) ([]*model.Conversation, error) {
	if r.cache != nil {
		if cached, err := r.cache.Get(ctx, userID); err == nil && cached != nil {
			return cached, nil
		}
	}
	const q = `SELECT id, user_id, date, topic, messages, encrypted FROM conversations WHERE user_id=$1 ORDER BY date DESC;`
	rows, err := pick(r.pool, qx).Query(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("query conversations: %w", err)
	}
	defer rows.Close()

	var out []*model.Conversation
	for rows.Next() {
		conv, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, conv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if r.cache != nil {
		_ = r.cache.Store(ctx, userID, out)
	}
	return out, nil
}

func (r *ConversationRepo) Delete(ctx context.Context, qx repository.Tx, id string) error {
	// Read user_id first so the list cache can be invalidated.
	var userID string
	const qUser = `SELECT user_id FROM conversations WHERE id=$1;`
	if err := pick(r.pool, qx).QueryRow(ctx, qUser, id).Scan(&userID); err != nil {
		if err == pgx.ErrNoRows {
			return domain.ErrNotFound
		}
		return err
	}
	const q = `DELETE FROM conversations WHERE id=$1;`
	if _, err := pick(r.pool, qx).Exec(ctx, q, id); err != nil {
		return fmt.Errorf("delete conversation: %w", err)
	}
	if r.cache != nil {
		_ = r.cache.Invalidate(ctx, userID)
	}
	return nil
}

func (r *ConversationRepo) DeleteAllByUser(ctx context.Context, qx repository.Tx, userID string) error {
	const q = `DELETE FROM conversations WHERE user_id=$1;`
	if _, err := pick(r.pool, qx).Exec(ctx, q, userID); err != nil {
		return fmt.Errorf("delete conversations: %w", err)
	}
	if r.cache != nil {
		_ = r.cache.Invalidate(ctx, userID)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *ConversationRepo) scanOne(row pgx.Row) (*model.Conversation, error) {
	conv, err := r.scanRow(row)
	if err == pgx.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	return conv, err
}

func (r *ConversationRepo) scanRow(row rowScanner) (*model.Conversation, error) {
	var (
		conv    model.Conversation
		date    time.Time
		payload string
		encFlag bool
	)
	if err := row.Scan(&conv.ID, &conv.UserID, &date, &conv.Topic, &payload, &encFlag); err != nil {
		return nil, err
	}
	conv.Date = date
	messages, err := r.decode(payload, encFlag)
	if err != nil {
		return nil, err
	}
	conv.Messages = messages
	return &conv, nil
}

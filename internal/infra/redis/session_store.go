package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"wellness-companion/internal/domain"

	"github.com/go-redis/redis/v8"
)

// SessionRecord is the server-side state attached to a signed-in user.
type SessionRecord struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	ChatID    string    `json:"chat_id,omitempty"` // active chat session, if any
	CreatedAt time.Time `json:"created_at"`
}

// SessionStore keeps signed-in session records in Redis keyed by the JWT ID.
type SessionStore struct {
	client RedisClient
	ttl    time.Duration
}

func NewSessionStore(client RedisClient, ttl time.Duration) *SessionStore {
	return &SessionStore{client: client, ttl: ttl}
}

func (s *SessionStore) key(jti string) string {
	return "session:" + jti
}

func (s *SessionStore) Put(ctx context.Context, jti string, rec *SessionRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key(jti), data, s.ttl)
}

func (s *SessionStore) Get(ctx context.Context, jti string) (*SessionRecord, error) {
	data, err := s.client.Get(ctx, s.key(jti))
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, err
	}
	var rec SessionRecord
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Touch extends the session lifetime on activity.
func (s *SessionStore) Touch(ctx context.Context, jti string) error {
	return s.client.Expire(ctx, s.key(jti), s.ttl)
}

func (s *SessionStore) Delete(ctx context.Context, jti string) error {
	return s.client.Del(ctx, s.key(jti))
}

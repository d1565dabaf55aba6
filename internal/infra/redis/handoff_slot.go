package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"wellness-companion/internal/domain"
	"wellness-companion/internal/domain/model"
	"wellness-companion/internal/domain/ports/repository"

	"github.com/go-redis/redis/v8"
)

var _ repository.HandoffSlot = (*HandoffSlot)(nil)

// HandoffSlot parks a past conversation so the next opened chat session can
// pick it up. One payload per user; Take consumes it.
type HandoffSlot struct {
	client RedisClient
	ttl    time.Duration
}

func NewHandoffSlot(client RedisClient, ttl time.Duration) *HandoffSlot {
	return &HandoffSlot{client: client, ttl: ttl}
}

func (h *HandoffSlot) key(userID string) string {
	return "handoff:" + userID
}

func (h *HandoffSlot) Put(ctx context.Context, userID string, conv *model.Conversation) error {
	data, err := json.Marshal(conv)
	if err != nil {
		return err
	}
	return h.client.Set(ctx, h.key(userID), data, h.ttl)
}

func (h *HandoffSlot) Take(ctx context.Context, userID string) (*model.Conversation, error) {
	data, err := h.client.GetDel(ctx, h.key(userID))
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	var conv model.Conversation
	if err := json.Unmarshal([]byte(data), &conv); err != nil {
		return nil, err
	}
	return &conv, nil
}

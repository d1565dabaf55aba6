package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"wellness-companion/internal/domain/model"

	"github.com/go-redis/redis/v8"
)

// ConversationCache holds a user's conversation list so repeated history
// loads skip the database. Writers invalidate on every mutation.
type ConversationCache struct {
	client RedisClient
	ttl    time.Duration
}

func NewConversationCache(client RedisClient, ttl time.Duration) *ConversationCache {
	return &ConversationCache{client: client, ttl: ttl}
}

func (c *ConversationCache) key(userID string) string {
	return "conv_list:" + userID
}

func (c *ConversationCache) Store(ctx context.Context, userID string, convs []*model.Conversation) error {
	data, err := json.Marshal(convs)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(userID), data, c.ttl)
}

// Get returns (nil, nil) on a cache miss.
func (c *ConversationCache) Get(ctx context.Context, userID string) ([]*model.Conversation, error) {
	data, err := c.client.Get(ctx, c.key(userID))
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	var convs []*model.Conversation
	if err := json.Unmarshal([]byte(data), &convs); err != nil {
		return nil, err
	}
	return convs, nil
}

func (c *ConversationCache) Invalidate(ctx context.Context, userID string) error {
	return c.client.Del(ctx, c.key(userID))
}

package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/actuallystonmai/canteen-recommendation/internal/model"
)

const keyPrefix = "llm:completion:"

type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

// buildKey hashes the model name and the exact messages, so any change to
// the prompt or the candidates is a different entry.
func buildKey(modelName string, messages []model.Message) (string, error) {
	payload, err := json.Marshal(struct {
		Model    string          `json:"model"`
		Messages []model.Message `json:"messages"`
	}{modelName, messages})
	if err != nil {
		return "", fmt.Errorf("marshal cache key: %w", err)
	}
	sum := sha256.Sum256(payload)
	return keyPrefix + hex.EncodeToString(sum[:]), nil
}

// Get a cached completion. A miss is ("", false, nil).
func (c *Cache) Get(ctx context.Context, modelName string, messages []model.Message) (string, bool, error) {
	key, err := buildKey(modelName, messages)
	if err != nil {
		return "", false, err
	}

	val, err := c.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get completion from cache: %w", err)
	}
	return val, true, nil
}

// Store a completion
func (c *Cache) Set(ctx context.Context, modelName string, messages []model.Message, completion string) error {
	key, err := buildKey(modelName, messages)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, key, completion, c.ttl).Err(); err != nil {
		return fmt.Errorf("set completion in cache: %w", err)
	}
	return nil
}

// Ping connectivity
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

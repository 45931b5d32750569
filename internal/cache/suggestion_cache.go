package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// SuggestionCache memoises AI suggestions keyed by the request that produced them
type SuggestionCache interface {
	Get(ctx context.Context, kind, request string, out any) (bool, error)
	Set(ctx context.Context, kind, request string, value any) error
}

type suggestionCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSuggestionCache creates a new suggestion cache
func NewSuggestionCache(client *redis.Client, ttl time.Duration) SuggestionCache {
	return &suggestionCache{
		client: client,
		ttl:    ttl,
	}
}

func (c *suggestionCache) key(kind, request string) string {
	sum := sha256.Sum256([]byte(request))
	return fmt.Sprintf("ai:%s:%s", kind, hex.EncodeToString(sum[:]))
}

// Get decodes a cached value into out and reports whether one was found
func (c *suggestionCache) Get(ctx context.Context, kind, request string, out any) (bool, error) {
	data, err := c.client.Get(ctx, c.key(kind, request)).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return false, err
	}
	return true, nil
}

func (c *suggestionCache) Set(ctx context.Context, kind, request string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(kind, request), data, c.ttl).Err()
}

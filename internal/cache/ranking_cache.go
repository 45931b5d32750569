package cache

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"evalforge/internal/model"
)

// RankingCache handles Redis ZSET operations for ranking responses by total score
type RankingCache interface {
	UpdateScore(ctx context.Context, templateID, responseID string, score float64) error
	GetTop(ctx context.Context, templateID string, limit int) ([]model.RankEntry, error)
	GetRank(ctx context.Context, templateID, responseID string) (int64, error)
	Delete(ctx context.Context, templateID string) error
}

type rankingCache struct {
	client *redis.Client
}

// NewRankingCache creates a new ranking cache
func NewRankingCache(client *redis.Client) RankingCache {
	return &rankingCache{
		client: client,
	}
}

func (c *rankingCache) key(templateID string) string {
	return fmt.Sprintf("template:%s:ranking", templateID)
}

func (c *rankingCache) UpdateScore(ctx context.Context, templateID, responseID string, score float64) error {
	return c.client.ZAdd(ctx, c.key(templateID), redis.Z{
		Score:  score,
		Member: responseID,
	}).Err()
}

func (c *rankingCache) GetTop(ctx context.Context, templateID string, limit int) ([]model.RankEntry, error) {
	if limit <= 0 {
		return []model.RankEntry{}, nil
	}
	results, err := c.client.ZRevRangeWithScores(ctx, c.key(templateID), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]model.RankEntry, len(results))
	for i, z := range results {
		member, _ := z.Member.(string)
		entries[i] = model.RankEntry{
			ResponseID: member,
			Score:      z.Score,
			Rank:       i + 1,
		}
	}
	return entries, nil
}

// GetRank returns the 1-indexed rank, or -1 when the response is not ranked
func (c *rankingCache) GetRank(ctx context.Context, templateID, responseID string) (int64, error) {
	rank, err := c.client.ZRevRank(ctx, c.key(templateID), responseID).Result()
	if err == redis.Nil {
		return -1, nil
	}
	if err != nil {
		return -1, err
	}
	return rank + 1, nil
}

func (c *rankingCache) Delete(ctx context.Context, templateID string) error {
	return c.client.Del(ctx, c.key(templateID)).Err()
}

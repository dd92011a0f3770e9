package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"movies-battle/internal/domain"
)

const rankingKey = "ranking:snapshot"

// RankingCache keeps the last computed leaderboard in Redis so every instance
// serves the same snapshot until a score changes or the TTL runs out.
type RankingCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRankingCache(client *redis.Client, ttl time.Duration) *RankingCache {
	return &RankingCache{client: client, ttl: ttl}
}

func (c *RankingCache) Get(ctx context.Context) ([]domain.RankingEntry, bool, error) {
	raw, err := c.client.Get(ctx, rankingKey).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var entries []domain.RankingEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, false, fmt.Errorf("unmarshal ranking: %w", err)
	}
	return entries, true, nil
}

func (c *RankingCache) Set(ctx context.Context, entries []domain.RankingEntry) error {
	raw, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("marshal ranking: %w", err)
	}
	return c.client.Set(ctx, rankingKey, raw, c.ttl).Err()
}

func (c *RankingCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, rankingKey).Err()
}

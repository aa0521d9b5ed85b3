package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	redisv9 "github.com/redis/go-redis/v9"

	"accel-catalog/internal/model"
)

// ContentCache keeps per-deck text-content indexes in Redis so repeated
// content reads and searches do not re-read the extraction output.
type ContentCache struct {
	client *redisv9.Client
	ttl    time.Duration
}

func NewContentCache(client *redisv9.Client, ttl time.Duration) *ContentCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &ContentCache{client: client, ttl: ttl}
}

func (c *ContentCache) GetContent(ctx context.Context, folder string) (*model.ContentIndex, bool, error) {
	raw, err := c.client.Get(ctx, c.key(folder)).Result()
	if err == redisv9.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get content failed: %w", err)
	}

	idx := &model.ContentIndex{}
	if err := json.Unmarshal([]byte(raw), idx); err != nil {
		return nil, false, fmt.Errorf("unmarshal cached content failed: %w", err)
	}
	return idx, true, nil
}

func (c *ContentCache) SetContent(ctx context.Context, folder string, idx *model.ContentIndex) error {
	payload, err := json.Marshal(idx)
	if err != nil {
		return fmt.Errorf("marshal content cache failed: %w", err)
	}
	if err := c.client.Set(ctx, c.key(folder), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set content failed: %w", err)
	}
	return nil
}

func (c *ContentCache) DeleteContent(ctx context.Context, folder string) error {
	if err := c.client.Del(ctx, c.key(folder)).Err(); err != nil {
		return fmt.Errorf("redis delete content failed: %w", err)
	}
	return nil
}

func (c *ContentCache) key(folder string) string {
	return "catalog:slides:" + folder
}

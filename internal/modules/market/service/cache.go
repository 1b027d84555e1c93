package service

import (
	"context"
	"fmt"
	"time"

	"scan_bot/internal/models"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// Cache keeps recent candle frames in redis so repeated scans of the same
// preset within TTL do not hit the provider again.
type Cache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewCache(client *redis.Client, prefix string, ttl time.Duration) *Cache {
	if prefix == "" {
		prefix = "scanbot"
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Cache{client: client, prefix: prefix, ttl: ttl}
}

func (c *Cache) key(symbol, interval, period string) string {
	return fmt.Sprintf("%s:candles:%s:%s:%s", c.prefix, symbol, interval, period)
}

// Get reports ok=false on a miss.
func (c *Cache) Get(ctx context.Context, symbol, interval, period string) ([]models.Candle, bool, error) {
	data, err := c.client.Get(ctx, c.key(symbol, interval, period)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, errors.Wrap(err, "redis get")
	}

	var out []models.Candle
	if err := sonic.Unmarshal(data, &out); err != nil {
		return nil, false, errors.Wrap(err, "decode cached candles")
	}
	return out, true, nil
}

func (c *Cache) Set(ctx context.Context, symbol, interval, period string, candles []models.Candle) error {
	data, err := sonic.Marshal(candles)
	if err != nil {
		return errors.Wrap(err, "encode candles")
	}
	if err := c.client.Set(ctx, c.key(symbol, interval, period), data, c.ttl).Err(); err != nil {
		return errors.Wrap(err, "redis set")
	}
	return nil
}

func (c *Cache) Close() error {
	return c.client.Close()
}

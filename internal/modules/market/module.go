package market

import (
	"context"

	"scan_bot/internal/modules/config"
	"scan_bot/internal/modules/market/service"
	"scan_bot/pkg/logger"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

// newCache returns nil when redis is not configured; the client then always hits the provider.
func newCache(lc fx.Lifecycle, cfg *config.Config) *service.Cache {
	if cfg.Redis.Addr == "" {
		return nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	cache := service.NewCache(rdb, cfg.Redis.Prefix, cfg.Redis.TTL)

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := rdb.Ping(ctx).Err(); err != nil {
				// cache is best effort
				logger.Warn("redis %s unreachable, candles will not be cached: %v", cfg.Redis.Addr, err)
			}
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return cache.Close()
		},
	})
	return cache
}

func Module() fx.Option {
	return fx.Module("market",
		fx.Provide(
			newCache,
			func(cfg *config.Config, cache *service.Cache) *service.Client {
				return service.NewClient(cfg.Market, cache)
			},
		),
	)
}

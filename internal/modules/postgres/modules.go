package postgres

import (
	"context"
	"fmt"

	"scan_bot/internal/modules/config"
	"scan_bot/pkg/db"
	"scan_bot/pkg/logger"

	"go.uber.org/fx"
)

// Module provides *db.PgTxManager, or nil when db_dsn is empty.
func Module() fx.Option {
	return fx.Module("postgres",
		fx.Provide(
			func(ctx context.Context, lc fx.Lifecycle, cfg *config.Config) (*db.PgTxManager, error) {
				if cfg.DB == "" {
					logger.Info("db_dsn is empty, running without postgres")
					return nil, nil
				}

				poolMaster, err := db.NewPool(ctx, db.PoolConfig{
					DSN:      cfg.DB,
					MaxConns: int32(cfg.Scanner.MaxInFlight) + 2,
				})
				if err != nil {
					return nil, fmt.Errorf("failed to create poolMaster: %w", err)
				}

				err = poolMaster.Ping(ctx)
				if err != nil {
					poolMaster.Close()
					return nil, err
				}

				m := db.NewPgTxManager(poolMaster)
				lc.Append(fx.Hook{
					OnStop: func(context.Context) error {
						m.Close()
						return nil
					},
				})
				return m, nil
			},
		),
	)
}

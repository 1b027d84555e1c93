package universe

import (
	"scan_bot/internal/modules/config"
	"scan_bot/internal/modules/universe/service"
	"scan_bot/internal/scanner"
	"scan_bot/pkg/db"

	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module("universe",
		fx.Provide(
			// tx is nil when no database is configured
			func(cfg *config.Config, tx *db.PgTxManager) *service.Universe {
				var store service.Store
				if tx != nil {
					store = service.NewPgStore(tx, cfg.Market.UniverseTable)
				}
				return service.New(store, cfg.Market.UniverseFallback)
			},
			func(u *service.Universe) scanner.Universe {
				return u
			},
		),
	)
}

package analyzer

import (
	"scan_bot/internal/modules/analyzer/service"
	"scan_bot/internal/modules/config"
	market "scan_bot/internal/modules/market/service"
	"scan_bot/internal/scanner"

	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module("analyzer",
		fx.Provide(
			func(cfg *config.Config, c *market.Client) *service.Service {
				return service.New(c, cfg.Scanner.MinCandles).WithSuffix(cfg.Market.SymbolSuffix)
			},
			func(s *service.Service) scanner.Analyzer {
				return s
			},
		),
	)
}

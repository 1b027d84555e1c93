package telegram

import (
	"context"
	"net/http"

	"scan_bot/internal/modules/config"
	"scan_bot/internal/modules/telegram_bot/service"
	"scan_bot/pkg/logger"

	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module("telegram",
		fx.Provide(
			service.NewTelegram, // func(*config.Config, *scanner.Service, *analyzer.Service) (*service.Telegram, error)
		),
		fx.Invoke(
			func(lc fx.Lifecycle, cfg *config.Config, t *service.Telegram, mux *http.ServeMux) {
				// webhook updates share the health listener
				if cfg.Telegram.Mode == "webhook" {
					mux.Handle(cfg.Telegram.WebhookPath, t.WebhookHandler())
					logger.Info("telegram webhook handler mounted at %s", cfg.Telegram.WebhookPath)
				}

				lc.Append(fx.Hook{
					OnStart: func(ctx context.Context) error {
						return t.Start(ctx)
					},
					OnStop: func(ctx context.Context) error {
						t.Stop(ctx)
						return nil
					},
				})
			},
		),
	)
}

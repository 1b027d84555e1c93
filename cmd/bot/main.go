package main

import (
	"context"
	"log"

	"scan_bot/internal/modules/analyzer"
	"scan_bot/internal/modules/config"
	"scan_bot/internal/modules/health"
	"scan_bot/internal/modules/market"
	"scan_bot/internal/modules/postgres"
	telegram "scan_bot/internal/modules/telegram_bot"
	"scan_bot/internal/modules/universe"
	"scan_bot/internal/scanner"
	"scan_bot/pkg/logger"
	"scan_bot/pkg/tracing"

	"go.uber.org/fx"
)

func initTracing(lc fx.Lifecycle, cfg *config.Config) error {
	if !cfg.Tracing.Enabled {
		return nil
	}
	tracing.SetServiceName(cfg.Service.Name)
	_, closeTracer, err := tracing.InitTracer(tracing.Config{Host: cfg.Tracing.Host, Port: cfg.Tracing.Port})
	if err != nil {
		return err
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			closeTracer()
			return nil
		},
	})
	logger.Info("tracing enabled, agent %s:%d", cfg.Tracing.Host, cfg.Tracing.Port)
	return nil
}

func main() {
	app := fx.New(
		fx.Provide(
			func() context.Context {
				return context.Background()
			},
		),
		config.Module(),
		fx.Invoke(initTracing),
		postgres.Module(),
		market.Module(),
		universe.Module(),
		analyzer.Module(),
		scanner.Module(),
		health.Module(),
		telegram.Module(),
	)
	if err := app.Err(); err != nil {
		log.Fatal(err)
	}
	app.Run()
}

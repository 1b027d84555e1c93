package scanner

import (
	"scan_bot/internal/modules/config"
	"scan_bot/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module("scanner",
		fx.Provide(
			func() *metrics.Recorder {
				return metrics.New(prometheus.DefaultRegisterer)
			},
			func(cfg *config.Config) *Pool {
				return NewPool(cfg.Scanner.MaxInFlight, cfg.Scanner.TaskTimeout)
			},
			func(a Analyzer, p *Pool, rec *metrics.Recorder) *Scanner {
				return New(a, p, rec)
			},
			func(cfg *config.Config, sc *Scanner, u Universe) *Service {
				return NewService(sc, u, cfg.Scanner.TopN)
			},
		),
	)
}

package service

import (
	"context"
	"fmt"

	"scan_bot/internal/models"
	universe "scan_bot/internal/modules/universe/service"
)

// CandleSource is the market data the analyzer reads.
type CandleSource interface {
	Candles(ctx context.Context, symbol, interval, period string) ([]models.Candle, error)
}

// Frame is an analysis together with the data it was computed from.
type Frame struct {
	Summary    models.SignalSummary
	Candles    []models.Candle
	Indicators Indicators
	Patterns   []Pattern
}

type Service struct {
	source     CandleSource
	minCandles int
	suffix     string
}

func New(source CandleSource, minCandles int) *Service {
	if minCandles < 2 {
		minCandles = 2
	}
	return &Service{source: source, minCandles: minCandles, suffix: universe.DefaultSuffix}
}

// WithSuffix sets the exchange suffix appended to bare codes.
func (s *Service) WithSuffix(suffix string) *Service {
	s.suffix = suffix
	return s
}

// Analyze is safe for concurrent use; it keeps no state between calls.
func (s *Service) Analyze(ctx context.Context, ticker, interval, period string) (models.SignalSummary, error) {
	f, err := s.Inspect(ctx, ticker, interval, period)
	if err != nil {
		return models.SignalSummary{}, err
	}
	return f.Summary, nil
}

// Inspect fetches candles for ticker (a BIST code or a full symbol) and scores them.
func (s *Service) Inspect(ctx context.Context, ticker, interval, period string) (Frame, error) {
	symbol := universe.NormalizeSymbol(ticker, s.suffix)

	candles, err := s.source.Candles(ctx, symbol, interval, period)
	if err != nil {
		return Frame{}, fmt.Errorf("candles %s: %w", symbol, err)
	}
	if len(candles) < s.minCandles {
		return Frame{}, fmt.Errorf("%s has %d candles, need %d: %w", symbol, len(candles), s.minCandles, models.ErrNoData)
	}

	ind := computeIndicators(candles)
	patterns := detectPatterns(candles, ind)

	return Frame{
		Summary:    buildSummary(ticker, candles, ind, patterns),
		Candles:    candles,
		Indicators: ind,
		Patterns:   patterns,
	}, nil
}

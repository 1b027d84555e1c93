package scanner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"scan_bot/internal/models"
)

// ErrNoResults means a request produced nothing to rank or show.
var ErrNoResults = errors.New("no results")

// Universe supplies the ticker list scanned by top requests.
type Universe interface {
	Tickers(ctx context.Context) ([]string, error)
}

// Observer is told about every finished top request.
type Observer interface {
	ScanFinished(at time.Time, tickers, results int)
}

// TopResult is what a top request hands to the front-end.
type TopResult struct {
	Title   string
	Presets []models.Preset
	Top     []models.RankedEntry
	Cutoff  float64
	Skipped []string
	Scanned int
	Elapsed time.Duration
}

// Service answers front-end requests on top of a Scanner.
type Service struct {
	scanner  *Scanner
	universe Universe
	topN     int
	observer Observer
}

func NewService(sc *Scanner, u Universe, topN int) *Service {
	if topN <= 0 {
		topN = 10
	}
	return &Service{scanner: sc, universe: u, topN: topN}
}

// WithObserver sets the observer notified after each top request.
func (s *Service) WithObserver(o Observer) *Service {
	s.observer = o
	return s
}

func (s *Service) TopN() int { return s.topN }

// Analyze runs a single ticker through the scan path and returns its normalized summary.
func (s *Service) Analyze(ctx context.Context, ticker, interval, period string) (models.SignalSummary, error) {
	rep := s.scanner.Scan(ctx, []string{ticker}, interval, period, 0)
	if len(rep.Results) == 1 {
		return Normalize(rep.Results[0].Summary, interval), nil
	}
	if len(rep.Skipped) == 1 {
		sk := rep.Skipped[0]
		return models.SignalSummary{}, fmt.Errorf("analyze %s %s/%s: %s: %w", ticker, interval, period, sk.Reason, sk.Err)
	}
	return models.SignalSummary{}, fmt.Errorf("analyze %s: %w", ticker, ErrNoResults)
}

// Top scans the universe once for (interval, period) and ranks the results.
// limit <= 0 scans the whole universe.
func (s *Service) Top(ctx context.Context, interval, period string, limit int) (TopResult, error) {
	tickers, err := s.universe.Tickers(ctx)
	if err != nil {
		return TopResult{}, fmt.Errorf("load universe: %w", err)
	}

	rep := s.scanner.Scan(ctx, tickers, interval, period, limit)
	top, cutoff := Rank(NormalizeResults(rep.Results, interval), s.topN)

	res := TopResult{
		Title:   fmt.Sprintf("%s / %s", interval, period),
		Presets: []models.Preset{{Interval: interval, Period: period}},
		Top:     top,
		Cutoff:  cutoff,
		Skipped: rep.SkippedTickers(),
		Scanned: rep.Dispatched,
		Elapsed: rep.Elapsed,
	}
	s.notify(res)

	if len(top) == 0 {
		return res, fmt.Errorf("top %s/%s: %w", interval, period, ErrNoResults)
	}
	return res, nil
}

// TopHorizon aggregates every preset of a horizon and ranks by mean score.
func (s *Service) TopHorizon(ctx context.Context, horizon models.Horizon) (TopResult, error) {
	hp, ok := models.Presets[horizon]
	if !ok {
		return TopResult{}, fmt.Errorf("horizon %q: %w", horizon, models.ErrUnknownHorizon)
	}

	tickers, err := s.universe.Tickers(ctx)
	if err != nil {
		return TopResult{}, fmt.Errorf("load universe: %w", err)
	}

	started := time.Now()
	agg, err := s.scanner.Aggregate(ctx, tickers, hp.Presets)
	if err != nil {
		return TopResult{}, fmt.Errorf("aggregate %s: %w", horizon, err)
	}
	top, cutoff := Rank(agg.Entries, s.topN)

	scanned := 0
	if len(agg.Scans) > 0 {
		scanned = agg.Scans[0].Dispatched
	}
	res := TopResult{
		Title:   hp.Name,
		Presets: hp.Presets,
		Top:     top,
		Cutoff:  cutoff,
		Skipped: agg.Skipped(),
		Scanned: scanned,
		Elapsed: time.Since(started),
	}
	s.notify(res)

	if len(top) == 0 {
		return res, fmt.Errorf("top %s: %w", horizon, ErrNoResults)
	}
	return res, nil
}

func (s *Service) notify(res TopResult) {
	if s.observer == nil {
		return
	}
	s.observer.ScanFinished(time.Now(), res.Scanned, len(res.Top))
}

package scanner

import (
	"context"
	"slices"

	"scan_bot/internal/models"
	"scan_bot/pkg/logger"
	"scan_bot/pkg/tracing"

	"github.com/opentracing/opentracing-go"
)

// Aggregation folds scan results from several presets. Merge returns a new
// value and leaves the receiver untouched, so a partially built aggregation can
// be kept or discarded freely.
type Aggregation struct {
	entries map[string]models.AggregationEntry
	order   []string
}

func NewAggregation() Aggregation {
	return Aggregation{entries: map[string]models.AggregationEntry{}}
}

func (a Aggregation) Len() int { return len(a.order) }

func (a Aggregation) Entry(ticker string) (models.AggregationEntry, bool) {
	e, ok := a.entries[ticker]
	if !ok {
		return models.AggregationEntry{}, false
	}
	e.Scores = slices.Clone(e.Scores)
	return e, true
}

// Merge adds one preset's results. Every ticker gains one score; its display
// summary and interval are replaced by this preset's. A ticker repeated within
// results counts once, last occurrence wins.
func (a Aggregation) Merge(interval string, results []models.ScanResult) Aggregation {
	next := Aggregation{
		entries: make(map[string]models.AggregationEntry, len(a.entries)+len(results)),
		order:   slices.Clone(a.order),
	}
	for k, e := range a.entries {
		e.Scores = slices.Clone(e.Scores)
		next.entries[k] = e
	}

	merged := make(map[string]struct{}, len(results))
	for _, r := range results {
		e, exists := next.entries[r.Ticker]
		if !exists {
			next.order = append(next.order, r.Ticker)
		}
		if _, again := merged[r.Ticker]; again {
			e.Scores[len(e.Scores)-1] = r.Summary.Score
		} else {
			e.Scores = append(e.Scores, r.Summary.Score)
			merged[r.Ticker] = struct{}{}
		}
		e.Latest = r.Summary
		e.Interval = interval
		next.entries[r.Ticker] = e
	}

	return next
}

// Finalize scores each ticker by the mean of its per-preset scores and
// normalizes its latest summary against the interval it came from.
func (a Aggregation) Finalize() []models.RankedEntry {
	out := make([]models.RankedEntry, 0, len(a.order))
	for _, ticker := range a.order {
		e := a.entries[ticker]
		out = append(out, models.RankedEntry{
			Ticker:  ticker,
			Score:   e.Mean(),
			Summary: Normalize(e.Latest, e.Interval),
		})
	}
	return out
}

type AggregateReport struct {
	Entries []models.RankedEntry
	Scans   []ScanReport
}

// Skipped lists tickers that did not succeed in any preset.
func (r AggregateReport) Skipped() []string {
	ok := make(map[string]struct{}, len(r.Entries))
	for _, e := range r.Entries {
		ok[e.Ticker] = struct{}{}
	}

	var out []string
	seen := map[string]struct{}{}
	for _, s := range r.Scans {
		for _, t := range s.SkippedTickers() {
			if _, success := ok[t]; success {
				continue
			}
			if _, dup := seen[t]; dup {
				continue
			}
			seen[t] = struct{}{}
			out = append(out, t)
		}
	}
	return out
}

// Aggregate scans tickers once per preset, in order, and folds the results.
// A cancelled ctx stops before the next preset and returns ctx.Err().
func (s *Scanner) Aggregate(ctx context.Context, tickers []string, presets []models.Preset) (AggregateReport, error) {
	span, ctx := tracing.StartSpan(ctx, "scanner.aggregate", opentracing.Tags{"presets": len(presets)})
	defer span.Finish()

	acc := NewAggregation()
	scans := make([]ScanReport, 0, len(presets))
	for _, p := range presets {
		if err := ctx.Err(); err != nil {
			tracing.Fail(span, err)
			return AggregateReport{}, err
		}
		rep := s.Scan(ctx, tickers, p.Interval, p.Period, 0)
		acc = acc.Merge(p.Interval, rep.Results)
		scans = append(scans, rep)
	}

	logger.Info("aggregated %d presets into %d tickers", len(presets), acc.Len())
	return AggregateReport{Entries: acc.Finalize(), Scans: scans}, nil
}

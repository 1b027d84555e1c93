package scanner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"scan_bot/internal/models"
	"scan_bot/pkg/logger"
	"scan_bot/pkg/tracing"

	"github.com/opentracing/opentracing-go"
)

// Analyzer produces a SignalSummary for one (ticker, interval, period).
// Implementations must be safe for concurrent use. models.ErrNoData (or an
// empty summary) means the provider had nothing for the ticker.
type Analyzer interface {
	Analyze(ctx context.Context, ticker, interval, period string) (models.SignalSummary, error)
}

// Recorder receives per-analysis and per-scan measurements.
type Recorder interface {
	ObserveAnalysis(interval, outcome string, d time.Duration)
	ObserveScan(interval string, dispatched, succeeded int)
}

type nopRecorder struct{}

func (nopRecorder) ObserveAnalysis(string, string, time.Duration) {}
func (nopRecorder) ObserveScan(string, int, int)                  {}

const outcomeOK = "ok"

// ScanReport is the outcome of one scan. Results and Skipped are disjoint,
// together cover every dispatched ticker and keep input order.
type ScanReport struct {
	Interval   string
	Period     string
	Dispatched int
	Results    []models.ScanResult
	Skipped    []models.Skip
	Elapsed    time.Duration
}

func (r ScanReport) SkippedTickers() []string {
	out := make([]string, 0, len(r.Skipped))
	for _, s := range r.Skipped {
		out = append(out, s.Ticker)
	}
	return out
}

// SkipCounts groups skips by reason; used for logging.
func (r ScanReport) SkipCounts() map[models.SkipReason]int {
	out := make(map[models.SkipReason]int, 3)
	for _, s := range r.Skipped {
		out[s.Reason]++
	}
	return out
}

// Scanner fans an Analyzer out over a ticker list through a Pool.
type Scanner struct {
	analyzer Analyzer
	pool     *Pool
	rec      Recorder
}

func New(analyzer Analyzer, pool *Pool, rec Recorder) *Scanner {
	if rec == nil {
		rec = nopRecorder{}
	}
	return &Scanner{
		analyzer: analyzer,
		pool:     pool,
		rec:      rec,
	}
}

type outcome struct {
	summary models.SignalSummary
	skip    *models.Skip
}

// Scan analyzes tickers (deduplicated, then truncated to limit when limit > 0).
// Failures are recorded as skips and never stop the remaining tickers; there are no retries.
func (s *Scanner) Scan(ctx context.Context, tickers []string, interval, period string, limit int) ScanReport {
	started := time.Now()
	tickers = prepareTickers(tickers, limit)

	span, ctx := tracing.StartSpan(ctx, "scanner.scan", opentracing.Tags{
		"interval": interval,
		"period":   period,
		"tickers":  len(tickers),
	})
	defer span.Finish()

	// each worker owns exactly one slot, merged after Run returns
	outcomes := make([]outcome, len(tickers))
	s.pool.Run(ctx, len(tickers), func(ctx context.Context, i int) {
		outcomes[i] = s.analyzeOne(ctx, tickers[i], interval, period)
	})

	report := ScanReport{
		Interval:   interval,
		Period:     period,
		Dispatched: len(tickers),
		Results:    make([]models.ScanResult, 0, len(tickers)),
	}
	for i, o := range outcomes {
		if o.skip != nil {
			report.Skipped = append(report.Skipped, *o.skip)
			continue
		}
		report.Results = append(report.Results, models.ScanResult{Ticker: tickers[i], Summary: o.summary})
	}
	report.Elapsed = time.Since(started)

	s.rec.ObserveScan(interval, report.Dispatched, len(report.Results))
	span.SetTag("results", len(report.Results))
	span.SetTag("skipped", len(report.Skipped))

	counts := report.SkipCounts()
	logger.Info("scan %s/%s done in %s: %d ok, %d skipped (no_data=%d error=%d timeout=%d)",
		interval, period, report.Elapsed.Round(time.Millisecond),
		len(report.Results), len(report.Skipped),
		counts[models.SkipNoData], counts[models.SkipAnalyzerError], counts[models.SkipTimeout],
	)

	return report
}

type analysis struct {
	summary models.SignalSummary
	err     error
}

// analyzeOne runs the analyzer in its own goroutine so that an implementation
// ignoring ctx still releases the pool slot once the deadline passes.
func (s *Scanner) analyzeOne(ctx context.Context, ticker, interval, period string) outcome {
	span, ctx := tracing.StartSpan(ctx, "scanner.analyze", opentracing.Tags{"ticker": ticker})
	defer span.Finish()

	started := time.Now()
	done := make(chan analysis, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- analysis{err: fmt.Errorf("analyzer panic: %v", r)}
			}
		}()
		summary, err := s.analyzer.Analyze(ctx, ticker, interval, period)
		done <- analysis{summary: summary, err: err}
	}()

	var res analysis
	select {
	case res = <-done:
	case <-ctx.Done():
		res = analysis{err: ctx.Err()}
	}

	o := classify(ticker, res)
	reason := outcomeOK
	if o.skip != nil {
		reason = string(o.skip.Reason)
		tracing.Fail(span, o.skip.Err)
		logger.Debug("skip %s %s/%s: %s: %v", ticker, interval, period, o.skip.Reason, o.skip.Err)
	}
	s.rec.ObserveAnalysis(interval, reason, time.Since(started))

	return o
}

func classify(ticker string, res analysis) outcome {
	switch {
	case res.err == nil && !res.summary.Empty():
		if res.summary.Ticker == "" {
			res.summary.Ticker = ticker
		}
		return outcome{summary: res.summary}
	case res.err == nil, errors.Is(res.err, models.ErrNoData):
		err := res.err
		if err == nil {
			err = models.ErrNoData
		}
		return outcome{skip: &models.Skip{Ticker: ticker, Reason: models.SkipNoData, Err: err}}
	case errors.Is(res.err, context.DeadlineExceeded):
		return outcome{skip: &models.Skip{Ticker: ticker, Reason: models.SkipTimeout, Err: res.err}}
	default:
		return outcome{skip: &models.Skip{Ticker: ticker, Reason: models.SkipAnalyzerError, Err: res.err}}
	}
}

func prepareTickers(tickers []string, limit int) []string {
	seen := make(map[string]struct{}, len(tickers))
	out := make([]string, 0, len(tickers))
	for _, t := range tickers {
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

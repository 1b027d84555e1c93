package scanner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"scan_bot/internal/models"
	"scan_bot/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	logger.UseNop()
	os.Exit(m.Run())
}

type analyzeFunc func(ctx context.Context, ticker, interval, period string) (models.SignalSummary, error)

func (f analyzeFunc) Analyze(ctx context.Context, ticker, interval, period string) (models.SignalSummary, error) {
	return f(ctx, ticker, interval, period)
}

func summary(ticker string, score float64) models.SignalSummary {
	return models.SignalSummary{
		Ticker:   ticker,
		Price:    100,
		ATR:      2,
		BiasText: "AL",
		Score:    score,
	}
}

type recorderSpy struct {
	mu       sync.Mutex
	outcomes map[string]int
	scans    int
}

func (r *recorderSpy) ObserveAnalysis(_ string, outcome string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.outcomes == nil {
		r.outcomes = map[string]int{}
	}
	r.outcomes[outcome]++
}

func (r *recorderSpy) ObserveScan(string, int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scans++
}

func tickers(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("T%02d", i)
	}
	return out
}

func TestScanAllSucceed(t *testing.T) {
	sc := New(analyzeFunc(func(_ context.Context, ticker, _, _ string) (models.SignalSummary, error) {
		return summary(ticker, 50), nil
	}), NewPool(4, time.Second), nil)

	rep := sc.Scan(context.Background(), tickers(10), "60m", "60d", 0)

	require.Len(t, rep.Results, 10)
	assert.Empty(t, rep.Skipped)
	assert.Equal(t, 10, rep.Dispatched)
	for i, r := range rep.Results {
		assert.Equal(t, fmt.Sprintf("T%02d", i), r.Ticker, "results keep input order")
	}
}

func TestScanAllFail(t *testing.T) {
	rec := &recorderSpy{}
	sc := New(analyzeFunc(func(context.Context, string, string, string) (models.SignalSummary, error) {
		return models.SignalSummary{}, errors.New("boom")
	}), NewPool(3, time.Second), rec)

	in := tickers(7)
	rep := sc.Scan(context.Background(), in, "60m", "60d", 0)

	assert.Empty(t, rep.Results)
	assert.Equal(t, in, rep.SkippedTickers())
	for _, s := range rep.Skipped {
		assert.Equal(t, models.SkipAnalyzerError, s.Reason)
		assert.EqualError(t, s.Err, "boom")
	}
	assert.Equal(t, 7, rec.outcomes[string(models.SkipAnalyzerError)])
	assert.Equal(t, 1, rec.scans)
}

func TestScanPartialFailure(t *testing.T) {
	failing := map[string]error{
		"T01": models.ErrNoData,
		"T04": errors.New("bad frame"),
		"T07": fmt.Errorf("fetch: %w", models.ErrNoData),
	}
	sc := New(analyzeFunc(func(_ context.Context, ticker, _, _ string) (models.SignalSummary, error) {
		if err, ok := failing[ticker]; ok {
			return models.SignalSummary{}, err
		}
		if ticker == "T09" {
			return models.SignalSummary{Ticker: ticker}, nil
		}
		return summary(ticker, 40), nil
	}), NewPool(2, time.Second), nil)

	in := tickers(10)
	rep := sc.Scan(context.Background(), in, "60m", "60d", 0)

	assert.Len(t, rep.Results, 6)
	assert.Equal(t, []string{"T01", "T04", "T07", "T09"}, rep.SkippedTickers())

	reasons := map[string]models.SkipReason{}
	for _, s := range rep.Skipped {
		reasons[s.Ticker] = s.Reason
	}
	assert.Equal(t, models.SkipNoData, reasons["T01"])
	assert.Equal(t, models.SkipAnalyzerError, reasons["T04"])
	assert.Equal(t, models.SkipNoData, reasons["T07"])
	assert.Equal(t, models.SkipNoData, reasons["T09"])

	// results and skips partition the input
	seen := map[string]int{}
	for _, r := range rep.Results {
		seen[r.Ticker]++
	}
	for _, s := range rep.Skipped {
		seen[s.Ticker]++
	}
	assert.Len(t, seen, len(in))
	for tk, n := range seen {
		assert.Equal(t, 1, n, tk)
	}
}

func TestScanLimit(t *testing.T) {
	var calls atomic.Int32
	sc := New(analyzeFunc(func(_ context.Context, ticker, _, _ string) (models.SignalSummary, error) {
		calls.Add(1)
		return summary(ticker, 10), nil
	}), NewPool(4, time.Second), nil)

	tests := []struct {
		name      string
		in        []string
		limit     int
		wantCalls int32
		want      []string
	}{
		{name: "truncate", in: tickers(5), limit: 3, wantCalls: 3, want: []string{"T00", "T01", "T02"}},
		{name: "zero means all", in: tickers(4), limit: 0, wantCalls: 4, want: tickers(4)},
		{name: "negative means all", in: tickers(2), limit: -1, wantCalls: 2, want: tickers(2)},
		{name: "limit above size", in: tickers(2), limit: 10, wantCalls: 2, want: tickers(2)},
		{name: "duplicates collapse", in: []string{"A", "B", "A", "C"}, limit: 0, wantCalls: 3, want: []string{"A", "B", "C"}},
		{name: "empty input", in: nil, limit: 5, wantCalls: 0, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls.Store(0)
			rep := sc.Scan(context.Background(), tt.in, "60m", "60d", tt.limit)

			assert.Equal(t, tt.wantCalls, calls.Load())
			var got []string
			for _, r := range rep.Results {
				got = append(got, r.Ticker)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestScanTimeoutFreesSlot(t *testing.T) {
	release := make(chan struct{})
	t.Cleanup(func() { close(release) })

	sc := New(analyzeFunc(func(_ context.Context, ticker, _, _ string) (models.SignalSummary, error) {
		if ticker == "SLOW" {
			// ignores ctx on purpose
			<-release
		}
		return summary(ticker, 70), nil
	}), NewPool(1, 30*time.Millisecond), nil)

	started := time.Now()
	rep := sc.Scan(context.Background(), []string{"SLOW", "FAST1", "FAST2"}, "60m", "60d", 0)

	assert.Less(t, time.Since(started), 2*time.Second)
	require.Len(t, rep.Skipped, 1)
	assert.Equal(t, "SLOW", rep.Skipped[0].Ticker)
	assert.Equal(t, models.SkipTimeout, rep.Skipped[0].Reason)
	assert.ErrorIs(t, rep.Skipped[0].Err, context.DeadlineExceeded)
	assert.Len(t, rep.Results, 2)
}

func TestScanTimeoutFromAnalyzerError(t *testing.T) {
	sc := New(analyzeFunc(func(ctx context.Context, _, _, _ string) (models.SignalSummary, error) {
		<-ctx.Done()
		return models.SignalSummary{}, fmt.Errorf("fetch: %w", ctx.Err())
	}), NewPool(2, 10*time.Millisecond), nil)

	rep := sc.Scan(context.Background(), []string{"A", "B"}, "60m", "60d", 0)

	require.Len(t, rep.Skipped, 2)
	for _, s := range rep.Skipped {
		assert.Equal(t, models.SkipTimeout, s.Reason)
	}
}

func TestScanRecoversPanic(t *testing.T) {
	sc := New(analyzeFunc(func(_ context.Context, ticker, _, _ string) (models.SignalSummary, error) {
		if ticker == "B" {
			panic("index out of range")
		}
		return summary(ticker, 20), nil
	}), NewPool(2, time.Second), nil)

	rep := sc.Scan(context.Background(), []string{"A", "B", "C"}, "60m", "60d", 0)

	assert.Len(t, rep.Results, 2)
	require.Len(t, rep.Skipped, 1)
	assert.Equal(t, models.SkipAnalyzerError, rep.Skipped[0].Reason)
	assert.Contains(t, rep.Skipped[0].Err.Error(), "index out of range")
}

func TestScanFillsMissingTicker(t *testing.T) {
	sc := New(analyzeFunc(func(context.Context, string, string, string) (models.SignalSummary, error) {
		return models.SignalSummary{Price: 5, Score: 1}, nil
	}), NewPool(1, time.Second), nil)

	rep := sc.Scan(context.Background(), []string{"ASELS"}, "1d", "180d", 0)

	require.Len(t, rep.Results, 1)
	assert.Equal(t, "ASELS", rep.Results[0].Summary.Ticker)
}

func TestPoolBoundsConcurrency(t *testing.T) {
	var inFlight, peak atomic.Int32
	sc := New(analyzeFunc(func(_ context.Context, ticker, _, _ string) (models.SignalSummary, error) {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		inFlight.Add(-1)
		return summary(ticker, 1), nil
	}), NewPool(3, time.Second), nil)

	rep := sc.Scan(context.Background(), tickers(20), "60m", "60d", 0)

	assert.Len(t, rep.Results, 20)
	assert.LessOrEqual(t, peak.Load(), int32(3))
	assert.GreaterOrEqual(t, peak.Load(), int32(1))
}

func TestNewPoolClamps(t *testing.T) {
	p := NewPool(0, 0)
	assert.Equal(t, 1, p.MaxInFlight())
	assert.Equal(t, time.Duration(0), p.TaskTimeout())
}

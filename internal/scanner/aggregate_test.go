package scanner

import (
	"context"
	"errors"
	"testing"
	"time"

	"scan_bot/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func results(pairs ...any) []models.ScanResult {
	var out []models.ScanResult
	for i := 0; i < len(pairs); i += 2 {
		ticker := pairs[i].(string)
		score := pairs[i+1].(float64)
		out = append(out, models.ScanResult{Ticker: ticker, Summary: summary(ticker, score)})
	}
	return out
}

func TestAggregationMean(t *testing.T) {
	acc := NewAggregation().
		Merge("60m", results("A", 70.0, "B", 60.0)).
		Merge("90m", results("A", 90.0))

	a, ok := acc.Entry("A")
	require.True(t, ok)
	assert.Equal(t, []float64{70, 90}, a.Scores)
	assert.Equal(t, "90m", a.Interval)

	final := acc.Finalize()
	require.Len(t, final, 2)
	assert.Equal(t, "A", final[0].Ticker)
	assert.Equal(t, 80.0, final[0].Score)
	assert.Equal(t, "B", final[1].Ticker)
	assert.Equal(t, 60.0, final[1].Score)
}

func TestAggregationMergeIsPure(t *testing.T) {
	first := NewAggregation().Merge("15m", results("A", 10.0))
	second := first.Merge("30m", results("A", 30.0, "B", 50.0))

	a1, _ := first.Entry("A")
	assert.Equal(t, []float64{10}, a1.Scores)
	assert.Equal(t, 1, first.Len())

	a2, _ := second.Entry("A")
	assert.Equal(t, []float64{10, 30}, a2.Scores)
	assert.Equal(t, 2, second.Len())

	// a returned entry is a copy
	a2.Scores[0] = 999
	again, _ := second.Entry("A")
	assert.Equal(t, 10.0, again.Scores[0])
}

func TestAggregationLastPresetWinsDisplay(t *testing.T) {
	early := models.ScanResult{Ticker: "A", Summary: models.SignalSummary{Price: 10, ATR: 1, BiasText: "AL", Score: 40, PatternText: "early"}}
	late := models.ScanResult{Ticker: "A", Summary: models.SignalSummary{Price: 12, ATR: 1, BiasText: "SAT", Score: 60, PatternText: "late"}}

	final := NewAggregation().Merge("1d", []models.ScanResult{early}).Merge("1wk", []models.ScanResult{late}).Finalize()

	require.Len(t, final, 1)
	assert.Equal(t, 50.0, final[0].Score)
	assert.Equal(t, "late", final[0].Summary.PatternText)
	assert.Equal(t, 12.0, final[0].Summary.Price)
	assert.Equal(t, Normalize(late.Summary, "1wk"), final[0].Summary)
	assert.Greater(t, final[0].Summary.Stop, final[0].Summary.Price)
}

func TestAggregationDuplicateWithinPreset(t *testing.T) {
	acc := NewAggregation().Merge("60m", results("A", 10.0, "A", 30.0))

	a, _ := acc.Entry("A")
	assert.Equal(t, []float64{30}, a.Scores)
	assert.Equal(t, 1, acc.Len())
}

func TestAggregationEmpty(t *testing.T) {
	final := NewAggregation().Merge("60m", nil).Finalize()
	assert.Empty(t, final)

	_, ok := NewAggregation().Entry("missing")
	assert.False(t, ok)
}

func TestScannerAggregate(t *testing.T) {
	scores := map[string]map[string]float64{
		"60m": {"A": 70, "B": 60},
		"90m": {"A": 90},
	}
	sc := New(analyzeFunc(func(_ context.Context, ticker, interval, _ string) (models.SignalSummary, error) {
		s, ok := scores[interval][ticker]
		if !ok {
			return models.SignalSummary{}, models.ErrNoData
		}
		return summary(ticker, s), nil
	}), NewPool(2, time.Second), nil)

	presets := []models.Preset{{Interval: "60m", Period: "60d"}, {Interval: "90m", Period: "90d"}}
	rep, err := sc.Aggregate(context.Background(), []string{"A", "B", "C"}, presets)
	require.NoError(t, err)

	require.Len(t, rep.Scans, 2)
	got := map[string]float64{}
	for _, e := range rep.Entries {
		got[e.Ticker] = e.Score
	}
	assert.Equal(t, map[string]float64{"A": 80, "B": 60}, got)
	assert.Equal(t, []string{"C"}, rep.Skipped())
	assert.Equal(t, []string{"B", "C"}, rep.Scans[1].SkippedTickers())
}

func TestScannerAggregateCancelled(t *testing.T) {
	sc := New(analyzeFunc(func(_ context.Context, ticker, _, _ string) (models.SignalSummary, error) {
		return summary(ticker, 1), nil
	}), NewPool(1, time.Second), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := sc.Aggregate(ctx, []string{"A"}, []models.Preset{{Interval: "1d", Period: "180d"}})
	assert.True(t, errors.Is(err, context.Canceled))
}

package scanner

import (
	"testing"

	"scan_bot/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeIdempotent(t *testing.T) {
	for _, interval := range []string{"5m", "15m", "60m", "1h", "1d", "1wk", "unknown"} {
		for _, bias := range []string{"GÜÇLÜ AL", "SAT", "NÖTR", ""} {
			s := models.SignalSummary{Ticker: "X", Price: 42.5, ATR: 1.3, BiasText: bias, Score: 60}

			once := Normalize(s, interval)
			twice := Normalize(once, interval)

			assert.Equal(t, once, twice, "%s %q", interval, bias)
		}
	}
}

func TestNormalizeDirection(t *testing.T) {
	tests := []struct {
		name    string
		bias    string
		atr     float64
		bearish bool
	}{
		{name: "bullish", bias: "AL", atr: 2},
		{name: "strong bullish", bias: "GÜÇLÜ AL", atr: 0.5},
		{name: "neutral treated as bullish", bias: "NÖTR", atr: 1},
		{name: "zero atr", bias: "AL", atr: 0},
		{name: "huge atr", bias: "AL", atr: 500},
		{name: "bearish", bias: "SAT", atr: 2, bearish: true},
		{name: "strong bearish", bias: "GÜÇLÜ SAT", atr: 0, bearish: true},
		{name: "bearish huge atr", bias: "SAT", atr: 1000, bearish: true},
	}

	for _, tt := range tests {
		for _, interval := range []string{"15m", "60m", "1d"} {
			t.Run(tt.name+"/"+interval, func(t *testing.T) {
				s := Normalize(models.SignalSummary{Price: 100, ATR: tt.atr, BiasText: tt.bias}, interval)

				if tt.bearish {
					assert.Greater(t, s.Stop, s.Price)
					assert.Less(t, s.T1, s.Price)
					assert.Less(t, s.T2, s.T1)
				} else {
					assert.Less(t, s.Stop, s.Price)
					assert.Greater(t, s.T1, s.Price)
					assert.Greater(t, s.T2, s.T1)
				}
				assert.Greater(t, s.Stop, 0.0)
				assert.Greater(t, s.T2, 0.0)
				assert.NotEmpty(t, s.ETA)
			})
		}
	}
}

func TestNormalizeScalesWithInterval(t *testing.T) {
	base := models.SignalSummary{Price: 100, ATR: 2, BiasText: "AL"}

	short := Normalize(base, "15m")
	hourly := Normalize(base, "60m")
	daily := Normalize(base, "1d")

	assert.InDelta(t, 101.5, short.T1, 1e-9)
	assert.InDelta(t, 102.0, hourly.T1, 1e-9)
	assert.InDelta(t, 104.0, daily.T1, 1e-9)
	assert.InDelta(t, 108.0, daily.T2, 1e-9)
	assert.InDelta(t, 96.0, daily.Stop, 1e-9)

	assert.Equal(t, "1-2 gün", short.ETA)
	assert.Equal(t, "2-5 gün", hourly.ETA)
	assert.Equal(t, "1-3 hafta", daily.ETA)
	assert.Equal(t, hourly, Normalize(base, "1h"))
}

func TestNormalizeLeavesOtherFields(t *testing.T) {
	s := models.SignalSummary{
		Ticker: "EREGL", Price: 50, ATR: 1, BiasText: "AL", Score: 77,
		PatternText: "Yutan boğa", BuyZone: "49.00 - 49.80",
	}

	out := Normalize(s, "60m")

	assert.Equal(t, s.Ticker, out.Ticker)
	assert.Equal(t, s.Score, out.Score)
	assert.Equal(t, s.PatternText, out.PatternText)
	assert.Equal(t, s.BuyZone, out.BuyZone)
	assert.Equal(t, 0.0, s.T1, "input copy untouched")
}

func TestNormalizeWithoutPrice(t *testing.T) {
	s := models.SignalSummary{Price: 0, ATR: 3, Stop: 1, T1: 2, T2: 3}

	out := Normalize(s, "1d")

	assert.Equal(t, 1.0, out.Stop)
	assert.Equal(t, 2.0, out.T1)
	assert.Equal(t, 3.0, out.T2)
	assert.Equal(t, "1-3 hafta", out.ETA)
}

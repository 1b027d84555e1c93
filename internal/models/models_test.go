package models

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBias(t *testing.T) {
	tests := []struct {
		input string
		want  Bias
	}{
		{"GÜÇLÜ AL", BiasBullish},
		{"AL", BiasBullish},
		{"al", BiasBullish},
		{"Satın al", BiasBullish},
		{"LONG", BiasBullish},
		{"SAT", BiasBearish},
		{"GÜÇLÜ SAT", BiasBearish},
		{"short", BiasBearish},
		{"NÖTR", BiasNeutral},
		{"neutral", BiasNeutral},
		{"", BiasNeutral},
		{"???", BiasNeutral},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseBias(tt.input))
		})
	}
}

func TestAggregationEntryMean(t *testing.T) {
	assert.Equal(t, 0.0, AggregationEntry{}.Mean())
	assert.InDelta(t, 80.0, AggregationEntry{Scores: []float64{70, 90}}.Mean(), 1e-9)
	assert.InDelta(t, 60.0, AggregationEntry{Scores: []float64{60}}.Mean(), 1e-9)
}

func TestLookupHorizon(t *testing.T) {
	h, err := LookupHorizon("kisa")
	require.NoError(t, err)
	assert.Equal(t, []Preset{{"15m", "14d"}, {"30m", "30d"}}, h.Presets)

	h, err = LookupHorizon("MEDIUM")
	require.NoError(t, err)
	assert.Equal(t, []Preset{{"60m", "60d"}, {"90m", "90d"}}, h.Presets)

	h, err = LookupHorizon("uzun")
	require.NoError(t, err)
	assert.Equal(t, []Preset{{"1d", "180d"}, {"1d", "365d"}}, h.Presets)

	_, err = LookupHorizon("weekly")
	assert.True(t, errors.Is(err, ErrUnknownHorizon))
}

func TestSignalSummaryEmpty(t *testing.T) {
	assert.True(t, SignalSummary{}.Empty())
	assert.True(t, SignalSummary{Price: -1}.Empty())
	assert.False(t, SignalSummary{Price: 12.5}.Empty())
}

func TestParseHorizon(t *testing.T) {
	h, err := ParseHorizon(" Kısa ")
	require.NoError(t, err)
	assert.Equal(t, HorizonShort, h)

	h, err = ParseHorizon("long")
	require.NoError(t, err)
	assert.Equal(t, HorizonLong, h)
}

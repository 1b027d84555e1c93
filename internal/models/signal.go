package models

import (
	"errors"
	"strings"
	"time"
)

// ErrNoData is returned by analyzers when the provider has nothing for a symbol.
var ErrNoData = errors.New("no data")

// SignalSummary is the per-symbol analysis result.
// Stop, T1, T2 and ETA are rewritten by target normalization; everything else is
// fixed once the analyzer returns.
type SignalSummary struct {
	Ticker      string  `json:"ticker" yaml:"ticker"`
	Price       float64 `json:"price" yaml:"price"`
	ATR         float64 `json:"atr" yaml:"atr"`
	BiasText    string  `json:"bias_text" yaml:"bias_text"`
	Score       float64 `json:"score" yaml:"score"`
	PatternText string  `json:"pattern_text" yaml:"pattern_text"`
	BuyZone     string  `json:"buy_zone" yaml:"buy_zone"`
	Stop        float64 `json:"stop" yaml:"stop"`
	T1          float64 `json:"t1" yaml:"t1"`
	T2          float64 `json:"t2" yaml:"t2"`
	ETA         string  `json:"eta" yaml:"eta"`
}

// Empty reports a summary that carries no usable price.
func (s SignalSummary) Empty() bool {
	return s.Price <= 0
}

type ScanResult struct {
	Ticker  string
	Summary SignalSummary
}

type SkipReason string

const (
	SkipNoData        SkipReason = "no_data"
	SkipAnalyzerError SkipReason = "analyzer_error"
	SkipTimeout       SkipReason = "timeout"
)

type Skip struct {
	Ticker string
	Reason SkipReason
	Err    error
}

// AggregationEntry collects one ticker's per-preset scores; display fields come
// from the last preset the ticker succeeded in.
type AggregationEntry struct {
	Scores   []float64
	Latest   SignalSummary
	Interval string
}

func (e AggregationEntry) Mean() float64 {
	if len(e.Scores) == 0 {
		return 0
	}
	var sum float64
	for _, s := range e.Scores {
		sum += s
	}
	return sum / float64(len(e.Scores))
}

type RankedEntry struct {
	Ticker  string        `json:"ticker" yaml:"ticker"`
	Score   float64       `json:"score" yaml:"score"`
	Summary SignalSummary `json:"summary" yaml:"summary"`
}

// Bias is the direction encoded in SignalSummary.BiasText.
type Bias int

const (
	BiasNeutral Bias = iota
	BiasBullish
	BiasBearish
)

func (b Bias) String() string {
	switch b {
	case BiasBullish:
		return "bullish"
	case BiasBearish:
		return "bearish"
	default:
		return "neutral"
	}
}

// ParseBias understands the analyzer's Turkish labels (AL/SAT/NÖTR) and the
// english long/short vocabulary.
func ParseBias(text string) Bias {
	t := strings.ToUpper(strings.TrimSpace(text))
	switch {
	case t == "":
		return BiasNeutral
	case strings.Contains(t, "NÖTR"), strings.Contains(t, "NOTR"),
		strings.Contains(t, "NEUTRAL"), strings.Contains(t, "BEKLE"):
		return BiasNeutral
	case strings.Contains(t, "SATIN AL"):
		return BiasBullish
	case strings.Contains(t, "SAT"), strings.Contains(t, "SELL"),
		strings.Contains(t, "SHORT"), strings.Contains(t, "BEAR"):
		return BiasBearish
	case strings.Contains(t, "AL"), strings.Contains(t, "BUY"),
		strings.Contains(t, "LONG"), strings.Contains(t, "BULL"):
		return BiasBullish
	default:
		return BiasNeutral
	}
}

// Candle is one OHLCV bar.
type Candle struct {
	Time   time.Time `json:"t"`
	Open   float64   `json:"o"`
	High   float64   `json:"h"`
	Low    float64   `json:"l"`
	Close  float64   `json:"c"`
	Volume float64   `json:"v"`
}

package service

import (
	"math"

	"scan_bot/internal/models"
)

const (
	emaFastN   = 20
	emaSlowN   = 50
	rsiN       = 14
	atrN       = 14
	volumeN    = 20
	breakoutN  = 20
	momentumN  = 10
	crossoverN = 3
)

// Indicators holds per-bar series aligned with the candle slice.
type Indicators struct {
	EMAFast []float64
	EMASlow []float64
	RSI     []float64
	ATR     []float64
	// last volume over its volumeN-bar average
	VolumeRatio float64
}

func computeIndicators(c []models.Candle) Indicators {
	closes := make([]float64, len(c))
	for i, k := range c {
		closes[i] = k.Close
	}
	return Indicators{
		EMAFast:     ema(closes, emaFastN),
		EMASlow:     ema(closes, emaSlowN),
		RSI:         rsi(closes, rsiN),
		ATR:         atr(c, atrN),
		VolumeRatio: volumeRatio(c, volumeN),
	}
}

// ema is seeded with the first value.
func ema(values []float64, n int) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 || n <= 0 {
		return out
	}
	k := 2.0 / float64(n+1)
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		out[i] = out[i-1] + k*(values[i]-out[i-1])
	}
	return out
}

// rsi uses Wilder smoothing; the first bar reads 50.
func rsi(closes []float64, n int) []float64 {
	out := make([]float64, len(closes))
	if len(closes) == 0 || n <= 0 {
		return out
	}
	out[0] = 50

	alpha := 1.0 / float64(n)
	var avgGain, avgLoss float64
	for i := 1; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		gain, loss := 0.0, 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}

		if i == 1 {
			avgGain, avgLoss = gain, loss
		} else {
			avgGain = (1-alpha)*avgGain + alpha*gain
			avgLoss = (1-alpha)*avgLoss + alpha*loss
		}

		switch {
		case avgLoss == 0 && avgGain == 0:
			out[i] = 50
		case avgLoss == 0:
			out[i] = 100
		default:
			rs := avgGain / avgLoss
			out[i] = 100 - 100/(1+rs)
		}
	}
	return out
}

// atr is Wilder's average true range.
func atr(c []models.Candle, n int) []float64 {
	out := make([]float64, len(c))
	if len(c) == 0 || n <= 0 {
		return out
	}
	out[0] = c[0].High - c[0].Low
	for i := 1; i < len(c); i++ {
		prevClose := c[i-1].Close
		tr := math.Max(c[i].High-c[i].Low, math.Max(math.Abs(c[i].High-prevClose), math.Abs(c[i].Low-prevClose)))
		if i < n {
			// running mean until n bars are available
			out[i] = out[i-1] + (tr-out[i-1])/float64(i+1)
			continue
		}
		out[i] = (out[i-1]*float64(n-1) + tr) / float64(n)
	}
	return out
}

func volumeRatio(c []models.Candle, n int) float64 {
	if len(c) < 2 {
		return 0
	}
	start := max(0, len(c)-1-n)
	window := c[start : len(c)-1]

	var sum float64
	for _, k := range window {
		sum += k.Volume
	}
	if sum <= 0 {
		return 0
	}
	return c[len(c)-1].Volume / (sum / float64(len(window)))
}

func last(s []float64) float64 {
	if len(s) == 0 {
		return 0
	}
	return s[len(s)-1]
}

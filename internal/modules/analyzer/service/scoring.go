package service

import (
	"fmt"

	"scan_bot/internal/helper"
	"scan_bot/internal/models"
)

const (
	biasStrongBuy  = "GÜÇLÜ AL"
	biasBuy        = "AL"
	biasNeutral    = "NÖTR"
	biasSell       = "SAT"
	biasStrongSell = "GÜÇLÜ SAT"

	zoneNotAdvised = "Önerilmez"
)

// score starts neutral at 50 and is clamped into [0, 100].
func score(c []models.Candle, ind Indicators, patterns []Pattern) float64 {
	price := c[len(c)-1].Close
	fast, slow := last(ind.EMAFast), last(ind.EMASlow)

	s := 50.0
	s += sign(price > fast, 8)
	s += sign(fast > slow, 10)
	s += sign(price > slow, 5)

	switch r := last(ind.RSI); {
	case r > 75:
		s -= 8
	case r > 68:
		s += 3
	case r >= 50:
		s += 10
	case r >= 40:
	case r >= 30:
		s -= 5
	default:
		// oversold, bounce candidate
		s += 4
	}

	if len(c) > momentumN {
		ref := c[len(c)-1-momentumN].Close
		if ref > 0 {
			switch chg := (price - ref) / ref; {
			case chg > 0.03:
				s += 5
			case chg < -0.03:
				s -= 5
			}
		}
	}

	if ind.VolumeRatio >= 1.5 {
		cur := c[len(c)-1]
		s += sign(cur.Close >= cur.Open, 5)
	}

	for _, p := range patterns {
		s += p.Weight
	}

	return min(max(s, 0), 100)
}

func sign(up bool, w float64) float64 {
	if up {
		return w
	}
	return -w
}

func biasText(score float64) string {
	switch {
	case score >= 75:
		return biasStrongBuy
	case score >= 60:
		return biasBuy
	case score >= 40:
		return biasNeutral
	case score >= 25:
		return biasSell
	default:
		return biasStrongSell
	}
}

// buyZone is a pullback range below price, floored at the fast EMA when it is close by.
func buyZone(price, atr, emaFast float64, bias models.Bias) string {
	if bias == models.BiasBearish || price <= 0 {
		return zoneNotAdvised
	}

	lo := price - 0.5*atr
	hi := price
	if bias == models.BiasNeutral {
		lo, hi = price-atr, price-0.25*atr
	}
	if emaFast < price && emaFast > lo {
		lo = emaFast
	}
	lo = max(lo, price*0.5)

	tick := helper.BISTTick(price)
	return fmt.Sprintf("%.2f - %.2f", helper.RoundDownToTick(lo, tick), helper.RoundUpToTick(hi, tick))
}

func buildSummary(ticker string, c []models.Candle, ind Indicators, patterns []Pattern) models.SignalSummary {
	price := c[len(c)-1].Close
	a := last(ind.ATR)
	sc := score(c, ind, patterns)
	bias := biasText(sc)

	s := models.SignalSummary{
		Ticker:      ticker,
		Price:       price,
		ATR:         a,
		BiasText:    bias,
		Score:       sc,
		PatternText: patternText(patterns),
		BuyZone:     buyZone(price, a, last(ind.EMAFast), models.ParseBias(bias)),
	}

	// raw levels; the scan pipeline rescales them per interval
	if models.ParseBias(bias) == models.BiasBearish {
		s.Stop, s.T1, s.T2 = price+1.5*a, price-1.5*a, price-3*a
	} else {
		s.Stop, s.T1, s.T2 = price-1.5*a, price+1.5*a, price+3*a
	}
	return s
}

package scanner

import (
	"math"
	"strings"

	"scan_bot/internal/models"
)

const (
	// bounds on the stop/target distance as a fraction of price
	minDistanceFrac = 0.002
	maxDistanceFrac = 0.45
)

type intervalProfile struct {
	// ATR multiple used as the stop/target distance
	factor float64
	eta    string
}

// Longer bars get wider targets and longer horizons.
var intervalProfiles = map[string]intervalProfile{
	"1m":  {factor: 0.35, eta: "birkaç saat"},
	"2m":  {factor: 0.4, eta: "birkaç saat"},
	"5m":  {factor: 0.5, eta: "birkaç saat"},
	"15m": {factor: 0.75, eta: "1-2 gün"},
	"30m": {factor: 0.9, eta: "1-2 gün"},
	"60m": {factor: 1.0, eta: "2-5 gün"},
	"90m": {factor: 1.2, eta: "2-5 gün"},
	"1d":  {factor: 2.0, eta: "1-3 hafta"},
	"5d":  {factor: 2.6, eta: "1-3 ay"},
	"1wk": {factor: 3.0, eta: "1-3 ay"},
	"1mo": {factor: 4.0, eta: "3-6 ay"},
	"3mo": {factor: 5.0, eta: "6-12 ay"},
}

var intervalAliases = map[string]string{
	"1h": "60m",
	"4h": "1d",
	"1w": "1wk",
}

func profileFor(interval string) intervalProfile {
	key := strings.ToLower(strings.TrimSpace(interval))
	if alias, ok := intervalAliases[key]; ok {
		key = alias
	}
	if p, ok := intervalProfiles[key]; ok {
		return p
	}
	return intervalProfiles["60m"]
}

// Normalize rewrites Stop, T1, T2 and ETA from Price, ATR and the bias direction
// so that summaries from different intervals are comparable. The result depends
// only on those inputs, so applying it twice changes nothing.
func Normalize(s models.SignalSummary, interval string) models.SignalSummary {
	p := profileFor(interval)

	out := s
	out.ETA = p.eta
	if !finitePositive(s.Price) {
		return out
	}

	atr := s.ATR
	if !finitePositive(atr) {
		atr = 0
	}

	d := atr * p.factor
	d = max(d, s.Price*minDistanceFrac)
	d = min(d, s.Price*maxDistanceFrac)

	if models.ParseBias(s.BiasText) == models.BiasBearish {
		out.Stop = s.Price + d
		out.T1 = s.Price - d
		out.T2 = s.Price - 2*d
	} else {
		out.Stop = s.Price - d
		out.T1 = s.Price + d
		out.T2 = s.Price + 2*d
	}

	return out
}

// NormalizeResults turns scan results into rankable entries scored by their own score.
func NormalizeResults(results []models.ScanResult, interval string) []models.RankedEntry {
	out := make([]models.RankedEntry, 0, len(results))
	for _, r := range results {
		out = append(out, models.RankedEntry{
			Ticker:  r.Ticker,
			Score:   r.Summary.Score,
			Summary: Normalize(r.Summary, interval),
		})
	}
	return out
}

func finitePositive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}

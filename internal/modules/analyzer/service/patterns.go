package service

import (
	"math"
	"strings"

	"scan_bot/internal/models"
)

// Pattern is a recognised formation; Weight is added to the score
// (positive bullish, negative bearish).
type Pattern struct {
	Name   string
	Weight float64
}

const noPattern = "Belirgin formasyon yok"

func detectPatterns(c []models.Candle, ind Indicators) []Pattern {
	var out []Pattern
	if len(c) < 2 {
		return out
	}

	cur, prev := c[len(c)-1], c[len(c)-2]
	body := math.Abs(cur.Close - cur.Open)
	rng := cur.High - cur.Low
	upper := cur.High - math.Max(cur.Open, cur.Close)
	lower := math.Min(cur.Open, cur.Close) - cur.Low

	switch {
	case prev.Close < prev.Open && cur.Close > cur.Open &&
		cur.Open <= prev.Close && cur.Close >= prev.Open:
		out = append(out, Pattern{Name: "Yutan Boğa", Weight: 8})
	case prev.Close > prev.Open && cur.Close < cur.Open &&
		cur.Open >= prev.Close && cur.Close <= prev.Open:
		out = append(out, Pattern{Name: "Yutan Ayı", Weight: -8})
	}

	if rng > 0 {
		switch {
		case body <= 0.1*rng:
			out = append(out, Pattern{Name: "Doji", Weight: 0})
		case body <= 0.35*rng && lower >= 2*body && upper <= body:
			out = append(out, Pattern{Name: "Çekiç", Weight: 5})
		case body <= 0.35*rng && upper >= 2*body && lower <= body:
			out = append(out, Pattern{Name: "Kayan Yıldız", Weight: -5})
		}
	}

	if cross := emaCross(ind.EMAFast, ind.EMASlow, crossoverN); cross > 0 {
		out = append(out, Pattern{Name: "EMA20/50 Altın Kesişim", Weight: 10})
	} else if cross < 0 {
		out = append(out, Pattern{Name: "EMA20/50 Ölüm Kesişimi", Weight: -10})
	}

	if len(c) > breakoutN {
		hi, lo := math.Inf(-1), math.Inf(1)
		for _, k := range c[len(c)-1-breakoutN : len(c)-1] {
			hi = math.Max(hi, k.High)
			lo = math.Min(lo, k.Low)
		}
		switch {
		case cur.Close > hi:
			out = append(out, Pattern{Name: "20 Bar Direnç Kırılımı", Weight: 8})
		case cur.Close < lo:
			out = append(out, Pattern{Name: "20 Bar Destek Kırılımı", Weight: -8})
		}
	}

	return out
}

// emaCross reports +1 when fast crossed above slow within the last n bars, -1 for a cross below.
func emaCross(fast, slow []float64, n int) int {
	if len(fast) != len(slow) || len(fast) < 2 {
		return 0
	}
	from := max(1, len(fast)-n)
	for i := len(fast) - 1; i >= from; i-- {
		before := fast[i-1] - slow[i-1]
		after := fast[i] - slow[i]
		switch {
		case before <= 0 && after > 0:
			return 1
		case before >= 0 && after < 0:
			return -1
		}
	}
	return 0
}

func patternText(p []Pattern) string {
	if len(p) == 0 {
		return noPattern
	}
	names := make([]string, len(p))
	for i, x := range p {
		names[i] = x.Name
	}
	return strings.Join(names, ", ")
}

package service

import (
	"math"
	"time"

	"scan_bot/internal/models"
)

// chartResponse is the subset of /v8/finance/chart we read.
type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *chartError   `json:"error"`
	} `json:"chart"`
}

type chartError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

type chartResult struct {
	Meta struct {
		Symbol    string `json:"symbol"`
		Currency  string `json:"currency"`
		Timezone  string `json:"exchangeTimezoneName"`
		Gmtoffset int    `json:"gmtoffset"`
	} `json:"meta"`
	Timestamp  []int64 `json:"timestamp"`
	Indicators struct {
		Quote []struct {
			Open   []*float64 `json:"open"`
			High   []*float64 `json:"high"`
			Low    []*float64 `json:"low"`
			Close  []*float64 `json:"close"`
			Volume []*float64 `json:"volume"`
		} `json:"quote"`
	} `json:"indicators"`
}

// candles flattens the column arrays; bars with a missing or non-positive close are dropped.
func (r chartResult) candles() []models.Candle {
	if len(r.Indicators.Quote) == 0 {
		return nil
	}
	q := r.Indicators.Quote[0]

	out := make([]models.Candle, 0, len(r.Timestamp))
	for i, ts := range r.Timestamp {
		c := at(q.Close, i)
		if c <= 0 {
			continue
		}
		o, h, l := at(q.Open, i), at(q.High, i), at(q.Low, i)
		if o <= 0 {
			o = c
		}
		if h <= 0 {
			h = math.Max(o, c)
		}
		if l <= 0 {
			l = math.Min(o, c)
		}
		out = append(out, models.Candle{
			Time:   time.Unix(ts, 0).UTC(),
			Open:   o,
			High:   h,
			Low:    l,
			Close:  c,
			Volume: math.Max(at(q.Volume, i), 0),
		})
	}
	return out
}

func at(col []*float64, i int) float64 {
	if i >= len(col) || col[i] == nil {
		return 0
	}
	v := *col[i]
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

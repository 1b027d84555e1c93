package service

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

var ErrUnsupportedInterval = fmt.Errorf("unsupported interval")

// barDuration is the span of one candle for the intervals Yahoo serves.
func barDuration(interval string) (time.Duration, error) {
	switch strings.ToLower(strings.TrimSpace(interval)) {
	case "1m":
		return time.Minute, nil
	case "2m":
		return 2 * time.Minute, nil
	case "5m":
		return 5 * time.Minute, nil
	case "15m":
		return 15 * time.Minute, nil
	case "30m":
		return 30 * time.Minute, nil
	case "60m", "1h":
		return time.Hour, nil
	case "90m":
		return 90 * time.Minute, nil
	case "1d":
		return 24 * time.Hour, nil
	case "5d":
		return 5 * 24 * time.Hour, nil
	case "1wk":
		return 7 * 24 * time.Hour, nil
	case "1mo":
		return 30 * 24 * time.Hour, nil
	case "3mo":
		return 91 * 24 * time.Hour, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnsupportedInterval, interval)
}

// maxLookback is how far back Yahoo serves bars of the given size.
func maxLookback(bar time.Duration) time.Duration {
	switch {
	case bar < 2*time.Minute:
		return 7 * 24 * time.Hour
	case bar == time.Hour:
		return 729 * 24 * time.Hour
	case bar < 24*time.Hour:
		return 59 * 24 * time.Hour
	default:
		return 0
	}
}

// periodDuration parses "14d", "2wk", "6mo", "1y" and "max".
func periodDuration(period string) (time.Duration, error) {
	p := strings.ToLower(strings.TrimSpace(period))
	if p == "max" {
		return 50 * 365 * 24 * time.Hour, nil
	}

	units := []struct {
		suffix string
		day    int
	}{
		{"wk", 7},
		{"mo", 30},
		{"d", 1},
		{"w", 7},
		{"y", 365},
	}
	for _, u := range units {
		if !strings.HasSuffix(p, u.suffix) {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSuffix(p, u.suffix))
		if err != nil || n <= 0 {
			return 0, fmt.Errorf("invalid period %q", period)
		}
		return time.Duration(n*u.day) * 24 * time.Hour, nil
	}
	return 0, fmt.Errorf("invalid period %q", period)
}

// window turns (interval, period) into the [from, to) range requested from Yahoo.
func window(now time.Time, interval, period string) (from, to time.Time, err error) {
	bar, err := barDuration(interval)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	span, err := periodDuration(period)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if limit := maxLookback(bar); limit > 0 && span > limit {
		span = limit
	}
	return now.Add(-span), now, nil
}

// CheckRange validates an (interval, period) pair without fetching anything.
func CheckRange(interval, period string) error {
	_, _, err := window(time.Now(), interval, period)
	return err
}

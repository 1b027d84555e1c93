package helper

import (
	"fmt"
	"math"
	"strings"
)

// NormTF maps user supplied interval spellings onto the provider's names.
func NormTF(raw string) string {
	s := strings.TrimSpace(strings.ToLower(raw))
	switch s {
	case "1h", "60":
		return "60m"
	case "1w", "1wk", "week":
		return "1wk"
	case "1g", "1day", "d":
		return "1d"
	default:
		return s
	}
}

// PctStr renders the distance from price to target as "%+1.23".
func PctStr(price, target float64) string {
	if !(price > 0) {
		return "%0.00"
	}
	pct := ((target - price) / price) * 100
	if math.IsNaN(pct) || math.IsInf(pct, 0) {
		return "%0.00"
	}
	return fmt.Sprintf("%%%+.2f", pct)
}

// BISTTick returns the exchange price step for a share trading at px.
func BISTTick(px float64) float64 {
	switch {
	case px < 20:
		return 0.01
	case px < 50:
		return 0.02
	case px < 100:
		return 0.05
	case px < 250:
		return 0.1
	case px < 500:
		return 0.25
	case px < 1000:
		return 0.5
	case px < 2500:
		return 1
	default:
		return 2.5
	}
}

func RoundDownToTick(px, tick float64) float64 {
	if tick <= 0 {
		return px
	}
	steps := math.Floor(px/tick + 1e-9)
	return steps * tick
}

func RoundUpToTick(px, tick float64) float64 {
	if tick <= 0 {
		return px
	}
	steps := math.Ceil(px/tick - 1e-9)
	return steps * tick
}

// FormatPrice prints a price with two decimals, "-" when it is unusable.
func FormatPrice(px float64) string {
	if math.IsNaN(px) || math.IsInf(px, 0) || px <= 0 {
		return "-"
	}
	return fmt.Sprintf("%.2f", px)
}

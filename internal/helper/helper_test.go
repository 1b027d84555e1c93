package helper

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPctStr(t *testing.T) {
	tests := []struct {
		name          string
		price, target float64
		want          string
	}{
		{name: "up", price: 100, target: 101.234, want: "%+1.23"},
		{name: "down", price: 100, target: 97.5, want: "%-2.50"},
		{name: "flat", price: 42, target: 42, want: "%+0.00"},
		{name: "zero price", price: 0, target: 10, want: "%0.00"},
		{name: "negative price", price: -5, target: 10, want: "%0.00"},
		{name: "nan price", price: math.NaN(), target: 10, want: "%0.00"},
		{name: "inf target", price: 10, target: math.Inf(1), want: "%0.00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PctStr(tt.price, tt.target))
		})
	}
}

func TestPctStrMatchesFormula(t *testing.T) {
	for _, c := range [][2]float64{{12.34, 13.1}, {250, 240.25}, {0.57, 0.61}, {1000, 1450}} {
		price, target := c[0], c[1]
		want := fmt.Sprintf("%%%+.2f", (target-price)/price*100)
		assert.Equal(t, want, PctStr(price, target))
	}
}

func TestNormTF(t *testing.T) {
	assert.Equal(t, "60m", NormTF("1H"))
	assert.Equal(t, "60m", NormTF(" 60m "))
	assert.Equal(t, "1wk", NormTF("1w"))
	assert.Equal(t, "1d", NormTF("1D"))
	assert.Equal(t, "15m", NormTF("15m"))
}

func TestTickRounding(t *testing.T) {
	assert.Equal(t, 0.01, BISTTick(19.99))
	assert.Equal(t, 0.05, BISTTick(75))
	assert.Equal(t, 2.5, BISTTick(3000))

	assert.InDelta(t, 75.15, RoundDownToTick(75.17, 0.05), 1e-9)
	assert.InDelta(t, 75.20, RoundUpToTick(75.17, 0.05), 1e-9)
	assert.InDelta(t, 75.15, RoundUpToTick(75.15, 0.05), 1e-9)
	assert.Equal(t, 3.3, RoundDownToTick(3.3, 0))
}

func TestFormatPrice(t *testing.T) {
	assert.Equal(t, "12.35", FormatPrice(12.346))
	assert.Equal(t, "-", FormatPrice(0))
	assert.Equal(t, "-", FormatPrice(math.NaN()))
}

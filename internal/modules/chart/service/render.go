package service

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"

	"scan_bot/internal/models"
)

var ErrNothingToDraw = errors.New("no candles to draw")

var (
	background = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	gridColor  = color.RGBA{R: 235, G: 235, B: 235, A: 255}
	upColor    = color.RGBA{R: 38, G: 166, B: 91, A: 255}
	downColor  = color.RGBA{R: 214, G: 69, B: 65, A: 255}

	FastColor   = color.RGBA{R: 33, G: 150, B: 243, A: 255}
	SlowColor   = color.RGBA{R: 255, G: 152, B: 0, A: 255}
	StopColor   = downColor
	TargetColor = upColor
)

// Line is an overlay series aligned with the candles.
type Line struct {
	Values []float64
	Color  color.RGBA
}

// Level is a dashed horizontal line across the chart.
type Level struct {
	Value float64
	Color color.RGBA
}

type Options struct {
	Width  int
	Height int
	// only the last MaxBars candles are drawn
	MaxBars int
}

func DefaultOptions() Options {
	return Options{Width: 960, Height: 540, MaxBars: 120}
}

const pad = 16

// Render draws a candlestick chart with overlays and price levels as PNG.
func Render(candles []models.Candle, lines []Line, levels []Level, opt Options) ([]byte, error) {
	if len(candles) == 0 {
		return nil, ErrNothingToDraw
	}
	if opt.Width <= 2*pad || opt.Height <= 2*pad {
		opt = DefaultOptions()
	}

	from := 0
	if opt.MaxBars > 0 && len(candles) > opt.MaxBars {
		from = len(candles) - opt.MaxBars
	}
	bars := candles[from:]

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, c := range bars {
		lo = math.Min(lo, c.Low)
		hi = math.Max(hi, c.High)
	}
	for _, l := range levels {
		if l.Value > 0 {
			lo = math.Min(lo, l.Value)
			hi = math.Max(hi, l.Value)
		}
	}
	if hi <= lo {
		hi, lo = hi+1, lo-1
	}

	img := image.NewRGBA(image.Rect(0, 0, opt.Width, opt.Height))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: background}, image.Point{}, draw.Src)

	plotW := float64(opt.Width - 2*pad)
	plotH := float64(opt.Height - 2*pad)
	step := plotW / float64(len(bars))
	y := func(v float64) int {
		return pad + int(math.Round((hi-v)/(hi-lo)*plotH))
	}
	x := func(i int) int {
		return pad + int(math.Round((float64(i)+0.5)*step))
	}

	for g := 0; g <= 4; g++ {
		gy := pad + int(plotH*float64(g)/4)
		hline(img, pad, opt.Width-pad, gy, gridColor, false)
	}

	half := max(int(step*0.35), 1)
	for i, c := range bars {
		col := upColor
		if c.Close < c.Open {
			col = downColor
		}
		cx := x(i)
		vline(img, cx, y(c.High), y(c.Low), col)

		top, bottom := y(math.Max(c.Open, c.Close)), y(math.Min(c.Open, c.Close))
		for bx := cx - half; bx <= cx+half; bx++ {
			vline(img, bx, top, bottom, col)
		}
	}

	for _, l := range lines {
		vals := l.Values
		if len(vals) != len(candles) {
			continue
		}
		vals = vals[from:]
		for i := 1; i < len(vals); i++ {
			if vals[i-1] <= 0 || vals[i] <= 0 {
				continue
			}
			segment(img, x(i-1), y(vals[i-1]), x(i), y(vals[i]), l.Color)
		}
	}

	for _, l := range levels {
		if l.Value > 0 {
			hline(img, pad, opt.Width-pad, y(l.Value), l.Color, true)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func hline(img *image.RGBA, x0, x1, y int, c color.RGBA, dashed bool) {
	for x := x0; x <= x1; x++ {
		if dashed && (x/6)%2 == 1 {
			continue
		}
		img.SetRGBA(x, y, c)
	}
}

func vline(img *image.RGBA, x, y0, y1 int, c color.RGBA) {
	if y0 > y1 {
		y0, y1 = y1, y0
	}
	for y := y0; y <= y1; y++ {
		img.SetRGBA(x, y, c)
	}
}

// segment is Bresenham's line.
func segment(img *image.RGBA, x0, y0, x1, y1 int, c color.RGBA) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	e := dx + dy
	for {
		img.SetRGBA(x0, y0, c)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

package service

import (
	"errors"
	"fmt"
	"html"
	"strings"

	"scan_bot/internal/helper"
	"scan_bot/internal/models"
	"scan_bot/internal/scanner"
)

const helpText = "Komutlar:\n" +
	"/analiz TICKER [interval] [period]\n" +
	"/score TICKER [interval] [period]\n" +
	"/top10 [interval] [period] [limit]\n" +
	"/top10kisa  (15m/14d + 30m/30d)\n" +
	"/top10orta  (60m/60d + 90m/90d)\n" +
	"/top10uzun  (1d/180d + 1d/365d)"

const (
	msgNoData    = "Veri bulunamadı."
	msgNoResults = "Sonuç yok."
)

func esc(s string) string { return html.EscapeString(s) }

func targets(s models.SignalSummary) (h1, h2 string) {
	return fmt.Sprintf("%.2f (%s)", s.T1, helper.PctStr(s.Price, s.T1)),
		fmt.Sprintf("%.2f (%s)", s.T2, helper.PctStr(s.Price, s.T2))
}

func formatAnalysisCaption(raw, symbol, interval, period string, s models.SignalSummary) string {
	h1, h2 := targets(s)
	return fmt.Sprintf(
		"<b>%s</b> (%s) — %s/%s\n"+
			"Fiyat: <b>%.2f</b> | ATR: %.2f\n"+
			"Öneri: <b>%s</b> | Skor: <b>%.0f/100</b>\n"+
			"Durum: %s\n"+
			"Alım Bölgesi: %s | Stop: <b>%.2f</b>\n"+
			"Hedef1: <b>%s</b> | Hedef2: <b>%s</b> | ETA: %s",
		esc(raw), esc(symbol), esc(interval), esc(period),
		s.Price, s.ATR,
		esc(s.BiasText), s.Score,
		esc(s.PatternText),
		esc(s.BuyZone), s.Stop,
		h1, h2, esc(s.ETA),
	)
}

func formatScore(raw, symbol, interval, period string, s models.SignalSummary) string {
	h1, h2 := targets(s)
	return fmt.Sprintf(
		"<b>%s</b> (%s) — %s/%s\n"+
			"Skor: <b>%.0f</b> | Öneri: %s | Fiyat: %.2f\n"+
			"H1: <b>%s</b> | H2: <b>%s</b> | ETA: %s",
		esc(raw), esc(symbol), esc(interval), esc(period),
		s.Score, esc(s.BiasText), s.Price,
		h1, h2, esc(s.ETA),
	)
}

// formatTop renders a ranked list. Lists built from several presets show
// the averaged score.
func formatTop(res scanner.TopResult, topN, skippedPreview int) string {
	averaged := len(res.Presets) > 1

	var b strings.Builder
	if averaged {
		fmt.Fprintf(&b, "🔥 <b>TOP %d %s</b>\n\n", topN, esc(res.Title))
	} else {
		fmt.Fprintf(&b, "🔥 <b>TOP %d</b> — %s\n", topN, esc(res.Title))
	}

	for i, e := range res.Top {
		s := e.Summary
		h1, h2 := targets(s)
		if averaged {
			fmt.Fprintf(&b,
				"%02d. <b>%s</b> — Ortalama Skor: <b>%.0f</b>\n"+
					"Öneri: %s | Fiyat: %.2f\n"+
					"Alım: %s | Stop: %.2f\n"+
					"H1: %s | H2: %s | ETA: %s\n\n",
				i+1, esc(e.Ticker), e.Score,
				esc(s.BiasText), s.Price,
				esc(s.BuyZone), s.Stop,
				h1, h2, esc(s.ETA),
			)
			continue
		}
		fmt.Fprintf(&b,
			"%02d. <b>%s</b> — Skor: <b>%.0f</b> | Öneri: %s | Fiyat: %.2f\n"+
				"Alım: %s | Stop: %.2f | H1: %s | H2: %s | ETA: %s\n",
			i+1, esc(e.Ticker), e.Score, esc(s.BiasText), s.Price,
			esc(s.BuyZone), s.Stop, h1, h2, esc(s.ETA),
		)
	}

	fmt.Fprintf(&b, "\n<i>Cutoff (%d. sıra) skor:</i> <b>%.0f</b>", len(res.Top), res.Cutoff)
	if preview := skippedLine(res.Skipped, skippedPreview); preview != "" {
		b.WriteString("\n\n" + preview)
	}
	return b.String()
}

func skippedLine(skipped []string, n int) string {
	if len(skipped) == 0 || n <= 0 {
		return ""
	}
	shown := skipped[:min(n, len(skipped))]
	line := "<i>Atlanan:</i> " + esc(strings.Join(shown, ", "))
	if rest := len(skipped) - len(shown); rest > 0 {
		line += fmt.Sprintf(" (+%d)", rest)
	}
	return line
}

// formatError maps request errors onto the messages users see.
func formatError(err error) string {
	switch {
	case errors.Is(err, models.ErrNoData):
		return msgNoData
	case errors.Is(err, scanner.ErrNoResults):
		return msgNoResults
	default:
		return "❌ Hata: " + esc(err.Error())
	}
}

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"scan_bot/internal/models"
	chart "scan_bot/internal/modules/chart/service"
	market "scan_bot/internal/modules/market/service"
	universe "scan_bot/internal/modules/universe/service"
	"scan_bot/internal/scanner"
	"scan_bot/pkg/logger"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (t *Telegram) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	msg := update.Message
	if msg == nil || msg.Chat == nil || !msg.IsCommand() {
		return
	}
	chatID := msg.Chat.ID
	args := strings.Fields(msg.CommandArguments())

	switch cmd := strings.ToLower(msg.Command()); cmd {
	case "start":
		if _, err := t.Send(ctx, chatID, "Selam! Hisse analizi için komut ver.\n\n"+helpText); err != nil {
			logger.Error("handleStart error: %v", err)
		}
	case "help":
		if _, err := t.Send(ctx, chatID, helpText); err != nil {
			logger.Error("handleHelp error: %v", err)
		}
	case "analiz":
		t.spawn(func() { t.handleAnaliz(ctx, chatID, args) })
	case "score":
		t.spawn(func() { t.handleScore(ctx, chatID, args) })
	case "top10":
		t.spawnExclusive(ctx, chatID, cmd, func() { t.handleTop(ctx, chatID, args) })
	case "top10kisa":
		t.spawnExclusive(ctx, chatID, cmd, func() { t.handleHorizon(ctx, chatID, models.HorizonShort) })
	case "top10orta":
		t.spawnExclusive(ctx, chatID, cmd, func() { t.handleHorizon(ctx, chatID, models.HorizonMedium) })
	case "top10uzun":
		t.spawnExclusive(ctx, chatID, cmd, func() { t.handleHorizon(ctx, chatID, models.HorizonLong) })
	default:
		_, _ = t.Send(ctx, chatID, "Bilinmeyen komut.\n\n"+helpText)
	}
}

// spawn runs a command off the update loop so long scans never block other chats.
func (t *Telegram) spawn(fn func()) {
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				logger.Error("command panic: %v", r)
			}
		}()
		fn()
	}()
}

// spawnExclusive is spawn limited to one universe scan per chat.
func (t *Telegram) spawnExclusive(ctx context.Context, chatID int64, cmd string, fn func()) {
	if running, ok := t.busy.acquire(chatID, cmd); !ok {
		_, _ = t.SendF(ctx, chatID, "⏳ /%s taraması sürüyor, bitince tekrar deneyin.", running)
		return
	}
	t.spawn(func() {
		defer t.busy.release(chatID)
		fn()
	})
}

// progress posts a "⏳ ..." note that is later edited into the answer.
func (t *Telegram) progress(ctx context.Context, chatID int64, text string) (int, error) {
	note, err := t.Send(ctx, chatID, text)
	if err != nil {
		return 0, err
	}
	return note.MessageID, nil
}

func (t *Telegram) finish(chatID int64, noteID int, text string) {
	if err := t.editText(chatID, noteID, text); err != nil {
		logger.Error("edit note %d in chat %d: %v", noteID, chatID, err)
	}
}

func (t *Telegram) fail(chatID int64, noteID int, what string, err error) {
	if !errors.Is(err, models.ErrNoData) && !errors.Is(err, scanner.ErrNoResults) {
		logger.Error("%s failed in chat %d: %v", what, chatID, err)
	}
	t.finish(chatID, noteID, formatError(err))
}

func (t *Telegram) handleAnaliz(ctx context.Context, chatID int64, args []string) {
	raw, interval, period, ok := tickerArgs(args)
	if !ok {
		_, _ = t.Send(ctx, chatID, helpText)
		return
	}
	symbol := universe.NormalizeBIST(raw)

	noteID, err := t.progress(ctx, chatID, fmt.Sprintf("⏳ Analiz: %s → %s | %s/%s", raw, symbol, interval, period))
	if err != nil {
		logger.Error("handleAnaliz: %v", err)
		return
	}
	if err := market.CheckRange(interval, period); err != nil {
		t.finish(chatID, noteID, formatError(err))
		return
	}

	runCtx, cancel := context.WithTimeout(ctx, t.cfg.Scanner.TaskTimeout)
	defer cancel()

	frame, err := t.inspector.Inspect(runCtx, raw, interval, period)
	if err != nil {
		t.fail(chatID, noteID, "analiz "+symbol, err)
		return
	}
	s := scanner.Normalize(frame.Summary, interval)

	img, err := chart.Render(frame.Candles,
		[]chart.Line{
			{Values: frame.Indicators.EMAFast, Color: chart.FastColor},
			{Values: frame.Indicators.EMASlow, Color: chart.SlowColor},
		},
		[]chart.Level{
			{Value: s.Stop, Color: chart.StopColor},
			{Value: s.T1, Color: chart.TargetColor},
			{Value: s.T2, Color: chart.TargetColor},
		},
		chart.DefaultOptions(),
	)
	caption := formatAnalysisCaption(raw, symbol, interval, period, s)
	if err != nil {
		// the numbers are still useful without a picture
		logger.Warn("render chart %s: %v", symbol, err)
		t.finish(chatID, noteID, caption)
		return
	}

	if err := t.sendPhoto(chatID, img, caption); err != nil {
		t.fail(chatID, noteID, "send chart "+symbol, err)
		return
	}
	if err := t.deleteMessage(chatID, noteID); err != nil {
		logger.Warn("delete note %d: %v", noteID, err)
	}
}

func (t *Telegram) handleScore(ctx context.Context, chatID int64, args []string) {
	raw, interval, period, ok := tickerArgs(args)
	if !ok {
		_, _ = t.Send(ctx, chatID, "Kullanım: /score TICKER [interval] [period]")
		return
	}
	symbol := universe.NormalizeBIST(raw)

	noteID, err := t.progress(ctx, chatID, fmt.Sprintf("⏳ Skor hesaplanıyor: %s → %s | %s/%s", raw, symbol, interval, period))
	if err != nil {
		logger.Error("handleScore: %v", err)
		return
	}
	if err := market.CheckRange(interval, period); err != nil {
		t.finish(chatID, noteID, formatError(err))
		return
	}

	s, err := t.scans.Analyze(ctx, raw, interval, period)
	if err != nil {
		t.fail(chatID, noteID, "score "+symbol, err)
		return
	}
	t.finish(chatID, noteID, formatScore(raw, symbol, interval, period, s))
}

func (t *Telegram) handleTop(ctx context.Context, chatID int64, args []string) {
	interval, period := rangeArgs(args)
	limit := limitArg(args, 2)

	noteID, err := t.progress(ctx, chatID, fmt.Sprintf("⏳ Taramaya başlandı | %s/%s", interval, period))
	if err != nil {
		logger.Error("handleTop: %v", err)
		return
	}
	if err := market.CheckRange(interval, period); err != nil {
		t.finish(chatID, noteID, formatError(err))
		return
	}

	res, err := t.scans.Top(ctx, interval, period, limit)
	if err != nil {
		t.fail(chatID, noteID, "top10", err)
		return
	}
	t.finish(chatID, noteID, formatTop(res, t.cfg.Scanner.TopN, t.cfg.Scanner.SkippedPreview))
}

func (t *Telegram) handleHorizon(ctx context.Context, chatID int64, h models.Horizon) {
	hp := models.Presets[h]

	noteID, err := t.progress(ctx, chatID, fmt.Sprintf("⏳ %s için tarama başlıyor…", hp.Name))
	if err != nil {
		logger.Error("handleHorizon: %v", err)
		return
	}

	res, err := t.scans.TopHorizon(ctx, h)
	if err != nil {
		t.fail(chatID, noteID, "top10 "+string(h), err)
		return
	}
	t.finish(chatID, noteID, formatTop(res, t.cfg.Scanner.TopN, t.cfg.Scanner.SkippedPreview))
}

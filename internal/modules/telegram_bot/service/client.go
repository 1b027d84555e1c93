package service

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"scan_bot/internal/models"
	analyzer "scan_bot/internal/modules/analyzer/service"
	"scan_bot/internal/modules/config"
	"scan_bot/internal/scanner"
	"scan_bot/pkg/logger"

	tgbot "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// botAPI is the part of *tgbot.BotAPI the handlers use.
type botAPI interface {
	Send(c tgbot.Chattable) (tgbot.Message, error)
	Request(c tgbot.Chattable) (*tgbot.APIResponse, error)
}

// Scans is the request service behind the top and score commands.
type Scans interface {
	Analyze(ctx context.Context, ticker, interval, period string) (models.SignalSummary, error)
	Top(ctx context.Context, interval, period string, limit int) (scanner.TopResult, error)
	TopHorizon(ctx context.Context, horizon models.Horizon) (scanner.TopResult, error)
}

// Inspector returns an analysis along with its candles, for charting.
type Inspector interface {
	Inspect(ctx context.Context, ticker, interval, period string) (analyzer.Frame, error)
}

// Telegram
type Telegram struct {
	bot  botAPI
	api  *tgbot.BotAPI
	cfg  *config.Config
	busy *busyStore

	scans     Scans
	inspector Inspector

	wg     sync.WaitGroup
	runCtx context.Context
	cancel context.CancelFunc
}

func NewTelegram(cfg *config.Config, scans *scanner.Service, inspector *analyzer.Service) (*Telegram, error) {
	b, err := tgbot.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		return nil, err
	}
	logger.Info("authorized on telegram as @%s", b.Self.UserName)

	t := newTelegram(b, cfg, scans, inspector)
	t.api = b
	return t, nil
}

func newTelegram(bot botAPI, cfg *config.Config, scans Scans, inspector Inspector) *Telegram {
	// commands outlive the update that started them; Stop cancels them all
	runCtx, cancel := context.WithCancel(context.Background())
	return &Telegram{
		bot:       bot,
		cfg:       cfg,
		busy:      newBusyStore(),
		scans:     scans,
		inspector: inspector,
		runCtx:    runCtx,
		cancel:    cancel,
	}
}

func (t *Telegram) Send(ctx context.Context, chatID int64, msg string) (tgbot.Message, error) {
	return t.bot.Send(tgbot.NewMessage(chatID, msg))
}

func (t *Telegram) SendF(ctx context.Context, chatID int64, format string, args ...any) (tgbot.Message, error) {
	return t.Send(ctx, chatID, fmt.Sprintf(format, args...))
}

// SendHTML sends text rendered in HTML parse mode.
func (t *Telegram) SendHTML(_ context.Context, chatID int64, text string) (tgbot.Message, error) {
	msg := tgbot.NewMessage(chatID, text)
	msg.ParseMode = tgbot.ModeHTML
	msg.DisableWebPagePreview = true
	return t.bot.Send(msg)
}

func (t *Telegram) editText(chatID int64, msgID int, text string) error {
	edit := tgbot.NewEditMessageText(chatID, msgID, text)
	edit.ParseMode = tgbot.ModeHTML
	edit.DisableWebPagePreview = true
	_, err := t.bot.Request(edit)
	return err
}

func (t *Telegram) deleteMessage(chatID int64, msgID int) error {
	_, err := t.bot.Request(tgbot.NewDeleteMessage(chatID, msgID))
	return err
}

func (t *Telegram) sendPhoto(chatID int64, png []byte, caption string) error {
	photo := tgbot.NewPhoto(chatID, tgbot.FileBytes{Name: "chart.png", Bytes: png})
	photo.Caption = caption
	photo.ParseMode = tgbot.ModeHTML
	_, err := t.bot.Send(photo)
	return err
}

// Start begins consuming updates. In polling mode it long-polls getUpdates;
// in webhook mode it registers the webhook and updates arrive through WebhookHandler.
func (t *Telegram) Start(ctx context.Context) error {
	if t.cfg.Telegram.Mode == "webhook" {
		wh, err := tgbot.NewWebhook(t.cfg.Telegram.WebhookURL)
		if err != nil {
			return fmt.Errorf("build webhook: %w", err)
		}
		if _, err := t.bot.Request(wh); err != nil {
			return fmt.Errorf("set webhook: %w", err)
		}
		logger.Info("telegram webhook set to %s", t.cfg.Telegram.WebhookURL)
		return nil
	}

	if t.api == nil {
		return fmt.Errorf("polling needs a bot api client")
	}
	// a webhook left over from a hosted run blocks getUpdates
	if _, err := t.bot.Request(tgbot.DeleteWebhookConfig{}); err != nil {
		logger.Warn("delete webhook: %v", err)
	}

	u := tgbot.NewUpdate(0)
	u.Timeout = 30
	updates := t.api.GetUpdatesChan(u)

	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		for update := range updates {
			t.handleUpdate(t.runCtx, update)
		}
	}()
	logger.Info("telegram polling started")
	return nil
}

// WebhookHandler decodes one update per request and dispatches it.
func (t *Telegram) WebhookHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if t.api == nil {
			http.Error(w, "bot not ready", http.StatusServiceUnavailable)
			return
		}
		update, err := t.api.HandleUpdate(r)
		if err != nil {
			logger.Warn("webhook update: %v", err)
			http.Error(w, "bad update", http.StatusBadRequest)
			return
		}

		t.handleUpdate(t.runCtx, *update)
		w.WriteHeader(http.StatusOK)
	})
}

// Stop cancels running commands and waits for them up to ctx's deadline.
func (t *Telegram) Stop(ctx context.Context) {
	if t.api != nil && t.cfg.Telegram.Mode != "webhook" {
		t.api.StopReceivingUpdates()
	}
	t.cancel()

	done := make(chan struct{})
	go func() {
		t.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		logger.Warn("telegram stop: %v", ctx.Err())
	case <-time.After(30 * time.Second):
	}
}

package service

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"scan_bot/internal/models"
	"scan_bot/internal/modules/config"
	"scan_bot/pkg/logger"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

const defaultBaseURL = "https://query1.finance.yahoo.com"

// Client fetches OHLCV candles from the Yahoo chart API.
// Requests are throttled by a token bucket and guarded by a circuit breaker;
// nothing is retried.
type Client struct {
	http      *http.Client
	baseURL   string
	userAgent string

	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
	cache   *Cache

	now func() time.Time
}

// NewClient builds a client from market config; cache may be nil.
func NewClient(cfg config.MarketConfig, cache *Cache) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	limit := rate.Inf
	if cfg.RPS > 0 {
		limit = rate.Limit(cfg.RPS)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}

	failures := cfg.BreakerFailures
	if failures == 0 {
		failures = 5
	}

	st := gobreaker.Settings{
		Name:        "yahoo-chart",
		MaxRequests: cfg.BreakerHalfOpen,
		Timeout:     cfg.BreakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		// a symbol without data or a caller giving up is not a provider fault
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, models.ErrNoData) || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit %s: %s -> %s", name, from, to)
		},
	}

	return &Client{
		http:      &http.Client{Timeout: timeout},
		baseURL:   baseURL,
		userAgent: cfg.UserAgent,
		limiter:   rate.NewLimiter(limit, burst),
		breaker:   gobreaker.NewCircuitBreaker(st),
		cache:     cache,
		now:       time.Now,
	}
}

// Candles returns bars for symbol, oldest first. models.ErrNoData means the
// provider knows nothing for the symbol/interval.
func (c *Client) Candles(ctx context.Context, symbol, interval, period string) ([]models.Candle, error) {
	from, to, err := window(c.now(), interval, period)
	if err != nil {
		return nil, err
	}

	if c.cache != nil {
		cached, ok, err := c.cache.Get(ctx, symbol, interval, period)
		if err != nil {
			logger.Warn("candle cache read %s: %v", symbol, err)
		}
		if ok {
			return cached, nil
		}
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, errors.Wrap(err, "rate limit wait")
	}

	res, err := c.breaker.Execute(func() (interface{}, error) {
		return c.fetch(ctx, symbol, interval, from, to)
	})
	if err != nil {
		return nil, err
	}
	candles := res.([]models.Candle)

	if c.cache != nil {
		if err := c.cache.Set(ctx, symbol, interval, period, candles); err != nil {
			logger.Warn("candle cache write %s: %v", symbol, err)
		}
	}
	return candles, nil
}

func (c *Client) fetch(ctx context.Context, symbol, interval string, from, to time.Time) ([]models.Candle, error) {
	q := url.Values{}
	q.Set("interval", interval)
	q.Set("period1", strconv.FormatInt(from.Unix(), 10))
	q.Set("period2", strconv.FormatInt(to.Unix(), 10))
	q.Set("includePrePost", "false")
	q.Set("events", "div,splits")
	u := fmt.Sprintf("%s/v8/finance/chart/%s?%s", c.baseURL, url.PathEscape(symbol), q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, errors.Wrap(err, "build chart request")
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "chart %s", symbol)
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "read chart %s", symbol)
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, errors.Wrapf(models.ErrNoData, "chart %s", symbol)
	}
	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("chart %s: http %d: %s", symbol, resp.StatusCode, truncate(string(b), 200))
	}

	var r chartResponse
	if err := sonic.Unmarshal(b, &r); err != nil {
		return nil, errors.Wrapf(err, "decode chart %s", symbol)
	}
	if e := r.Chart.Error; e != nil {
		if strings.EqualFold(e.Code, "Not Found") {
			return nil, errors.Wrapf(models.ErrNoData, "chart %s: %s", symbol, e.Description)
		}
		return nil, fmt.Errorf("chart %s: %s: %s", symbol, e.Code, e.Description)
	}
	if len(r.Chart.Result) == 0 {
		return nil, errors.Wrapf(models.ErrNoData, "chart %s: empty result", symbol)
	}

	candles := r.Chart.Result[0].candles()
	if len(candles) == 0 {
		return nil, errors.Wrapf(models.ErrNoData, "chart %s: no bars", symbol)
	}
	return candles, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

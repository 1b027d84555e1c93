package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"scan_bot/internal/models"
	"scan_bot/internal/modules/config"
	"scan_bot/pkg/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	logger.UseNop()
	os.Exit(m.Run())
}

const chartOK = `{"chart":{"result":[{"meta":{"symbol":"THYAO.IS","currency":"TRY"},
"timestamp":[1700000000,1700003600,1700007200,1700010800],
"indicators":{"quote":[{
"open":[10.0,10.5,null,11.0],
"high":[10.6,10.9,null,11.4],
"low":[9.9,10.4,null,10.8],
"close":[10.5,10.8,null,11.2],
"volume":[1000,1500,null,900]}]}}],"error":null}}`

const chartNotFound = `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`

func newTestClient(t *testing.T, h http.HandlerFunc, cache *Cache) (*Client, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		h(w, r)
	}))
	t.Cleanup(srv.Close)

	c := NewClient(config.MarketConfig{
		BaseURL:         srv.URL,
		Timeout:         2 * time.Second,
		BreakerFailures: 3,
		BreakerCooldown: time.Minute,
		UserAgent:       "scan-bot-test",
	}, cache)
	c.now = func() time.Time { return time.Unix(1700100000, 0) }
	return c, &hits
}

func TestCandles(t *testing.T) {
	var gotPath, gotUA string
	var gotQuery map[string][]string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query()
		gotUA = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte(chartOK))
	}, nil)

	candles, err := c.Candles(context.Background(), "THYAO.IS", "60m", "60d")
	require.NoError(t, err)

	assert.Equal(t, "/v8/finance/chart/THYAO.IS", gotPath)
	assert.Equal(t, "60m", gotQuery["interval"][0])
	assert.Equal(t, "1700100000", gotQuery["period2"][0])
	assert.Equal(t, "scan-bot-test", gotUA)

	require.Len(t, candles, 3, "null close row dropped")
	assert.Equal(t, 10.5, candles[0].Close)
	assert.Equal(t, 11.2, candles[2].Close)
	assert.Equal(t, 900.0, candles[2].Volume)
	assert.True(t, candles[0].Time.Before(candles[1].Time))
}

func TestCandlesNoData(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{name: "404", status: http.StatusNotFound, body: chartNotFound},
		{name: "error payload", status: http.StatusOK, body: chartNotFound},
		{name: "empty result", status: http.StatusOK, body: `{"chart":{"result":[],"error":null}}`},
		{name: "no bars", status: http.StatusOK, body: `{"chart":{"result":[{"timestamp":[],"indicators":{"quote":[{}]}}],"error":null}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}, nil)

			_, err := c.Candles(context.Background(), "NOPE.IS", "1d", "180d")
			assert.ErrorIs(t, err, models.ErrNoData)
		})
	}
}

func TestCandlesUnsupportedInterval(t *testing.T) {
	c, hits := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {}, nil)

	_, err := c.Candles(context.Background(), "THYAO.IS", "7m", "60d")

	assert.ErrorIs(t, err, ErrUnsupportedInterval)
	assert.Equal(t, int32(0), hits.Load())
}

func TestCandlesBreakerOpens(t *testing.T) {
	c, hits := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}, nil)

	for range 3 {
		_, err := c.Candles(context.Background(), "THYAO.IS", "1d", "180d")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "http 502")
	}

	_, err := c.Candles(context.Background(), "THYAO.IS", "1d", "180d")
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, int32(3), hits.Load())
}

func TestCandlesNoDataKeepsBreakerClosed(t *testing.T) {
	c, hits := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(chartNotFound))
	}, nil)

	for range 5 {
		_, err := c.Candles(context.Background(), "NOPE.IS", "1d", "180d")
		assert.ErrorIs(t, err, models.ErrNoData)
	}
	assert.Equal(t, int32(5), hits.Load())
}

func TestCandlesCached(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache := NewCache(rdb, "test", time.Minute)

	c, hits := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(chartOK))
	}, cache)

	first, err := c.Candles(context.Background(), "THYAO.IS", "60m", "60d")
	require.NoError(t, err)
	second, err := c.Candles(context.Background(), "THYAO.IS", "60m", "60d")
	require.NoError(t, err)

	assert.Equal(t, int32(1), hits.Load())
	require.Len(t, second, len(first))
	for i := range first {
		assert.True(t, first[i].Time.Equal(second[i].Time))
		assert.Equal(t, first[i].Close, second[i].Close)
		assert.Equal(t, first[i].Volume, second[i].Volume)
	}
	assert.True(t, mr.Exists("test:candles:THYAO.IS:60m:60d"))

	mr.FastForward(2 * time.Minute)
	_, err = c.Candles(context.Background(), "THYAO.IS", "60m", "60d")
	require.NoError(t, err)
	assert.Equal(t, int32(2), hits.Load())
}

func TestCacheMiss(t *testing.T) {
	mr := miniredis.RunT(t)
	cache := NewCache(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "", 0)

	_, ok, err := cache.Get(context.Background(), "X", "1d", "1y")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, mr.Set("scanbot:candles:X:1d:1y", "not json"))
	_, ok, err = cache.Get(context.Background(), "X", "1d", "1y")
	assert.False(t, ok)
	assert.True(t, strings.Contains(err.Error(), "decode cached candles"))
}

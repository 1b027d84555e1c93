package health

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"scan_bot/internal/modules/health/service"
	"scan_bot/internal/scanner"
	"scan_bot/pkg/logger"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	logger.UseNop()
	os.Exit(m.Run())
}

var _ scanner.Observer = (*service.State)(nil)

func TestReadyz(t *testing.T) {
	state := service.NewState()
	mux := NewMux(state)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	state.SetReady(true)
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHealthzReportsLastScan(t *testing.T) {
	state := service.NewState()
	at := time.Unix(1_700_000_000, 0)
	state.ScanFinished(at, 98, 10)

	rec := httptest.NewRecorder()
	NewMux(state).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var snap service.Snapshot
	require.NoError(t, sonic.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Equal(t, at.Unix(), snap.LastScanUnix)
	assert.EqualValues(t, 98, snap.LastTickers)
	assert.EqualValues(t, 10, snap.LastResults)
	assert.EqualValues(t, 1, snap.Scans)
	assert.Equal(t, at, state.LastScan())
}

func TestMetricsEndpoint(t *testing.T) {
	rec := httptest.NewRecorder()
	NewMux(service.NewState()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

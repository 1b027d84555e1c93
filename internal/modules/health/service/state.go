package service

import (
	"sync/atomic"
	"time"
)

type State struct {
	ready     atomic.Bool
	startedAt time.Time

	lastScanUnix atomic.Int64 // unix seconds
	lastTickers  atomic.Int64
	lastResults  atomic.Int64
	scans        atomic.Int64
}

func NewState() *State {
	s := &State{startedAt: time.Now()}
	s.ready.Store(false)
	return s
}

func (s *State) SetReady(v bool) { s.ready.Store(v) }
func (s *State) Ready() bool     { return s.ready.Load() }

// ScanFinished records the outcome of a top request.
func (s *State) ScanFinished(at time.Time, tickers, results int) {
	s.lastTickers.Store(int64(tickers))
	s.lastResults.Store(int64(results))
	s.lastScanUnix.Store(at.Unix())
	s.scans.Add(1)
}

func (s *State) LastScan() time.Time {
	u := s.lastScanUnix.Load()
	if u == 0 {
		return time.Time{}
	}
	return time.Unix(u, 0)
}

// Snapshot is the /healthz payload.
type Snapshot struct {
	Ready        bool  `json:"ready"`
	UptimeSec    int64 `json:"uptimeSec"`
	Scans        int64 `json:"scans"`
	LastScanUnix int64 `json:"lastScanUnix"`
	LastTickers  int64 `json:"lastTickers"`
	LastResults  int64 `json:"lastResults"`
}

func (s *State) Snapshot() Snapshot {
	return Snapshot{
		Ready:        s.Ready(),
		UptimeSec:    int64(s.Uptime().Seconds()),
		Scans:        s.scans.Load(),
		LastScanUnix: s.lastScanUnix.Load(),
		LastTickers:  s.lastTickers.Load(),
		LastResults:  s.lastResults.Load(),
	}
}

func (s *State) Uptime() time.Duration { return time.Since(s.startedAt) }

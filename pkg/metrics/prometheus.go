package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder publishes scan pipeline metrics to Prometheus.
type Recorder struct {
	analyses      *prometheus.CounterVec
	latency       *prometheus.HistogramVec
	scans         *prometheus.CounterVec
	lastScanSize  *prometheus.GaugeVec
	lastScanTotal *prometheus.GaugeVec
}

// New registers the collectors on reg. Pass prometheus.DefaultRegisterer in
// production and a fresh registry in tests.
func New(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		analyses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scanbot_analyses_total",
				Help: "Symbol analyses by outcome (ok, no_data, analyzer_error, timeout)",
			},
			[]string{"outcome"},
		),
		latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "scanbot_analysis_duration_seconds",
				Help:    "Duration of single symbol analyses in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"interval"},
		),
		scans: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scanbot_scans_total",
				Help: "Completed scans per interval",
			},
			[]string{"interval"},
		),
		lastScanSize: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "scanbot_last_scan_results",
				Help: "Successful results in the last scan per interval",
			},
			[]string{"interval"},
		),
		lastScanTotal: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "scanbot_last_scan_tickers",
				Help: "Tickers dispatched in the last scan per interval",
			},
			[]string{"interval"},
		),
	}

	reg.MustRegister(r.analyses, r.latency, r.scans, r.lastScanSize, r.lastScanTotal)
	return r
}

// ObserveAnalysis records one analyzer call.
func (r *Recorder) ObserveAnalysis(interval, outcome string, d time.Duration) {
	r.analyses.WithLabelValues(outcome).Inc()
	r.latency.WithLabelValues(interval).Observe(d.Seconds())
}

// ObserveScan records a completed scan.
func (r *Recorder) ObserveScan(interval string, dispatched, succeeded int) {
	r.scans.WithLabelValues(interval).Inc()
	r.lastScanTotal.WithLabelValues(interval).Set(float64(dispatched))
	r.lastScanSize.WithLabelValues(interval).Set(float64(succeeded))
}

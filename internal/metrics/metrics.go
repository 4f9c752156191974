package metrics

import (
	"github.com/aleister1102/fleetvoice/internal/models"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "fleetvoice"

// Cycle result labels.
const (
	CycleOK      = "ok"
	CyclePartial = "partial"
	CycleAborted = "aborted"
)

// Metrics holds the application's collectors. It observes refresh cycles.
type Metrics struct {
	lookups          *prometheus.CounterVec
	cycles           *prometheus.CounterVec
	cycleDuration    prometheus.Histogram
	browserProcesses prometheus.Gauge
}

// New registers all collectors on reg. cacheLen backs the cache size gauge
// and is read on every scrape.
func New(reg prometheus.Registerer, cacheLen func() int) *Metrics {
	m := &Metrics{
		lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lookups_total",
			Help:      "Entity lookups by entity, final source and outcome.",
		}, []string{"entity", "source", "outcome"}),
		cycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refresh_cycles_total",
			Help:      "Refresh cycles by result.",
		}, []string{"result"}),
		cycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "refresh_duration_seconds",
			Help:      "Wall-clock duration of refresh cycles.",
			Buckets:   []float64{1, 5, 10, 20, 30, 60, 120, 300},
		}),
		browserProcesses: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "browser_processes",
			Help:      "Browser processes still alive after the last cycle.",
		}),
	}

	reg.MustRegister(m.lookups, m.cycles, m.cycleDuration, m.browserProcesses)
	if cacheLen != nil {
		reg.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "cache_entries",
			Help:      "Entities with a cached result.",
		}, func() float64 { return float64(cacheLen()) }))
	}
	return m
}

func (m *Metrics) LookupFinished(result models.LookupResult) {
	source := result.Source
	if source == "" {
		source = "none"
	}
	m.lookups.WithLabelValues(result.EntityID, source, result.Outcome.String()).Inc()
}

func (m *Metrics) CycleFinished(report models.RefreshReport) {
	m.cycles.WithLabelValues(CycleResult(report)).Inc()
	if d := report.Duration(); d > 0 {
		m.cycleDuration.Observe(d.Seconds())
	}
}

// SetBrowserProcesses records the live browser process count.
func (m *Metrics) SetBrowserProcesses(n int) {
	m.browserProcesses.Set(float64(n))
}

// CycleResult labels a report as ok, partial or aborted.
func CycleResult(report models.RefreshReport) string {
	switch {
	case report.Fatal != "":
		return CycleAborted
	case report.FoundCount() == len(report.Results):
		return CycleOK
	default:
		return CyclePartial
	}
}

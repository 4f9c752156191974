package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/aleister1102/fleetvoice/internal/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_LookupFinished(t *testing.T) {
	m := New(prometheus.NewRegistry(), nil)

	m.LookupFinished(models.Found("bus-1", "primary", "X"))
	m.LookupFinished(models.Found("bus-1", "primary", "X"))
	m.LookupFinished(models.Failed("bus-2", "", models.OutcomeError, "auth"))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.lookups.WithLabelValues("bus-1", "primary", "found")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.lookups.WithLabelValues("bus-2", "none", "error")))
}

func TestMetrics_CycleFinished(t *testing.T) {
	m := New(prometheus.NewRegistry(), nil)
	start := time.Now()

	m.CycleFinished(models.RefreshReport{
		StartedAt:  start,
		FinishedAt: start.Add(3 * time.Second),
		Results:    []models.LookupResult{models.Found("bus-1", "a", "X")},
	})
	m.CycleFinished(models.RefreshReport{
		StartedAt:  start,
		FinishedAt: start.Add(time.Second),
		Results:    []models.LookupResult{models.Found("bus-1", "a", "X"), models.Failed("bus-2", "a", models.OutcomeNotFound, "absent")},
	})
	m.CycleFinished(models.RefreshReport{Fatal: "browser launch failed"})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.cycles.WithLabelValues(CycleOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.cycles.WithLabelValues(CyclePartial)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.cycles.WithLabelValues(CycleAborted)))
	assert.Equal(t, 1, testutil.CollectAndCount(m.cycleDuration))
}

func TestMetrics_GaugesExposition(t *testing.T) {
	reg := prometheus.NewRegistry()
	entries := 3
	m := New(reg, func() int { return entries })

	m.SetBrowserProcesses(0)

	expected := `
# HELP fleetvoice_browser_processes Browser processes still alive after the last cycle.
# TYPE fleetvoice_browser_processes gauge
fleetvoice_browser_processes 0
# HELP fleetvoice_cache_entries Entities with a cached result.
# TYPE fleetvoice_cache_entries gauge
fleetvoice_cache_entries 3
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected),
		"fleetvoice_browser_processes", "fleetvoice_cache_entries"))
}

func TestCycleResult(t *testing.T) {
	assert.Equal(t, CycleOK, CycleResult(models.RefreshReport{}))
	assert.Equal(t, CycleAborted, CycleResult(models.RefreshReport{Fatal: "x"}))
}

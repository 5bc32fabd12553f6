package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.BrewOpened()
	m.BrewOpened()
	m.BrewClosed()
	m.BrewCompleted()
	m.Tick()
	m.StepAdvanced()
	m.Control("start")
	m.Generation(ResultOK, time.Second)
	m.Generation(ResultDisabled, 0)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.brewsOpened))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.brewsActive))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.brewsCompleted))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.controls.WithLabelValues("start")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.generations.WithLabelValues(ResultDisabled)))

	n, err := testutil.GatherAndCount(reg, "ottobrew_recipe_generation_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.BrewOpened()
		m.Tick()
		m.Generation(ResultFailed, time.Second)
	})
}

// Package metrics holds the Prometheus collectors. A nil *Metrics is valid
// and records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Generation results.
const (
	ResultOK       = "ok"
	ResultInvalid  = "invalid"
	ResultFailed   = "failed"
	ResultDisabled = "disabled"
)

// Metrics groups the application collectors.
type Metrics struct {
	brewsOpened    prometheus.Counter
	brewsCompleted prometheus.Counter
	brewsActive    prometheus.Gauge
	ticks          prometheus.Counter
	stepAdvances   prometheus.Counter
	controls       *prometheus.CounterVec
	generations    *prometheus.CounterVec
	genDuration    prometheus.Histogram
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		brewsOpened: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ottobrew_brews_opened_total",
			Help: "Total number of brews opened",
		}),
		brewsCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ottobrew_brews_completed_total",
			Help: "Total number of brews that ran to completion",
		}),
		brewsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ottobrew_brews_active",
			Help: "Brews currently open",
		}),
		ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ottobrew_countdown_ticks_total",
			Help: "Countdown ticks delivered across all brews",
		}),
		stepAdvances: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ottobrew_step_advances_total",
			Help: "Automatic advances to the next brewing step",
		}),
		controls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ottobrew_brew_controls_total",
			Help: "Brew control operations by action",
		}, []string{"action"}),
		generations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ottobrew_recipe_generations_total",
			Help: "AI recipe generation requests by result",
		}, []string{"result"}),
		genDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "ottobrew_recipe_generation_duration_seconds",
			Help:    "Duration of AI recipe generation calls",
			Buckets: prometheus.ExponentialBuckets(0.25, 2, 8),
		}),
	}
	reg.MustRegister(
		m.brewsOpened,
		m.brewsCompleted,
		m.brewsActive,
		m.ticks,
		m.stepAdvances,
		m.controls,
		m.generations,
		m.genDuration,
	)
	return m
}

// BrewOpened records a new open brew.
func (m *Metrics) BrewOpened() {
	if m == nil {
		return
	}
	m.brewsOpened.Inc()
	m.brewsActive.Inc()
}

// BrewClosed records a brew being released.
func (m *Metrics) BrewClosed() {
	if m == nil {
		return
	}
	m.brewsActive.Dec()
}

// BrewCompleted records a countdown reaching its last second.
func (m *Metrics) BrewCompleted() {
	if m == nil {
		return
	}
	m.brewsCompleted.Inc()
}

// Tick records one countdown second.
func (m *Metrics) Tick() {
	if m == nil {
		return
	}
	m.ticks.Inc()
}

// StepAdvanced records an automatic step change.
func (m *Metrics) StepAdvanced() {
	if m == nil {
		return
	}
	m.stepAdvances.Inc()
}

// Control records a start/pause/resume/reset call.
func (m *Metrics) Control(action string) {
	if m == nil {
		return
	}
	m.controls.WithLabelValues(action).Inc()
}

// Generation records one generation call and how long it took.
func (m *Metrics) Generation(result string, took time.Duration) {
	if m == nil {
		return
	}
	m.generations.WithLabelValues(result).Inc()
	if result != ResultDisabled {
		m.genDuration.Observe(took.Seconds())
	}
}

// Package metrics exposes engine activity as Prometheus metrics.
//
// A Collector owns a private registry so several engines (and tests) never
// share counters. The CLI writes the registry to a node-exporter textfile
// on exit; there is no HTTP listener.
//
// All methods are safe on a nil *Collector, which records nothing.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "sweep"

// Collector holds the engine's metrics.
type Collector struct {
	registry      *prometheus.Registry
	actions       *prometheus.CounterVec
	gamesFinished *prometheus.CounterVec
	cellsRevealed prometheus.Counter
	counterValue  prometheus.Gauge
}

// New creates a Collector with its own registry.
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		actions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "actions_total",
			Help:      "Actions dispatched, by action URI and outcome case.",
		}, []string{"action", "outcome"}),
		gamesFinished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "games_finished_total",
			Help:      "Games that ended, by final status.",
		}, []string{"status"}),
		cellsRevealed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cells_revealed_total",
			Help:      "Cells opened by reveals, including flood fill.",
		}),
		counterValue: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "counter_value",
			Help:      "Current value of the counter container.",
		}),
	}
	c.registry.MustRegister(c.actions, c.gamesFinished, c.cellsRevealed, c.counterValue)
	return c
}

// Registry returns the registry backing c.
func (c *Collector) Registry() *prometheus.Registry {
	if c == nil {
		return nil
	}
	return c.registry
}

// ObserveAction counts one dispatched action.
func (c *Collector) ObserveAction(action, outcome string) {
	if c == nil {
		return
	}
	c.actions.WithLabelValues(action, outcome).Inc()
}

// GameFinished counts a game reaching a terminal status.
func (c *Collector) GameFinished(status string) {
	if c == nil {
		return
	}
	c.gamesFinished.WithLabelValues(status).Inc()
}

// CellsRevealed adds n newly opened cells. Non-positive n is ignored.
func (c *Collector) CellsRevealed(n int) {
	if c == nil || n <= 0 {
		return
	}
	c.cellsRevealed.Add(float64(n))
}

// SetCounter records the counter's current value.
func (c *Collector) SetCounter(v int) {
	if c == nil {
		return
	}
	c.counterValue.Set(float64(v))
}

// WriteTextfile writes all metrics to path in the Prometheus text format.
// The write is atomic: a temporary file is renamed into place.
func (c *Collector) WriteTextfile(path string) error {
	if c == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, c.registry); err != nil {
		return fmt.Errorf("write metrics to %s: %w", path, err)
	}
	return nil
}

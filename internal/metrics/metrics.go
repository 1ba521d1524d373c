// Package metrics instruments test invocations with Prometheus collectors.
//
// faircheck is a batch tool, so collectors live in a private registry that
// can be written to a node_exporter textfile at the end of a run.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const Namespace = "faircheck"

// Outcome classifies one invocation.
type Outcome string

const (
	OutcomePass     Outcome = "pass"
	OutcomeFail     Outcome = "fail"
	OutcomeUnusable Outcome = "unusable"
)

// Recorder receives invocation and run observations.
type Recorder interface {
	ObserveInvocation(test string, outcome Outcome, elapsed time.Duration)
	ObserveRun(resources, activeTests, dropped int)
}

// Noop discards all observations.
type Noop struct{}

func (Noop) ObserveInvocation(string, Outcome, time.Duration) {}
func (Noop) ObserveRun(int, int, int)                         {}

// Metrics is a Recorder backed by Prometheus collectors.
type Metrics struct {
	registry *prometheus.Registry

	invocationsTotal   *prometheus.CounterVec
	invocationDuration *prometheus.HistogramVec
	resources          prometheus.Gauge
	activeTests        prometheus.Gauge
	droppedPairs       prometheus.Gauge
	lastRun            prometheus.Gauge
}

// New creates Metrics registered in a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		invocationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "invocations_total",
			Help:      "Count of maturity indicator test invocations",
		}, []string{
			"test",
			"outcome",
		}),
		invocationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "invocation_duration_seconds",
			Help:      "Latency of maturity indicator test invocations",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
		}, []string{
			"test",
		}),
		resources: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "resources",
			Help:      "Number of resources evaluated in the last run",
		}),
		activeTests: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "active_tests",
			Help:      "Number of tests with at least one usable result in the last run",
		}),
		droppedPairs: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "dropped_pairs",
			Help:      "Number of resource/test pairs excluded because of unusable responses",
		}),
		lastRun: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last run completed",
		}),
	}
}

// ObserveInvocation counts one invocation and its latency.
func (m *Metrics) ObserveInvocation(test string, outcome Outcome, elapsed time.Duration) {
	m.invocationsTotal.WithLabelValues(test, string(outcome)).Inc()
	m.invocationDuration.WithLabelValues(test).Observe(elapsed.Seconds())
}

// ObserveRun records the totals of a completed run.
func (m *Metrics) ObserveRun(resources, activeTests, dropped int) {
	m.resources.Set(float64(resources))
	m.activeTests.Set(float64(activeTests))
	m.droppedPairs.Set(float64(dropped))
	m.lastRun.SetToCurrentTime()
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile writes all collected metrics in the text exposition format.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("writing metrics to %s: %w", path, err)
	}
	return nil
}

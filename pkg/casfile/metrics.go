// Copyright © 2018 One Concern

package casfile

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	resultPublished = "published"
	resultConflict  = "conflict"
	resultError     = "error"
)

// Metrics collects statistics about publications and updates.
//
// A nil *Metrics is valid and collects nothing.
type Metrics struct {
	publish   *prometheus.CounterVec
	ambiguous prometheus.Counter
	attempts  prometheus.Histogram
}

// NewMetrics builds the casfile metrics and registers them.
//
// Collectors already registered on reg (e.g. by another store) are reused.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		publish: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "casfile",
			Name:      "publish_total",
			Help:      "Attempts to publish a new version, by result",
		}, []string{"result"}),
		ambiguous: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "casfile",
			Name:      "ambiguous_link_total",
			Help:      "Link errors resolved as successful publications after checking the link count",
		}),
		attempts: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "casfile",
			Name:      "update_attempts",
			Help:      "Number of attempts needed by an update to publish its version",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 8), // 1 to 128
		}),
	}
	if reg == nil {
		return m, nil
	}

	var err error
	if m.publish, err = register(reg, m.publish); err != nil {
		return nil, err
	}
	if m.ambiguous, err = register(reg, m.ambiguous); err != nil {
		return nil, err
	}
	if m.attempts, err = register(reg, m.attempts); err != nil {
		return nil, err
	}
	return m, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		are, ok := err.(prometheus.AlreadyRegisteredError)
		if !ok {
			return c, err
		}
		existing, ok := are.ExistingCollector.(C)
		if !ok {
			return c, err
		}
		return existing, nil
	}
	return c, nil
}

func (m *Metrics) incPublish(result string) {
	if m == nil {
		return
	}
	m.publish.WithLabelValues(result).Inc()
}

func (m *Metrics) incAmbiguous() {
	if m == nil {
		return
	}
	m.ambiguous.Inc()
}

func (m *Metrics) observeAttempts(n int) {
	if m == nil {
		return
	}
	m.attempts.Observe(float64(n))
}

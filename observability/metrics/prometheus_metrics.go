// Package metrics provides the Prometheus implementation of types.Metrics.
package metrics

import (
	"errors"
	"fmt"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusMetrics implements types.Metrics with one collector set per
// component, prefixed by a sanitised component name.
type PrometheusMetrics struct {
	prefix string

	processedTotal    *prometheus.CounterVec
	errorsTotal       *prometheus.CounterVec
	durationSeconds   *prometheus.HistogramVec
	responseSizeBytes *prometheus.HistogramVec
	inProgress        *prometheus.GaugeVec
}

// New creates the collectors for prefix and registers them on reg
// (prometheus.DefaultRegisterer when nil). If an identical collector is
// already registered, for example because two providers share a registry,
// the existing collector is reused instead of panicking.
//
// Collectors:
//   - {prefix}_processed_total{status,type}
//   - {prefix}_errors_total{error_type,operation}
//   - {prefix}_duration_seconds{operation}
//   - {prefix}_response_size_bytes{operation}
//   - {prefix}_in_progress{operation}
func New(prefix string, reg prometheus.Registerer) *PrometheusMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	prefix = SanitizeName(prefix)

	m := &PrometheusMetrics{prefix: prefix}

	m.processedTotal = register(reg, prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_processed_total",
			Help: fmt.Sprintf("Total operations handled by %s", prefix),
		},
		[]string{"status", "type"},
	))

	m.errorsTotal = register(reg, prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_errors_total",
			Help: fmt.Sprintf("Total errors in %s", prefix),
		},
		[]string{"error_type", "operation"},
	))

	// Health calls are bounded by a 10s default timeout; buckets stop a
	// little past that.
	m.durationSeconds = register(reg, prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_duration_seconds",
			Help:    fmt.Sprintf("Operation duration in %s", prefix),
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15},
		},
		[]string{"operation"},
	))

	// 128B .. 1MB
	m.responseSizeBytes = register(reg, prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_response_size_bytes",
			Help:    fmt.Sprintf("Response body sizes seen by %s", prefix),
			Buckets: prometheus.ExponentialBuckets(128, 4, 7),
		},
		[]string{"operation"},
	))

	m.inProgress = register(reg, prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: prefix + "_in_progress",
			Help: fmt.Sprintf("Operations in progress in %s", prefix),
		},
		[]string{"operation"},
	))

	return m
}

// register registers c on reg, returning the already registered collector
// when an equal one exists. Any other registration error panics, as
// MustRegister would.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing
			}
		}
		panic(err)
	}
	return c
}

// SanitizeName maps name onto the Prometheus metric name alphabet.
func SanitizeName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for i, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_':
			b.WriteRune(r)
		case r >= '0' && r <= '9':
			if i == 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "healthdash"
	}
	return b.String()
}

// Prefix returns the sanitised metric name prefix.
func (m *PrometheusMetrics) Prefix() string {
	return m.prefix
}

// RecordSuccess increments {prefix}_processed_total{status="success"}.
func (m *PrometheusMetrics) RecordSuccess(operation string) {
	m.processedTotal.WithLabelValues("success", operation).Inc()
}

// RecordError increments both the processed counter (status="error") and the
// detailed error counter.
func (m *PrometheusMetrics) RecordError(operation string, errorType string) {
	m.processedTotal.WithLabelValues("error", operation).Inc()
	m.errorsTotal.WithLabelValues(errorType, operation).Inc()
}

// RecordDuration observes seconds in the duration histogram.
func (m *PrometheusMetrics) RecordDuration(operation string, seconds float64) {
	m.durationSeconds.WithLabelValues(operation).Observe(seconds)
}

// RecordResponseSize observes bytes in the response size histogram.
func (m *PrometheusMetrics) RecordResponseSize(operation string, bytes int64) {
	m.responseSizeBytes.WithLabelValues(operation).Observe(float64(bytes))
}

// StartOperation increments the in-progress gauge.
//
//	m.StartOperation("monitor")
//	defer m.EndOperation("monitor")
func (m *PrometheusMetrics) StartOperation(operation string) {
	m.inProgress.WithLabelValues(operation).Inc()
}

// EndOperation decrements the in-progress gauge.
func (m *PrometheusMetrics) EndOperation(operation string) {
	m.inProgress.WithLabelValues(operation).Dec()
}

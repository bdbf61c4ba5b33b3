// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package metrics holds the Prometheus collectors of the service. All
// collectors are registered on a caller-supplied registry so tests can use
// a fresh one.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "medaudio"

// Metrics groups the application collectors.
type Metrics struct {
	gatherer prometheus.Gatherer

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	cacheHits          *prometheus.CounterVec
	cacheMisses        *prometheus.CounterVec
	cacheInvalidations *prometheus.CounterVec

	validationFailures *prometheus.CounterVec
	inconsistentAudio  prometheus.Gauge
	audioFixes         *prometheus.CounterVec
}

// New creates the collectors and registers them on reg.
func New(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		gatherer: reg,
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		cacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "category_cache_hits_total",
			Help:      "Category cache hits by cache.",
		}, []string{"cache"}),
		cacheMisses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "category_cache_misses_total",
			Help:      "Category cache misses by cache.",
		}, []string{"cache"}),
		cacheInvalidations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "category_cache_invalidations_total",
			Help:      "Category cache invalidations by write operation.",
		}, []string{"operation"}),
		validationFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "category_validation_failures_total",
			Help:      "Rejected category writes by error code.",
		}, []string{"code"}),
		inconsistentAudio: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "audio_inconsistent",
			Help:      "Audio records with inconsistent category fields in the last report.",
		}),
		audioFixes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audio_fixes_total",
			Help:      "Audio category repairs by outcome.",
		}, []string{"outcome"}),
	}

	reg.MustRegister(
		m.httpRequests, m.httpDuration,
		m.cacheHits, m.cacheMisses, m.cacheInvalidations,
		m.validationFailures, m.inconsistentAudio, m.audioFixes,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// ObserveRequest records one served HTTP request.
func (m *Metrics) ObserveRequest(method, route string, status int, d time.Duration) {
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func (m *Metrics) CacheHit(cache string)  { m.cacheHits.WithLabelValues(cache).Inc() }
func (m *Metrics) CacheMiss(cache string) { m.cacheMisses.WithLabelValues(cache).Inc() }

func (m *Metrics) CacheInvalidated(op string) {
	m.cacheInvalidations.WithLabelValues(op).Inc()
}

// ValidationFailed counts a rejected write for each error code.
func (m *Metrics) ValidationFailed(codes ...string) {
	for _, c := range codes {
		m.validationFailures.WithLabelValues(c).Inc()
	}
}

// SetInconsistent publishes the inconsistent count of the latest report.
func (m *Metrics) SetInconsistent(n int) {
	m.inconsistentAudio.Set(float64(n))
}

// AudioFixes adds the outcome of a batch repair.
func (m *Metrics) AudioFixes(changed, failed int) {
	m.audioFixes.WithLabelValues("changed").Add(float64(changed))
	m.audioFixes.WithLabelValues("failed").Add(float64(failed))
}

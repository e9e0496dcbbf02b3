// Package metrics содержит prometheus метрики клиента и сервера.
// Все методы Observe* безопасны для nil получателя.
package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "clinicsync"

// SyncMetrics метрики прохода синхронизации на клиенте
type SyncMetrics struct {
	passes       *prometheus.CounterVec
	entries      *prometheus.CounterVec
	passDuration prometheus.Histogram
	pending      prometheus.Gauge
}

func NewSyncMetrics(reg prometheus.Registerer) *SyncMetrics {
	m := &SyncMetrics{
		passes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "passes_total",
			Help:      "Sync passes by outcome",
		}, []string{"outcome"}),
		entries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "entries_total",
			Help:      "Outbox entries processed by kind and outcome",
		}, []string{"kind", "outcome"}),
		passDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "pass_duration_seconds",
			Help:      "Duration of a sync pass",
			Buckets:   prometheus.DefBuckets,
		}),
		pending: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "outbox_pending",
			Help:      "Entries left in the outbox after the last pass",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.passes, m.entries, m.passDuration, m.pending)
	return m
}

func (m *SyncMetrics) ObservePass(outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.passes.WithLabelValues(outcome).Inc()
	if outcome != "skipped" {
		m.passDuration.Observe(seconds)
	}
}

func (m *SyncMetrics) ObserveEntry(kind, outcome string) {
	if m == nil {
		return
	}
	m.entries.WithLabelValues(kind, outcome).Inc()
}

func (m *SyncMetrics) SetPending(n int) {
	if m == nil {
		return
	}
	m.pending.Set(float64(n))
}

// HTTPMetrics метрики HTTP сервера
type HTTPMetrics struct {
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

func NewHTTPMetrics(reg prometheus.Registerer) *HTTPMetrics {
	m := &HTTPMetrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, route and status code",
		}, []string{"method", "route", "code"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.requests, m.latency)
	return m
}

func (m *HTTPMetrics) ObserveRequest(method, route, code string, seconds float64) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method, route, code).Inc()
	m.latency.WithLabelValues(method, route).Observe(seconds)
}

// RelayMetrics метрики отправки WhatsApp сообщений
type RelayMetrics struct {
	sent     *prometheus.CounterVec
	attempts prometheus.Counter
}

func NewRelayMetrics(reg prometheus.Registerer) *RelayMetrics {
	m := &RelayMetrics{
		sent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "relay",
			Name:      "messages_total",
			Help:      "Messages handed to the WhatsApp relay by status",
		}, []string{"status"}),
		attempts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "relay",
			Name:      "attempts_total",
			Help:      "HTTP attempts made against the relay, retries included",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.sent, m.attempts)
	return m
}

func (m *RelayMetrics) ObserveMessage(status string) {
	if m == nil {
		return
	}
	m.sent.WithLabelValues(status).Inc()
}

func (m *RelayMetrics) ObserveAttempt() {
	if m == nil {
		return
	}
	m.attempts.Inc()
}

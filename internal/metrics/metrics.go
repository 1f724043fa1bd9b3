// Package metrics exposes Prometheus instrumentation for the admin client's
// own RPCs: requests by type, pool behavior, and the async backoff driver.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds every Prometheus metric the admin client records.
type Metrics struct {
	RequestsTotal    *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	RequestErrors    *prometheus.CounterVec

	PoolCheckouts    prometheus.Counter
	PoolCheckoutWait prometheus.Histogram
	PoolDiscards     prometheus.Counter
	PoolIdleConns    prometheus.Gauge

	StreamEntriesSent     prometheus.Counter
	StreamEntriesReceived prometheus.Counter

	AsyncPolls     prometheus.Counter
	AsyncWaits     prometheus.Histogram
	AsyncTimeouts  prometheus.Counter
}

var global *Metrics

// NewMetrics creates and registers every metric under the pairdb/admin
// namespace, labeled with the client instance's own identifier. Prometheus
// collectors live in the default registry for the life of the process, so
// the first call wins and later calls reuse it rather than panicking on a
// duplicate registration.
func NewMetrics(clientID string) *Metrics {
	if global != nil {
		return global
	}

	labels := prometheus.Labels{"client_id": clientID}

	global = &Metrics{
		RequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace:   "pairdb",
			Subsystem:   "admin_client",
			Name:        "requests_total",
			Help:        "Total number of admin RPCs sent, by request type",
			ConstLabels: labels,
		}, []string{"type"}),
		RequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   "pairdb",
			Subsystem:   "admin_client",
			Name:        "request_duration_seconds",
			Help:        "Histogram of admin RPC durations, by request type",
			ConstLabels: labels,
			Buckets:     prometheus.DefBuckets,
		}, []string{"type"}),
		RequestErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace:   "pairdb",
			Subsystem:   "admin_client",
			Name:        "request_errors_total",
			Help:        "Total number of admin RPC failures, by request type and error code",
			ConstLabels: labels,
		}, []string{"type", "code"}),

		PoolCheckouts: promauto.NewCounter(prometheus.CounterOpts{
			Namespace:   "pairdb",
			Subsystem:   "admin_client",
			Name:        "pool_checkouts_total",
			Help:        "Total number of connection pool checkouts",
			ConstLabels: labels,
		}),
		PoolCheckoutWait: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace:   "pairdb",
			Subsystem:   "admin_client",
			Name:        "pool_checkout_wait_seconds",
			Help:        "Histogram of time spent waiting for a free pooled connection",
			ConstLabels: labels,
			Buckets:     prometheus.DefBuckets,
		}),
		PoolDiscards: promauto.NewCounter(prometheus.CounterOpts{
			Namespace:   "pairdb",
			Subsystem:   "admin_client",
			Name:        "pool_discards_total",
			Help:        "Total number of pooled connections discarded instead of reused",
			ConstLabels: labels,
		}),
		PoolIdleConns: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace:   "pairdb",
			Subsystem:   "admin_client",
			Name:        "pool_idle_connections",
			Help:        "Current number of idle pooled connections across every destination",
			ConstLabels: labels,
		}),

		StreamEntriesSent: promauto.NewCounter(prometheus.CounterOpts{
			Namespace:   "pairdb",
			Subsystem:   "admin_client",
			Name:        "stream_entries_sent_total",
			Help:        "Total number of partition entries sent via UpdateEntries",
			ConstLabels: labels,
		}),
		StreamEntriesReceived: promauto.NewCounter(prometheus.CounterOpts{
			Namespace:   "pairdb",
			Subsystem:   "admin_client",
			Name:        "stream_entries_received_total",
			Help:        "Total number of partition entries received via FetchEntries/FetchKeys",
			ConstLabels: labels,
		}),

		AsyncPolls: promauto.NewCounter(prometheus.CounterOpts{
			Namespace:   "pairdb",
			Subsystem:   "admin_client",
			Name:        "async_polls_total",
			Help:        "Total number of GetAsyncRequestStatus polls issued by WaitForCompletion",
			ConstLabels: labels,
		}),
		AsyncWaits: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace:   "pairdb",
			Subsystem:   "admin_client",
			Name:        "async_wait_seconds",
			Help:        "Histogram of total time WaitForCompletion spent polling",
			ConstLabels: labels,
			Buckets:     prometheus.ExponentialBuckets(0.25, 4, 6),
		}),
		AsyncTimeouts: promauto.NewCounter(prometheus.CounterOpts{
			Namespace:   "pairdb",
			Subsystem:   "admin_client",
			Name:        "async_timeouts_total",
			Help:        "Total number of WaitForCompletion calls that hit maxWait",
			ConstLabels: labels,
		}),
	}
	return global
}

// RecordRequest records one completed admin RPC.
func (m *Metrics) RecordRequest(requestType string, duration float64) {
	m.RequestsTotal.WithLabelValues(requestType).Inc()
	m.RequestDuration.WithLabelValues(requestType).Observe(duration)
}

// RecordRequestError records one failed admin RPC.
func (m *Metrics) RecordRequestError(requestType, code string) {
	m.RequestErrors.WithLabelValues(requestType, code).Inc()
}

// RecordCheckout records one pool checkout and how long it waited for a
// free connection.
func (m *Metrics) RecordCheckout(waitSeconds float64) {
	m.PoolCheckouts.Inc()
	m.PoolCheckoutWait.Observe(waitSeconds)
}

// RecordDiscard records one pooled connection being discarded on checkin.
func (m *Metrics) RecordDiscard() {
	m.PoolDiscards.Inc()
}

// SetIdleConns reports the pool's current idle connection count.
func (m *Metrics) SetIdleConns(n int) {
	m.PoolIdleConns.Set(float64(n))
}

// RecordEntriesSent adds n to the UpdateEntries entry counter.
func (m *Metrics) RecordEntriesSent(n int) {
	m.StreamEntriesSent.Add(float64(n))
}

// RecordEntriesReceived adds n to the FetchEntries/FetchKeys entry counter.
func (m *Metrics) RecordEntriesReceived(n int) {
	m.StreamEntriesReceived.Add(float64(n))
}

// RecordAsyncPoll records one WaitForCompletion poll.
func (m *Metrics) RecordAsyncPoll() {
	m.AsyncPolls.Inc()
}

// RecordAsyncWait records the total time a WaitForCompletion call spent
// polling, regardless of whether it completed or timed out.
func (m *Metrics) RecordAsyncWait(seconds float64, timedOut bool) {
	m.AsyncWaits.Observe(seconds)
	if timedOut {
		m.AsyncTimeouts.Inc()
	}
}

// Package services – Metrics
//
// Running counters for the notification pipeline. The same events feed two
// sinks: cheap in-process atomics that back the health snapshot endpoint,
// and Prometheus collectors for scraping. Counters are cumulative since
// process start; the health snapshot derives rates from them.
package services

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	notificationsCreatedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "pharmacy_alerts_notifications_created_total",
		Help: "Notifications persisted after passing the dedup check.",
	})
	notificationsDeduplicatedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "pharmacy_alerts_notifications_deduplicated_total",
		Help: "Notification attempts suppressed by the cooldown ledger.",
	})
	notificationsFailedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "pharmacy_alerts_notifications_failed_total",
		Help: "Notification attempts that failed on a store error.",
	})
	notificationCreateSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "pharmacy_alerts_notification_create_seconds",
		Help:    "Latency of successful notification creations.",
		Buckets: prometheus.DefBuckets,
	})
)

func init() {
	prometheus.MustRegister(
		notificationsCreatedTotal,
		notificationsDeduplicatedTotal,
		notificationsFailedTotal,
		notificationCreateSeconds,
	)
}

// Metrics accumulates pipeline counters. The zero value is NOT usable;
// construct with NewMetrics.
type Metrics struct {
	created      atomic.Int64
	deduplicated atomic.Int64
	failed       atomic.Int64

	mu          sync.Mutex
	avgCreateNs float64
}

// MetricsSnapshot is a point-in-time view of the counters.
type MetricsSnapshot struct {
	Created         int64
	Deduplicated    int64
	Failed          int64
	FailureRate     float64
	AvgCreateTimeMs float64
}

// NewMetrics returns an empty counter set.
func NewMetrics() *Metrics {
	return &Metrics{}
}

// RecordCreated counts one successful creation and its latency.
// The latency average halves the previous value into each new sample,
// so recent creations dominate the reading.
func (m *Metrics) RecordCreated(d time.Duration) {
	m.created.Add(1)
	m.mu.Lock()
	m.avgCreateNs = (m.avgCreateNs + float64(d.Nanoseconds())) / 2
	m.mu.Unlock()
	notificationsCreatedTotal.Inc()
	notificationCreateSeconds.Observe(d.Seconds())
}

// RecordCreatedBatch counts n creations sharing one bulk-insert latency.
// The whole batch is one latency sample.
func (m *Metrics) RecordCreatedBatch(n int, d time.Duration) {
	if n <= 0 {
		return
	}
	m.created.Add(int64(n))
	m.mu.Lock()
	m.avgCreateNs = (m.avgCreateNs + float64(d.Nanoseconds())) / 2
	m.mu.Unlock()
	notificationsCreatedTotal.Add(float64(n))
	notificationCreateSeconds.Observe(d.Seconds())
}

// RecordDeduplicated counts one suppressed attempt.
func (m *Metrics) RecordDeduplicated() {
	m.deduplicated.Add(1)
	notificationsDeduplicatedTotal.Inc()
}

// RecordFailed counts one attempt lost to a store error.
func (m *Metrics) RecordFailed() {
	m.failed.Add(1)
	notificationsFailedTotal.Inc()
}

// Snapshot returns current totals plus derived rates.
func (m *Metrics) Snapshot() MetricsSnapshot {
	created := m.created.Load()
	failed := m.failed.Load()

	m.mu.Lock()
	avgNs := m.avgCreateNs
	m.mu.Unlock()

	s := MetricsSnapshot{
		Created:         created,
		Deduplicated:    m.deduplicated.Load(),
		Failed:          failed,
		AvgCreateTimeMs: avgNs / float64(time.Millisecond),
	}
	if created+failed > 0 {
		s.FailureRate = float64(failed) / float64(created+failed)
	}
	return s
}

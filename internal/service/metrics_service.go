package service

import (
	"fmt"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/placement-api/internal/models"
)

// Reminder outcomes recorded per processed interview.
const (
	ReminderOutcomeNotified = "notified"
	ReminderOutcomeFailed   = "failed"
	ReminderOutcomeRaced    = "already_notified"
	ReminderOutcomePanicked = "panicked"
)

// MetricsService encapsulates Prometheus instrumentation for HTTP traffic, caching and the interview pipeline.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheLatency    prometheus.Observer
	cacheWrite      prometheus.Observer
	cacheHitRatio   prometheus.Gauge
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter

	notifications    *prometheus.CounterVec
	partialFailures  *prometheus.CounterVec
	tickDuration     prometheus.Histogram
	reminderOutcomes *prometheus.CounterVec
	missingReference prometheus.Counter

	cacheHitCount  uint64
	cacheMissCount uint64
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	cacheLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_latency_seconds",
		Help:    "Latency for cache operations",
		Buckets: prometheus.DefBuckets,
	})

	cacheWrite := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_write_seconds",
		Help:    "Latency for cache set operations",
		Buckets: prometheus.DefBuckets,
	})

	cacheHitRatio := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "cache_hit_ratio",
		Help: "Ratio of cache hits to total cache lookups",
	})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_hits_total",
		Help: "Total cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_misses_total",
		Help: "Total cache misses",
	})

	notifications := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "interview_notifications_total",
		Help: "Interview emails attempted, by stage, recipient role and outcome",
	}, []string{"stage", "role", "outcome"})

	partialFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "interview_notification_partial_failures_total",
		Help: "Notification batches where at least one recipient could not be reached",
	}, []string{"stage"})

	tickDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "interview_reminder_tick_duration_seconds",
		Help:    "Duration of reminder ticks",
		Buckets: prometheus.DefBuckets,
	})

	reminderOutcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "interview_reminder_processed_total",
		Help: "Interviews processed by the reminder trigger, by outcome",
	}, []string{"outcome"})

	missingReference := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "interview_reminder_missing_reference_total",
		Help: "Interviews inside the reminder window that still lack a meeting reference",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(
		requestDuration, requestTotal, cacheLatency, cacheWrite, cacheHitRatio, cacheHits, cacheMisses,
		notifications, partialFailures, tickDuration, reminderOutcomes, missingReference, goroutines,
	)

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	return &MetricsService{
		registry:         registry,
		handler:          handler,
		requestDuration:  requestDuration,
		requestTotal:     requestTotal,
		cacheLatency:     cacheLatency,
		cacheWrite:       cacheWrite,
		cacheHitRatio:    cacheHitRatio,
		cacheHits:        cacheHits,
		cacheMisses:      cacheMisses,
		notifications:    notifications,
		partialFailures:  partialFailures,
		tickDuration:     tickDuration,
		reminderOutcomes: reminderOutcomes,
		missingReference: missingReference,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Registry exposes the underlying registry, mainly for tests.
func (m *MetricsService) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// RecordCacheOperation records cache hit/miss metrics and updates hit ratio.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheLatency.Observe(duration.Seconds())
	if hit {
		m.cacheHits.Inc()
		atomic.AddUint64(&m.cacheHitCount, 1)
	} else {
		m.cacheMisses.Inc()
		atomic.AddUint64(&m.cacheMissCount, 1)
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	misses := atomic.LoadUint64(&m.cacheMissCount)
	if total := hits + misses; total > 0 {
		m.cacheHitRatio.Set(float64(hits) / float64(total))
	}
}

// ObserveCacheWrite tracks the duration for cache write operations.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheWrite.Observe(duration.Seconds())
}

// RecordNotification counts one delivery attempt.
func (m *MetricsService) RecordNotification(stage models.NotificationStage, role models.RecipientRole, sent bool) {
	if m == nil {
		return
	}
	outcome := "sent"
	if !sent {
		outcome = "failed"
	}
	m.notifications.WithLabelValues(string(stage), string(role), outcome).Inc()
}

// RecordPartialFailure counts a batch that left at least one recipient un-notified.
func (m *MetricsService) RecordPartialFailure(stage models.NotificationStage) {
	if m == nil {
		return
	}
	m.partialFailures.WithLabelValues(string(stage)).Inc()
}

// ObserveReminderTick records how long one reminder tick took.
func (m *MetricsService) ObserveReminderTick(duration time.Duration) {
	if m == nil {
		return
	}
	m.tickDuration.Observe(duration.Seconds())
}

// RecordReminderOutcome counts one interview handled by the reminder trigger.
func (m *MetricsService) RecordReminderOutcome(outcome string) {
	if m == nil {
		return
	}
	m.reminderOutcomes.WithLabelValues(outcome).Inc()
}

// RecordMissingReference counts an interview that entered the reminder window without a meeting reference.
func (m *MetricsService) RecordMissingReference() {
	if m == nil {
		return
	}
	m.missingReference.Inc()
}

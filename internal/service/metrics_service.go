package service

import (
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/ego-calendar-api/internal/models"
)

// MetricsService encapsulates Prometheus instrumentation. All methods are nil-safe.
type MetricsService struct {
	registry         *prometheus.Registry
	handler          http.Handler
	requestDuration  *prometheus.HistogramVec
	requestTotal     *prometheus.CounterVec
	upstreamDuration *prometheus.HistogramVec
	upstreamTotal    *prometheus.CounterVec
	intentOutcomes   *prometheus.CounterVec
	historyCompress  prometheus.Counter
	remindersSent    *prometheus.CounterVec
	cacheLatency     prometheus.Observer
	cacheWrite       prometheus.Observer
	cacheHits        *prometheus.CounterVec
	cacheMisses      *prometheus.CounterVec
	dbQueryDuration  *prometheus.HistogramVec
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

	upstreamDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "upstream_request_duration_seconds",
		Help:    "Duration of outbound calls to the LLM and geo providers",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	}, []string{"provider", "operation"})

	upstreamTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "upstream_requests_total",
		Help: "Outbound calls by provider and result",
	}, []string{"provider", "operation", "result"})

	intentOutcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "calendar_intent_outcomes_total",
		Help: "Resolved calendar intents by tag and outcome",
	}, []string{"intent", "outcome"})

	historyCompress := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "chat_history_compressions_total",
		Help: "Number of times chat history was summarised",
	})

	remindersSent := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "reminders_dispatched_total",
		Help: "Reminders delivered by method and result",
	}, []string{"method", "result"})

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

	cacheHits := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cache_hits_total",
		Help: "Total cache hits",
	}, []string{"tier"})

	cacheMisses := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cache_misses_total",
		Help: "Total cache misses",
	}, []string{"tier"})

	dbQueryDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "db_query_duration_seconds",
		Help:    "Duration of database queries",
		Buckets: prometheus.DefBuckets,
	}, []string{"query"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, upstreamDuration, upstreamTotal, intentOutcomes,
		historyCompress, remindersSent, cacheLatency, cacheWrite, cacheHits, cacheMisses, dbQueryDuration, goroutines)

	return &MetricsService{
		registry:         registry,
		handler:          promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration:  requestDuration,
		requestTotal:     requestTotal,
		upstreamDuration: upstreamDuration,
		upstreamTotal:    upstreamTotal,
		intentOutcomes:   intentOutcomes,
		historyCompress:  historyCompress,
		remindersSent:    remindersSent,
		cacheLatency:     cacheLatency,
		cacheWrite:       cacheWrite,
		cacheHits:        cacheHits,
		cacheMisses:      cacheMisses,
		dbQueryDuration:  dbQueryDuration,
	}
}

// Registry exposes the underlying registry for tests and extra collectors.
func (m *MetricsService) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
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

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := strconv.Itoa(status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// ObserveUpstream records one outbound call. It satisfies the observer hooks of
// the llm and geo clients.
func (m *MetricsService) ObserveUpstream(provider, operation string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.upstreamDuration.WithLabelValues(provider, operation).Observe(duration.Seconds())
	m.upstreamTotal.WithLabelValues(provider, operation, result).Inc()
}

// RecordIntentOutcome counts resolved intents. Tags other than the known
// intents share the "unknown" label.
func (m *MetricsService) RecordIntentOutcome(intent, outcome string) {
	if m == nil {
		return
	}
	switch intent {
	case models.IntentAdd, models.IntentDelete, models.IntentUpdate:
	default:
		intent = "unknown"
	}
	m.intentOutcomes.WithLabelValues(intent, outcome).Inc()
}

// RecordHistoryCompression counts summarised conversations.
func (m *MetricsService) RecordHistoryCompression() {
	if m == nil {
		return
	}
	m.historyCompress.Inc()
}

// RecordReminder counts delivered or failed reminders.
func (m *MetricsService) RecordReminder(method string, err error) {
	if m == nil {
		return
	}
	result := "sent"
	if err != nil {
		result = "failed"
	}
	m.remindersSent.WithLabelValues(method, result).Inc()
}

// RecordCacheOperation records cache hit/miss metrics for a cache tier.
func (m *MetricsService) RecordCacheOperation(tier string, hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheLatency.Observe(duration.Seconds())
	if hit {
		m.cacheHits.WithLabelValues(tier).Inc()
	} else {
		m.cacheMisses.WithLabelValues(tier).Inc()
	}
}

// ObserveCacheWrite tracks the duration for cache write operations.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheWrite.Observe(duration.Seconds())
}

// ObserveDBQuery records database query timing.
func (m *MetricsService) ObserveDBQuery(label string, duration time.Duration) {
	if m == nil {
		return
	}
	m.dbQueryDuration.WithLabelValues(label).Observe(duration.Seconds())
}

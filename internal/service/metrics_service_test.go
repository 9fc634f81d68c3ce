package service

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetricsServiceNilSafe(t *testing.T) {
	var m *MetricsService
	m.ObserveHTTPRequest("GET", "/", 200, time.Millisecond)
	m.ObserveUpstream("llm", "chat", time.Millisecond, nil)
	m.RecordIntentOutcome("delete", "matched")
	m.RecordReminder("email", nil)
	m.RecordCacheOperation("redis", true, time.Millisecond)
	m.RecordHistoryCompression()

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestMetricsServiceCounters(t *testing.T) {
	m := NewMetricsService()
	m.ObserveUpstream("llm", "chat", 10*time.Millisecond, nil)
	m.ObserveUpstream("llm", "chat", 10*time.Millisecond, errors.New("x"))
	m.RecordIntentOutcome("delete", "ambiguous")

	assert.Equal(t, float64(1), testutil.ToFloat64(m.upstreamTotal.WithLabelValues("llm", "chat", "error")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.intentOutcomes.WithLabelValues("delete", "ambiguous")))

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "upstream_requests_total")
}

func TestMetricsServiceBoundsIntentLabel(t *testing.T) {
	m := NewMetricsService()
	m.RecordIntentOutcome("archive", "unknown_intent")
	m.RecordIntentOutcome("drop table events", "unknown_intent")
	m.RecordIntentOutcome("add", "added")

	assert.Equal(t, float64(2), testutil.ToFloat64(m.intentOutcomes.WithLabelValues("unknown", "unknown_intent")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.intentOutcomes))
}

func TestMetricsServiceObservesDBQueries(t *testing.T) {
	m := NewMetricsService()
	m.ObserveDBQuery("events_by_user", 5*time.Millisecond)
	m.ObserveDBQuery("event_delete", time.Millisecond)

	assert.Equal(t, 2, testutil.CollectAndCount(m.dbQueryDuration, "db_query_duration_seconds"))
}

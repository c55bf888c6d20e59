package prometheus

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveHTTP(t *testing.T) {
	m := NewMetrics()

	m.ObserveHTTP("POST", "/api/v1/listings/score", 200, 12*time.Millisecond)
	m.ObserveHTTP("POST", "/api/v1/listings/score", 200, 8*time.Millisecond)
	m.ObserveHTTP("GET", "/api/v1/scores/:id", 404, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(
		m.httpRequests.WithLabelValues("POST", "/api/v1/listings/score", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(
		m.httpRequests.WithLabelValues("GET", "/api/v1/scores/:id", "404")))
}

func TestObserveScoring(t *testing.T) {
	m := NewMetrics()

	m.ObserveScoring("At market", 3*time.Millisecond)
	m.ObserveScoring("At market", 5*time.Millisecond)
	m.ObserveScoring("Over market", 4*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.scoresTotal.WithLabelValues("At market")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.scoresTotal.WithLabelValues("Over market")))
}

func TestRecordFetch(t *testing.T) {
	m := NewMetrics()

	m.RecordFetch("www.ebay.com", "ok")
	m.RecordFetch("www.ebay.com", "ok")
	m.RecordFetch("www.ebay.com", "http_error")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.fetchOutcomes.WithLabelValues("www.ebay.com", "ok")))
}

func TestHandler_ServesRegistry(t *testing.T) {
	m := NewMetrics()
	m.RecordFetch("host", "ok")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	require.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), "partscout_fetch_outcomes_total")
}

func TestSeparateInstancesDoNotCollide(t *testing.T) {
	a := NewMetrics()
	b := NewMetrics()
	a.RecordFetch("host", "ok")
	assert.Equal(t, 0.0, testutil.ToFloat64(b.fetchOutcomes.WithLabelValues("host", "ok")))
}

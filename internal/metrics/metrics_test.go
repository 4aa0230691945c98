package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCollectorCounts(t *testing.T) {
	c := New()

	c.ObserveAnswer("fallback")
	c.ObserveAnswer("fallback")
	c.ObserveAnswer("model")
	c.ObserveFallback("roundabout")
	c.ObserveStored()
	c.ObserveHTTP(http.MethodPost, "/api/chat", http.StatusOK, 10*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.answers.WithLabelValues("fallback")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.answers.WithLabelValues("model")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.fallbacks.WithLabelValues("roundabout")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.stored))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.httpRequests.WithLabelValues("POST", "/api/chat", "200")))
}

func TestNilCollector(t *testing.T) {
	var c *Collector

	assert.NotPanics(t, func() {
		c.ObserveAnswer("model")
		c.ObserveFallback("hov")
		c.ObserveLLM("openai", "ok", time.Second)
		c.ObserveStored()
		c.ObserveHTTP("GET", "/", 200, time.Millisecond)
	})
	assert.Nil(t, c.Registry())
}

func TestHandler(t *testing.T) {
	c := New()
	c.ObserveAnswer("default")

	w := httptest.NewRecorder()
	c.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `drivewise_answers_total{source="default"} 1`)
}

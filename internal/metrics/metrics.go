// Package metrics exposes Prometheus collectors for the HTTP layer and the
// answer pipeline. Every method is safe to call on a nil *Collector.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "drivewise"

type Collector struct {
	registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	answers     *prometheus.CounterVec
	fallbacks   *prometheus.CounterVec
	llmDuration *prometheus.HistogramVec
	stored      prometheus.Counter
}

// New builds a collector on its own registry, so tests can create as many as they like.
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		answers: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "answers_total",
				Help:      "Answers produced, by where they came from",
			},
			[]string{"source"},
		),
		fallbacks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "fallback_hits_total",
				Help:      "Canned answers served, by topic",
			},
			[]string{"topic"},
		),
		llmDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "llm_request_duration_seconds",
				Help:      "Language model call duration in seconds",
				Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30, 60},
			},
			[]string{"provider", "outcome"},
		),
		stored: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "chat_messages_stored_total",
				Help:      "Chat messages written to the store",
			},
		),
	}

	c.registry.MustRegister(
		c.httpRequests,
		c.httpDuration,
		c.answers,
		c.fallbacks,
		c.llmDuration,
		c.stored,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

func (c *Collector) Registry() *prometheus.Registry {
	if c == nil {
		return nil
	}
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	if c == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

func (c *Collector) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if c == nil {
		return
	}
	c.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func (c *Collector) ObserveAnswer(source string) {
	if c == nil {
		return
	}
	c.answers.WithLabelValues(source).Inc()
}

func (c *Collector) ObserveFallback(topic string) {
	if c == nil {
		return
	}
	c.fallbacks.WithLabelValues(topic).Inc()
}

func (c *Collector) ObserveLLM(provider, outcome string, elapsed time.Duration) {
	if c == nil {
		return
	}
	c.llmDuration.WithLabelValues(provider, outcome).Observe(elapsed.Seconds())
}

func (c *Collector) ObserveStored() {
	if c == nil {
		return
	}
	c.stored.Inc()
}

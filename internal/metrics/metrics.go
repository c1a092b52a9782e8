// Package metrics provides Prometheus collectors for the ingestion and
// query pipelines.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yurisalesc/poc-legal-llm/internal/core/domain"
	"github.com/yurisalesc/poc-legal-llm/internal/core/ports/driven"
)

// Ensure Metrics implements the interface.
var _ driven.Metrics = (*Metrics)(nil)

// Metrics holds all Prometheus collectors.
type Metrics struct {
	IngestionsTotal     *prometheus.CounterVec
	ChunksIngestedTotal prometheus.Counter
	IngestDuration      prometheus.Histogram

	QueriesTotal           *prometheus.CounterVec
	QueryDuration          *prometheus.HistogramVec
	SelfQueryFallbackTotal prometheus.Counter

	HTTPRequestsTotal *prometheus.CounterVec
	HTTPInFlight      prometheus.Gauge

	StartTime time.Time
	gatherer  prometheus.Gatherer
}

// New creates and registers all collectors on reg. A nil reg uses the
// default Prometheus registry.
func New(reg *prometheus.Registry) *Metrics {
	var (
		registerer prometheus.Registerer = prometheus.DefaultRegisterer
		gatherer   prometheus.Gatherer   = prometheus.DefaultGatherer
	)
	if reg != nil {
		registerer, gatherer = reg, reg
	}
	factory := promauto.With(registerer)

	m := &Metrics{
		StartTime: time.Now(),
		gatherer:  gatherer,
	}

	m.IngestionsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "legal_llm_ingestions_total",
			Help: "Total number of PDF ingestions by outcome",
		},
		[]string{"status"},
	)

	m.ChunksIngestedTotal = factory.NewCounter(
		prometheus.CounterOpts{
			Name: "legal_llm_chunks_ingested_total",
			Help: "Total number of chunks written to the vector store",
		},
	)

	// PDFs with embedding rate limits take minutes, not milliseconds.
	m.IngestDuration = factory.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "legal_llm_ingest_duration_seconds",
			Help:    "Duration of a single PDF ingestion in seconds",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 12),
		},
	)

	m.QueriesTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "legal_llm_queries_total",
			Help: "Total number of questions by retrieval strategy and outcome",
		},
		[]string{"strategy", "status"},
	)

	m.QueryDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "legal_llm_query_duration_seconds",
			Help:    "Duration of question answering in seconds",
			Buckets: prometheus.ExponentialBuckets(0.25, 2, 10),
		},
		[]string{"strategy"},
	)

	m.SelfQueryFallbackTotal = factory.NewCounter(
		prometheus.CounterOpts{
			Name: "legal_llm_selfquery_fallbacks_total",
			Help: "Self-query translations that fell back to semantic retrieval",
		},
	)

	m.HTTPRequestsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "legal_llm_http_requests_total",
			Help: "Total number of HTTP API requests",
		},
		[]string{"route", "code"},
	)

	m.HTTPInFlight = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "legal_llm_http_requests_in_flight",
			Help: "Number of HTTP API requests currently being served",
		},
	)

	return m
}

// IngestDone records one ingestion run.
func (m *Metrics) IngestDone(status string, chunks int, elapsed time.Duration) {
	m.IngestionsTotal.WithLabelValues(status).Inc()
	if chunks > 0 {
		m.ChunksIngestedTotal.Add(float64(chunks))
	}
	m.IngestDuration.Observe(elapsed.Seconds())
}

// QueryDone records one answered or failed question.
func (m *Metrics) QueryDone(strategy domain.RetrievalStrategy, status string, elapsed time.Duration) {
	m.QueriesTotal.WithLabelValues(string(strategy), status).Inc()
	m.QueryDuration.WithLabelValues(string(strategy)).Observe(elapsed.Seconds())
}

// SelfQueryFallback records a translation that degraded to semantic retrieval.
func (m *Metrics) SelfQueryFallback() {
	m.SelfQueryFallbackTotal.Inc()
}

// Instrument wraps h, counting requests under route.
func (m *Metrics) Instrument(route string, h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.HTTPInFlight.Inc()
		defer m.HTTPInFlight.Dec()

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		h.ServeHTTP(rec, r)
		m.HTTPRequestsTotal.WithLabelValues(route, strconv.Itoa(rec.status)).Inc()
	})
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

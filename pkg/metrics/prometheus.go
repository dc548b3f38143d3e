package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	analyses    *prometheus.CounterVec
	attempts    *prometheus.CounterVec
	errorsTotal *prometheus.CounterVec
	tokens      *prometheus.CounterVec
	factsBytes  prometheus.Histogram
	latency     *prometheus.HistogramVec
}

// New creates a Prometheus recorder registered on the default registry.
func New() *Recorder {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates a recorder registered on reg. Tests pass a fresh registry.
func NewWithRegistry(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		analyses: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "truesignal_analysis_total",
				Help: "Analyses served, by outcome",
			},
			[]string{"outcome"},
		),
		attempts: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "truesignal_analysis_attempts_total",
				Help: "Generation attempts, by result",
			},
			[]string{"result"},
		),
		errorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "truesignal_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		tokens: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "truesignal_llm_tokens_total",
				Help: "Model tokens consumed",
			},
			[]string{"kind"},
		),
		factsBytes: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "truesignal_facts_bytes",
				Help:    "Serialized facts size after compaction",
				Buckets: []float64{1024, 2048, 4096, 6144, 8192, 10240, 12288, 16384},
			},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "truesignal_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 40, 60},
			},
			[]string{"operation"},
		),
	}
}

// RecordAnalysis counts a served analysis (success, repaired, fallback, cached).
func (r *Recorder) RecordAnalysis(outcome string) {
	r.analyses.WithLabelValues(outcome).Inc()
}

// RecordAttempt counts one generation attempt by result.
func (r *Recorder) RecordAttempt(result string) {
	r.attempts.WithLabelValues(result).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordTokens adds model token usage.
func (r *Recorder) RecordTokens(kind string, n int64) {
	if n > 0 {
		r.tokens.WithLabelValues(kind).Add(float64(n))
	}
}

// RecordFactsBytes observes the compacted facts size.
func (r *Recorder) RecordFactsBytes(n int) {
	r.factsBytes.Observe(float64(n))
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}

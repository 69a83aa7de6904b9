package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics bundles the Prometheus collectors of the conversation engine.
// A nil *Metrics is valid everywhere and records nothing.
type Metrics struct {
	ChatRequests      *prometheus.CounterVec
	LLMRequests       *prometheus.CounterVec
	LLMDuration       prometheus.Histogram
	ParseRetries      prometheus.Counter
	RetrievalFailures prometheus.Counter
}

// New registers the collectors with the given registerer. Pass
// prometheus.DefaultRegisterer in production.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ChatRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tlip_chat_requests_total",
			Help: "Chat turns handled, by stage and reply type.",
		}, []string{"purpose", "type"}),
		LLMRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tlip_llm_requests_total",
			Help: "Model generation calls, by outcome.",
		}, []string{"outcome"}),
		LLMDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "tlip_llm_request_seconds",
			Help:    "Latency of model generation calls.",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
		}),
		ParseRetries: factory.NewCounter(prometheus.CounterOpts{
			Name: "tlip_parse_retries_total",
			Help: "Retries caused by malformed model output.",
		}),
		RetrievalFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "tlip_retrieval_failures_total",
			Help: "Reference retrieval failures absorbed as empty context.",
		}),
	}
}

// ObserveChat records one handled chat turn.
func (m *Metrics) ObserveChat(purpose, replyType string) {
	if m == nil {
		return
	}
	m.ChatRequests.WithLabelValues(purpose, replyType).Inc()
}

// ObserveLLM records one model call with its latency and outcome.
func (m *Metrics) ObserveLLM(seconds float64, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.LLMRequests.WithLabelValues(outcome).Inc()
	m.LLMDuration.Observe(seconds)
}

// ObserveParseRetry records one malformed-output retry.
func (m *Metrics) ObserveParseRetry() {
	if m == nil {
		return
	}
	m.ParseRetries.Inc()
}

// ObserveRetrievalFailure records one absorbed retrieval failure.
func (m *Metrics) ObserveRetrievalFailure() {
	if m == nil {
		return
	}
	m.RetrievalFailures.Inc()
}

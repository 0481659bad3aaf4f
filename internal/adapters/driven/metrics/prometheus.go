package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/mamacrowd/io-spid-commons/internal/core/ports"
)

// PrometheusMetricsRecorder records metrics using Prometheus.
type PrometheusMetricsRecorder struct {
	requestsShapedTotal        *prometheus.CounterVec
	correlationSavesTotal      *prometheus.CounterVec
	correlationConsumedTotal   prometheus.Counter
	responseValidationsTotal   *prometheus.CounterVec
	metadataSignaturesTotal    *prometheus.CounterVec
}

// NewPrometheusMetricsRecorder creates a new Prometheus metrics recorder
// using the default Prometheus registry.
func NewPrometheusMetricsRecorder() *PrometheusMetricsRecorder {
	return NewPrometheusMetricsRecorderWithRegistry(prometheus.DefaultRegisterer)
}

// NewPrometheusMetricsRecorderWithRegistry creates a new Prometheus metrics
// recorder with a custom registry. Use this for testing.
func NewPrometheusMetricsRecorderWithRegistry(reg prometheus.Registerer) *PrometheusMetricsRecorder {
	requestsShapedTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "spid_requests_shaped_total",
		Help: "Total outbound AuthnRequest shaping attempts",
	}, []string{"result"})

	correlationSavesTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "spid_correlation_saves_total",
		Help: "Total correlation cache writes",
	}, []string{"result"})

	correlationConsumedTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "spid_correlation_consumed_total",
		Help: "Total correlation entries consumed by validated responses",
	})

	responseValidationsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "spid_response_validations_total",
		Help: "Total inbound response validation attempts",
	}, []string{"idp_issuer", "outcome"})

	metadataSignaturesTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "spid_metadata_signatures_total",
		Help: "Total metadata shaping and signing attempts",
	}, []string{"result"})

	reg.MustRegister(
		requestsShapedTotal,
		correlationSavesTotal,
		correlationConsumedTotal,
		responseValidationsTotal,
		metadataSignaturesTotal,
	)

	return &PrometheusMetricsRecorder{
		requestsShapedTotal:      requestsShapedTotal,
		correlationSavesTotal:    correlationSavesTotal,
		correlationConsumedTotal: correlationConsumedTotal,
		responseValidationsTotal: responseValidationsTotal,
		metadataSignaturesTotal:  metadataSignaturesTotal,
	}
}

func resultLabel(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}

// RecordRequestShaped records an outbound AuthnRequest shaping attempt.
func (p *PrometheusMetricsRecorder) RecordRequestShaped(success bool) {
	p.requestsShapedTotal.WithLabelValues(resultLabel(success)).Inc()
}

// RecordCorrelationSaved records a correlation cache write.
func (p *PrometheusMetricsRecorder) RecordCorrelationSaved(success bool) {
	p.correlationSavesTotal.WithLabelValues(resultLabel(success)).Inc()
}

// RecordCorrelationConsumed records a correlation entry consumption.
func (p *PrometheusMetricsRecorder) RecordCorrelationConsumed() {
	p.correlationConsumedTotal.Inc()
}

// RecordResponseValidation records an inbound response outcome.
func (p *PrometheusMetricsRecorder) RecordResponseValidation(idpIssuer, outcome string) {
	p.responseValidationsTotal.WithLabelValues(idpIssuer, outcome).Inc()
}

// RecordMetadataSigned records a metadata shaping and signing attempt.
func (p *PrometheusMetricsRecorder) RecordMetadataSigned(success bool) {
	p.metadataSignaturesTotal.WithLabelValues(resultLabel(success)).Inc()
}

var _ ports.MetricsRecorder = (*PrometheusMetricsRecorder)(nil)

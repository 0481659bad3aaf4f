package ports

// MetricsRecorder is the port interface for recording metrics.
// Implementations are adapters (PrometheusMetricsRecorder for production,
// NoopMetricsRecorder for disabled/testing).
type MetricsRecorder interface {
	// RecordRequestShaped records an outbound AuthnRequest shaping attempt.
	RecordRequestShaped(success bool)

	// RecordCorrelationSaved records a correlation cache write.
	RecordCorrelationSaved(success bool)

	// RecordCorrelationConsumed records a correlation entry consumption.
	RecordCorrelationConsumed()

	// RecordResponseValidation records an inbound response outcome.
	// Outcome is one of "success", "rejected", "mismatch", "error".
	RecordResponseValidation(idpIssuer, outcome string)

	// RecordMetadataSigned records a metadata shaping and signing attempt.
	RecordMetadataSigned(success bool)
}

package metrics

import (
	"github.com/mamacrowd/io-spid-commons/internal/core/ports"
)

// NoopMetricsRecorder is a no-op implementation for when metrics are disabled.
// All methods are safe to call and do nothing.
type NoopMetricsRecorder struct{}

// NewNoopMetricsRecorder creates a new no-op metrics recorder.
func NewNoopMetricsRecorder() *NoopMetricsRecorder {
	return &NoopMetricsRecorder{}
}

// RecordRequestShaped is a no-op.
func (n *NoopMetricsRecorder) RecordRequestShaped(success bool) {}

// RecordCorrelationSaved is a no-op.
func (n *NoopMetricsRecorder) RecordCorrelationSaved(success bool) {}

// RecordCorrelationConsumed is a no-op.
func (n *NoopMetricsRecorder) RecordCorrelationConsumed() {}

// RecordResponseValidation is a no-op.
func (n *NoopMetricsRecorder) RecordResponseValidation(idpIssuer, outcome string) {}

// RecordMetadataSigned is a no-op.
func (n *NoopMetricsRecorder) RecordMetadataSigned(success bool) {}

var _ ports.MetricsRecorder = (*NoopMetricsRecorder)(nil)

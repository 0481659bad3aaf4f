package spid

import (
	"github.com/mamacrowd/io-spid-commons/internal/adapters/driven/metrics"
	"github.com/mamacrowd/io-spid-commons/internal/core/ports"
)

// Re-export MetricsRecorder interface from ports
type MetricsRecorder = ports.MetricsRecorder

// Re-export metrics adapters
type NoopMetricsRecorder = metrics.NoopMetricsRecorder
type PrometheusMetricsRecorder = metrics.PrometheusMetricsRecorder

var (
	NewNoopMetricsRecorder                   = metrics.NewNoopMetricsRecorder
	NewPrometheusMetricsRecorder             = metrics.NewPrometheusMetricsRecorder
	NewPrometheusMetricsRecorderWithRegistry = metrics.NewPrometheusMetricsRecorderWithRegistry
)

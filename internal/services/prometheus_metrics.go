package services

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metric names accepted by PrometheusMetrics
const (
	MetricOCRRequest          = "ocr.request"
	MetricOCRAttempt          = "ocr.attempt"
	MetricOCRDuration         = "ocr.duration"
	MetricReceiptUpload       = "receipt.upload"
	MetricReceiptUploadBytes  = "receipt.upload_bytes"
	MetricLedgerWrite         = "ledger.write"
	MetricEventPublishFailure = "event.publish_failed"
	MetricCircuitBreakerState = "circuit_breaker.state"
)

type PrometheusMetrics struct {
	ocrRequests          *prometheus.CounterVec
	ocrAttempts          *prometheus.CounterVec
	ocrDuration          prometheus.Histogram
	receiptUploads       *prometheus.CounterVec
	receiptUploadBytes   prometheus.Histogram
	ledgerWrites         *prometheus.CounterVec
	eventPublishFailures *prometheus.CounterVec
	circuitBreakerState  *prometheus.GaugeVec
}

// NewPrometheusMetrics registers the ledger collectors on reg
func NewPrometheusMetrics(reg prometheus.Registerer) MetricsRecorderInterface {
	factory := promauto.With(reg)

	return &PrometheusMetrics{
		ocrRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ocr_requests_total",
				Help: "Total number of receipt OCR requests by outcome",
			},
			[]string{"status"},
		),
		ocrAttempts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ocr_attempts_total",
				Help: "Total number of calls made to the vision model",
			},
			[]string{"outcome"},
		),
		ocrDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "ocr_duration_seconds",
				Help:    "Receipt OCR duration in seconds, retries included",
				Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 90},
			},
		),
		receiptUploads: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "receipt_uploads_total",
				Help: "Total number of receipt uploads by outcome",
			},
			[]string{"status"},
		),
		receiptUploadBytes: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "receipt_upload_bytes",
				Help:    "Size of stored receipt images in bytes",
				Buckets: prometheus.ExponentialBuckets(16*1024, 2, 10),
			},
		),
		ledgerWrites: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_writes_total",
				Help: "Total number of ledger writes by entity and operation",
			},
			[]string{"entity", "operation"},
		),
		eventPublishFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_event_publish_failures_total",
				Help: "Total number of ledger events that could not be published",
			},
			[]string{"event"},
		),
		circuitBreakerState: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "circuit_breaker_state",
				Help: "Circuit breaker state (0=closed, 1=open, 2=half-open)",
			},
			[]string{"service"},
		),
	}
}

func (m *PrometheusMetrics) IncrementCounter(name string, tags map[string]string) {
	switch name {
	case MetricOCRRequest:
		if status := tags["status"]; status != "" {
			m.ocrRequests.WithLabelValues(status).Inc()
		}
	case MetricOCRAttempt:
		if outcome := tags["outcome"]; outcome != "" {
			m.ocrAttempts.WithLabelValues(outcome).Inc()
		}
	case MetricReceiptUpload:
		if status := tags["status"]; status != "" {
			m.receiptUploads.WithLabelValues(status).Inc()
		}
	case MetricLedgerWrite:
		m.ledgerWrites.WithLabelValues(tags["entity"], tags["operation"]).Inc()
	case MetricEventPublishFailure:
		m.eventPublishFailures.WithLabelValues(tags["event"]).Inc()
	}
}

func (m *PrometheusMetrics) RecordProcessingTime(name string, duration time.Duration) {
	if name == MetricOCRDuration {
		m.ocrDuration.Observe(duration.Seconds())
	}
}

func (m *PrometheusMetrics) RecordGauge(name string, value float64, tags map[string]string) {
	switch name {
	case MetricCircuitBreakerState:
		m.circuitBreakerState.WithLabelValues(tags["service"]).Set(value)
	case MetricReceiptUploadBytes:
		m.receiptUploadBytes.Observe(value)
	}
}

// NopMetrics discards everything
type NopMetrics struct{}

func (NopMetrics) IncrementCounter(string, map[string]string)     {}
func (NopMetrics) RecordProcessingTime(string, time.Duration)     {}
func (NopMetrics) RecordGauge(string, float64, map[string]string) {}

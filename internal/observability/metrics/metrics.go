package metrics

import (
	"database/sql"
	"log"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "roomledger_"

	resultSuccess = "success"
	resultError   = "error"
)

var (
	registerOnce sync.Once

	billOpsTotal   *prometheus.CounterVec
	billOpsLatency *prometheus.HistogramVec

	quickEntryBillsTotal  *prometheus.CounterVec
	quickEntryBatchTotal  prometheus.Counter
	quickEntryBatchTiming prometheus.Histogram

	exportTotal   *prometheus.CounterVec
	exportLatency *prometheus.HistogramVec
)

// Init registers the service metrics and DB-backed gauges.
func Init(db *sql.DB, logger *log.Logger) {
	registerOnce.Do(func() {
		billOpsTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "bill_operations_total",
				Help: "Total bill operations by op and result",
			},
			[]string{"op", "result"},
		)
		billOpsLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "bill_operation_latency_seconds",
				Help:    "Bill operation latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"op", "result"},
		)

		quickEntryBillsTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "quick_entry_bills_total",
				Help: "Bills attempted through quick entry by result",
			},
			[]string{"result"},
		)
		quickEntryBatchTotal = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "quick_entry_batches_total",
				Help: "Total quick entry batches processed",
			},
		)
		quickEntryBatchTiming = prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "quick_entry_batch_latency_seconds",
				Help:    "Quick entry batch latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
		)

		exportTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "export_requests_total",
				Help: "Total export requests by format and result",
			},
			[]string{"format", "result"},
		)
		exportLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "export_latency_seconds",
				Help:    "Export latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"format", "result"},
		)

		prometheus.MustRegister(
			billOpsTotal, billOpsLatency,
			quickEntryBillsTotal, quickEntryBatchTotal, quickEntryBatchTiming,
			exportTotal, exportLatency,
		)

		registerDBMetrics(db, logger)
	})
}

// ObserveBillOp records one create/update/delete with its latency.
func ObserveBillOp(op, result string, duration time.Duration) {
	if op == "" {
		op = "unknown"
	}
	if result == "" {
		result = resultSuccess
	}
	if billOpsTotal != nil {
		billOpsTotal.WithLabelValues(op, result).Inc()
	}
	if billOpsLatency != nil {
		billOpsLatency.WithLabelValues(op, result).Observe(duration.Seconds())
	}
}

// ObserveQuickEntryBill counts one attempted bill inside a batch.
func ObserveQuickEntryBill(result string) {
	if result == "" {
		result = resultSuccess
	}
	if quickEntryBillsTotal != nil {
		quickEntryBillsTotal.WithLabelValues(result).Inc()
	}
}

// ObserveQuickEntryBatch records one processed batch with its latency.
func ObserveQuickEntryBatch(duration time.Duration) {
	if quickEntryBatchTotal != nil {
		quickEntryBatchTotal.Inc()
	}
	if quickEntryBatchTiming != nil {
		quickEntryBatchTiming.Observe(duration.Seconds())
	}
}

// ObserveExport records export latency and result.
func ObserveExport(format, result string, duration time.Duration) {
	if format == "" {
		format = "unknown"
	}
	if result == "" {
		result = resultSuccess
	}
	if exportTotal != nil {
		exportTotal.WithLabelValues(format, result).Inc()
	}
	if exportLatency != nil {
		exportLatency.WithLabelValues(format, result).Observe(duration.Seconds())
	}
}

// Exported constants for callers.
const (
	ResultSuccess = resultSuccess
	ResultError   = resultError
)

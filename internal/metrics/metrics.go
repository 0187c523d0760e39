// Package metrics provides Prometheus metrics for the preview pipeline and
// the file operation engine.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Preview metrics
	previewRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "razor_preview_requests_total",
			Help: "Total preview requests by entry kind",
		},
		[]string{"kind"},
	)

	previewDeliveriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "razor_preview_deliveries_total",
			Help: "Preview results delivered to sinks by result kind",
		},
		[]string{"result"},
	)

	previewStaleTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "razor_preview_stale_dropped_total",
			Help: "Preview results dropped because their token was superseded or cancelled",
		},
	)

	previewInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "razor_preview_in_flight",
			Help: "Preview tasks currently holding a worker",
		},
	)

	// Thumbnail metrics
	thumbnailCacheTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "razor_thumbnail_cache_lookups_total",
			Help: "Thumbnail cache lookups",
		},
		[]string{"result"},
	)

	thumbnailGenerateDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "razor_thumbnail_generate_duration_seconds",
			Help:    "Thumbnail generation duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"status"},
	)

	// File operation metrics
	fileOpsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "razor_fileops_batches_total",
			Help: "File operation batches by kind and status",
		},
		[]string{"kind", "status"},
	)

	fileOpItemsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "razor_fileops_items_total",
			Help: "File operation items by kind and outcome",
		},
		[]string{"kind", "outcome"},
	)

	undoTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "razor_undo_total",
			Help: "Undo executions by batch kind and status",
		},
		[]string{"kind", "status"},
	)

	undoDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "razor_undo_queue_depth",
			Help: "Entries currently held in the undo queue",
		},
	)
)

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordPreviewRequest counts a preview request for an entry kind.
func RecordPreviewRequest(kind string) {
	previewRequestsTotal.WithLabelValues(kind).Inc()
}

// RecordPreviewDelivery counts a result handed to a sink.
func RecordPreviewDelivery(result string) {
	previewDeliveriesTotal.WithLabelValues(result).Inc()
}

// RecordPreviewStale counts a result dropped for a stale token.
func RecordPreviewStale() {
	previewStaleTotal.Inc()
}

// PreviewWorkerStarted and PreviewWorkerDone track occupied workers.
func PreviewWorkerStarted() { previewInFlight.Inc() }
func PreviewWorkerDone()    { previewInFlight.Dec() }

// RecordCacheLookup records a thumbnail cache hit or miss.
func RecordCacheLookup(hit bool) {
	if hit {
		thumbnailCacheTotal.WithLabelValues("hit").Inc()
	} else {
		thumbnailCacheTotal.WithLabelValues("miss").Inc()
	}
}

// RecordGenerate records one thumbnail generation.
func RecordGenerate(success bool, duration time.Duration) {
	status := "success"
	if !success {
		status = "failure"
	}
	thumbnailGenerateDuration.WithLabelValues(status).Observe(duration.Seconds())
}

// RecordBatch records a completed file operation batch.
func RecordBatch(kind string, succeeded, failed int) {
	status := "success"
	switch {
	case succeeded == 0:
		status = "failure"
	case failed > 0:
		status = "partial"
	}
	fileOpsTotal.WithLabelValues(kind, status).Inc()
	fileOpItemsTotal.WithLabelValues(kind, "success").Add(float64(succeeded))
	fileOpItemsTotal.WithLabelValues(kind, "failure").Add(float64(failed))
}

// RecordUndo records one undo execution.
func RecordUndo(kind string, success bool) {
	status := "success"
	if !success {
		status = "failure"
	}
	undoTotal.WithLabelValues(kind, status).Inc()
}

// SetUndoDepth publishes the undo queue length.
func SetUndoDepth(n int) {
	undoDepth.Set(float64(n))
}

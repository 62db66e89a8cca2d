package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Batch metrics
var (
	BatchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "transcode_worker_batches_total",
			Help: "Total number of delivery batches handled",
		},
		[]string{"result"}, // "success", "failure", "empty"
	)

	BatchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "transcode_worker_batch_duration_seconds",
			Help:    "Wall-clock duration of one batch invocation",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		},
	)
)

// Per-record pipeline metrics
var (
	RecordsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "transcode_worker_records_total",
			Help: "Total number of notifications processed",
		},
		[]string{"outcome"}, // "success", "failure", "skipped"
	)

	RecordsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "transcode_worker_records_in_flight",
			Help: "Number of pipeline runs currently executing",
		},
	)

	StageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "transcode_worker_stage_duration_seconds",
			Help:    "Duration of individual pipeline stages",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 14),
		},
		[]string{"stage"},
	)

	CleanupFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "transcode_worker_cleanup_failures_total",
			Help: "Total number of temp files or directories that could not be removed",
		},
	)
)

// Transcoder metrics
var (
	FFmpegInvocationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "transcode_worker_ffmpeg_invocations_total",
			Help: "Total number of ffmpeg subprocess invocations",
		},
		[]string{"operation", "status"}, // operation: "extract_frame", "transcode_hls", "preflight"
	)

	FFmpegDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "transcode_worker_ffmpeg_duration_seconds",
			Help:    "Duration of ffmpeg subprocess invocations",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 14),
		},
		[]string{"operation"},
	)
)

// Object store metrics
var (
	StoreOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "transcode_worker_store_operations_total",
			Help: "Total number of object store operations",
		},
		[]string{"operation", "status"}, // operation: "head", "download", "upload"
	)

	StoreBytesTransferred = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "transcode_worker_store_bytes_transferred_total",
			Help: "Total bytes moved to and from the object store",
		},
		[]string{"direction"}, // "download", "upload"
	)
)

// Queue metrics
var (
	QueueReceivesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "transcode_worker_queue_receives_total",
			Help: "Total number of queue receive calls",
		},
		[]string{"status"}, // "messages", "empty", "error"
	)

	QueueMessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "transcode_worker_queue_messages_total",
			Help: "Total number of queue messages by disposition",
		},
		[]string{"disposition"}, // "deleted", "retained"
	)
)

// Catalog metrics
var (
	CatalogUpdatesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "transcode_worker_catalog_updates_total",
			Help: "Total number of catalog pointer updates",
		},
		[]string{"status"},
	)
)

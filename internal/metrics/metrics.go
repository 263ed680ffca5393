package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Thumbnail metrics
var (
	ThumbnailJobsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "image_viewer_thumbnail_jobs_total",
			Help: "Total number of thumbnail jobs by outcome",
		},
		[]string{"outcome"}, // "ready", "failed", "stale", "cached"
	)

	ThumbnailJobDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "image_viewer_thumbnail_job_duration_seconds",
			Help:    "Time to decode and downscale one thumbnail",
			Buckets: prometheus.DefBuckets,
		},
	)

	ThumbnailQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "image_viewer_thumbnail_queue_depth",
			Help: "Number of thumbnail jobs waiting for the worker",
		},
	)

	ThumbnailGeneration = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "image_viewer_thumbnail_generation",
			Help: "Current thumbnail populate generation",
		},
	)
)

// Decode metrics
var (
	DecodeTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "image_viewer_decode_total",
			Help: "Total number of full image decodes",
		},
		[]string{"backend", "status"}, // backend: "vips", "imaging"
	)

	DecodeDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "image_viewer_decode_duration_seconds",
			Help:    "Full image decode duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"backend"},
	)
)

// Viewport metrics
var (
	ViewportTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "image_viewer_viewport_transitions_total",
			Help: "Total number of viewport state transitions",
		},
		[]string{"transition"}, // "fit", "actual", "zoom", "pan", "rotate"
	)
)

// Histogram metrics
var (
	HistogramComputesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "image_viewer_histogram_computes_total",
			Help: "Total number of histogram computations",
		},
		[]string{"mode"}, // "full", "sampled"
	)

	HistogramComputeDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "image_viewer_histogram_compute_duration_seconds",
			Help:    "Histogram computation duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5},
		},
	)

	HistogramDebounceCancels = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "image_viewer_histogram_debounce_cancels_total",
			Help: "Histogram computations cancelled by a newer open image",
		},
	)
)

// Scanner metrics
var (
	ScannerScansTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "image_viewer_scanner_scans_total",
			Help: "Total number of directory scans",
		},
		[]string{"status"},
	)

	ScannerFilesFound = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "image_viewer_scanner_files_found",
			Help:    "Image files found per directory scan",
			Buckets: []float64{0, 10, 50, 100, 500, 1000, 5000},
		},
	)
)

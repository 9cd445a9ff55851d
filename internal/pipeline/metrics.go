package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	framesRenderedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "uvcam_frames_rendered_total",
			Help: "Total number of frames rendered",
		},
		[]string{"state"}, // state: no_track, tracking, degraded
	)

	frameRenderDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "uvcam_frame_render_duration_seconds",
			Help:    "Per-frame render duration in seconds",
			Buckets: []float64{.001, .0025, .005, .01, .0167, .025, .0333, .05, .1, .25},
		},
		[]string{"state"},
	)

	detectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "uvcam_detections_total",
			Help: "Total number of detector invocations",
		},
		[]string{"result"}, // result: face, no_face, error, discarded
	)

	detectionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "uvcam_detection_duration_seconds",
			Help:    "Detector invocation duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	stateTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "uvcam_state_transitions_total",
			Help: "Total number of tracking state transitions",
		},
		[]string{"from", "to"},
	)

	ticksMissedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "uvcam_ticks_missed_total",
			Help: "Ticks where rendering overran the frame interval",
		},
	)
)

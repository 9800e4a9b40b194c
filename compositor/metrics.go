package compositor

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metrics struct {
	ticks    prometheus.Counter
	skipped  prometheus.Counter
	faults   *prometheus.CounterVec
	resizes  prometheus.Counter
	duration prometheus.Histogram
}

func newMetrics(reg prometheus.Registerer) *metrics {
	f := promauto.With(reg)
	return &metrics{
		ticks: f.NewCounter(prometheus.CounterOpts{
			Namespace: "subcanvas",
			Subsystem: "compositor",
			Name:      "ticks_total",
			Help:      "Frames composited.",
		}),
		skipped: f.NewCounter(prometheus.CounterOpts{
			Namespace: "subcanvas",
			Subsystem: "compositor",
			Name:      "skipped_frames_total",
			Help:      "Frame callbacks that arrived before the interval elapsed.",
		}),
		faults: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "subcanvas",
			Subsystem: "compositor",
			Name:      "render_faults_total",
			Help:      "Per-canvas failures, by stage.",
		}, []string{"stage"}),
		resizes: f.NewCounter(prometheus.CounterOpts{
			Namespace: "subcanvas",
			Subsystem: "compositor",
			Name:      "backbuffer_resizes_total",
			Help:      "Back-buffer reallocations.",
		}),
		duration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "subcanvas",
			Subsystem: "compositor",
			Name:      "tick_duration_seconds",
			Help:      "Time spent compositing one frame.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12),
		}),
	}
}

package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// metrics are always created; they are exported only when a Registerer is
// supplied with WithMetrics.
type metrics struct {
	frames    prometheus.Counter
	errors    *prometheus.CounterVec
	requests  prometheus.Counter
	coalesced prometheus.Counter
	duration  prometheus.Histogram
}

func newMetrics(reg prometheus.Registerer) *metrics {
	f := promauto.With(reg)
	return &metrics{
		frames: f.NewCounter(prometheus.CounterOpts{
			Name: "card_frames_total",
			Help: "Frames rendered successfully.",
		}),
		errors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "card_frame_errors_total",
			Help: "Frames aborted, by stage.",
		}, []string{"stage"}),
		requests: f.NewCounter(prometheus.CounterOpts{
			Name: "card_repaint_requests_total",
			Help: "Repaint requests received.",
		}),
		coalesced: f.NewCounter(prometheus.CounterOpts{
			Name: "card_repaints_coalesced_total",
			Help: "Repaint requests folded into an already pending frame.",
		}),
		duration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "card_frame_duration_seconds",
			Help:    "Frame render time in seconds.",
			Buckets: []float64{.001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
		}),
	}
}

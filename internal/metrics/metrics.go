package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/AJolly/rtl-433/internal/reject"
)

const namespace = "rtl433"

// Collector counts decode outcomes. Each collector owns its registry so
// several decoders (and tests) never share series.
type Collector struct {
	reg        *prometheus.Registry
	frames     *prometheus.CounterVec
	rejections *prometheus.CounterVec
	sinkErrors *prometheus.CounterVec
	tracked    prometheus.Gauge
}

// New creates and registers the collector's metrics.
func New() *Collector {
	c := &Collector{
		reg: prometheus.NewRegistry(),
		frames: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "decoder",
				Name:      "frames_total",
				Help:      "Frame candidates processed, by outcome.",
			},
			[]string{"driver", "status"},
		),
		rejections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "decoder",
				Name:      "rejections_total",
				Help:      "Rejected frames by reason.",
			},
			[]string{"driver", "reason", "class"},
		),
		sinkErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "sink",
				Name:      "errors_total",
				Help:      "Readings a sink failed to deliver.",
			},
			[]string{"sink"},
		),
		tracked: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "debounce",
				Name:      "tracked_devices",
				Help:      "Sensors currently held by the debounce tracker.",
			},
		),
	}
	c.reg.MustRegister(c.frames, c.rejections, c.sinkErrors, c.tracked)
	return c
}

// ObserveFrame records one decode outcome. reason is ignored unless status
// is "rejected".
func (c *Collector) ObserveFrame(driver, status string, reason reject.Reason) {
	c.frames.WithLabelValues(driver, status).Inc()
	if status == "rejected" {
		c.rejections.WithLabelValues(driver, reason.String(), reason.Class().String()).Inc()
	}
}

// SinkError counts a failed delivery.
func (c *Collector) SinkError(sink string) {
	c.sinkErrors.WithLabelValues(sink).Inc()
}

// SetTracked publishes the tracker occupancy.
func (c *Collector) SetTracked(n int) {
	c.tracked.Set(float64(n))
}

// Handler serves the collector's metrics.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{})
}

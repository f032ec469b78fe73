// Package metrics collects and exposes Prometheus metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Resolution outcomes used as the "outcome" label.
const (
	OutcomeOK            = "ok"
	OutcomeInvalidFormat = "invalid_format"
	OutcomeInvalidDate   = "invalid_date"
	OutcomeInvalidTime   = "invalid_time"
	OutcomeInvalidOption = "invalid_option"
	OutcomeNotFound      = "not_found"
	OutcomeError         = "error"
)

// Recorder is the metrics surface used by the HTTP server.
type Recorder interface {
	RecordResolve(outcome string, hourPresent bool, d time.Duration)
	RecordHTTPStatus(statusCode int)
	RecordRateLimited()
	RecordCalendarEvents(count int)
	RecordFeedback()
}

// Collector implements Recorder with Prometheus metrics.
type Collector struct {
	resolveTotal   *prometheus.CounterVec
	hourPillar     *prometheus.CounterVec
	resolveLatency prometheus.Histogram
	httpStatus     *prometheus.CounterVec
	rateLimited    prometheus.Counter
	calendarEvents prometheus.Gauge
	feedback       prometheus.Counter
}

// NewCollector creates a Collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		resolveTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gomanse_resolve_total",
			Help: "Pillar resolutions by outcome.",
		}, []string{"outcome"}),
		hourPillar: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gomanse_hour_pillar_total",
			Help: "Successful resolutions by presence of the hour pillar.",
		}, []string{"present"}),
		resolveLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "gomanse_resolve_latency_seconds",
			Help:    "Pillar resolution latency in seconds.",
			Buckets: []float64{.00001, .00005, .0001, .0005, .001, .005, .01},
		}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gomanse_http_status_total",
			Help: "HTTP responses by status code.",
		}, []string{"status_code"}),
		rateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gomanse_rate_limited_total",
			Help: "Requests rejected by the API rate limiter.",
		}),
		calendarEvents: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "gomanse_calendar_events",
			Help: "Events in the last lunar birthday calendar built.",
		}),
		feedback: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gomanse_feedback_submitted_total",
			Help: "Feedback entries submitted.",
		}),
	}

	reg.MustRegister(
		c.resolveTotal,
		c.hourPillar,
		c.resolveLatency,
		c.httpStatus,
		c.rateLimited,
		c.calendarEvents,
		c.feedback,
	)

	return c
}

// RecordResolve counts one resolution and its latency. hourPresent is only
// meaningful for OutcomeOK.
func (c *Collector) RecordResolve(outcome string, hourPresent bool, d time.Duration) {
	c.resolveTotal.WithLabelValues(outcome).Inc()
	c.resolveLatency.Observe(d.Seconds())
	if outcome == OutcomeOK {
		c.hourPillar.WithLabelValues(strconv.FormatBool(hourPresent)).Inc()
	}
}

// RecordHTTPStatus counts a response status.
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordRateLimited counts a rejected request.
func (c *Collector) RecordRateLimited() {
	c.rateLimited.Inc()
}

// RecordCalendarEvents sets the event count of the latest calendar.
func (c *Collector) RecordCalendarEvents(count int) {
	c.calendarEvents.Set(float64(count))
}

// RecordFeedback counts a submitted feedback entry.
func (c *Collector) RecordFeedback() {
	c.feedback.Inc()
}

// Handler returns the HTTP handler for Prometheus scrapes.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Nop discards everything. It is used when metrics are disabled.
type Nop struct{}

func (Nop) RecordResolve(string, bool, time.Duration) {}
func (Nop) RecordHTTPStatus(int)                      {}
func (Nop) RecordRateLimited()                        {}
func (Nop) RecordCalendarEvents(int)                  {}
func (Nop) RecordFeedback()                           {}

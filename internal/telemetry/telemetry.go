// Package telemetry exposes hostdeck's own Prometheus metrics: stream
// connection churn, frame decode outcomes, collection fetches and
// mutations, and controller request latency.
//
// A nil *Metrics is valid and records nothing, so components can take one
// unconditionally.
package telemetry

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "hostdeck"

// Frame results.
const (
	FrameDecoded = "decoded"
	FrameDropped = "dropped"
)

// Metrics holds all hostdeck metrics on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	// Stream metrics
	StreamDials      *prometheus.CounterVec
	StreamReconnects prometheus.Counter
	StreamConnected  prometheus.Gauge
	StreamFrames     *prometheus.CounterVec

	// Collection metrics
	Fetches   *prometheus.CounterVec
	Mutations *prometheus.CounterVec

	// Controller API
	RequestDuration *prometheus.HistogramVec
}

// New creates a Metrics set registered on a fresh registry together with
// the Go runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,

		StreamDials: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stream_dials_total",
			Help:      "Stats stream connection attempts by result",
		}, []string{"result"}),

		StreamReconnects: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stream_reconnects_scheduled_total",
			Help:      "Reconnect attempts scheduled after a dial failure or connection loss",
		}),

		StreamConnected: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "stream_connected",
			Help:      "1 while the stats stream has a live connection",
		}),

		StreamFrames: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stream_frames_total",
			Help:      "Stats frames received by result",
		}, []string{"result"}),

		Fetches: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "collection_fetches_total",
			Help:      "Collection list requests by kind and result",
		}, []string{"kind", "result"}),

		Mutations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "collection_mutations_total",
			Help:      "Collection mutations by kind, action and result",
		}, []string{"kind", "action", "result"}),

		RequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "controller_request_duration_seconds",
			Help:      "Controller API request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "code"}),
	}
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// ObserveDial records one stream dial attempt.
func (m *Metrics) ObserveDial(err error) {
	if m == nil {
		return
	}
	m.StreamDials.WithLabelValues(result(err)).Inc()
}

// ObserveReconnectScheduled records one scheduled reconnect.
func (m *Metrics) ObserveReconnectScheduled() {
	if m == nil {
		return
	}
	m.StreamReconnects.Inc()
}

// SetConnected updates the connection gauge.
func (m *Metrics) SetConnected(connected bool) {
	if m == nil {
		return
	}
	if connected {
		m.StreamConnected.Set(1)
	} else {
		m.StreamConnected.Set(0)
	}
}

// ObserveFrame records a received frame as FrameDecoded or FrameDropped.
func (m *Metrics) ObserveFrame(res string) {
	if m == nil {
		return
	}
	m.StreamFrames.WithLabelValues(res).Inc()
}

// ObserveFetch records a collection list.
func (m *Metrics) ObserveFetch(kind string, err error) {
	if m == nil {
		return
	}
	m.Fetches.WithLabelValues(kind, result(err)).Inc()
}

// ObserveMutation records a collection mutation.
func (m *Metrics) ObserveMutation(kind, action string, err error) {
	if m == nil {
		return
	}
	m.Mutations.WithLabelValues(kind, action, result(err)).Inc()
}

// ObserveRequest records one controller round trip. code is 0 when the
// request failed before a response arrived.
func (m *Metrics) ObserveRequest(method, route string, code int, d time.Duration) {
	if m == nil {
		return
	}
	label := "none"
	if code > 0 {
		label = strconv.Itoa(code)
	}
	m.RequestDuration.WithLabelValues(method, route, label).Observe(d.Seconds())
}

// Package metrics exposes the Prometheus collectors of the roster service.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder records window, index and HTTP activity. A nil *Recorder is valid
// and records nothing.
type Recorder struct {
	windowOps    *prometheus.CounterVec
	indexBuild   prometheus.Histogram
	indexEntries prometheus.Gauge
	httpRequests *prometheus.CounterVec
}

// NewRecorder registers the collectors on reg, or on the default registerer
// when reg is nil. Collectors that are already registered are reused.
func NewRecorder(reg prometheus.Registerer) (*Recorder, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	r := &Recorder{
		windowOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "roster_window_operations_total",
			Help: "Assignment window operations by kind and outcome",
		}, []string{"op", "outcome"}),
		indexBuild: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "roster_index_build_seconds",
			Help:    "Time spent rebuilding the schedule index",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
		indexEntries: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "roster_index_entries",
			Help: "Occupied person-days in the last built index",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "roster_http_requests_total",
			Help: "HTTP requests by method, route and status",
		}, []string{"method", "route", "status"}),
	}

	var err error
	if r.windowOps, err = register(reg, r.windowOps); err != nil {
		return nil, err
	}
	if r.indexBuild, err = register(reg, r.indexBuild); err != nil {
		return nil, err
	}
	if r.indexEntries, err = register(reg, r.indexEntries); err != nil {
		return nil, err
	}
	if r.httpRequests, err = register(reg, r.httpRequests); err != nil {
		return nil, err
	}
	return r, nil
}

func register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// WindowOp counts one window operation
func (r *Recorder) WindowOp(op string, err error) {
	if r == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	r.windowOps.WithLabelValues(op, outcome).Inc()
}

// IndexBuilt records a rebuild of the schedule index
func (r *Recorder) IndexBuilt(took time.Duration, entries int) {
	if r == nil {
		return
	}
	r.indexBuild.Observe(took.Seconds())
	r.indexEntries.Set(float64(entries))
}

// HTTPRequest counts one served request
func (r *Recorder) HTTPRequest(method, route string, status int) {
	if r == nil {
		return
	}
	r.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
}

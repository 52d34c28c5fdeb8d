package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dmitrymomot/chatbilling/pkg/bundle"
	"github.com/dmitrymomot/chatbilling/pkg/entitlement"
	"github.com/dmitrymomot/chatbilling/pkg/renewal"
)

const namespace = "chatbilling"

// Metrics holds the registered collectors.
type Metrics struct {
	DecisionsTotal  *prometheus.CounterVec
	UsageTotal      *prometheus.CounterVec
	RenewalsTotal   *prometheus.CounterVec
	SweepDuration   prometheus.Histogram
	LastSweep       prometheus.Gauge
	HTTPRequests    *prometheus.CounterVec
	HTTPRequestTime *prometheus.HistogramVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		DecisionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "entitlement_decisions_total",
			Help:      "Entitlement checks by outcome and denial reason.",
		}, []string{"allowed", "target", "reason"}),
		UsageTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "usage_recorded_total",
			Help:      "Units of usage recorded by counter kind.",
		}, []string{"target"}),
		RenewalsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "renewals_total",
			Help:      "Processed subscription renewals by tier and outcome.",
		}, []string{"tier", "outcome"}),
		SweepDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "renewal_sweep_duration_seconds",
			Help:      "Duration of renewal sweeps.",
			Buckets:   prometheus.DefBuckets,
		}),
		LastSweep: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "renewal_last_sweep_timestamp_seconds",
			Help:      "Unix time of the last finished renewal sweep.",
		}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		HTTPRequestTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	reg.MustRegister(
		m.DecisionsTotal,
		m.UsageTotal,
		m.RenewalsTotal,
		m.SweepDuration,
		m.LastSweep,
		m.HTTPRequests,
		m.HTTPRequestTime,
	)
	return m
}

// Handler serves the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// DecisionMade implements entitlement.Observer.
func (m *Metrics) DecisionMade(_ context.Context, _ string, d entitlement.Decision) {
	m.DecisionsTotal.WithLabelValues(strconv.FormatBool(d.Allowed), string(d.Target.Kind), string(d.Reason)).Inc()
}

// UsageRecorded implements entitlement.Observer.
func (m *Metrics) UsageRecorded(_ context.Context, _ string, t entitlement.Target) {
	m.UsageTotal.WithLabelValues(string(t.Kind)).Inc()
}

// RenewalProcessed implements renewal.Observer.
func (m *Metrics) RenewalProcessed(_ context.Context, b *bundle.Bundle, outcome renewal.Outcome) {
	m.RenewalsTotal.WithLabelValues(string(b.Tier), string(outcome)).Inc()
}

// SweepFinished implements renewal.Observer.
func (m *Metrics) SweepFinished(_ context.Context, _ renewal.Result, elapsed time.Duration) {
	m.SweepDuration.Observe(elapsed.Seconds())
	m.LastSweep.SetToCurrentTime()
}

// Middleware records request count and latency. Routes are labelled with
// the chi route pattern to keep label cardinality bounded.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rw, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		m.HTTPRequests.WithLabelValues(r.Method, route, strconv.Itoa(rw.status)).Inc()
		m.HTTPRequestTime.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

type statusWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *statusWriter) WriteHeader(code int) {
	if !w.wroteHeader {
		w.status = code
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	w.wroteHeader = true
	return w.ResponseWriter.Write(b)
}

var (
	_ entitlement.Observer = (*Metrics)(nil)
	_ renewal.Observer     = (*Metrics)(nil)
)

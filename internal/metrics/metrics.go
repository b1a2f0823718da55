// Package metrics exposes Prometheus instruments for the send pipeline
// and the HTTP surface.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	EmailsSent       prometheus.Counter
	EmailsFailed     prometheus.Counter
	DispatchDuration prometheus.Histogram
	CampaignsSent    prometheus.Counter

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	gatherer prometheus.Gatherer
}

// New builds the instruments and registers them on reg. A nil reg uses a
// fresh private registry.
func New(reg *prometheus.Registry) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	m := &Metrics{
		EmailsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "campaign_emails_sent_total",
			Help: "Messages accepted by the SMTP server",
		}),
		EmailsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "campaign_emails_failed_total",
			Help: "Messages the SMTP server refused or that could not be delivered",
		}),
		DispatchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "campaign_dispatch_duration_seconds",
			Help:    "Wall time of one campaign send",
			Buckets: []float64{0.5, 1, 5, 15, 60, 300, 900},
		}),
		CampaignsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "campaigns_sent_total",
			Help: "Campaigns moved into SENT",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by route and status",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		gatherer: reg,
	}

	for _, c := range []prometheus.Collector{
		m.EmailsSent, m.EmailsFailed, m.DispatchDuration, m.CampaignsSent, m.httpRequests, m.httpDuration,
	} {
		if err := registerCollector(reg, c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// registerCollector registers c, ignoring duplicates.
func registerCollector(reg prometheus.Registerer, c prometheus.Collector) error {
	if err := reg.Register(c); err != nil {
		if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return nil
		}
		return err
	}
	return nil
}

// ObserveSend records the outcome of one dispatch.
func (m *Metrics) ObserveSend(sent, failed int, took time.Duration) {
	if m == nil {
		return
	}
	m.EmailsSent.Add(float64(sent))
	m.EmailsFailed.Add(float64(failed))
	m.DispatchDuration.Observe(took.Seconds())
	m.CampaignsSent.Inc()
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Middleware counts requests by chi route pattern so ids do not explode
// label cardinality.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := rec.status
		if status == 0 {
			status = http.StatusOK
		}
		m.httpRequests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		m.httpDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

// Package metrics exposes the server's Prometheus counters.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "daybook"

// Metrics groups the counters updated by the services. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	signIns     *prometheus.CounterVec
	dayWrites   *prometheus.CounterVec
	dayLists    prometheus.Counter
	listedDays  prometheus.Counter
	rpcDuration *prometheus.HistogramVec
	gatherer    prometheus.Gatherer
}

// New registers the counters with reg. reg must also implement
// prometheus.Gatherer for Handler to serve them (a *prometheus.Registry does).
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	m := &Metrics{
		signIns: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "identity",
			Name:      "sign_ins_total",
			Help:      "Successful sign-ins by kind (anonymous, credential, link).",
		}, []string{"kind"}),
		dayWrites: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "mirror",
			Name:      "day_writes_total",
			Help:      "Day upserts by outcome.",
		}, []string{"outcome"}),
		dayLists: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "mirror",
			Name:      "lists_total",
			Help:      "Full mirror listings served.",
		}),
		listedDays: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "mirror",
			Name:      "listed_days_total",
			Help:      "Days returned by mirror listings.",
		}),
		rpcDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "grpc",
			Name:      "request_duration_seconds",
			Help:      "gRPC handler latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "code"}),
	}
	if g, ok := reg.(prometheus.Gatherer); ok {
		m.gatherer = g
	}
	return m
}

func (m *Metrics) SignIn(kind string) {
	if m == nil {
		return
	}
	m.signIns.WithLabelValues(kind).Inc()
}

func (m *Metrics) DayWrite(err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.dayWrites.WithLabelValues(outcome).Inc()
}

func (m *Metrics) DaysListed(n int) {
	if m == nil {
		return
	}
	m.dayLists.Inc()
	m.listedDays.Add(float64(n))
}

func (m *Metrics) ObserveRPC(method, code string, seconds float64) {
	if m == nil {
		return
	}
	m.rpcDuration.WithLabelValues(method, code).Observe(seconds)
}

// Handler serves the registered metrics in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil || m.gatherer == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

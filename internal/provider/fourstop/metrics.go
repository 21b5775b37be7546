package fourstop

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts outbound 4Stop calls and the decisions they produce.
type Metrics struct {
	Calls        *prometheus.CounterVec
	CallDuration *prometheus.HistogramVec
	Decisions    *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	return NewMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

func NewMetricsWithRegisterer(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Calls: f.NewCounterVec(prometheus.CounterOpts{
			Name: "kycgate_provider_calls_total",
			Help: "Outbound verification provider calls by call and outcome",
		}, []string{"call", "outcome"}), // call: "registration", "doc_verification"

		CallDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "kycgate_provider_call_duration_seconds",
			Help:    "Latency of outbound verification provider calls",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"call"}),

		Decisions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "kycgate_provider_registration_decisions_total",
			Help: "Registration decisions returned by the provider",
		}, []string{"decision"}), // decision: "accepted", "rejected"
	}
}

func (m *Metrics) observeCall(call string, err error, d time.Duration) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.Calls.WithLabelValues(call, outcome).Inc()
	m.CallDuration.WithLabelValues(call).Observe(d.Seconds())
}

func (m *Metrics) observeDecision(rejected bool) {
	if m == nil {
		return
	}
	if rejected {
		m.Decisions.WithLabelValues("rejected").Inc()
		return
	}
	m.Decisions.WithLabelValues("accepted").Inc()
}

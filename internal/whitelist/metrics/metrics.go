package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics for the whitelist buffer.
type Metrics struct {
	Enqueued       *prometheus.CounterVec
	Flushes        *prometheus.CounterVec
	FlushedEntries prometheus.Counter
	ResetEntries   prometheus.Counter
}

func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Enqueued: f.NewCounterVec(prometheus.CounterOpts{
			Name: "kycgate_whitelist_enqueued_total",
			Help: "Whitelist requests added to the buffer by outcome",
		}, []string{"outcome"}), // outcome: "ok", "duplicate", "error"
		Flushes: f.NewCounterVec(prometheus.CounterOpts{
			Name: "kycgate_whitelist_flushes_total",
			Help: "Whitelist buffer flushes that submitted a batch, by outcome",
		}, []string{"outcome"}),
		FlushedEntries: f.NewCounter(prometheus.CounterOpts{
			Name: "kycgate_whitelist_flushed_entries_total",
			Help: "Wallets accepted by the whitelisting call",
		}),
		ResetEntries: f.NewCounter(prometheus.CounterOpts{
			Name: "kycgate_whitelist_reset_entries_total",
			Help: "Buffer entries reset by the stale record sweep",
		}),
	}
}

func (m *Metrics) IncrementEnqueued(outcome string) {
	if m != nil {
		m.Enqueued.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) ObserveFlush(count int, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.Flushes.WithLabelValues("error").Inc()
		return
	}
	m.Flushes.WithLabelValues("ok").Inc()
	m.FlushedEntries.Add(float64(count))
}

func (m *Metrics) AddReset(n int) {
	if m != nil {
		m.ResetEntries.Add(float64(n))
	}
}

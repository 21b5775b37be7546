package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics for the KYC lifecycle jobs and request paths.
type Metrics struct {
	RecordsClaimed *prometheus.CounterVec
	RecordsFailed  *prometheus.CounterVec
	RecordsSwept   *prometheus.CounterVec
	ClaimsLost     *prometheus.CounterVec
	Enrollments    *prometheus.CounterVec
	Callbacks      *prometheus.CounterVec
	Decisions      *prometheus.CounterVec
}

func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		RecordsClaimed: f.NewCounterVec(prometheus.CounterOpts{
			Name: "kycgate_kyc_records_claimed_total",
			Help: "Applications claimed by a job",
		}, []string{"job"}),
		RecordsFailed: f.NewCounterVec(prometheus.CounterOpts{
			Name: "kycgate_kyc_records_failed_total",
			Help: "Applications whose step failed within a job",
		}, []string{"job"}),
		RecordsSwept: f.NewCounterVec(prometheus.CounterOpts{
			Name: "kycgate_kyc_records_swept_total",
			Help: "Applications updated by an unconditional sweep",
		}, []string{"job"}),
		ClaimsLost: f.NewCounterVec(prometheus.CounterOpts{
			Name: "kycgate_kyc_claims_lost_total",
			Help: "Claims lost to a concurrent writer",
		}, []string{"job"}),
		Enrollments: f.NewCounterVec(prometheus.CounterOpts{
			Name: "kycgate_kyc_enrollments_total",
			Help: "KYC enrollment requests by outcome",
		}, []string{"outcome"}),
		Callbacks: f.NewCounterVec(prometheus.CounterOpts{
			Name: "kycgate_kyc_callbacks_total",
			Help: "Provider document verification callbacks by outcome",
		}, []string{"outcome"}), // outcome: "approved", "rejected", "intermediate", "not_found", "error"
		Decisions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "kycgate_kyc_decisions_total",
			Help: "Registration outcomes written by the applicant job",
		}, []string{"decision"}),
	}
}

// ObserveReport records the per-record counts of one job run. Run counts and
// durations are kept by the scheduler.
func (m *Metrics) ObserveReport(job string, claimed, swept, failed int) {
	if m == nil {
		return
	}
	m.RecordsClaimed.WithLabelValues(job).Add(float64(claimed))
	m.RecordsSwept.WithLabelValues(job).Add(float64(swept))
	m.RecordsFailed.WithLabelValues(job).Add(float64(failed))
}

func (m *Metrics) IncrementClaimLost(job string) {
	if m != nil {
		m.ClaimsLost.WithLabelValues(job).Inc()
	}
}

func (m *Metrics) IncrementEnrollment(outcome string) {
	if m != nil {
		m.Enrollments.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) IncrementCallback(outcome string) {
	if m != nil {
		m.Callbacks.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) IncrementDecision(decision string) {
	if m != nil {
		m.Decisions.WithLabelValues(decision).Inc()
	}
}

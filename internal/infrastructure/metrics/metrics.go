package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// EscrowMetrics holds every metric emitted by the engine.
type EscrowMetrics struct {
	EscrowsCreatedTotal       prometheus.CounterVec
	EscrowsFundedTotal        prometheus.CounterVec
	EscrowsFundedAmountTotal  prometheus.CounterVec
	EscrowsCompletedTotal     prometheus.CounterVec
	EscrowsCancelledTotal     prometheus.CounterVec
	MilestonesReleasedTotal   prometheus.CounterVec
	MilestonesReleasedAmount  prometheus.CounterVec
	DisputesOpenedTotal       prometheus.CounterVec
	DisputesResolvedTotal     prometheus.CounterVec
	PeriodsPaidTotal          prometheus.CounterVec
	PeriodsPaidAmountTotal    prometheus.CounterVec
	PlatformFeeTotal          prometheus.CounterVec
	GatewayCallDuration       prometheus.HistogramVec
	OperationErrorsTotal      prometheus.CounterVec
	EscrowsByStatus           prometheus.GaugeVec
}

func NewEscrowMetrics() *EscrowMetrics {
	return &EscrowMetrics{
		EscrowsCreatedTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "escrows_created_total",
				Help: "Escrow accounts created",
			},
			[]string{"business_id"},
		),

		EscrowsFundedTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "escrows_funded_total",
				Help: "Escrow accounts successfully funded",
			},
			[]string{"business_id"},
		),

		EscrowsFundedAmountTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "escrows_funded_amount_total",
				Help: "Total amount captured into escrow",
			},
			[]string{"business_id"},
		),

		EscrowsCompletedTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "escrows_completed_total",
				Help: "Escrow accounts fully released",
			},
			[]string{"business_id"},
		),

		EscrowsCancelledTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "escrows_cancelled_total",
				Help: "Escrow accounts cancelled and refunded",
			},
			[]string{"business_id"},
		),

		MilestonesReleasedTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "milestones_released_total",
				Help: "Milestones paid out to talents",
			},
			[]string{"talent_id"},
		),

		MilestonesReleasedAmount: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "milestones_released_amount_total",
				Help: "Gross amount released through milestones",
			},
			[]string{"talent_id"},
		),

		DisputesOpenedTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "disputes_opened_total",
				Help: "Dispute cases opened",
			},
			[]string{"initiated_by"},
		),

		DisputesResolvedTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "disputes_resolved_total",
				Help: "Dispute cases resolved, by resolution kind",
			},
			[]string{"resolution"},
		),

		PeriodsPaidTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "payment_periods_paid_total",
				Help: "Biweekly payment periods paid out",
			},
			[]string{"contract_id"},
		),

		PeriodsPaidAmountTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "payment_periods_paid_amount_total",
				Help: "Gross amount paid through biweekly periods",
			},
			[]string{"contract_id"},
		),

		PlatformFeeTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "platform_fee_total",
				Help: "Platform fees collected",
			},
			[]string{"flow"},
		),

		GatewayCallDuration: *promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gateway_call_duration_seconds",
				Help:    "Payment gateway round-trip duration",
				Buckets: prometheus.ExponentialBuckets(0.01, 2, 10),
			},
			[]string{"operation", "outcome"},
		),

		OperationErrorsTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "escrow_operation_errors_total",
				Help: "Failed engine operations by kind",
			},
			[]string{"operation", "kind"},
		),

		EscrowsByStatus: *promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "escrows_by_status",
				Help: "Escrow accounts by lifecycle status",
			},
			[]string{"status"},
		),
	}
}

func (m *EscrowMetrics) RecordEscrowCreated(businessID string) {
	m.EscrowsCreatedTotal.WithLabelValues(businessID).Inc()
}

func (m *EscrowMetrics) RecordEscrowFunded(businessID string, amount float64) {
	m.EscrowsFundedTotal.WithLabelValues(businessID).Inc()
	m.EscrowsFundedAmountTotal.WithLabelValues(businessID).Add(amount)
}

func (m *EscrowMetrics) RecordEscrowCompleted(businessID string) {
	m.EscrowsCompletedTotal.WithLabelValues(businessID).Inc()
}

func (m *EscrowMetrics) RecordEscrowCancelled(businessID string) {
	m.EscrowsCancelledTotal.WithLabelValues(businessID).Inc()
}

func (m *EscrowMetrics) RecordMilestoneReleased(talentID string, gross, platformFee float64) {
	m.MilestonesReleasedTotal.WithLabelValues(talentID).Inc()
	m.MilestonesReleasedAmount.WithLabelValues(talentID).Add(gross)
	m.PlatformFeeTotal.WithLabelValues("milestone").Add(platformFee)
}

func (m *EscrowMetrics) RecordDisputeOpened(initiatedBy string) {
	m.DisputesOpenedTotal.WithLabelValues(initiatedBy).Inc()
}

func (m *EscrowMetrics) RecordDisputeResolved(resolution string) {
	m.DisputesResolvedTotal.WithLabelValues(resolution).Inc()
}

func (m *EscrowMetrics) RecordPeriodPaid(contractID string, gross, platformFee float64) {
	m.PeriodsPaidTotal.WithLabelValues(contractID).Inc()
	m.PeriodsPaidAmountTotal.WithLabelValues(contractID).Add(gross)
	m.PlatformFeeTotal.WithLabelValues("biweekly").Add(platformFee)
}

func (m *EscrowMetrics) RecordGatewayCall(operation, outcome string, seconds float64) {
	m.GatewayCallDuration.WithLabelValues(operation, outcome).Observe(seconds)
}

func (m *EscrowMetrics) RecordOperationError(operation, kind string) {
	m.OperationErrorsTotal.WithLabelValues(operation, kind).Inc()
}

func (m *EscrowMetrics) SetEscrowsByStatus(status string, count float64) {
	m.EscrowsByStatus.WithLabelValues(status).Set(count)
}

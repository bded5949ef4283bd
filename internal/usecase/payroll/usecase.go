package payroll

import (
	"github.com/talentbridge/escrow-service/internal/domain"
	"github.com/talentbridge/escrow-service/internal/infrastructure/kafka"
	"github.com/talentbridge/escrow-service/internal/infrastructure/locker"
	"github.com/talentbridge/escrow-service/internal/infrastructure/metrics"
	"github.com/talentbridge/escrow-service/internal/service/fees"
)

type DefaultPayrollUsecase struct {
	payrollRepo domain.PayrollRepository
	ledgerRepo  domain.LedgerRepository
	gateway     domain.PaymentGateway
	feeSchedule fees.Schedule
	locks       *locker.KeyedLocker
	publisher   *kafka.KafkaPublisher
	Metrics     *metrics.EscrowMetrics
}

func NewDefaultPayrollUsecase(
	payrollRepo domain.PayrollRepository,
	ledgerRepo domain.LedgerRepository,
	gateway domain.PaymentGateway,
	feeSchedule fees.Schedule,
	locks *locker.KeyedLocker,
	publisher *kafka.KafkaPublisher,
) *DefaultPayrollUsecase {
	return &DefaultPayrollUsecase{
		payrollRepo: payrollRepo,
		ledgerRepo:  ledgerRepo,
		gateway:     gateway,
		feeSchedule: feeSchedule,
		locks:       locks,
		publisher:   publisher,
	}
}

func lockKey(contractID string) string {
	return "contract:" + contractID
}

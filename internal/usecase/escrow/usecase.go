package escrow

import (
	"github.com/shopspring/decimal"

	"github.com/talentbridge/escrow-service/internal/domain"
	"github.com/talentbridge/escrow-service/internal/infrastructure/kafka"
	"github.com/talentbridge/escrow-service/internal/infrastructure/locker"
	"github.com/talentbridge/escrow-service/internal/infrastructure/metrics"
	"github.com/talentbridge/escrow-service/internal/service/fees"
)

type DefaultEscrowUsecase struct {
	escrowRepo domain.EscrowRepository
	ledgerRepo domain.LedgerRepository
	gateway    domain.PaymentGateway
	feeSchedule fees.Schedule
	locks      *locker.KeyedLocker
	publisher  *kafka.KafkaPublisher
	Metrics    *metrics.EscrowMetrics
}

func NewDefaultEscrowUsecase(
	escrowRepo domain.EscrowRepository,
	ledgerRepo domain.LedgerRepository,
	gateway domain.PaymentGateway,
	feeSchedule fees.Schedule,
	locks *locker.KeyedLocker,
	publisher *kafka.KafkaPublisher,
) *DefaultEscrowUsecase {
	return &DefaultEscrowUsecase{
		escrowRepo:  escrowRepo,
		ledgerRepo:  ledgerRepo,
		gateway:     gateway,
		feeSchedule: feeSchedule,
		locks:       locks,
		publisher:   publisher,
	}
}

func lockKey(escrowID string) string {
	return "escrow:" + escrowID
}

// accountStatusAfter recomputes the lifecycle status from balances once a
// disbursement lands or a dispute clears.
func accountStatusAfter(account *domain.EscrowAccount, pending decimal.Decimal, terminal, disputed bool) domain.EscrowStatus {
	if disputed {
		return domain.EscrowDisputed
	}
	if terminal && pending.IsZero() {
		return domain.EscrowCompleted
	}
	if pending.LessThan(account.TotalAmount) {
		return domain.EscrowPartiallyReleased
	}
	return domain.EscrowFunded
}

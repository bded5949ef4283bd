package dispute

import (
	"github.com/talentbridge/escrow-service/internal/domain"
	"github.com/talentbridge/escrow-service/internal/infrastructure/kafka"
	"github.com/talentbridge/escrow-service/internal/infrastructure/locker"
	"github.com/talentbridge/escrow-service/internal/infrastructure/metrics"
	"github.com/talentbridge/escrow-service/internal/service/fees"
)

type DefaultDisputeUsecase struct {
	disputeRepo domain.DisputeRepository
	escrowRepo  domain.EscrowRepository
	ledgerRepo  domain.LedgerRepository
	gateway     domain.PaymentGateway
	feeSchedule fees.Schedule
	locks       *locker.KeyedLocker
	publisher   *kafka.KafkaPublisher
	Metrics     *metrics.EscrowMetrics
}

func NewDefaultDisputeUsecase(
	disputeRepo domain.DisputeRepository,
	escrowRepo domain.EscrowRepository,
	ledgerRepo domain.LedgerRepository,
	gateway domain.PaymentGateway,
	feeSchedule fees.Schedule,
	locks *locker.KeyedLocker,
	publisher *kafka.KafkaPublisher,
) *DefaultDisputeUsecase {
	return &DefaultDisputeUsecase{
		disputeRepo: disputeRepo,
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

package milestone

import (
	"github.com/talentbridge/escrow-service/internal/domain"
	"github.com/talentbridge/escrow-service/internal/infrastructure/locker"
)

type DefaultMilestoneUsecase struct {
	escrowRepo    domain.EscrowRepository
	milestoneRepo domain.MilestoneRepository
	locks         *locker.KeyedLocker
}

func NewDefaultMilestoneUsecase(
	escrowRepo domain.EscrowRepository,
	milestoneRepo domain.MilestoneRepository,
	locks *locker.KeyedLocker,
) *DefaultMilestoneUsecase {
	return &DefaultMilestoneUsecase{
		escrowRepo:    escrowRepo,
		milestoneRepo: milestoneRepo,
		locks:         locks,
	}
}

func lockKey(escrowID string) string {
	return "escrow:" + escrowID
}

// load fetches the account and the milestone on it, failing with NotFound
// when the milestone does not belong to the escrow.
func (uc *DefaultMilestoneUsecase) load(escrowID, milestoneID string) (*domain.EscrowAccount, *domain.Milestone, error) {
	account, err := uc.escrowRepo.GetEscrowByID(escrowID)
	if err != nil {
		return nil, nil, err
	}
	milestone := account.MilestoneByID(milestoneID)
	if milestone == nil {
		return nil, nil, domain.NotFound("milestone", milestoneID)
	}
	return account, milestone, nil
}

package dispute

import (
	"context"

	"github.com/talentbridge/escrow-service/internal/domain"
)

func (uc *DefaultDisputeUsecase) GetDisputeByID(ctx context.Context, disputeID string) (*domain.DisputeCase, error) {
	return uc.disputeRepo.GetDisputeByID(disputeID)
}

func (uc *DefaultDisputeUsecase) GetDisputes(ctx context.Context, filter domain.GetDisputesFilter) ([]*domain.DisputeCase, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 20
	}
	return uc.disputeRepo.GetDisputes(filter)
}

package milestone

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/talentbridge/escrow-service/internal/domain"
)

// AddDeliverable attaches an artifact to a milestone under work. The file
// itself lives in external storage; only the opaque reference is kept.
func (uc *DefaultMilestoneUsecase) AddDeliverable(ctx context.Context, escrowID, milestoneID string, input *domain.AddDeliverableInput, actor domain.Actor) (*domain.Deliverable, error) {
	var created *domain.Deliverable
	err := uc.locks.WithLock(lockKey(escrowID), func() error {
		account, milestone, err := uc.load(escrowID, milestoneID)
		if err != nil {
			return err
		}
		if actor.Role != domain.RoleTalent || actor.ID != account.TalentID {
			return domain.Unauthorizedf("only the contract talent may attach deliverables")
		}
		if input.Title == "" {
			return domain.Validationf("deliverable title is required")
		}
		if milestone.Status != domain.MilestoneInProgress && milestone.Status != domain.MilestoneSubmitted {
			return domain.InvalidStatef("deliverables cannot be attached while the milestone is %s", milestone.Status)
		}

		now := time.Now()
		deliverable := &domain.Deliverable{
			ID:          uuid.New().String(),
			MilestoneID: milestone.ID,
			Title:       input.Title,
			Description: input.Description,
			FileRef:     input.FileRef,
			Status:      domain.DeliverableSubmitted,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := uc.milestoneRepo.CreateDeliverable(deliverable); err != nil {
			return err
		}
		created = deliverable
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// ReviewDeliverable lets the business approve or reject a single artifact.
func (uc *DefaultMilestoneUsecase) ReviewDeliverable(ctx context.Context, escrowID, deliverableID string, approve bool, reason string, actor domain.Actor) error {
	return uc.locks.WithLock(lockKey(escrowID), func() error {
		account, err := uc.escrowRepo.GetEscrowByID(escrowID)
		if err != nil {
			return err
		}
		if actor.Role != domain.RoleBusiness || actor.ID != account.BusinessID {
			return domain.Unauthorizedf("only the contract business may review deliverables")
		}

		deliverable, err := uc.milestoneRepo.GetDeliverableByID(deliverableID)
		if err != nil {
			return err
		}
		if account.MilestoneByID(deliverable.MilestoneID) == nil {
			return domain.NotFound("deliverable", deliverableID)
		}
		if deliverable.Status != domain.DeliverableSubmitted {
			return domain.InvalidStatef("deliverable is %s, expected submitted", deliverable.Status)
		}
		if !approve && reason == "" {
			return domain.Validationf("deliverable rejection requires a reason")
		}

		if approve {
			deliverable.Status = domain.DeliverableApproved
		} else {
			deliverable.Status = domain.DeliverableRejected
			deliverable.RejectionReason = reason
		}
		deliverable.UpdatedAt = time.Now()
		return uc.milestoneRepo.UpdateDeliverable(deliverable)
	})
}

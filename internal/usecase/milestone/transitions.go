package milestone

import (
	"context"
	"time"

	"github.com/talentbridge/escrow-service/internal/domain"
)

// StartMilestone moves a pending milestone into work.
func (uc *DefaultMilestoneUsecase) StartMilestone(ctx context.Context, escrowID, milestoneID string, actor domain.Actor) error {
	return uc.locks.WithLock(lockKey(escrowID), func() error {
		account, milestone, err := uc.load(escrowID, milestoneID)
		if err != nil {
			return err
		}
		if actor.Role != domain.RoleTalent || actor.ID != account.TalentID {
			return domain.Unauthorizedf("only the contract talent may start a milestone")
		}
		resumable := milestone.Status == domain.MilestoneRejected && !milestone.Terminal
		if milestone.Status != domain.MilestonePending && !resumable {
			return domain.InvalidStatef("milestone is %s, expected pending or rejected", milestone.Status)
		}

		milestone.Status = domain.MilestoneInProgress
		milestone.UpdatedAt = time.Now()
		return uc.milestoneRepo.UpdateMilestone(milestone)
	})
}

// SubmitMilestone hands the milestone over for business review. Submission
// requires at least one deliverable; resubmission after a rejection clears
// the previous rejection reason.
func (uc *DefaultMilestoneUsecase) SubmitMilestone(ctx context.Context, escrowID, milestoneID string, actor domain.Actor) error {
	return uc.locks.WithLock(lockKey(escrowID), func() error {
		account, milestone, err := uc.load(escrowID, milestoneID)
		if err != nil {
			return err
		}
		if actor.Role != domain.RoleTalent || actor.ID != account.TalentID {
			return domain.Unauthorizedf("only the contract talent may submit a milestone")
		}
		if milestone.Status != domain.MilestoneInProgress {
			return domain.InvalidStatef("milestone is %s, expected in_progress", milestone.Status)
		}
		if len(milestone.Deliverables) == 0 {
			return domain.Validationf("milestone submission requires at least one deliverable")
		}

		now := time.Now()
		milestone.Status = domain.MilestoneSubmitted
		milestone.RejectionReason = ""
		milestone.SubmittedAt = &now
		milestone.UpdatedAt = now
		return uc.milestoneRepo.UpdateMilestone(milestone)
	})
}

// ApproveMilestone accepts the submitted work. The payout itself runs through
// the escrow manager's release operation.
func (uc *DefaultMilestoneUsecase) ApproveMilestone(ctx context.Context, escrowID, milestoneID string, actor domain.Actor) error {
	return uc.locks.WithLock(lockKey(escrowID), func() error {
		account, milestone, err := uc.load(escrowID, milestoneID)
		if err != nil {
			return err
		}
		if actor.Role != domain.RoleBusiness || actor.ID != account.BusinessID {
			return domain.Unauthorizedf("only the contract business may approve a milestone")
		}
		if milestone.Status == domain.MilestoneDisputed {
			return domain.InvalidStatef("milestone is disputed; approval is suspended until resolution")
		}
		if milestone.Status != domain.MilestoneSubmitted {
			return domain.InvalidStatef("milestone is %s, expected submitted", milestone.Status)
		}

		now := time.Now()
		milestone.Status = domain.MilestoneApproved
		milestone.ApprovedAt = &now
		milestone.UpdatedAt = now
		return uc.milestoneRepo.UpdateMilestone(milestone)
	})
}

// RejectMilestone sends the work back with a reason; the talent may rework
// and resubmit any number of times.
func (uc *DefaultMilestoneUsecase) RejectMilestone(ctx context.Context, escrowID, milestoneID, reason string, actor domain.Actor) error {
	return uc.locks.WithLock(lockKey(escrowID), func() error {
		account, milestone, err := uc.load(escrowID, milestoneID)
		if err != nil {
			return err
		}
		if actor.Role != domain.RoleBusiness || actor.ID != account.BusinessID {
			return domain.Unauthorizedf("only the contract business may reject a milestone")
		}
		if reason == "" {
			return domain.Validationf("milestone rejection requires a reason")
		}
		if milestone.Status == domain.MilestoneReleased {
			return domain.InvalidStatef("released milestone cannot be rejected")
		}
		if milestone.Status == domain.MilestoneDisputed {
			return domain.InvalidStatef("milestone is disputed; rejection is suspended until resolution")
		}
		if milestone.Status != domain.MilestoneSubmitted {
			return domain.InvalidStatef("milestone is %s, expected submitted", milestone.Status)
		}

		now := time.Now()
		milestone.Status = domain.MilestoneRejected
		milestone.RejectionReason = reason
		milestone.RejectedAt = &now
		milestone.UpdatedAt = now
		return uc.milestoneRepo.UpdateMilestone(milestone)
	})
}

package dispute

import (
	"context"
	"log/slog"
	"time"

	"github.com/jaevor/go-nanoid"

	"github.com/talentbridge/escrow-service/internal/domain"
	"github.com/talentbridge/escrow-service/internal/infrastructure/kafka"
)

// InitiateDispute opens a case over a submitted or approved milestone. The
// milestone is frozen against business-side approval and rejection until an
// admin resolves the case.
func (uc *DefaultDisputeUsecase) InitiateDispute(ctx context.Context, input *domain.InitiateDisputeInput, actor domain.Actor) (*domain.DisputeCase, error) {
	var created *domain.DisputeCase
	err := uc.locks.WithLock(lockKey(input.EscrowID), func() error {
		account, err := uc.escrowRepo.GetEscrowByID(input.EscrowID)
		if err != nil {
			return err
		}

		switch {
		case actor.Role == domain.RoleBusiness && actor.ID == account.BusinessID:
		case actor.Role == domain.RoleTalent && actor.ID == account.TalentID:
		default:
			return domain.Unauthorizedf("only a contract party may open a dispute")
		}

		switch account.Status {
		case domain.EscrowFunded, domain.EscrowPartiallyReleased, domain.EscrowDisputed:
		default:
			return domain.InvalidStatef("escrow is %s; only funded escrows can be disputed", account.Status)
		}

		milestone := account.MilestoneByID(input.MilestoneID)
		if milestone == nil {
			return domain.NotFound("milestone", input.MilestoneID)
		}
		if milestone.Status != domain.MilestoneSubmitted && milestone.Status != domain.MilestoneApproved {
			return domain.InvalidStatef("milestone is %s; only submitted or approved milestones may be disputed", milestone.Status)
		}
		if input.Reason == "" {
			return domain.Validationf("dispute reason is required")
		}

		idGenerator, err := nanoid.Standard(15)
		if err != nil {
			return err
		}

		now := time.Now()
		disputeCase := &domain.DisputeCase{
			ID:          idGenerator(),
			EscrowID:    account.ID,
			MilestoneID: milestone.ID,
			InitiatedBy: actor.Role,
			Reason:      input.Reason,
			Description: input.Description,
			Status:      domain.DisputeOpen,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := uc.disputeRepo.CreateDispute(disputeCase); err != nil {
			return err
		}

		op := &domain.EscrowOperation{
			EscrowID:        account.ID,
			Operation:       "dispute_open",
			AccountStatus:   domain.EscrowDisputed,
			ReleasedAmount:  account.ReleasedAmount,
			PendingAmount:   account.PendingAmount,
			DisputedFlag:    true,
			MilestoneID:     milestone.ID,
			MilestoneStatus: domain.MilestoneDisputed,
			CreatedAt:       now,
		}
		if err := uc.escrowRepo.ProcessEscrowOperation(op, nil); err != nil {
			return err
		}

		created = disputeCase
		if uc.Metrics != nil {
			uc.Metrics.RecordDisputeOpened(string(actor.Role))
		}

		go func(event kafka.DisputeEvent) {
			if uc.publisher == nil {
				return
			}
			if err := uc.publisher.PublishDispute(event); err != nil {
				slog.Error("failed to publish kafka DisputeEvent", "stage", "opening", "error", err.Error())
			}
		}(kafka.DisputeEvent{
			DisputeID:   disputeCase.ID,
			EscrowID:    disputeCase.EscrowID,
			MilestoneID: disputeCase.MilestoneID,
			InitiatedBy: string(disputeCase.InitiatedBy),
			Reason:      disputeCase.Reason,
			Status:      string(disputeCase.Status),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

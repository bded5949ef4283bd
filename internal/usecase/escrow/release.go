package escrow

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/talentbridge/escrow-service/internal/domain"
	"github.com/talentbridge/escrow-service/internal/service/fees"
)

// ReleaseMilestone pays a submitted or approved milestone out to the talent.
// Ledger append, balance move and milestone status change commit atomically;
// a gateway failure leaves all of them untouched.
func (uc *DefaultEscrowUsecase) ReleaseMilestone(ctx context.Context, escrowID, milestoneID string, actor domain.Actor) (*domain.EscrowAccount, error) {
	var released *domain.EscrowAccount
	err := uc.locks.WithLock(lockKey(escrowID), func() error {
		account, err := uc.escrowRepo.GetEscrowByID(escrowID)
		if err != nil {
			return err
		}
		if actor.Role != domain.RoleBusiness || actor.ID != account.BusinessID {
			return domain.Unauthorizedf("only the contract business may release a milestone")
		}
		if account.Status != domain.EscrowFunded && account.Status != domain.EscrowPartiallyReleased {
			return domain.InvalidStatef("milestones cannot be released while the escrow is %s", account.Status)
		}

		milestone := account.MilestoneByID(milestoneID)
		if milestone == nil {
			return domain.NotFound("milestone", milestoneID)
		}
		if milestone.Status != domain.MilestoneSubmitted && milestone.Status != domain.MilestoneApproved {
			return domain.InvalidStatef("milestone is %s, expected submitted or approved", milestone.Status)
		}

		breakdown, err := fees.Compute(milestone.Amount, uc.feeSchedule, false)
		if err != nil {
			return err
		}

		key := idempotencyKey(account.ID, "release", milestone.ReleaseNonce)
		entry := &domain.Transaction{
			ID:             uuid.New().String(),
			EscrowID:       account.ID,
			ContractID:     account.ContractID,
			MilestoneID:    milestone.ID,
			Type:           domain.TxMilestoneRelease,
			Amount:         milestone.Amount.Neg(),
			NetAmount:      breakdown.NetAmount,
			FeeAmount:      breakdown.PlatformFee.Add(breakdown.ProcessingFee),
			TaxAmount:      breakdown.TaxWithholding,
			IdempotencyKey: key,
			Status:         domain.TxPending,
			CreatedAt:      time.Now(),
		}

		newReleased := account.ReleasedAmount.Add(milestone.Amount)
		newPending := account.PendingAmount.Sub(milestone.Amount)
		priorStatus := milestone.Status
		milestone.Status = domain.MilestoneReleased
		terminal := account.Terminal()

		op := &domain.EscrowOperation{
			EscrowID:        account.ID,
			Operation:       "release",
			AccountStatus:   accountStatusAfter(account, newPending, terminal, account.DisputedFlag),
			ReleasedAmount:  newReleased,
			PendingAmount:   newPending,
			DisputedFlag:    account.DisputedFlag,
			MilestoneID:     milestone.ID,
			MilestoneStatus: domain.MilestoneReleased,
			Terminal:        true,
			Entries:         []*domain.Transaction{entry},
			CreatedAt:       time.Now(),
		}

		gatewayFn := func() error {
			return uc.timeGatewayCall("payout", func() error {
				gatewayTxID, err := uc.gateway.Payout(ctx, breakdown.NetAmount, account.TalentID, key)
				if err != nil {
					return err
				}
				entry.GatewayTxID = gatewayTxID
				entry.Status = domain.TxCompleted
				return nil
			})
		}

		if err := uc.escrowRepo.ProcessEscrowOperation(op, gatewayFn); err != nil {
			milestone.Status = priorStatus
			uc.recordPendingOnAmbiguity(entry, err)
			if uc.Metrics != nil {
				uc.Metrics.RecordOperationError("release", errorKind(err))
			}
			return err
		}

		account.ReleasedAmount = newReleased
		account.PendingAmount = newPending
		account.Status = op.AccountStatus
		released = account

		if uc.Metrics != nil {
			uc.Metrics.RecordMilestoneReleased(
				account.TalentID,
				milestone.Amount.InexactFloat64(),
				breakdown.PlatformFee.InexactFloat64(),
			)
			if account.Status == domain.EscrowCompleted {
				uc.Metrics.RecordEscrowCompleted(account.BusinessID)
			}
		}
		uc.publishEscrowEvent(account, "releasing")
		return nil
	})
	if err != nil {
		return nil, err
	}
	return released, nil
}

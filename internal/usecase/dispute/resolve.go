package dispute

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/talentbridge/escrow-service/internal/domain"
	"github.com/talentbridge/escrow-service/internal/infrastructure/kafka"
	"github.com/talentbridge/escrow-service/internal/service/fees"
)

// ResolveDispute applies an admin settlement. refund_business returns the
// full milestone amount to the business, release_talent pays the talent
// exactly as a regular release would, and partial_split divides the amount
// between the two with exact conservation.
func (uc *DefaultDisputeUsecase) ResolveDispute(ctx context.Context, input *domain.ResolveDisputeInput, actor domain.Actor) (*domain.DisputeCase, error) {
	if actor.Role != domain.RoleAdmin {
		return nil, domain.Unauthorizedf("only an admin may resolve a dispute")
	}

	disputeCase, err := uc.disputeRepo.GetDisputeByID(input.DisputeID)
	if err != nil {
		return nil, err
	}

	var resolved *domain.DisputeCase
	err = uc.locks.WithLock(lockKey(disputeCase.EscrowID), func() error {
		disputeCase, err := uc.disputeRepo.GetDisputeByID(input.DisputeID)
		if err != nil {
			return err
		}
		if disputeCase.Status == domain.DisputeResolved {
			return domain.InvalidStatef("dispute %s is already resolved", disputeCase.ID)
		}

		account, err := uc.escrowRepo.GetEscrowByID(disputeCase.EscrowID)
		if err != nil {
			return err
		}
		milestone := account.MilestoneByID(disputeCase.MilestoneID)
		if milestone == nil {
			return domain.NotFound("milestone", disputeCase.MilestoneID)
		}
		// Settlement moves captured money. An escrow whose pending balance
		// cannot cover the milestone holds nothing to refund or release.
		if account.PendingAmount.LessThan(milestone.Amount) {
			return domain.InvalidStatef("escrow pending balance %s does not cover disputed milestone amount %s",
				account.PendingAmount, milestone.Amount)
		}

		releaseAmount, refundAmount, err := splitAmounts(milestone.Amount, input)
		if err != nil {
			return err
		}

		openDisputes, err := uc.escrowRepo.CountOpenDisputes(account.ID)
		if err != nil {
			return err
		}
		stillDisputed := openDisputes > 1

		now := time.Now()
		newReleased := account.ReleasedAmount.Add(milestone.Amount)
		newPending := account.PendingAmount.Sub(milestone.Amount)

		op := &domain.EscrowOperation{
			EscrowID:       account.ID,
			Operation:      "dispute_resolve",
			ReleasedAmount: newReleased,
			PendingAmount:  newPending,
			DisputedFlag:   stillDisputed,
			MilestoneID:    milestone.ID,
			Terminal:       true,
			CreatedAt:      now,
		}
		if releaseAmount.Sign() > 0 {
			op.MilestoneStatus = domain.MilestoneReleased
		} else {
			op.MilestoneStatus = domain.MilestoneRejected
		}

		var breakdown fees.Breakdown
		var releaseEntry, refundEntry *domain.Transaction
		if releaseAmount.Sign() > 0 {
			breakdown, err = fees.Compute(releaseAmount, uc.feeSchedule, false)
			if err != nil {
				return err
			}
			releaseEntry = &domain.Transaction{
				ID:             uuid.New().String(),
				EscrowID:       account.ID,
				ContractID:     account.ContractID,
				MilestoneID:    milestone.ID,
				Type:           domain.TxDisputeSettlement,
				Amount:         releaseAmount.Neg(),
				NetAmount:      breakdown.NetAmount,
				FeeAmount:      breakdown.PlatformFee.Add(breakdown.ProcessingFee),
				TaxAmount:      breakdown.TaxWithholding,
				IdempotencyKey: disputeCase.ID + ":settle_release:" + milestone.ReleaseNonce,
				Status:         domain.TxPending,
				CreatedAt:      now,
			}
			op.Entries = append(op.Entries, releaseEntry)
		}
		if refundAmount.Sign() > 0 {
			refundEntry = &domain.Transaction{
				ID:             uuid.New().String(),
				EscrowID:       account.ID,
				ContractID:     account.ContractID,
				MilestoneID:    milestone.ID,
				Type:           domain.TxDisputeSettlement,
				Amount:         refundAmount.Neg(),
				NetAmount:      refundAmount,
				IdempotencyKey: disputeCase.ID + ":settle_refund:" + milestone.ReleaseNonce,
				Status:         domain.TxPending,
				CreatedAt:      now,
			}
			op.Entries = append(op.Entries, refundEntry)
		}

		// Conservation: the two settlement legs reconstruct the milestone
		// amount exactly.
		if !releaseAmount.Add(refundAmount).Equal(milestone.Amount) {
			return domain.Validationf("settlement legs %s + %s do not sum to milestone amount %s",
				releaseAmount, refundAmount, milestone.Amount)
		}

		op.AccountStatus = statusAfterResolution(account, newPending, stillDisputed, milestone)

		gatewayFn := func() error {
			if releaseEntry != nil {
				gatewayTxID, err := uc.gateway.Payout(ctx, breakdown.NetAmount, account.TalentID, releaseEntry.IdempotencyKey)
				if err != nil {
					return err
				}
				releaseEntry.GatewayTxID = gatewayTxID
				releaseEntry.Status = domain.TxCompleted
			}
			if refundEntry != nil {
				refundTxID, err := uc.gateway.Refund(ctx, account.FundingTxID, refundAmount)
				if err != nil {
					return err
				}
				refundEntry.GatewayTxID = refundTxID
				refundEntry.Status = domain.TxCompleted
			}
			return nil
		}

		if err := uc.escrowRepo.ProcessEscrowOperation(op, gatewayFn); err != nil {
			uc.recordPendingOnAmbiguity(op.Entries, err)
			return err
		}

		disputeCase.Status = domain.DisputeResolved
		disputeCase.Resolution = input.Resolution
		disputeCase.ResolutionAmount = input.ResolutionAmount
		disputeCase.AdminNotes = input.AdminNotes
		disputeCase.ResolvedAt = &now
		disputeCase.UpdatedAt = now
		if err := uc.disputeRepo.UpdateDispute(disputeCase); err != nil {
			return err
		}

		resolved = disputeCase
		if uc.Metrics != nil {
			uc.Metrics.RecordDisputeResolved(string(input.Resolution))
		}

		go func(event kafka.DisputeEvent) {
			if uc.publisher == nil {
				return
			}
			if err := uc.publisher.PublishDispute(event); err != nil {
				slog.Error("failed to publish kafka DisputeEvent", "stage", "resolving", "error", err.Error())
			}
		}(kafka.DisputeEvent{
			DisputeID:   disputeCase.ID,
			EscrowID:    disputeCase.EscrowID,
			MilestoneID: disputeCase.MilestoneID,
			InitiatedBy: string(disputeCase.InitiatedBy),
			Reason:      disputeCase.Reason,
			Status:      string(disputeCase.Status),
			Resolution:  string(disputeCase.Resolution),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resolved, nil
}

// recordPendingOnAmbiguity keeps the settlement legs as pending ledger rows
// when a gateway call timed out with an unknown outcome, so reconciliation
// can settle them later. Clean rejections leave nothing behind.
func (uc *DefaultDisputeUsecase) recordPendingOnAmbiguity(entries []*domain.Transaction, err error) {
	var gwErr *domain.GatewayError
	if !errors.As(err, &gwErr) || gwErr.Err == nil {
		return
	}
	for _, entry := range entries {
		if _, lookupErr := uc.ledgerRepo.GetTransactionByIdempotencyKey(entry.IdempotencyKey); lookupErr == nil {
			continue
		}
		pending := *entry
		pending.Status = domain.TxPending
		pending.GatewayTxID = ""
		if appendErr := uc.ledgerRepo.AppendTransaction(&pending); appendErr != nil {
			slog.Error("failed to record pending settlement for reconciliation",
				"idempotency_key", pending.IdempotencyKey, "error", appendErr.Error())
		}
	}
}

// splitAmounts maps a resolution onto its release and refund legs.
func splitAmounts(milestoneAmount decimal.Decimal, input *domain.ResolveDisputeInput) (release, refund decimal.Decimal, err error) {
	switch input.Resolution {
	case domain.ResolutionRefundBusiness:
		return decimal.Zero, milestoneAmount, nil
	case domain.ResolutionReleaseTalent:
		return milestoneAmount, decimal.Zero, nil
	case domain.ResolutionPartialSplit:
		r := input.ResolutionAmount
		if r.Sign() <= 0 || r.GreaterThanOrEqual(milestoneAmount) {
			return decimal.Zero, decimal.Zero, domain.Validationf(
				"partial split amount must be strictly between 0 and %s, got %s", milestoneAmount, r)
		}
		return r, milestoneAmount.Sub(r), nil
	default:
		return decimal.Zero, decimal.Zero, domain.Validationf("unknown resolution %q", input.Resolution)
	}
}

func statusAfterResolution(account *domain.EscrowAccount, pending decimal.Decimal, stillDisputed bool, milestone *domain.Milestone) domain.EscrowStatus {
	if stillDisputed {
		return domain.EscrowDisputed
	}
	terminal := true
	for _, m := range account.Milestones {
		if m.ID == milestone.ID {
			continue
		}
		if m.Status != domain.MilestoneReleased && !(m.Status == domain.MilestoneRejected && m.Terminal) {
			terminal = false
			break
		}
	}
	if terminal && pending.IsZero() {
		return domain.EscrowCompleted
	}
	if pending.LessThan(account.TotalAmount) {
		return domain.EscrowPartiallyReleased
	}
	return domain.EscrowFunded
}

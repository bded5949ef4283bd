package escrow

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/talentbridge/escrow-service/internal/domain"
)

// CancelEscrow refunds the business in full. Permitted only before any
// release has happened; once money has left the escrow the account can only
// run to completion or through disputes.
func (uc *DefaultEscrowUsecase) CancelEscrow(ctx context.Context, escrowID, reason string, actor domain.Actor) (*domain.EscrowAccount, error) {
	var cancelled *domain.EscrowAccount
	err := uc.locks.WithLock(lockKey(escrowID), func() error {
		account, err := uc.escrowRepo.GetEscrowByID(escrowID)
		if err != nil {
			return err
		}
		if actor.Role != domain.RoleBusiness || actor.ID != account.BusinessID {
			return domain.Unauthorizedf("only the contract business may cancel the escrow")
		}
		if !account.ReleasedAmount.IsZero() {
			return domain.InvalidStatef("escrow with released funds cannot be cancelled")
		}
		if account.Status != domain.EscrowCreated && account.Status != domain.EscrowFunded {
			return domain.InvalidStatef("escrow cannot be cancelled in status %s", account.Status)
		}

		op := &domain.EscrowOperation{
			EscrowID:       account.ID,
			Operation:      "cancel",
			AccountStatus:  domain.EscrowCancelled,
			ReleasedAmount: account.ReleasedAmount,
			PendingAmount:  decimal.Zero,
			DisputedFlag:   account.DisputedFlag,
			CreatedAt:      time.Now(),
		}

		var gatewayFn func() error
		var entry *domain.Transaction
		if account.Status == domain.EscrowFunded {
			// Funds were captured; the full amount goes back to the business.
			op.ReleasedAmount = account.TotalAmount
			entry = &domain.Transaction{
				ID:             uuid.New().String(),
				EscrowID:       account.ID,
				ContractID:     account.ContractID,
				Type:           domain.TxRefund,
				Amount:         account.TotalAmount.Neg(),
				NetAmount:      account.TotalAmount,
				IdempotencyKey: idempotencyKey(account.ID, "cancel", account.FundingNonce),
				Status:         domain.TxPending,
				CreatedAt:      time.Now(),
			}
			op.Entries = []*domain.Transaction{entry}
			gatewayFn = func() error {
				return uc.timeGatewayCall("refund", func() error {
					refundTxID, err := uc.gateway.Refund(ctx, account.FundingTxID, account.TotalAmount)
					if err != nil {
						return err
					}
					entry.GatewayTxID = refundTxID
					entry.Status = domain.TxCompleted
					return nil
				})
			}
		}

		if err := uc.escrowRepo.ProcessEscrowOperation(op, gatewayFn); err != nil {
			if entry != nil {
				uc.recordPendingOnAmbiguity(entry, err)
			}
			if uc.Metrics != nil {
				uc.Metrics.RecordOperationError("cancel", errorKind(err))
			}
			return err
		}

		account.Status = domain.EscrowCancelled
		account.ReleasedAmount = op.ReleasedAmount
		account.PendingAmount = decimal.Zero
		cancelled = account

		if uc.Metrics != nil {
			uc.Metrics.RecordEscrowCancelled(account.BusinessID)
		}
		uc.publishEscrowEvent(account, "cancelling")
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cancelled, nil
}

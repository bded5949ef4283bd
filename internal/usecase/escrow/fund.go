package escrow

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jaevor/go-nanoid"

	"github.com/talentbridge/escrow-service/internal/domain"
)

// FundEscrow captures the full account amount from the business. Retrying
// after a gateway timeout reuses the funding nonce minted at creation, so the
// processor never captures twice for one funding attempt.
func (uc *DefaultEscrowUsecase) FundEscrow(ctx context.Context, escrowID, paymentMethodRef string, actor domain.Actor) (*domain.EscrowAccount, error) {
	var funded *domain.EscrowAccount
	err := uc.locks.WithLock(lockKey(escrowID), func() error {
		account, err := uc.escrowRepo.GetEscrowByID(escrowID)
		if err != nil {
			return err
		}
		if actor.Role != domain.RoleBusiness || actor.ID != account.BusinessID {
			return domain.Unauthorizedf("only the contract business may fund the escrow")
		}
		if account.Status != domain.EscrowCreated {
			return domain.InvalidStatef("escrow cannot be funded in status %s", account.Status)
		}
		if paymentMethodRef == "" {
			return domain.Validationf("payment method reference is required")
		}

		key := idempotencyKey(account.ID, "funding", account.FundingNonce)

		// A completed entry under the same key means a previous attempt
		// captured at the gateway but the status write was lost. Finish
		// locally without touching the gateway again.
		if existing, err := uc.ledgerRepo.GetTransactionByIdempotencyKey(key); err == nil && existing.Status == domain.TxCompleted {
			op := &domain.EscrowOperation{
				EscrowID:       account.ID,
				Operation:      "fund",
				AccountStatus:  domain.EscrowFunded,
				ReleasedAmount: account.ReleasedAmount,
				PendingAmount:  account.TotalAmount,
				DisputedFlag:   account.DisputedFlag,
				FundingTxID:    existing.GatewayTxID,
				CreatedAt:      time.Now(),
			}
			if err := uc.escrowRepo.ProcessEscrowOperation(op, nil); err != nil {
				return err
			}
			account.Status = domain.EscrowFunded
			account.PendingAmount = account.TotalAmount
			account.FundingTxID = existing.GatewayTxID
			funded = account
			uc.publishEscrowEvent(account, "funding")
			return nil
		}

		entry := &domain.Transaction{
			ID:             uuid.New().String(),
			EscrowID:       account.ID,
			ContractID:     account.ContractID,
			Type:           domain.TxFunding,
			Amount:         account.TotalAmount,
			NetAmount:      account.TotalAmount,
			IdempotencyKey: key,
			Status:         domain.TxPending,
			CreatedAt:      time.Now(),
		}

		op := &domain.EscrowOperation{
			EscrowID:       account.ID,
			Operation:      "fund",
			AccountStatus:  domain.EscrowFunded,
			ReleasedAmount: account.ReleasedAmount,
			PendingAmount:  account.TotalAmount,
			DisputedFlag:   account.DisputedFlag,
			Entries:        []*domain.Transaction{entry},
			CreatedAt:      time.Now(),
		}

		gatewayFn := func() error {
			return uc.timeGatewayCall("capture", func() error {
				gatewayTxID, err := uc.gateway.Capture(ctx, account.TotalAmount, paymentMethodRef, key)
				if err != nil {
					return err
				}
				entry.GatewayTxID = gatewayTxID
				entry.Status = domain.TxCompleted
				op.FundingTxID = gatewayTxID
				return nil
			})
		}

		if err := uc.escrowRepo.ProcessEscrowOperation(op, gatewayFn); err != nil {
			uc.recordPendingOnAmbiguity(entry, err)
			uc.rotateNonceOnRejection(account, err)
			if uc.Metrics != nil {
				uc.Metrics.RecordOperationError("fund", errorKind(err))
			}
			return err
		}

		account.Status = domain.EscrowFunded
		account.PendingAmount = account.TotalAmount
		account.FundingTxID = op.FundingTxID
		funded = account

		if uc.Metrics != nil {
			uc.Metrics.RecordEscrowFunded(account.BusinessID, account.TotalAmount.InexactFloat64())
		}
		uc.publishEscrowEvent(account, "funding")
		return nil
	})
	if err != nil {
		return nil, err
	}
	return funded, nil
}

// rotateNonceOnRejection mints a fresh funding nonce after a definitive
// gateway rejection. The old idempotency key is burned at the processor;
// retrying under it would only replay the cached rejection.
func (uc *DefaultEscrowUsecase) rotateNonceOnRejection(account *domain.EscrowAccount, err error) {
	var gwErr *domain.GatewayError
	if !errors.As(err, &gwErr) || gwErr.Err != nil {
		return
	}
	idGenerator, genErr := nanoid.Standard(15)
	if genErr != nil {
		return
	}
	fresh := idGenerator()
	if setErr := uc.escrowRepo.SetFundingNonce(account.ID, fresh); setErr != nil {
		slog.Error("failed to rotate funding nonce", "escrow_id", account.ID, "error", setErr.Error())
		return
	}
	account.FundingNonce = fresh
}

func errorKind(err error) string {
	switch {
	case domain.IsValidation(err):
		return "validation"
	case domain.IsInvalidState(err):
		return "invalid_state"
	case domain.IsGateway(err):
		return "gateway"
	case domain.IsNotFound(err):
		return "not_found"
	case domain.IsAuthorization(err):
		return "authorization"
	default:
		return "internal"
	}
}

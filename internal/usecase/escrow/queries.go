package escrow

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/talentbridge/escrow-service/internal/domain"
)

func (uc *DefaultEscrowUsecase) GetEscrowByID(ctx context.Context, escrowID string) (*domain.EscrowAccount, error) {
	return uc.escrowRepo.GetEscrowByID(escrowID)
}

func (uc *DefaultEscrowUsecase) GetTransactions(ctx context.Context, escrowID string, page, limit int) ([]*domain.Transaction, int64, error) {
	if _, err := uc.escrowRepo.GetEscrowByID(escrowID); err != nil {
		return nil, 0, err
	}
	return uc.ledgerRepo.GetEscrowTransactions(escrowID, page, limit)
}

func (uc *DefaultEscrowUsecase) GetTransaction(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	return uc.ledgerRepo.GetTransactionByID(transactionID)
}

// GetSummary aggregates account totals for dashboard display.
func (uc *DefaultEscrowUsecase) GetSummary(ctx context.Context, escrowID string) (*domain.EscrowSummary, error) {
	account, err := uc.escrowRepo.GetEscrowByID(escrowID)
	if err != nil {
		return nil, err
	}

	disputedAmount := decimal.Zero
	for _, m := range account.Milestones {
		if m.Status == domain.MilestoneDisputed {
			disputedAmount = disputedAmount.Add(m.Amount)
		}
	}

	openDisputes, err := uc.escrowRepo.CountOpenDisputes(escrowID)
	if err != nil {
		return nil, err
	}

	return &domain.EscrowSummary{
		EscrowID:       account.ID,
		Status:         account.Status,
		TotalAmount:    account.TotalAmount,
		ReleasedAmount: account.ReleasedAmount,
		PendingAmount:  account.PendingAmount,
		DisputedAmount: disputedAmount,
		Milestones:     len(account.Milestones),
		OpenDisputes:   int(openDisputes),
	}, nil
}

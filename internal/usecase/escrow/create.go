package escrow

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jaevor/go-nanoid"
	"github.com/shopspring/decimal"

	"github.com/talentbridge/escrow-service/internal/domain"
	"github.com/talentbridge/escrow-service/internal/infrastructure/kafka"
)

func (uc *DefaultEscrowUsecase) CreateEscrow(ctx context.Context, input *domain.CreateEscrowInput) (*domain.EscrowAccount, error) {
	if input.ContractID == "" || input.BusinessID == "" || input.TalentID == "" {
		return nil, domain.Validationf("contract, business and talent ids are required")
	}
	if len(input.Milestones) == 0 {
		return nil, domain.Validationf("escrow requires at least one milestone")
	}

	total := decimal.Zero
	for i, spec := range input.Milestones {
		if spec.Amount.Sign() <= 0 {
			return nil, domain.Validationf("milestone %d amount must be positive, got %s", i+1, spec.Amount)
		}
		total = total.Add(spec.Amount)
	}
	if total.Sign() <= 0 {
		return nil, domain.Validationf("milestone amounts must sum to a positive total")
	}

	existing, err := uc.escrowRepo.GetEscrowByContractID(input.ContractID)
	if err != nil && !domain.IsNotFound(err) {
		return nil, err
	}
	if existing != nil {
		return nil, domain.InvalidStatef("contract %s already has escrow %s", input.ContractID, existing.ID)
	}

	idGenerator, err := nanoid.Standard(15)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	account := &domain.EscrowAccount{
		ID:             uuid.New().String(),
		ContractID:     input.ContractID,
		BusinessID:     input.BusinessID,
		TalentID:       input.TalentID,
		TotalAmount:    total,
		ReleasedAmount: decimal.Zero,
		PendingAmount:  decimal.Zero,
		Status:         domain.EscrowCreated,
		FundingNonce:   idGenerator(),
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	for i, spec := range input.Milestones {
		account.Milestones = append(account.Milestones, &domain.Milestone{
			ID:           uuid.New().String(),
			EscrowID:     account.ID,
			Title:        spec.Title,
			Description:  spec.Description,
			Amount:       spec.Amount,
			Position:     i,
			Status:       domain.MilestonePending,
			ReleaseNonce: idGenerator(),
			CreatedAt:    now,
			UpdatedAt:    now,
		})
	}

	if err := uc.escrowRepo.CreateEscrow(account); err != nil {
		return nil, err
	}

	if uc.Metrics != nil {
		uc.Metrics.RecordEscrowCreated(account.BusinessID)
	}

	go func(event kafka.EscrowEvent) {
		if uc.publisher == nil {
			return
		}
		if err := uc.publisher.PublishEscrow(event); err != nil {
			slog.Error("failed to publish kafka EscrowEvent", "stage", "creating", "error", err.Error())
		}
	}(kafka.EscrowEvent{
		EscrowID:   account.ID,
		ContractID: account.ContractID,
		BusinessID: account.BusinessID,
		TalentID:   account.TalentID,
		Status:     string(account.Status),
		Amount:     account.TotalAmount.StringFixed(2),
	})

	return account, nil
}

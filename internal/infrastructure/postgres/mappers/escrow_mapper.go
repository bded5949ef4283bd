package mappers

import (
	"github.com/talentbridge/escrow-service/internal/domain"
	"github.com/talentbridge/escrow-service/internal/infrastructure/postgres/models"
)

func ToDomainEscrow(model *models.EscrowAccountModel) *domain.EscrowAccount {
	milestones := make([]*domain.Milestone, len(model.Milestones))
	for i := range model.Milestones {
		milestones[i] = ToDomainMilestone(&model.Milestones[i])
	}
	return &domain.EscrowAccount{
		ID:             model.ID,
		ContractID:     model.ContractID,
		BusinessID:     model.BusinessID,
		TalentID:       model.TalentID,
		Milestones:     milestones,
		TotalAmount:    model.TotalAmount,
		ReleasedAmount: model.ReleasedAmount,
		PendingAmount:  model.PendingAmount,
		Status:         domain.EscrowStatus(model.Status),
		DisputedFlag:   model.DisputedFlag,
		FundingTxID:    model.FundingTxID,
		FundingNonce:   model.FundingNonce,
		CreatedAt:      model.CreatedAt,
		UpdatedAt:      model.UpdatedAt,
	}
}

func ToGORMEscrow(account *domain.EscrowAccount) *models.EscrowAccountModel {
	milestones := make([]models.MilestoneModel, len(account.Milestones))
	for i, m := range account.Milestones {
		milestones[i] = *ToGORMMilestone(m)
	}
	return &models.EscrowAccountModel{
		ID:             account.ID,
		ContractID:     account.ContractID,
		BusinessID:     account.BusinessID,
		TalentID:       account.TalentID,
		Milestones:     milestones,
		TotalAmount:    account.TotalAmount,
		ReleasedAmount: account.ReleasedAmount,
		PendingAmount:  account.PendingAmount,
		Status:         string(account.Status),
		DisputedFlag:   account.DisputedFlag,
		FundingTxID:    account.FundingTxID,
		FundingNonce:   account.FundingNonce,
		CreatedAt:      account.CreatedAt,
		UpdatedAt:      account.UpdatedAt,
	}
}

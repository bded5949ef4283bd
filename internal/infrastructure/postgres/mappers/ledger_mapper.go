package mappers

import (
	"github.com/talentbridge/escrow-service/internal/domain"
	"github.com/talentbridge/escrow-service/internal/infrastructure/postgres/models"
)

func ToDomainTransaction(model *models.TransactionModel) *domain.Transaction {
	return &domain.Transaction{
		ID:             model.ID,
		EscrowID:       model.EscrowID,
		ContractID:     model.ContractID,
		MilestoneID:    model.MilestoneID,
		PeriodID:       model.PeriodID,
		Type:           domain.TransactionType(model.Type),
		Amount:         model.Amount,
		NetAmount:      model.NetAmount,
		FeeAmount:      model.FeeAmount,
		TaxAmount:      model.TaxAmount,
		IdempotencyKey: model.IdempotencyKey,
		GatewayTxID:    model.GatewayTxID,
		Status:         domain.TransactionStatus(model.Status),
		CreatedAt:      model.CreatedAt,
	}
}

func ToGORMTransaction(tx *domain.Transaction) *models.TransactionModel {
	return &models.TransactionModel{
		ID:             tx.ID,
		EscrowID:       tx.EscrowID,
		ContractID:     tx.ContractID,
		MilestoneID:    tx.MilestoneID,
		PeriodID:       tx.PeriodID,
		Type:           string(tx.Type),
		Amount:         tx.Amount,
		NetAmount:      tx.NetAmount,
		FeeAmount:      tx.FeeAmount,
		TaxAmount:      tx.TaxAmount,
		IdempotencyKey: tx.IdempotencyKey,
		GatewayTxID:    tx.GatewayTxID,
		Status:         string(tx.Status),
		CreatedAt:      tx.CreatedAt,
	}
}

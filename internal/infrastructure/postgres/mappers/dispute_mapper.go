package mappers

import (
	"github.com/talentbridge/escrow-service/internal/domain"
	"github.com/talentbridge/escrow-service/internal/infrastructure/postgres/models"
)

func ToDomainDispute(model *models.DisputeModel) *domain.DisputeCase {
	return &domain.DisputeCase{
		ID:               model.ID,
		EscrowID:         model.EscrowID,
		MilestoneID:      model.MilestoneID,
		InitiatedBy:      domain.Role(model.InitiatedBy),
		Reason:           model.Reason,
		Description:      model.Description,
		Status:           domain.DisputeStatus(model.Status),
		Resolution:       domain.DisputeResolution(model.Resolution),
		ResolutionAmount: model.ResolutionAmount,
		AdminNotes:       model.AdminNotes,
		ResolvedAt:       model.ResolvedAt,
		CreatedAt:        model.CreatedAt,
		UpdatedAt:        model.UpdatedAt,
	}
}

func ToGORMDispute(dispute *domain.DisputeCase) *models.DisputeModel {
	return &models.DisputeModel{
		ID:               dispute.ID,
		EscrowID:         dispute.EscrowID,
		MilestoneID:      dispute.MilestoneID,
		InitiatedBy:      string(dispute.InitiatedBy),
		Reason:           dispute.Reason,
		Description:      dispute.Description,
		Status:           string(dispute.Status),
		Resolution:       string(dispute.Resolution),
		ResolutionAmount: dispute.ResolutionAmount,
		AdminNotes:       dispute.AdminNotes,
		ResolvedAt:       dispute.ResolvedAt,
		CreatedAt:        dispute.CreatedAt,
		UpdatedAt:        dispute.UpdatedAt,
	}
}

package mappers

import (
	"github.com/talentbridge/escrow-service/internal/domain"
	"github.com/talentbridge/escrow-service/internal/infrastructure/postgres/models"
)

func ToDomainMilestone(model *models.MilestoneModel) *domain.Milestone {
	deliverables := make([]*domain.Deliverable, len(model.Deliverables))
	for i := range model.Deliverables {
		deliverables[i] = ToDomainDeliverable(&model.Deliverables[i])
	}
	return &domain.Milestone{
		ID:              model.ID,
		EscrowID:        model.EscrowID,
		Title:           model.Title,
		Description:     model.Description,
		Amount:          model.Amount,
		Position:        model.Position,
		Status:          domain.MilestoneStatus(model.Status),
		Terminal:        model.Terminal,
		ReleaseNonce:    model.ReleaseNonce,
		Deliverables:    deliverables,
		RejectionReason: model.RejectionReason,
		SubmittedAt:     model.SubmittedAt,
		ApprovedAt:      model.ApprovedAt,
		RejectedAt:      model.RejectedAt,
		CreatedAt:       model.CreatedAt,
		UpdatedAt:       model.UpdatedAt,
	}
}

func ToGORMMilestone(milestone *domain.Milestone) *models.MilestoneModel {
	deliverables := make([]models.DeliverableModel, len(milestone.Deliverables))
	for i, d := range milestone.Deliverables {
		deliverables[i] = *ToGORMDeliverable(d)
	}
	return &models.MilestoneModel{
		ID:              milestone.ID,
		EscrowID:        milestone.EscrowID,
		Title:           milestone.Title,
		Description:     milestone.Description,
		Amount:          milestone.Amount,
		Position:        milestone.Position,
		Status:          string(milestone.Status),
		Terminal:        milestone.Terminal,
		ReleaseNonce:    milestone.ReleaseNonce,
		Deliverables:    deliverables,
		RejectionReason: milestone.RejectionReason,
		SubmittedAt:     milestone.SubmittedAt,
		ApprovedAt:      milestone.ApprovedAt,
		RejectedAt:      milestone.RejectedAt,
		CreatedAt:       milestone.CreatedAt,
		UpdatedAt:       milestone.UpdatedAt,
	}
}

func ToDomainDeliverable(model *models.DeliverableModel) *domain.Deliverable {
	return &domain.Deliverable{
		ID:              model.ID,
		MilestoneID:     model.MilestoneID,
		Title:           model.Title,
		Description:     model.Description,
		FileRef:         model.FileRef,
		Status:          domain.DeliverableStatus(model.Status),
		RejectionReason: model.RejectionReason,
		CreatedAt:       model.CreatedAt,
		UpdatedAt:       model.UpdatedAt,
	}
}

func ToGORMDeliverable(deliverable *domain.Deliverable) *models.DeliverableModel {
	return &models.DeliverableModel{
		ID:              deliverable.ID,
		MilestoneID:     deliverable.MilestoneID,
		Title:           deliverable.Title,
		Description:     deliverable.Description,
		FileRef:         deliverable.FileRef,
		Status:          string(deliverable.Status),
		RejectionReason: deliverable.RejectionReason,
		CreatedAt:       deliverable.CreatedAt,
		UpdatedAt:       deliverable.UpdatedAt,
	}
}

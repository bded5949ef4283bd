package repository

import (
	"errors"

	"gorm.io/gorm"

	"github.com/talentbridge/escrow-service/internal/domain"
	"github.com/talentbridge/escrow-service/internal/infrastructure/postgres/mappers"
	"github.com/talentbridge/escrow-service/internal/infrastructure/postgres/models"
)

type DefaultMilestoneRepository struct {
	db *gorm.DB
}

func NewDefaultMilestoneRepository(db *gorm.DB) *DefaultMilestoneRepository {
	return &DefaultMilestoneRepository{db: db}
}

func (r *DefaultMilestoneRepository) GetMilestoneByID(milestoneID string) (*domain.Milestone, error) {
	var milestoneModel models.MilestoneModel
	if err := r.db.
		Preload("Deliverables").
		First(&milestoneModel, "id = ?", milestoneID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NotFound("milestone", milestoneID)
		}
		return nil, err
	}

	return mappers.ToDomainMilestone(&milestoneModel), nil
}

func (r *DefaultMilestoneRepository) UpdateMilestone(milestone *domain.Milestone) error {
	milestoneModel := mappers.ToGORMMilestone(milestone)
	// Deliverables are written through their own methods.
	milestoneModel.Deliverables = nil
	return r.db.Model(&models.MilestoneModel{ID: milestone.ID}).
		Select("status", "terminal", "rejection_reason", "submitted_at", "approved_at", "rejected_at", "updated_at").
		Updates(milestoneModel).Error
}

func (r *DefaultMilestoneRepository) CreateDeliverable(deliverable *domain.Deliverable) error {
	deliverableModel := mappers.ToGORMDeliverable(deliverable)
	if err := r.db.Create(deliverableModel).Error; err != nil {
		return err
	}
	deliverable.ID = deliverableModel.ID
	return nil
}

func (r *DefaultMilestoneRepository) UpdateDeliverable(deliverable *domain.Deliverable) error {
	deliverableModel := mappers.ToGORMDeliverable(deliverable)
	return r.db.Model(&models.DeliverableModel{ID: deliverable.ID}).
		Select("status", "rejection_reason", "updated_at").
		Updates(deliverableModel).Error
}

func (r *DefaultMilestoneRepository) GetDeliverableByID(deliverableID string) (*domain.Deliverable, error) {
	var deliverableModel models.DeliverableModel
	if err := r.db.First(&deliverableModel, "id = ?", deliverableID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NotFound("deliverable", deliverableID)
		}
		return nil, err
	}

	return mappers.ToDomainDeliverable(&deliverableModel), nil
}

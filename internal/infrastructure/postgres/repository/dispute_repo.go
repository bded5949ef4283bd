package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/talentbridge/escrow-service/internal/domain"
	"github.com/talentbridge/escrow-service/internal/infrastructure/postgres/mappers"
	"github.com/talentbridge/escrow-service/internal/infrastructure/postgres/models"
)

type DefaultDisputeRepository struct {
	db *gorm.DB
}

func NewDefaultDisputeRepository(db *gorm.DB) *DefaultDisputeRepository {
	return &DefaultDisputeRepository{db: db}
}

func (r *DefaultDisputeRepository) CreateDispute(dispute *domain.DisputeCase) error {
	disputeModel := mappers.ToGORMDispute(dispute)
	if err := r.db.Create(&disputeModel).Error; err != nil {
		return err
	}
	dispute.ID = disputeModel.ID
	return nil
}

func (r *DefaultDisputeRepository) GetDisputeByID(disputeID string) (*domain.DisputeCase, error) {
	var disputeModel models.DisputeModel
	if err := r.db.Model(&models.DisputeModel{}).Where("id = ?", disputeID).First(&disputeModel).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NotFound("dispute", disputeID)
		}
		return nil, err
	}

	return mappers.ToDomainDispute(&disputeModel), nil
}

func (r *DefaultDisputeRepository) UpdateDispute(dispute *domain.DisputeCase) error {
	disputeModel := mappers.ToGORMDispute(dispute)
	return r.db.Model(&models.DisputeModel{ID: dispute.ID}).
		Select("status", "resolution", "resolution_amount", "admin_notes", "resolved_at", "updated_at").
		Updates(disputeModel).Error
}

func (r *DefaultDisputeRepository) GetDisputes(filter domain.GetDisputesFilter) ([]*domain.DisputeCase, int64, error) {
	query := r.db.Model(&models.DisputeModel{})

	if filter.EscrowID != nil {
		query = query.Where("escrow_id = ?", *filter.EscrowID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count failed: %w", err)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := (page - 1) * limit
	query = query.Order("created_at DESC").Offset(offset).Limit(limit)

	var disputeModels []models.DisputeModel
	if err := query.Find(&disputeModels).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to find dispute models: %w", err)
	}

	disputes := make([]*domain.DisputeCase, len(disputeModels))
	for i, disputeModel := range disputeModels {
		disputes[i] = mappers.ToDomainDispute(&disputeModel)
	}

	return disputes, total, nil
}

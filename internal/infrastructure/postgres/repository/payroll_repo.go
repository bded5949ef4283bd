package repository

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/talentbridge/escrow-service/internal/domain"
	"github.com/talentbridge/escrow-service/internal/infrastructure/postgres/mappers"
	"github.com/talentbridge/escrow-service/internal/infrastructure/postgres/models"
)

type DefaultPayrollRepository struct {
	db *gorm.DB
}

func NewDefaultPayrollRepository(db *gorm.DB) *DefaultPayrollRepository {
	return &DefaultPayrollRepository{db: db}
}

func (r *DefaultPayrollRepository) CreateTimeEntry(entry *domain.TimeEntry) error {
	entryModel := mappers.ToGORMTimeEntry(entry)
	if err := r.db.Create(entryModel).Error; err != nil {
		return err
	}
	entry.ID = entryModel.ID
	return nil
}

func (r *DefaultPayrollRepository) GetTimeEntryByID(entryID string) (*domain.TimeEntry, error) {
	var entryModel models.TimeEntryModel
	if err := r.db.First(&entryModel, "id = ?", entryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NotFound("time entry", entryID)
		}
		return nil, err
	}

	return mappers.ToDomainTimeEntry(&entryModel), nil
}

func (r *DefaultPayrollRepository) UpdateTimeEntryStatus(entryID string, status domain.TimeEntryStatus) error {
	return r.db.Model(&models.TimeEntryModel{ID: entryID}).
		Update("status", string(status)).Error
}

func (r *DefaultPayrollRepository) GetTimeEntries(contractID string, statuses []domain.TimeEntryStatus, from, to time.Time) ([]*domain.TimeEntry, error) {
	query := r.db.Model(&models.TimeEntryModel{}).Where("contract_id = ?", contractID)

	if len(statuses) > 0 {
		values := make([]string, len(statuses))
		for i, s := range statuses {
			values[i] = string(s)
		}
		query = query.Where("status IN (?)", values)
	}
	if !from.IsZero() {
		query = query.Where("work_date >= ?", from)
	}
	if !to.IsZero() {
		query = query.Where("work_date < ?", to)
	}

	var entryModels []models.TimeEntryModel
	if err := query.Order("work_date ASC").Find(&entryModels).Error; err != nil {
		return nil, err
	}

	entries := make([]*domain.TimeEntry, len(entryModels))
	for i, entryModel := range entryModels {
		entries[i] = mappers.ToDomainTimeEntry(&entryModel)
	}

	return entries, nil
}

func (r *DefaultPayrollRepository) GetPeriodByID(periodID string) (*domain.PaymentPeriod, error) {
	var periodModel models.PaymentPeriodModel
	if err := r.db.First(&periodModel, "id = ?", periodID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NotFound("payment period", periodID)
		}
		return nil, err
	}

	period := mappers.ToDomainPeriod(&periodModel)
	if err := r.attachEntryIDs(period); err != nil {
		return nil, err
	}
	return period, nil
}

func (r *DefaultPayrollRepository) FindOverlappingPeriod(contractID string, start, end time.Time) (*domain.PaymentPeriod, error) {
	var periodModel models.PaymentPeriodModel
	err := r.db.Model(&models.PaymentPeriodModel{}).
		Where("contract_id = ?", contractID).
		Where("period_start < ? AND period_end > ?", end, start).
		First(&periodModel).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	period := mappers.ToDomainPeriod(&periodModel)
	if err := r.attachEntryIDs(period); err != nil {
		return nil, err
	}
	return period, nil
}

// ProcessPayrollOperation pays one period atomically. Time-entry ownership is
// re-checked inside the transaction so an entry can never land in two
// periods, even across processes.
func (r *DefaultPayrollRepository) ProcessPayrollOperation(op *domain.PayrollOperation, gatewayFn func() error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var claimed int64
		if err := tx.Model(&models.TimeEntryModel{}).
			Where("id IN (?)", op.EntryIDs).
			Where("status = ? AND (period_id = '' OR period_id IS NULL)", string(domain.TimeEntryApproved)).
			Count(&claimed).Error; err != nil {
			return err
		}
		if claimed != int64(len(op.EntryIDs)) {
			return domain.Validationf("time entries changed while processing: %d of %d still payable", claimed, len(op.EntryIDs))
		}

		periodModel := mappers.ToGORMPeriod(op.Period)
		if err := tx.Create(periodModel).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.TimeEntryModel{}).
			Where("id IN (?)", op.EntryIDs).
			Updates(map[string]interface{}{
				"status":     string(domain.TimeEntrySettled),
				"period_id":  op.Period.ID,
				"updated_at": time.Now(),
			}).Error; err != nil {
			return err
		}

		if gatewayFn != nil {
			if err := gatewayFn(); err != nil {
				return err
			}
		}

		if err := upsertTransaction(tx, op.Entry); err != nil {
			return err
		}

		return nil
	})
}

func (r *DefaultPayrollRepository) attachEntryIDs(period *domain.PaymentPeriod) error {
	var ids []string
	if err := r.db.Model(&models.TimeEntryModel{}).
		Where("period_id = ?", period.ID).
		Pluck("id", &ids).Error; err != nil {
		return err
	}
	period.TimeEntryIDs = ids
	return nil
}

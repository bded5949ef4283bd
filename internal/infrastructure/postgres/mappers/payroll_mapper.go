package mappers

import (
	"github.com/talentbridge/escrow-service/internal/domain"
	"github.com/talentbridge/escrow-service/internal/infrastructure/postgres/models"
)

func ToDomainPeriod(model *models.PaymentPeriodModel) *domain.PaymentPeriod {
	return &domain.PaymentPeriod{
		ID:          model.ID,
		ContractID:  model.ContractID,
		TalentID:    model.TalentID,
		PeriodStart: model.PeriodStart,
		PeriodEnd:   model.PeriodEnd,
		TotalHours:  model.TotalHours,
		TotalAmount: model.TotalAmount,
		FeeAmount:   model.FeeAmount,
		TaxAmount:   model.TaxAmount,
		NetAmount:   model.NetAmount,
		Status:      domain.PeriodStatus(model.Status),
		PayoutNonce: model.PayoutNonce,
		Notes:       model.Notes,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}
}

func ToGORMPeriod(period *domain.PaymentPeriod) *models.PaymentPeriodModel {
	return &models.PaymentPeriodModel{
		ID:          period.ID,
		ContractID:  period.ContractID,
		TalentID:    period.TalentID,
		PeriodStart: period.PeriodStart,
		PeriodEnd:   period.PeriodEnd,
		TotalHours:  period.TotalHours,
		TotalAmount: period.TotalAmount,
		FeeAmount:   period.FeeAmount,
		TaxAmount:   period.TaxAmount,
		NetAmount:   period.NetAmount,
		Status:      string(period.Status),
		PayoutNonce: period.PayoutNonce,
		Notes:       period.Notes,
		CreatedAt:   period.CreatedAt,
		UpdatedAt:   period.UpdatedAt,
	}
}

func ToDomainTimeEntry(model *models.TimeEntryModel) *domain.TimeEntry {
	return &domain.TimeEntry{
		ID:          model.ID,
		ContractID:  model.ContractID,
		TalentID:    model.TalentID,
		WorkDate:    model.WorkDate,
		Hours:       model.Hours,
		HourlyRate:  model.HourlyRate,
		Description: model.Description,
		Status:      domain.TimeEntryStatus(model.Status),
		PeriodID:    model.PeriodID,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}
}

func ToGORMTimeEntry(entry *domain.TimeEntry) *models.TimeEntryModel {
	return &models.TimeEntryModel{
		ID:          entry.ID,
		ContractID:  entry.ContractID,
		TalentID:    entry.TalentID,
		WorkDate:    entry.WorkDate,
		Hours:       entry.Hours,
		HourlyRate:  entry.HourlyRate,
		Description: entry.Description,
		Status:      string(entry.Status),
		PeriodID:    entry.PeriodID,
		CreatedAt:   entry.CreatedAt,
		UpdatedAt:   entry.UpdatedAt,
	}
}

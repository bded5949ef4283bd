package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentPeriodModel struct {
	ID          string `gorm:"primaryKey"`
	ContractID  string `gorm:"index"`
	TalentID    string
	PeriodStart time.Time `gorm:"index"`
	PeriodEnd   time.Time
	TotalHours  decimal.Decimal `gorm:"type:decimal(12,2)"`
	TotalAmount decimal.Decimal `gorm:"type:decimal(32,2)"`
	FeeAmount   decimal.Decimal `gorm:"type:decimal(32,2)"`
	TaxAmount   decimal.Decimal `gorm:"type:decimal(32,2)"`
	NetAmount   decimal.Decimal `gorm:"type:decimal(32,2)"`
	Status      string `gorm:"index"`
	PayoutNonce string
	Notes       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type TimeEntryModel struct {
	ID          string `gorm:"primaryKey"`
	ContractID  string `gorm:"index"`
	TalentID    string
	WorkDate    time.Time
	Hours       decimal.Decimal `gorm:"type:decimal(6,2)"`
	HourlyRate  decimal.Decimal `gorm:"type:decimal(12,2)"`
	Description string
	Status      string `gorm:"index"`
	PeriodID    string `gorm:"index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

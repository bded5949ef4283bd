package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionModel rows are append-only: completed rows are never updated,
// corrections land as new compensating rows.
type TransactionModel struct {
	ID             string `gorm:"primaryKey"`
	EscrowID       string `gorm:"index"`
	ContractID     string `gorm:"index"`
	MilestoneID    string
	PeriodID       string
	Type           string
	Amount         decimal.Decimal `gorm:"type:decimal(32,2)"`
	NetAmount      decimal.Decimal `gorm:"type:decimal(32,2)"`
	FeeAmount      decimal.Decimal `gorm:"type:decimal(32,2)"`
	TaxAmount      decimal.Decimal `gorm:"type:decimal(32,2)"`
	IdempotencyKey string `gorm:"uniqueIndex"`
	GatewayTxID    string
	Status         string `gorm:"index"`
	CreatedAt      time.Time
}

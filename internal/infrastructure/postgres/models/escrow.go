package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type EscrowAccountModel struct {
	ID             string `gorm:"primaryKey"`
	ContractID     string `gorm:"uniqueIndex"`
	BusinessID     string `gorm:"index"`
	TalentID       string `gorm:"index"`
	TotalAmount    decimal.Decimal `gorm:"type:decimal(32,2)"`
	ReleasedAmount decimal.Decimal `gorm:"type:decimal(32,2)"`
	PendingAmount  decimal.Decimal `gorm:"type:decimal(32,2)"`
	Status         string `gorm:"index"`
	DisputedFlag   bool
	FundingTxID    string
	FundingNonce   string
	Milestones     []MilestoneModel `gorm:"foreignKey:EscrowID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

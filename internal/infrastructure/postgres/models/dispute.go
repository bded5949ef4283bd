package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type DisputeModel struct {
	ID               string `gorm:"primaryKey"`
	EscrowID         string `gorm:"index"`
	MilestoneID      string `gorm:"index"`
	InitiatedBy      string
	Reason           string
	Description      string
	Status           string `gorm:"index"`
	Resolution       string
	ResolutionAmount decimal.Decimal `gorm:"type:decimal(32,2)"`
	AdminNotes       string
	Escrow           EscrowAccountModel `gorm:"foreignKey:EscrowID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;"`
	ResolvedAt       *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

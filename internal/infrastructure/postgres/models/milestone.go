package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type MilestoneModel struct {
	ID              string `gorm:"primaryKey"`
	EscrowID        string `gorm:"index"`
	Title           string
	Description     string
	Amount          decimal.Decimal `gorm:"type:decimal(32,2)"`
	Position        int
	Status          string `gorm:"index"`
	Terminal        bool
	ReleaseNonce    string
	RejectionReason string
	Deliverables    []DeliverableModel `gorm:"foreignKey:MilestoneID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;"`
	SubmittedAt     *time.Time
	ApprovedAt      *time.Time
	RejectedAt      *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type DeliverableModel struct {
	ID              string `gorm:"primaryKey"`
	MilestoneID     string `gorm:"index"`
	Title           string
	Description     string
	FileRef         string
	Status          string
	RejectionReason string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type DisputeStatus string

const (
	DisputeOpen        DisputeStatus = "open"
	DisputeUnderReview DisputeStatus = "under_review"
	DisputeResolved    DisputeStatus = "resolved"
)

type DisputeResolution string

const (
	ResolutionRefundBusiness DisputeResolution = "refund_business"
	ResolutionReleaseTalent  DisputeResolution = "release_talent"
	ResolutionPartialSplit   DisputeResolution = "partial_split"
)

type DisputeCase struct {
	ID               string
	EscrowID         string
	MilestoneID      string
	InitiatedBy      Role
	Reason           string
	Description      string
	Status           DisputeStatus
	Resolution       DisputeResolution
	ResolutionAmount decimal.Decimal
	AdminNotes       string
	ResolvedAt       *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

type GetDisputesFilter struct {
	EscrowID *string
	Status   *string
	Page     int
	Limit    int
}

type DisputeRepository interface {
	CreateDispute(dispute *DisputeCase) error
	GetDisputeByID(disputeID string) (*DisputeCase, error)
	UpdateDispute(dispute *DisputeCase) error
	GetDisputes(filter GetDisputesFilter) ([]*DisputeCase, int64, error)
}

type DisputeUsecase interface {
	InitiateDispute(ctx context.Context, input *InitiateDisputeInput, actor Actor) (*DisputeCase, error)
	ResolveDispute(ctx context.Context, input *ResolveDisputeInput, actor Actor) (*DisputeCase, error)
	GetDisputeByID(ctx context.Context, disputeID string) (*DisputeCase, error)
	GetDisputes(ctx context.Context, filter GetDisputesFilter) ([]*DisputeCase, int64, error)
}

type InitiateDisputeInput struct {
	EscrowID    string
	MilestoneID string
	Reason      string
	Description string
}

type ResolveDisputeInput struct {
	DisputeID        string
	Resolution       DisputeResolution
	ResolutionAmount decimal.Decimal
	AdminNotes       string
}

package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type MilestoneStatus string

const (
	MilestonePending    MilestoneStatus = "pending"
	MilestoneInProgress MilestoneStatus = "in_progress"
	MilestoneSubmitted  MilestoneStatus = "submitted"
	MilestoneApproved   MilestoneStatus = "approved"
	MilestoneRejected   MilestoneStatus = "rejected"
	MilestoneDisputed   MilestoneStatus = "disputed"
	MilestoneReleased   MilestoneStatus = "released"
)

type Milestone struct {
	ID              string
	EscrowID        string
	Title           string
	Description     string
	Amount          decimal.Decimal
	Position        int
	Status          MilestoneStatus
	Terminal        bool
	ReleaseNonce    string
	Deliverables    []*Deliverable
	RejectionReason string
	SubmittedAt     *time.Time
	ApprovedAt      *time.Time
	RejectedAt      *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type DeliverableStatus string

const (
	DeliverablePending   DeliverableStatus = "pending"
	DeliverableSubmitted DeliverableStatus = "submitted"
	DeliverableApproved  DeliverableStatus = "approved"
	DeliverableRejected  DeliverableStatus = "rejected"
)

// Deliverable is a talent-submitted artifact. FileRef is an opaque pointer
// into external file storage; the engine never reads file bytes.
type Deliverable struct {
	ID              string
	MilestoneID     string
	Title           string
	Description     string
	FileRef         string
	Status          DeliverableStatus
	RejectionReason string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type MilestoneRepository interface {
	GetMilestoneByID(milestoneID string) (*Milestone, error)
	UpdateMilestone(milestone *Milestone) error
	CreateDeliverable(deliverable *Deliverable) error
	UpdateDeliverable(deliverable *Deliverable) error
	GetDeliverableByID(deliverableID string) (*Deliverable, error)
}

type MilestoneUsecase interface {
	StartMilestone(ctx context.Context, escrowID, milestoneID string, actor Actor) error
	SubmitMilestone(ctx context.Context, escrowID, milestoneID string, actor Actor) error
	ApproveMilestone(ctx context.Context, escrowID, milestoneID string, actor Actor) error
	RejectMilestone(ctx context.Context, escrowID, milestoneID, reason string, actor Actor) error
	AddDeliverable(ctx context.Context, escrowID, milestoneID string, input *AddDeliverableInput, actor Actor) (*Deliverable, error)
	ReviewDeliverable(ctx context.Context, escrowID, deliverableID string, approve bool, reason string, actor Actor) error
}

type AddDeliverableInput struct {
	Title       string
	Description string
	FileRef     string
}

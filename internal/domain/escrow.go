package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type EscrowStatus string

const (
	EscrowCreated           EscrowStatus = "created"
	EscrowFunded            EscrowStatus = "funded"
	EscrowPartiallyReleased EscrowStatus = "partially_released"
	EscrowCompleted         EscrowStatus = "completed"
	EscrowDisputed          EscrowStatus = "disputed"
	EscrowCancelled         EscrowStatus = "cancelled"
)

// EscrowAccount holds a contract's funds. ReleasedAmount counts everything
// disbursed out of escrow (payouts and refunds alike), so
// ReleasedAmount + PendingAmount == TotalAmount holds at all times.
type EscrowAccount struct {
	ID             string
	ContractID     string
	BusinessID     string
	TalentID       string
	Milestones     []*Milestone
	TotalAmount    decimal.Decimal
	ReleasedAmount decimal.Decimal
	PendingAmount  decimal.Decimal
	Status         EscrowStatus
	DisputedFlag   bool
	FundingTxID    string
	FundingNonce   string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// MilestoneByID looks a milestone up on the loaded account.
func (a *EscrowAccount) MilestoneByID(milestoneID string) *Milestone {
	for _, m := range a.Milestones {
		if m.ID == milestoneID {
			return m
		}
	}
	return nil
}

// Terminal reports whether every milestone has left the payable set.
func (a *EscrowAccount) Terminal() bool {
	for _, m := range a.Milestones {
		if m.Status != MilestoneReleased && !(m.Status == MilestoneRejected && m.Terminal) {
			return false
		}
	}
	return true
}

type MilestoneSpec struct {
	Title       string
	Description string
	Amount      decimal.Decimal
}

// EscrowSummary is the aggregate view for dashboards.
type EscrowSummary struct {
	EscrowID       string
	Status         EscrowStatus
	TotalAmount    decimal.Decimal
	ReleasedAmount decimal.Decimal
	PendingAmount  decimal.Decimal
	DisputedAmount decimal.Decimal
	Milestones     int
	OpenDisputes   int
}

// EscrowOperation describes one atomic state change on an account: the
// post-state of the account and one milestone plus the ledger entry to append.
// The repository applies all of it in a single transaction, running the
// gateway call between the pending ledger write and its completion.
type EscrowOperation struct {
	EscrowID        string
	Operation       string
	AccountStatus   EscrowStatus
	ReleasedAmount  decimal.Decimal
	PendingAmount   decimal.Decimal
	DisputedFlag    bool
	FundingTxID     string
	MilestoneID     string
	MilestoneStatus MilestoneStatus
	Terminal        bool
	Entries         []*Transaction
	CreatedAt       time.Time
}

type EscrowRepository interface {
	CreateEscrow(account *EscrowAccount) error
	GetEscrowByID(escrowID string) (*EscrowAccount, error)
	GetEscrowByContractID(contractID string) (*EscrowAccount, error)
	SetFundingNonce(escrowID, nonce string) error
	ProcessEscrowOperation(op *EscrowOperation, gatewayFn func() error) error
	CountOpenDisputes(escrowID string) (int64, error)
}

type EscrowUsecase interface {
	CreateEscrow(ctx context.Context, input *CreateEscrowInput) (*EscrowAccount, error)
	FundEscrow(ctx context.Context, escrowID, paymentMethodRef string, actor Actor) (*EscrowAccount, error)
	ReleaseMilestone(ctx context.Context, escrowID, milestoneID string, actor Actor) (*EscrowAccount, error)
	CancelEscrow(ctx context.Context, escrowID, reason string, actor Actor) (*EscrowAccount, error)
	GetEscrowByID(ctx context.Context, escrowID string) (*EscrowAccount, error)
	GetSummary(ctx context.Context, escrowID string) (*EscrowSummary, error)
	GetTransactions(ctx context.Context, escrowID string, page, limit int) ([]*Transaction, int64, error)
	GetTransaction(ctx context.Context, transactionID string) (*Transaction, error)
}

type CreateEscrowInput struct {
	ContractID string
	BusinessID string
	TalentID   string
	Milestones []MilestoneSpec
}

package milestone

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/talentbridge/escrow-service/internal/domain"
	"github.com/talentbridge/escrow-service/internal/infrastructure/locker"
)

type memEscrowRepo struct {
	mu       sync.Mutex
	accounts map[string]*domain.EscrowAccount
}

func (r *memEscrowRepo) CreateEscrow(account *domain.EscrowAccount) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.accounts[account.ID] = account
	return nil
}

func (r *memEscrowRepo) GetEscrowByID(escrowID string) (*domain.EscrowAccount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	account, ok := r.accounts[escrowID]
	if !ok {
		return nil, domain.NotFound("escrow", escrowID)
	}
	return account, nil
}

func (r *memEscrowRepo) GetEscrowByContractID(contractID string) (*domain.EscrowAccount, error) {
	return nil, domain.NotFound("escrow for contract", contractID)
}

func (r *memEscrowRepo) SetFundingNonce(escrowID, nonce string) error { return nil }

func (r *memEscrowRepo) ProcessEscrowOperation(op *domain.EscrowOperation, gatewayFn func() error) error {
	return nil
}

func (r *memEscrowRepo) CountOpenDisputes(escrowID string) (int64, error) { return 0, nil }

type memMilestoneRepo struct {
	mu           sync.Mutex
	deliverables map[string]*domain.Deliverable
	accounts     *memEscrowRepo
}

func (r *memMilestoneRepo) GetMilestoneByID(milestoneID string) (*domain.Milestone, error) {
	r.accounts.mu.Lock()
	defer r.accounts.mu.Unlock()
	for _, account := range r.accounts.accounts {
		if m := account.MilestoneByID(milestoneID); m != nil {
			return m, nil
		}
	}
	return nil, domain.NotFound("milestone", milestoneID)
}

func (r *memMilestoneRepo) UpdateMilestone(milestone *domain.Milestone) error { return nil }

func (r *memMilestoneRepo) CreateDeliverable(deliverable *domain.Deliverable) error {
	r.mu.Lock()
	r.deliverables[deliverable.ID] = deliverable
	r.mu.Unlock()

	milestone, err := r.GetMilestoneByID(deliverable.MilestoneID)
	if err != nil {
		return err
	}
	milestone.Deliverables = append(milestone.Deliverables, deliverable)
	return nil
}

func (r *memMilestoneRepo) UpdateDeliverable(deliverable *domain.Deliverable) error { return nil }

func (r *memMilestoneRepo) GetDeliverableByID(deliverableID string) (*domain.Deliverable, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.deliverables[deliverableID]
	if !ok {
		return nil, domain.NotFound("deliverable", deliverableID)
	}
	return d, nil
}

func newTestUsecase() (*DefaultMilestoneUsecase, *domain.EscrowAccount) {
	escrowRepo := &memEscrowRepo{accounts: make(map[string]*domain.EscrowAccount)}
	milestoneRepo := &memMilestoneRepo{
		deliverables: make(map[string]*domain.Deliverable),
		accounts:     escrowRepo,
	}
	account := &domain.EscrowAccount{
		ID:         "esc-1",
		ContractID: "contract-1",
		BusinessID: "biz-1",
		TalentID:   "tal-1",
		Status:     domain.EscrowFunded,
		Milestones: []*domain.Milestone{
			{ID: "ms-1", EscrowID: "esc-1", Title: "design", Amount: decimal.NewFromInt(500), Status: domain.MilestonePending},
		},
	}
	escrowRepo.CreateEscrow(account)
	return NewDefaultMilestoneUsecase(escrowRepo, milestoneRepo, locker.NewKeyedLocker()), account
}

func business() domain.Actor { return domain.Actor{ID: "biz-1", Role: domain.RoleBusiness} }
func talent() domain.Actor   { return domain.Actor{ID: "tal-1", Role: domain.RoleTalent} }

func attachDeliverable(t *testing.T, uc *DefaultMilestoneUsecase) *domain.Deliverable {
	t.Helper()
	d, err := uc.AddDeliverable(context.Background(), "esc-1", "ms-1",
		&domain.AddDeliverableInput{Title: "mockups", FileRef: "s3://bucket/mockups.zip"}, talent())
	if err != nil {
		t.Fatalf("AddDeliverable: %v", err)
	}
	return d
}

func TestMilestoneHappyPath(t *testing.T) {
	uc, account := newTestUsecase()
	ctx := context.Background()
	milestone := account.Milestones[0]

	if err := uc.StartMilestone(ctx, "esc-1", "ms-1", talent()); err != nil {
		t.Fatalf("StartMilestone: %v", err)
	}
	if milestone.Status != domain.MilestoneInProgress {
		t.Fatalf("expected in_progress, got %s", milestone.Status)
	}

	attachDeliverable(t, uc)

	if err := uc.SubmitMilestone(ctx, "esc-1", "ms-1", talent()); err != nil {
		t.Fatalf("SubmitMilestone: %v", err)
	}
	if milestone.Status != domain.MilestoneSubmitted || milestone.SubmittedAt == nil {
		t.Fatalf("expected submitted with timestamp, got %s", milestone.Status)
	}

	if err := uc.ApproveMilestone(ctx, "esc-1", "ms-1", business()); err != nil {
		t.Fatalf("ApproveMilestone: %v", err)
	}
	if milestone.Status != domain.MilestoneApproved || milestone.ApprovedAt == nil {
		t.Fatalf("expected approved with timestamp, got %s", milestone.Status)
	}
}

func TestSubmitRequiresDeliverable(t *testing.T) {
	uc, _ := newTestUsecase()
	ctx := context.Background()

	if err := uc.StartMilestone(ctx, "esc-1", "ms-1", talent()); err != nil {
		t.Fatalf("StartMilestone: %v", err)
	}
	if err := uc.SubmitMilestone(ctx, "esc-1", "ms-1", talent()); !domain.IsValidation(err) {
		t.Fatalf("expected ValidationError without deliverables, got %v", err)
	}
}

func TestRejectAndResubmit(t *testing.T) {
	uc, account := newTestUsecase()
	ctx := context.Background()
	milestone := account.Milestones[0]

	if err := uc.StartMilestone(ctx, "esc-1", "ms-1", talent()); err != nil {
		t.Fatalf("StartMilestone: %v", err)
	}
	attachDeliverable(t, uc)
	if err := uc.SubmitMilestone(ctx, "esc-1", "ms-1", talent()); err != nil {
		t.Fatalf("SubmitMilestone: %v", err)
	}

	if err := uc.RejectMilestone(ctx, "esc-1", "ms-1", "", business()); !domain.IsValidation(err) {
		t.Fatalf("rejection without reason: expected ValidationError, got %v", err)
	}
	if err := uc.RejectMilestone(ctx, "esc-1", "ms-1", "missing pages", business()); err != nil {
		t.Fatalf("RejectMilestone: %v", err)
	}
	if milestone.Status != domain.MilestoneRejected || milestone.RejectionReason != "missing pages" {
		t.Fatalf("expected rejected with reason, got %s / %q", milestone.Status, milestone.RejectionReason)
	}

	// Rework and resubmit clears the rejection reason.
	if err := uc.StartMilestone(ctx, "esc-1", "ms-1", talent()); err != nil {
		t.Fatalf("StartMilestone after rejection: %v", err)
	}
	if err := uc.SubmitMilestone(ctx, "esc-1", "ms-1", talent()); err != nil {
		t.Fatalf("SubmitMilestone after rework: %v", err)
	}
	if milestone.RejectionReason != "" {
		t.Fatalf("expected rejection reason cleared, got %q", milestone.RejectionReason)
	}
}

func TestTransitionGuards(t *testing.T) {
	uc, account := newTestUsecase()
	ctx := context.Background()
	milestone := account.Milestones[0]

	tests := []struct {
		name  string
		setup func()
		call  func() error
		check func(error) bool
	}{
		{
			name:  "business cannot start",
			setup: func() { milestone.Status = domain.MilestonePending },
			call:  func() error { return uc.StartMilestone(ctx, "esc-1", "ms-1", business()) },
			check: domain.IsAuthorization,
		},
		{
			name:  "talent cannot approve",
			setup: func() { milestone.Status = domain.MilestoneSubmitted },
			call:  func() error { return uc.ApproveMilestone(ctx, "esc-1", "ms-1", talent()) },
			check: domain.IsAuthorization,
		},
		{
			name:  "cannot skip to approve from pending",
			setup: func() { milestone.Status = domain.MilestonePending },
			call:  func() error { return uc.ApproveMilestone(ctx, "esc-1", "ms-1", business()) },
			check: domain.IsInvalidState,
		},
		{
			name:  "released milestone cannot be rejected",
			setup: func() { milestone.Status = domain.MilestoneReleased },
			call:  func() error { return uc.RejectMilestone(ctx, "esc-1", "ms-1", "nope", business()) },
			check: domain.IsInvalidState,
		},
		{
			name:  "disputed milestone blocks approval",
			setup: func() { milestone.Status = domain.MilestoneDisputed },
			call:  func() error { return uc.ApproveMilestone(ctx, "esc-1", "ms-1", business()) },
			check: domain.IsInvalidState,
		},
		{
			name:  "disputed milestone blocks rejection",
			setup: func() { milestone.Status = domain.MilestoneDisputed },
			call:  func() error { return uc.RejectMilestone(ctx, "esc-1", "ms-1", "reason", business()) },
			check: domain.IsInvalidState,
		},
		{
			name:  "terminal rejection cannot restart",
			setup: func() { milestone.Status = domain.MilestoneRejected; milestone.Terminal = true },
			call:  func() error { return uc.StartMilestone(ctx, "esc-1", "ms-1", talent()) },
			check: domain.IsInvalidState,
		},
		{
			name:  "unknown milestone",
			setup: func() {},
			call:  func() error { return uc.StartMilestone(ctx, "esc-1", "missing", talent()) },
			check: domain.IsNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			milestone.Terminal = false
			tt.setup()
			if err := tt.call(); !tt.check(err) {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestReviewDeliverable(t *testing.T) {
	uc, _ := newTestUsecase()
	ctx := context.Background()

	if err := uc.StartMilestone(ctx, "esc-1", "ms-1", talent()); err != nil {
		t.Fatalf("StartMilestone: %v", err)
	}
	d := attachDeliverable(t, uc)

	if err := uc.ReviewDeliverable(ctx, "esc-1", d.ID, false, "", business()); !domain.IsValidation(err) {
		t.Fatalf("rejection without reason: expected ValidationError, got %v", err)
	}
	if err := uc.ReviewDeliverable(ctx, "esc-1", d.ID, false, "wrong format", business()); err != nil {
		t.Fatalf("ReviewDeliverable: %v", err)
	}
	if d.Status != domain.DeliverableRejected || d.RejectionReason != "wrong format" {
		t.Fatalf("expected rejected deliverable, got %s / %q", d.Status, d.RejectionReason)
	}

	// Reviewed deliverables are immutable.
	if err := uc.ReviewDeliverable(ctx, "esc-1", d.ID, true, "", business()); !domain.IsInvalidState(err) {
		t.Fatalf("expected InvalidStateError on second review, got %v", err)
	}
}

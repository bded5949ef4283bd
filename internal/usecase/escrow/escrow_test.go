package escrow

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/talentbridge/escrow-service/internal/domain"
	"github.com/talentbridge/escrow-service/internal/infrastructure/locker"
	"github.com/talentbridge/escrow-service/internal/service/fees"
)

type memLedger struct {
	mu      sync.Mutex
	entries []*domain.Transaction
}

func (l *memLedger) AppendTransaction(tx *domain.Transaction) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	copied := *tx
	l.entries = append(l.entries, &copied)
	return nil
}

func (l *memLedger) GetTransactionByID(txID string) (*domain.Transaction, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, tx := range l.entries {
		if tx.ID == txID {
			return tx, nil
		}
	}
	return nil, domain.NotFound("transaction", txID)
}

func (l *memLedger) GetTransactionByIdempotencyKey(key string) (*domain.Transaction, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, tx := range l.entries {
		if tx.IdempotencyKey == key {
			return tx, nil
		}
	}
	return nil, domain.NotFound("transaction", key)
}

func (l *memLedger) GetEscrowTransactions(escrowID string, page, limit int) ([]*domain.Transaction, int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []*domain.Transaction
	for _, tx := range l.entries {
		if tx.EscrowID == escrowID {
			out = append(out, tx)
		}
	}
	return out, int64(len(out)), nil
}

func (l *memLedger) FindPendingTransactions(olderThan time.Time) ([]*domain.Transaction, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []*domain.Transaction
	for _, tx := range l.entries {
		if tx.Status == domain.TxPending && tx.CreatedAt.Before(olderThan) {
			out = append(out, tx)
		}
	}
	return out, nil
}

func (l *memLedger) FinalizeTransaction(txID string, status domain.TransactionStatus, gatewayTxID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, tx := range l.entries {
		if tx.ID == txID && tx.Status == domain.TxPending {
			tx.Status = status
			tx.GatewayTxID = gatewayTxID
			return nil
		}
	}
	return domain.InvalidStatef("transaction %s is not pending", txID)
}

// upsertByKey mirrors the repository's write path: a row already present
// under the idempotency key is finalized instead of duplicated.
func (l *memLedger) upsertByKey(tx *domain.Transaction) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, e := range l.entries {
		if e.IdempotencyKey == tx.IdempotencyKey {
			e.Status = tx.Status
			e.GatewayTxID = tx.GatewayTxID
			return nil
		}
	}
	copied := *tx
	l.entries = append(l.entries, &copied)
	return nil
}

func (l *memLedger) countByType(txType domain.TransactionType) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, tx := range l.entries {
		if tx.Type == txType {
			n++
		}
	}
	return n
}

type memEscrowRepo struct {
	mu           sync.Mutex
	accounts     map[string]*domain.EscrowAccount
	ledger       *memLedger
	openDisputes int64
	contractErr  error
}

func newMemEscrowRepo(ledger *memLedger) *memEscrowRepo {
	return &memEscrowRepo{accounts: make(map[string]*domain.EscrowAccount), ledger: ledger}
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
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.contractErr != nil {
		return nil, r.contractErr
	}
	for _, account := range r.accounts {
		if account.ContractID == contractID {
			return account, nil
		}
	}
	return nil, domain.NotFound("escrow for contract", contractID)
}

func (r *memEscrowRepo) SetFundingNonce(escrowID, nonce string) error {
	account, err := r.GetEscrowByID(escrowID)
	if err != nil {
		return err
	}
	account.FundingNonce = nonce
	return nil
}

func (r *memEscrowRepo) ProcessEscrowOperation(op *domain.EscrowOperation, gatewayFn func() error) error {
	if gatewayFn != nil {
		if err := gatewayFn(); err != nil {
			return err
		}
	}

	r.mu.Lock()
	account, ok := r.accounts[op.EscrowID]
	r.mu.Unlock()
	if !ok {
		return domain.NotFound("escrow", op.EscrowID)
	}

	account.Status = op.AccountStatus
	account.ReleasedAmount = op.ReleasedAmount
	account.PendingAmount = op.PendingAmount
	account.DisputedFlag = op.DisputedFlag
	if op.FundingTxID != "" {
		account.FundingTxID = op.FundingTxID
	}
	if op.MilestoneID != "" {
		if m := account.MilestoneByID(op.MilestoneID); m != nil {
			m.Status = op.MilestoneStatus
			m.Terminal = op.Terminal
		}
	}
	for _, entry := range op.Entries {
		if err := r.ledger.upsertByKey(entry); err != nil {
			return err
		}
	}
	return nil
}

func (r *memEscrowRepo) CountOpenDisputes(escrowID string) (int64, error) {
	return r.openDisputes, nil
}

type fakeGateway struct {
	mu       sync.Mutex
	calls    []string
	err      error
	captures int
	payouts  int
	refunds  int
}

func (g *fakeGateway) Capture(ctx context.Context, amount decimal.Decimal, paymentMethodRef, idempotencyKey string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, "capture:"+idempotencyKey)
	if g.err != nil {
		return "", g.err
	}
	g.captures++
	return fmt.Sprintf("gw-cap-%d", g.captures), nil
}

func (g *fakeGateway) Payout(ctx context.Context, amount decimal.Decimal, payeeAccountRef, idempotencyKey string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, "payout:"+idempotencyKey)
	if g.err != nil {
		return "", g.err
	}
	g.payouts++
	return fmt.Sprintf("gw-pay-%d", g.payouts), nil
}

func (g *fakeGateway) Refund(ctx context.Context, gatewayTxID string, amount decimal.Decimal) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, "refund:"+gatewayTxID)
	if g.err != nil {
		return "", g.err
	}
	g.refunds++
	return fmt.Sprintf("gw-ref-%d", g.refunds), nil
}

func newTestUsecase() (*DefaultEscrowUsecase, *memEscrowRepo, *memLedger, *fakeGateway) {
	ledger := &memLedger{}
	repo := newMemEscrowRepo(ledger)
	gw := &fakeGateway{}
	uc := NewDefaultEscrowUsecase(repo, ledger, gw, fees.DefaultSchedule(), locker.NewKeyedLocker(), nil)
	return uc, repo, ledger, gw
}

func createTestEscrow(t *testing.T, uc *DefaultEscrowUsecase, amounts ...string) *domain.EscrowAccount {
	t.Helper()
	input := &domain.CreateEscrowInput{
		ContractID: "contract-1",
		BusinessID: "biz-1",
		TalentID:   "tal-1",
	}
	for i, a := range amounts {
		input.Milestones = append(input.Milestones, domain.MilestoneSpec{
			Title:  fmt.Sprintf("milestone %d", i+1),
			Amount: decimal.RequireFromString(a),
		})
	}
	account, err := uc.CreateEscrow(context.Background(), input)
	if err != nil {
		t.Fatalf("CreateEscrow: %v", err)
	}
	return account
}

func business() domain.Actor { return domain.Actor{ID: "biz-1", Role: domain.RoleBusiness} }
func talent() domain.Actor   { return domain.Actor{ID: "tal-1", Role: domain.RoleTalent} }

func TestCreateEscrowValidation(t *testing.T) {
	uc, _, _, _ := newTestUsecase()

	tests := []struct {
		name  string
		input *domain.CreateEscrowInput
	}{
		{
			name:  "missing ids",
			input: &domain.CreateEscrowInput{ContractID: "c", Milestones: []domain.MilestoneSpec{{Amount: decimal.NewFromInt(100)}}},
		},
		{
			name:  "no milestones",
			input: &domain.CreateEscrowInput{ContractID: "c", BusinessID: "b", TalentID: "t"},
		},
		{
			name: "zero amount milestone",
			input: &domain.CreateEscrowInput{
				ContractID: "c", BusinessID: "b", TalentID: "t",
				Milestones: []domain.MilestoneSpec{{Title: "m", Amount: decimal.Zero}},
			},
		},
		{
			name: "negative amount milestone",
			input: &domain.CreateEscrowInput{
				ContractID: "c", BusinessID: "b", TalentID: "t",
				Milestones: []domain.MilestoneSpec{{Title: "m", Amount: decimal.NewFromInt(-5)}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := uc.CreateEscrow(context.Background(), tt.input); !domain.IsValidation(err) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
		})
	}
}

func TestCreateEscrowRejectsDuplicateContract(t *testing.T) {
	uc, _, _, _ := newTestUsecase()
	createTestEscrow(t, uc, "500")

	_, err := uc.CreateEscrow(context.Background(), &domain.CreateEscrowInput{
		ContractID: "contract-1",
		BusinessID: "biz-1",
		TalentID:   "tal-1",
		Milestones: []domain.MilestoneSpec{{Title: "again", Amount: decimal.NewFromInt(100)}},
	})
	if !domain.IsInvalidState(err) {
		t.Fatalf("expected InvalidStateError, got %v", err)
	}
}

func TestCreateEscrowInitialState(t *testing.T) {
	uc, _, _, _ := newTestUsecase()
	account := createTestEscrow(t, uc, "500", "500")

	if account.Status != domain.EscrowCreated {
		t.Fatalf("expected status created, got %s", account.Status)
	}
	if !account.TotalAmount.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("expected total 1000, got %s", account.TotalAmount)
	}
	if !account.ReleasedAmount.IsZero() || !account.PendingAmount.IsZero() {
		t.Fatalf("expected zero balances before funding, got released %s pending %s",
			account.ReleasedAmount, account.PendingAmount)
	}
	if account.FundingNonce == "" {
		t.Fatal("expected funding nonce to be minted at creation")
	}
	for i, m := range account.Milestones {
		if m.Status != domain.MilestonePending {
			t.Fatalf("milestone %d: expected pending, got %s", i, m.Status)
		}
		if m.ReleaseNonce == "" {
			t.Fatalf("milestone %d: expected release nonce", i)
		}
	}
}

func TestFundEscrow(t *testing.T) {
	uc, _, ledger, gw := newTestUsecase()
	account := createTestEscrow(t, uc, "500", "500")

	funded, err := uc.FundEscrow(context.Background(), account.ID, "pm-card-1", business())
	if err != nil {
		t.Fatalf("FundEscrow: %v", err)
	}
	if funded.Status != domain.EscrowFunded {
		t.Fatalf("expected funded, got %s", funded.Status)
	}
	if !funded.PendingAmount.Equal(funded.TotalAmount) {
		t.Fatalf("expected pending == total after funding, got %s", funded.PendingAmount)
	}
	if funded.FundingTxID == "" {
		t.Fatal("expected funding tx id from gateway")
	}
	if got := ledger.countByType(domain.TxFunding); got != 1 {
		t.Fatalf("expected 1 funding entry, got %d", got)
	}
	entry := ledger.entries[0]
	if entry.Status != domain.TxCompleted {
		t.Fatalf("expected completed funding entry, got %s", entry.Status)
	}
	wantKey := account.ID + ":funding:" + account.FundingNonce
	if entry.IdempotencyKey != wantKey {
		t.Fatalf("expected idempotency key %s, got %s", wantKey, entry.IdempotencyKey)
	}
	if len(gw.calls) != 1 || gw.calls[0] != "capture:"+wantKey {
		t.Fatalf("unexpected gateway calls: %v", gw.calls)
	}
}

func TestFundEscrowGuards(t *testing.T) {
	uc, _, _, _ := newTestUsecase()
	account := createTestEscrow(t, uc, "500")

	if _, err := uc.FundEscrow(context.Background(), account.ID, "pm-1", talent()); !domain.IsAuthorization(err) {
		t.Fatalf("talent funding: expected AuthorizationError, got %v", err)
	}
	if _, err := uc.FundEscrow(context.Background(), account.ID, "", business()); !domain.IsValidation(err) {
		t.Fatalf("missing payment method: expected ValidationError, got %v", err)
	}

	if _, err := uc.FundEscrow(context.Background(), account.ID, "pm-1", business()); err != nil {
		t.Fatalf("FundEscrow: %v", err)
	}
	if _, err := uc.FundEscrow(context.Background(), account.ID, "pm-1", business()); !domain.IsInvalidState(err) {
		t.Fatalf("double funding: expected InvalidStateError, got %v", err)
	}
}

func TestFundEscrowFinishesPriorCapture(t *testing.T) {
	uc, _, ledger, gw := newTestUsecase()
	account := createTestEscrow(t, uc, "500")

	// A previous attempt captured at the gateway but the status write was
	// lost. The completed ledger entry under the funding key must complete
	// the funding locally without a second capture.
	ledger.AppendTransaction(&domain.Transaction{
		ID:             "tx-prior",
		EscrowID:       account.ID,
		Type:           domain.TxFunding,
		Amount:         account.TotalAmount,
		IdempotencyKey: account.ID + ":funding:" + account.FundingNonce,
		GatewayTxID:    "gw-cap-prior",
		Status:         domain.TxCompleted,
		CreatedAt:      time.Now(),
	})

	funded, err := uc.FundEscrow(context.Background(), account.ID, "pm-1", business())
	if err != nil {
		t.Fatalf("FundEscrow: %v", err)
	}
	if len(gw.calls) != 0 {
		t.Fatalf("expected no gateway call, got %v", gw.calls)
	}
	if funded.Status != domain.EscrowFunded {
		t.Fatalf("expected funded, got %s", funded.Status)
	}
	if funded.FundingTxID != "gw-cap-prior" {
		t.Fatalf("expected the prior capture id, got %q", funded.FundingTxID)
	}
	if !funded.PendingAmount.Equal(funded.TotalAmount) {
		t.Fatalf("expected pending == total, got %s", funded.PendingAmount)
	}
	if got := ledger.countByType(domain.TxFunding); got != 1 {
		t.Fatalf("expected the single prior funding entry, got %d", got)
	}
}

func TestFundEscrowRetryAfterTimeout(t *testing.T) {
	uc, _, ledger, gw := newTestUsecase()
	account := createTestEscrow(t, uc, "500")

	gw.err = &domain.GatewayError{Msg: "request timed out", Err: errors.New("context deadline exceeded")}
	if _, err := uc.FundEscrow(context.Background(), account.ID, "pm-1", business()); !domain.IsGateway(err) {
		t.Fatalf("expected GatewayError, got %v", err)
	}
	if got := ledger.countByType(domain.TxFunding); got != 1 {
		t.Fatalf("expected a pending funding entry after timeout, got %d", got)
	}

	gw.err = nil
	funded, err := uc.FundEscrow(context.Background(), account.ID, "pm-1", business())
	if err != nil {
		t.Fatalf("retry FundEscrow: %v", err)
	}
	if funded.Status != domain.EscrowFunded {
		t.Fatalf("expected funded, got %s", funded.Status)
	}

	// Both attempts carried the same idempotency key, and the retry
	// finalized the pending row instead of inserting a second one.
	wantCall := "capture:" + account.ID + ":funding:" + account.FundingNonce
	if len(gw.calls) != 2 || gw.calls[0] != wantCall || gw.calls[1] != wantCall {
		t.Fatalf("expected two captures under one key, got %v", gw.calls)
	}
	if got := ledger.countByType(domain.TxFunding); got != 1 {
		t.Fatalf("expected a single funding entry after retry, got %d", got)
	}
	entry, err := ledger.GetTransactionByIdempotencyKey(account.ID + ":funding:" + account.FundingNonce)
	if err != nil {
		t.Fatalf("GetTransactionByIdempotencyKey: %v", err)
	}
	if entry.Status != domain.TxCompleted || entry.GatewayTxID == "" {
		t.Fatalf("expected finalized entry, got %s %q", entry.Status, entry.GatewayTxID)
	}
}

func TestCreateEscrowSurfacesContractLookupError(t *testing.T) {
	uc, repo, _, _ := newTestUsecase()
	repo.contractErr = errors.New("connection refused")

	_, err := uc.CreateEscrow(context.Background(), &domain.CreateEscrowInput{
		ContractID: "contract-1",
		BusinessID: "biz-1",
		TalentID:   "tal-1",
		Milestones: []domain.MilestoneSpec{{Title: "m", Amount: decimal.NewFromInt(100)}},
	})
	if err == nil || domain.IsInvalidState(err) || domain.IsNotFound(err) {
		t.Fatalf("expected the lookup error to surface, got %v", err)
	}
	if len(repo.accounts) != 0 {
		t.Fatalf("expected no account created, got %d", len(repo.accounts))
	}
}

func TestReleaseMilestoneFlow(t *testing.T) {
	uc, _, ledger, _ := newTestUsecase()
	account := createTestEscrow(t, uc, "500", "500")

	if _, err := uc.FundEscrow(context.Background(), account.ID, "pm-1", business()); err != nil {
		t.Fatalf("FundEscrow: %v", err)
	}

	first, second := account.Milestones[0], account.Milestones[1]
	first.Status = domain.MilestoneSubmitted
	second.Status = domain.MilestoneApproved

	released, err := uc.ReleaseMilestone(context.Background(), account.ID, first.ID, business())
	if err != nil {
		t.Fatalf("ReleaseMilestone(first): %v", err)
	}
	if released.Status != domain.EscrowPartiallyReleased {
		t.Fatalf("expected partially_released, got %s", released.Status)
	}
	if !released.ReleasedAmount.Equal(decimal.NewFromInt(500)) || !released.PendingAmount.Equal(decimal.NewFromInt(500)) {
		t.Fatalf("expected 500/500 split, got released %s pending %s", released.ReleasedAmount, released.PendingAmount)
	}
	if !released.ReleasedAmount.Add(released.PendingAmount).Equal(released.TotalAmount) {
		t.Fatal("released + pending must equal total")
	}
	if first.Status != domain.MilestoneReleased {
		t.Fatalf("expected released milestone, got %s", first.Status)
	}

	released, err = uc.ReleaseMilestone(context.Background(), account.ID, second.ID, business())
	if err != nil {
		t.Fatalf("ReleaseMilestone(second): %v", err)
	}
	if released.Status != domain.EscrowCompleted {
		t.Fatalf("expected completed, got %s", released.Status)
	}
	if !released.PendingAmount.IsZero() {
		t.Fatalf("expected zero pending, got %s", released.PendingAmount)
	}

	if got := ledger.countByType(domain.TxMilestoneRelease); got != 2 {
		t.Fatalf("expected 2 release entries, got %d", got)
	}
	// 500 gross: 8% platform = 40, 2.9% + 0.30 processing = 14.80, net 445.20.
	for _, tx := range ledger.entries {
		if tx.Type != domain.TxMilestoneRelease {
			continue
		}
		if !tx.Amount.Equal(decimal.NewFromInt(-500)) {
			t.Fatalf("expected -500 ledger amount, got %s", tx.Amount)
		}
		if !tx.NetAmount.Equal(decimal.RequireFromString("445.20")) {
			t.Fatalf("expected net 445.20, got %s", tx.NetAmount)
		}
		if !tx.FeeAmount.Equal(decimal.RequireFromString("54.80")) {
			t.Fatalf("expected fees 54.80, got %s", tx.FeeAmount)
		}
	}
}

func TestReleaseMilestoneGuards(t *testing.T) {
	uc, _, _, _ := newTestUsecase()
	account := createTestEscrow(t, uc, "500", "500")

	// Unfunded escrow cannot release.
	account.Milestones[0].Status = domain.MilestoneSubmitted
	if _, err := uc.ReleaseMilestone(context.Background(), account.ID, account.Milestones[0].ID, business()); !domain.IsInvalidState(err) {
		t.Fatalf("unfunded release: expected InvalidStateError, got %v", err)
	}

	if _, err := uc.FundEscrow(context.Background(), account.ID, "pm-1", business()); err != nil {
		t.Fatalf("FundEscrow: %v", err)
	}

	if _, err := uc.ReleaseMilestone(context.Background(), account.ID, account.Milestones[1].ID, business()); !domain.IsInvalidState(err) {
		t.Fatalf("pending milestone release: expected InvalidStateError, got %v", err)
	}
	if _, err := uc.ReleaseMilestone(context.Background(), account.ID, account.Milestones[0].ID, talent()); !domain.IsAuthorization(err) {
		t.Fatalf("talent release: expected AuthorizationError, got %v", err)
	}
	if _, err := uc.ReleaseMilestone(context.Background(), account.ID, "nope", business()); !domain.IsNotFound(err) {
		t.Fatalf("unknown milestone: expected NotFoundError, got %v", err)
	}
}

func TestReleaseGatewayRejectionLeavesStateUntouched(t *testing.T) {
	uc, _, ledger, gw := newTestUsecase()
	account := createTestEscrow(t, uc, "500")

	if _, err := uc.FundEscrow(context.Background(), account.ID, "pm-1", business()); err != nil {
		t.Fatalf("FundEscrow: %v", err)
	}
	milestone := account.Milestones[0]
	milestone.Status = domain.MilestoneSubmitted

	gw.err = &domain.GatewayError{Msg: "card declined"}
	if _, err := uc.ReleaseMilestone(context.Background(), account.ID, milestone.ID, business()); !domain.IsGateway(err) {
		t.Fatalf("expected GatewayError, got %v", err)
	}

	if account.Status != domain.EscrowFunded {
		t.Fatalf("expected status funded after failed release, got %s", account.Status)
	}
	if milestone.Status != domain.MilestoneSubmitted {
		t.Fatalf("expected milestone back to submitted, got %s", milestone.Status)
	}
	if !account.PendingAmount.Equal(account.TotalAmount) {
		t.Fatalf("expected pending unchanged, got %s", account.PendingAmount)
	}
	// Clean rejection: no ledger entry at all.
	if got := ledger.countByType(domain.TxMilestoneRelease); got != 0 {
		t.Fatalf("expected no release entries, got %d", got)
	}
}

func TestReleaseGatewayTimeoutRecordsPending(t *testing.T) {
	uc, _, ledger, gw := newTestUsecase()
	account := createTestEscrow(t, uc, "500")

	if _, err := uc.FundEscrow(context.Background(), account.ID, "pm-1", business()); err != nil {
		t.Fatalf("FundEscrow: %v", err)
	}
	account.Milestones[0].Status = domain.MilestoneSubmitted

	gw.err = &domain.GatewayError{Msg: "request timed out", Err: errors.New("context deadline exceeded")}
	if _, err := uc.ReleaseMilestone(context.Background(), account.ID, account.Milestones[0].ID, business()); !domain.IsGateway(err) {
		t.Fatalf("expected GatewayError, got %v", err)
	}

	// Ambiguous outcome: a pending entry is kept for reconciliation.
	pending, err := ledger.FindPendingTransactions(time.Now().Add(time.Second))
	if err != nil {
		t.Fatalf("FindPendingTransactions: %v", err)
	}
	found := false
	for _, tx := range pending {
		if tx.Type == domain.TxMilestoneRelease {
			found = true
		}
	}
	if !found {
		t.Fatal("expected a pending release entry after gateway timeout")
	}
	if account.Status != domain.EscrowFunded {
		t.Fatalf("expected balances untouched, got status %s", account.Status)
	}
}

func TestCancelEscrow(t *testing.T) {
	t.Run("before funding refunds nothing", func(t *testing.T) {
		uc, _, ledger, gw := newTestUsecase()
		account := createTestEscrow(t, uc, "500")

		cancelled, err := uc.CancelEscrow(context.Background(), account.ID, "changed plans", business())
		if err != nil {
			t.Fatalf("CancelEscrow: %v", err)
		}
		if cancelled.Status != domain.EscrowCancelled {
			t.Fatalf("expected cancelled, got %s", cancelled.Status)
		}
		if len(ledger.entries) != 0 {
			t.Fatalf("expected empty ledger, got %d entries", len(ledger.entries))
		}
		if gw.refunds != 0 {
			t.Fatalf("expected no refund call, got %d", gw.refunds)
		}
	})

	t.Run("after funding refunds in full", func(t *testing.T) {
		uc, _, ledger, gw := newTestUsecase()
		account := createTestEscrow(t, uc, "500")
		if _, err := uc.FundEscrow(context.Background(), account.ID, "pm-1", business()); err != nil {
			t.Fatalf("FundEscrow: %v", err)
		}

		cancelled, err := uc.CancelEscrow(context.Background(), account.ID, "contract fell through", business())
		if err != nil {
			t.Fatalf("CancelEscrow: %v", err)
		}
		if cancelled.Status != domain.EscrowCancelled {
			t.Fatalf("expected cancelled, got %s", cancelled.Status)
		}
		if !cancelled.PendingAmount.IsZero() {
			t.Fatalf("expected zero pending, got %s", cancelled.PendingAmount)
		}
		if !cancelled.ReleasedAmount.Equal(cancelled.TotalAmount) {
			t.Fatalf("expected full amount disbursed, got %s", cancelled.ReleasedAmount)
		}
		if gw.refunds != 1 {
			t.Fatalf("expected 1 refund call, got %d", gw.refunds)
		}
		if got := ledger.countByType(domain.TxRefund); got != 1 {
			t.Fatalf("expected 1 refund entry, got %d", got)
		}
	})

	t.Run("after a release is illegal", func(t *testing.T) {
		uc, _, _, _ := newTestUsecase()
		account := createTestEscrow(t, uc, "500", "500")
		if _, err := uc.FundEscrow(context.Background(), account.ID, "pm-1", business()); err != nil {
			t.Fatalf("FundEscrow: %v", err)
		}
		account.Milestones[0].Status = domain.MilestoneSubmitted
		if _, err := uc.ReleaseMilestone(context.Background(), account.ID, account.Milestones[0].ID, business()); err != nil {
			t.Fatalf("ReleaseMilestone: %v", err)
		}

		if _, err := uc.CancelEscrow(context.Background(), account.ID, "too late", business()); !domain.IsInvalidState(err) {
			t.Fatalf("expected InvalidStateError, got %v", err)
		}
	})
}

func TestConcurrentReleaseSingleWinner(t *testing.T) {
	uc, _, ledger, gw := newTestUsecase()
	account := createTestEscrow(t, uc, "500")

	if _, err := uc.FundEscrow(context.Background(), account.ID, "pm-1", business()); err != nil {
		t.Fatalf("FundEscrow: %v", err)
	}
	account.Milestones[0].Status = domain.MilestoneSubmitted

	var wg sync.WaitGroup
	results := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := uc.ReleaseMilestone(context.Background(), account.ID, account.Milestones[0].ID, business())
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var successes, invalidState int
	for err := range results {
		switch {
		case err == nil:
			successes++
		case domain.IsInvalidState(err):
			invalidState++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if successes != 1 || invalidState != 1 {
		t.Fatalf("expected exactly one winner, got %d successes and %d invalid-state errors", successes, invalidState)
	}
	if gw.payouts != 1 {
		t.Fatalf("expected a single payout, got %d", gw.payouts)
	}
	if got := ledger.countByType(domain.TxMilestoneRelease); got != 1 {
		t.Fatalf("expected a single release entry, got %d", got)
	}
}

func TestGetSummary(t *testing.T) {
	uc, repo, _, _ := newTestUsecase()
	account := createTestEscrow(t, uc, "300", "700")
	if _, err := uc.FundEscrow(context.Background(), account.ID, "pm-1", business()); err != nil {
		t.Fatalf("FundEscrow: %v", err)
	}
	account.Milestones[0].Status = domain.MilestoneDisputed
	repo.openDisputes = 1

	summary, err := uc.GetSummary(context.Background(), account.ID)
	if err != nil {
		t.Fatalf("GetSummary: %v", err)
	}
	if !summary.DisputedAmount.Equal(decimal.NewFromInt(300)) {
		t.Fatalf("expected disputed amount 300, got %s", summary.DisputedAmount)
	}
	if summary.OpenDisputes != 1 {
		t.Fatalf("expected 1 open dispute, got %d", summary.OpenDisputes)
	}
	if summary.Milestones != 2 {
		t.Fatalf("expected 2 milestones, got %d", summary.Milestones)
	}
}

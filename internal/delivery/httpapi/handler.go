package httpapi

import (
	"time"

	"github.com/talentbridge/escrow-service/internal/domain"
)

// Handler bridges the HTTP surface to the usecases. It owns no business
// logic: parse, delegate, render.
type Handler struct {
	escrowUC    domain.EscrowUsecase
	milestoneUC domain.MilestoneUsecase
	disputeUC   domain.DisputeUsecase
	payrollUC   domain.PayrollUsecase
}

func NewHandler(
	escrowUC domain.EscrowUsecase,
	milestoneUC domain.MilestoneUsecase,
	disputeUC domain.DisputeUsecase,
	payrollUC domain.PayrollUsecase,
) *Handler {
	return &Handler{
		escrowUC:    escrowUC,
		milestoneUC: milestoneUC,
		disputeUC:   disputeUC,
		payrollUC:   payrollUC,
	}
}

type deliverableView struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	Description     string `json:"description,omitempty"`
	FileRef         string `json:"file_ref,omitempty"`
	Status          string `json:"status"`
	RejectionReason string `json:"rejection_reason,omitempty"`
}

type milestoneView struct {
	ID              string            `json:"id"`
	Title           string            `json:"title"`
	Description     string            `json:"description,omitempty"`
	Amount          string            `json:"amount"`
	Position        int               `json:"position"`
	Status          string            `json:"status"`
	Terminal        bool              `json:"terminal"`
	RejectionReason string            `json:"rejection_reason,omitempty"`
	Deliverables    []deliverableView `json:"deliverables,omitempty"`
	SubmittedAt     *time.Time        `json:"submitted_at,omitempty"`
	ApprovedAt      *time.Time        `json:"approved_at,omitempty"`
	RejectedAt      *time.Time        `json:"rejected_at,omitempty"`
}

type escrowView struct {
	ID             string          `json:"id"`
	ContractID     string          `json:"contract_id"`
	BusinessID     string          `json:"business_id"`
	TalentID       string          `json:"talent_id"`
	TotalAmount    string          `json:"total_amount"`
	ReleasedAmount string          `json:"released_amount"`
	PendingAmount  string          `json:"pending_amount"`
	Status         string          `json:"status"`
	Disputed       bool            `json:"disputed"`
	Milestones     []milestoneView `json:"milestones"`
	CreatedAt      time.Time       `json:"created_at"`
}

type transactionView struct {
	ID          string    `json:"id"`
	EscrowID    string    `json:"escrow_id,omitempty"`
	ContractID  string    `json:"contract_id,omitempty"`
	MilestoneID string    `json:"milestone_id,omitempty"`
	PeriodID    string    `json:"period_id,omitempty"`
	Type        string    `json:"type"`
	Amount      string    `json:"amount"`
	NetAmount   string    `json:"net_amount"`
	FeeAmount   string    `json:"fee_amount"`
	TaxAmount   string    `json:"tax_amount"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

type disputeView struct {
	ID               string     `json:"id"`
	EscrowID         string     `json:"escrow_id"`
	MilestoneID      string     `json:"milestone_id"`
	InitiatedBy      string     `json:"initiated_by"`
	Reason           string     `json:"reason"`
	Description      string     `json:"description,omitempty"`
	Status           string     `json:"status"`
	Resolution       string     `json:"resolution,omitempty"`
	ResolutionAmount string     `json:"resolution_amount,omitempty"`
	AdminNotes       string     `json:"admin_notes,omitempty"`
	ResolvedAt       *time.Time `json:"resolved_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

type periodView struct {
	ID           string    `json:"id,omitempty"`
	ContractID   string    `json:"contract_id"`
	TalentID     string    `json:"talent_id,omitempty"`
	PeriodStart  time.Time `json:"period_start"`
	PeriodEnd    time.Time `json:"period_end"`
	TimeEntryIDs []string  `json:"time_entry_ids"`
	TotalHours   string    `json:"total_hours"`
	TotalAmount  string    `json:"total_amount"`
	FeeAmount    string    `json:"fee_amount"`
	TaxAmount    string    `json:"tax_amount"`
	NetAmount    string    `json:"net_amount"`
	Status       string    `json:"status"`
	Notes        string    `json:"notes,omitempty"`
}

type timeEntryView struct {
	ID          string    `json:"id"`
	ContractID  string    `json:"contract_id"`
	TalentID    string    `json:"talent_id"`
	WorkDate    string    `json:"work_date"`
	Hours       string    `json:"hours"`
	HourlyRate  string    `json:"hourly_rate"`
	Description string    `json:"description,omitempty"`
	Status      string    `json:"status"`
	PeriodID    string    `json:"period_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func toEscrowView(account *domain.EscrowAccount) escrowView {
	view := escrowView{
		ID:             account.ID,
		ContractID:     account.ContractID,
		BusinessID:     account.BusinessID,
		TalentID:       account.TalentID,
		TotalAmount:    account.TotalAmount.String(),
		ReleasedAmount: account.ReleasedAmount.String(),
		PendingAmount:  account.PendingAmount.String(),
		Status:         string(account.Status),
		Disputed:       account.DisputedFlag,
		Milestones:     make([]milestoneView, 0, len(account.Milestones)),
		CreatedAt:      account.CreatedAt,
	}
	for _, m := range account.Milestones {
		view.Milestones = append(view.Milestones, toMilestoneView(m))
	}
	return view
}

func toMilestoneView(m *domain.Milestone) milestoneView {
	view := milestoneView{
		ID:              m.ID,
		Title:           m.Title,
		Description:     m.Description,
		Amount:          m.Amount.String(),
		Position:        m.Position,
		Status:          string(m.Status),
		Terminal:        m.Terminal,
		RejectionReason: m.RejectionReason,
		SubmittedAt:     m.SubmittedAt,
		ApprovedAt:      m.ApprovedAt,
		RejectedAt:      m.RejectedAt,
	}
	for _, d := range m.Deliverables {
		view.Deliverables = append(view.Deliverables, deliverableView{
			ID:              d.ID,
			Title:           d.Title,
			Description:     d.Description,
			FileRef:         d.FileRef,
			Status:          string(d.Status),
			RejectionReason: d.RejectionReason,
		})
	}
	return view
}

func toTransactionView(tx *domain.Transaction) transactionView {
	return transactionView{
		ID:          tx.ID,
		EscrowID:    tx.EscrowID,
		ContractID:  tx.ContractID,
		MilestoneID: tx.MilestoneID,
		PeriodID:    tx.PeriodID,
		Type:        string(tx.Type),
		Amount:      tx.Amount.String(),
		NetAmount:   tx.NetAmount.String(),
		FeeAmount:   tx.FeeAmount.String(),
		TaxAmount:   tx.TaxAmount.String(),
		Status:      string(tx.Status),
		CreatedAt:   tx.CreatedAt,
	}
}

func toDisputeView(d *domain.DisputeCase) disputeView {
	view := disputeView{
		ID:          d.ID,
		EscrowID:    d.EscrowID,
		MilestoneID: d.MilestoneID,
		InitiatedBy: string(d.InitiatedBy),
		Reason:      d.Reason,
		Description: d.Description,
		Status:      string(d.Status),
		Resolution:  string(d.Resolution),
		AdminNotes:  d.AdminNotes,
		ResolvedAt:  d.ResolvedAt,
		CreatedAt:   d.CreatedAt,
	}
	if !d.ResolutionAmount.IsZero() {
		view.ResolutionAmount = d.ResolutionAmount.String()
	}
	return view
}

func toPeriodView(p *domain.PaymentPeriod) periodView {
	return periodView{
		ID:           p.ID,
		ContractID:   p.ContractID,
		TalentID:     p.TalentID,
		PeriodStart:  p.PeriodStart,
		PeriodEnd:    p.PeriodEnd,
		TimeEntryIDs: p.TimeEntryIDs,
		TotalHours:   p.TotalHours.String(),
		TotalAmount:  p.TotalAmount.String(),
		FeeAmount:    p.FeeAmount.String(),
		TaxAmount:    p.TaxAmount.String(),
		NetAmount:    p.NetAmount.String(),
		Status:       string(p.Status),
		Notes:        p.Notes,
	}
}

func toTimeEntryView(e *domain.TimeEntry) timeEntryView {
	return timeEntryView{
		ID:          e.ID,
		ContractID:  e.ContractID,
		TalentID:    e.TalentID,
		WorkDate:    e.WorkDate.Format(time.DateOnly),
		Hours:       e.Hours.String(),
		HourlyRate:  e.HourlyRate.String(),
		Description: e.Description,
		Status:      string(e.Status),
		PeriodID:    e.PeriodID,
		CreatedAt:   e.CreatedAt,
	}
}

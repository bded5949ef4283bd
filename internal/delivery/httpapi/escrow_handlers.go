package httpapi

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/talentbridge/escrow-service/internal/domain"
)

type createEscrowRequest struct {
	ContractID string `json:"contract_id"`
	BusinessID string `json:"business_id"`
	TalentID   string `json:"talent_id"`
	Milestones []struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Amount      string `json:"amount"`
	} `json:"milestones"`
}

func (h *Handler) CreateEscrow(w http.ResponseWriter, r *http.Request) {
	var req createEscrowRequest
	if !decodeBody(w, r, &req) {
		return
	}

	input := &domain.CreateEscrowInput{
		ContractID: req.ContractID,
		BusinessID: req.BusinessID,
		TalentID:   req.TalentID,
	}
	for _, m := range req.Milestones {
		amount, err := decimal.NewFromString(m.Amount)
		if err != nil {
			writeError(w, domain.Validationf("invalid milestone amount %q", m.Amount))
			return
		}
		input.Milestones = append(input.Milestones, domain.MilestoneSpec{
			Title:       m.Title,
			Description: m.Description,
			Amount:      amount,
		})
	}

	account, err := h.escrowUC.CreateEscrow(r.Context(), input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toEscrowView(account))
}

type fundEscrowRequest struct {
	PaymentMethodRef string `json:"payment_method_ref"`
}

func (h *Handler) FundEscrow(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req fundEscrowRequest
	if !decodeBody(w, r, &req) {
		return
	}

	account, err := h.escrowUC.FundEscrow(r.Context(), chi.URLParam(r, "escrowID"), req.PaymentMethodRef, actor)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toEscrowView(account))
}

func (h *Handler) ReleaseMilestone(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}

	account, err := h.escrowUC.ReleaseMilestone(r.Context(),
		chi.URLParam(r, "escrowID"), chi.URLParam(r, "milestoneID"), actor)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toEscrowView(account))
}

type cancelEscrowRequest struct {
	Reason string `json:"reason"`
}

func (h *Handler) CancelEscrow(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req cancelEscrowRequest
	if !decodeBody(w, r, &req) {
		return
	}

	account, err := h.escrowUC.CancelEscrow(r.Context(), chi.URLParam(r, "escrowID"), req.Reason, actor)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toEscrowView(account))
}

func (h *Handler) GetEscrow(w http.ResponseWriter, r *http.Request) {
	account, err := h.escrowUC.GetEscrowByID(r.Context(), chi.URLParam(r, "escrowID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toEscrowView(account))
}

func (h *Handler) GetEscrowSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.escrowUC.GetSummary(r.Context(), chi.URLParam(r, "escrowID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"escrow_id":       summary.EscrowID,
		"status":          string(summary.Status),
		"total_amount":    summary.TotalAmount.String(),
		"released_amount": summary.ReleasedAmount.String(),
		"pending_amount":  summary.PendingAmount.String(),
		"disputed_amount": summary.DisputedAmount.String(),
		"milestones":      summary.Milestones,
		"open_disputes":   summary.OpenDisputes,
	})
}

func (h *Handler) GetEscrowTransactions(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	transactions, total, err := h.escrowUC.GetTransactions(r.Context(), chi.URLParam(r, "escrowID"), page, limit)
	if err != nil {
		writeError(w, err)
		return
	}

	views := make([]transactionView, 0, len(transactions))
	for _, tx := range transactions {
		views = append(views, toTransactionView(tx))
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"transactions": views,
		"total":        total,
	})
}

func (h *Handler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	tx, err := h.escrowUC.GetTransaction(r.Context(), chi.URLParam(r, "transactionID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionView(tx))
}

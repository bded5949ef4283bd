package httpapi

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/talentbridge/escrow-service/internal/domain"
)

type initiateDisputeRequest struct {
	MilestoneID string `json:"milestone_id"`
	Reason      string `json:"reason"`
	Description string `json:"description"`
}

func (h *Handler) InitiateDispute(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req initiateDisputeRequest
	if !decodeBody(w, r, &req) {
		return
	}

	disputeCase, err := h.disputeUC.InitiateDispute(r.Context(), &domain.InitiateDisputeInput{
		EscrowID:    chi.URLParam(r, "escrowID"),
		MilestoneID: req.MilestoneID,
		Reason:      req.Reason,
		Description: req.Description,
	}, actor)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toDisputeView(disputeCase))
}

type resolveDisputeRequest struct {
	Resolution       string `json:"resolution"`
	ResolutionAmount string `json:"resolution_amount"`
	AdminNotes       string `json:"admin_notes"`
}

func (h *Handler) ResolveDispute(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req resolveDisputeRequest
	if !decodeBody(w, r, &req) {
		return
	}

	input := &domain.ResolveDisputeInput{
		DisputeID:  chi.URLParam(r, "disputeID"),
		Resolution: domain.DisputeResolution(req.Resolution),
		AdminNotes: req.AdminNotes,
	}
	if req.ResolutionAmount != "" {
		amount, err := decimal.NewFromString(req.ResolutionAmount)
		if err != nil {
			writeError(w, domain.Validationf("invalid resolution amount %q", req.ResolutionAmount))
			return
		}
		input.ResolutionAmount = amount
	}

	disputeCase, err := h.disputeUC.ResolveDispute(r.Context(), input, actor)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toDisputeView(disputeCase))
}

func (h *Handler) GetDispute(w http.ResponseWriter, r *http.Request) {
	disputeCase, err := h.disputeUC.GetDisputeByID(r.Context(), chi.URLParam(r, "disputeID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toDisputeView(disputeCase))
}

func (h *Handler) ListDisputes(w http.ResponseWriter, r *http.Request) {
	filter := domain.GetDisputesFilter{}
	if v := r.URL.Query().Get("escrow_id"); v != "" {
		filter.EscrowID = &v
	}
	if v := r.URL.Query().Get("status"); v != "" {
		filter.Status = &v
	}
	filter.Page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	filter.Limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))

	disputes, total, err := h.disputeUC.GetDisputes(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}

	views := make([]disputeView, 0, len(disputes))
	for _, d := range disputes {
		views = append(views, toDisputeView(d))
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"disputes": views,
		"total":    total,
	})
}

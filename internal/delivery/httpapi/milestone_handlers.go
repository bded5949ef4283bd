package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/talentbridge/escrow-service/internal/domain"
)

func (h *Handler) transition(w http.ResponseWriter, r *http.Request,
	fn func(escrowID, milestoneID string, actor domain.Actor) error) {
	actor, err := actorFromRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}
	escrowID := chi.URLParam(r, "escrowID")
	milestoneID := chi.URLParam(r, "milestoneID")
	if err := fn(escrowID, milestoneID, actor); err != nil {
		writeError(w, err)
		return
	}

	account, err := h.escrowUC.GetEscrowByID(r.Context(), escrowID)
	if err != nil {
		writeError(w, err)
		return
	}
	milestone := account.MilestoneByID(milestoneID)
	if milestone == nil {
		writeError(w, domain.NotFound("milestone", milestoneID))
		return
	}
	writeJSON(w, http.StatusOK, toMilestoneView(milestone))
}

func (h *Handler) StartMilestone(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(escrowID, milestoneID string, actor domain.Actor) error {
		return h.milestoneUC.StartMilestone(r.Context(), escrowID, milestoneID, actor)
	})
}

func (h *Handler) SubmitMilestone(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(escrowID, milestoneID string, actor domain.Actor) error {
		return h.milestoneUC.SubmitMilestone(r.Context(), escrowID, milestoneID, actor)
	})
}

func (h *Handler) ApproveMilestone(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(escrowID, milestoneID string, actor domain.Actor) error {
		return h.milestoneUC.ApproveMilestone(r.Context(), escrowID, milestoneID, actor)
	})
}

type rejectMilestoneRequest struct {
	Reason string `json:"reason"`
}

func (h *Handler) RejectMilestone(w http.ResponseWriter, r *http.Request) {
	var req rejectMilestoneRequest
	if !decodeBody(w, r, &req) {
		return
	}
	h.transition(w, r, func(escrowID, milestoneID string, actor domain.Actor) error {
		return h.milestoneUC.RejectMilestone(r.Context(), escrowID, milestoneID, req.Reason, actor)
	})
}

type addDeliverableRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	FileRef     string `json:"file_ref"`
}

func (h *Handler) AddDeliverable(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req addDeliverableRequest
	if !decodeBody(w, r, &req) {
		return
	}

	deliverable, err := h.milestoneUC.AddDeliverable(r.Context(),
		chi.URLParam(r, "escrowID"), chi.URLParam(r, "milestoneID"),
		&domain.AddDeliverableInput{
			Title:       req.Title,
			Description: req.Description,
			FileRef:     req.FileRef,
		}, actor)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, deliverableView{
		ID:          deliverable.ID,
		Title:       deliverable.Title,
		Description: deliverable.Description,
		FileRef:     deliverable.FileRef,
		Status:      string(deliverable.Status),
	})
}

type reviewDeliverableRequest struct {
	Approve bool   `json:"approve"`
	Reason  string `json:"reason"`
}

func (h *Handler) ReviewDeliverable(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req reviewDeliverableRequest
	if !decodeBody(w, r, &req) {
		return
	}

	err = h.milestoneUC.ReviewDeliverable(r.Context(),
		chi.URLParam(r, "escrowID"), chi.URLParam(r, "deliverableID"),
		req.Approve, req.Reason, actor)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "reviewed"})
}

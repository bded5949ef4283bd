package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/talentbridge/escrow-service/internal/domain"
)

type logTimeRequest struct {
	ContractID  string `json:"contract_id"`
	WorkDate    string `json:"work_date"`
	Hours       string `json:"hours"`
	HourlyRate  string `json:"hourly_rate"`
	Description string `json:"description"`
}

func (h *Handler) LogTime(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req logTimeRequest
	if !decodeBody(w, r, &req) {
		return
	}

	workDate, err := time.Parse(time.DateOnly, req.WorkDate)
	if err != nil {
		writeError(w, domain.Validationf("invalid work date %q, expected YYYY-MM-DD", req.WorkDate))
		return
	}
	hours, err := decimal.NewFromString(req.Hours)
	if err != nil {
		writeError(w, domain.Validationf("invalid hours %q", req.Hours))
		return
	}
	rate, err := decimal.NewFromString(req.HourlyRate)
	if err != nil {
		writeError(w, domain.Validationf("invalid hourly rate %q", req.HourlyRate))
		return
	}

	entry, err := h.payrollUC.LogTime(r.Context(), &domain.LogTimeInput{
		ContractID:  req.ContractID,
		WorkDate:    workDate,
		Hours:       hours,
		HourlyRate:  rate,
		Description: req.Description,
	}, actor)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTimeEntryView(entry))
}

type reviewTimeEntryRequest struct {
	Approve bool `json:"approve"`
}

func (h *Handler) ReviewTimeEntry(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req reviewTimeEntryRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.payrollUC.ReviewTimeEntry(r.Context(), chi.URLParam(r, "entryID"), req.Approve, actor); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "reviewed"})
}

func (h *Handler) GetPeriod(w http.ResponseWriter, r *http.Request) {
	period, err := h.payrollUC.GetPeriod(r.Context(), chi.URLParam(r, "periodID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPeriodView(period))
}

func (h *Handler) GetCurrentPeriod(w http.ResponseWriter, r *http.Request) {
	period, err := h.payrollUC.GetCurrentPeriod(r.Context(), chi.URLParam(r, "contractID"), time.Now())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPeriodView(period))
}

type processPaymentRequest struct {
	PeriodStart  string   `json:"period_start"`
	PeriodEnd    string   `json:"period_end"`
	TimeEntryIDs []string `json:"time_entry_ids"`
	WithholdTax  bool     `json:"withhold_tax"`
	Notes        string   `json:"notes"`
}

func (h *Handler) ProcessPayment(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req processPaymentRequest
	if !decodeBody(w, r, &req) {
		return
	}

	start, err := time.Parse(time.DateOnly, req.PeriodStart)
	if err != nil {
		writeError(w, domain.Validationf("invalid period start %q, expected YYYY-MM-DD", req.PeriodStart))
		return
	}
	end, err := time.Parse(time.DateOnly, req.PeriodEnd)
	if err != nil {
		writeError(w, domain.Validationf("invalid period end %q, expected YYYY-MM-DD", req.PeriodEnd))
		return
	}

	period, err := h.payrollUC.ProcessPayment(r.Context(), &domain.ProcessPaymentInput{
		ContractID:   chi.URLParam(r, "contractID"),
		PeriodStart:  start,
		PeriodEnd:    end,
		TimeEntryIDs: req.TimeEntryIDs,
		WithholdTax:  req.WithholdTax,
		Notes:        req.Notes,
	}, actor)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPeriodView(period))
}

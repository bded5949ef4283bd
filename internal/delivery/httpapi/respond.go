package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/talentbridge/escrow-service/internal/domain"
)

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("failed to encode response", "error", err.Error())
	}
}

// writeError maps domain error kinds onto HTTP statuses. Unexpected errors
// are logged and returned as an opaque 500.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case domain.IsValidation(err):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error(), Kind: "validation"})
	case domain.IsInvalidState(err):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error(), Kind: "invalid_state"})
	case domain.IsNotFound(err):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error(), Kind: "not_found"})
	case domain.IsAuthorization(err):
		writeJSON(w, http.StatusForbidden, errorResponse{Error: err.Error(), Kind: "authorization"})
	case domain.IsGateway(err):
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: "payment gateway error", Kind: "gateway"})
	case domain.IsFeeCalculation(err):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error(), Kind: "fee_calculation"})
	default:
		slog.Error("unhandled error", "error", err.Error())
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error", Kind: "internal"})
	}
}

// actorFromRequest reads the already-authenticated caller identity that the
// edge proxy injects. Authentication itself happens upstream.
func actorFromRequest(r *http.Request) (domain.Actor, error) {
	id := r.Header.Get("X-Actor-ID")
	role := domain.Role(r.Header.Get("X-Actor-Role"))
	if id == "" {
		return domain.Actor{}, domain.Unauthorizedf("missing actor identity")
	}
	switch role {
	case domain.RoleBusiness, domain.RoleTalent, domain.RoleAdmin:
	default:
		return domain.Actor{}, domain.Unauthorizedf("unknown actor role %q", role)
	}
	return domain.Actor{ID: id, Role: role}, nil
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, domain.Validationf("malformed request body: %v", err))
		return false
	}
	return true
}

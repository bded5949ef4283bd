package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/talentbridge/escrow-service/internal/domain"
)

func TestWriteErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantKind   string
	}{
		{"validation", domain.Validationf("bad input"), http.StatusBadRequest, "validation"},
		{"invalid state", domain.InvalidStatef("wrong state"), http.StatusConflict, "invalid_state"},
		{"not found", domain.NotFound("escrow", "x"), http.StatusNotFound, "not_found"},
		{"authorization", domain.Unauthorizedf("nope"), http.StatusForbidden, "authorization"},
		{"gateway", &domain.GatewayError{Msg: "declined"}, http.StatusBadGateway, "gateway"},
		{"internal", errors.New("boom"), http.StatusInternalServerError, "internal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeError(rec, tt.err)

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d", tt.wantStatus, rec.Code)
			}
			var body errorResponse
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatalf("decoding body: %v", err)
			}
			if body.Kind != tt.wantKind {
				t.Fatalf("expected kind %q, got %q", tt.wantKind, body.Kind)
			}
		})
	}
}

func TestWriteErrorHidesInternals(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, &domain.GatewayError{Msg: "processor ref ABC-123 rejected"})

	var body errorResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if body.Error != "payment gateway error" {
		t.Fatalf("gateway details must not leak, got %q", body.Error)
	}

	rec = httptest.NewRecorder()
	writeError(rec, errors.New("pq: connection refused"))
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if body.Error != "internal error" {
		t.Fatalf("internal details must not leak, got %q", body.Error)
	}
}

func TestActorFromRequest(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		role    string
		want    domain.Actor
		wantErr bool
	}{
		{"business", "biz-1", "business", domain.Actor{ID: "biz-1", Role: domain.RoleBusiness}, false},
		{"talent", "tal-1", "talent", domain.Actor{ID: "tal-1", Role: domain.RoleTalent}, false},
		{"admin", "adm-1", "admin", domain.Actor{ID: "adm-1", Role: domain.RoleAdmin}, false},
		{"missing id", "", "business", domain.Actor{}, true},
		{"unknown role", "u-1", "superuser", domain.Actor{}, true},
		{"missing role", "u-1", "", domain.Actor{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.id != "" {
				req.Header.Set("X-Actor-ID", tt.id)
			}
			if tt.role != "" {
				req.Header.Set("X-Actor-Role", tt.role)
			}

			actor, err := actorFromRequest(req)
			if tt.wantErr {
				if !domain.IsAuthorization(err) {
					t.Fatalf("expected AuthorizationError, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("actorFromRequest: %v", err)
			}
			if actor != tt.want {
				t.Fatalf("expected %+v, got %+v", tt.want, actor)
			}
		})
	}
}

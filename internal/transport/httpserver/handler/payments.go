package handler

import (
	"net/http"

	"rep-ledger-go/internal/domain/money"
	"rep-ledger-go/internal/transport/httpserver/middleware"
	"github.com/go-chi/chi/v5"
)

type payChargeRequest struct {
	Amount string `json:"amount" validate:"required"`
}

// PayCharge applies a targeted payment against one charge.
func (h *Handlers) PayCharge(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.MemberFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing_identity", "missing identity")
		return
	}

	var req payChargeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid_request", err.Error())
		return
	}

	amount, err := money.Parse(req.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_amount", err.Error())
		return
	}

	chargeID := chi.URLParam(r, "id")
	updated, err := h.Ledger.RecordDirectPayment(r.Context(), actor.ID, chargeID, amount)
	if err != nil {
		h.writeDomainError(w, "payments.direct", err, "actor_id", actor.ID, "charge_id", chargeID)
		return
	}

	writeJSON(w, http.StatusOK, toChargeResponse(*updated))
}

type allocateRequest struct {
	MemberID string `json:"member_id" validate:"required"`
	Amount   string `json:"amount" validate:"required"`
}

type allocateResponse struct {
	Applications   []applicationResponse `json:"applications"`
	ResidualCredit string                `json:"residual_credit"`
}

// Allocate is smart pay: a lump sum spread across the member's open
// charges, oldest first.
func (h *Handlers) Allocate(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.MemberFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing_identity", "missing identity")
		return
	}

	var req allocateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid_request", err.Error())
		return
	}

	amount, err := money.Parse(req.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_amount", err.Error())
		return
	}

	result, err := h.Ledger.Allocate(r.Context(), actor.ID, req.MemberID, amount)
	if err != nil {
		h.writeDomainError(w, "payments.allocate", err, "actor_id", actor.ID, "member_id", req.MemberID)
		return
	}

	writeJSON(w, http.StatusOK, allocateResponse{
		Applications:   toApplicationResponses(result.Applications),
		ResidualCredit: money.Format(result.ResidualCredit),
	})
}

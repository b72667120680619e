package handler

import (
	"net/http"

	"rep-ledger-go/internal/domain/money"
	"rep-ledger-go/internal/transport/httpserver/middleware"
)

type cashboxEntryRequest struct {
	Direction   string `json:"direction" validate:"required,oneof=in out"`
	Amount      string `json:"amount" validate:"required"`
	Description string `json:"description" validate:"required"`
}

func (h *Handlers) RecordCashboxEntry(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.MemberFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing_identity", "missing identity")
		return
	}

	var req cashboxEntryRequest
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

	entry, err := h.Ledger.RecordCashboxEntry(r.Context(), actor.ID, req.Direction, amount, req.Description)
	if err != nil {
		h.writeDomainError(w, "cashbox.record", err, "actor_id", actor.ID)
		return
	}

	writeJSON(w, http.StatusCreated, toCashboxEntryResponse(*entry))
}

func (h *Handlers) ListCashbox(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.MemberFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing_identity", "missing identity")
		return
	}

	entries, err := h.Ledger.ListCashbox(r.Context(), actor.ID)
	if err != nil {
		h.writeDomainError(w, "cashbox.list", err, "actor_id", actor.ID)
		return
	}

	resp := make([]cashboxEntryResponse, 0, len(entries))
	for _, entry := range entries {
		resp = append(resp, toCashboxEntryResponse(entry))
	}
	writeJSON(w, http.StatusOK, resp)
}

package handler

import (
	"net/http"

	"rep-ledger-go/internal/transport/httpserver/middleware"
)

func (h *Handlers) Dashboard(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.MemberFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing_identity", "missing identity")
		return
	}

	dashboard, err := h.Ledger.GetDashboard(r.Context(), actor.ID)
	if err != nil {
		h.writeDomainError(w, "dashboard.get", err, "member_id", actor.ID)
		return
	}

	writeJSON(w, http.StatusOK, toDashboardResponse(*dashboard))
}

func (h *Handlers) ListDebtors(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.MemberFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing_identity", "missing identity")
		return
	}

	debtors, err := h.Ledger.ListDebtors(r.Context(), actor.ID)
	if err != nil {
		h.writeDomainError(w, "dashboard.debtors", err, "actor_id", actor.ID)
		return
	}

	resp := make([]debtorResponse, 0, len(debtors))
	for _, debtor := range debtors {
		resp = append(resp, toDebtorResponse(debtor))
	}
	writeJSON(w, http.StatusOK, resp)
}

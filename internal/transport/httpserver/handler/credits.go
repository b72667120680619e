package handler

import (
	"net/http"

	"rep-ledger-go/internal/domain/money"
	"rep-ledger-go/internal/transport/httpserver/middleware"
)

type issueCreditRequest struct {
	MemberID    string `json:"member_id"`
	Amount      string `json:"amount" validate:"required"`
	Description string `json:"description" validate:"required"`
}

// IssueCredit registers a purchase credit. Without member_id the credit
// goes to the caller.
func (h *Handlers) IssueCredit(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.MemberFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing_identity", "missing identity")
		return
	}

	var req issueCreditRequest
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

	memberID := req.MemberID
	if memberID == "" {
		memberID = actor.ID
	}

	credit, err := h.Ledger.IssuePurchaseCredit(r.Context(), actor.ID, memberID, amount, req.Description)
	if err != nil {
		h.writeDomainError(w, "credits.issue", err, "actor_id", actor.ID, "member_id", memberID)
		return
	}

	writeJSON(w, http.StatusCreated, toCreditResponse(*credit))
}

type redeemCreditsRequest struct {
	MemberID string `json:"member_id"`
}

type redemptionResponse struct {
	CreditID string `json:"credit_id"`
	Consumed string `json:"consumed"`
}

type redeemCreditsResponse struct {
	Applications []applicationResponse `json:"applications"`
	Redemptions  []redemptionResponse  `json:"redemptions"`
}

// RedeemCredits burns the member's open credits against their open charges.
func (h *Handlers) RedeemCredits(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.MemberFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing_identity", "missing identity")
		return
	}

	var req redeemCreditsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}

	memberID := req.MemberID
	if memberID == "" {
		memberID = actor.ID
	}

	result, err := h.Ledger.RedeemCredits(r.Context(), actor.ID, memberID)
	if err != nil {
		h.writeDomainError(w, "credits.redeem", err, "actor_id", actor.ID, "member_id", memberID)
		return
	}

	resp := redeemCreditsResponse{
		Applications: toApplicationResponses(result.Applications),
		Redemptions:  make([]redemptionResponse, 0, len(result.Redemptions)),
	}
	for _, redemption := range result.Redemptions {
		resp.Redemptions = append(resp.Redemptions, redemptionResponse{
			CreditID: redemption.CreditID,
			Consumed: money.Format(redemption.Consumed),
		})
	}

	writeJSON(w, http.StatusOK, resp)
}

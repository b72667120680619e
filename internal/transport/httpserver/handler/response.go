package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	householddomain "rep-ledger-go/internal/domain/household"
	ledgerdomain "rep-ledger-go/internal/domain/ledger"
)

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorEnvelope{Error: errorBody{Code: code, Message: message}})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func decodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// writeDomainError maps domain sentinels onto the HTTP error taxonomy.
// Anything unmapped is an internal error and is logged as such.
func (h *Handlers) writeDomainError(w http.ResponseWriter, op string, err error, args ...any) {
	switch {
	case errors.Is(err, ledgerdomain.ErrInvalidValue), errors.Is(err, householddomain.ErrInvalidValue):
		h.log.BusinessError(op+": invalid value", err, args...)
		writeError(w, http.StatusBadRequest, "invalid_value", "invalid value")
	case errors.Is(err, ledgerdomain.ErrForbidden), errors.Is(err, householddomain.ErrForbidden):
		h.log.BusinessError(op+": forbidden", err, args...)
		writeError(w, http.StatusForbidden, "forbidden", "operation not permitted")
	case errors.Is(err, householddomain.ErrNotInHousehold):
		h.log.BusinessError(op+": not in household", err, args...)
		writeError(w, http.StatusForbidden, "not_in_household", "member does not belong to a household")
	case errors.Is(err, householddomain.ErrAlreadyInHousehold):
		h.log.BusinessError(op+": already in household", err, args...)
		writeError(w, http.StatusConflict, "already_in_household", "member already belongs to a household")
	case errors.Is(err, ledgerdomain.ErrTemplateNotFound):
		h.log.BusinessError(op+": template not found", err, args...)
		writeError(w, http.StatusNotFound, "template_not_found", "template not found")
	case errors.Is(err, ledgerdomain.ErrChargeNotFound):
		h.log.BusinessError(op+": charge not found", err, args...)
		writeError(w, http.StatusNotFound, "charge_not_found", "charge not found")
	case errors.Is(err, ledgerdomain.ErrMemberNotFound), errors.Is(err, householddomain.ErrMemberNotFound):
		h.log.BusinessError(op+": member not found", err, args...)
		writeError(w, http.StatusNotFound, "member_not_found", "member not found")
	case errors.Is(err, householddomain.ErrHouseholdNotFound):
		h.log.BusinessError(op+": household not found", err, args...)
		writeError(w, http.StatusNotFound, "household_not_found", "household not found")
	case errors.Is(err, householddomain.ErrInviteCodeNotFound):
		h.log.BusinessError(op+": invite code not found", err, args...)
		writeError(w, http.StatusNotFound, "invite_code_not_found", "invite code not found")
	case errors.Is(err, ledgerdomain.ErrOverpayment):
		h.log.BusinessError(op+": overpayment", err, args...)
		writeError(w, http.StatusConflict, "overpayment", "amount exceeds the charge's remaining balance")
	case errors.Is(err, ledgerdomain.ErrAlreadySettled):
		h.log.BusinessError(op+": already settled", err, args...)
		writeError(w, http.StatusConflict, "already_settled", "charge is already fully paid")
	case errors.Is(err, ledgerdomain.ErrConflict):
		h.log.BusinessError(op+": conflict", err, args...)
		writeError(w, http.StatusConflict, "conflict", "concurrent update, retry the request")
	default:
		h.log.InternalError(op+": failed", err, args...)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
	}
}

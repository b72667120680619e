package handler

import (
	"net/http"

	householddomain "rep-ledger-go/internal/domain/household"
	"rep-ledger-go/internal/domain/money"
	"rep-ledger-go/internal/transport/httpserver/middleware"
	"github.com/go-chi/chi/v5"
)

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type createMemberRequest struct {
	DisplayName string `json:"display_name" validate:"required"`
}

// CreateMember provisions a member identity. Registration and credentials
// live in the external auth system; this only creates the ledger-side record.
func (h *Handlers) CreateMember(w http.ResponseWriter, r *http.Request) {
	var req createMemberRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid_request", err.Error())
		return
	}

	member, err := h.Households.CreateMember(r.Context(), req.DisplayName)
	if err != nil {
		h.writeDomainError(w, "members.create", err)
		return
	}

	writeJSON(w, http.StatusCreated, toMemberResponse(*member))
}

type createHouseholdRequest struct {
	Name    string `json:"name" validate:"required"`
	Address string `json:"address"`
}

func (h *Handlers) CreateHousehold(w http.ResponseWriter, r *http.Request) {
	member, ok := middleware.MemberFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing_identity", "missing identity")
		return
	}

	var req createHouseholdRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid_request", err.Error())
		return
	}

	created, err := h.Households.CreateHousehold(r.Context(), member.ID, req.Name, req.Address)
	if err != nil {
		h.writeDomainError(w, "households.create", err, "member_id", member.ID)
		return
	}

	writeJSON(w, http.StatusCreated, toHouseholdResponse(*created))
}

func (h *Handlers) GetMyHousehold(w http.ResponseWriter, r *http.Request) {
	member, ok := middleware.MemberFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing_identity", "missing identity")
		return
	}

	found, err := h.Households.GetHouseholdByMember(r.Context(), member.ID)
	if err != nil {
		h.writeDomainError(w, "households.me", err, "member_id", member.ID)
		return
	}

	writeJSON(w, http.StatusOK, toHouseholdResponse(*found))
}

type joinHouseholdRequest struct {
	InviteCode string `json:"invite_code" validate:"required"`
}

func (h *Handlers) JoinHousehold(w http.ResponseWriter, r *http.Request) {
	member, ok := middleware.MemberFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing_identity", "missing identity")
		return
	}

	var req joinHouseholdRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid_request", err.Error())
		return
	}

	joined, err := h.Households.JoinHousehold(r.Context(), member.ID, req.InviteCode)
	if err != nil {
		h.writeDomainError(w, "households.join", err, "member_id", member.ID)
		return
	}

	writeJSON(w, http.StatusOK, toHouseholdResponse(*joined))
}

func (h *Handlers) LeaveHousehold(w http.ResponseWriter, r *http.Request) {
	member, ok := middleware.MemberFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing_identity", "missing identity")
		return
	}

	if err := h.Households.LeaveHousehold(r.Context(), member.ID); err != nil {
		h.writeDomainError(w, "households.leave", err, "member_id", member.ID)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "left"})
}

func (h *Handlers) RegenerateInviteCode(w http.ResponseWriter, r *http.Request) {
	member, ok := middleware.MemberFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing_identity", "missing identity")
		return
	}

	updated, err := h.Households.RegenerateInviteCode(r.Context(), member.ID)
	if err != nil {
		h.writeDomainError(w, "households.invite_code", err, "member_id", member.ID)
		return
	}

	writeJSON(w, http.StatusOK, toHouseholdResponse(*updated))
}

func (h *Handlers) ListMembers(w http.ResponseWriter, r *http.Request) {
	member, ok := middleware.MemberFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing_identity", "missing identity")
		return
	}

	members, err := h.Households.ListMembers(r.Context(), member.ID)
	if err != nil {
		h.writeDomainError(w, "households.members", err, "member_id", member.ID)
		return
	}

	response := make([]memberResponse, 0, len(members))
	for _, item := range members {
		response = append(response, toMemberResponse(item))
	}
	writeJSON(w, http.StatusOK, response)
}

type changeRoleRequest struct {
	Role string `json:"role" validate:"required"`
}

func (h *Handlers) ChangeRole(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.MemberFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing_identity", "missing identity")
		return
	}

	var req changeRoleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid_request", err.Error())
		return
	}

	memberID := chi.URLParam(r, "id")
	updated, err := h.Households.ChangeRole(r.Context(), actor.ID, memberID, householddomain.Role(req.Role))
	if err != nil {
		h.writeDomainError(w, "members.role", err, "actor_id", actor.ID, "member_id", memberID)
		return
	}

	writeJSON(w, http.StatusOK, toMemberResponse(*updated))
}

type setFixedRentRequest struct {
	Amount string `json:"amount" validate:"required"`
}

func (h *Handlers) SetFixedRent(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.MemberFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing_identity", "missing identity")
		return
	}

	var req setFixedRentRequest
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

	memberID := chi.URLParam(r, "id")
	updated, err := h.Households.SetFixedRent(r.Context(), actor.ID, memberID, amount)
	if err != nil {
		h.writeDomainError(w, "members.fixed_rent", err, "actor_id", actor.ID, "member_id", memberID)
		return
	}

	writeJSON(w, http.StatusOK, toMemberResponse(*updated))
}

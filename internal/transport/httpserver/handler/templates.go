package handler

import (
	"net/http"

	ledgerdomain "rep-ledger-go/internal/domain/ledger"
	"rep-ledger-go/internal/domain/money"
	"rep-ledger-go/internal/transport/httpserver/middleware"
	"github.com/go-chi/chi/v5"
)

func (h *Handlers) ListTemplates(w http.ResponseWriter, r *http.Request) {
	member, ok := middleware.MemberFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing_identity", "missing identity")
		return
	}

	templates, err := h.Ledger.ListTemplates(r.Context(), member.ID)
	if err != nil {
		h.writeDomainError(w, "templates.list", err, "member_id", member.ID)
		return
	}

	response := make([]templateResponse, 0, len(templates))
	for _, template := range templates {
		response = append(response, toTemplateResponse(template))
	}
	writeJSON(w, http.StatusOK, response)
}

type createTemplateRequest struct {
	Description string `json:"description" validate:"required"`
	BaseValue   string `json:"base_value" validate:"required"`
	Category    string `json:"category" validate:"required"`
}

func (h *Handlers) CreateTemplate(w http.ResponseWriter, r *http.Request) {
	member, ok := middleware.MemberFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing_identity", "missing identity")
		return
	}

	var req createTemplateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid_request", err.Error())
		return
	}

	baseValue, err := money.Parse(req.BaseValue)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_amount", err.Error())
		return
	}

	created, err := h.Ledger.CreateTemplate(r.Context(), member.ID, ledgerdomain.CreateTemplateInput{
		Description: req.Description,
		BaseValue:   baseValue,
		Category:    req.Category,
	})
	if err != nil {
		h.writeDomainError(w, "templates.create", err, "member_id", member.ID)
		return
	}

	writeJSON(w, http.StatusCreated, toTemplateResponse(*created))
}

type updateTemplateRequest struct {
	Description *string `json:"description"`
	BaseValue   *string `json:"base_value"`
	Category    *string `json:"category"`
}

func (h *Handlers) UpdateTemplate(w http.ResponseWriter, r *http.Request) {
	member, ok := middleware.MemberFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing_identity", "missing identity")
		return
	}

	var req updateTemplateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}

	input := ledgerdomain.UpdateTemplateInput{
		TemplateID:  chi.URLParam(r, "id"),
		Description: req.Description,
		Category:    req.Category,
	}
	if req.BaseValue != nil {
		parsed, err := money.Parse(*req.BaseValue)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_amount", err.Error())
			return
		}
		input.BaseValue = &parsed
	}

	updated, err := h.Ledger.UpdateTemplate(r.Context(), member.ID, input)
	if err != nil {
		h.writeDomainError(w, "templates.update", err, "member_id", member.ID, "template_id", input.TemplateID)
		return
	}

	writeJSON(w, http.StatusOK, toTemplateResponse(*updated))
}

package handler

import (
	"net/http"
	"strings"

	ledgerdomain "rep-ledger-go/internal/domain/ledger"
	"rep-ledger-go/internal/domain/money"
	"rep-ledger-go/internal/transport/httpserver/middleware"
)

type generateRequest struct {
	Period string `json:"period" validate:"required"`
}

type generateResponse struct {
	Created          int    `json:"created"`
	Existing         int64  `json:"existing"`
	AlreadyGenerated bool   `json:"already_generated"`
	Period           string `json:"period"`
}

func (h *Handlers) GenerateCharges(w http.ResponseWriter, r *http.Request) {
	member, ok := middleware.MemberFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing_identity", "missing identity")
		return
	}

	var req generateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid_request", err.Error())
		return
	}

	period, err := parsePeriod(req.Period)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_period", "period must be YYYY-MM")
		return
	}

	result, err := h.Ledger.Generate(r.Context(), member.ID, period)
	if err != nil {
		h.writeDomainError(w, "charges.generate", err, "member_id", member.ID, "period", period.String())
		return
	}

	writeJSON(w, http.StatusOK, generateResponse{
		Created:          result.Created,
		Existing:         result.Existing,
		AlreadyGenerated: result.AlreadyGenerated,
		Period:           period.String(),
	})
}

func (h *Handlers) ListCharges(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.MemberFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing_identity", "missing identity")
		return
	}

	query := r.URL.Query()

	memberID := strings.TrimSpace(query.Get("member_id"))
	if memberID == "" {
		memberID = actor.ID
	}

	filter := ledgerdomain.FilterAll
	if query.Get("filter") == "pending" {
		filter = ledgerdomain.FilterPending
	}

	charges, err := h.Ledger.ListCharges(r.Context(), actor.ID, memberID, filter)
	if err != nil {
		h.writeDomainError(w, "charges.list", err, "actor_id", actor.ID, "member_id", memberID)
		return
	}

	response := make([]chargeResponse, 0, len(charges))
	for _, charge := range charges {
		response = append(response, toChargeResponse(charge))
	}
	writeJSON(w, http.StatusOK, response)
}

type manualSplitRequest struct {
	MemberID string `json:"member_id" validate:"required"`
	Value    string `json:"value" validate:"required"`
}

type createChargeRequest struct {
	Description  string               `json:"description" validate:"required"`
	TotalValue   string               `json:"total_value" validate:"required"`
	Category     string               `json:"category" validate:"required"`
	DueDate      string               `json:"due_date" validate:"required"`
	ManualSplits []manualSplitRequest `json:"manual_splits"`
}

func (h *Handlers) CreateCharge(w http.ResponseWriter, r *http.Request) {
	member, ok := middleware.MemberFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing_identity", "missing identity")
		return
	}

	var req createChargeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid_request", err.Error())
		return
	}

	total, err := money.Parse(req.TotalValue)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_amount", err.Error())
		return
	}
	dueDate, err := parseDateRequired(req.DueDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_date", "due_date must be YYYY-MM-DD")
		return
	}

	input := ledgerdomain.CreateChargeInput{
		Description: req.Description,
		TotalValue:  total,
		Category:    req.Category,
		DueDate:     dueDate,
	}
	for _, split := range req.ManualSplits {
		value, err := money.Parse(split.Value)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_amount", err.Error())
			return
		}
		input.ManualSplits = append(input.ManualSplits, ledgerdomain.ManualSplit{
			MemberID: split.MemberID,
			Value:    value,
		})
	}

	charges, err := h.Ledger.CreateAdHocCharge(r.Context(), member.ID, input)
	if err != nil {
		h.writeDomainError(w, "charges.create", err, "member_id", member.ID)
		return
	}

	response := make([]chargeResponse, 0, len(charges))
	for _, charge := range charges {
		response = append(response, toChargeResponse(charge))
	}
	writeJSON(w, http.StatusCreated, response)
}

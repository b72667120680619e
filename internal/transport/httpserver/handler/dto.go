package handler

import (
	householddomain "rep-ledger-go/internal/domain/household"
	ledgerdomain "rep-ledger-go/internal/domain/ledger"
	"rep-ledger-go/internal/domain/money"
)

type memberResponse struct {
	ID            string  `json:"id"`
	HouseholdID   *string `json:"household_id"`
	DisplayName   string  `json:"display_name"`
	Role          string  `json:"role"`
	FixedRentBase string  `json:"fixed_rent_base"`
}

func toMemberResponse(m householddomain.Member) memberResponse {
	return memberResponse{
		ID:            m.ID,
		HouseholdID:   m.HouseholdID,
		DisplayName:   m.DisplayName,
		Role:          string(m.Role),
		FixedRentBase: money.Format(m.FixedRentBase),
	}
}

type householdResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Address    string `json:"address"`
	InviteCode string `json:"invite_code"`
}

func toHouseholdResponse(h householddomain.Household) householdResponse {
	return householdResponse{
		ID:         h.ID,
		Name:       h.Name,
		Address:    h.Address,
		InviteCode: h.InviteCode,
	}
}

type templateResponse struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	BaseValue   string `json:"base_value"`
	Category    string `json:"category"`
}

func toTemplateResponse(t ledgerdomain.ChargeTemplate) templateResponse {
	return templateResponse{
		ID:          t.ID,
		Description: t.Description,
		BaseValue:   money.Format(t.BaseValue),
		Category:    t.Category,
	}
}

type chargeResponse struct {
	ID          string  `json:"id"`
	MemberID    *string `json:"member_id"`
	TemplateID  *string `json:"template_id"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Period      string  `json:"period"`
	TotalValue  string  `json:"total_value"`
	PaidAmount  string  `json:"paid_amount"`
	Remaining   string  `json:"remaining"`
	State       string  `json:"state"`
	DueDate     string  `json:"due_date"`
}

func toChargeResponse(c ledgerdomain.Charge) chargeResponse {
	return chargeResponse{
		ID:          c.ID,
		MemberID:    c.MemberID,
		TemplateID:  c.TemplateID,
		Description: c.Description,
		Category:    c.Category,
		Period:      c.Period().String(),
		TotalValue:  money.Format(c.TotalValue),
		PaidAmount:  money.Format(c.PaidAmount),
		Remaining:   money.Format(c.Remaining()),
		State:       string(c.State()),
		DueDate:     c.DueDate.Format("2006-01-02"),
	}
}

type creditResponse struct {
	ID          string `json:"id"`
	MemberID    string `json:"member_id"`
	Source      string `json:"source"`
	Description string `json:"description"`
	Amount      string `json:"amount"`
	Remaining   string `json:"remaining"`
}

func toCreditResponse(c ledgerdomain.Credit) creditResponse {
	return creditResponse{
		ID:          c.ID,
		MemberID:    c.MemberID,
		Source:      c.Source,
		Description: c.Description,
		Amount:      money.Format(c.Amount),
		Remaining:   money.Format(c.Remaining),
	}
}

type cashboxEntryResponse struct {
	ID          string `json:"id"`
	Direction   string `json:"direction"`
	Amount      string `json:"amount"`
	Description string `json:"description"`
	CreatedAt   string `json:"created_at"`
}

func toCashboxEntryResponse(e ledgerdomain.CashboxEntry) cashboxEntryResponse {
	return cashboxEntryResponse{
		ID:          e.ID,
		Direction:   e.Direction,
		Amount:      money.Format(e.Amount),
		Description: e.Description,
		CreatedAt:   e.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

type applicationResponse struct {
	ChargeID    string `json:"charge_id"`
	Description string `json:"description"`
	Applied     string `json:"applied"`
	Remaining   string `json:"remaining"`
}

func toApplicationResponses(applications []ledgerdomain.ChargeApplication) []applicationResponse {
	result := make([]applicationResponse, 0, len(applications))
	for _, application := range applications {
		result = append(result, applicationResponse{
			ChargeID:    application.ChargeID,
			Description: application.Description,
			Applied:     money.Format(application.Applied),
			Remaining:   money.Format(application.Remaining),
		})
	}
	return result
}

type dashboardResponse struct {
	FixedRentBase        string `json:"fixed_rent_base"`
	FixedRentOutstanding string `json:"fixed_rent_outstanding"`
	VariableDebts        string `json:"variable_debts"`
	MyCredits            string `json:"my_credits"`
	TotalToPay           string `json:"total_to_pay"`
	CashboxBalance       string `json:"cashbox_balance"`
	TotalHousehold       string `json:"total_household_charges"`
	MemberBalance        string `json:"member_balance"`
}

func toDashboardResponse(d ledgerdomain.Dashboard) dashboardResponse {
	return dashboardResponse{
		FixedRentBase:        money.Format(d.FixedRentBase),
		FixedRentOutstanding: money.Format(d.FixedRentOutstanding),
		VariableDebts:        money.Format(d.VariableDebts),
		MyCredits:            money.Format(d.MyCredits),
		TotalToPay:           money.Format(d.TotalToPay),
		CashboxBalance:       money.Format(d.CashboxBalance),
		TotalHousehold:       money.Format(d.TotalHousehold),
		MemberBalance:        money.Format(d.MemberBalance),
	}
}

type pendingChargeResponse struct {
	ChargeID    string `json:"charge_id"`
	Description string `json:"description"`
	TotalValue  string `json:"total_value"`
	PaidAmount  string `json:"paid_amount"`
}

type debtorResponse struct {
	MemberID     string                  `json:"member_id"`
	DisplayName  string                  `json:"display_name"`
	TotalOwed    string                  `json:"total_owed"`
	PendingCount int                     `json:"pending_count"`
	Pending      []pendingChargeResponse `json:"pending_charges"`
}

func toDebtorResponse(d ledgerdomain.Debtor) debtorResponse {
	pending := make([]pendingChargeResponse, 0, len(d.Pending))
	for _, charge := range d.Pending {
		pending = append(pending, pendingChargeResponse{
			ChargeID:    charge.ChargeID,
			Description: charge.Description,
			TotalValue:  money.Format(charge.TotalValue),
			PaidAmount:  money.Format(charge.PaidAmount),
		})
	}
	return debtorResponse{
		MemberID:     d.MemberID,
		DisplayName:  d.DisplayName,
		TotalOwed:    money.Format(d.TotalOwed),
		PendingCount: d.PendingCount,
		Pending:      pending,
	}
}

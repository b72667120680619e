package ledger

import (
	"context"

	"github.com/shopspring/decimal"
)

// Dashboard is the read-only aggregate a member sees on their home screen.
// Credits are netted arithmetically; nothing is consumed by reading.
type Dashboard struct {
	FixedRentBase        decimal.Decimal
	FixedRentOutstanding decimal.Decimal
	VariableDebts        decimal.Decimal
	MyCredits            decimal.Decimal
	TotalToPay           decimal.Decimal
	CashboxBalance       decimal.Decimal
	TotalHousehold       decimal.Decimal
	MemberBalance        decimal.Decimal
}

// GetDashboard recomputes the member's figures from committed state on
// every call; there is no cached total to go stale.
func (s *Service) GetDashboard(ctx context.Context, memberID string) (*Dashboard, error) {
	member, err := s.requireMember(ctx, memberID)
	if err != nil {
		return nil, err
	}

	open, err := s.repo.ListChargesByMember(ctx, memberID, FilterPending)
	if err != nil {
		return nil, err
	}

	fixedOutstanding := decimal.Zero
	variable := decimal.Zero
	for _, charge := range open {
		if charge.Category == CategoryFixed {
			fixedOutstanding = fixedOutstanding.Add(charge.Remaining())
		} else {
			variable = variable.Add(charge.Remaining())
		}
	}

	credits, err := s.repo.SumOpenCredits(ctx, memberID)
	if err != nil {
		return nil, err
	}

	cashbox, err := s.repo.SumCashbox(ctx, *member.HouseholdID)
	if err != nil {
		return nil, err
	}

	total, err := s.repo.SumHouseholdCharges(ctx, *member.HouseholdID)
	if err != nil {
		return nil, err
	}

	debts := fixedOutstanding.Add(variable)
	toPay := debts.Sub(credits)
	if toPay.IsNegative() {
		toPay = decimal.Zero
	}

	return &Dashboard{
		FixedRentBase:        member.FixedRentBase,
		FixedRentOutstanding: fixedOutstanding,
		VariableDebts:        variable,
		MyCredits:            credits,
		TotalToPay:           toPay,
		CashboxBalance:       cashbox,
		TotalHousehold:       total,
		MemberBalance:        credits.Sub(debts),
	}, nil
}

type PendingCharge struct {
	ChargeID    string
	Description string
	TotalValue  decimal.Decimal
	PaidAmount  decimal.Decimal
}

type Debtor struct {
	MemberID     string
	DisplayName  string
	TotalOwed    decimal.Decimal
	PendingCount int
	Pending      []PendingCharge
}

// ListDebtors builds the receivables view: every household member still
// owing something, with their open charges.
func (s *Service) ListDebtors(ctx context.Context, actorID string) ([]Debtor, error) {
	actor, err := s.requireMember(ctx, actorID)
	if err != nil {
		return nil, err
	}

	members, err := s.directory.ListMembers(ctx, *actor.HouseholdID)
	if err != nil {
		return nil, err
	}

	debtors := make([]Debtor, 0)
	for _, member := range members {
		open, err := s.repo.ListChargesByMember(ctx, member.ID, FilterPending)
		if err != nil {
			return nil, err
		}
		if len(open) == 0 {
			continue
		}

		owed := decimal.Zero
		pending := make([]PendingCharge, 0, len(open))
		for _, charge := range open {
			owed = owed.Add(charge.Remaining())
			pending = append(pending, PendingCharge{
				ChargeID:    charge.ID,
				Description: charge.Description,
				TotalValue:  charge.TotalValue,
				PaidAmount:  charge.PaidAmount,
			})
		}
		if !owed.IsPositive() {
			continue
		}

		debtors = append(debtors, Debtor{
			MemberID:     member.ID,
			DisplayName:  member.DisplayName,
			TotalOwed:    owed,
			PendingCount: len(pending),
			Pending:      pending,
		})
	}

	return debtors, nil
}

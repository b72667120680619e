package ledger

import (
	"context"

	"rep-ledger-go/internal/domain/household"
	"github.com/shopspring/decimal"
)

// ChargeFilter narrows ListChargesByMember.
type ChargeFilter string

const (
	FilterPending ChargeFilter = "pending"
	FilterAll     ChargeFilter = "all"
)

type Repository interface {
	Transaction(ctx context.Context, fn func(Repository) error) error

	CreateTemplate(ctx context.Context, t *ChargeTemplate) error
	GetTemplateByID(ctx context.Context, householdID, templateID string) (*ChargeTemplate, error)
	UpdateTemplate(ctx context.Context, t *ChargeTemplate) error
	ListTemplates(ctx context.Context, householdID string) ([]ChargeTemplate, error)

	// CreateCharges inserts a generation batch. It must surface
	// ErrDuplicateCharge when the storage-level idempotency index
	// (household, member, period, source key) rejects a row.
	CreateCharges(ctx context.Context, charges []Charge) error
	// CountGeneratedForPeriod counts only generation-sourced charges
	// (source key "fixed" or "tpl:..."). Ad hoc charges share the period
	// namespace and must not trip the generation idempotency check.
	CountGeneratedForPeriod(ctx context.Context, householdID string, period Period) (int64, error)
	GetChargeByID(ctx context.Context, chargeID string) (*Charge, error)
	ListChargesByMember(ctx context.Context, memberID string, filter ChargeFilter) ([]Charge, error)
	// ListOpenChargesLocked returns a member's open charges ordered by id
	// and locked for the duration of the surrounding transaction. The id
	// order is the lock acquisition order; callers re-sort for allocation.
	ListOpenChargesLocked(ctx context.Context, memberID string) ([]Charge, error)
	// SetPaidAmount is a compare-and-swap on paid_amount. It reports false
	// when the expected value no longer matches.
	SetPaidAmount(ctx context.Context, chargeID string, expected, next decimal.Decimal) (bool, error)

	CreatePayment(ctx context.Context, p *Payment) error

	CreateCredit(ctx context.Context, c *Credit) error
	ListOpenCreditsLocked(ctx context.Context, memberID string) ([]Credit, error)
	SetCreditRemaining(ctx context.Context, creditID string, remaining decimal.Decimal) error
	SumOpenCredits(ctx context.Context, memberID string) (decimal.Decimal, error)

	CreateCashboxEntry(ctx context.Context, e *CashboxEntry) error
	ListCashboxEntries(ctx context.Context, householdID string) ([]CashboxEntry, error)
	SumCashbox(ctx context.Context, householdID string) (decimal.Decimal, error)

	SumHouseholdCharges(ctx context.Context, householdID string) (decimal.Decimal, error)
}

// Directory is the ledger's view of the membership subsystem. The household
// repository satisfies it.
type Directory interface {
	GetMemberByID(ctx context.Context, memberID string) (*household.Member, error)
	ListMembers(ctx context.Context, householdID string) ([]household.Member, error)
}

package ledger

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// CategoryFixed marks rent charges generated from a member's fixed rent
// base rather than from a template.
const CategoryFixed = "fixed"

type ChargeTemplate struct {
	ID          string          `gorm:"type:uuid;primaryKey"`
	HouseholdID string          `gorm:"type:uuid;index;not null"`
	Description string          `gorm:"not null"`
	BaseValue   decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Category    string          `gorm:"not null"`
	CreatedAt   time.Time       `gorm:"autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime"`
}

type ChargeState string

const (
	ChargePending ChargeState = "pending"
	ChargePartial ChargeState = "partial"
	ChargePaid    ChargeState = "paid"
)

// Period identifies one billing month of a household.
type Period struct {
	Year  int
	Month int
}

func (p Period) Validate() error {
	if p.Year < 2000 || p.Year > 2200 || p.Month < 1 || p.Month > 12 {
		return ErrInvalidValue
	}
	return nil
}

func (p Period) String() string {
	return fmt.Sprintf("%02d/%d", p.Month, p.Year)
}

// Charge is one member's obligation for one billing period. TotalValue is a
// snapshot taken at generation time; later template edits never touch it.
// SourceKey is the generation idempotency key component: "tpl:<template_id>"
// for template fan-out, "fixed" for rent, "adhoc:<batch_id>" for one-off
// charges.
type Charge struct {
	ID          string          `gorm:"type:uuid;primaryKey"`
	HouseholdID string          `gorm:"type:uuid;index;not null"`
	MemberID    *string         `gorm:"type:uuid;index"`
	TemplateID  *string         `gorm:"type:uuid"`
	SourceKey   string          `gorm:"not null"`
	Description string          `gorm:"not null"`
	Category    string          `gorm:"not null"`
	PeriodYear  int             `gorm:"not null"`
	PeriodMonth int             `gorm:"not null"`
	TotalValue  decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	PaidAmount  decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`
	DueDate     time.Time       `gorm:"type:date;not null"`
	CreatedAt   time.Time       `gorm:"autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime"`
}

func (c Charge) Remaining() decimal.Decimal {
	return c.TotalValue.Sub(c.PaidAmount)
}

func (c Charge) State() ChargeState {
	switch {
	case c.PaidAmount.IsZero():
		return ChargePending
	case c.PaidAmount.GreaterThanOrEqual(c.TotalValue):
		return ChargePaid
	default:
		return ChargePartial
	}
}

func (c Charge) Period() Period {
	return Period{Year: c.PeriodYear, Month: c.PeriodMonth}
}

const (
	PaymentSourceCash   = "cash"
	PaymentSourceCredit = "credit"
)

// Payment is one confirmed application of funds against a charge. A smart
// pay allocation produces one Payment per touched charge; there are no
// unapplied payments.
type Payment struct {
	ID            string          `gorm:"type:uuid;primaryKey"`
	ChargeID      string          `gorm:"type:uuid;index;not null"`
	PayerMemberID string          `gorm:"type:uuid;index;not null"`
	ConfirmedByID string          `gorm:"type:uuid;not null"`
	Amount        decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Source        string          `gorm:"type:varchar(16);not null"`
	AppliedAt     time.Time       `gorm:"not null"`
	CreatedAt     time.Time       `gorm:"autoCreateTime"`
}

const (
	CreditSourcePurchase    = "purchase"
	CreditSourceOverpayment = "overpayment"
)

// Credit is a balance the household owes a member. Remaining decreases as
// the credit offsets the member's dues; it never goes below zero and never
// moves across members.
type Credit struct {
	ID          string          `gorm:"type:uuid;primaryKey"`
	HouseholdID string          `gorm:"type:uuid;index;not null"`
	MemberID    string          `gorm:"type:uuid;index;not null"`
	Source      string          `gorm:"type:varchar(16);not null"`
	Description string          `gorm:"not null"`
	Amount      decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Remaining   decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	CreatedAt   time.Time       `gorm:"autoCreateTime"`
}

const (
	CashboxIn  = "in"
	CashboxOut = "out"
)

// CashboxEntry is one movement of the household's communal cash balance.
// Confirmed payments append inflow entries in the same transaction;
// outflows are manual reconciliation entries.
type CashboxEntry struct {
	ID          string          `gorm:"type:uuid;primaryKey"`
	HouseholdID string          `gorm:"type:uuid;index;not null"`
	MemberID    *string         `gorm:"type:uuid"`
	Direction   string          `gorm:"type:varchar(8);not null"`
	Amount      decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Description string          `gorm:"not null"`
	CreatedAt   time.Time       `gorm:"autoCreateTime"`
}

// Signed returns the entry's contribution to the cashbox balance.
func (e CashboxEntry) Signed() decimal.Decimal {
	if e.Direction == CashboxOut {
		return e.Amount.Neg()
	}
	return e.Amount
}

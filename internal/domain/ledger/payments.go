package ledger

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"rep-ledger-go/internal/domain/household"
	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
	"github.com/shopspring/decimal"
)

const (
	conflictRetries = 3
	conflictBackoff = 25 * time.Millisecond
)

// withConflictRetry runs fn, retrying a bounded number of times while it
// reports ErrConflict. Any other error surfaces immediately.
func (s *Service) withConflictRetry(ctx context.Context, fn func(context.Context) error) error {
	backoff := retry.WithMaxRetries(conflictRetries, retry.NewConstant(conflictBackoff))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := fn(ctx)
		if errors.Is(err, ErrConflict) {
			return retry.RetryableError(err)
		}
		return err
	})
}

// RecordDirectPayment applies amount to a single charge. The application is
// one transaction: validate against the current paid_amount, compare-and-swap
// it, append the payment record and the cashbox inflow. A CAS miss means a
// concurrent payment won; the operation retries on a fresh read.
func (s *Service) RecordDirectPayment(ctx context.Context, actorID, chargeID string, amount decimal.Decimal) (*Charge, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidValue
	}

	actor, err := s.requireCapability(ctx, actorID, household.CapManageFinance)
	if err != nil {
		return nil, err
	}

	var result Charge
	err = s.withConflictRetry(ctx, func(ctx context.Context) error {
		return s.repo.Transaction(ctx, func(tx Repository) error {
			charge, err := tx.GetChargeByID(ctx, chargeID)
			if err != nil {
				return err
			}
			if charge.HouseholdID != *actor.HouseholdID {
				return ErrChargeNotFound
			}

			applied, err := applyToCharge(ctx, tx, charge, amount, actor.ID, PaymentSourceCash, s.now())
			if err != nil {
				return err
			}

			if err := tx.CreateCashboxEntry(ctx, &CashboxEntry{
				ID:          uuid.NewString(),
				HouseholdID: charge.HouseholdID,
				MemberID:    charge.MemberID,
				Direction:   CashboxIn,
				Amount:      applied,
				Description: "payment: " + charge.Description,
			}); err != nil {
				return err
			}

			result = *charge
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	return &result, nil
}

// applyToCharge settles amount against one charge inside the caller's
// transaction. The charge's PaidAmount is updated in place on success.
func applyToCharge(ctx context.Context, tx Repository, charge *Charge, amount decimal.Decimal, confirmedBy, source string, appliedAt time.Time) (decimal.Decimal, error) {
	if charge.State() == ChargePaid {
		return decimal.Zero, ErrAlreadySettled
	}
	if amount.GreaterThan(charge.Remaining()) {
		return decimal.Zero, ErrOverpayment
	}

	next := charge.PaidAmount.Add(amount)
	swapped, err := tx.SetPaidAmount(ctx, charge.ID, charge.PaidAmount, next)
	if err != nil {
		return decimal.Zero, err
	}
	if !swapped {
		return decimal.Zero, ErrConflict
	}

	payer := confirmedBy
	if charge.MemberID != nil {
		payer = *charge.MemberID
	}
	if err := tx.CreatePayment(ctx, &Payment{
		ID:            uuid.NewString(),
		ChargeID:      charge.ID,
		PayerMemberID: payer,
		ConfirmedByID: confirmedBy,
		Amount:        amount,
		Source:        source,
		AppliedAt:     appliedAt,
	}); err != nil {
		return decimal.Zero, err
	}

	charge.PaidAmount = next
	return amount, nil
}

type ChargeApplication struct {
	ChargeID    string
	Description string
	Applied     decimal.Decimal
	Remaining   decimal.Decimal
}

type AllocationResult struct {
	Applications   []ChargeApplication
	ResidualCredit decimal.Decimal
}

// Allocate distributes a lump payment across a member's open charges,
// oldest due date first with id as the tie break. Whatever the debts cannot
// absorb becomes an overpayment credit, so the full amount is always
// accounted for. The member's charge set is locked in id order for the
// whole transaction.
func (s *Service) Allocate(ctx context.Context, actorID, memberID string, amount decimal.Decimal) (*AllocationResult, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidValue
	}

	actor, err := s.requireCapability(ctx, actorID, household.CapManageFinance)
	if err != nil {
		return nil, err
	}

	member, err := s.requireMember(ctx, memberID)
	if err != nil {
		return nil, err
	}
	if !member.InHousehold(*actor.HouseholdID) {
		return nil, ErrMemberNotFound
	}

	var result AllocationResult
	err = s.withConflictRetry(ctx, func(ctx context.Context) error {
		result = AllocationResult{}
		return s.repo.Transaction(ctx, func(tx Repository) error {
			charges, err := tx.ListOpenChargesLocked(ctx, memberID)
			if err != nil {
				return err
			}
			sortForAllocation(charges)

			appliedAt := s.now()
			leftover := amount
			for i := range charges {
				if !leftover.IsPositive() {
					break
				}
				charge := &charges[i]

				portion := decimal.Min(charge.Remaining(), leftover)
				if _, err := applyToCharge(ctx, tx, charge, portion, actor.ID, PaymentSourceCash, appliedAt); err != nil {
					return err
				}

				leftover = leftover.Sub(portion)
				result.Applications = append(result.Applications, ChargeApplication{
					ChargeID:    charge.ID,
					Description: charge.Description,
					Applied:     portion,
					Remaining:   charge.Remaining(),
				})
			}

			if leftover.IsPositive() {
				if err := tx.CreateCredit(ctx, &Credit{
					ID:          uuid.NewString(),
					HouseholdID: *actor.HouseholdID,
					MemberID:    memberID,
					Source:      CreditSourceOverpayment,
					Description: "overpayment",
					Amount:      leftover,
					Remaining:   leftover,
				}); err != nil {
					return err
				}
				result.ResidualCredit = leftover
			}

			// The full handed-over amount enters the cashbox; the residue
			// is tracked as the member's credit against it.
			return tx.CreateCashboxEntry(ctx, &CashboxEntry{
				ID:          uuid.NewString(),
				HouseholdID: *actor.HouseholdID,
				MemberID:    &memberID,
				Direction:   CashboxIn,
				Amount:      amount,
				Description: "smart pay",
			})
		})
	})
	if err != nil {
		return nil, err
	}

	return &result, nil
}

func sortForAllocation(charges []Charge) {
	sort.Slice(charges, func(i, j int) bool {
		if !charges[i].DueDate.Equal(charges[j].DueDate) {
			return charges[i].DueDate.Before(charges[j].DueDate)
		}
		return charges[i].ID < charges[j].ID
	})
}

// IssuePurchaseCredit records a credit for a member who fronted money for
// shared household goods. Members register their own purchases; crediting
// someone else takes finance rights.
func (s *Service) IssuePurchaseCredit(ctx context.Context, actorID, memberID string, amount decimal.Decimal, description string) (*Credit, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidValue
	}
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, ErrInvalidValue
	}

	actor, err := s.requireMember(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if actorID != memberID && !actor.Role.Can(household.CapManageFinance) {
		return nil, ErrForbidden
	}

	member, err := s.requireMember(ctx, memberID)
	if err != nil {
		return nil, err
	}
	if !member.InHousehold(*actor.HouseholdID) {
		return nil, ErrMemberNotFound
	}

	credit := Credit{
		ID:          uuid.NewString(),
		HouseholdID: *member.HouseholdID,
		MemberID:    memberID,
		Source:      CreditSourcePurchase,
		Description: description,
		Amount:      amount,
		Remaining:   amount,
	}
	if err := s.repo.CreateCredit(ctx, &credit); err != nil {
		return nil, err
	}

	return &credit, nil
}

type CreditRedemption struct {
	CreditID string
	Consumed decimal.Decimal
}

type RedeemResult struct {
	Applications []ChargeApplication
	Redemptions  []CreditRedemption
}

// RedeemCredits consumes a member's open credits, oldest first, against
// their outstanding charges in smart-pay order. Members can redeem their
// own credits; finance staff can redeem on anyone's behalf.
func (s *Service) RedeemCredits(ctx context.Context, actorID, memberID string) (*RedeemResult, error) {
	actor, err := s.requireMember(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if actorID != memberID && !actor.Role.Can(household.CapManageFinance) {
		return nil, ErrForbidden
	}

	member, err := s.requireMember(ctx, memberID)
	if err != nil {
		return nil, err
	}
	if !member.InHousehold(*actor.HouseholdID) {
		return nil, ErrMemberNotFound
	}

	var result RedeemResult
	err = s.withConflictRetry(ctx, func(ctx context.Context) error {
		result = RedeemResult{}
		return s.repo.Transaction(ctx, func(tx Repository) error {
			credits, err := tx.ListOpenCreditsLocked(ctx, memberID)
			if err != nil {
				return err
			}
			charges, err := tx.ListOpenChargesLocked(ctx, memberID)
			if err != nil {
				return err
			}
			sortForAllocation(charges)

			appliedAt := s.now()
			creditIdx := 0
			for i := range charges {
				charge := &charges[i]
				for charge.Remaining().IsPositive() && creditIdx < len(credits) {
					credit := &credits[creditIdx]
					if !credit.Remaining.IsPositive() {
						creditIdx++
						continue
					}

					portion := decimal.Min(charge.Remaining(), credit.Remaining)
					if _, err := applyToCharge(ctx, tx, charge, portion, actor.ID, PaymentSourceCredit, appliedAt); err != nil {
						return err
					}

					remaining := credit.Remaining.Sub(portion)
					if err := tx.SetCreditRemaining(ctx, credit.ID, remaining); err != nil {
						return err
					}
					credit.Remaining = remaining

					result.Applications = append(result.Applications, ChargeApplication{
						ChargeID:    charge.ID,
						Description: charge.Description,
						Applied:     portion,
						Remaining:   charge.Remaining(),
					})
					result.Redemptions = append(result.Redemptions, CreditRedemption{
						CreditID: credit.ID,
						Consumed: portion,
					})
				}
			}

			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	return &result, nil
}

// RecordCashboxEntry appends a manual reconciliation movement to the
// household cashbox.
func (s *Service) RecordCashboxEntry(ctx context.Context, actorID, direction string, amount decimal.Decimal, description string) (*CashboxEntry, error) {
	if direction != CashboxIn && direction != CashboxOut {
		return nil, ErrInvalidValue
	}
	if !amount.IsPositive() {
		return nil, ErrInvalidValue
	}
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, ErrInvalidValue
	}

	actor, err := s.requireCapability(ctx, actorID, household.CapManageFinance)
	if err != nil {
		return nil, err
	}

	entry := CashboxEntry{
		ID:          uuid.NewString(),
		HouseholdID: *actor.HouseholdID,
		MemberID:    &actor.ID,
		Direction:   direction,
		Amount:      amount,
		Description: description,
	}
	if err := s.repo.CreateCashboxEntry(ctx, &entry); err != nil {
		return nil, err
	}

	return &entry, nil
}

func (s *Service) ListCashbox(ctx context.Context, actorID string) ([]CashboxEntry, error) {
	actor, err := s.requireMember(ctx, actorID)
	if err != nil {
		return nil, err
	}
	return s.repo.ListCashboxEntries(ctx, *actor.HouseholdID)
}

package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"rep-ledger-go/internal/domain/household"
	"rep-ledger-go/internal/domain/money"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

func plantCharge(repo *fakeLedgerRepo, id, memberID, value string, due time.Time) {
	member := memberID
	charge := &Charge{
		ID:          id,
		HouseholdID: testHousehold,
		MemberID:    &member,
		SourceKey:   "adhoc:" + id,
		Description: id,
		Category:    "utilities",
		PeriodYear:  due.Year(),
		PeriodMonth: int(due.Month()),
		TotalValue:  money.MustParse(value),
		PaidAmount:  decimal.Zero,
		DueDate:     due,
	}
	repo.charges[id] = charge
	repo.chargeIDs = append(repo.chargeIDs, id)
}

func TestRecordDirectPayment(t *testing.T) {
	admin := newMember("admin", household.RoleAdmin)
	member := newMember("member-a", household.RoleResident)
	svc, repo, _ := newTestService(admin, member)
	plantCharge(repo, "c1", "member-a", "60.00", time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC))

	charge, err := svc.RecordDirectPayment(context.Background(), "admin", "c1", money.MustParse("25.00"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if charge.State() != ChargePartial {
		t.Fatalf("expected partial state, got %s", charge.State())
	}
	if !charge.Remaining().Equal(money.MustParse("35.00")) {
		t.Fatalf("expected remaining 35.00, got %s", charge.Remaining())
	}

	if len(repo.payments) != 1 {
		t.Fatalf("expected one payment, got %d", len(repo.payments))
	}
	payment := repo.payments[0]
	if payment.PayerMemberID != "member-a" || payment.ConfirmedByID != "admin" {
		t.Fatalf("unexpected payment attribution %+v", payment)
	}
	if payment.Source != PaymentSourceCash {
		t.Fatalf("expected cash source, got %s", payment.Source)
	}

	if len(repo.cashbox) != 1 {
		t.Fatalf("expected one cashbox entry, got %d", len(repo.cashbox))
	}
	if !repo.cashbox[0].Amount.Equal(money.MustParse("25.00")) || repo.cashbox[0].Direction != CashboxIn {
		t.Fatalf("unexpected cashbox entry %+v", repo.cashbox[0])
	}
}

func TestRecordDirectPaymentOverpaymentRejected(t *testing.T) {
	admin := newMember("admin", household.RoleAdmin)
	member := newMember("member-a", household.RoleResident)
	svc, repo, _ := newTestService(admin, member)
	plantCharge(repo, "c1", "member-a", "60.00", time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC))

	_, err := svc.RecordDirectPayment(context.Background(), "admin", "c1", money.MustParse("60.01"))
	if !errors.Is(err, ErrOverpayment) {
		t.Fatalf("expected ErrOverpayment, got %v", err)
	}
	if !repo.charges["c1"].PaidAmount.IsZero() {
		t.Fatalf("failed payment must not move paid amount, got %s", repo.charges["c1"].PaidAmount)
	}
	if len(repo.payments) != 0 || len(repo.cashbox) != 0 {
		t.Fatalf("failed payment must leave no records")
	}
}

func TestRecordDirectPaymentSettledChargeRejected(t *testing.T) {
	admin := newMember("admin", household.RoleAdmin)
	member := newMember("member-a", household.RoleResident)
	svc, repo, _ := newTestService(admin, member)
	plantCharge(repo, "c1", "member-a", "60.00", time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC))
	repo.charges["c1"].PaidAmount = money.MustParse("60.00")

	_, err := svc.RecordDirectPayment(context.Background(), "admin", "c1", money.MustParse("0.01"))
	if !errors.Is(err, ErrAlreadySettled) {
		t.Fatalf("expected ErrAlreadySettled, got %v", err)
	}
}

func TestRecordDirectPaymentRequiresFinanceCapability(t *testing.T) {
	resident := newMember("res", household.RoleResident)
	member := newMember("member-a", household.RoleResident)
	svc, repo, _ := newTestService(resident, member)
	plantCharge(repo, "c1", "member-a", "60.00", time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC))

	_, err := svc.RecordDirectPayment(context.Background(), "res", "c1", money.MustParse("10.00"))
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestConcurrentPaymentsOnlyOneWins(t *testing.T) {
	admin := newMember("admin", household.RoleAdmin)
	finance := newMember("finance", household.RoleAdminFinance)
	member := newMember("member-a", household.RoleResident)
	svc, repo, _ := newTestService(admin, finance, member)
	plantCharge(repo, "c1", "member-a", "40.00", time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC))

	// Two confirmations of 30.00 against a 40.00 charge: one must land,
	// the other must fail as an overpayment after its retry re-reads.
	var g errgroup.Group
	results := make([]error, 2)
	for i, actor := range []string{"admin", "finance"} {
		i, actor := i, actor
		g.Go(func() error {
			_, err := svc.RecordDirectPayment(context.Background(), actor, "c1", money.MustParse("30.00"))
			results[i] = err
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("wait: %v", err)
	}

	var succeeded, overpaid int
	for _, err := range results {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, ErrOverpayment):
			overpaid++
		default:
			t.Fatalf("unexpected error %v", err)
		}
	}
	if succeeded != 1 || overpaid != 1 {
		t.Fatalf("expected exactly one success and one overpayment, got %d/%d", succeeded, overpaid)
	}
	if !repo.charges["c1"].PaidAmount.Equal(money.MustParse("30.00")) {
		t.Fatalf("expected paid amount 30.00, got %s", repo.charges["c1"].PaidAmount)
	}
	if len(repo.payments) != 1 {
		t.Fatalf("expected exactly one payment record, got %d", len(repo.payments))
	}
}

func TestAllocateCoversOldestFirst(t *testing.T) {
	admin := newMember("admin", household.RoleAdmin)
	member := newMember("member-a", household.RoleResident)
	svc, repo, _ := newTestService(admin, member)
	plantCharge(repo, "c-march", "member-a", "30.00", time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC))
	plantCharge(repo, "c-april", "member-a", "20.00", time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC))
	plantCharge(repo, "c-may", "member-a", "10.00", time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC))

	result, err := svc.Allocate(context.Background(), "admin", "member-a", money.MustParse("45.00"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if len(result.Applications) != 2 {
		t.Fatalf("expected 2 applications, got %d", len(result.Applications))
	}
	if result.Applications[0].ChargeID != "c-march" || !result.Applications[0].Applied.Equal(money.MustParse("30.00")) {
		t.Fatalf("unexpected first application %+v", result.Applications[0])
	}
	if result.Applications[1].ChargeID != "c-april" || !result.Applications[1].Applied.Equal(money.MustParse("15.00")) {
		t.Fatalf("unexpected second application %+v", result.Applications[1])
	}
	if !result.ResidualCredit.IsZero() {
		t.Fatalf("expected no residual credit, got %s", result.ResidualCredit)
	}

	if repo.charges["c-march"].State() != ChargePaid {
		t.Fatalf("expected march settled")
	}
	if !repo.charges["c-april"].Remaining().Equal(money.MustParse("5.00")) {
		t.Fatalf("expected april remaining 5.00, got %s", repo.charges["c-april"].Remaining())
	}
	if !repo.charges["c-may"].PaidAmount.IsZero() {
		t.Fatalf("expected may untouched")
	}

	// The full handed-over amount enters the cashbox once.
	if len(repo.cashbox) != 1 || !repo.cashbox[0].Amount.Equal(money.MustParse("45.00")) {
		t.Fatalf("expected single cashbox inflow of 45.00, got %+v", repo.cashbox)
	}
}

func TestAllocateResidualBecomesCredit(t *testing.T) {
	admin := newMember("admin", household.RoleAdmin)
	member := newMember("member-a", household.RoleResident)
	svc, repo, _ := newTestService(admin, member)
	plantCharge(repo, "c-march", "member-a", "30.00", time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC))
	plantCharge(repo, "c-april", "member-a", "20.00", time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC))
	plantCharge(repo, "c-may", "member-a", "10.00", time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC))

	result, err := svc.Allocate(context.Background(), "admin", "member-a", money.MustParse("100.00"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if len(result.Applications) != 3 {
		t.Fatalf("expected 3 applications, got %d", len(result.Applications))
	}
	if !result.ResidualCredit.Equal(money.MustParse("40.00")) {
		t.Fatalf("expected residual credit 40.00, got %s", result.ResidualCredit)
	}

	if len(repo.credits) != 1 {
		t.Fatalf("expected one credit, got %d", len(repo.credits))
	}
	credit := repo.credits[0]
	if credit.Source != CreditSourceOverpayment || !credit.Remaining.Equal(money.MustParse("40.00")) {
		t.Fatalf("unexpected credit %+v", credit)
	}
	if credit.MemberID != "member-a" {
		t.Fatalf("credit must stay with the payer, got %s", credit.MemberID)
	}

	if len(repo.cashbox) != 1 || !repo.cashbox[0].Amount.Equal(money.MustParse("100.00")) {
		t.Fatalf("expected cashbox inflow of the full 100.00, got %+v", repo.cashbox)
	}
}

func TestAllocateNoOpenChargesAllCredit(t *testing.T) {
	admin := newMember("admin", household.RoleAdmin)
	member := newMember("member-a", household.RoleResident)
	svc, repo, _ := newTestService(admin, member)

	result, err := svc.Allocate(context.Background(), "admin", "member-a", money.MustParse("50.00"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(result.Applications) != 0 {
		t.Fatalf("expected no applications, got %d", len(result.Applications))
	}
	if !result.ResidualCredit.Equal(money.MustParse("50.00")) {
		t.Fatalf("expected full amount as credit, got %s", result.ResidualCredit)
	}
	if len(repo.credits) != 1 {
		t.Fatalf("expected one credit, got %d", len(repo.credits))
	}
}

func TestAllocateRejectsNonPositiveAmount(t *testing.T) {
	admin := newMember("admin", household.RoleAdmin)
	svc, _, _ := newTestService(admin)

	_, err := svc.Allocate(context.Background(), "admin", "admin", decimal.Zero)
	if !errors.Is(err, ErrInvalidValue) {
		t.Fatalf("expected ErrInvalidValue, got %v", err)
	}
}

func TestIssuePurchaseCredit(t *testing.T) {
	member := newMember("member-a", household.RoleResident)
	svc, repo, _ := newTestService(member)

	credit, err := svc.IssuePurchaseCredit(context.Background(), "member-a", "member-a", money.MustParse("35.50"), "cleaning supplies")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if credit.Source != CreditSourcePurchase {
		t.Fatalf("expected purchase source, got %s", credit.Source)
	}
	if !credit.Remaining.Equal(money.MustParse("35.50")) {
		t.Fatalf("expected remaining 35.50, got %s", credit.Remaining)
	}
	if len(repo.credits) != 1 {
		t.Fatalf("expected credit stored")
	}
}

func TestIssuePurchaseCreditForOthersNeedsFinance(t *testing.T) {
	resident := newMember("res", household.RoleResident)
	other := newMember("member-a", household.RoleResident)
	svc, _, _ := newTestService(resident, other)

	_, err := svc.IssuePurchaseCredit(context.Background(), "res", "member-a", money.MustParse("10.00"), "milk")
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestRedeemCreditsOldestFirstAgainstOldestCharges(t *testing.T) {
	member := newMember("member-a", household.RoleResident)
	svc, repo, _ := newTestService(member)
	plantCharge(repo, "c-march", "member-a", "30.00", time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC))
	plantCharge(repo, "c-april", "member-a", "20.00", time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC))
	repo.credits = append(repo.credits,
		&Credit{ID: "cr-1", HouseholdID: testHousehold, MemberID: "member-a", Source: CreditSourcePurchase, Amount: money.MustParse("25.00"), Remaining: money.MustParse("25.00")},
		&Credit{ID: "cr-2", HouseholdID: testHousehold, MemberID: "member-a", Source: CreditSourcePurchase, Amount: money.MustParse("15.00"), Remaining: money.MustParse("15.00")},
	)

	result, err := svc.RedeemCredits(context.Background(), "member-a", "member-a")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	// 25 from cr-1 and 5 from cr-2 settle march; the last 10 go to april.
	if repo.charges["c-march"].State() != ChargePaid {
		t.Fatalf("expected march settled")
	}
	if !repo.charges["c-april"].Remaining().Equal(money.MustParse("10.00")) {
		t.Fatalf("expected april remaining 10.00, got %s", repo.charges["c-april"].Remaining())
	}
	if !repo.credits[0].Remaining.IsZero() || !repo.credits[1].Remaining.IsZero() {
		t.Fatalf("expected both credits consumed, got %s and %s", repo.credits[0].Remaining, repo.credits[1].Remaining)
	}

	if len(result.Redemptions) != 3 {
		t.Fatalf("expected 3 redemption steps, got %d", len(result.Redemptions))
	}
	if result.Redemptions[0].CreditID != "cr-1" || !result.Redemptions[0].Consumed.Equal(money.MustParse("25.00")) {
		t.Fatalf("unexpected first redemption %+v", result.Redemptions[0])
	}

	for _, payment := range repo.payments {
		if payment.Source != PaymentSourceCredit {
			t.Fatalf("expected credit-sourced payments, got %s", payment.Source)
		}
	}
	// Redemption moves no cash; the money is already in the box.
	if len(repo.cashbox) != 0 {
		t.Fatalf("expected no cashbox entries, got %d", len(repo.cashbox))
	}
}

func TestRedeemCreditsForOthersNeedsFinance(t *testing.T) {
	resident := newMember("res", household.RoleResident)
	other := newMember("member-a", household.RoleResident)
	svc, _, _ := newTestService(resident, other)

	_, err := svc.RedeemCredits(context.Background(), "res", "member-a")
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestRecordCashboxEntryOutflow(t *testing.T) {
	admin := newMember("admin", household.RoleAdmin)
	svc, repo, _ := newTestService(admin)

	entry, err := svc.RecordCashboxEntry(context.Background(), "admin", CashboxOut, money.MustParse("12.00"), "gas refill")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !entry.Signed().Equal(money.MustParse("-12.00")) {
		t.Fatalf("expected signed -12.00, got %s", entry.Signed())
	}

	sum, err := repo.SumCashbox(context.Background(), testHousehold)
	if err != nil {
		t.Fatalf("sum: %v", err)
	}
	if !sum.Equal(money.MustParse("-12.00")) {
		t.Fatalf("expected balance -12.00, got %s", sum)
	}
}

func TestRecordCashboxEntryValidation(t *testing.T) {
	admin := newMember("admin", household.RoleAdmin)
	resident := newMember("res", household.RoleResident)
	svc, _, _ := newTestService(admin, resident)

	if _, err := svc.RecordCashboxEntry(context.Background(), "admin", "sideways", money.MustParse("5.00"), "x"); !errors.Is(err, ErrInvalidValue) {
		t.Fatalf("expected ErrInvalidValue for direction, got %v", err)
	}
	if _, err := svc.RecordCashboxEntry(context.Background(), "admin", CashboxIn, decimal.Zero, "x"); !errors.Is(err, ErrInvalidValue) {
		t.Fatalf("expected ErrInvalidValue for amount, got %v", err)
	}
	if _, err := svc.RecordCashboxEntry(context.Background(), "res", CashboxIn, money.MustParse("5.00"), "x"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for resident, got %v", err)
	}
}

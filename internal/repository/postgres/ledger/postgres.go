package ledger

import (
	"context"
	"errors"
	"time"

	ledgerdomain "rep-ledger-go/internal/domain/ledger"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const uniqueViolation = "23505"

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Transaction(ctx context.Context, fn func(ledgerdomain.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&PostgresRepository{db: tx})
	})
}

func (r *PostgresRepository) CreateTemplate(ctx context.Context, t *ledgerdomain.ChargeTemplate) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *PostgresRepository) GetTemplateByID(ctx context.Context, householdID, templateID string) (*ledgerdomain.ChargeTemplate, error) {
	var t ledgerdomain.ChargeTemplate
	if err := r.db.WithContext(ctx).
		Where("household_id = ? AND id = ?", householdID, templateID).
		First(&t).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ledgerdomain.ErrTemplateNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *PostgresRepository) UpdateTemplate(ctx context.Context, t *ledgerdomain.ChargeTemplate) error {
	return r.db.WithContext(ctx).
		Model(&ledgerdomain.ChargeTemplate{}).
		Where("id = ? AND household_id = ?", t.ID, t.HouseholdID).
		Updates(map[string]interface{}{
			"description": t.Description,
			"base_value":  t.BaseValue,
			"category":    t.Category,
			"updated_at":  time.Now().UTC(),
		}).Error
}

func (r *PostgresRepository) ListTemplates(ctx context.Context, householdID string) ([]ledgerdomain.ChargeTemplate, error) {
	var templates []ledgerdomain.ChargeTemplate
	if err := r.db.WithContext(ctx).
		Where("household_id = ?", householdID).
		Order("created_at asc, id asc").
		Find(&templates).Error; err != nil {
		return nil, err
	}
	return templates, nil
}

func (r *PostgresRepository) CreateCharges(ctx context.Context, charges []ledgerdomain.Charge) error {
	if len(charges) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).Create(&charges).Error

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ledgerdomain.ErrDuplicateCharge
	}
	return err
}

func (r *PostgresRepository) CountGeneratedForPeriod(ctx context.Context, householdID string, period ledgerdomain.Period) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&ledgerdomain.Charge{}).
		Where("household_id = ? AND period_year = ? AND period_month = ?", householdID, period.Year, period.Month).
		Where("source_key = ? OR source_key LIKE ?", "fixed", "tpl:%").
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *PostgresRepository) GetChargeByID(ctx context.Context, chargeID string) (*ledgerdomain.Charge, error) {
	var charge ledgerdomain.Charge
	if err := r.db.WithContext(ctx).
		Where("id = ?", chargeID).
		First(&charge).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ledgerdomain.ErrChargeNotFound
		}
		return nil, err
	}
	return &charge, nil
}

func (r *PostgresRepository) ListChargesByMember(ctx context.Context, memberID string, filter ledgerdomain.ChargeFilter) ([]ledgerdomain.Charge, error) {
	query := r.db.WithContext(ctx).Where("member_id = ?", memberID)
	if filter == ledgerdomain.FilterPending {
		query = query.Where("paid_amount < total_value")
	}

	var charges []ledgerdomain.Charge
	if err := query.Order("due_date asc, id asc").Find(&charges).Error; err != nil {
		return nil, err
	}
	return charges, nil
}

func (r *PostgresRepository) ListOpenChargesLocked(ctx context.Context, memberID string) ([]ledgerdomain.Charge, error) {
	var charges []ledgerdomain.Charge
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("member_id = ? AND paid_amount < total_value", memberID).
		Order("id asc").
		Find(&charges).Error; err != nil {
		return nil, err
	}
	return charges, nil
}

func (r *PostgresRepository) SetPaidAmount(ctx context.Context, chargeID string, expected, next decimal.Decimal) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&ledgerdomain.Charge{}).
		Where("id = ? AND paid_amount = ?", chargeID, expected).
		Updates(map[string]interface{}{
			"paid_amount": next,
			"updated_at":  time.Now().UTC(),
		})
	return result.RowsAffected > 0, result.Error
}

func (r *PostgresRepository) CreatePayment(ctx context.Context, p *ledgerdomain.Payment) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *PostgresRepository) CreateCredit(ctx context.Context, c *ledgerdomain.Credit) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *PostgresRepository) ListOpenCreditsLocked(ctx context.Context, memberID string) ([]ledgerdomain.Credit, error) {
	var credits []ledgerdomain.Credit
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("member_id = ? AND remaining > 0", memberID).
		Order("created_at asc, id asc").
		Find(&credits).Error; err != nil {
		return nil, err
	}
	return credits, nil
}

func (r *PostgresRepository) SetCreditRemaining(ctx context.Context, creditID string, remaining decimal.Decimal) error {
	return r.db.WithContext(ctx).
		Model(&ledgerdomain.Credit{}).
		Where("id = ?", creditID).
		Update("remaining", remaining).Error
}

func (r *PostgresRepository) SumOpenCredits(ctx context.Context, memberID string) (decimal.Decimal, error) {
	return r.sum(ctx, `
		SELECT COALESCE(SUM(remaining), 0)
		FROM credits
		WHERE member_id = ? AND remaining > 0`, memberID)
}

func (r *PostgresRepository) CreateCashboxEntry(ctx context.Context, e *ledgerdomain.CashboxEntry) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *PostgresRepository) ListCashboxEntries(ctx context.Context, householdID string) ([]ledgerdomain.CashboxEntry, error) {
	var entries []ledgerdomain.CashboxEntry
	if err := r.db.WithContext(ctx).
		Where("household_id = ?", householdID).
		Order("created_at desc, id desc").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *PostgresRepository) SumCashbox(ctx context.Context, householdID string) (decimal.Decimal, error) {
	return r.sum(ctx, `
		SELECT COALESCE(SUM(CASE WHEN direction = 'out' THEN -amount ELSE amount END), 0)
		FROM cashbox_entries
		WHERE household_id = ?`, householdID)
}

func (r *PostgresRepository) SumHouseholdCharges(ctx context.Context, householdID string) (decimal.Decimal, error) {
	return r.sum(ctx, `
		SELECT COALESCE(SUM(total_value), 0)
		FROM charges
		WHERE household_id = ?`, householdID)
}

func (r *PostgresRepository) sum(ctx context.Context, query string, args ...interface{}) (decimal.Decimal, error) {
	var total decimal.Decimal
	if err := r.db.WithContext(ctx).Raw(query, args...).Scan(&total).Error; err != nil {
		return decimal.Zero, err
	}
	return total, nil
}

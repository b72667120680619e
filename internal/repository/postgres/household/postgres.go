package household

import (
	"context"
	"errors"

	householddomain "rep-ledger-go/internal/domain/household"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Transaction(ctx context.Context, fn func(householddomain.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&PostgresRepository{db: tx})
	})
}

func (r *PostgresRepository) CreateHousehold(ctx context.Context, h *householddomain.Household) error {
	return r.db.WithContext(ctx).Create(h).Error
}

func (r *PostgresRepository) GetHouseholdByID(ctx context.Context, householdID string) (*householddomain.Household, error) {
	var h householddomain.Household
	if err := r.db.WithContext(ctx).
		Where("id = ?", householdID).
		First(&h).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, householddomain.ErrHouseholdNotFound
		}
		return nil, err
	}
	return &h, nil
}

func (r *PostgresRepository) GetHouseholdByInviteCode(ctx context.Context, code string) (*householddomain.Household, error) {
	var h householddomain.Household
	if err := r.db.WithContext(ctx).
		Where("invite_code = ?", code).
		First(&h).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, householddomain.ErrInviteCodeNotFound
		}
		return nil, err
	}
	return &h, nil
}

func (r *PostgresRepository) UpdateInviteCode(ctx context.Context, householdID, code string) error {
	return r.db.WithContext(ctx).
		Model(&householddomain.Household{}).
		Where("id = ?", householdID).
		Update("invite_code", code).Error
}

func (r *PostgresRepository) IsInviteCodeTaken(ctx context.Context, code string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&householddomain.Household{}).
		Where("invite_code = ?", code).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *PostgresRepository) CreateMember(ctx context.Context, m *householddomain.Member) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *PostgresRepository) GetMemberByID(ctx context.Context, memberID string) (*householddomain.Member, error) {
	var m householddomain.Member
	if err := r.db.WithContext(ctx).
		Where("id = ?", memberID).
		First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, householddomain.ErrMemberNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (r *PostgresRepository) ListMembers(ctx context.Context, householdID string) ([]householddomain.Member, error) {
	var members []householddomain.Member
	if err := r.db.WithContext(ctx).
		Where("household_id = ?", householdID).
		Order("created_at asc, id asc").
		Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}

func (r *PostgresRepository) UpdateMemberHousehold(ctx context.Context, memberID string, householdID *string, role householddomain.Role) error {
	return r.db.WithContext(ctx).
		Model(&householddomain.Member{}).
		Where("id = ?", memberID).
		Updates(map[string]interface{}{
			"household_id": householdID,
			"role":         role,
		}).Error
}

func (r *PostgresRepository) UpdateMemberRole(ctx context.Context, memberID string, role householddomain.Role) error {
	return r.db.WithContext(ctx).
		Model(&householddomain.Member{}).
		Where("id = ?", memberID).
		Update("role", role).Error
}

func (r *PostgresRepository) UpdateMemberFixedRent(ctx context.Context, memberID string, amount decimal.Decimal) error {
	return r.db.WithContext(ctx).
		Model(&householddomain.Member{}).
		Where("id = ?", memberID).
		Update("fixed_rent_base", amount).Error
}

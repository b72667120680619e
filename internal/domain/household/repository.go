package household

import (
	"context"

	"github.com/shopspring/decimal"
)

type Repository interface {
	Transaction(ctx context.Context, fn func(Repository) error) error
	CreateHousehold(ctx context.Context, h *Household) error
	GetHouseholdByID(ctx context.Context, householdID string) (*Household, error)
	GetHouseholdByInviteCode(ctx context.Context, code string) (*Household, error)
	UpdateInviteCode(ctx context.Context, householdID, code string) error
	IsInviteCodeTaken(ctx context.Context, code string) (bool, error)
	CreateMember(ctx context.Context, m *Member) error
	GetMemberByID(ctx context.Context, memberID string) (*Member, error)
	ListMembers(ctx context.Context, householdID string) ([]Member, error)
	UpdateMemberHousehold(ctx context.Context, memberID string, householdID *string, role Role) error
	UpdateMemberRole(ctx context.Context, memberID string, role Role) error
	UpdateMemberFixedRent(ctx context.Context, memberID string, amount decimal.Decimal) error
}

package household

import (
	"context"
	"crypto/rand"
	"math/big"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	inviteCodeLength   = 8
	inviteCodeAttempts = 10
)

type Service struct {
	repo        Repository
	subscribers []Subscriber
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) CreateMember(ctx context.Context, displayName string) (*Member, error) {
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		return nil, ErrInvalidValue
	}

	member := Member{
		ID:            uuid.NewString(),
		DisplayName:   displayName,
		Role:          RoleResident,
		FixedRentBase: decimal.Zero,
	}
	if err := s.repo.CreateMember(ctx, &member); err != nil {
		return nil, err
	}

	return &member, nil
}

func (s *Service) GetMember(ctx context.Context, memberID string) (*Member, error) {
	return s.repo.GetMemberByID(ctx, memberID)
}

func (s *Service) GetHousehold(ctx context.Context, householdID string) (*Household, error) {
	return s.repo.GetHouseholdByID(ctx, householdID)
}

// GetHouseholdByMember resolves the household the given member lives in.
func (s *Service) GetHouseholdByMember(ctx context.Context, memberID string) (*Household, error) {
	member, err := s.repo.GetMemberByID(ctx, memberID)
	if err != nil {
		return nil, err
	}
	if member.HouseholdID == nil {
		return nil, ErrNotInHousehold
	}
	return s.repo.GetHouseholdByID(ctx, *member.HouseholdID)
}

// CreateHousehold registers a new household and makes the founder its admin.
func (s *Service) CreateHousehold(ctx context.Context, founderID, name, address string) (*Household, error) {
	name = strings.TrimSpace(name)
	address = strings.TrimSpace(address)
	if name == "" {
		return nil, ErrInvalidValue
	}

	var result Household
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		founder, err := tx.GetMemberByID(ctx, founderID)
		if err != nil {
			return err
		}
		if founder.HouseholdID != nil {
			return ErrAlreadyInHousehold
		}

		code, err := generateUniqueInviteCode(ctx, tx)
		if err != nil {
			return err
		}

		h := Household{
			ID:         uuid.NewString(),
			Name:       name,
			Address:    address,
			InviteCode: code,
		}
		if err := tx.CreateHousehold(ctx, &h); err != nil {
			return err
		}

		if err := tx.UpdateMemberHousehold(ctx, founderID, &h.ID, RoleAdmin); err != nil {
			return err
		}

		result = h
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(Event{Kind: EventJoined, HouseholdID: result.ID, MemberID: founderID, Role: RoleAdmin})
	return &result, nil
}

func (s *Service) JoinHousehold(ctx context.Context, memberID, inviteCode string) (*Household, error) {
	inviteCode = strings.ToUpper(strings.TrimSpace(inviteCode))
	if inviteCode == "" {
		return nil, ErrInvalidValue
	}

	var result Household
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		member, err := tx.GetMemberByID(ctx, memberID)
		if err != nil {
			return err
		}
		if member.HouseholdID != nil {
			return ErrAlreadyInHousehold
		}

		h, err := tx.GetHouseholdByInviteCode(ctx, inviteCode)
		if err != nil {
			return err
		}

		if err := tx.UpdateMemberHousehold(ctx, memberID, &h.ID, RoleResident); err != nil {
			return err
		}

		result = *h
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(Event{Kind: EventJoined, HouseholdID: result.ID, MemberID: memberID, Role: RoleResident})
	return &result, nil
}

func (s *Service) LeaveHousehold(ctx context.Context, memberID string) error {
	var left string
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		member, err := tx.GetMemberByID(ctx, memberID)
		if err != nil {
			return err
		}
		if member.HouseholdID == nil {
			return ErrNotInHousehold
		}

		left = *member.HouseholdID
		return tx.UpdateMemberHousehold(ctx, memberID, nil, RoleResident)
	})
	if err != nil {
		return err
	}

	s.publish(Event{Kind: EventLeft, HouseholdID: left, MemberID: memberID, Role: RoleResident})
	return nil
}

func (s *Service) ListMembers(ctx context.Context, memberID string) ([]Member, error) {
	member, err := s.repo.GetMemberByID(ctx, memberID)
	if err != nil {
		return nil, err
	}
	if member.HouseholdID == nil {
		return nil, ErrNotInHousehold
	}
	return s.repo.ListMembers(ctx, *member.HouseholdID)
}

func (s *Service) RegenerateInviteCode(ctx context.Context, actorID string) (*Household, error) {
	var result Household
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		actor, err := tx.GetMemberByID(ctx, actorID)
		if err != nil {
			return err
		}
		if actor.HouseholdID == nil {
			return ErrNotInHousehold
		}
		if !actor.Role.Can(CapManageHousehold) {
			return ErrForbidden
		}

		h, err := tx.GetHouseholdByID(ctx, *actor.HouseholdID)
		if err != nil {
			return err
		}

		code, err := generateUniqueInviteCode(ctx, tx)
		if err != nil {
			return err
		}
		if err := tx.UpdateInviteCode(ctx, h.ID, code); err != nil {
			return err
		}

		h.InviteCode = code
		result = *h
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// SetFixedRent updates a member's fixed rent base. The actor needs the
// finance capability and must share a household with the member.
func (s *Service) SetFixedRent(ctx context.Context, actorID, memberID string, amount decimal.Decimal) (*Member, error) {
	if amount.IsNegative() {
		return nil, ErrInvalidValue
	}

	var result Member
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		actor, err := tx.GetMemberByID(ctx, actorID)
		if err != nil {
			return err
		}
		if !actor.Role.Can(CapManageFinance) {
			return ErrForbidden
		}

		member, err := tx.GetMemberByID(ctx, memberID)
		if err != nil {
			return err
		}
		if actor.HouseholdID == nil || !member.InHousehold(*actor.HouseholdID) {
			return ErrMemberNotFound
		}

		if err := tx.UpdateMemberFixedRent(ctx, memberID, amount); err != nil {
			return err
		}

		member.FixedRentBase = amount
		result = *member
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// ChangeRole promotes or demotes a member. Only admins may change roles.
func (s *Service) ChangeRole(ctx context.Context, actorID, memberID string, newRole Role) (*Member, error) {
	if !newRole.Valid() {
		return nil, ErrInvalidValue
	}

	var result Member
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		actor, err := tx.GetMemberByID(ctx, actorID)
		if err != nil {
			return err
		}
		if !actor.Role.Can(CapManageRoles) {
			return ErrForbidden
		}

		member, err := tx.GetMemberByID(ctx, memberID)
		if err != nil {
			return err
		}
		if actor.HouseholdID == nil || !member.InHousehold(*actor.HouseholdID) {
			return ErrMemberNotFound
		}

		if err := tx.UpdateMemberRole(ctx, memberID, newRole); err != nil {
			return err
		}

		member.Role = newRole
		result = *member
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(Event{Kind: EventRoleChanged, HouseholdID: *result.HouseholdID, MemberID: result.ID, Role: result.Role})
	return &result, nil
}

func generateUniqueInviteCode(ctx context.Context, repo Repository) (string, error) {
	for i := 0; i < inviteCodeAttempts; i++ {
		code, err := generateCode(inviteCodeLength)
		if err != nil {
			return "", err
		}
		taken, err := repo.IsInviteCodeTaken(ctx, code)
		if err != nil {
			return "", err
		}
		if !taken {
			return code, nil
		}
	}
	return "", ErrCodeGenerationFailed
}

func generateCode(length int) (string, error) {
	const alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	max := big.NewInt(int64(len(alphabet)))

	var builder strings.Builder
	builder.Grow(length)

	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		builder.WriteByte(alphabet[n.Int64()])
	}

	return builder.String(), nil
}

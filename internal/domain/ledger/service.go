package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"rep-ledger-go/internal/domain/household"
	"rep-ledger-go/internal/domain/money"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// dueDay is the day of the month generated charges fall due on.
const dueDay = 10

type Service struct {
	repo      Repository
	directory Directory
	now       func() time.Time
}

func NewService(repo Repository, directory Directory) *Service {
	return &Service{
		repo:      repo,
		directory: directory,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// requireMember resolves a member and checks household membership.
func (s *Service) requireMember(ctx context.Context, memberID string) (*household.Member, error) {
	member, err := s.directory.GetMemberByID(ctx, memberID)
	if err != nil {
		if errors.Is(err, household.ErrMemberNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, err
	}
	if member.HouseholdID == nil {
		return nil, ErrForbidden
	}
	return member, nil
}

// requireCapability resolves the actor and checks one capability at the
// operation boundary.
func (s *Service) requireCapability(ctx context.Context, actorID string, capability household.Capability) (*household.Member, error) {
	actor, err := s.requireMember(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if !actor.Role.Can(capability) {
		return nil, ErrForbidden
	}
	return actor, nil
}

type CreateTemplateInput struct {
	Description string
	BaseValue   decimal.Decimal
	Category    string
}

func (s *Service) CreateTemplate(ctx context.Context, actorID string, input CreateTemplateInput) (*ChargeTemplate, error) {
	actor, err := s.requireCapability(ctx, actorID, household.CapManageFinance)
	if err != nil {
		return nil, err
	}

	description := strings.TrimSpace(input.Description)
	category := strings.TrimSpace(input.Category)
	if description == "" || category == "" || !input.BaseValue.IsPositive() {
		return nil, ErrInvalidValue
	}

	template := ChargeTemplate{
		ID:          uuid.NewString(),
		HouseholdID: *actor.HouseholdID,
		Description: description,
		BaseValue:   input.BaseValue,
		Category:    category,
	}
	if err := s.repo.CreateTemplate(ctx, &template); err != nil {
		return nil, err
	}

	return &template, nil
}

type UpdateTemplateInput struct {
	TemplateID  string
	Description *string
	BaseValue   *decimal.Decimal
	Category    *string
}

// UpdateTemplate patches a template in place. Charges generated from it in
// earlier periods keep their snapshot value.
func (s *Service) UpdateTemplate(ctx context.Context, actorID string, input UpdateTemplateInput) (*ChargeTemplate, error) {
	actor, err := s.requireCapability(ctx, actorID, household.CapManageFinance)
	if err != nil {
		return nil, err
	}

	template, err := s.repo.GetTemplateByID(ctx, *actor.HouseholdID, input.TemplateID)
	if err != nil {
		return nil, err
	}

	if input.Description != nil {
		description := strings.TrimSpace(*input.Description)
		if description == "" {
			return nil, ErrInvalidValue
		}
		template.Description = description
	}
	if input.BaseValue != nil {
		if !input.BaseValue.IsPositive() {
			return nil, ErrInvalidValue
		}
		template.BaseValue = *input.BaseValue
	}
	if input.Category != nil {
		category := strings.TrimSpace(*input.Category)
		if category == "" {
			return nil, ErrInvalidValue
		}
		template.Category = category
	}

	if err := s.repo.UpdateTemplate(ctx, template); err != nil {
		return nil, err
	}

	return template, nil
}

func (s *Service) ListTemplates(ctx context.Context, actorID string) ([]ChargeTemplate, error) {
	actor, err := s.requireMember(ctx, actorID)
	if err != nil {
		return nil, err
	}
	return s.repo.ListTemplates(ctx, *actor.HouseholdID)
}

type GenerationResult struct {
	Created          int
	Existing         int64
	AlreadyGenerated bool
}

// Generate materializes the billing period: every active template fans out
// one charge per member (value split equally to the cent), and every member
// with a fixed rent base gets a rent charge. A period generates at most
// once; the storage idempotency index closes the race between two
// concurrent calls, and repeat calls report the existing count untouched.
func (s *Service) Generate(ctx context.Context, actorID string, period Period) (GenerationResult, error) {
	if err := period.Validate(); err != nil {
		return GenerationResult{}, err
	}

	actor, err := s.requireCapability(ctx, actorID, household.CapManageFinance)
	if err != nil {
		return GenerationResult{}, err
	}
	householdID := *actor.HouseholdID

	existing, err := s.repo.CountGeneratedForPeriod(ctx, householdID, period)
	if err != nil {
		return GenerationResult{}, err
	}
	if existing > 0 {
		return GenerationResult{Existing: existing, AlreadyGenerated: true}, nil
	}

	members, err := s.directory.ListMembers(ctx, householdID)
	if err != nil {
		return GenerationResult{}, err
	}
	if len(members) == 0 {
		return GenerationResult{}, nil
	}

	templates, err := s.repo.ListTemplates(ctx, householdID)
	if err != nil {
		return GenerationResult{}, err
	}

	charges := s.buildPeriodCharges(householdID, period, templates, members)
	if len(charges) == 0 {
		return GenerationResult{}, nil
	}

	err = s.repo.Transaction(ctx, func(tx Repository) error {
		return tx.CreateCharges(ctx, charges)
	})
	if errors.Is(err, ErrDuplicateCharge) {
		// Lost the race to a concurrent generation; report what exists.
		existing, countErr := s.repo.CountGeneratedForPeriod(ctx, householdID, period)
		if countErr != nil {
			return GenerationResult{}, countErr
		}
		return GenerationResult{Existing: existing, AlreadyGenerated: true}, nil
	}
	if err != nil {
		return GenerationResult{}, err
	}

	return GenerationResult{Created: len(charges)}, nil
}

func (s *Service) buildPeriodCharges(householdID string, period Period, templates []ChargeTemplate, members []household.Member) []Charge {
	dueDate := time.Date(period.Year, time.Month(period.Month), dueDay, 0, 0, 0, 0, time.UTC)

	var charges []Charge
	for _, template := range templates {
		if !template.BaseValue.IsPositive() {
			continue
		}

		templateID := template.ID
		parts := money.Split(template.BaseValue, len(members))
		for i, member := range members {
			memberID := member.ID
			charges = append(charges, Charge{
				ID:          uuid.NewString(),
				HouseholdID: householdID,
				MemberID:    &memberID,
				TemplateID:  &templateID,
				SourceKey:   "tpl:" + template.ID,
				Description: fmt.Sprintf("%s %s", template.Description, period),
				Category:    template.Category,
				PeriodYear:  period.Year,
				PeriodMonth: period.Month,
				TotalValue:  parts[i],
				PaidAmount:  decimal.Zero,
				DueDate:     dueDate,
			})
		}
	}

	for _, member := range members {
		if !member.FixedRentBase.IsPositive() {
			continue
		}
		memberID := member.ID
		charges = append(charges, Charge{
			ID:          uuid.NewString(),
			HouseholdID: householdID,
			MemberID:    &memberID,
			SourceKey:   "fixed",
			Description: fmt.Sprintf("Rent %s", period),
			Category:    CategoryFixed,
			PeriodYear:  period.Year,
			PeriodMonth: period.Month,
			TotalValue:  member.FixedRentBase,
			PaidAmount:  decimal.Zero,
			DueDate:     dueDate,
		})
	}

	return charges
}

func (s *Service) ListCharges(ctx context.Context, actorID, memberID string, filter ChargeFilter) ([]Charge, error) {
	actor, err := s.requireMember(ctx, actorID)
	if err != nil {
		return nil, err
	}

	if memberID != actorID {
		member, err := s.requireMember(ctx, memberID)
		if err != nil {
			return nil, err
		}
		if !member.InHousehold(*actor.HouseholdID) {
			return nil, ErrMemberNotFound
		}
	}

	if filter != FilterPending {
		filter = FilterAll
	}
	return s.repo.ListChargesByMember(ctx, memberID, filter)
}

type ManualSplit struct {
	MemberID string
	Value    decimal.Decimal
}

type CreateChargeInput struct {
	Description  string
	TotalValue   decimal.Decimal
	Category     string
	DueDate      time.Time
	ManualSplits []ManualSplit
}

// CreateAdHocCharge records a one-off expense outside the template cycle,
// split equally across the household or manually when splits are given.
func (s *Service) CreateAdHocCharge(ctx context.Context, actorID string, input CreateChargeInput) ([]Charge, error) {
	actor, err := s.requireCapability(ctx, actorID, household.CapManageFinance)
	if err != nil {
		return nil, err
	}
	householdID := *actor.HouseholdID

	description := strings.TrimSpace(input.Description)
	category := strings.TrimSpace(input.Category)
	if description == "" || category == "" || !input.TotalValue.IsPositive() || input.DueDate.IsZero() {
		return nil, ErrInvalidValue
	}

	members, err := s.directory.ListMembers(ctx, householdID)
	if err != nil {
		return nil, err
	}
	if len(members) == 0 {
		return nil, ErrInvalidValue
	}

	period := Period{Year: input.DueDate.Year(), Month: int(input.DueDate.Month())}
	batchKey := "adhoc:" + uuid.NewString()

	var charges []Charge
	if len(input.ManualSplits) > 0 {
		known := make(map[string]struct{}, len(members))
		for _, member := range members {
			known[member.ID] = struct{}{}
		}

		sum := decimal.Zero
		seen := make(map[string]struct{}, len(input.ManualSplits))
		for _, split := range input.ManualSplits {
			if _, ok := known[split.MemberID]; !ok {
				return nil, ErrMemberNotFound
			}
			if _, dup := seen[split.MemberID]; dup {
				return nil, ErrInvalidValue
			}
			seen[split.MemberID] = struct{}{}
			if !split.Value.IsPositive() {
				return nil, ErrInvalidValue
			}
			sum = sum.Add(split.Value)
		}
		if !sum.Equal(input.TotalValue) {
			return nil, ErrInvalidValue
		}

		for _, split := range input.ManualSplits {
			memberID := split.MemberID
			charges = append(charges, Charge{
				ID:          uuid.NewString(),
				HouseholdID: householdID,
				MemberID:    &memberID,
				SourceKey:   batchKey,
				Description: description,
				Category:    category,
				PeriodYear:  period.Year,
				PeriodMonth: period.Month,
				TotalValue:  split.Value,
				PaidAmount:  decimal.Zero,
				DueDate:     input.DueDate,
			})
		}
	} else {
		parts := money.Split(input.TotalValue, len(members))
		for i, member := range members {
			memberID := member.ID
			charges = append(charges, Charge{
				ID:          uuid.NewString(),
				HouseholdID: householdID,
				MemberID:    &memberID,
				SourceKey:   batchKey,
				Description: description,
				Category:    category,
				PeriodYear:  period.Year,
				PeriodMonth: period.Month,
				TotalValue:  parts[i],
				PaidAmount:  decimal.Zero,
				DueDate:     input.DueDate,
			})
		}
	}

	err = s.repo.Transaction(ctx, func(tx Repository) error {
		return tx.CreateCharges(ctx, charges)
	})
	if err != nil {
		return nil, err
	}

	return charges, nil
}

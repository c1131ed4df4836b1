package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/assistance-service/internal/domain"
	"github.com/spec-kit/assistance-service/internal/repository"
	apperrors "github.com/spec-kit/assistance-service/pkg/util"
)

// PlanService manages subscription plans.
type PlanService struct {
	plans repository.PlanRepository
}

// PlanInput describes plan create/update payload.
type PlanInput struct {
	Name             string
	Description      *string
	IncludedServices []string
	MonthlyPrice     float64
}

// NewPlanService constructs the service.
func NewPlanService(plans repository.PlanRepository) *PlanService {
	return &PlanService{plans: plans}
}

// Create adds a plan (SUPER_ADMIN only).
func (s *PlanService) Create(ctx context.Context, actor *domain.User, input PlanInput) (*domain.Plan, error) {
	if err := requireSuperAdmin(actor); err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, apperrors.NewValidationError("plan name is required", nil)
	}
	if input.MonthlyPrice < 0 {
		return nil, apperrors.NewValidationError("monthly price must be non-negative", nil)
	}

	plan := &domain.Plan{
		Name:             strings.TrimSpace(input.Name),
		Description:      input.Description,
		IncludedServices: input.IncludedServices,
		MonthlyPrice:     input.MonthlyPrice,
		Active:           true,
	}
	if err := s.plans.Create(ctx, plan); err != nil {
		return nil, apperrors.MapError(err)
	}
	return plan, nil
}

// List returns plans; only SUPER_ADMIN sees inactive ones.
func (s *PlanService) List(ctx context.Context, actor *domain.User, includeInactive bool) ([]domain.Plan, error) {
	if actor == nil || actor.Role != domain.RoleSuperAdmin {
		includeInactive = false
	}
	plans, err := s.plans.List(ctx, includeInactive)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return plans, nil
}

// Get fetches one plan.
func (s *PlanService) Get(ctx context.Context, id string) (*domain.Plan, error) {
	plan, err := s.plans.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("plan", map[string]any{"plan_id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return plan, nil
}

// Update modifies a plan (SUPER_ADMIN only).
func (s *PlanService) Update(ctx context.Context, actor *domain.User, id string, input PlanInput) (*domain.Plan, error) {
	if err := requireSuperAdmin(actor); err != nil {
		return nil, err
	}
	plan, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.MonthlyPrice < 0 {
		return nil, apperrors.NewValidationError("monthly price must be non-negative", nil)
	}

	plan.Name = strings.TrimSpace(input.Name)
	plan.Description = input.Description
	plan.IncludedServices = input.IncludedServices
	plan.MonthlyPrice = input.MonthlyPrice
	if err := s.plans.Update(ctx, plan); err != nil {
		return nil, apperrors.MapError(err)
	}
	return plan, nil
}

// Delete soft-deletes a plan (SUPER_ADMIN only).
func (s *PlanService) Delete(ctx context.Context, actor *domain.User, id string) error {
	if err := requireSuperAdmin(actor); err != nil {
		return err
	}
	if err := s.plans.SoftDelete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("plan", map[string]any{"plan_id": id})
		}
		return apperrors.MapError(err)
	}
	return nil
}

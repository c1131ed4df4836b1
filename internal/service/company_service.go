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

// CompanyService manages client companies and their plan binding.
type CompanyService struct {
	companies repository.CompanyRepository
	plans     repository.PlanRepository
}

// CompanyInput describes company create/update payload.
type CompanyInput struct {
	LegalName string
	CUIT      string
	Email     string
	Phone     *string
	Address   *string
	PlanID    *string
}

// NewCompanyService constructs the service.
func NewCompanyService(companies repository.CompanyRepository, plans repository.PlanRepository) *CompanyService {
	return &CompanyService{companies: companies, plans: plans}
}

// Create registers a new company (SUPER_ADMIN only).
func (s *CompanyService) Create(ctx context.Context, actor *domain.User, input CompanyInput) (*domain.Company, error) {
	if err := requireSuperAdmin(actor); err != nil {
		return nil, err
	}
	if err := s.validate(ctx, input); err != nil {
		return nil, err
	}
	if existing, err := s.companies.GetByCUIT(ctx, input.CUIT); err == nil && existing != nil && existing.DeletedAt == nil {
		return nil, apperrors.NewConflict("company CUIT already registered", map[string]any{"cuit": input.CUIT})
	} else if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}

	company := &domain.Company{
		LegalName: strings.TrimSpace(input.LegalName),
		CUIT:      input.CUIT,
		Email:     strings.ToLower(strings.TrimSpace(input.Email)),
		Phone:     input.Phone,
		Address:   input.Address,
		PlanID:    input.PlanID,
		Active:    true,
	}
	if err := s.companies.Create(ctx, company); err != nil {
		return nil, apperrors.MapError(err)
	}
	return company, nil
}

// List returns companies. Non-super callers get only their own.
func (s *CompanyService) List(ctx context.Context, actor *domain.User, activeOnly bool) ([]domain.Company, error) {
	scope := ScopeFor(actor)
	if scope.IsSuper() {
		companies, err := s.companies.List(ctx, activeOnly)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		return companies, nil
	}
	if scope.IsClient() && scope.CompanyID != nil {
		company, err := s.Get(ctx, actor, *scope.CompanyID)
		if err != nil {
			return nil, err
		}
		return []domain.Company{*company}, nil
	}
	return nil, apperrors.NewForbidden("access denied")
}

// Get fetches one company, tenant scoped.
func (s *CompanyService) Get(ctx context.Context, actor *domain.User, id string) (*domain.Company, error) {
	scope := ScopeFor(actor)
	if !scope.IsSuper() {
		if !scope.IsClient() || scope.CompanyID == nil || *scope.CompanyID != id {
			return nil, apperrors.NewForbidden("access denied")
		}
	}
	company, err := s.companies.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("company", map[string]any{"company_id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return company, nil
}

// Update modifies company details. SUPER_ADMIN or the company's own admin.
func (s *CompanyService) Update(ctx context.Context, actor *domain.User, id string, input CompanyInput) (*domain.Company, error) {
	scope := ScopeFor(actor)
	if !scope.IsSuper() {
		if scope.Role != domain.RoleClientAdmin || scope.CompanyID == nil || *scope.CompanyID != id {
			return nil, apperrors.NewForbidden("access denied")
		}
	}
	if err := s.validate(ctx, input); err != nil {
		return nil, err
	}
	company, err := s.companies.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("company", map[string]any{"company_id": id})
		}
		return nil, apperrors.MapError(err)
	}

	company.LegalName = strings.TrimSpace(input.LegalName)
	company.CUIT = input.CUIT
	company.Email = strings.ToLower(strings.TrimSpace(input.Email))
	company.Phone = input.Phone
	company.Address = input.Address
	company.PlanID = input.PlanID
	if err := s.companies.Update(ctx, company); err != nil {
		return nil, apperrors.MapError(err)
	}
	return company, nil
}

// Delete soft-deletes a company (SUPER_ADMIN only).
func (s *CompanyService) Delete(ctx context.Context, actor *domain.User, id string) error {
	if err := requireSuperAdmin(actor); err != nil {
		return err
	}
	if err := s.companies.SoftDelete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("company", map[string]any{"company_id": id})
		}
		return apperrors.MapError(err)
	}
	return nil
}

func (s *CompanyService) validate(ctx context.Context, input CompanyInput) error {
	if strings.TrimSpace(input.LegalName) == "" {
		return apperrors.NewValidationError("legal name is required", nil)
	}
	if strings.TrimSpace(input.CUIT) == "" {
		return apperrors.NewValidationError("CUIT is required", nil)
	}
	if input.PlanID != nil {
		plan, err := s.plans.GetByID(ctx, *input.PlanID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.NewNotFound("plan", map[string]any{"plan_id": *input.PlanID})
			}
			return apperrors.MapError(err)
		}
		if !plan.Active {
			return apperrors.NewConflict("plan inactive", map[string]any{"plan_id": plan.ID})
		}
	}
	return nil
}

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

// VehicleService manages client fleet vehicles.
type VehicleService struct {
	vehicles  repository.VehicleRepository
	companies repository.CompanyRepository
}

// VehicleInput describes vehicle create/update payload.
type VehicleInput struct {
	Plate     string
	Brand     string
	Model     string
	Year      int
	Type      domain.VehicleType
	CompanyID string
}

// NewVehicleService constructs the service.
func NewVehicleService(vehicles repository.VehicleRepository, companies repository.CompanyRepository) *VehicleService {
	return &VehicleService{vehicles: vehicles, companies: companies}
}

// Create registers a vehicle under a company.
func (s *VehicleService) Create(ctx context.Context, actor *domain.User, input VehicleInput) (*domain.Vehicle, error) {
	scope := ScopeFor(actor)
	companyID := input.CompanyID
	if scope.IsClient() {
		if scope.CompanyID == nil {
			return nil, apperrors.NewForbidden("access denied")
		}
		companyID = *scope.CompanyID
	} else if !scope.IsSuper() {
		return nil, apperrors.NewForbidden("access denied")
	}

	plate := strings.ToUpper(strings.TrimSpace(input.Plate))
	if plate == "" {
		return nil, apperrors.NewValidationError("plate is required", nil)
	}
	if !domain.ValidVehicleType(input.Type) {
		return nil, apperrors.NewValidationError("unknown vehicle type", map[string]any{"type": input.Type})
	}

	company, err := s.companies.GetByID(ctx, companyID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("company", map[string]any{"company_id": companyID})
		}
		return nil, apperrors.MapError(err)
	}
	if !company.Active {
		return nil, apperrors.NewConflict("company inactive", map[string]any{"company_id": companyID})
	}

	if existing, err := s.vehicles.GetByPlate(ctx, plate); err == nil && existing != nil {
		return nil, apperrors.NewConflict("plate already registered", map[string]any{"plate": plate})
	} else if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}

	vehicle := &domain.Vehicle{
		Plate:     plate,
		Brand:     input.Brand,
		Model:     input.Model,
		Year:      input.Year,
		Type:      input.Type,
		CompanyID: company.ID,
	}
	if err := s.vehicles.Create(ctx, vehicle); err != nil {
		return nil, apperrors.MapError(err)
	}
	return vehicle, nil
}

// List returns the caller's fleet; SUPER_ADMIN sees every vehicle.
func (s *VehicleService) List(ctx context.Context, actor *domain.User) ([]domain.Vehicle, error) {
	scope := ScopeFor(actor)
	if scope.IsSuper() {
		vehicles, err := s.vehicles.ListAll(ctx)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		return vehicles, nil
	}
	if scope.IsClient() && scope.CompanyID != nil {
		vehicles, err := s.vehicles.ListByCompany(ctx, *scope.CompanyID)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		return vehicles, nil
	}
	return nil, apperrors.NewForbidden("access denied")
}

// Get fetches one vehicle, tenant scoped.
func (s *VehicleService) Get(ctx context.Context, actor *domain.User, id string) (*domain.Vehicle, error) {
	vehicle, err := s.vehicles.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("vehicle", map[string]any{"vehicle_id": id})
		}
		return nil, apperrors.MapError(err)
	}
	scope := ScopeFor(actor)
	if !scope.IsSuper() {
		if !scope.IsClient() || scope.CompanyID == nil || *scope.CompanyID != vehicle.CompanyID {
			return nil, apperrors.NewForbidden("access denied")
		}
	}
	return vehicle, nil
}

// Update modifies a vehicle owned by the caller's company.
func (s *VehicleService) Update(ctx context.Context, actor *domain.User, id string, input VehicleInput) (*domain.Vehicle, error) {
	vehicle, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	scope := ScopeFor(actor)
	if scope.IsClient() && scope.Role != domain.RoleClientAdmin {
		return nil, apperrors.NewForbidden("client admin role required")
	}

	plate := strings.ToUpper(strings.TrimSpace(input.Plate))
	if plate != vehicle.Plate {
		if existing, err := s.vehicles.GetByPlate(ctx, plate); err == nil && existing != nil && existing.ID != vehicle.ID {
			return nil, apperrors.NewConflict("plate already registered", map[string]any{"plate": plate})
		} else if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.MapError(err)
		}
	}
	if !domain.ValidVehicleType(input.Type) {
		return nil, apperrors.NewValidationError("unknown vehicle type", map[string]any{"type": input.Type})
	}

	vehicle.Plate = plate
	vehicle.Brand = input.Brand
	vehicle.Model = input.Model
	vehicle.Year = input.Year
	vehicle.Type = input.Type
	if err := s.vehicles.Update(ctx, vehicle); err != nil {
		return nil, apperrors.MapError(err)
	}
	return vehicle, nil
}

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

// ResourceService manages provider assets (tow trucks, assistance vans).
type ResourceService struct {
	resources repository.ResourceRepository
	providers repository.ProviderRepository
}

// ResourceInput describes resource create/update payload.
type ResourceInput struct {
	Plate      string
	Brand      string
	Model      string
	Year       int
	Type       domain.ResourceType
	CapacityKg *int
	Status     domain.ResourceStatus
	ProviderID string
}

// NewResourceService constructs the service.
func NewResourceService(resources repository.ResourceRepository, providers repository.ProviderRepository) *ResourceService {
	return &ResourceService{resources: resources, providers: providers}
}

func (s *ResourceService) resolveProvider(actor *domain.User, requested string) (string, error) {
	scope := ScopeFor(actor)
	if scope.IsSuper() {
		if requested == "" {
			return "", apperrors.NewValidationError("provider id is required", nil)
		}
		return requested, nil
	}
	if scope.Role == domain.RoleProviderAdmin && scope.ProviderID != nil {
		return *scope.ProviderID, nil
	}
	return "", apperrors.NewForbidden("provider admin role required")
}

// Create registers a resource under a provider.
func (s *ResourceService) Create(ctx context.Context, actor *domain.User, input ResourceInput) (*domain.ProviderResource, error) {
	providerID, err := s.resolveProvider(actor, input.ProviderID)
	if err != nil {
		return nil, err
	}
	if !domain.ValidResourceType(input.Type) {
		return nil, apperrors.NewValidationError("unknown resource type", map[string]any{"type": input.Type})
	}
	if input.Status == "" {
		input.Status = domain.ResourceStatusActive
	}
	if !domain.ValidResourceStatus(input.Status) {
		return nil, apperrors.NewValidationError("unknown resource status", map[string]any{"status": input.Status})
	}

	provider, err := s.providers.GetByID(ctx, providerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("provider", map[string]any{"provider_id": providerID})
		}
		return nil, apperrors.MapError(err)
	}
	if !provider.Active {
		return nil, apperrors.NewConflict("provider inactive", map[string]any{"provider_id": providerID})
	}

	resource := &domain.ProviderResource{
		Plate:      strings.ToUpper(strings.TrimSpace(input.Plate)),
		Brand:      input.Brand,
		Model:      input.Model,
		Year:       input.Year,
		Type:       input.Type,
		CapacityKg: input.CapacityKg,
		Status:     input.Status,
		ProviderID: provider.ID,
		Active:     true,
	}
	if err := s.resources.Create(ctx, resource); err != nil {
		return nil, apperrors.MapError(err)
	}
	return resource, nil
}

// ListByProvider returns a provider's resources.
func (s *ResourceService) ListByProvider(ctx context.Context, actor *domain.User, providerID string) ([]domain.ProviderResource, error) {
	scope := ScopeFor(actor)
	if !scope.IsSuper() {
		if !scope.IsProvider() || scope.ProviderID == nil || *scope.ProviderID != providerID {
			return nil, apperrors.NewForbidden("access denied")
		}
	}
	resources, err := s.resources.ListByProvider(ctx, providerID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return resources, nil
}

// Get fetches one resource, tenant scoped.
func (s *ResourceService) Get(ctx context.Context, actor *domain.User, id string) (*domain.ProviderResource, error) {
	resource, err := s.resources.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("resource", map[string]any{"resource_id": id})
		}
		return nil, apperrors.MapError(err)
	}
	scope := ScopeFor(actor)
	if !scope.IsSuper() {
		if !scope.IsProvider() || scope.ProviderID == nil || *scope.ProviderID != resource.ProviderID {
			return nil, apperrors.NewForbidden("access denied")
		}
	}
	return resource, nil
}

// Update modifies a resource.
func (s *ResourceService) Update(ctx context.Context, actor *domain.User, id string, input ResourceInput) (*domain.ProviderResource, error) {
	resource, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	scope := ScopeFor(actor)
	if scope.IsProvider() && scope.Role != domain.RoleProviderAdmin {
		return nil, apperrors.NewForbidden("provider admin role required")
	}
	if !domain.ValidResourceType(input.Type) {
		return nil, apperrors.NewValidationError("unknown resource type", map[string]any{"type": input.Type})
	}
	if !domain.ValidResourceStatus(input.Status) {
		return nil, apperrors.NewValidationError("unknown resource status", map[string]any{"status": input.Status})
	}

	resource.Plate = strings.ToUpper(strings.TrimSpace(input.Plate))
	resource.Brand = input.Brand
	resource.Model = input.Model
	resource.Year = input.Year
	resource.Type = input.Type
	resource.CapacityKg = input.CapacityKg
	resource.Status = input.Status
	if err := s.resources.Update(ctx, resource); err != nil {
		return nil, apperrors.MapError(err)
	}
	return resource, nil
}

// Deactivate marks a resource out of rotation without deleting it.
func (s *ResourceService) Deactivate(ctx context.Context, actor *domain.User, id string) (*domain.ProviderResource, error) {
	resource, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	scope := ScopeFor(actor)
	if scope.IsProvider() && scope.Role != domain.RoleProviderAdmin {
		return nil, apperrors.NewForbidden("provider admin role required")
	}
	resource.Active = false
	resource.Status = domain.ResourceStatusOutOfService
	if err := s.resources.Update(ctx, resource); err != nil {
		return nil, apperrors.MapError(err)
	}
	return resource, nil
}

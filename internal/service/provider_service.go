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

// ProviderService manages assistance providers and their statistics.
type ProviderService struct {
	providers repository.ProviderRepository
	requests  repository.RequestRepository
}

// ProviderInput describes provider create/update payload.
type ProviderInput struct {
	LegalName       string
	CUIT            string
	Email           string
	Phone           *string
	Address         *string
	ServicesOffered []string
}

// NewProviderService constructs the service.
func NewProviderService(providers repository.ProviderRepository, requests repository.RequestRepository) *ProviderService {
	return &ProviderService{providers: providers, requests: requests}
}

// Create registers a new provider (SUPER_ADMIN only).
func (s *ProviderService) Create(ctx context.Context, actor *domain.User, input ProviderInput) (*domain.Provider, error) {
	if err := requireSuperAdmin(actor); err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.LegalName) == "" || strings.TrimSpace(input.CUIT) == "" {
		return nil, apperrors.NewValidationError("legal name and CUIT are required", nil)
	}
	if existing, err := s.providers.GetByCUIT(ctx, input.CUIT); err == nil && existing != nil && existing.DeletedAt == nil {
		return nil, apperrors.NewConflict("provider CUIT already registered", map[string]any{"cuit": input.CUIT})
	} else if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}

	provider := &domain.Provider{
		LegalName:       strings.TrimSpace(input.LegalName),
		CUIT:            input.CUIT,
		Email:           strings.ToLower(strings.TrimSpace(input.Email)),
		Phone:           input.Phone,
		Address:         input.Address,
		ServicesOffered: input.ServicesOffered,
		Active:          true,
	}
	if err := s.providers.Create(ctx, provider); err != nil {
		return nil, apperrors.MapError(err)
	}
	return provider, nil
}

// List returns providers. Client callers see active providers only.
func (s *ProviderService) List(ctx context.Context, actor *domain.User, activeOnly bool) ([]domain.Provider, error) {
	scope := ScopeFor(actor)
	if !scope.IsSuper() {
		activeOnly = true
	}
	providers, err := s.providers.List(ctx, activeOnly)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if scope.IsProvider() && scope.ProviderID != nil {
		for _, provider := range providers {
			if provider.ID == *scope.ProviderID {
				return []domain.Provider{provider}, nil
			}
		}
		return []domain.Provider{}, nil
	}
	return providers, nil
}

// Get fetches one provider.
func (s *ProviderService) Get(ctx context.Context, actor *domain.User, id string) (*domain.Provider, error) {
	scope := ScopeFor(actor)
	if scope.IsProvider() {
		if scope.ProviderID == nil || *scope.ProviderID != id {
			return nil, apperrors.NewForbidden("access denied")
		}
	}
	provider, err := s.providers.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("provider", map[string]any{"provider_id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return provider, nil
}

// Update modifies provider details. SUPER_ADMIN or the provider's own admin.
func (s *ProviderService) Update(ctx context.Context, actor *domain.User, id string, input ProviderInput) (*domain.Provider, error) {
	scope := ScopeFor(actor)
	if !scope.IsSuper() {
		if scope.Role != domain.RoleProviderAdmin || scope.ProviderID == nil || *scope.ProviderID != id {
			return nil, apperrors.NewForbidden("access denied")
		}
	}
	provider, err := s.providers.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("provider", map[string]any{"provider_id": id})
		}
		return nil, apperrors.MapError(err)
	}

	provider.LegalName = strings.TrimSpace(input.LegalName)
	provider.CUIT = input.CUIT
	provider.Email = strings.ToLower(strings.TrimSpace(input.Email))
	provider.Phone = input.Phone
	provider.Address = input.Address
	provider.ServicesOffered = input.ServicesOffered
	if err := s.providers.Update(ctx, provider); err != nil {
		return nil, apperrors.MapError(err)
	}
	return provider, nil
}

// Delete soft-deletes a provider (SUPER_ADMIN only).
func (s *ProviderService) Delete(ctx context.Context, actor *domain.User, id string) error {
	if err := requireSuperAdmin(actor); err != nil {
		return err
	}
	if err := s.providers.SoftDelete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("provider", map[string]any{"provider_id": id})
		}
		return apperrors.MapError(err)
	}
	return nil
}

// Stats aggregates dispatch outcomes for a provider.
func (s *ProviderService) Stats(ctx context.Context, actor *domain.User, id string) (*domain.ProviderStats, error) {
	if _, err := s.Get(ctx, actor, id); err != nil {
		return nil, err
	}

	byStatus, err := s.requests.StatusCountsByProvider(ctx, id)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	revenue, err := s.requests.RevenueByProvider(ctx, id)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	stats := &domain.ProviderStats{
		TotalRevenue: revenue,
		ByStatus:     byStatus,
	}
	for status, count := range byStatus {
		stats.TotalRequests += count
		if status == domain.RequestStatusFinalized {
			stats.FinalizedRequests = count
		}
	}
	if stats.TotalRequests > 0 {
		stats.CompletionRate = float64(stats.FinalizedRequests) / float64(stats.TotalRequests)
	}
	return stats, nil
}

package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/assistance-service/internal/auth"
	"github.com/spec-kit/assistance-service/internal/config"
	"github.com/spec-kit/assistance-service/internal/domain"
	"github.com/spec-kit/assistance-service/internal/persistence"
	"github.com/spec-kit/assistance-service/internal/repository"
	apperrors "github.com/spec-kit/assistance-service/pkg/util"
)

// UserService manages platform accounts, operator availability and location
// heartbeats.
type UserService struct {
	users      repository.UserRepository
	tx         repository.TxManager
	locations  *persistence.LocationCache
	bcryptCost int
}

// UserDependencies bundles collaborators for the user service.
type UserDependencies struct {
	UserRepo      repository.UserRepository
	TxManager     repository.TxManager
	LocationCache *persistence.LocationCache
}

// UserCreateInput describes an admin-created account.
type UserCreateInput struct {
	Email      string
	Password   string
	FirstName  string
	LastName   string
	Phone      *string
	Role       domain.Role
	CompanyID  *string
	ProviderID *string
}

// UserUpdateInput describes mutable account fields.
type UserUpdateInput struct {
	FirstName string
	LastName  string
	Phone     *string
	Active    bool
}

// UserListFilters define listing parameters.
type UserListFilters struct {
	Role       *domain.Role
	CompanyID  *string
	ProviderID *string
	Active     *bool
	Limit      int
	Offset     int
}

// NewUserService constructs the service.
func NewUserService(cfg config.Config, deps UserDependencies) *UserService {
	return &UserService{
		users:      deps.UserRepo,
		tx:         deps.TxManager,
		locations:  deps.LocationCache,
		bcryptCost: cfg.Auth.BcryptCost,
	}
}

func requireSuperAdmin(actor *domain.User) error {
	if actor == nil || actor.Role != domain.RoleSuperAdmin {
		return apperrors.NewForbidden("super admin role required")
	}
	return nil
}

// Create adds a new account (SUPER_ADMIN only).
func (s *UserService) Create(ctx context.Context, actor *domain.User, input UserCreateInput) (*domain.User, error) {
	if err := requireSuperAdmin(actor); err != nil {
		return nil, err
	}
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if !domain.ValidRole(input.Role) {
		return nil, apperrors.NewValidationError("unknown role", map[string]any{"role": input.Role})
	}
	if existing, err := s.users.GetByEmail(ctx, email); err == nil && existing != nil {
		return nil, apperrors.NewConflict("email already registered", map[string]any{"email": email})
	} else if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	user := &domain.User{
		Email:        email,
		PasswordHash: hash,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Phone:        input.Phone,
		Role:         input.Role,
		CompanyID:    input.CompanyID,
		ProviderID:   input.ProviderID,
		Availability: domain.AvailabilityAvailable,
		Active:       true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// List returns accounts matching the filters (SUPER_ADMIN only).
func (s *UserService) List(ctx context.Context, actor *domain.User, filters UserListFilters) ([]domain.User, error) {
	if err := requireSuperAdmin(actor); err != nil {
		return nil, err
	}
	repoFilter := repository.UserFilter{
		Role:       filters.Role,
		CompanyID:  filters.CompanyID,
		ProviderID: filters.ProviderID,
		Active:     filters.Active,
		Limit:      filters.Limit,
		Offset:     filters.Offset,
	}
	users, err := s.users.List(ctx, repoFilter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return users, nil
}

// Get fetches one account. Non-admin callers may only read themselves.
func (s *UserService) Get(ctx context.Context, actor *domain.User, id string) (*domain.User, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	if actor.Role != domain.RoleSuperAdmin && actor.ID != id {
		return nil, apperrors.NewForbidden("access denied")
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", map[string]any{"user_id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// Update modifies account details (SUPER_ADMIN only).
func (s *UserService) Update(ctx context.Context, actor *domain.User, id string, input UserUpdateInput) (*domain.User, error) {
	if err := requireSuperAdmin(actor); err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", map[string]any{"user_id": id})
		}
		return nil, apperrors.MapError(err)
	}
	user.FirstName = input.FirstName
	user.LastName = input.LastName
	user.Phone = input.Phone
	user.Active = input.Active
	if err := s.users.Update(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// SetOwnAvailability lets a provider operator flip their dispatch
// availability. The row lock serializes against a concurrent dispatch reading
// the same operator.
func (s *UserService) SetOwnAvailability(ctx context.Context, actor *domain.User, availability domain.Availability) (*domain.User, error) {
	if actor == nil || actor.Role != domain.RoleProviderOperator {
		return nil, apperrors.NewForbidden("only provider operators have availability")
	}
	if !domain.ValidAvailability(availability) {
		return nil, apperrors.NewValidationError("unknown availability state", map[string]any{"availability": availability})
	}

	var updated *domain.User
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		user, err := s.users.GetByIDForUpdate(txCtx, actor.ID)
		if err != nil {
			return apperrors.MapError(err)
		}
		user.Availability = availability
		if err := s.users.SetAvailability(txCtx, user.ID, availability); err != nil {
			return apperrors.MapError(err)
		}
		updated = user
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// ReportLocation records an operator heartbeat in the location cache.
func (s *UserService) ReportLocation(ctx context.Context, actor *domain.User, lat, lng float64) error {
	if actor == nil || actor.Role != domain.RoleProviderOperator {
		return apperrors.NewForbidden("only provider operators report location")
	}
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return apperrors.NewValidationError("coordinates out of range", map[string]any{"lat": lat, "lng": lng})
	}
	loc := domain.OperatorLocation{Latitude: lat, Longitude: lng, ReportedAt: time.Now()}
	if err := s.locations.Store(ctx, actor.ID, loc); err != nil {
		return apperrors.NewInternalError(err)
	}
	return nil
}

// LastKnownLocation returns an operator's cached position (SUPER_ADMIN or the
// operator's own provider admin).
func (s *UserService) LastKnownLocation(ctx context.Context, actor *domain.User, operatorID string) (*domain.OperatorLocation, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	operator, err := s.users.GetByID(ctx, operatorID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", map[string]any{"user_id": operatorID})
		}
		return nil, apperrors.MapError(err)
	}
	allowed := actor.Role == domain.RoleSuperAdmin || actor.ID == operator.ID
	if !allowed && actor.Role == domain.RoleProviderAdmin {
		allowed = actor.ProviderID != nil && operator.ProviderID != nil && *actor.ProviderID == *operator.ProviderID
	}
	if !allowed {
		return nil, apperrors.NewForbidden("access denied")
	}

	loc, err := s.locations.Get(ctx, operator.ID)
	if err != nil {
		if errors.Is(err, persistence.ErrLocationUnknown) {
			return nil, apperrors.NewNotFound("operator location", map[string]any{"user_id": operatorID})
		}
		return nil, apperrors.NewInternalError(err)
	}
	return loc, nil
}

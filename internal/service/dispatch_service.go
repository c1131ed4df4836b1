package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/assistance-service/internal/domain"
	"github.com/spec-kit/assistance-service/internal/events"
	"github.com/spec-kit/assistance-service/internal/repository"
	apperrors "github.com/spec-kit/assistance-service/pkg/util"
)

// OperatorSelector picks one operator from a non-empty candidate list. The
// candidates arrive in id order, so the default selection is deterministic.
type OperatorSelector func(candidates []domain.User) domain.User

// FirstAvailable is the default selection policy.
func FirstAvailable(candidates []domain.User) domain.User {
	return candidates[0]
}

// DispatchService binds pending requests to a provider, an optional resource
// and an available operator.
type DispatchService struct {
	requests   repository.RequestRepository
	vehicles   repository.VehicleRepository
	providers  repository.ProviderRepository
	resources  repository.ResourceRepository
	users      repository.UserRepository
	tx         repository.TxManager
	dispatcher events.Dispatcher
	selector   OperatorSelector
}

// DispatchDependencies bundles collaborators for the dispatch service.
type DispatchDependencies struct {
	RequestRepo  repository.RequestRepository
	VehicleRepo  repository.VehicleRepository
	ProviderRepo repository.ProviderRepository
	ResourceRepo repository.ResourceRepository
	UserRepo     repository.UserRepository
	TxManager    repository.TxManager
	Dispatcher   events.Dispatcher
	// Selector overrides the operator selection policy; nil means
	// FirstAvailable.
	Selector OperatorSelector
}

// NewDispatchService constructs the service.
func NewDispatchService(deps DispatchDependencies) *DispatchService {
	selector := deps.Selector
	if selector == nil {
		selector = FirstAvailable
	}
	return &DispatchService{
		requests:   deps.RequestRepo,
		vehicles:   deps.VehicleRepo,
		providers:  deps.ProviderRepo,
		resources:  deps.ResourceRepo,
		users:      deps.UserRepo,
		tx:         deps.TxManager,
		dispatcher: deps.Dispatcher,
		selector:   selector,
	}
}

// Assign drives a PENDIENTE request to ASIGNADO. The request update and the
// operator's move to OCUPADO commit together or not at all.
func (s *DispatchService) Assign(ctx context.Context, actor *domain.User, requestID, providerID string, resourceID *string) (*domain.AssistanceRequest, error) {
	if actor == nil || actor.Role != domain.RoleSuperAdmin {
		return nil, apperrors.NewForbidden("assignment is an administrative action")
	}

	var updated *domain.AssistanceRequest
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		req, err := s.requests.GetByIDForUpdate(txCtx, requestID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.NewNotFound("request", map[string]any{"request_id": requestID})
			}
			return apperrors.MapError(err)
		}
		if req.Status != domain.RequestStatusPending {
			return apperrors.NewInvalidState(
				"cannot assign from state "+string(req.Status),
				map[string]any{"from": req.Status, "to": domain.RequestStatusAssigned})
		}

		vehicle, err := s.vehicles.GetByID(txCtx, req.VehicleID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.NewNotFound("vehicle", map[string]any{"vehicle_id": req.VehicleID})
			}
			return apperrors.MapError(err)
		}

		provider, err := s.providers.GetByID(txCtx, providerID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.NewNotFound("provider", map[string]any{"provider_id": providerID})
			}
			return apperrors.MapError(err)
		}
		if !provider.Active {
			return apperrors.NewNotFound("provider", map[string]any{"provider_id": providerID})
		}

		if resourceID != nil {
			resource, err := s.resources.GetByID(txCtx, *resourceID)
			if err != nil {
				if errors.Is(err, pgx.ErrNoRows) {
					return apperrors.NewNotFound("resource", map[string]any{"resource_id": *resourceID})
				}
				return apperrors.MapError(err)
			}
			if resource.ProviderID != provider.ID {
				return apperrors.NewValidationError("resource belongs to another provider",
					map[string]any{"resource_id": resource.ID, "provider_id": providerID})
			}
			if !resource.Active || resource.Status != domain.ResourceStatusActive {
				return apperrors.NewValidationError("resource is not active",
					map[string]any{"resource_id": resource.ID, "status": resource.Status})
			}
			if !ResourceCompatible(req.Type, vehicle.Type, resource.Type) {
				return apperrors.NewValidationError("resource type incompatible with vehicle",
					map[string]any{"vehicle_type": vehicle.Type, "resource_type": resource.Type})
			}
		}

		// Row locks on the candidate operators keep two concurrent dispatches
		// from booking the same one.
		candidates, err := s.users.ListAvailableOperators(txCtx, provider.ID)
		if err != nil {
			return apperrors.MapError(err)
		}
		if len(candidates) == 0 {
			return apperrors.NewConflict("no available operators for provider",
				map[string]any{"provider_id": provider.ID})
		}
		operator := s.selector(candidates)

		now := time.Now()
		req.Status = domain.RequestStatusAssigned
		req.ProviderID = &provider.ID
		req.ResourceID = resourceID
		req.OperatorID = &operator.ID
		req.AssignedAt = &now
		if err := s.requests.Update(txCtx, req); err != nil {
			return apperrors.MapError(err)
		}
		if err := s.users.SetAvailability(txCtx, operator.ID, domain.AvailabilityBusy); err != nil {
			return apperrors.MapError(err)
		}

		s.publishAssignedEvent(txCtx, actor, req)
		updated = req
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// ListCompatibleResources returns active resources of active providers that
// could serve the request per the compatibility rule.
func (s *DispatchService) ListCompatibleResources(ctx context.Context, actor *domain.User, requestID string) ([]domain.ProviderResource, error) {
	if actor == nil || actor.Role != domain.RoleSuperAdmin {
		return nil, apperrors.NewForbidden("assignment is an administrative action")
	}

	req, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("request", map[string]any{"request_id": requestID})
		}
		return nil, apperrors.MapError(err)
	}
	vehicle, err := s.vehicles.GetByID(ctx, req.VehicleID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("vehicle", map[string]any{"vehicle_id": req.VehicleID})
		}
		return nil, apperrors.MapError(err)
	}

	all, err := s.resources.ListActiveOfActiveProviders(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	compatible := make([]domain.ProviderResource, 0, len(all))
	for _, resource := range all {
		if ResourceCompatible(req.Type, vehicle.Type, resource.Type) {
			compatible = append(compatible, resource)
		}
	}
	return compatible, nil
}

func (s *DispatchService) publishAssignedEvent(ctx context.Context, actor *domain.User, req *domain.AssistanceRequest) {
	if s.dispatcher == nil || req.ProviderID == nil || req.OperatorID == nil {
		return
	}
	event := events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventRequestAssigned,
		RequestID: req.ID,
		Actor:     actorFor(actor),
		Timestamp: time.Now(),
		Payload: events.RequestAssignedPayload{
			ProviderID: *req.ProviderID,
			OperatorID: *req.OperatorID,
			ResourceID: req.ResourceID,
		},
	}
	_ = s.dispatcher.Publish(ctx, event)
}

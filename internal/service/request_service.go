package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/assistance-service/internal/domain"
	"github.com/spec-kit/assistance-service/internal/events"
	"github.com/spec-kit/assistance-service/internal/repository"
	apperrors "github.com/spec-kit/assistance-service/pkg/util"
)

// RequestService coordinates assistance request workflows.
type RequestService struct {
	requests   repository.RequestRepository
	vehicles   repository.VehicleRepository
	providers  repository.ProviderRepository
	users      repository.UserRepository
	tx         repository.TxManager
	dispatcher events.Dispatcher

	freeOperatorOnCancel bool
}

// RequestDependencies bundles collaborators for the request service.
type RequestDependencies struct {
	RequestRepo          repository.RequestRepository
	VehicleRepo          repository.VehicleRepository
	ProviderRepo         repository.ProviderRepository
	UserRepo             repository.UserRepository
	TxManager            repository.TxManager
	Dispatcher           events.Dispatcher
	FreeOperatorOnCancel bool
}

// RequestCreateInput describes request creation payload.
type RequestCreateInput struct {
	Type         domain.AssistanceType
	Priority     domain.RequestPriority
	VehicleID    string
	Latitude     float64
	Longitude    float64
	Address      string
	Observations *string
	PhotoRefs    []string
}

// RequestListFilter describes listing filters before tenant scoping.
type RequestListFilter struct {
	Status     *domain.RequestStatus
	Type       *domain.AssistanceType
	CompanyID  *string
	ProviderID *string
	VehicleID  *string
	Page       int
	PageSize   int
}

// RequestPage is a paginated listing result.
type RequestPage struct {
	Items    []domain.AssistanceRequest
	Total    int64
	Page     int
	PageSize int
}

// NewRequestService constructs the service.
func NewRequestService(deps RequestDependencies) *RequestService {
	return &RequestService{
		requests:             deps.RequestRepo,
		vehicles:             deps.VehicleRepo,
		providers:            deps.ProviderRepo,
		users:                deps.UserRepo,
		tx:                   deps.TxManager,
		dispatcher:           deps.Dispatcher,
		freeOperatorOnCancel: deps.FreeOperatorOnCancel,
	}
}

// Create registers a new assistance request in PENDIENTE state.
func (s *RequestService) Create(ctx context.Context, actor *domain.User, input RequestCreateInput) (*domain.AssistanceRequest, error) {
	scope := ScopeFor(actor)
	if !scope.IsSuper() && !scope.IsClient() {
		return nil, apperrors.NewForbidden("only client accounts can create requests")
	}

	if !domain.ValidAssistanceType(input.Type) {
		return nil, apperrors.NewValidationError("unknown assistance type", map[string]any{"type": input.Type})
	}
	if input.Priority == "" {
		input.Priority = domain.RequestPriorityMedium
	}
	if !domain.ValidRequestPriority(input.Priority) {
		return nil, apperrors.NewValidationError("unknown priority", map[string]any{"priority": input.Priority})
	}
	if input.Latitude < -90 || input.Latitude > 90 {
		return nil, apperrors.NewValidationError("latitude out of range", map[string]any{"lat": input.Latitude})
	}
	if input.Longitude < -180 || input.Longitude > 180 {
		return nil, apperrors.NewValidationError("longitude out of range", map[string]any{"lng": input.Longitude})
	}
	address := strings.TrimSpace(input.Address)
	if address == "" {
		return nil, apperrors.NewValidationError("address is required", nil)
	}

	vehicle, err := s.vehicles.GetByID(ctx, input.VehicleID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("vehicle", map[string]any{"vehicle_id": input.VehicleID})
		}
		return nil, apperrors.MapError(err)
	}
	if !scope.IsSuper() {
		if scope.CompanyID == nil || *scope.CompanyID != vehicle.CompanyID {
			return nil, apperrors.NewForbidden("vehicle belongs to another company")
		}
	}

	req := &domain.AssistanceRequest{
		Type:          input.Type,
		Priority:      input.Priority,
		Status:        domain.RequestStatusPending,
		Latitude:      input.Latitude,
		Longitude:     input.Longitude,
		Address:       address,
		Observations:  input.Observations,
		PhotoRefs:     input.PhotoRefs,
		VehicleID:     vehicle.ID,
		CompanyID:     vehicle.CompanyID,
		RequestedByID: actor.ID,
	}
	if err := s.requests.Create(ctx, req); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:      events.EventRequestCreated,
		RequestID: req.ID,
		Actor:     actorFor(actor),
		Payload: events.RequestCreatedPayload{
			CompanyID: req.CompanyID,
			VehicleID: req.VehicleID,
			Type:      req.Type,
			Priority:  req.Priority,
		},
	})
	return req, nil
}

// List returns requests visible to the caller, page by page.
func (s *RequestService) List(ctx context.Context, actor *domain.User, filter RequestListFilter) (*RequestPage, error) {
	scope := ScopeFor(actor)
	if !scope.IsSuper() && !scope.IsClient() && !scope.IsProvider() {
		return nil, apperrors.NewForbidden("access denied")
	}

	page := filter.Page
	if page <= 0 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = 10
	}
	if pageSize > 100 {
		pageSize = 100
	}

	repoFilter := repository.RequestFilter{
		Status:     filter.Status,
		Type:       filter.Type,
		CompanyID:  filter.CompanyID,
		ProviderID: filter.ProviderID,
		VehicleID:  filter.VehicleID,
		Limit:      pageSize,
		Offset:     (page - 1) * pageSize,
	}
	scope.ApplyToFilter(&repoFilter)

	items, err := s.requests.ListWithFilter(ctx, repoFilter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	total, err := s.requests.CountWithFilter(ctx, repoFilter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if items == nil {
		items = []domain.AssistanceRequest{}
	}
	return &RequestPage{Items: items, Total: total, Page: page, PageSize: pageSize}, nil
}

// Get fetches one request, enforcing tenant visibility.
func (s *RequestService) Get(ctx context.Context, actor *domain.User, id string) (*domain.AssistanceRequest, error) {
	req, err := s.requests.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("request", map[string]any{"request_id": id})
		}
		return nil, apperrors.MapError(err)
	}
	if !ScopeFor(actor).CanAccessRequest(req) {
		return nil, apperrors.NewForbidden("access denied")
	}
	return req, nil
}

// ChangeState drives a request along the generic lifecycle edges. Entering
// ASIGNADO goes through the dispatch engine and entering FINALIZADO through
// Finalize; both are rejected here.
func (s *RequestService) ChangeState(ctx context.Context, actor *domain.User, id string, next domain.RequestStatus) (*domain.AssistanceRequest, error) {
	switch next {
	case domain.RequestStatusAssigned:
		return nil, apperrors.NewInvalidState("assignment must go through dispatch", nil)
	case domain.RequestStatusFinalized:
		return nil, apperrors.NewInvalidState("finalization requires a final cost", nil)
	case domain.RequestStatusCancelled:
		return nil, apperrors.NewValidationError("cancellation requires a reason", nil)
	}

	var updated *domain.AssistanceRequest
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		req, err := s.lockAccessible(txCtx, actor, id)
		if err != nil {
			return err
		}
		if !domain.CanTransition(req.Status, next) {
			return transitionError(req.Status, next)
		}

		oldStatus := req.Status
		req.Status = next
		if next == domain.RequestStatusEnRoute && req.StartedAt == nil {
			now := time.Now()
			req.StartedAt = &now
			if req.OperatorID == nil && actor.Role == domain.RoleProviderOperator {
				req.OperatorID = &actor.ID
			}
		}
		if err := s.requests.Update(txCtx, req); err != nil {
			return apperrors.MapError(err)
		}

		s.publishEvent(txCtx, events.Event{
			Type:      events.EventRequestStatusChanged,
			RequestID: req.ID,
			Actor:     actorFor(actor),
			Payload: events.RequestStatusChangedPayload{
				OldStatus: oldStatus,
				NewStatus: next,
			},
		})
		updated = req
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Finalize closes a request with its final cost.
func (s *RequestService) Finalize(ctx context.Context, actor *domain.User, id string, finalCost float64, observations *string) (*domain.AssistanceRequest, error) {
	if finalCost < 0 {
		return nil, apperrors.NewValidationError("final cost must be non-negative", map[string]any{"final_cost": finalCost})
	}

	var updated *domain.AssistanceRequest
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		req, err := s.lockAccessible(txCtx, actor, id)
		if err != nil {
			return err
		}
		if !domain.CanTransition(req.Status, domain.RequestStatusFinalized) {
			return transitionError(req.Status, domain.RequestStatusFinalized)
		}

		oldStatus := req.Status
		now := time.Now()
		req.Status = domain.RequestStatusFinalized
		req.FinalCost = &finalCost
		req.FinalizedAt = &now
		if observations != nil {
			req.Observations = observations
		}
		if err := s.requests.Update(txCtx, req); err != nil {
			return apperrors.MapError(err)
		}

		s.publishEvent(txCtx, events.Event{
			Type:      events.EventRequestStatusChanged,
			RequestID: req.ID,
			Actor:     actorFor(actor),
			Payload: events.RequestStatusChangedPayload{
				OldStatus: oldStatus,
				NewStatus: req.Status,
			},
		})
		s.publishEvent(txCtx, events.Event{
			Type:      events.EventRequestFinalized,
			RequestID: req.ID,
			Actor:     actorFor(actor),
			Payload:   events.RequestFinalizedPayload{FinalCost: finalCost},
		})
		updated = req
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Cancel aborts a request still in an early state. Freeing the bound operator
// is opt-in via configuration; the default keeps them OCUPADO until their own
// availability update.
func (s *RequestService) Cancel(ctx context.Context, actor *domain.User, id, reason string) (*domain.AssistanceRequest, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, apperrors.NewValidationError("cancellation reason is required", nil)
	}

	var updated *domain.AssistanceRequest
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		req, err := s.lockAccessible(txCtx, actor, id)
		if err != nil {
			return err
		}
		if !domain.Cancellable(req.Status) {
			return transitionError(req.Status, domain.RequestStatusCancelled)
		}

		oldStatus := req.Status
		now := time.Now()
		req.Status = domain.RequestStatusCancelled
		req.CancelReason = &reason
		req.CancelledAt = &now
		if err := s.requests.Update(txCtx, req); err != nil {
			return apperrors.MapError(err)
		}

		freed := false
		if s.freeOperatorOnCancel && req.OperatorID != nil {
			if err := s.users.SetAvailability(txCtx, *req.OperatorID, domain.AvailabilityAvailable); err != nil {
				return apperrors.MapError(err)
			}
			freed = true
		}

		s.publishEvent(txCtx, events.Event{
			Type:      events.EventRequestCancelled,
			RequestID: req.ID,
			Actor:     actorFor(actor),
			Payload: events.RequestCancelledPayload{
				Reason:        reason,
				FromStatus:    oldStatus,
				OperatorID:    req.OperatorID,
				OperatorFreed: freed,
			},
		})
		updated = req
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Rate records a client rating on a finalized request and recomputes the
// provider's running average from all of its rated requests.
func (s *RequestService) Rate(ctx context.Context, actor *domain.User, id string, rating int, comment *string) (*domain.AssistanceRequest, error) {
	if rating < 1 || rating > 5 {
		return nil, apperrors.NewValidationError("rating must be between 1 and 5", map[string]any{"rating": rating})
	}

	var updated *domain.AssistanceRequest
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		req, err := s.lockAccessible(txCtx, actor, id)
		if err != nil {
			return err
		}
		if req.Status != domain.RequestStatusFinalized {
			return apperrors.NewInvalidState(
				"only finalized requests can be rated; current state is "+string(req.Status), nil)
		}
		if req.Rating != nil {
			return apperrors.NewConflict("request already rated", map[string]any{"request_id": req.ID})
		}
		if req.ProviderID == nil {
			return apperrors.NewInvalidState("request has no provider to rate", nil)
		}

		// Lock the provider row so concurrent ratings serialize on the
		// average recomputation.
		provider, err := s.providers.GetByIDForUpdate(txCtx, *req.ProviderID)
		if err != nil {
			return apperrors.MapError(err)
		}

		req.Rating = &rating
		req.RatingComment = comment
		if err := s.requests.Update(txCtx, req); err != nil {
			return apperrors.MapError(err)
		}

		average, _, err := s.requests.ProviderRatingAverage(txCtx, provider.ID)
		if err != nil {
			return apperrors.MapError(err)
		}
		if err := s.providers.UpdateRating(txCtx, provider.ID, average); err != nil {
			return apperrors.MapError(err)
		}

		s.publishEvent(txCtx, events.Event{
			Type:      events.EventRequestRated,
			RequestID: req.ID,
			Actor:     actorFor(actor),
			Payload: events.RequestRatedPayload{
				Rating:     rating,
				Comment:    comment,
				ProviderID: provider.ID,
			},
		})
		updated = req
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// lockAccessible loads the request under a row lock and enforces scoping.
func (s *RequestService) lockAccessible(ctx context.Context, actor *domain.User, id string) (*domain.AssistanceRequest, error) {
	req, err := s.requests.GetByIDForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("request", map[string]any{"request_id": id})
		}
		return nil, apperrors.MapError(err)
	}
	if !ScopeFor(actor).CanAccessRequest(req) {
		return nil, apperrors.NewForbidden("access denied")
	}
	return req, nil
}

func transitionError(current, next domain.RequestStatus) error {
	return apperrors.NewInvalidState(
		"cannot transition from "+string(current)+" to "+string(next),
		map[string]any{"from": current, "to": next},
	)
}

func actorFor(user *domain.User) events.Actor {
	if user == nil {
		return events.Actor{}
	}
	return events.Actor{UserID: user.ID, Role: user.Role}
}

func (s *RequestService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

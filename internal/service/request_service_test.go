package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/assistance-service/internal/domain"
	"github.com/spec-kit/assistance-service/internal/events"
	apperrors "github.com/spec-kit/assistance-service/pkg/util"
)

type requestFixture struct {
	requests  *fakeRequestRepo
	vehicles  *fakeVehicleRepo
	providers *fakeProviderRepo
	users     *fakeUserRepo
	events    *captureDispatcher
	service   *RequestService

	clientAdmin *domain.User
	operator    *domain.User
	vehicle     *domain.Vehicle
	provider    *domain.Provider
}

func newRequestFixture(t *testing.T, freeOperatorOnCancel bool) *requestFixture {
	t.Helper()
	f := &requestFixture{
		requests:  newFakeRequestRepo(),
		vehicles:  newFakeVehicleRepo(),
		providers: newFakeProviderRepo(),
		users:     newFakeUserRepo(),
		events:    &captureDispatcher{},
	}
	f.service = NewRequestService(RequestDependencies{
		RequestRepo:          f.requests,
		VehicleRepo:          f.vehicles,
		ProviderRepo:         f.providers,
		UserRepo:             f.users,
		TxManager:            fakeTxManager{},
		Dispatcher:           f.events,
		FreeOperatorOnCancel: freeOperatorOnCancel,
	})

	f.vehicle = &domain.Vehicle{Plate: "AB123CD", Type: domain.VehicleTypeCar, CompanyID: "comp-1"}
	require.NoError(t, f.vehicles.Create(context.Background(), f.vehicle))

	f.provider = &domain.Provider{LegalName: "Gruas Sur", CUIT: "30-1", Active: true}
	require.NoError(t, f.providers.Create(context.Background(), f.provider))

	f.clientAdmin = &domain.User{
		ID: "client-1", Role: domain.RoleClientAdmin,
		CompanyID: strPtr("comp-1"), Active: true,
	}
	f.operator = &domain.User{
		ID: "op-1", Role: domain.RoleProviderOperator,
		ProviderID: &f.provider.ID, Availability: domain.AvailabilityBusy, Active: true,
	}
	require.NoError(t, f.users.Create(context.Background(), f.operator))
	return f
}

// seedRequest stores a request in the given state, already dispatched to the
// fixture provider and operator when the state is past PENDIENTE.
func (f *requestFixture) seedRequest(t *testing.T, status domain.RequestStatus) *domain.AssistanceRequest {
	t.Helper()
	req := &domain.AssistanceRequest{
		Type:          domain.AssistanceTypeMechanic,
		Priority:      domain.RequestPriorityMedium,
		Status:        status,
		Latitude:      -34.6,
		Longitude:     -58.4,
		Address:       "Av. Siempreviva 742",
		VehicleID:     f.vehicle.ID,
		CompanyID:     "comp-1",
		RequestedByID: f.clientAdmin.ID,
	}
	if status != domain.RequestStatusPending {
		req.ProviderID = &f.provider.ID
		req.OperatorID = &f.operator.ID
	}
	switch status {
	case domain.RequestStatusEnRoute, domain.RequestStatusInService, domain.RequestStatusFinalized:
		started := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
		req.StartedAt = &started
	}
	require.NoError(t, f.requests.Create(context.Background(), req))
	return req
}

func TestCreateRequestDefaultsPriority(t *testing.T) {
	f := newRequestFixture(t, false)

	created, err := f.service.Create(context.Background(), f.clientAdmin, RequestCreateInput{
		Type:      domain.AssistanceTypeBattery,
		VehicleID: f.vehicle.ID,
		Latitude:  -34.6,
		Longitude: -58.4,
		Address:   "Av. Siempreviva 742",
	})
	require.NoError(t, err)

	assert.Equal(t, domain.RequestStatusPending, created.Status)
	assert.Equal(t, domain.RequestPriorityMedium, created.Priority)
	assert.Equal(t, "comp-1", created.CompanyID)
	assert.Equal(t, f.clientAdmin.ID, created.RequestedByID)
	assert.Len(t, f.events.byType(events.EventRequestCreated), 1)
}

func TestCreateRequestValidation(t *testing.T) {
	f := newRequestFixture(t, false)

	cases := []struct {
		name  string
		input RequestCreateInput
	}{
		{"unknown type", RequestCreateInput{Type: "REMOLQUE", VehicleID: f.vehicle.ID, Address: "x"}},
		{"bad priority", RequestCreateInput{Type: domain.AssistanceTypeTow, Priority: "URGENTE", VehicleID: f.vehicle.ID, Address: "x"}},
		{"latitude out of range", RequestCreateInput{Type: domain.AssistanceTypeTow, VehicleID: f.vehicle.ID, Latitude: 95, Address: "x"}},
		{"longitude out of range", RequestCreateInput{Type: domain.AssistanceTypeTow, VehicleID: f.vehicle.ID, Longitude: -200, Address: "x"}},
		{"blank address", RequestCreateInput{Type: domain.AssistanceTypeTow, VehicleID: f.vehicle.ID, Address: "   "}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.service.Create(context.Background(), f.clientAdmin, tc.input)
			require.Error(t, err)
			assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)
		})
	}
}

func TestCreateRequestForeignVehicleForbidden(t *testing.T) {
	f := newRequestFixture(t, false)

	foreign := &domain.Vehicle{Plate: "XX999YY", Type: domain.VehicleTypeCar, CompanyID: "comp-2"}
	require.NoError(t, f.vehicles.Create(context.Background(), foreign))

	_, err := f.service.Create(context.Background(), f.clientAdmin, RequestCreateInput{
		Type:      domain.AssistanceTypeTow,
		VehicleID: foreign.ID,
		Address:   "Av. Siempreviva 742",
	})
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", apperrors.ToDomainError(err).Code)
}

func TestListScopesClientToOwnCompany(t *testing.T) {
	f := newRequestFixture(t, false)
	f.seedRequest(t, domain.RequestStatusPending)

	otherCompany := &domain.AssistanceRequest{
		Type: domain.AssistanceTypeTow, Priority: domain.RequestPriorityLow,
		Status: domain.RequestStatusPending, Address: "elsewhere",
		VehicleID: "veh-x", CompanyID: "comp-2", RequestedByID: "u-x",
	}
	require.NoError(t, f.requests.Create(context.Background(), otherCompany))

	// Asking for another company's requests must not widen visibility.
	page, err := f.service.List(context.Background(), f.clientAdmin, RequestListFilter{CompanyID: strPtr("comp-2")})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "comp-1", page.Items[0].CompanyID)
	assert.Equal(t, int64(1), page.Total)
}

func TestGetCrossTenantForbidden(t *testing.T) {
	f := newRequestFixture(t, false)
	req := f.seedRequest(t, domain.RequestStatusPending)

	outsider := &domain.User{ID: "u-2", Role: domain.RoleClientAdmin, CompanyID: strPtr("comp-2"), Active: true}
	_, err := f.service.Get(context.Background(), outsider, req.ID)
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", apperrors.ToDomainError(err).Code)
}

func TestChangeStateRejectsGuardedTargets(t *testing.T) {
	f := newRequestFixture(t, false)
	req := f.seedRequest(t, domain.RequestStatusPending)

	for _, target := range []domain.RequestStatus{
		domain.RequestStatusAssigned,
		domain.RequestStatusFinalized,
		domain.RequestStatusCancelled,
	} {
		_, err := f.service.ChangeState(context.Background(), f.clientAdmin, req.ID, target)
		require.Error(t, err, string(target))
	}
}

func TestChangeStateIllegalEdge(t *testing.T) {
	f := newRequestFixture(t, false)
	req := f.seedRequest(t, domain.RequestStatusPending)

	_, err := f.service.ChangeState(context.Background(), f.clientAdmin, req.ID, domain.RequestStatusInService)
	require.Error(t, err)
	domainErr := apperrors.ToDomainError(err)
	assert.Equal(t, "INVALID_STATE", domainErr.Code)
	assert.Contains(t, domainErr.Message, "cannot transition from PENDIENTE to EN_SERVICIO")
}

func TestChangeStateEnRouteStampsStartAndBindsOperator(t *testing.T) {
	f := newRequestFixture(t, false)
	req := f.seedRequest(t, domain.RequestStatusAssigned)
	req.OperatorID = nil
	require.NoError(t, f.requests.Update(context.Background(), req))

	updated, err := f.service.ChangeState(context.Background(), f.operator, req.ID, domain.RequestStatusEnRoute)
	require.NoError(t, err)

	assert.Equal(t, domain.RequestStatusEnRoute, updated.Status)
	require.NotNil(t, updated.StartedAt)
	require.NotNil(t, updated.OperatorID)
	assert.Equal(t, f.operator.ID, *updated.OperatorID)

	published := f.events.byType(events.EventRequestStatusChanged)
	require.Len(t, published, 1)
	payload := published[0].Payload.(events.RequestStatusChangedPayload)
	assert.Equal(t, domain.RequestStatusAssigned, payload.OldStatus)
	assert.Equal(t, domain.RequestStatusEnRoute, payload.NewStatus)
}

func TestChangeStateKeepsExistingStart(t *testing.T) {
	f := newRequestFixture(t, false)
	req := f.seedRequest(t, domain.RequestStatusEnRoute)
	firstStart := req.StartedAt

	updated, err := f.service.ChangeState(context.Background(), f.operator, req.ID, domain.RequestStatusInService)
	require.NoError(t, err)
	assert.Equal(t, domain.RequestStatusInService, updated.Status)
	assert.Equal(t, firstStart, updated.StartedAt)
}

func TestFinalizeHappyPath(t *testing.T) {
	f := newRequestFixture(t, false)
	req := f.seedRequest(t, domain.RequestStatusInService)

	obs := "replaced battery on site"
	updated, err := f.service.Finalize(context.Background(), f.operator, req.ID, 12500.50, &obs)
	require.NoError(t, err)

	assert.Equal(t, domain.RequestStatusFinalized, updated.Status)
	require.NotNil(t, updated.FinalCost)
	assert.Equal(t, 12500.50, *updated.FinalCost)
	assert.NotNil(t, updated.FinalizedAt)
	require.NotNil(t, updated.Observations)
	assert.Equal(t, obs, *updated.Observations)
	assert.Len(t, f.events.byType(events.EventRequestFinalized), 1)
}

func TestFinalizeRejectsNegativeCost(t *testing.T) {
	f := newRequestFixture(t, false)
	req := f.seedRequest(t, domain.RequestStatusInService)

	_, err := f.service.Finalize(context.Background(), f.operator, req.ID, -1, nil)
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)
}

func TestFinalizeOnlyFromInService(t *testing.T) {
	f := newRequestFixture(t, false)
	req := f.seedRequest(t, domain.RequestStatusAssigned)

	_, err := f.service.Finalize(context.Background(), f.operator, req.ID, 100, nil)
	require.Error(t, err)
	assert.Equal(t, "INVALID_STATE", apperrors.ToDomainError(err).Code)
}

func TestCancelRequiresReason(t *testing.T) {
	f := newRequestFixture(t, false)
	req := f.seedRequest(t, domain.RequestStatusPending)

	_, err := f.service.Cancel(context.Background(), f.clientAdmin, req.ID, "   ")
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)
}

func TestCancelFromEarlyStates(t *testing.T) {
	f := newRequestFixture(t, false)

	for _, status := range []domain.RequestStatus{domain.RequestStatusPending, domain.RequestStatusAssigned} {
		req := f.seedRequest(t, status)
		updated, err := f.service.Cancel(context.Background(), f.clientAdmin, req.ID, "client resolved it")
		require.NoError(t, err, string(status))
		assert.Equal(t, domain.RequestStatusCancelled, updated.Status)
		require.NotNil(t, updated.CancelReason)
		assert.NotNil(t, updated.CancelledAt)
	}

	inService := f.seedRequest(t, domain.RequestStatusInService)
	_, err := f.service.Cancel(context.Background(), f.clientAdmin, inService.ID, "too late")
	require.Error(t, err)
	assert.Equal(t, "INVALID_STATE", apperrors.ToDomainError(err).Code)
}

func TestCancelKeepsOperatorBusyByDefault(t *testing.T) {
	f := newRequestFixture(t, false)
	req := f.seedRequest(t, domain.RequestStatusAssigned)

	_, err := f.service.Cancel(context.Background(), f.clientAdmin, req.ID, "no longer needed")
	require.NoError(t, err)

	operator, err := f.users.GetByID(context.Background(), f.operator.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.AvailabilityBusy, operator.Availability)

	published := f.events.byType(events.EventRequestCancelled)
	require.Len(t, published, 1)
	payload := published[0].Payload.(events.RequestCancelledPayload)
	assert.False(t, payload.OperatorFreed)
}

func TestCancelFreesOperatorWhenConfigured(t *testing.T) {
	f := newRequestFixture(t, true)
	req := f.seedRequest(t, domain.RequestStatusAssigned)

	_, err := f.service.Cancel(context.Background(), f.clientAdmin, req.ID, "no longer needed")
	require.NoError(t, err)

	operator, err := f.users.GetByID(context.Background(), f.operator.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.AvailabilityAvailable, operator.Availability)

	published := f.events.byType(events.EventRequestCancelled)
	require.Len(t, published, 1)
	payload := published[0].Payload.(events.RequestCancelledPayload)
	assert.True(t, payload.OperatorFreed)
}

func TestRateOnlyFinalized(t *testing.T) {
	f := newRequestFixture(t, false)
	req := f.seedRequest(t, domain.RequestStatusInService)

	_, err := f.service.Rate(context.Background(), f.clientAdmin, req.ID, 4, nil)
	require.Error(t, err)
	domainErr := apperrors.ToDomainError(err)
	assert.Equal(t, "INVALID_STATE", domainErr.Code)
	assert.Contains(t, domainErr.Message, "EN_SERVICIO")
}

func TestRateBounds(t *testing.T) {
	f := newRequestFixture(t, false)
	req := f.seedRequest(t, domain.RequestStatusFinalized)

	for _, rating := range []int{0, 6} {
		_, err := f.service.Rate(context.Background(), f.clientAdmin, req.ID, rating, nil)
		require.Error(t, err)
		assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)
	}
}

func TestRateOnceAndRecomputeAverage(t *testing.T) {
	f := newRequestFixture(t, false)
	first := f.seedRequest(t, domain.RequestStatusFinalized)
	second := f.seedRequest(t, domain.RequestStatusFinalized)

	comment := "quick and careful"
	rated, err := f.service.Rate(context.Background(), f.clientAdmin, first.ID, 5, &comment)
	require.NoError(t, err)
	require.NotNil(t, rated.Rating)
	assert.Equal(t, 5, *rated.Rating)

	provider, err := f.providers.GetByID(context.Background(), f.provider.ID)
	require.NoError(t, err)
	require.NotNil(t, provider.AverageRating)
	assert.InDelta(t, 5.0, *provider.AverageRating, 1e-9)

	_, err = f.service.Rate(context.Background(), f.clientAdmin, second.ID, 2, nil)
	require.NoError(t, err)

	provider, err = f.providers.GetByID(context.Background(), f.provider.ID)
	require.NoError(t, err)
	require.NotNil(t, provider.AverageRating)
	assert.InDelta(t, 3.5, *provider.AverageRating, 1e-9)

	// A second rating on the same request conflicts.
	_, err = f.service.Rate(context.Background(), f.clientAdmin, first.ID, 1, nil)
	require.Error(t, err)
	assert.Equal(t, "CONFLICT", apperrors.ToDomainError(err).Code)

	assert.Len(t, f.events.byType(events.EventRequestRated), 2)
}

package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/assistance-service/internal/domain"
	"github.com/spec-kit/assistance-service/internal/events"
	apperrors "github.com/spec-kit/assistance-service/pkg/util"
)

type dispatchFixture struct {
	requests  *fakeRequestRepo
	vehicles  *fakeVehicleRepo
	providers *fakeProviderRepo
	resources *fakeResourceRepo
	users     *fakeUserRepo
	events    *captureDispatcher
	service   *DispatchService

	admin    *domain.User
	request  *domain.AssistanceRequest
	provider *domain.Provider
}

func newDispatchFixture(t *testing.T) *dispatchFixture {
	t.Helper()
	f := &dispatchFixture{
		requests: newFakeRequestRepo(),
		vehicles: newFakeVehicleRepo(),
		users:    newFakeUserRepo(),
		events:   &captureDispatcher{},
	}
	f.providers = newFakeProviderRepo()
	f.resources = newFakeResourceRepo(f.providers)
	f.service = NewDispatchService(DispatchDependencies{
		RequestRepo:  f.requests,
		VehicleRepo:  f.vehicles,
		ProviderRepo: f.providers,
		ResourceRepo: f.resources,
		UserRepo:     f.users,
		TxManager:    fakeTxManager{},
		Dispatcher:   f.events,
	})

	f.admin = &domain.User{ID: "admin-1", Role: domain.RoleSuperAdmin, Active: true}

	vehicle := &domain.Vehicle{Plate: "AB123CD", Type: domain.VehicleTypeCar, CompanyID: "comp-1"}
	require.NoError(t, f.vehicles.Create(context.Background(), vehicle))

	f.provider = &domain.Provider{LegalName: "Gruas Sur", CUIT: "30-1", Active: true}
	require.NoError(t, f.providers.Create(context.Background(), f.provider))

	f.request = &domain.AssistanceRequest{
		Type:      domain.AssistanceTypeMechanic,
		Priority:  domain.RequestPriorityMedium,
		Status:    domain.RequestStatusPending,
		VehicleID: vehicle.ID,
		CompanyID: "comp-1",
	}
	require.NoError(t, f.requests.Create(context.Background(), f.request))
	return f
}

func (f *dispatchFixture) addOperator(t *testing.T, id string, availability domain.Availability) {
	t.Helper()
	require.NoError(t, f.users.Create(context.Background(), &domain.User{
		ID:           id,
		Role:         domain.RoleProviderOperator,
		ProviderID:   &f.provider.ID,
		Availability: availability,
		Active:       true,
	}))
}

func TestAssignHappyPath(t *testing.T) {
	f := newDispatchFixture(t)
	f.addOperator(t, "op-1", domain.AvailabilityAvailable)

	updated, err := f.service.Assign(context.Background(), f.admin, f.request.ID, f.provider.ID, nil)
	require.NoError(t, err)

	assert.Equal(t, domain.RequestStatusAssigned, updated.Status)
	require.NotNil(t, updated.ProviderID)
	assert.Equal(t, f.provider.ID, *updated.ProviderID)
	require.NotNil(t, updated.OperatorID)
	assert.Equal(t, "op-1", *updated.OperatorID)
	assert.NotNil(t, updated.AssignedAt)
	assert.Nil(t, updated.ResourceID)

	operator, err := f.users.GetByID(context.Background(), "op-1")
	require.NoError(t, err)
	assert.Equal(t, domain.AvailabilityBusy, operator.Availability)

	published := f.events.byType(events.EventRequestAssigned)
	require.Len(t, published, 1)
	payload, ok := published[0].Payload.(events.RequestAssignedPayload)
	require.True(t, ok)
	assert.Equal(t, f.provider.ID, payload.ProviderID)
	assert.Equal(t, "op-1", payload.OperatorID)
}

func TestAssignRequiresSuperAdmin(t *testing.T) {
	f := newDispatchFixture(t)
	f.addOperator(t, "op-1", domain.AvailabilityAvailable)

	client := &domain.User{ID: "u-1", Role: domain.RoleClientAdmin, CompanyID: strPtr("comp-1"), Active: true}
	_, err := f.service.Assign(context.Background(), client, f.request.ID, f.provider.ID, nil)
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", apperrors.ToDomainError(err).Code)
}

func TestAssignOnlyFromPending(t *testing.T) {
	f := newDispatchFixture(t)
	f.addOperator(t, "op-1", domain.AvailabilityAvailable)

	_, err := f.service.Assign(context.Background(), f.admin, f.request.ID, f.provider.ID, nil)
	require.NoError(t, err)

	_, err = f.service.Assign(context.Background(), f.admin, f.request.ID, f.provider.ID, nil)
	require.Error(t, err)
	domainErr := apperrors.ToDomainError(err)
	assert.Equal(t, "INVALID_STATE", domainErr.Code)
	assert.Contains(t, domainErr.Message, "cannot assign from state ASIGNADO")
}

func TestAssignUnknownRequest(t *testing.T) {
	f := newDispatchFixture(t)

	_, err := f.service.Assign(context.Background(), f.admin, "missing", f.provider.ID, nil)
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperrors.ToDomainError(err).Code)
}

func TestAssignInactiveProviderIsNotFound(t *testing.T) {
	f := newDispatchFixture(t)
	f.provider.Active = false
	require.NoError(t, f.providers.Update(context.Background(), f.provider))

	_, err := f.service.Assign(context.Background(), f.admin, f.request.ID, f.provider.ID, nil)
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperrors.ToDomainError(err).Code)
}

func TestAssignNoAvailableOperators(t *testing.T) {
	f := newDispatchFixture(t)
	f.addOperator(t, "op-1", domain.AvailabilityBusy)

	_, err := f.service.Assign(context.Background(), f.admin, f.request.ID, f.provider.ID, nil)
	require.Error(t, err)
	domainErr := apperrors.ToDomainError(err)
	assert.Equal(t, "CONFLICT", domainErr.Code)
	assert.Contains(t, domainErr.Message, "no available operators")

	// Nothing committed: the request stays pending.
	req, err := f.requests.GetByID(context.Background(), f.request.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RequestStatusPending, req.Status)
}

func TestAssignPicksFirstOperatorByID(t *testing.T) {
	f := newDispatchFixture(t)
	f.addOperator(t, "op-b", domain.AvailabilityAvailable)
	f.addOperator(t, "op-a", domain.AvailabilityAvailable)

	updated, err := f.service.Assign(context.Background(), f.admin, f.request.ID, f.provider.ID, nil)
	require.NoError(t, err)
	require.NotNil(t, updated.OperatorID)
	assert.Equal(t, "op-a", *updated.OperatorID)
}

func TestAssignCustomSelector(t *testing.T) {
	f := newDispatchFixture(t)
	f.addOperator(t, "op-a", domain.AvailabilityAvailable)
	f.addOperator(t, "op-b", domain.AvailabilityAvailable)

	f.service.selector = func(candidates []domain.User) domain.User {
		return candidates[len(candidates)-1]
	}

	updated, err := f.service.Assign(context.Background(), f.admin, f.request.ID, f.provider.ID, nil)
	require.NoError(t, err)
	require.NotNil(t, updated.OperatorID)
	assert.Equal(t, "op-b", *updated.OperatorID)
}

func TestAssignResourceOfAnotherProvider(t *testing.T) {
	f := newDispatchFixture(t)
	f.addOperator(t, "op-1", domain.AvailabilityAvailable)

	other := &domain.Provider{LegalName: "Gruas Norte", CUIT: "30-2", Active: true}
	require.NoError(t, f.providers.Create(context.Background(), other))
	resource := &domain.ProviderResource{
		Plate: "ZZ999XX", Type: domain.ResourceTypeLightTow,
		Status: domain.ResourceStatusActive, ProviderID: other.ID, Active: true,
	}
	require.NoError(t, f.resources.Create(context.Background(), resource))

	_, err := f.service.Assign(context.Background(), f.admin, f.request.ID, f.provider.ID, &resource.ID)
	require.Error(t, err)
	domainErr := apperrors.ToDomainError(err)
	assert.Equal(t, "VALIDATION_FAILED", domainErr.Code)
	assert.Contains(t, domainErr.Message, "another provider")
}

func TestAssignInactiveResource(t *testing.T) {
	f := newDispatchFixture(t)
	f.addOperator(t, "op-1", domain.AvailabilityAvailable)

	resource := &domain.ProviderResource{
		Plate: "ZZ111XX", Type: domain.ResourceTypeLightTow,
		Status: domain.ResourceStatusMaintenance, ProviderID: f.provider.ID, Active: true,
	}
	require.NoError(t, f.resources.Create(context.Background(), resource))

	_, err := f.service.Assign(context.Background(), f.admin, f.request.ID, f.provider.ID, &resource.ID)
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)
}

func TestAssignHeavyTowRequiredForTruck(t *testing.T) {
	f := newDispatchFixture(t)
	f.addOperator(t, "op-1", domain.AvailabilityAvailable)

	truck := &domain.Vehicle{Plate: "TR456CK", Type: domain.VehicleTypeTruck, CompanyID: "comp-1"}
	require.NoError(t, f.vehicles.Create(context.Background(), truck))
	towRequest := &domain.AssistanceRequest{
		Type: domain.AssistanceTypeTow, Priority: domain.RequestPriorityHigh,
		Status: domain.RequestStatusPending, VehicleID: truck.ID, CompanyID: "comp-1",
	}
	require.NoError(t, f.requests.Create(context.Background(), towRequest))

	lightTow := &domain.ProviderResource{
		Plate: "LT111AA", Type: domain.ResourceTypeLightTow,
		Status: domain.ResourceStatusActive, ProviderID: f.provider.ID, Active: true,
	}
	require.NoError(t, f.resources.Create(context.Background(), lightTow))

	_, err := f.service.Assign(context.Background(), f.admin, towRequest.ID, f.provider.ID, &lightTow.ID)
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)

	heavyTow := &domain.ProviderResource{
		Plate: "HT222BB", Type: domain.ResourceTypeHeavyTow,
		Status: domain.ResourceStatusActive, ProviderID: f.provider.ID, Active: true,
	}
	require.NoError(t, f.resources.Create(context.Background(), heavyTow))

	updated, err := f.service.Assign(context.Background(), f.admin, towRequest.ID, f.provider.ID, &heavyTow.ID)
	require.NoError(t, err)
	require.NotNil(t, updated.ResourceID)
	assert.Equal(t, heavyTow.ID, *updated.ResourceID)
}

func TestListCompatibleResourcesFiltersHeavyTow(t *testing.T) {
	f := newDispatchFixture(t)

	truck := &domain.Vehicle{Plate: "TR456CK", Type: domain.VehicleTypeTruck, CompanyID: "comp-1"}
	require.NoError(t, f.vehicles.Create(context.Background(), truck))
	towRequest := &domain.AssistanceRequest{
		Type: domain.AssistanceTypeTow, Priority: domain.RequestPriorityHigh,
		Status: domain.RequestStatusPending, VehicleID: truck.ID, CompanyID: "comp-1",
	}
	require.NoError(t, f.requests.Create(context.Background(), towRequest))

	light := &domain.ProviderResource{
		Plate: "LT111AA", Type: domain.ResourceTypeLightTow,
		Status: domain.ResourceStatusActive, ProviderID: f.provider.ID, Active: true,
	}
	heavy := &domain.ProviderResource{
		Plate: "HT222BB", Type: domain.ResourceTypeHeavyTow,
		Status: domain.ResourceStatusActive, ProviderID: f.provider.ID, Active: true,
	}
	require.NoError(t, f.resources.Create(context.Background(), light))
	require.NoError(t, f.resources.Create(context.Background(), heavy))

	compatible, err := f.service.ListCompatibleResources(context.Background(), f.admin, towRequest.ID)
	require.NoError(t, err)
	require.Len(t, compatible, 1)
	assert.Equal(t, heavy.ID, compatible[0].ID)

	// A mechanic request for a car accepts any active resource.
	compatible, err = f.service.ListCompatibleResources(context.Background(), f.admin, f.request.ID)
	require.NoError(t, err)
	assert.Len(t, compatible, 2)
}

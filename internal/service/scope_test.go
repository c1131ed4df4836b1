package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spec-kit/assistance-service/internal/domain"
	"github.com/spec-kit/assistance-service/internal/repository"
)

func TestCanAccessRequest(t *testing.T) {
	providerID := "prov-1"
	req := &domain.AssistanceRequest{
		ID:         "req-1",
		CompanyID:  "comp-1",
		ProviderID: &providerID,
	}
	unassigned := &domain.AssistanceRequest{ID: "req-2", CompanyID: "comp-1"}

	super := ScopeFor(&domain.User{ID: "a", Role: domain.RoleSuperAdmin})
	assert.True(t, super.CanAccessRequest(req))
	assert.True(t, super.CanAccessRequest(unassigned))

	sameCompany := ScopeFor(&domain.User{ID: "b", Role: domain.RoleClientOperator, CompanyID: strPtr("comp-1")})
	assert.True(t, sameCompany.CanAccessRequest(req))

	otherCompany := ScopeFor(&domain.User{ID: "c", Role: domain.RoleClientAdmin, CompanyID: strPtr("comp-2")})
	assert.False(t, otherCompany.CanAccessRequest(req))

	sameProvider := ScopeFor(&domain.User{ID: "d", Role: domain.RoleProviderOperator, ProviderID: strPtr("prov-1")})
	assert.True(t, sameProvider.CanAccessRequest(req))
	assert.False(t, sameProvider.CanAccessRequest(unassigned))

	otherProvider := ScopeFor(&domain.User{ID: "e", Role: domain.RoleProviderAdmin, ProviderID: strPtr("prov-2")})
	assert.False(t, otherProvider.CanAccessRequest(req))

	assert.False(t, ScopeFor(nil).CanAccessRequest(req))
	assert.False(t, super.CanAccessRequest(nil))
}

func TestApplyToFilter(t *testing.T) {
	t.Run("super keeps requested filters", func(t *testing.T) {
		filter := repository.RequestFilter{CompanyID: strPtr("comp-2")}
		ScopeFor(&domain.User{Role: domain.RoleSuperAdmin}).ApplyToFilter(&filter)
		assert.Equal(t, "comp-2", *filter.CompanyID)
	})

	t.Run("client pinned to own company", func(t *testing.T) {
		filter := repository.RequestFilter{CompanyID: strPtr("comp-2")}
		ScopeFor(&domain.User{Role: domain.RoleClientAdmin, CompanyID: strPtr("comp-1")}).ApplyToFilter(&filter)
		assert.Equal(t, "comp-1", *filter.CompanyID)
	})

	t.Run("provider pinned to own provider", func(t *testing.T) {
		filter := repository.RequestFilter{ProviderID: strPtr("prov-2")}
		ScopeFor(&domain.User{Role: domain.RoleProviderOperator, ProviderID: strPtr("prov-1")}).ApplyToFilter(&filter)
		assert.Equal(t, "prov-1", *filter.ProviderID)
	})

	t.Run("nil filter is a no-op", func(t *testing.T) {
		ScopeFor(&domain.User{Role: domain.RoleClientAdmin, CompanyID: strPtr("comp-1")}).ApplyToFilter(nil)
	})
}

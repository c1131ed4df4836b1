package service

import (
	"github.com/spec-kit/assistance-service/internal/domain"
	"github.com/spec-kit/assistance-service/internal/repository"
)

// Scope is the tenant visibility of an authenticated caller. CLIENTE_* roles
// see their company's requests, PROVEEDOR_* roles the ones dispatched to
// their provider, SUPER_ADMIN everything.
type Scope struct {
	Role       domain.Role
	UserID     string
	CompanyID  *string
	ProviderID *string
}

// ScopeFor derives the visibility scope from a user record.
func ScopeFor(user *domain.User) Scope {
	if user == nil {
		return Scope{}
	}
	return Scope{
		Role:       user.Role,
		UserID:     user.ID,
		CompanyID:  user.CompanyID,
		ProviderID: user.ProviderID,
	}
}

// IsSuper reports whether the caller is a platform administrator.
func (s Scope) IsSuper() bool {
	return s.Role == domain.RoleSuperAdmin
}

// IsClient reports whether the caller belongs to a client company.
func (s Scope) IsClient() bool {
	return s.Role == domain.RoleClientAdmin || s.Role == domain.RoleClientOperator
}

// IsProvider reports whether the caller belongs to a provider.
func (s Scope) IsProvider() bool {
	return s.Role == domain.RoleProviderAdmin || s.Role == domain.RoleProviderOperator
}

// CanAccessRequest reports whether the caller may read or act on the request.
func (s Scope) CanAccessRequest(req *domain.AssistanceRequest) bool {
	if req == nil {
		return false
	}
	if s.IsSuper() {
		return true
	}
	if s.IsClient() {
		return s.CompanyID != nil && *s.CompanyID == req.CompanyID
	}
	if s.IsProvider() {
		return s.ProviderID != nil && req.ProviderID != nil && *s.ProviderID == *req.ProviderID
	}
	return false
}

// ApplyToFilter narrows a listing filter to the caller's tenant. Requested
// filter values survive only when they do not widen visibility.
func (s Scope) ApplyToFilter(filter *repository.RequestFilter) {
	if filter == nil || s.IsSuper() {
		return
	}
	if s.IsClient() {
		filter.CompanyID = s.CompanyID
		return
	}
	if s.IsProvider() {
		filter.ProviderID = s.ProviderID
	}
}

package domain

import "time"

// Role enumerates platform roles. CLIENTE_* roles belong to a client company,
// PROVEEDOR_* roles to a service provider.
type Role string

const (
	RoleSuperAdmin       Role = "SUPER_ADMIN"
	RoleClientAdmin      Role = "CLIENTE_ADMIN"
	RoleClientOperator   Role = "CLIENTE_OPERADOR"
	RoleProviderAdmin    Role = "PROVEEDOR_ADMIN"
	RoleProviderOperator Role = "PROVEEDOR_OPERADOR"
)

// Availability is the dispatch availability of a provider operator.
type Availability string

const (
	AvailabilityAvailable    Availability = "DISPONIBLE"
	AvailabilityBusy         Availability = "OCUPADO"
	AvailabilityOutOfService Availability = "FUERA_DE_SERVICIO"
)

// User models any platform account: super admins, client company staff and
// provider-side operators. Tenant affiliation is carried by CompanyID or
// ProviderID depending on the role.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	Phone        *string
	Role         Role
	CompanyID    *string
	ProviderID   *string
	Availability Availability
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// OperatorLocation is an operator's last reported position. Kept in the
// location cache, not the relational store.
type OperatorLocation struct {
	Latitude   float64   `json:"lat"`
	Longitude  float64   `json:"lng"`
	ReportedAt time.Time `json:"reported_at"`
}

// ValidRole reports whether r is a known role.
func ValidRole(r Role) bool {
	switch r {
	case RoleSuperAdmin, RoleClientAdmin, RoleClientOperator, RoleProviderAdmin, RoleProviderOperator:
		return true
	}
	return false
}

// ValidAvailability reports whether a is a known availability state.
func ValidAvailability(a Availability) bool {
	switch a {
	case AvailabilityAvailable, AvailabilityBusy, AvailabilityOutOfService:
		return true
	}
	return false
}

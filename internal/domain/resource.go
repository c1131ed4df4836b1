package domain

import "time"

// ResourceType enumerates provider-side assets assignable to a request.
type ResourceType string

const (
	ResourceTypeLightTow      ResourceType = "GRUA_LIVIANA"
	ResourceTypeHeavyTow      ResourceType = "GRUA_PESADA"
	ResourceTypeAssistanceVan ResourceType = "VEHICULO_ASISTENCIA"
)

// ResourceStatus is the operational state of a provider resource.
type ResourceStatus string

const (
	ResourceStatusActive       ResourceStatus = "ACTIVO"
	ResourceStatusMaintenance  ResourceStatus = "MANTENIMIENTO"
	ResourceStatusOutOfService ResourceStatus = "FUERA_DE_SERVICIO"
)

// ProviderResource is a specific asset (tow truck, assistance van) owned by a
// provider.
type ProviderResource struct {
	ID         string
	Plate      string
	Brand      string
	Model      string
	Year       int
	Type       ResourceType
	CapacityKg *int
	Status     ResourceStatus
	ProviderID string
	Active     bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// ValidResourceType reports whether t is a known resource type.
func ValidResourceType(t ResourceType) bool {
	switch t {
	case ResourceTypeLightTow, ResourceTypeHeavyTow, ResourceTypeAssistanceVan:
		return true
	}
	return false
}

// ValidResourceStatus reports whether s is a known resource status.
func ValidResourceStatus(s ResourceStatus) bool {
	switch s {
	case ResourceStatusActive, ResourceStatusMaintenance, ResourceStatusOutOfService:
		return true
	}
	return false
}

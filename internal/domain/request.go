package domain

import "time"

// RequestStatus enumerates lifecycle states for assistance requests.
// Values match the persisted Spanish identifiers.
type RequestStatus string

const (
	RequestStatusPending   RequestStatus = "PENDIENTE"
	RequestStatusAssigned  RequestStatus = "ASIGNADO"
	RequestStatusEnRoute   RequestStatus = "EN_CAMINO"
	RequestStatusInService RequestStatus = "EN_SERVICIO"
	RequestStatusFinalized RequestStatus = "FINALIZADO"
	RequestStatusCancelled RequestStatus = "CANCELADO"
)

// AssistanceType enumerates the kinds of roadside service a request asks for.
type AssistanceType string

const (
	AssistanceTypeTow      AssistanceType = "GRUA"
	AssistanceTypeMechanic AssistanceType = "MECANICO"
	AssistanceTypeBattery  AssistanceType = "BATERIA"
	AssistanceTypeFuel     AssistanceType = "COMBUSTIBLE"
	AssistanceTypeTire     AssistanceType = "NEUMATICO"
)

// RequestPriority enumerates urgency levels.
type RequestPriority string

const (
	RequestPriorityLow    RequestPriority = "BAJA"
	RequestPriorityMedium RequestPriority = "MEDIA"
	RequestPriorityHigh   RequestPriority = "ALTA"
)

// AssistanceRequest is the central aggregate: one roadside-assistance job
// tracked from creation to closure.
type AssistanceRequest struct {
	ID            string
	Type          AssistanceType
	Priority      RequestPriority
	Status        RequestStatus
	Latitude      float64
	Longitude     float64
	Address       string
	Observations  *string
	PhotoRefs     []string
	VehicleID     string
	CompanyID     string
	RequestedByID string

	// Assignment bindings; nil until the request is dispatched.
	ProviderID *string
	ResourceID *string
	OperatorID *string

	FinalCost     *float64
	Rating        *int
	RatingComment *string
	CancelReason  *string

	RequestedAt time.Time
	AssignedAt  *time.Time
	StartedAt   *time.Time
	FinalizedAt *time.Time
	CancelledAt *time.Time
	UpdatedAt   time.Time
}

// ValidAssistanceType reports whether t is a known assistance type.
func ValidAssistanceType(t AssistanceType) bool {
	switch t {
	case AssistanceTypeTow, AssistanceTypeMechanic, AssistanceTypeBattery, AssistanceTypeFuel, AssistanceTypeTire:
		return true
	}
	return false
}

// ValidRequestPriority reports whether p is a known priority.
func ValidRequestPriority(p RequestPriority) bool {
	switch p {
	case RequestPriorityLow, RequestPriorityMedium, RequestPriorityHigh:
		return true
	}
	return false
}

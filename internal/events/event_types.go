package events

import (
	"time"

	"github.com/spec-kit/assistance-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventRequestCreated       EventType = "request_created"
	EventRequestAssigned      EventType = "request_assigned"
	EventRequestStatusChanged EventType = "request_status_changed"
	EventRequestFinalized     EventType = "request_finalized"
	EventRequestCancelled     EventType = "request_cancelled"
	EventRequestRated         EventType = "request_rated"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	UserID string      `json:"user_id"`
	Role   domain.Role `json:"role"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	RequestID string      `json:"request_id"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// RequestCreatedPayload payload.
type RequestCreatedPayload struct {
	CompanyID string                 `json:"company_id"`
	VehicleID string                 `json:"vehicle_id"`
	Type      domain.AssistanceType  `json:"type"`
	Priority  domain.RequestPriority `json:"priority"`
}

// RequestAssignedPayload payload.
type RequestAssignedPayload struct {
	ProviderID string  `json:"provider_id"`
	OperatorID string  `json:"operator_id"`
	ResourceID *string `json:"resource_id,omitempty"`
}

// RequestStatusChangedPayload payload.
type RequestStatusChangedPayload struct {
	OldStatus domain.RequestStatus `json:"old_status"`
	NewStatus domain.RequestStatus `json:"new_status"`
}

// RequestFinalizedPayload payload.
type RequestFinalizedPayload struct {
	FinalCost float64 `json:"final_cost"`
}

// RequestCancelledPayload payload.
type RequestCancelledPayload struct {
	Reason        string               `json:"reason"`
	FromStatus    domain.RequestStatus `json:"from_status"`
	OperatorID    *string              `json:"operator_id,omitempty"`
	OperatorFreed bool                 `json:"operator_freed"`
}

// RequestRatedPayload payload.
type RequestRatedPayload struct {
	Rating     int     `json:"rating"`
	Comment    *string `json:"comment,omitempty"`
	ProviderID string  `json:"provider_id"`
}

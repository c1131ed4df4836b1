package dto

import (
	"time"

	"github.com/spec-kit/assistance-service/internal/domain"
)

// CreateRequestRequest payload.
type CreateRequestRequest struct {
	Type         domain.AssistanceType  `json:"type"`
	Priority     domain.RequestPriority `json:"priority"`
	VehicleID    string                 `json:"vehicle_id"`
	Latitude     float64                `json:"lat"`
	Longitude    float64                `json:"lng"`
	Address      string                 `json:"address"`
	Observations *string                `json:"observations"`
	PhotoRefs    []string               `json:"photo_refs"`
}

// AssignRequestRequest payload.
type AssignRequestRequest struct {
	ProviderID string  `json:"provider_id"`
	ResourceID *string `json:"resource_id"`
}

// ChangeStateRequest payload.
type ChangeStateRequest struct {
	Status domain.RequestStatus `json:"status"`
}

// FinalizeRequestRequest payload.
type FinalizeRequestRequest struct {
	FinalCost    float64 `json:"final_cost"`
	Observations *string `json:"observations"`
}

// CancelRequestRequest payload.
type CancelRequestRequest struct {
	Reason string `json:"reason"`
}

// RateRequestRequest payload.
type RateRequestRequest struct {
	Rating  int     `json:"rating"`
	Comment *string `json:"comment"`
}

// RequestResponse is the full request representation.
type RequestResponse struct {
	ID            string                 `json:"id"`
	Type          domain.AssistanceType  `json:"type"`
	Priority      domain.RequestPriority `json:"priority"`
	Status        domain.RequestStatus   `json:"status"`
	Latitude      float64                `json:"lat"`
	Longitude     float64                `json:"lng"`
	Address       string                 `json:"address"`
	Observations  *string                `json:"observations"`
	PhotoRefs     []string               `json:"photo_refs"`
	VehicleID     string                 `json:"vehicle_id"`
	CompanyID     string                 `json:"company_id"`
	RequestedByID string                 `json:"requested_by_id"`
	ProviderID    *string                `json:"provider_id"`
	ResourceID    *string                `json:"resource_id"`
	OperatorID    *string                `json:"operator_id"`
	FinalCost     *float64               `json:"final_cost"`
	Rating        *int                   `json:"rating"`
	RatingComment *string                `json:"rating_comment"`
	CancelReason  *string                `json:"cancel_reason"`
	RequestedAt   time.Time              `json:"requested_at"`
	AssignedAt    *time.Time             `json:"assigned_at"`
	StartedAt     *time.Time             `json:"started_at"`
	FinalizedAt   *time.Time             `json:"finalized_at"`
	CancelledAt   *time.Time             `json:"cancelled_at"`
	UpdatedAt     time.Time              `json:"updated_at"`
}

// RequestPageResponse is the paginated listing envelope.
type RequestPageResponse struct {
	Items    []RequestResponse `json:"items"`
	Total    int64             `json:"total"`
	Page     int               `json:"page"`
	PageSize int               `json:"page_size"`
}

// ResourceResponse represents a provider resource.
type ResourceResponse struct {
	ID         string                `json:"id"`
	Plate      string                `json:"plate"`
	Brand      string                `json:"brand"`
	Model      string                `json:"model"`
	Year       int                   `json:"year"`
	Type       domain.ResourceType   `json:"type"`
	CapacityKg *int                  `json:"capacity_kg"`
	Status     domain.ResourceStatus `json:"status"`
	ProviderID string                `json:"provider_id"`
	Active     bool                  `json:"active"`
}

package dto

import (
	"time"

	"github.com/spec-kit/assistance-service/internal/domain"
)

// CompanyRequest payload for create/update.
type CompanyRequest struct {
	LegalName string  `json:"legal_name"`
	CUIT      string  `json:"cuit"`
	Email     string  `json:"email"`
	Phone     *string `json:"phone"`
	Address   *string `json:"address"`
	PlanID    *string `json:"plan_id"`
}

// CompanyResponse representation.
type CompanyResponse struct {
	ID        string    `json:"id"`
	LegalName string    `json:"legal_name"`
	CUIT      string    `json:"cuit"`
	Email     string    `json:"email"`
	Phone     *string   `json:"phone"`
	Address   *string   `json:"address"`
	PlanID    *string   `json:"plan_id"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// ProviderRequest payload for create/update.
type ProviderRequest struct {
	LegalName       string   `json:"legal_name"`
	CUIT            string   `json:"cuit"`
	Email           string   `json:"email"`
	Phone           *string  `json:"phone"`
	Address         *string  `json:"address"`
	ServicesOffered []string `json:"services_offered"`
}

// ProviderResponse representation.
type ProviderResponse struct {
	ID              string    `json:"id"`
	LegalName       string    `json:"legal_name"`
	CUIT            string    `json:"cuit"`
	Email           string    `json:"email"`
	Phone           *string   `json:"phone"`
	Address         *string   `json:"address"`
	ServicesOffered []string  `json:"services_offered"`
	AverageRating   *float64  `json:"average_rating"`
	Active          bool      `json:"active"`
	CreatedAt       time.Time `json:"created_at"`
}

// ProviderStatsResponse aggregates dispatch outcomes.
type ProviderStatsResponse struct {
	TotalRequests     int64                          `json:"total_requests"`
	FinalizedRequests int64                          `json:"finalized_requests"`
	TotalRevenue      float64                        `json:"total_revenue"`
	CompletionRate    float64                        `json:"completion_rate"`
	ByStatus          map[domain.RequestStatus]int64 `json:"by_status"`
}

// VehicleRequest payload for create/update.
type VehicleRequest struct {
	Plate     string             `json:"plate"`
	Brand     string             `json:"brand"`
	Model     string             `json:"model"`
	Year      int                `json:"year"`
	Type      domain.VehicleType `json:"type"`
	CompanyID string             `json:"company_id"`
}

// VehicleResponse representation.
type VehicleResponse struct {
	ID        string             `json:"id"`
	Plate     string             `json:"plate"`
	Brand     string             `json:"brand"`
	Model     string             `json:"model"`
	Year      int                `json:"year"`
	Type      domain.VehicleType `json:"type"`
	CompanyID string             `json:"company_id"`
	CreatedAt time.Time          `json:"created_at"`
}

// ResourceRequest payload for create/update.
type ResourceRequest struct {
	Plate      string                `json:"plate"`
	Brand      string                `json:"brand"`
	Model      string                `json:"model"`
	Year       int                   `json:"year"`
	Type       domain.ResourceType   `json:"type"`
	CapacityKg *int                  `json:"capacity_kg"`
	Status     domain.ResourceStatus `json:"status"`
	ProviderID string                `json:"provider_id"`
}

// PlanRequest payload for create/update.
type PlanRequest struct {
	Name             string   `json:"name"`
	Description      *string  `json:"description"`
	IncludedServices []string `json:"included_services"`
	MonthlyPrice     float64  `json:"monthly_price"`
}

// PlanResponse representation.
type PlanResponse struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Description      *string   `json:"description"`
	IncludedServices []string  `json:"included_services"`
	MonthlyPrice     float64   `json:"monthly_price"`
	Active           bool      `json:"active"`
	CreatedAt        time.Time `json:"created_at"`
}

package domain

import "time"

// Provider is an organization offering assistance resources and operators.
type Provider struct {
	ID              string
	LegalName       string
	CUIT            string
	Email           string
	Phone           *string
	Address         *string
	ServicesOffered []string
	AverageRating   *float64
	Active          bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
	DeletedAt       *time.Time
}

// ProviderStats aggregates dispatch outcomes for one provider.
type ProviderStats struct {
	TotalRequests     int64
	FinalizedRequests int64
	TotalRevenue      float64
	CompletionRate    float64
	ByStatus          map[RequestStatus]int64
}

package domain

import "time"

// Plan is a subscription tier for client companies.
type Plan struct {
	ID               string
	Name             string
	Description      *string
	IncludedServices []string
	MonthlyPrice     float64
	Active           bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
	DeletedAt        *time.Time
}

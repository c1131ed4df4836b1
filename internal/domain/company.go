package domain

import "time"

// Company is a fleet-owning client organization (empresa).
type Company struct {
	ID        string
	LegalName string
	CUIT      string
	Email     string
	Phone     *string
	Address   *string
	PlanID    *string
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}

package domain

import "time"

// VehicleType enumerates the kinds of client vehicles.
type VehicleType string

const (
	VehicleTypeCar    VehicleType = "AUTO"
	VehicleTypePickup VehicleType = "CAMIONETA"
	VehicleTypeTruck  VehicleType = "CAMION"
	VehicleTypeMoto   VehicleType = "MOTO"
)

// Vehicle is a client-company vehicle that may raise assistance requests.
type Vehicle struct {
	ID        string
	Plate     string
	Brand     string
	Model     string
	Year      int
	Type      VehicleType
	CompanyID string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ValidVehicleType reports whether t is a known vehicle type.
func ValidVehicleType(t VehicleType) bool {
	switch t {
	case VehicleTypeCar, VehicleTypePickup, VehicleTypeTruck, VehicleTypeMoto:
		return true
	}
	return false
}

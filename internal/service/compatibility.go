package service

import "github.com/spec-kit/assistance-service/internal/domain"

// ResourceCompatible reports whether a provider resource can serve a request
// for the given vehicle. The only hard restriction is towing a heavy truck:
// that needs a heavy tow. Every other combination is serviceable.
func ResourceCompatible(requestType domain.AssistanceType, vehicleType domain.VehicleType, resourceType domain.ResourceType) bool {
	if requestType == domain.AssistanceTypeTow &&
		vehicleType == domain.VehicleTypeTruck &&
		resourceType != domain.ResourceTypeHeavyTow {
		return false
	}
	return true
}

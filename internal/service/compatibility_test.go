package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spec-kit/assistance-service/internal/domain"
)

func TestResourceCompatible(t *testing.T) {
	cases := []struct {
		name       string
		request    domain.AssistanceType
		vehicle    domain.VehicleType
		resource   domain.ResourceType
		compatible bool
	}{
		{"truck tow needs heavy tow", domain.AssistanceTypeTow, domain.VehicleTypeTruck, domain.ResourceTypeLightTow, false},
		{"truck tow with van", domain.AssistanceTypeTow, domain.VehicleTypeTruck, domain.ResourceTypeAssistanceVan, false},
		{"truck tow with heavy tow", domain.AssistanceTypeTow, domain.VehicleTypeTruck, domain.ResourceTypeHeavyTow, true},
		{"car tow with light tow", domain.AssistanceTypeTow, domain.VehicleTypeCar, domain.ResourceTypeLightTow, true},
		{"truck mechanic with van", domain.AssistanceTypeMechanic, domain.VehicleTypeTruck, domain.ResourceTypeAssistanceVan, true},
		{"moto battery with light tow", domain.AssistanceTypeBattery, domain.VehicleTypeMoto, domain.ResourceTypeLightTow, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.compatible, ResourceCompatible(tc.request, tc.vehicle, tc.resource))
		})
	}
}

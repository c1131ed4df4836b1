package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/assistance-service/internal/api/dto"
	"github.com/spec-kit/assistance-service/internal/domain"
	"github.com/spec-kit/assistance-service/internal/service"
	apperrors "github.com/spec-kit/assistance-service/pkg/util"
)

// VehiclesHandler manages fleet vehicle endpoints.
type VehiclesHandler struct {
	service *service.VehicleService
}

// NewVehiclesHandler constructs handler.
func NewVehiclesHandler(vehicleService *service.VehicleService) *VehiclesHandler {
	return &VehiclesHandler{service: vehicleService}
}

// Create POST /vehicles.
func (h *VehiclesHandler) Create(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.VehicleRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	vehicle, err := h.service.Create(c.Context(), actor, vehicleInput(req))
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": vehicleResponse(vehicle)})
}

// List GET /vehicles.
func (h *VehiclesHandler) List(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	vehicles, err := h.service.List(c.Context(), actor)
	if err != nil {
		return err
	}
	items := make([]dto.VehicleResponse, 0, len(vehicles))
	for i := range vehicles {
		items = append(items, vehicleResponse(&vehicles[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Get GET /vehicles/:id.
func (h *VehiclesHandler) Get(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	vehicle, err := h.service.Get(c.Context(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": vehicleResponse(vehicle)})
}

// Update PUT /vehicles/:id.
func (h *VehiclesHandler) Update(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.VehicleRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	vehicle, err := h.service.Update(c.Context(), actor, c.Params("id"), vehicleInput(req))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": vehicleResponse(vehicle)})
}

func vehicleInput(req dto.VehicleRequest) service.VehicleInput {
	return service.VehicleInput{
		Plate:     req.Plate,
		Brand:     req.Brand,
		Model:     req.Model,
		Year:      req.Year,
		Type:      req.Type,
		CompanyID: req.CompanyID,
	}
}

func vehicleResponse(vehicle *domain.Vehicle) dto.VehicleResponse {
	return dto.VehicleResponse{
		ID:        vehicle.ID,
		Plate:     vehicle.Plate,
		Brand:     vehicle.Brand,
		Model:     vehicle.Model,
		Year:      vehicle.Year,
		Type:      vehicle.Type,
		CompanyID: vehicle.CompanyID,
		CreatedAt: vehicle.CreatedAt,
	}
}

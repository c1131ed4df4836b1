package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/assistance-service/internal/api/dto"
	"github.com/spec-kit/assistance-service/internal/service"
	apperrors "github.com/spec-kit/assistance-service/pkg/util"
)

// ResourcesHandler manages provider resource endpoints.
type ResourcesHandler struct {
	service *service.ResourceService
}

// NewResourcesHandler constructs handler.
func NewResourcesHandler(resourceService *service.ResourceService) *ResourcesHandler {
	return &ResourcesHandler{service: resourceService}
}

// Create POST /resources.
func (h *ResourcesHandler) Create(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.ResourceRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	resource, err := h.service.Create(c.Context(), actor, resourceInput(req))
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": resourceResponse(resource)})
}

// ListByProvider GET /providers/:id/resources.
func (h *ResourcesHandler) ListByProvider(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	resources, err := h.service.ListByProvider(c.Context(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	items := make([]dto.ResourceResponse, 0, len(resources))
	for i := range resources {
		items = append(items, resourceResponse(&resources[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Get GET /resources/:id.
func (h *ResourcesHandler) Get(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	resource, err := h.service.Get(c.Context(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": resourceResponse(resource)})
}

// Update PUT /resources/:id.
func (h *ResourcesHandler) Update(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.ResourceRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	resource, err := h.service.Update(c.Context(), actor, c.Params("id"), resourceInput(req))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": resourceResponse(resource)})
}

// Deactivate DELETE /resources/:id.
func (h *ResourcesHandler) Deactivate(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	resource, err := h.service.Deactivate(c.Context(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": resourceResponse(resource)})
}

func resourceInput(req dto.ResourceRequest) service.ResourceInput {
	return service.ResourceInput{
		Plate:      req.Plate,
		Brand:      req.Brand,
		Model:      req.Model,
		Year:       req.Year,
		Type:       req.Type,
		CapacityKg: req.CapacityKg,
		Status:     req.Status,
		ProviderID: req.ProviderID,
	}
}

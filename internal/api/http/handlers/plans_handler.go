package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/assistance-service/internal/api/dto"
	"github.com/spec-kit/assistance-service/internal/domain"
	"github.com/spec-kit/assistance-service/internal/service"
	apperrors "github.com/spec-kit/assistance-service/pkg/util"
)

// PlansHandler manages subscription plan endpoints.
type PlansHandler struct {
	service *service.PlanService
}

// NewPlansHandler constructs handler.
func NewPlansHandler(planService *service.PlanService) *PlansHandler {
	return &PlansHandler{service: planService}
}

// Create POST /plans.
func (h *PlansHandler) Create(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.PlanRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	plan, err := h.service.Create(c.Context(), actor, planInput(req))
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": planResponse(plan)})
}

// List GET /plans.
func (h *PlansHandler) List(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	plans, err := h.service.List(c.Context(), actor, c.QueryBool("include_inactive", false))
	if err != nil {
		return err
	}
	items := make([]dto.PlanResponse, 0, len(plans))
	for i := range plans {
		items = append(items, planResponse(&plans[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Get GET /plans/:id.
func (h *PlansHandler) Get(c *fiber.Ctx) error {
	plan, err := h.service.Get(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": planResponse(plan)})
}

// Update PUT /plans/:id.
func (h *PlansHandler) Update(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.PlanRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	plan, err := h.service.Update(c.Context(), actor, c.Params("id"), planInput(req))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": planResponse(plan)})
}

// Delete DELETE /plans/:id.
func (h *PlansHandler) Delete(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.Context(), actor, c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"deleted": true}})
}

func planInput(req dto.PlanRequest) service.PlanInput {
	return service.PlanInput{
		Name:             req.Name,
		Description:      req.Description,
		IncludedServices: req.IncludedServices,
		MonthlyPrice:     req.MonthlyPrice,
	}
}

func planResponse(plan *domain.Plan) dto.PlanResponse {
	return dto.PlanResponse{
		ID:               plan.ID,
		Name:             plan.Name,
		Description:      plan.Description,
		IncludedServices: plan.IncludedServices,
		MonthlyPrice:     plan.MonthlyPrice,
		Active:           plan.Active,
		CreatedAt:        plan.CreatedAt,
	}
}

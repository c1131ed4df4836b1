package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/assistance-service/internal/api/dto"
	"github.com/spec-kit/assistance-service/internal/domain"
	"github.com/spec-kit/assistance-service/internal/service"
	apperrors "github.com/spec-kit/assistance-service/pkg/util"
)

// ProvidersHandler manages provider endpoints.
type ProvidersHandler struct {
	service *service.ProviderService
}

// NewProvidersHandler constructs handler.
func NewProvidersHandler(providerService *service.ProviderService) *ProvidersHandler {
	return &ProvidersHandler{service: providerService}
}

// Create POST /providers.
func (h *ProvidersHandler) Create(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.ProviderRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	provider, err := h.service.Create(c.Context(), actor, providerInput(req))
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": providerResponse(provider)})
}

// List GET /providers.
func (h *ProvidersHandler) List(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	providers, err := h.service.List(c.Context(), actor, c.QueryBool("active_only", false))
	if err != nil {
		return err
	}
	items := make([]dto.ProviderResponse, 0, len(providers))
	for i := range providers {
		items = append(items, providerResponse(&providers[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Get GET /providers/:id.
func (h *ProvidersHandler) Get(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	provider, err := h.service.Get(c.Context(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": providerResponse(provider)})
}

// Update PUT /providers/:id.
func (h *ProvidersHandler) Update(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.ProviderRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	provider, err := h.service.Update(c.Context(), actor, c.Params("id"), providerInput(req))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": providerResponse(provider)})
}

// Delete DELETE /providers/:id.
func (h *ProvidersHandler) Delete(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.Context(), actor, c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"deleted": true}})
}

// Stats GET /providers/:id/stats.
func (h *ProvidersHandler) Stats(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	stats, err := h.service.Stats(c.Context(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.ProviderStatsResponse{
		TotalRequests:     stats.TotalRequests,
		FinalizedRequests: stats.FinalizedRequests,
		TotalRevenue:      stats.TotalRevenue,
		CompletionRate:    stats.CompletionRate,
		ByStatus:          stats.ByStatus,
	}})
}

func providerInput(req dto.ProviderRequest) service.ProviderInput {
	return service.ProviderInput{
		LegalName:       req.LegalName,
		CUIT:            req.CUIT,
		Email:           req.Email,
		Phone:           req.Phone,
		Address:         req.Address,
		ServicesOffered: req.ServicesOffered,
	}
}

func providerResponse(provider *domain.Provider) dto.ProviderResponse {
	return dto.ProviderResponse{
		ID:              provider.ID,
		LegalName:       provider.LegalName,
		CUIT:            provider.CUIT,
		Email:           provider.Email,
		Phone:           provider.Phone,
		Address:         provider.Address,
		ServicesOffered: provider.ServicesOffered,
		AverageRating:   provider.AverageRating,
		Active:          provider.Active,
		CreatedAt:       provider.CreatedAt,
	}
}

package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/assistance-service/internal/api/dto"
	"github.com/spec-kit/assistance-service/internal/domain"
	"github.com/spec-kit/assistance-service/internal/service"
	apperrors "github.com/spec-kit/assistance-service/pkg/util"
)

// CompaniesHandler manages client company endpoints.
type CompaniesHandler struct {
	service *service.CompanyService
}

// NewCompaniesHandler constructs handler.
func NewCompaniesHandler(companyService *service.CompanyService) *CompaniesHandler {
	return &CompaniesHandler{service: companyService}
}

// Create POST /companies.
func (h *CompaniesHandler) Create(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.CompanyRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	company, err := h.service.Create(c.Context(), actor, companyInput(req))
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": companyResponse(company)})
}

// List GET /companies.
func (h *CompaniesHandler) List(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	companies, err := h.service.List(c.Context(), actor, c.QueryBool("active_only", false))
	if err != nil {
		return err
	}
	items := make([]dto.CompanyResponse, 0, len(companies))
	for i := range companies {
		items = append(items, companyResponse(&companies[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Get GET /companies/:id.
func (h *CompaniesHandler) Get(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	company, err := h.service.Get(c.Context(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": companyResponse(company)})
}

// Update PUT /companies/:id.
func (h *CompaniesHandler) Update(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.CompanyRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	company, err := h.service.Update(c.Context(), actor, c.Params("id"), companyInput(req))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": companyResponse(company)})
}

// Delete DELETE /companies/:id.
func (h *CompaniesHandler) Delete(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.Context(), actor, c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"deleted": true}})
}

func companyInput(req dto.CompanyRequest) service.CompanyInput {
	return service.CompanyInput{
		LegalName: req.LegalName,
		CUIT:      req.CUIT,
		Email:     req.Email,
		Phone:     req.Phone,
		Address:   req.Address,
		PlanID:    req.PlanID,
	}
}

func companyResponse(company *domain.Company) dto.CompanyResponse {
	return dto.CompanyResponse{
		ID:        company.ID,
		LegalName: company.LegalName,
		CUIT:      company.CUIT,
		Email:     company.Email,
		Phone:     company.Phone,
		Address:   company.Address,
		PlanID:    company.PlanID,
		Active:    company.Active,
		CreatedAt: company.CreatedAt,
	}
}

package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/assistance-service/internal/api/dto"
	"github.com/spec-kit/assistance-service/internal/auth"
	"github.com/spec-kit/assistance-service/internal/domain"
	"github.com/spec-kit/assistance-service/internal/service"
	apperrors "github.com/spec-kit/assistance-service/pkg/util"
)

// RequestsHandler manages assistance request endpoints.
type RequestsHandler struct {
	requests *service.RequestService
	dispatch *service.DispatchService
}

// NewRequestsHandler constructs handler.
func NewRequestsHandler(requests *service.RequestService, dispatch *service.DispatchService) *RequestsHandler {
	return &RequestsHandler{requests: requests, dispatch: dispatch}
}

// Create POST /requests.
func (h *RequestsHandler) Create(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.CreateRequestRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.VehicleID == "" || strings.TrimSpace(req.Address) == "" {
		return apperrors.NewValidationError("vehicle_id and address required", nil)
	}

	created, err := h.requests.Create(c.Context(), actor, service.RequestCreateInput{
		Type:         req.Type,
		Priority:     req.Priority,
		VehicleID:    req.VehicleID,
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
		Address:      req.Address,
		Observations: req.Observations,
		PhotoRefs:    req.PhotoRefs,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": requestResponse(created)})
}

// List GET /requests.
func (h *RequestsHandler) List(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	page, err := h.requests.List(c.Context(), actor, parseRequestQuery(c))
	if err != nil {
		return err
	}
	items := make([]dto.RequestResponse, 0, len(page.Items))
	for i := range page.Items {
		items = append(items, requestResponse(&page.Items[i]))
	}
	return c.JSON(fiber.Map{"data": dto.RequestPageResponse{
		Items:    items,
		Total:    page.Total,
		Page:     page.Page,
		PageSize: page.PageSize,
	}})
}

// Get GET /requests/:id.
func (h *RequestsHandler) Get(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	req, err := h.requests.Get(c.Context(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": requestResponse(req)})
}

// Assign POST /requests/:id/assign.
func (h *RequestsHandler) Assign(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.AssignRequestRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.ProviderID == "" {
		return apperrors.NewValidationError("provider_id required", nil)
	}
	updated, err := h.dispatch.Assign(c.Context(), actor, c.Params("id"), req.ProviderID, req.ResourceID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": requestResponse(updated)})
}

// ChangeState PATCH /requests/:id/status.
func (h *RequestsHandler) ChangeState(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.ChangeStateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Status == "" {
		return apperrors.NewValidationError("status required", nil)
	}
	updated, err := h.requests.ChangeState(c.Context(), actor, c.Params("id"), req.Status)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": requestResponse(updated)})
}

// Finalize POST /requests/:id/finalize.
func (h *RequestsHandler) Finalize(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.FinalizeRequestRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	updated, err := h.requests.Finalize(c.Context(), actor, c.Params("id"), req.FinalCost, req.Observations)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": requestResponse(updated)})
}

// Cancel POST /requests/:id/cancel.
func (h *RequestsHandler) Cancel(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.CancelRequestRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	updated, err := h.requests.Cancel(c.Context(), actor, c.Params("id"), req.Reason)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": requestResponse(updated)})
}

// Rate POST /requests/:id/rate.
func (h *RequestsHandler) Rate(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.RateRequestRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	updated, err := h.requests.Rate(c.Context(), actor, c.Params("id"), req.Rating, req.Comment)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": requestResponse(updated)})
}

// CompatibleResources GET /requests/:id/resources.
func (h *RequestsHandler) CompatibleResources(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	resources, err := h.dispatch.ListCompatibleResources(c.Context(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	items := make([]dto.ResourceResponse, 0, len(resources))
	for i := range resources {
		items = append(items, resourceResponse(&resources[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

func parseRequestQuery(c *fiber.Ctx) service.RequestListFilter {
	filter := service.RequestListFilter{
		Page:     parseInt(c.Query("page"), 1),
		PageSize: parseInt(c.Query("page_size"), 10),
	}
	if v := c.Query("status"); v != "" {
		status := domain.RequestStatus(strings.TrimSpace(v))
		filter.Status = &status
	}
	if v := c.Query("type"); v != "" {
		reqType := domain.AssistanceType(strings.TrimSpace(v))
		filter.Type = &reqType
	}
	if v := c.Query("company_id"); v != "" {
		filter.CompanyID = &v
	}
	if v := c.Query("provider_id"); v != "" {
		filter.ProviderID = &v
	}
	if v := c.Query("vehicle_id"); v != "" {
		filter.VehicleID = &v
	}
	return filter
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func currentUser(c *fiber.Ctx) (*domain.User, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	return principal.User, nil
}

func requestResponse(req *domain.AssistanceRequest) dto.RequestResponse {
	return dto.RequestResponse{
		ID:            req.ID,
		Type:          req.Type,
		Priority:      req.Priority,
		Status:        req.Status,
		Latitude:      req.Latitude,
		Longitude:     req.Longitude,
		Address:       req.Address,
		Observations:  req.Observations,
		PhotoRefs:     req.PhotoRefs,
		VehicleID:     req.VehicleID,
		CompanyID:     req.CompanyID,
		RequestedByID: req.RequestedByID,
		ProviderID:    req.ProviderID,
		ResourceID:    req.ResourceID,
		OperatorID:    req.OperatorID,
		FinalCost:     req.FinalCost,
		Rating:        req.Rating,
		RatingComment: req.RatingComment,
		CancelReason:  req.CancelReason,
		RequestedAt:   req.RequestedAt,
		AssignedAt:    req.AssignedAt,
		StartedAt:     req.StartedAt,
		FinalizedAt:   req.FinalizedAt,
		CancelledAt:   req.CancelledAt,
		UpdatedAt:     req.UpdatedAt,
	}
}

func resourceResponse(resource *domain.ProviderResource) dto.ResourceResponse {
	return dto.ResourceResponse{
		ID:         resource.ID,
		Plate:      resource.Plate,
		Brand:      resource.Brand,
		Model:      resource.Model,
		Year:       resource.Year,
		Type:       resource.Type,
		CapacityKg: resource.CapacityKg,
		Status:     resource.Status,
		ProviderID: resource.ProviderID,
		Active:     resource.Active,
	}
}

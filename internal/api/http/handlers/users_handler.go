package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/assistance-service/internal/api/dto"
	"github.com/spec-kit/assistance-service/internal/domain"
	"github.com/spec-kit/assistance-service/internal/service"
	apperrors "github.com/spec-kit/assistance-service/pkg/util"
)

// UsersHandler manages account, availability and location endpoints.
type UsersHandler struct {
	authService *service.AuthService
	userService *service.UserService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(authService *service.AuthService, userService *service.UserService) *UsersHandler {
	return &UsersHandler{authService: authService, userService: userService}
}

// Register POST /auth/register.
func (h *UsersHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	user, token, exp, err := h.authService.Register(c.Context(), service.RegisterInput{
		Email:      req.Email,
		Password:   req.Password,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Phone:      req.Phone,
		Role:       req.Role,
		CompanyID:  req.CompanyID,
		ProviderID: req.ProviderID,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.AuthResponse{
		Token:     token,
		ExpiresAt: exp,
		User:      userResponse(user),
	}})
}

// Login POST /auth/login.
func (h *UsersHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	user, token, exp, err := h.authService.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.AuthResponse{
		Token:     token,
		ExpiresAt: exp,
		User:      userResponse(user),
	}})
}

// ChangePassword POST /auth/password/change.
func (h *UsersHandler) ChangePassword(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.NewPassword == "" {
		return apperrors.NewValidationError("new_password required", nil)
	}
	if err := h.authService.ChangePassword(c.Context(), actor.ID, req.CurrentPassword, req.NewPassword); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"changed": true}})
}

// RequestPasswordReset POST /auth/password/reset/request.
func (h *UsersHandler) RequestPasswordReset(c *fiber.Ctx) error {
	var req dto.PasswordResetRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Email) == "" {
		return apperrors.NewValidationError("email required", nil)
	}
	token, err := h.authService.RequestPasswordReset(c.Context(), req.Email)
	if err != nil {
		return err
	}
	// The token would normally be delivered by email; returning it keeps the
	// flow usable without a mail provider.
	return c.JSON(fiber.Map{"data": fiber.Map{
		"token":      token.Token,
		"expires_at": token.ExpiresAt,
	}})
}

// ConfirmPasswordReset POST /auth/password/reset/confirm.
func (h *UsersHandler) ConfirmPasswordReset(c *fiber.Ctx) error {
	var req dto.PasswordResetConfirmRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Token == "" || req.NewPassword == "" {
		return apperrors.NewValidationError("token and new_password required", nil)
	}
	if err := h.authService.ConfirmPasswordReset(c.Context(), req.Token, req.NewPassword); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"reset": true}})
}

// Me GET /users/me.
func (h *UsersHandler) Me(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": userResponse(actor)})
}

// Create POST /users.
func (h *UsersHandler) Create(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	user, err := h.userService.Create(c.Context(), actor, service.UserCreateInput{
		Email:      req.Email,
		Password:   req.Password,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Phone:      req.Phone,
		Role:       req.Role,
		CompanyID:  req.CompanyID,
		ProviderID: req.ProviderID,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": userResponse(user)})
}

// List GET /users.
func (h *UsersHandler) List(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	filters := service.UserListFilters{
		Limit:  parseInt(c.Query("page_size"), 50),
		Offset: (parseInt(c.Query("page"), 1) - 1) * parseInt(c.Query("page_size"), 50),
	}
	if v := c.Query("role"); v != "" {
		role := domain.Role(v)
		filters.Role = &role
	}
	if v := c.Query("company_id"); v != "" {
		filters.CompanyID = &v
	}
	if v := c.Query("provider_id"); v != "" {
		filters.ProviderID = &v
	}
	users, err := h.userService.List(c.Context(), actor, filters)
	if err != nil {
		return err
	}
	items := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		items = append(items, userResponse(&users[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Get GET /users/:id.
func (h *UsersHandler) Get(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	user, err := h.userService.Get(c.Context(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": userResponse(user)})
}

// Update PUT /users/:id.
func (h *UsersHandler) Update(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	user, err := h.userService.Update(c.Context(), actor, c.Params("id"), service.UserUpdateInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		Active:    req.Active,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": userResponse(user)})
}

// SetAvailability PATCH /users/me/availability.
func (h *UsersHandler) SetAvailability(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.SetAvailabilityRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	user, err := h.userService.SetOwnAvailability(c.Context(), actor, req.Availability)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": userResponse(user)})
}

// ReportLocation POST /users/me/location.
func (h *UsersHandler) ReportLocation(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.ReportLocationRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.userService.ReportLocation(c.Context(), actor, req.Latitude, req.Longitude); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"reported": true}})
}

// Location GET /users/:id/location.
func (h *UsersHandler) Location(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	loc, err := h.userService.LastKnownLocation(c.Context(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.OperatorLocationResponse{
		Latitude:   loc.Latitude,
		Longitude:  loc.Longitude,
		ReportedAt: loc.ReportedAt,
	}})
}

func userResponse(user *domain.User) dto.UserResponse {
	return dto.UserResponse{
		ID:           user.ID,
		Email:        user.Email,
		FirstName:    user.FirstName,
		LastName:     user.LastName,
		Phone:        user.Phone,
		Role:         user.Role,
		CompanyID:    user.CompanyID,
		ProviderID:   user.ProviderID,
		Availability: user.Availability,
		Active:       user.Active,
		CreatedAt:    user.CreatedAt,
	}
}

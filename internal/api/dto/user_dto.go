package dto

import (
	"time"

	"github.com/spec-kit/assistance-service/internal/domain"
)

// RegisterRequest payload.
type RegisterRequest struct {
	Email      string      `json:"email"`
	Password   string      `json:"password"`
	FirstName  string      `json:"first_name"`
	LastName   string      `json:"last_name"`
	Phone      *string     `json:"phone"`
	Role       domain.Role `json:"role"`
	CompanyID  *string     `json:"company_id"`
	ProviderID *string     `json:"provider_id"`
}

// LoginRequest payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse carries the token and the authenticated profile.
type AuthResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      UserResponse `json:"user"`
}

// ChangePasswordRequest payload.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// PasswordResetRequest payload.
type PasswordResetRequest struct {
	Email string `json:"email"`
}

// PasswordResetConfirmRequest payload.
type PasswordResetConfirmRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

// UpdateUserRequest payload.
type UpdateUserRequest struct {
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Phone     *string `json:"phone"`
	Active    bool    `json:"active"`
}

// SetAvailabilityRequest payload.
type SetAvailabilityRequest struct {
	Availability domain.Availability `json:"availability"`
}

// ReportLocationRequest payload.
type ReportLocationRequest struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lng"`
}

// UserResponse is the public account representation.
type UserResponse struct {
	ID           string              `json:"id"`
	Email        string              `json:"email"`
	FirstName    string              `json:"first_name"`
	LastName     string              `json:"last_name"`
	Phone        *string             `json:"phone"`
	Role         domain.Role         `json:"role"`
	CompanyID    *string             `json:"company_id"`
	ProviderID   *string             `json:"provider_id"`
	Availability domain.Availability `json:"availability"`
	Active       bool                `json:"active"`
	CreatedAt    time.Time           `json:"created_at"`
}

// OperatorLocationResponse is a cached operator position.
type OperatorLocationResponse struct {
	Latitude   float64   `json:"lat"`
	Longitude  float64   `json:"lng"`
	ReportedAt time.Time `json:"reported_at"`
}

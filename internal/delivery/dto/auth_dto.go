package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

// RegisterRequest is checked by the auth usecase itself so that each failure
// gets its own message.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Response DTOs

type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	Role         string `json:"role"`
}

type UserResponse struct {
	ID        uuid.UUID       `json:"id"`
	Name      string          `json:"name"`
	Email     string          `json:"email"`
	Image     string          `json:"image,omitempty"`
	Phone     string          `json:"phone,omitempty"`
	Address   AddressResponse `json:"address"`
	Gender    string          `json:"gender"`
	DOB       string          `json:"dob"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

type AddressResponse struct {
	Line1 string `json:"line1"`
	Line2 string `json:"line2"`
}

package dto

import (
	"time"

	"github.com/civicbridge/complaint-service/internal/domain"
)

// SignUpRequest payload for new accounts.
type SignUpRequest struct {
	Name       string  `json:"name"`
	Email      string  `json:"email"`
	Password   string  `json:"password"`
	Phone      string  `json:"phone"`
	UserType   string  `json:"userType"`
	Department *string `json:"department"`
	District   *string `json:"district"`
}

// LoginRequest payload for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// CheckEmailRequest payload.
type CheckEmailRequest struct {
	Email string `json:"email"`
}

// CheckEmailResponse response.
type CheckEmailResponse struct {
	Exists bool `json:"exists"`
}

// ProfileUpdateRequest payload. Omitted fields are left unchanged.
type ProfileUpdateRequest struct {
	Name       *string `json:"name"`
	Email      *string `json:"email"`
	Phone      *string `json:"phone"`
	Department *string `json:"department"`
}

// UserResponse is the wire form of an account. The password hash is never serialized.
type UserResponse struct {
	ID         string      `json:"_id"`
	Name       string      `json:"name"`
	Email      string      `json:"email"`
	Phone      string      `json:"phone,omitempty"`
	UserType   domain.Role `json:"userType"`
	Department *string     `json:"department,omitempty"`
	District   *string     `json:"district,omitempty"`
	CreatedAt  *time.Time  `json:"createdAt,omitempty"`
}

// MessageResponse generic acknowledgement.
type MessageResponse struct {
	Message string `json:"message"`
}

package dto

import (
	"time"

	"github.com/noah-isme/intern-portal-api/internal/models"
)

// LoginRequest holds credentials for either principal kind.
type LoginRequest struct {
	Email    string `json:"email" form:"email" validate:"required,email"`
	Password string `json:"password" form:"password" validate:"required"`
}

// LoginResponse returns the session principal and a bearer token bound to
// the same session.
type LoginResponse struct {
	AccessToken string        `json:"access_token"`
	TokenType   string        `json:"token_type"`
	ExpiresAt   time.Time     `json:"expires_at"`
	Principal   PrincipalInfo `json:"principal"`
}

// PrincipalInfo describes the authenticated principal.
type PrincipalInfo struct {
	ID        string      `json:"id"`
	Role      models.Role `json:"role"`
	Email     string      `json:"email"`
	FirstName string      `json:"first_name"`
	LastName  string      `json:"last_name"`
}

// RegisterInternRequest is the self-registration payload. The profile
// picture arrives as an optional multipart file.
type RegisterInternRequest struct {
	Email        string             `json:"email" form:"email" validate:"required,email,max=255"`
	Password     string             `json:"password" form:"password" validate:"required,min=8,max=72"`
	MatricNumber string             `json:"matric_number" form:"matric_number" validate:"required,max=64"`
	FirstName    string             `json:"first_name" form:"first_name" validate:"required,max=100"`
	LastName     string             `json:"last_name" form:"last_name" validate:"required,max=100"`
	PhoneNumber  string             `json:"phone_number" form:"phone_number" validate:"omitempty,max=32"`
	Institution  string             `json:"institution" form:"institution" validate:"omitempty,max=255"`
	Department   string             `json:"department" form:"department" validate:"omitempty,max=255"`
	Picture      *models.Attachment `json:"-" form:"-"`
}

// RegisterAdminRequest creates an admin. Only a superadmin may call it.
type RegisterAdminRequest struct {
	Email     string      `json:"email" validate:"required,email,max=255"`
	Password  string      `json:"password" validate:"required,min=8,max=72"`
	FirstName string      `json:"first_name" validate:"required,max=100"`
	LastName  string      `json:"last_name" validate:"required,max=100"`
	Role      models.Role `json:"role" validate:"required,oneof=admin superadmin"`
}

// RejectInternRequest rejects a pending intern. Purge deletes the record.
type RejectInternRequest struct {
	Reason string `json:"reason" validate:"omitempty,max=1000"`
	Purge  bool   `json:"purge"`
}

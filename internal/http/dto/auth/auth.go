// Package auth contiene DTOs de los endpoints de autenticación.
package auth

import (
	"time"

	"github.com/razorzibra-dot/trialram-sub001/internal/domain/repository"
)

// LoginRequest es el body de POST /v1/auth/login.
// Tenant acepta slug o ID.
type LoginRequest struct {
	Tenant   string `json:"tenant"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse es la respuesta de un login exitoso.
type LoginResponse struct {
	AccessToken string          `json:"access_token"`
	TokenType   string          `json:"token_type"`
	ExpiresIn   int             `json:"expires_in"`
	ExpiresAt   time.Time       `json:"expires_at"`
	User        repository.User `json:"user"`
	Roles       []string        `json:"roles"`
}

// MeResponse es la respuesta de GET /v1/auth/me.
type MeResponse struct {
	User        repository.User   `json:"user"`
	Tenant      repository.Tenant `json:"tenant"`
	Roles       []string          `json:"roles"`
	Permissions []string          `json:"permissions"`
}

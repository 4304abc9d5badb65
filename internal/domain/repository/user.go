package repository

import (
	"context"
	"time"
)

// User es un usuario de un tenant. Los super admins operan sobre cualquier tenant.
type User struct {
	ID           string    `json:"id"`
	TenantID     string    `json:"tenant_id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	Active       bool      `json:"active"`
	SuperAdmin   bool      `json:"super_admin"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

var UserSortable = []string{"email", "name", "created_at"}

// UserRepository define operaciones sobre usuarios.
// List busca por email/nombre; Status "active"/"inactive" filtra por Active.
type UserRepository interface {
	CRUD[User]

	// GetByEmail busca por email (case-insensitive) dentro de un tenant.
	GetByEmail(ctx context.Context, tenantID, email string) (*User, error)
}

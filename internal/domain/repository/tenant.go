package repository

import (
	"context"
	"time"
)

const (
	TenantActive    = "active"
	TenantSuspended = "suspended"
)

// Tenant representa una organización cliente del CRM.
type Tenant struct {
	ID        string    `json:"id"`
	Slug      string    `json:"slug"`
	Name      string    `json:"name"`
	Plan      string    `json:"plan"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Suspended indica si el tenant está suspendido.
func (t Tenant) Suspended() bool { return t.Status == TenantSuspended }

// TenantRepository es el plano de control de tenants.
type TenantRepository interface {
	GetByID(ctx context.Context, id string) (*Tenant, error)
	GetBySlug(ctx context.Context, slug string) (*Tenant, error)
	// List retorna todos los tenants ordenados por slug.
	List(ctx context.Context) ([]Tenant, error)
	// Create retorna ErrConflict si el slug ya existe.
	Create(ctx context.Context, t *Tenant) error
	Update(ctx context.Context, t *Tenant) error
	// Delete elimina el tenant y todos sus datos.
	Delete(ctx context.Context, id string) error
}

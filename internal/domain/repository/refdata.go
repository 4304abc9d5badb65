package repository

import (
	"context"
	"time"
)

// RefItem es un valor de datos de referencia (industrias, fuentes, monedas...).
type RefItem struct {
	ID        string    `json:"id"`
	TenantID  string    `json:"tenant_id"`
	Category  string    `json:"category"`
	Key       string    `json:"key"`
	Label     string    `json:"label"`
	SortOrder int       `json:"sort_order"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RefDataRepository: items únicos por (tenant, category, key).
type RefDataRepository interface {
	// List ordena por SortOrder y luego Label.
	List(ctx context.Context, tenantID, category string, onlyActive bool) ([]RefItem, error)
	Get(ctx context.Context, tenantID, category, key string) (*RefItem, error)
	// Create retorna ErrConflict si (category, key) ya existe.
	Create(ctx context.Context, item *RefItem) error
	Update(ctx context.Context, item *RefItem) error
	Delete(ctx context.Context, tenantID, category, key string) error
	// Categories lista las categorías con al menos un item.
	Categories(ctx context.Context, tenantID string) ([]string, error)
}

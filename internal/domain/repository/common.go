package repository

import (
	"context"
	"slices"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
	// MaxPage acota Page para que (Page-1)*PageSize no desborde.
	MaxPage = 1_000_000
)

// ListFilter son los parámetros comunes de listado del plano de datos.
// Status se interpreta por entidad (stage en deals, status en el resto).
// En tickets y jobworks OwnerID filtra por asignado.
type ListFilter struct {
	Search     string
	Status     string
	Priority   string
	OwnerID    string
	CustomerID string
	Page       int
	PageSize   int
	SortBy     string
	SortDesc   bool
}

// Normalize aplica defaults de paginación y restringe SortBy a las columnas
// ordenables dadas (fallback "created_at").
func (f ListFilter) Normalize(sortable ...string) ListFilter {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Page > MaxPage {
		f.Page = MaxPage
	}
	if f.PageSize <= 0 {
		f.PageSize = DefaultPageSize
	}
	if f.PageSize > MaxPageSize {
		f.PageSize = MaxPageSize
	}
	if !slices.Contains(sortable, f.SortBy) {
		f.SortBy = "created_at"
	}
	return f
}

// Offset retorna el desplazamiento de la página (filtro ya normalizado).
func (f ListFilter) Offset() int {
	page := min(max(f.Page, 1), MaxPage)
	size := min(max(f.PageSize, 0), MaxPageSize)
	return (page - 1) * size
}

// Page es una página de resultados.
type Page[T any] struct {
	Items    []T `json:"items"`
	Total    int `json:"total"`
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
}

// CRUD es el contrato base de los repositorios del plano de datos.
type CRUD[T any] interface {
	// Get retorna ErrNotFound si no existe o pertenece a otro tenant.
	Get(ctx context.Context, tenantID, id string) (*T, error)
	Create(ctx context.Context, v *T) error
	// Update reemplaza la fila completa. ErrNotFound si no existe.
	Update(ctx context.Context, v *T) error
	Delete(ctx context.Context, tenantID, id string) error
	List(ctx context.Context, tenantID string, f ListFilter) (Page[T], error)
}

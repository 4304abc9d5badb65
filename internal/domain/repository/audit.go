package repository

import (
	"context"
	"time"
)

// AuditEntry registra una mutación sobre un recurso del tenant.
type AuditEntry struct {
	ID         string         `json:"id"`
	TenantID   string         `json:"tenant_id"`
	ActorID    string         `json:"actor_id"`
	Action     string         `json:"action"`
	Resource   string         `json:"resource"`
	ResourceID string         `json:"resource_id"`
	Changes    map[string]any `json:"changes,omitempty"`
	IP         string         `json:"ip,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

// AuditFilter filtra el listado de auditoría.
type AuditFilter struct {
	Resource   string
	ResourceID string
	ActorID    string
	Page       int
	PageSize   int
}

// AuditRepository es append-only.
type AuditRepository interface {
	Append(ctx context.Context, e *AuditEntry) error
	// List ordena del más nuevo al más viejo.
	List(ctx context.Context, tenantID string, f AuditFilter) (Page[AuditEntry], error)
}

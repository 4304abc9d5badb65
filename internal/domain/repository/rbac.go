package repository

import (
	"context"
	"time"
)

// Permission es un permiso del catálogo, con nombre "resource:action".
type Permission struct {
	Name        string `json:"name"`
	Resource    string `json:"resource"`
	Action      string `json:"action"`
	Description string `json:"description"`
}

// Role es un rol de un tenant con sus permisos.
type Role struct {
	ID          string    `json:"id"`
	TenantID    string    `json:"tenant_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	System      bool      `json:"system"`
	Permissions []string  `json:"permissions"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// RoleInput son los datos para crear/actualizar un rol.
type RoleInput struct {
	Name        string
	Description string
	System      bool
}

// RBACRepository define operaciones sobre roles y permisos.
// Las reglas de negocio (roles sistema, catálogo, wildcards) viven en el
// service de rbac; el repositorio solo persiste.
type RBACRepository interface {
	// ─── Catálogo ───

	ListPermissions(ctx context.Context) ([]Permission, error)
	UpsertPermission(ctx context.Context, p Permission) error

	// ─── Roles ───

	// ListRoles lista los roles de un tenant ordenados por nombre.
	ListRoles(ctx context.Context, tenantID string) ([]Role, error)

	// GetRole obtiene un rol por nombre, con sus permisos.
	GetRole(ctx context.Context, tenantID, name string) (*Role, error)

	// CreateRole retorna ErrConflict si el nombre ya existe en el tenant.
	CreateRole(ctx context.Context, tenantID string, input RoleInput) (*Role, error)

	// UpdateRole cambia nombre y descripción.
	UpdateRole(ctx context.Context, tenantID, name string, input RoleInput) (*Role, error)

	DeleteRole(ctx context.Context, tenantID, name string) error

	// SetRolePermissions reemplaza el set de permisos del rol.
	SetRolePermissions(ctx context.Context, tenantID, name string, perms []string) error

	// GetRoleUsersCount retorna cuántos usuarios tienen asignado el rol.
	GetRoleUsersCount(ctx context.Context, tenantID, name string) (int, error)

	// ─── Asignaciones ───

	// AssignRole es idempotente.
	AssignRole(ctx context.Context, tenantID, userID, role string) error
	RemoveRole(ctx context.Context, tenantID, userID, role string) error

	// GetUserRoles retorna los nombres de rol del usuario, ordenados.
	GetUserRoles(ctx context.Context, tenantID, userID string) ([]string, error)

	// GetUserPermissions retorna la unión de permisos de sus roles (sin expandir wildcards).
	GetUserPermissions(ctx context.Context, tenantID, userID string) ([]string, error)

	// ListUsersWithPermission retorna los IDs de usuarios activos cuyos roles
	// incluyen alguno de los permisos dados, ordenados por ID.
	ListUsersWithPermission(ctx context.Context, tenantID string, anyOf []string) ([]string, error)
}

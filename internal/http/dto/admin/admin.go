// Package admin contiene DTOs para endpoints administrativos (tenants, usuarios, RBAC).
package admin

import (
	"github.com/razorzibra-dot/trialram-sub001/internal/http/services/admin"
	"github.com/razorzibra-dot/trialram-sub001/internal/http/services/rbac"
)

// ─── Tenants ───

// CreateTenantRequest es el body de POST /v1/admin/tenants.
type CreateTenantRequest struct {
	Slug          string `json:"slug"`
	Name          string `json:"name"`
	Plan          string `json:"plan"`
	AdminEmail    string `json:"admin_email"`
	AdminName     string `json:"admin_name"`
	AdminPassword string `json:"admin_password"`
}

func (r CreateTenantRequest) Input() admin.CreateTenantInput {
	return admin.CreateTenantInput{
		Slug: r.Slug, Name: r.Name, Plan: r.Plan,
		AdminEmail: r.AdminEmail, AdminName: r.AdminName, AdminPassword: r.AdminPassword,
	}
}

type UpdateTenantRequest struct {
	Name *string `json:"name"`
	Plan *string `json:"plan"`
}

func (r UpdateTenantRequest) Update() admin.TenantUpdate {
	return admin.TenantUpdate{Name: r.Name, Plan: r.Plan}
}

// ─── Users ───

type CreateUserRequest struct {
	Email    string   `json:"email"`
	Name     string   `json:"name"`
	Password string   `json:"password"`
	Roles    []string `json:"roles"`
	Active   *bool    `json:"active"`
}

func (r CreateUserRequest) Input() admin.UserInput {
	return admin.UserInput{Email: r.Email, Name: r.Name, Password: r.Password, Roles: r.Roles, Active: r.Active}
}

type UpdateUserRequest struct {
	Email    *string `json:"email"`
	Name     *string `json:"name"`
	Password *string `json:"password"`
	Active   *bool   `json:"active"`
}

func (r UpdateUserRequest) Update() admin.UserUpdate {
	return admin.UserUpdate{Email: r.Email, Name: r.Name, Password: r.Password, Active: r.Active}
}

// ─── RBAC ───

// CreateRoleRequest es el body de POST /v1/rbac/roles.
type CreateRoleRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Permissions []string `json:"permissions"`
}

func (r CreateRoleRequest) Input() rbac.RoleInput {
	return rbac.RoleInput{Name: r.Name, Description: r.Description, Permissions: r.Permissions}
}

type UpdateRoleRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

func (r UpdateRoleRequest) Update() rbac.RoleUpdate {
	return rbac.RoleUpdate{Name: r.Name, Description: r.Description}
}

// RolePermissionsRequest reemplaza el set de permisos de un rol.
type RolePermissionsRequest struct {
	Permissions []string `json:"permissions"`
}

// UserRolesRequest asigna (add) y revoca (remove) roles de un usuario.
type UserRolesRequest struct {
	Add    []string `json:"add"`
	Remove []string `json:"remove"`
}

// UserRolesResponse representa los roles de un usuario.
type UserRolesResponse struct {
	UserID string   `json:"user_id"`
	Roles  []string `json:"roles"`
}

package admin

import (
	"net/http"

	"github.com/razorzibra-dot/trialram-sub001/internal/domain/repository"
	dto "github.com/razorzibra-dot/trialram-sub001/internal/http/dto/admin"
	"github.com/razorzibra-dot/trialram-sub001/internal/http/helpers"
	"github.com/razorzibra-dot/trialram-sub001/internal/http/services/rbac"
	"github.com/razorzibra-dot/trialram-sub001/internal/observability/logger"
)

// RBACController maneja las rutas /v1/rbac
type RBACController struct {
	service rbac.Service
}

// NewRBACController crea un nuevo controller RBAC.
func NewRBACController(service rbac.Service) *RBACController {
	return &RBACController{service: service}
}

// ListPermissions maneja GET /v1/rbac/permissions
func (c *RBACController) ListPermissions(w http.ResponseWriter, r *http.Request) {
	log := opLogger(r, "RBACController.ListPermissions")
	perms, err := c.service.ListPermissions(r.Context())
	if err != nil {
		writeError(w, log, err)
		return
	}
	if perms == nil {
		perms = []repository.Permission{}
	}
	helpers.WriteJSON(w, http.StatusOK, map[string]any{"items": perms})
}

// ListRoles maneja GET /v1/rbac/roles
func (c *RBACController) ListRoles(w http.ResponseWriter, r *http.Request) {
	log := opLogger(r, "RBACController.ListRoles")
	tda, ok := tenantFrom(w, r)
	if !ok {
		return
	}
	roles, err := c.service.ListRoles(r.Context(), tda)
	if err != nil {
		writeError(w, log, err)
		return
	}
	if roles == nil {
		roles = []repository.Role{}
	}
	helpers.WriteJSON(w, http.StatusOK, map[string]any{"items": roles})
}

// GetRole maneja GET /v1/rbac/roles/{name}
func (c *RBACController) GetRole(w http.ResponseWriter, r *http.Request) {
	log := opLogger(r, "RBACController.GetRole")
	tda, ok := tenantFrom(w, r)
	if !ok {
		return
	}
	role, err := c.service.GetRole(r.Context(), tda, helpers.PathParam(r, "name"))
	if err != nil {
		writeError(w, log, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, role)
}

// CreateRole maneja POST /v1/rbac/roles
func (c *RBACController) CreateRole(w http.ResponseWriter, r *http.Request) {
	log := opLogger(r, "RBACController.CreateRole")
	tda, ok := tenantFrom(w, r)
	if !ok {
		return
	}
	var req dto.CreateRoleRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	role, err := c.service.CreateRole(r.Context(), tda, req.Input())
	if err != nil {
		writeError(w, log, err)
		return
	}
	log.Info("role created", logger.String("role", role.Name))
	helpers.Created(w, "/v1/rbac/roles/"+role.Name, role)
}

// UpdateRole maneja PATCH /v1/rbac/roles/{name}
func (c *RBACController) UpdateRole(w http.ResponseWriter, r *http.Request) {
	log := opLogger(r, "RBACController.UpdateRole")
	tda, ok := tenantFrom(w, r)
	if !ok {
		return
	}
	var req dto.UpdateRoleRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	role, err := c.service.UpdateRole(r.Context(), tda, helpers.PathParam(r, "name"), req.Update())
	if err != nil {
		writeError(w, log, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, role)
}

// DeleteRole maneja DELETE /v1/rbac/roles/{name}
func (c *RBACController) DeleteRole(w http.ResponseWriter, r *http.Request) {
	log := opLogger(r, "RBACController.DeleteRole")
	tda, ok := tenantFrom(w, r)
	if !ok {
		return
	}
	if err := c.service.DeleteRole(r.Context(), tda, helpers.PathParam(r, "name")); err != nil {
		writeError(w, log, err)
		return
	}
	helpers.NoContent(w)
}

// SetRolePermissions maneja PUT /v1/rbac/roles/{name}/permissions
func (c *RBACController) SetRolePermissions(w http.ResponseWriter, r *http.Request) {
	log := opLogger(r, "RBACController.SetRolePermissions")
	tda, ok := tenantFrom(w, r)
	if !ok {
		return
	}
	var req dto.RolePermissionsRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	role, err := c.service.SetRolePermissions(r.Context(), tda, helpers.PathParam(r, "name"), req.Permissions)
	if err != nil {
		writeError(w, log, err)
		return
	}
	log.Info("role permissions updated", logger.String("role", role.Name), logger.Count(len(role.Permissions)))
	helpers.WriteJSON(w, http.StatusOK, role)
}

// GetUserRoles maneja GET /v1/rbac/users/{id}/roles
func (c *RBACController) GetUserRoles(w http.ResponseWriter, r *http.Request) {
	log := opLogger(r, "RBACController.GetUserRoles")
	tda, ok := tenantFrom(w, r)
	if !ok {
		return
	}
	userID, ok := helpers.PathID(w, r, "id")
	if !ok {
		return
	}
	roles, err := c.service.GetUserRoles(r.Context(), tda, userID)
	if err != nil {
		writeError(w, log, err)
		return
	}
	if roles == nil {
		roles = []string{}
	}
	helpers.WriteJSON(w, http.StatusOK, dto.UserRolesResponse{UserID: userID, Roles: roles})
}

// UpdateUserRoles maneja POST /v1/rbac/users/{id}/roles: primero asigna, luego revoca.
func (c *RBACController) UpdateUserRoles(w http.ResponseWriter, r *http.Request) {
	log := opLogger(r, "RBACController.UpdateUserRoles")
	tda, ok := tenantFrom(w, r)
	if !ok {
		return
	}
	userID, ok := helpers.PathID(w, r, "id")
	if !ok {
		return
	}
	var req dto.UserRolesRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}

	ctx := r.Context()
	roles, err := c.service.GetUserRoles(ctx, tda, userID)
	if err != nil {
		writeError(w, log, err)
		return
	}
	if len(req.Add) > 0 {
		if roles, err = c.service.AssignRoles(ctx, tda, userID, req.Add); err != nil {
			writeError(w, log, err)
			return
		}
	}
	if len(req.Remove) > 0 {
		if roles, err = c.service.RevokeRoles(ctx, tda, userID, req.Remove); err != nil {
			writeError(w, log, err)
			return
		}
	}
	if roles == nil {
		roles = []string{}
	}

	log.Info("user roles updated", logger.UserID(userID))
	helpers.WriteJSON(w, http.StatusOK, dto.UserRolesResponse{UserID: userID, Roles: roles})
}

package admin

import (
	"net/http"

	"github.com/razorzibra-dot/trialram-sub001/internal/domain/repository"
	dto "github.com/razorzibra-dot/trialram-sub001/internal/http/dto/admin"
	"github.com/razorzibra-dot/trialram-sub001/internal/http/helpers"
	svc "github.com/razorzibra-dot/trialram-sub001/internal/http/services/admin"
	"github.com/razorzibra-dot/trialram-sub001/internal/observability/logger"
)

// TenantsController maneja las rutas /v1/admin/tenants (solo super admin).
// {id} acepta slug o ID.
type TenantsController struct {
	service svc.TenantsService
}

func NewTenantsController(service svc.TenantsService) *TenantsController {
	return &TenantsController{service: service}
}

// List maneja GET /v1/admin/tenants
func (c *TenantsController) List(w http.ResponseWriter, r *http.Request) {
	log := opLogger(r, "TenantsController.List")
	list, err := c.service.List(r.Context())
	if err != nil {
		writeError(w, log, err)
		return
	}
	if list == nil {
		list = []repository.Tenant{}
	}
	helpers.WriteJSON(w, http.StatusOK, map[string]any{"items": list})
}

// Get maneja GET /v1/admin/tenants/{id}
func (c *TenantsController) Get(w http.ResponseWriter, r *http.Request) {
	log := opLogger(r, "TenantsController.Get")
	t, err := c.service.Get(r.Context(), helpers.PathParam(r, "id"))
	if err != nil {
		writeError(w, log, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, t)
}

// Create maneja POST /v1/admin/tenants: crea el tenant, siembra roles y
// reference data, y da de alta el admin inicial.
func (c *TenantsController) Create(w http.ResponseWriter, r *http.Request) {
	log := opLogger(r, "TenantsController.Create")
	var req dto.CreateTenantRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	res, err := c.service.Create(r.Context(), req.Input())
	if err != nil {
		writeError(w, log, err)
		return
	}
	log.Info("tenant created", logger.TenantID(res.Tenant.ID), logger.TenantSlug(res.Tenant.Slug))
	helpers.Created(w, "/v1/admin/tenants/"+res.Tenant.ID, res)
}

// Update maneja PATCH /v1/admin/tenants/{id}
func (c *TenantsController) Update(w http.ResponseWriter, r *http.Request) {
	log := opLogger(r, "TenantsController.Update")
	var req dto.UpdateTenantRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	t, err := c.service.Update(r.Context(), helpers.PathParam(r, "id"), req.Update())
	if err != nil {
		writeError(w, log, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, t)
}

// Suspend maneja POST /v1/admin/tenants/{id}/suspend
func (c *TenantsController) Suspend(w http.ResponseWriter, r *http.Request) {
	log := opLogger(r, "TenantsController.Suspend")
	t, err := c.service.Suspend(r.Context(), helpers.PathParam(r, "id"))
	if err != nil {
		writeError(w, log, err)
		return
	}
	log.Info("tenant suspended", logger.TenantID(t.ID))
	helpers.WriteJSON(w, http.StatusOK, t)
}

// Activate maneja POST /v1/admin/tenants/{id}/activate
func (c *TenantsController) Activate(w http.ResponseWriter, r *http.Request) {
	log := opLogger(r, "TenantsController.Activate")
	t, err := c.service.Activate(r.Context(), helpers.PathParam(r, "id"))
	if err != nil {
		writeError(w, log, err)
		return
	}
	log.Info("tenant activated", logger.TenantID(t.ID))
	helpers.WriteJSON(w, http.StatusOK, t)
}

// Delete maneja DELETE /v1/admin/tenants/{id}
func (c *TenantsController) Delete(w http.ResponseWriter, r *http.Request) {
	log := opLogger(r, "TenantsController.Delete")
	ref := helpers.PathParam(r, "id")
	if err := c.service.Delete(r.Context(), ref); err != nil {
		writeError(w, log, err)
		return
	}
	log.Info("tenant deleted", logger.Key(ref))
	helpers.NoContent(w)
}

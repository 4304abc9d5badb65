package admin

import (
	"net/http"

	dto "github.com/razorzibra-dot/trialram-sub001/internal/http/dto/admin"
	httperrors "github.com/razorzibra-dot/trialram-sub001/internal/http/errors"
	"github.com/razorzibra-dot/trialram-sub001/internal/http/helpers"
	svc "github.com/razorzibra-dot/trialram-sub001/internal/http/services/admin"
	"github.com/razorzibra-dot/trialram-sub001/internal/observability/logger"
)

// UsersController maneja las rutas /v1/users del tenant.
type UsersController struct {
	service svc.UsersService
}

func NewUsersController(service svc.UsersService) *UsersController {
	return &UsersController{service: service}
}

// List maneja GET /v1/users
func (c *UsersController) List(w http.ResponseWriter, r *http.Request) {
	log := opLogger(r, "UsersController.List")
	tda, ok := tenantFrom(w, r)
	if !ok {
		return
	}
	f, err := helpers.ListFilter(r)
	if err != nil {
		httperrors.WriteError(w, err)
		return
	}
	page, err := c.service.List(r.Context(), tda, f)
	if err != nil {
		writeError(w, log, err)
		return
	}
	helpers.WritePage(w, page)
}

// Get maneja GET /v1/users/{id}
func (c *UsersController) Get(w http.ResponseWriter, r *http.Request) {
	log := opLogger(r, "UsersController.Get")
	tda, ok := tenantFrom(w, r)
	if !ok {
		return
	}
	id, ok := helpers.PathID(w, r, "id")
	if !ok {
		return
	}
	u, err := c.service.Get(r.Context(), tda, id)
	if err != nil {
		writeError(w, log, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, u)
}

// Create maneja POST /v1/users
func (c *UsersController) Create(w http.ResponseWriter, r *http.Request) {
	log := opLogger(r, "UsersController.Create")
	tda, ok := tenantFrom(w, r)
	if !ok {
		return
	}
	var req dto.CreateUserRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	u, err := c.service.Create(r.Context(), tda, req.Input())
	if err != nil {
		writeError(w, log, err)
		return
	}
	log.Info("user created", logger.UserID(u.ID))
	helpers.Created(w, "/v1/users/"+u.ID, u)
}

// Update maneja PATCH /v1/users/{id}
func (c *UsersController) Update(w http.ResponseWriter, r *http.Request) {
	log := opLogger(r, "UsersController.Update")
	tda, ok := tenantFrom(w, r)
	if !ok {
		return
	}
	id, ok := helpers.PathID(w, r, "id")
	if !ok {
		return
	}
	var req dto.UpdateUserRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	u, err := c.service.Update(r.Context(), tda, id, req.Update())
	if err != nil {
		writeError(w, log, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, u)
}

// Delete maneja DELETE /v1/users/{id}
func (c *UsersController) Delete(w http.ResponseWriter, r *http.Request) {
	log := opLogger(r, "UsersController.Delete")
	tda, ok := tenantFrom(w, r)
	if !ok {
		return
	}
	id, ok := helpers.PathID(w, r, "id")
	if !ok {
		return
	}
	if err := c.service.Delete(r.Context(), tda, id); err != nil {
		writeError(w, log, err)
		return
	}
	log.Info("user deleted", logger.UserID(id))
	helpers.NoContent(w)
}

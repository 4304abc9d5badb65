package crm

import (
	"net/http"

	dto "github.com/razorzibra-dot/trialram-sub001/internal/http/dto/crm"
	httperrors "github.com/razorzibra-dot/trialram-sub001/internal/http/errors"
	"github.com/razorzibra-dot/trialram-sub001/internal/http/helpers"
	"github.com/razorzibra-dot/trialram-sub001/internal/http/services/customers"
	"github.com/razorzibra-dot/trialram-sub001/internal/observability/logger"
)

// CustomersController maneja las rutas /v1/customers
type CustomersController struct {
	service customers.Service
}

func NewCustomersController(service customers.Service) *CustomersController {
	return &CustomersController{service: service}
}

// List maneja GET /v1/customers
func (c *CustomersController) List(w http.ResponseWriter, r *http.Request) {
	log := opLogger(r, "CustomersController.List")
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

// Get maneja GET /v1/customers/{id}
func (c *CustomersController) Get(w http.ResponseWriter, r *http.Request) {
	log := opLogger(r, "CustomersController.Get")
	tda, ok := tenantFrom(w, r)
	if !ok {
		return
	}
	id, ok := helpers.PathID(w, r, "id")
	if !ok {
		return
	}
	cu, err := c.service.Get(r.Context(), tda, id)
	if err != nil {
		writeError(w, log, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, cu)
}

// Create maneja POST /v1/customers
func (c *CustomersController) Create(w http.ResponseWriter, r *http.Request) {
	log := opLogger(r, "CustomersController.Create")
	tda, ok := tenantFrom(w, r)
	if !ok {
		return
	}
	var req dto.CustomerRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	cu, err := c.service.Create(r.Context(), tda, req.Input())
	if err != nil {
		writeError(w, log, err)
		return
	}
	log.Info("customer created", logger.EntityID(cu.ID))
	helpers.Created(w, "/v1/customers/"+cu.ID, cu)
}

// Update maneja PATCH /v1/customers/{id}
func (c *CustomersController) Update(w http.ResponseWriter, r *http.Request) {
	log := opLogger(r, "CustomersController.Update")
	tda, ok := tenantFrom(w, r)
	if !ok {
		return
	}
	id, ok := helpers.PathID(w, r, "id")
	if !ok {
		return
	}
	var req dto.CustomerUpdateRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	cu, err := c.service.Update(r.Context(), tda, id, req.Update())
	if err != nil {
		writeError(w, log, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, cu)
}

// Delete maneja DELETE /v1/customers/{id}
func (c *CustomersController) Delete(w http.ResponseWriter, r *http.Request) {
	log := opLogger(r, "CustomersController.Delete")
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
	log.Info("customer deleted", logger.EntityID(id))
	helpers.NoContent(w)
}

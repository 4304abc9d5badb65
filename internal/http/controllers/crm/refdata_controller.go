package crm

import (
	"net/http"
	"strconv"

	"github.com/razorzibra-dot/trialram-sub001/internal/domain/repository"
	dto "github.com/razorzibra-dot/trialram-sub001/internal/http/dto/crm"
	httperrors "github.com/razorzibra-dot/trialram-sub001/internal/http/errors"
	"github.com/razorzibra-dot/trialram-sub001/internal/http/helpers"
	"github.com/razorzibra-dot/trialram-sub001/internal/http/services/refdata"
)

// RefDataController maneja las rutas /v1/refdata
type RefDataController struct {
	service refdata.Service
}

func NewRefDataController(service refdata.Service) *RefDataController {
	return &RefDataController{service: service}
}

// Categories maneja GET /v1/refdata
func (c *RefDataController) Categories(w http.ResponseWriter, r *http.Request) {
	log := opLogger(r, "RefDataController.Categories")
	tda, ok := tenantFrom(w, r)
	if !ok {
		return
	}
	cats, err := c.service.Categories(r.Context(), tda)
	if err != nil {
		writeError(w, log, err)
		return
	}
	if cats == nil {
		cats = []string{}
	}
	helpers.WriteJSON(w, http.StatusOK, dto.ItemsResponse[string]{Items: cats})
}

// List maneja GET /v1/refdata/{category}?active=true
func (c *RefDataController) List(w http.ResponseWriter, r *http.Request) {
	log := opLogger(r, "RefDataController.List")
	tda, ok := tenantFrom(w, r)
	if !ok {
		return
	}
	onlyActive := false
	if v := r.URL.Query().Get("active"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			httperrors.WriteError(w, httperrors.ErrInvalidParameter.WithDetail("active must be a boolean"))
			return
		}
		onlyActive = b
	}
	items, err := c.service.List(r.Context(), tda, helpers.PathParam(r, "category"), onlyActive)
	if err != nil {
		writeError(w, log, err)
		return
	}
	if items == nil {
		items = []repository.RefItem{}
	}
	helpers.WriteJSON(w, http.StatusOK, dto.ItemsResponse[repository.RefItem]{Items: items})
}

// Get maneja GET /v1/refdata/{category}/{key}
func (c *RefDataController) Get(w http.ResponseWriter, r *http.Request) {
	log := opLogger(r, "RefDataController.Get")
	tda, ok := tenantFrom(w, r)
	if !ok {
		return
	}
	it, err := c.service.Get(r.Context(), tda, helpers.PathParam(r, "category"), helpers.PathParam(r, "key"))
	if err != nil {
		writeError(w, log, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, it)
}

// Create maneja POST /v1/refdata/{category}
func (c *RefDataController) Create(w http.ResponseWriter, r *http.Request) {
	log := opLogger(r, "RefDataController.Create")
	tda, ok := tenantFrom(w, r)
	if !ok {
		return
	}
	var req dto.RefItemRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	category := helpers.PathParam(r, "category")
	it, err := c.service.Create(r.Context(), tda, category, req.Input())
	if err != nil {
		writeError(w, log, err)
		return
	}
	helpers.Created(w, "/v1/refdata/"+it.Category+"/"+it.Key, it)
}

// Update maneja PATCH /v1/refdata/{category}/{key}
func (c *RefDataController) Update(w http.ResponseWriter, r *http.Request) {
	log := opLogger(r, "RefDataController.Update")
	tda, ok := tenantFrom(w, r)
	if !ok {
		return
	}
	var req dto.RefItemUpdateRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	it, err := c.service.Update(r.Context(), tda, helpers.PathParam(r, "category"), helpers.PathParam(r, "key"), req.Update())
	if err != nil {
		writeError(w, log, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, it)
}

// Delete maneja DELETE /v1/refdata/{category}/{key}
func (c *RefDataController) Delete(w http.ResponseWriter, r *http.Request) {
	log := opLogger(r, "RefDataController.Delete")
	tda, ok := tenantFrom(w, r)
	if !ok {
		return
	}
	if err := c.service.Delete(r.Context(), tda, helpers.PathParam(r, "category"), helpers.PathParam(r, "key")); err != nil {
		writeError(w, log, err)
		return
	}
	helpers.NoContent(w)
}

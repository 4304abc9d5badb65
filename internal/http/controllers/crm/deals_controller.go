package crm

import (
	"net/http"

	dto "github.com/razorzibra-dot/trialram-sub001/internal/http/dto/crm"
	httperrors "github.com/razorzibra-dot/trialram-sub001/internal/http/errors"
	"github.com/razorzibra-dot/trialram-sub001/internal/http/helpers"
	"github.com/razorzibra-dot/trialram-sub001/internal/http/services/deals"
	"github.com/razorzibra-dot/trialram-sub001/internal/observability/logger"
)

// DealsController maneja las rutas /v1/deals
type DealsController struct {
	service deals.Service
}

func NewDealsController(service deals.Service) *DealsController {
	return &DealsController{service: service}
}

// List maneja GET /v1/deals (status filtra por stage).
func (c *DealsController) List(w http.ResponseWriter, r *http.Request) {
	log := opLogger(r, "DealsController.List")
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

// Get maneja GET /v1/deals/{id}
func (c *DealsController) Get(w http.ResponseWriter, r *http.Request) {
	log := opLogger(r, "DealsController.Get")
	tda, ok := tenantFrom(w, r)
	if !ok {
		return
	}
	id, ok := helpers.PathID(w, r, "id")
	if !ok {
		return
	}
	d, err := c.service.Get(r.Context(), tda, id)
	if err != nil {
		writeError(w, log, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, d)
}

// Create maneja POST /v1/deals
func (c *DealsController) Create(w http.ResponseWriter, r *http.Request) {
	log := opLogger(r, "DealsController.Create")
	tda, ok := tenantFrom(w, r)
	if !ok {
		return
	}
	var req dto.DealRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	d, err := c.service.Create(r.Context(), tda, req.Input())
	if err != nil {
		writeError(w, log, err)
		return
	}
	log.Info("deal created", logger.EntityID(d.ID), logger.UserID(d.OwnerID))
	helpers.Created(w, "/v1/deals/"+d.ID, d)
}

// Update maneja PATCH /v1/deals/{id}
func (c *DealsController) Update(w http.ResponseWriter, r *http.Request) {
	log := opLogger(r, "DealsController.Update")
	tda, ok := tenantFrom(w, r)
	if !ok {
		return
	}
	id, ok := helpers.PathID(w, r, "id")
	if !ok {
		return
	}
	var req dto.DealUpdateRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	d, err := c.service.Update(r.Context(), tda, id, req.Update())
	if err != nil {
		writeError(w, log, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, d)
}

// Delete maneja DELETE /v1/deals/{id}
func (c *DealsController) Delete(w http.ResponseWriter, r *http.Request) {
	log := opLogger(r, "DealsController.Delete")
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
	helpers.NoContent(w)
}

// MoveStage maneja POST /v1/deals/{id}/stage
func (c *DealsController) MoveStage(w http.ResponseWriter, r *http.Request) {
	log := opLogger(r, "DealsController.MoveStage")
	tda, ok := tenantFrom(w, r)
	if !ok {
		return
	}
	id, ok := helpers.PathID(w, r, "id")
	if !ok {
		return
	}
	var req dto.StageRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	d, err := c.service.MoveStage(r.Context(), tda, id, req.Stage)
	if err != nil {
		writeError(w, log, err)
		return
	}
	log.Info("deal stage moved", logger.EntityID(id), logger.String("stage", d.Stage))
	helpers.WriteJSON(w, http.StatusOK, d)
}

// Pipeline maneja GET /v1/deals/pipeline
func (c *DealsController) Pipeline(w http.ResponseWriter, r *http.Request) {
	log := opLogger(r, "DealsController.Pipeline")
	tda, ok := tenantFrom(w, r)
	if !ok {
		return
	}
	p, err := c.service.Pipeline(r.Context(), tda)
	if err != nil {
		writeError(w, log, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, p)
}

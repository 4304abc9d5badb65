package crm

import (
	"net/http"

	dto "github.com/razorzibra-dot/trialram-sub001/internal/http/dto/crm"
	httperrors "github.com/razorzibra-dot/trialram-sub001/internal/http/errors"
	"github.com/razorzibra-dot/trialram-sub001/internal/http/helpers"
	"github.com/razorzibra-dot/trialram-sub001/internal/http/services/opportunities"
	"github.com/razorzibra-dot/trialram-sub001/internal/observability/logger"
)

// OpportunitiesController maneja las rutas /v1/opportunities
type OpportunitiesController struct {
	service opportunities.Service
}

func NewOpportunitiesController(service opportunities.Service) *OpportunitiesController {
	return &OpportunitiesController{service: service}
}

func (c *OpportunitiesController) List(w http.ResponseWriter, r *http.Request) {
	log := opLogger(r, "OpportunitiesController.List")
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

func (c *OpportunitiesController) Get(w http.ResponseWriter, r *http.Request) {
	log := opLogger(r, "OpportunitiesController.Get")
	tda, ok := tenantFrom(w, r)
	if !ok {
		return
	}
	id, ok := helpers.PathID(w, r, "id")
	if !ok {
		return
	}
	o, err := c.service.Get(r.Context(), tda, id)
	if err != nil {
		writeError(w, log, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, o)
}

func (c *OpportunitiesController) Create(w http.ResponseWriter, r *http.Request) {
	log := opLogger(r, "OpportunitiesController.Create")
	tda, ok := tenantFrom(w, r)
	if !ok {
		return
	}
	var req dto.OpportunityRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	o, err := c.service.Create(r.Context(), tda, req.Input())
	if err != nil {
		writeError(w, log, err)
		return
	}
	helpers.Created(w, "/v1/opportunities/"+o.ID, o)
}

func (c *OpportunitiesController) Update(w http.ResponseWriter, r *http.Request) {
	log := opLogger(r, "OpportunitiesController.Update")
	tda, ok := tenantFrom(w, r)
	if !ok {
		return
	}
	id, ok := helpers.PathID(w, r, "id")
	if !ok {
		return
	}
	var req dto.OpportunityUpdateRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	o, err := c.service.Update(r.Context(), tda, id, req.Update())
	if err != nil {
		writeError(w, log, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, o)
}

func (c *OpportunitiesController) Delete(w http.ResponseWriter, r *http.Request) {
	log := opLogger(r, "OpportunitiesController.Delete")
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

// Convert maneja POST /v1/opportunities/{id}/convert
func (c *OpportunitiesController) Convert(w http.ResponseWriter, r *http.Request) {
	log := opLogger(r, "OpportunitiesController.Convert")
	tda, ok := tenantFrom(w, r)
	if !ok {
		return
	}
	id, ok := helpers.PathID(w, r, "id")
	if !ok {
		return
	}
	o, d, err := c.service.Convert(r.Context(), tda, id)
	if err != nil {
		writeError(w, log, err)
		return
	}
	log.Info("opportunity converted", logger.EntityID(id), logger.String("deal_id", d.ID))
	helpers.WriteJSON(w, http.StatusOK, dto.ConvertResponse{Opportunity: *o, Deal: *d})
}

// MarkLost maneja POST /v1/opportunities/{id}/lost
func (c *OpportunitiesController) MarkLost(w http.ResponseWriter, r *http.Request) {
	log := opLogger(r, "OpportunitiesController.MarkLost")
	tda, ok := tenantFrom(w, r)
	if !ok {
		return
	}
	id, ok := helpers.PathID(w, r, "id")
	if !ok {
		return
	}
	o, err := c.service.MarkLost(r.Context(), tda, id)
	if err != nil {
		writeError(w, log, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, o)
}

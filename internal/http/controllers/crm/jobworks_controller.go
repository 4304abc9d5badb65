package crm

import (
	"net/http"

	dto "github.com/razorzibra-dot/trialram-sub001/internal/http/dto/crm"
	httperrors "github.com/razorzibra-dot/trialram-sub001/internal/http/errors"
	"github.com/razorzibra-dot/trialram-sub001/internal/http/helpers"
	"github.com/razorzibra-dot/trialram-sub001/internal/http/services/jobworks"
)

// JobWorksController maneja las rutas /v1/jobworks
type JobWorksController struct {
	service jobworks.Service
}

func NewJobWorksController(service jobworks.Service) *JobWorksController {
	return &JobWorksController{service: service}
}

func (c *JobWorksController) List(w http.ResponseWriter, r *http.Request) {
	log := opLogger(r, "JobWorksController.List")
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

func (c *JobWorksController) Get(w http.ResponseWriter, r *http.Request) {
	log := opLogger(r, "JobWorksController.Get")
	tda, ok := tenantFrom(w, r)
	if !ok {
		return
	}
	id, ok := helpers.PathID(w, r, "id")
	if !ok {
		return
	}
	j, err := c.service.Get(r.Context(), tda, id)
	if err != nil {
		writeError(w, log, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, j)
}

func (c *JobWorksController) Create(w http.ResponseWriter, r *http.Request) {
	log := opLogger(r, "JobWorksController.Create")
	tda, ok := tenantFrom(w, r)
	if !ok {
		return
	}
	var req dto.JobWorkRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	j, err := c.service.Create(r.Context(), tda, req.Input())
	if err != nil {
		writeError(w, log, err)
		return
	}
	helpers.Created(w, "/v1/jobworks/"+j.ID, j)
}

func (c *JobWorksController) Update(w http.ResponseWriter, r *http.Request) {
	log := opLogger(r, "JobWorksController.Update")
	tda, ok := tenantFrom(w, r)
	if !ok {
		return
	}
	id, ok := helpers.PathID(w, r, "id")
	if !ok {
		return
	}
	var req dto.JobWorkUpdateRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	j, err := c.service.Update(r.Context(), tda, id, req.Update())
	if err != nil {
		writeError(w, log, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, j)
}

func (c *JobWorksController) Delete(w http.ResponseWriter, r *http.Request) {
	log := opLogger(r, "JobWorksController.Delete")
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

// SetStatus maneja POST /v1/jobworks/{id}/status
func (c *JobWorksController) SetStatus(w http.ResponseWriter, r *http.Request) {
	log := opLogger(r, "JobWorksController.SetStatus")
	tda, ok := tenantFrom(w, r)
	if !ok {
		return
	}
	id, ok := helpers.PathID(w, r, "id")
	if !ok {
		return
	}
	var req dto.StatusRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	j, err := c.service.SetStatus(r.Context(), tda, id, req.Status)
	if err != nil {
		writeError(w, log, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, j)
}

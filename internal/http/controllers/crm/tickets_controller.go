package crm

import (
	"net/http"

	dto "github.com/razorzibra-dot/trialram-sub001/internal/http/dto/crm"
	httperrors "github.com/razorzibra-dot/trialram-sub001/internal/http/errors"
	"github.com/razorzibra-dot/trialram-sub001/internal/http/helpers"
	"github.com/razorzibra-dot/trialram-sub001/internal/http/services/tickets"
	"github.com/razorzibra-dot/trialram-sub001/internal/observability/logger"
)

// TicketsController maneja las rutas /v1/tickets
type TicketsController struct {
	service tickets.Service
}

func NewTicketsController(service tickets.Service) *TicketsController {
	return &TicketsController{service: service}
}

// List maneja GET /v1/tickets (owner_id filtra por asignado).
func (c *TicketsController) List(w http.ResponseWriter, r *http.Request) {
	log := opLogger(r, "TicketsController.List")
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

func (c *TicketsController) Get(w http.ResponseWriter, r *http.Request) {
	log := opLogger(r, "TicketsController.Get")
	tda, ok := tenantFrom(w, r)
	if !ok {
		return
	}
	id, ok := helpers.PathID(w, r, "id")
	if !ok {
		return
	}
	t, err := c.service.Get(r.Context(), tda, id)
	if err != nil {
		writeError(w, log, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, t)
}

// Create maneja POST /v1/tickets. Sin assignee_id se asigna automáticamente.
func (c *TicketsController) Create(w http.ResponseWriter, r *http.Request) {
	log := opLogger(r, "TicketsController.Create")
	tda, ok := tenantFrom(w, r)
	if !ok {
		return
	}
	var req dto.TicketRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	t, err := c.service.Create(r.Context(), tda, req.Input())
	if err != nil {
		writeError(w, log, err)
		return
	}
	log.Info("ticket created", logger.EntityID(t.ID), logger.String("assignee_id", t.AssigneeID))
	helpers.Created(w, "/v1/tickets/"+t.ID, t)
}

func (c *TicketsController) Update(w http.ResponseWriter, r *http.Request) {
	log := opLogger(r, "TicketsController.Update")
	tda, ok := tenantFrom(w, r)
	if !ok {
		return
	}
	id, ok := helpers.PathID(w, r, "id")
	if !ok {
		return
	}
	var req dto.TicketUpdateRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	t, err := c.service.Update(r.Context(), tda, id, req.Update())
	if err != nil {
		writeError(w, log, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, t)
}

func (c *TicketsController) Delete(w http.ResponseWriter, r *http.Request) {
	log := opLogger(r, "TicketsController.Delete")
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

// SetStatus maneja POST /v1/tickets/{id}/status
func (c *TicketsController) SetStatus(w http.ResponseWriter, r *http.Request) {
	log := opLogger(r, "TicketsController.SetStatus")
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
	t, err := c.service.SetStatus(r.Context(), tda, id, req.Status)
	if err != nil {
		writeError(w, log, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, t)
}

// Assign maneja POST /v1/tickets/{id}/assign
func (c *TicketsController) Assign(w http.ResponseWriter, r *http.Request) {
	log := opLogger(r, "TicketsController.Assign")
	tda, ok := tenantFrom(w, r)
	if !ok {
		return
	}
	id, ok := helpers.PathID(w, r, "id")
	if !ok {
		return
	}
	var req dto.AssignRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	t, err := c.service.Assign(r.Context(), tda, id, req.UserID)
	if err != nil {
		writeError(w, log, err)
		return
	}
	log.Info("ticket assigned", logger.EntityID(id), logger.UserID(req.UserID))
	helpers.WriteJSON(w, http.StatusOK, t)
}

// EscalateCheck maneja POST /v1/tickets/{id}/escalate-check
func (c *TicketsController) EscalateCheck(w http.ResponseWriter, r *http.Request) {
	log := opLogger(r, "TicketsController.EscalateCheck")
	tda, ok := tenantFrom(w, r)
	if !ok {
		return
	}
	id, ok := helpers.PathID(w, r, "id")
	if !ok {
		return
	}
	esc, err := c.service.EscalateCheck(r.Context(), tda, id)
	if err != nil {
		writeError(w, log, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, esc)
}

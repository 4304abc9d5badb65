package crm

import (
	"context"
	"net/http"

	"github.com/razorzibra-dot/trialram-sub001/internal/domain/repository"
	dto "github.com/razorzibra-dot/trialram-sub001/internal/http/dto/crm"
	httperrors "github.com/razorzibra-dot/trialram-sub001/internal/http/errors"
	"github.com/razorzibra-dot/trialram-sub001/internal/http/helpers"
	"github.com/razorzibra-dot/trialram-sub001/internal/http/services/contracts"
	"github.com/razorzibra-dot/trialram-sub001/internal/observability/logger"
	"github.com/razorzibra-dot/trialram-sub001/internal/store"
)

// ContractsController maneja las rutas /v1/contracts
type ContractsController struct {
	service contracts.Service
}

func NewContractsController(service contracts.Service) *ContractsController {
	return &ContractsController{service: service}
}

func (c *ContractsController) List(w http.ResponseWriter, r *http.Request) {
	log := opLogger(r, "ContractsController.List")
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

func (c *ContractsController) Get(w http.ResponseWriter, r *http.Request) {
	log := opLogger(r, "ContractsController.Get")
	tda, ok := tenantFrom(w, r)
	if !ok {
		return
	}
	id, ok := helpers.PathID(w, r, "id")
	if !ok {
		return
	}
	ct, err := c.service.Get(r.Context(), tda, id)
	if err != nil {
		writeError(w, log, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, ct)
}

func (c *ContractsController) Create(w http.ResponseWriter, r *http.Request) {
	log := opLogger(r, "ContractsController.Create")
	tda, ok := tenantFrom(w, r)
	if !ok {
		return
	}
	var req dto.ContractRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	ct, err := c.service.Create(r.Context(), tda, req.Input())
	if err != nil {
		writeError(w, log, err)
		return
	}
	helpers.Created(w, "/v1/contracts/"+ct.ID, ct)
}

func (c *ContractsController) Update(w http.ResponseWriter, r *http.Request) {
	log := opLogger(r, "ContractsController.Update")
	tda, ok := tenantFrom(w, r)
	if !ok {
		return
	}
	id, ok := helpers.PathID(w, r, "id")
	if !ok {
		return
	}
	var req dto.ContractUpdateRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	ct, err := c.service.Update(r.Context(), tda, id, req.Update())
	if err != nil {
		writeError(w, log, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, ct)
}

func (c *ContractsController) Delete(w http.ResponseWriter, r *http.Request) {
	log := opLogger(r, "ContractsController.Delete")
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

type transitionFunc func(ctx context.Context, tda *store.TenantDataAccess, id string) (*repository.Contract, error)

// transition resuelve las rutas POST /v1/contracts/{id}/{submit|approve|reject|terminate}.
func (c *ContractsController) transition(op string, fn transitionFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := opLogger(r, "ContractsController."+op)
		tda, ok := tenantFrom(w, r)
		if !ok {
			return
		}
		id, ok := helpers.PathID(w, r, "id")
		if !ok {
			return
		}
		ct, err := fn(r.Context(), tda, id)
		if err != nil {
			writeError(w, log, err)
			return
		}
		log.Info("contract transitioned", logger.EntityID(id), logger.String("status", ct.Status))
		helpers.WriteJSON(w, http.StatusOK, ct)
	}
}

func (c *ContractsController) Submit() http.HandlerFunc {
	return c.transition("Submit", c.service.Submit)
}

func (c *ContractsController) Approve() http.HandlerFunc {
	return c.transition("Approve", c.service.Approve)
}

func (c *ContractsController) Reject() http.HandlerFunc {
	return c.transition("Reject", c.service.Reject)
}

func (c *ContractsController) Terminate() http.HandlerFunc {
	return c.transition("Terminate", c.service.Terminate)
}

// Expiring maneja GET /v1/contracts/expiring?days=30
func (c *ContractsController) Expiring(w http.ResponseWriter, r *http.Request) {
	log := opLogger(r, "ContractsController.Expiring")
	tda, ok := tenantFrom(w, r)
	if !ok {
		return
	}
	days, err := helpers.IntQuery(r, "days", 30)
	if err != nil {
		httperrors.WriteError(w, err)
		return
	}
	items, err := c.service.ExpiringWithin(r.Context(), tda, days)
	if err != nil {
		writeError(w, log, err)
		return
	}
	if items == nil {
		items = []repository.Contract{}
	}
	helpers.WriteJSON(w, http.StatusOK, dto.ItemsResponse[repository.Contract]{Items: items})
}

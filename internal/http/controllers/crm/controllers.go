// Package crm contiene los controllers de los recursos de negocio del tenant.
package crm

import (
	"net/http"

	"go.uber.org/zap"

	httperrors "github.com/razorzibra-dot/trialram-sub001/internal/http/errors"
	mw "github.com/razorzibra-dot/trialram-sub001/internal/http/middlewares"
	"github.com/razorzibra-dot/trialram-sub001/internal/http/services"
	"github.com/razorzibra-dot/trialram-sub001/internal/observability/logger"
	"github.com/razorzibra-dot/trialram-sub001/internal/store"
)

const tenantRequired = "tenant required"

// Controllers agrupa los controllers del dominio CRM.
type Controllers struct {
	Customers     *CustomersController
	Deals         *DealsController
	Opportunities *OpportunitiesController
	Contracts     *ContractsController
	Tickets       *TicketsController
	JobWorks      *JobWorksController
	RefData       *RefDataController
}

// NewControllers crea el agregador de controllers CRM.
func NewControllers(s *services.Services) *Controllers {
	return &Controllers{
		Customers:     NewCustomersController(s.Customers),
		Deals:         NewDealsController(s.Deals),
		Opportunities: NewOpportunitiesController(s.Opportunities),
		Contracts:     NewContractsController(s.Contracts),
		Tickets:       NewTicketsController(s.Tickets),
		JobWorks:      NewJobWorksController(s.JobWorks),
		RefData:       NewRefDataController(s.RefData),
	}
}

// ─── Helpers ───

func opLogger(r *http.Request, op string) *zap.Logger {
	return logger.From(r.Context()).With(logger.Layer("controller"), logger.Op(op))
}

func tenantFrom(w http.ResponseWriter, r *http.Request) (*store.TenantDataAccess, bool) {
	tda := mw.GetTenant(r.Context())
	if tda == nil {
		httperrors.WriteError(w, httperrors.ErrBadRequest.WithDetail(tenantRequired))
		return nil, false
	}
	return tda, true
}

// writeError traduce el error de dominio; los 5xx se loguean con detalle.
func writeError(w http.ResponseWriter, log *zap.Logger, err error) {
	appErr := httperrors.FromDomain(err)
	if appErr.HTTPStatus >= http.StatusInternalServerError {
		log.Error("request failed", logger.Err(err))
	} else {
		log.Debug("request rejected", logger.Err(err))
	}
	httperrors.WriteError(w, appErr)
}

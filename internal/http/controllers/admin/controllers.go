// Package admin contiene los controllers administrativos: tenants (super admin),
// usuarios, RBAC y auditoría del tenant.
package admin

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

// Controllers agrupa todos los controllers del dominio admin.
type Controllers struct {
	Tenants *TenantsController
	Users   *UsersController
	RBAC    *RBACController
	Audit   *AuditController
}

// NewControllers crea el agregador de controllers admin.
func NewControllers(s *services.Services) *Controllers {
	return &Controllers{
		Tenants: NewTenantsController(s.Admin.Tenants),
		Users:   NewUsersController(s.Admin.Users),
		RBAC:    NewRBACController(s.RBAC),
		Audit:   NewAuditController(s.Audit),
	}
}

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

func writeError(w http.ResponseWriter, log *zap.Logger, err error) {
	appErr := httperrors.FromDomain(err)
	if appErr.HTTPStatus >= http.StatusInternalServerError {
		log.Error("request failed", logger.Err(err))
	} else {
		log.Debug("request rejected", logger.Err(err))
	}
	httperrors.WriteError(w, appErr)
}

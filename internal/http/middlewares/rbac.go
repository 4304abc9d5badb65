package middlewares

import (
	"net/http"

	"github.com/razorzibra-dot/trialram-sub001/internal/claims"
	"github.com/razorzibra-dot/trialram-sub001/internal/http/errors"
	"github.com/razorzibra-dot/trialram-sub001/internal/http/services/common"
	"github.com/razorzibra-dot/trialram-sub001/internal/observability/logger"
)

// =================================================================================
// RBAC MIDDLEWARES
// =================================================================================

// RequirePerm verifica que el principal tenga perm en el tenant resuelto.
// Debe usarse después de RequireAuth y WithTenantResolution.
// Los super admins pasan siempre.
func RequirePerm(pc common.PermissionChecker, perm string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := claims.From(r.Context())
			if !ok {
				errors.WriteError(w, errors.ErrUnauthorized)
				return
			}
			if p.SuperAdmin {
				next.ServeHTTP(w, r)
				return
			}
			tda := GetTenant(r.Context())
			if tda == nil {
				errors.WriteError(w, errors.ErrBadRequest.WithDetail("tenant required"))
				return
			}

			allowed, err := pc.HasPermission(r.Context(), tda, p.UserID, perm)
			if err != nil {
				logger.From(r.Context()).Error("permission check failed",
					logger.Component("rbac"), logger.Permission(perm), logger.Err(err))
				errors.WriteError(w, errors.ErrInternalServerError.WithCause(err))
				return
			}
			if !allowed {
				errors.WriteError(w, errors.ErrForbidden.WithDetail("missing permission "+perm))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

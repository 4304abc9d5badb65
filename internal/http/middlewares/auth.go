package middlewares

import (
	stderrors "errors"
	"net/http"

	"github.com/razorzibra-dot/trialram-sub001/internal/claims"
	"github.com/razorzibra-dot/trialram-sub001/internal/http/errors"
	jwtx "github.com/razorzibra-dot/trialram-sub001/internal/jwt"
	"github.com/razorzibra-dot/trialram-sub001/internal/observability/logger"
)

// =================================================================================
// AUTHENTICATION MIDDLEWARES
// =================================================================================

// RequireAuth valida Authorization: Bearer <JWT> y guarda el Principal en el contexto.
// Si el token es inválido o no está presente, responde 401.
func RequireAuth(issuer *jwtx.Issuer) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := jwtx.BearerToken(r.Header.Get("Authorization"))
			if !ok {
				w.Header().Set("WWW-Authenticate", `Bearer realm="api", error="invalid_token", error_description="missing bearer token"`)
				errors.WriteError(w, errors.ErrTokenMissing)
				return
			}

			ac, err := issuer.Parse(raw)
			if err != nil {
				w.Header().Set("WWW-Authenticate", `Bearer realm="api", error="invalid_token"`)
				if stderrors.Is(err, jwtx.ErrExpired) {
					errors.WriteError(w, errors.ErrTokenExpired)
					return
				}
				errors.WriteError(w, errors.ErrTokenInvalid)
				return
			}

			ctx := claims.WithPrincipal(r.Context(), claims.Principal{
				UserID:     ac.UserID(),
				TenantID:   ac.TenantID,
				SuperAdmin: ac.SuperAdmin,
				Roles:      ac.Roles,
				IP:         claims.ClientIP(r.Context()),
			})
			ctx = logger.ToContext(ctx, logger.From(ctx).With(logger.UserID(ac.UserID())))

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireSuperAdmin permite el paso solo a super admins. Debe usarse después de RequireAuth.
func RequireSuperAdmin() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := claims.From(r.Context())
			if !ok {
				errors.WriteError(w, errors.ErrUnauthorized)
				return
			}
			if !p.SuperAdmin {
				errors.WriteError(w, errors.ErrForbidden.WithDetail("super admin required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

package middlewares

import (
	"context"
	"net/http"
	"strings"

	"github.com/razorzibra-dot/trialram-sub001/internal/claims"
	"github.com/razorzibra-dot/trialram-sub001/internal/http/errors"
	"github.com/razorzibra-dot/trialram-sub001/internal/observability/logger"
	"github.com/razorzibra-dot/trialram-sub001/internal/store"
)

// =================================================================================
// TENANT RESOLVER
// =================================================================================

// TenantResolver define cómo obtener el tenant (slug o ID) de un request.
type TenantResolver func(r *http.Request) string

// HeaderTenantResolver resuelve usando un header específico.
func HeaderTenantResolver(headerName string) TenantResolver {
	if headerName == "" {
		headerName = "X-Tenant-ID"
	}
	return func(r *http.Request) string {
		return strings.TrimSpace(r.Header.Get(headerName))
	}
}

// PrincipalTenantResolver resuelve con el tenant del token (claim tid).
func PrincipalTenantResolver() TenantResolver {
	return func(r *http.Request) string {
		if p, ok := claims.From(r.Context()); ok {
			return p.TenantID
		}
		return ""
	}
}

// ChainResolvers combina múltiples resolvers, retornando el primer resultado no vacío.
func ChainResolvers(resolvers ...TenantResolver) TenantResolver {
	return func(r *http.Request) string {
		for _, resolver := range resolvers {
			if slug := resolver(r); slug != "" {
				return slug
			}
		}
		return ""
	}
}

// =================================================================================
// TENANT MIDDLEWARE
// =================================================================================

// TenantLoader carga el data access de un tenant (implementado por store.Manager).
type TenantLoader interface {
	ForTenant(ctx context.Context, slugOrID string) (*store.TenantDataAccess, error)
}

// TenantMiddlewareConfig configura el middleware de tenant.
type TenantMiddlewareConfig struct {
	Loader   TenantLoader
	Resolver TenantResolver
}

// WithTenantResolution resuelve el tenant del request y lo inyecta en el contexto.
// Orden por defecto: X-Tenant-ID -> X-Tenant-Slug -> claim tid.
// Debe ir después de RequireAuth: un usuario solo puede operar sobre su propio
// tenant salvo que sea super admin (403 TENANT_MISMATCH).
func WithTenantResolution(cfg TenantMiddlewareConfig) Middleware {
	resolver := cfg.Resolver
	if resolver == nil {
		resolver = ChainResolvers(
			HeaderTenantResolver("X-Tenant-ID"),
			HeaderTenantResolver("X-Tenant-Slug"),
			PrincipalTenantResolver(),
		)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ref := resolver(r)
			if ref == "" {
				errors.WriteError(w, errors.ErrBadRequest.WithDetail("missing tenant identifier"))
				return
			}
			if cfg.Loader == nil {
				errors.WriteError(w, errors.ErrServiceUnavailable.WithDetail("tenant store not configured"))
				return
			}

			log := logger.From(r.Context())
			tda, err := cfg.Loader.ForTenant(r.Context(), ref)
			if err != nil {
				switch {
				case store.IsTenantNotFound(err):
					errors.WriteError(w, errors.ErrTenantNotFound.WithDetail(ref))
				default:
					log.Warn("tenant load failed", logger.Component("tenant"), logger.Key(ref), logger.Err(err))
					errors.WriteError(w, err)
				}
				return
			}

			if p, ok := claims.From(r.Context()); ok && !p.SuperAdmin && p.TenantID != tda.ID() {
				log.Warn("cross-tenant request refused",
					logger.Component("tenant"),
					logger.TenantID(tda.ID()),
					logger.String("token_tenant", p.TenantID),
				)
				errors.WriteError(w, errors.ErrTenantMismatch)
				return
			}

			ctx := WithTenant(r.Context(), tda)
			ctx = logger.ToContext(ctx, log.With(logger.TenantID(tda.ID()), logger.TenantSlug(tda.Slug())))

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireTenant verifica que haya un tenant en el contexto.
func RequireTenant() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if GetTenant(r.Context()) == nil {
				errors.WriteError(w, errors.ErrBadRequest.WithDetail("tenant required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

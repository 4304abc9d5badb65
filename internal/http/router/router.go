// Package router arma el árbol de rutas chi de la API.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/razorzibra-dot/trialram-sub001/internal/http/controllers"
	httperrors "github.com/razorzibra-dot/trialram-sub001/internal/http/errors"
	mw "github.com/razorzibra-dot/trialram-sub001/internal/http/middlewares"
	"github.com/razorzibra-dot/trialram-sub001/internal/http/services/common"
	jwtx "github.com/razorzibra-dot/trialram-sub001/internal/jwt"
	"github.com/razorzibra-dot/trialram-sub001/internal/rate"
)

// Deps contains every dependency the route tree needs.
type Deps struct {
	Controllers *controllers.Controllers

	Issuer      *jwtx.Issuer
	Tenants     mw.TenantLoader
	Permissions common.PermissionChecker

	// Optional
	APILimiter   rate.Limiter
	LoginLimiter rate.Limiter
	CORSOrigins  []string
	Metrics      http.Handler // /metrics
}

// New builds the HTTP handler.
//
// Global chain: request id -> logging -> recover -> metrics -> security headers -> CORS -> rate limit.
// Tenant routes add: auth -> tenant resolution -> permission.
func New(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(
		mw.WithRequestID(),
		mw.WithLogging(),
		mw.WithRecover(),
		mw.WithMetrics(),
		mw.WithSecurityHeaders(),
		mw.WithCORS(d.CORSOrigins),
		mw.WithRateLimit(mw.RateLimitConfig{
			Limiter:   d.APILimiter,
			Scope:     "api",
			Whitelist: []string{"/healthz", "/readyz", "/metrics"},
		}),
	)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httperrors.WriteError(w, httperrors.ErrRouteNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		httperrors.WriteError(w, httperrors.ErrMethodNotAllowed)
	})

	c := d.Controllers
	r.Get("/healthz", c.Health.Healthz)
	r.Get("/readyz", c.Health.Readyz)
	if d.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", d.Metrics)
	}

	r.Route("/v1", func(v1 chi.Router) {
		registerAuthRoutes(v1, d)

		// Rutas del tenant: todas autenticadas y con tenant resuelto.
		v1.Group(func(t chi.Router) {
			t.Use(
				mw.RequireAuth(d.Issuer),
				mw.WithTenantResolution(mw.TenantMiddlewareConfig{Loader: d.Tenants}),
			)
			registerCRMRoutes(t, d)
			registerAccessRoutes(t, d)
		})

		registerAdminRoutes(v1, d)
	})

	return r
}

func registerAuthRoutes(r chi.Router, d Deps) {
	c := d.Controllers.Auth
	r.With(mw.WithRateLimit(mw.RateLimitConfig{
		Limiter: d.LoginLimiter,
		Scope:   "login",
		KeyFunc: mw.IPPathRateKey,
	})).Post("/auth/login", c.Login)

	r.With(
		mw.RequireAuth(d.Issuer),
		mw.WithTenantResolution(mw.TenantMiddlewareConfig{Loader: d.Tenants}),
	).Get("/auth/me", c.Me)
}

// perm is shorthand for a permission guard.
func perm(d Deps, p string) func(http.Handler) http.Handler {
	return mw.RequirePerm(d.Permissions, p)
}

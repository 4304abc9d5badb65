package router

import (
	"github.com/go-chi/chi/v5"

	mw "github.com/razorzibra-dot/trialram-sub001/internal/http/middlewares"
)

// registerAccessRoutes: users, RBAC and audit of the current tenant.
func registerAccessRoutes(r chi.Router, d Deps) {
	c := d.Controllers.Admin

	r.Route("/users", func(r chi.Router) {
		crud(r, d, "users", c.Users)
	})

	r.Route("/rbac", func(r chi.Router) {
		r.With(perm(d, "roles:read")).Get("/permissions", c.RBAC.ListPermissions)

		r.With(perm(d, "roles:read")).Get("/roles", c.RBAC.ListRoles)
		r.With(perm(d, "roles:create")).Post("/roles", c.RBAC.CreateRole)
		r.With(perm(d, "roles:read")).Get("/roles/{name}", c.RBAC.GetRole)
		r.With(perm(d, "roles:update")).Patch("/roles/{name}", c.RBAC.UpdateRole)
		r.With(perm(d, "roles:delete")).Delete("/roles/{name}", c.RBAC.DeleteRole)
		r.With(perm(d, "roles:update")).Put("/roles/{name}/permissions", c.RBAC.SetRolePermissions)

		r.With(perm(d, "roles:read")).Get("/users/{id}/roles", c.RBAC.GetUserRoles)
		r.With(perm(d, "roles:update")).Post("/users/{id}/roles", c.RBAC.UpdateUserRoles)
	})

	r.With(perm(d, "audit:read")).Get("/audit", c.Audit.List)
}

// registerAdminRoutes: tenant administration, super admins only.
func registerAdminRoutes(r chi.Router, d Deps) {
	c := d.Controllers.Admin.Tenants

	r.Route("/admin/tenants", func(r chi.Router) {
		r.Use(mw.RequireAuth(d.Issuer), mw.RequireSuperAdmin())
		r.Get("/", c.List)
		r.Post("/", c.Create)
		r.Get("/{id}", c.Get)
		r.Patch("/{id}", c.Update)
		r.Delete("/{id}", c.Delete)
		r.Post("/{id}/suspend", c.Suspend)
		r.Post("/{id}/activate", c.Activate)
	})
}

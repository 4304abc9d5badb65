package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/razorzibra-dot/trialram-sub001/internal/http/services/rbac"
)

// crudHandlers is the common shape of a tenant resource controller.
type crudHandlers interface {
	List(http.ResponseWriter, *http.Request)
	Get(http.ResponseWriter, *http.Request)
	Create(http.ResponseWriter, *http.Request)
	Update(http.ResponseWriter, *http.Request)
	Delete(http.ResponseWriter, *http.Request)
}

// crud registers GET / POST on "/" and GET / PATCH / DELETE on "/{id}",
// guarded by <resource>:read|create|update|delete.
func crud(r chi.Router, d Deps, resource string, h crudHandlers) {
	r.With(perm(d, resource+":read")).Get("/", h.List)
	r.With(perm(d, resource+":create")).Post("/", h.Create)
	r.With(perm(d, resource+":read")).Get("/{id}", h.Get)
	r.With(perm(d, resource+":update")).Patch("/{id}", h.Update)
	r.With(perm(d, resource+":delete")).Delete("/{id}", h.Delete)
}

func registerCRMRoutes(r chi.Router, d Deps) {
	c := d.Controllers.CRM

	r.Route("/customers", func(r chi.Router) {
		crud(r, d, "customers", c.Customers)
	})

	r.Route("/deals", func(r chi.Router) {
		// antes de /{id} para que no lo capture el parámetro
		r.With(perm(d, "deals:read")).Get("/pipeline", c.Deals.Pipeline)
		crud(r, d, "deals", c.Deals)
		// deals:close se verifica en el service al cerrar
		r.With(perm(d, "deals:update")).Post("/{id}/stage", c.Deals.MoveStage)
	})

	r.Route("/opportunities", func(r chi.Router) {
		crud(r, d, "opportunities", c.Opportunities)
		r.With(perm(d, rbac.PermOpportunityConvert)).Post("/{id}/convert", c.Opportunities.Convert)
		r.With(perm(d, "opportunities:update")).Post("/{id}/lost", c.Opportunities.MarkLost)
	})

	r.Route("/contracts", func(r chi.Router) {
		r.With(perm(d, "contracts:read")).Get("/expiring", c.Contracts.Expiring)
		crud(r, d, "contracts", c.Contracts)
		r.With(perm(d, "contracts:update")).Post("/{id}/submit", c.Contracts.Submit())
		r.With(perm(d, rbac.PermContractsApprove)).Post("/{id}/approve", c.Contracts.Approve())
		r.With(perm(d, rbac.PermContractsApprove)).Post("/{id}/reject", c.Contracts.Reject())
		r.With(perm(d, "contracts:update")).Post("/{id}/terminate", c.Contracts.Terminate())
	})

	r.Route("/tickets", func(r chi.Router) {
		crud(r, d, "tickets", c.Tickets)
		r.With(perm(d, "tickets:update")).Post("/{id}/status", c.Tickets.SetStatus)
		r.With(perm(d, rbac.PermTicketsAssign)).Post("/{id}/assign", c.Tickets.Assign)
		r.With(perm(d, "tickets:update")).Post("/{id}/escalate-check", c.Tickets.EscalateCheck)
	})

	r.Route("/jobworks", func(r chi.Router) {
		crud(r, d, "jobworks", c.JobWorks)
		r.With(perm(d, "jobworks:update")).Post("/{id}/status", c.JobWorks.SetStatus)
	})

	r.Route("/refdata", func(r chi.Router) {
		r.With(perm(d, "refdata:read")).Get("/", c.RefData.Categories)
		r.With(perm(d, "refdata:read")).Get("/{category}", c.RefData.List)
		r.With(perm(d, "refdata:create")).Post("/{category}", c.RefData.Create)
		r.With(perm(d, "refdata:read")).Get("/{category}/{key}", c.RefData.Get)
		r.With(perm(d, "refdata:update")).Patch("/{category}/{key}", c.RefData.Update)
		r.With(perm(d, "refdata:delete")).Delete("/{category}/{key}", c.RefData.Delete)
	})
}

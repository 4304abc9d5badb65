// Package services agrupa todos los services del CRM.
// Este es el "composition root" de services: app.go arma Deps una vez y los
// controllers reciben el sub-service que necesitan.
//
//	svcs := services.New(services.Deps{Store: mgr, Issuer: issuer, Cache: c, ...})
//	svcs.Deals.MoveStage(ctx, tda, id, "proposal")
package services

import (
	"time"

	"github.com/razorzibra-dot/trialram-sub001/internal/audit"
	"github.com/razorzibra-dot/trialram-sub001/internal/cache"
	"github.com/razorzibra-dot/trialram-sub001/internal/email"
	"github.com/razorzibra-dot/trialram-sub001/internal/http/services/admin"
	"github.com/razorzibra-dot/trialram-sub001/internal/http/services/auth"
	"github.com/razorzibra-dot/trialram-sub001/internal/http/services/contracts"
	"github.com/razorzibra-dot/trialram-sub001/internal/http/services/customers"
	"github.com/razorzibra-dot/trialram-sub001/internal/http/services/deals"
	"github.com/razorzibra-dot/trialram-sub001/internal/http/services/jobworks"
	"github.com/razorzibra-dot/trialram-sub001/internal/http/services/opportunities"
	"github.com/razorzibra-dot/trialram-sub001/internal/http/services/rbac"
	"github.com/razorzibra-dot/trialram-sub001/internal/http/services/refdata"
	"github.com/razorzibra-dot/trialram-sub001/internal/http/services/tickets"
	jwtx "github.com/razorzibra-dot/trialram-sub001/internal/jwt"
	"github.com/razorzibra-dot/trialram-sub001/internal/rules/sla"
	"github.com/razorzibra-dot/trialram-sub001/internal/security/password"
	"github.com/razorzibra-dot/trialram-sub001/internal/store"
)

// Deps contiene las dependencias base para crear los services.
type Deps struct {
	// ─── Infraestructura ───
	Store  *store.Manager // Acceso a datos por tenant + control plane
	Issuer *jwtx.Issuer   // Emisor JWT
	Cache  cache.Client   // Cache de permisos y refdata (opcional)
	Mailer email.Sender   // Avisos de escalamiento (opcional)

	// ─── Configuración ───
	PermissionsTTL time.Duration
	RefDataTTL     time.Duration
	Password       password.Params
	PasswordPolicy password.Policy
	SLA            sla.Policy
}

// Services agrupa todos los sub-services por dominio.
type Services struct {
	Audit         *audit.Recorder
	Auth          auth.Service
	RBAC          rbac.Service
	Customers     customers.Service
	Deals         deals.Service
	Opportunities opportunities.Service
	Contracts     contracts.Service
	Tickets       tickets.Service
	JobWorks      jobworks.Service
	RefData       refdata.Service
	Admin         admin.Services
}

// New crea el agregador de services.
func New(d Deps) Services {
	rec := audit.NewRecorder(d.Store.Audit())
	rb := rbac.NewService(rbac.Deps{Catalog: d.Store.RBAC(), Cache: d.Cache, Audit: rec, PermsTTL: d.PermissionsTTL})
	rd := refdata.NewService(refdata.Deps{Cache: d.Cache, TTL: d.RefDataTTL, Audit: rec})
	dl := deals.NewService(deals.Deps{Directory: rb, Audit: rec})

	return Services{
		Audit: rec,
		Auth: auth.NewService(auth.Deps{
			Tenants: d.Store, Issuer: d.Issuer, RBAC: rb, Audit: rec, Password: d.Password,
		}),
		RBAC:          rb,
		Customers:     customers.NewService(customers.Deps{Audit: rec}),
		Deals:         dl,
		Opportunities: opportunities.NewService(opportunities.Deps{Deals: dl, Permissions: rb, Audit: rec}),
		Contracts:     contracts.NewService(contracts.Deps{Permissions: rb, Audit: rec}),
		Tickets: tickets.NewService(tickets.Deps{
			Directory: rb, Audit: rec, Mailer: d.Mailer, Policy: d.SLA,
		}),
		JobWorks: jobworks.NewService(jobworks.Deps{Audit: rec}),
		RefData:  rd,
		Admin: admin.NewServices(admin.Deps{
			ControlPlane: d.Store, RBAC: rb, RefData: rd, Audit: rec,
			Password: d.Password, Policy: d.PasswordPolicy,
		}),
	}
}

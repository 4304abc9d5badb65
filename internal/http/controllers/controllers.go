// Package controllers agrupa los controllers HTTP por dominio.
package controllers

import (
	"github.com/razorzibra-dot/trialram-sub001/internal/http/controllers/admin"
	"github.com/razorzibra-dot/trialram-sub001/internal/http/controllers/auth"
	"github.com/razorzibra-dot/trialram-sub001/internal/http/controllers/crm"
	"github.com/razorzibra-dot/trialram-sub001/internal/http/controllers/health"
	"github.com/razorzibra-dot/trialram-sub001/internal/http/services"
)

// Controllers es el agregador que recibe el router.
type Controllers struct {
	Auth   *auth.Controller
	CRM    *crm.Controllers
	Admin  *admin.Controllers
	Health *health.Controller
}

// New crea todos los controllers a partir de los services.
func New(s *services.Services, hc *health.Controller) *Controllers {
	return &Controllers{
		Auth:   auth.NewController(s.Auth),
		CRM:    crm.NewControllers(s),
		Admin:  admin.NewControllers(s),
		Health: hc,
	}
}

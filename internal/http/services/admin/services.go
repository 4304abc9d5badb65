// Package admin contiene la administración de tenants (super admin) y de
// usuarios de un tenant.
package admin

import (
	"github.com/razorzibra-dot/trialram-sub001/internal/audit"
	"github.com/razorzibra-dot/trialram-sub001/internal/http/services/common"
	"github.com/razorzibra-dot/trialram-sub001/internal/http/services/rbac"
	"github.com/razorzibra-dot/trialram-sub001/internal/security/password"
)

// Deps contiene las dependencias para crear los services admin.
type Deps struct {
	ControlPlane ControlPlane
	RBAC         rbac.Service
	RefData      TenantSeeder
	Audit        *audit.Recorder
	Password     password.Params
	Policy       password.Policy
	Clock        common.Clock
}

// Services agrupa los services del dominio admin.
type Services struct {
	Tenants TenantsService
	Users   UsersService
}

// NewServices crea el agregador de services admin.
func NewServices(d Deps) Services {
	if d.Password.KeyLen == 0 {
		d.Password = password.Default
	}
	if d.Policy.MinLength == 0 {
		d.Policy = password.DefaultPolicy
	}
	users := NewUsersService(d)
	return Services{
		Tenants: NewTenantsService(d, users),
		Users:   users,
	}
}

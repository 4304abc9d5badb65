package rbac

import (
	"slices"
	"strings"

	"github.com/razorzibra-dot/trialram-sub001/internal/domain/repository"
)

// Recursos y acciones del catálogo.
var (
	Resources = []string{
		"customers", "deals", "opportunities", "contracts", "tickets",
		"jobworks", "refdata", "users", "roles", "audit",
	}
	Actions = []string{"read", "create", "update", "delete"}

	// businessResources son los recursos que un agent puede leer.
	businessResources = []string{
		"customers", "deals", "opportunities", "contracts", "tickets", "jobworks", "refdata",
	}
)

// Permisos especiales fuera del CRUD.
const (
	PermTicketsAssign      = "tickets:assign"
	PermDealsClose         = "deals:close"
	PermContractsApprove   = "contracts:approve"
	PermOpportunityConvert = "opportunities:convert"
)

// Wildcard otorga todo.
const Wildcard = "*"

// Roles de sistema sembrados en cada tenant.
const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleAgent   = "agent"
	RoleViewer  = "viewer"
)

// Catalogue retorna el catálogo completo de permisos, ordenado.
func Catalogue() []repository.Permission {
	out := make([]repository.Permission, 0, len(Resources)*len(Actions)+4)
	for _, r := range Resources {
		for _, a := range Actions {
			out = append(out, repository.Permission{
				Name: r + ":" + a, Resource: r, Action: a,
				Description: strings.ToUpper(a[:1]) + a[1:] + " " + r,
			})
		}
	}
	out = append(out,
		repository.Permission{Name: PermTicketsAssign, Resource: "tickets", Action: "assign", Description: "Assign tickets to agents"},
		repository.Permission{Name: PermDealsClose, Resource: "deals", Action: "close", Description: "Close deals as won or lost"},
		repository.Permission{Name: PermContractsApprove, Resource: "contracts", Action: "approve", Description: "Approve contracts"},
		repository.Permission{Name: PermOpportunityConvert, Resource: "opportunities", Action: "convert", Description: "Convert opportunities into deals"},
	)
	slices.SortFunc(out, func(a, b repository.Permission) int { return strings.Compare(a.Name, b.Name) })
	return out
}

func catalogueNames() []string {
	c := Catalogue()
	out := make([]string, len(c))
	for i, p := range c {
		out[i] = p.Name
	}
	return out
}

// SystemRoles retorna los roles de sistema con sus permisos.
func SystemRoles() map[string][]string {
	all := catalogueNames()

	var manager, viewer []string
	for _, p := range all {
		res, act, _ := strings.Cut(p, ":")
		if res != "roles" && p != "users:delete" {
			manager = append(manager, p)
		}
		if act == "read" && res != "audit" {
			viewer = append(viewer, p)
		}
	}

	agent := make([]string, 0, len(businessResources)+7)
	for _, r := range businessResources {
		agent = append(agent, r+":read")
	}
	agent = append(agent,
		"tickets:create", "tickets:update",
		"jobworks:create", "jobworks:update",
		"customers:create", "customers:update",
		"opportunities:create",
	)
	slices.Sort(agent)

	return map[string][]string{
		RoleAdmin:   all,
		RoleManager: manager,
		RoleAgent:   agent,
		RoleViewer:  viewer,
	}
}

// Match indica si el set de permisos otorga perm, honrando "*" y "resource:*".
func Match(granted []string, perm string) bool {
	res, _, _ := strings.Cut(perm, ":")
	for _, g := range granted {
		if g == Wildcard || g == perm || g == res+":*" {
			return true
		}
	}
	return false
}

// grantsFor retorna los permisos que, asignados a un rol, otorgan perm.
func grantsFor(perm string) []string {
	res, _, _ := strings.Cut(perm, ":")
	return []string{perm, res + ":*", Wildcard}
}

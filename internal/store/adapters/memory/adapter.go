// Package memory implementa el adapter en memoria ("mock service"): misma
// semántica que el adapter postgres sin dependencias externas. Se usa en
// desarrollo y en los tests de services.
package memory

import (
	"context"
	"strings"

	"github.com/razorzibra-dot/trialram-sub001/internal/domain/repository"
	"github.com/razorzibra-dot/trialram-sub001/internal/store"
)

const AdapterName = "memory"

func init() {
	store.RegisterAdapter(&memoryAdapter{})
}

type memoryAdapter struct{}

func (a *memoryAdapter) Name() string { return AdapterName }

// Connect crea una base vacía nueva en cada llamada.
func (a *memoryAdapter) Connect(_ context.Context, _ store.AdapterConfig) (store.AdapterConnection, error) {
	return New(), nil
}

// Connection es una base en memoria. Implementa store.AdapterConnection.
type Connection struct {
	tenants       *tenantRepo
	users         *userRepo
	rbac          *rbacRepo
	audit         *auditRepo
	customers     *customerRepo
	deals         *dealRepo
	opportunities *opportunityRepo
	contracts     *contractRepo
	tickets       *ticketRepo
	jobworks      *jobWorkRepo
	refdata       *refDataRepo
}

// New crea una Connection vacía.
func New() *Connection {
	c := &Connection{}
	c.tenants = &tenantRepo{
		t: newTable(
			func(t *repository.Tenant) string { return t.ID },
			func(*repository.Tenant) string { return "" },
			func(t *repository.Tenant) string { return t.Slug },
		),
		conn: c,
	}
	users := newTable(
		func(u *repository.User) string { return u.ID },
		func(u *repository.User) string { return u.TenantID },
		func(u *repository.User) string { return u.TenantID + "|" + strings.ToLower(u.Email) },
	)
	c.users = &userRepo{t: users}
	c.rbac = newRBACRepo(users)
	c.audit = &auditRepo{t: newTable(
		func(e *repository.AuditEntry) string { return e.ID },
		func(e *repository.AuditEntry) string { return e.TenantID },
		nil,
	)}
	c.customers = &customerRepo{t: newTable(
		func(v *repository.Customer) string { return v.ID },
		func(v *repository.Customer) string { return v.TenantID },
		nil,
	)}
	c.deals = &dealRepo{t: newTable(
		func(v *repository.Deal) string { return v.ID },
		func(v *repository.Deal) string { return v.TenantID },
		nil,
	)}
	c.opportunities = &opportunityRepo{t: newTable(
		func(v *repository.Opportunity) string { return v.ID },
		func(v *repository.Opportunity) string { return v.TenantID },
		nil,
	)}
	c.contracts = &contractRepo{t: newTable(
		func(v *repository.Contract) string { return v.ID },
		func(v *repository.Contract) string { return v.TenantID },
		nil,
	)}
	c.tickets = &ticketRepo{t: newTable(
		func(v *repository.Ticket) string { return v.ID },
		func(v *repository.Ticket) string { return v.TenantID },
		nil,
	)}
	c.jobworks = &jobWorkRepo{t: newTable(
		func(v *repository.JobWork) string { return v.ID },
		func(v *repository.JobWork) string { return v.TenantID },
		nil,
	)}
	c.refdata = &refDataRepo{t: newTable(
		func(v *repository.RefItem) string { return v.ID },
		func(v *repository.RefItem) string { return v.TenantID },
		func(v *repository.RefItem) string { return v.TenantID + "|" + v.Category + "|" + v.Key },
	)}
	return c
}

func (c *Connection) Name() string                 { return AdapterName }
func (c *Connection) Ping(_ context.Context) error { return nil }
func (c *Connection) Close() error                 { return nil }

func (c *Connection) Tenants() repository.TenantRepository { return c.tenants }
func (c *Connection) Users() repository.UserRepository {
	return &userRepoWithRBAC{userRepo: c.users, rbac: c.rbac}
}
func (c *Connection) RBAC() repository.RBACRepository   { return c.rbac }
func (c *Connection) Audit() repository.AuditRepository { return c.audit }

func (c *Connection) Customers() repository.CustomerRepository { return c.customers }
func (c *Connection) Deals() repository.DealRepository         { return c.deals }
func (c *Connection) Opportunities() repository.OpportunityRepository {
	return c.opportunities
}
func (c *Connection) Contracts() repository.ContractRepository { return c.contracts }
func (c *Connection) Tickets() repository.TicketRepository     { return c.tickets }
func (c *Connection) JobWorks() repository.JobWorkRepository   { return c.jobworks }
func (c *Connection) RefData() repository.RefDataRepository    { return c.refdata }

// purge emula ON DELETE CASCADE del tenant.
func (c *Connection) purge(tenantID string) {
	c.users.t.purge(tenantID)
	c.rbac.purge(tenantID)
	c.audit.t.purge(tenantID)
	c.customers.t.purge(tenantID)
	c.deals.t.purge(tenantID)
	c.opportunities.t.purge(tenantID)
	c.contracts.t.purge(tenantID)
	c.tickets.t.purge(tenantID)
	c.jobworks.t.purge(tenantID)
	c.refdata.t.purge(tenantID)
}

// userRepoWithRBAC emula ON DELETE CASCADE de user_roles.
type userRepoWithRBAC struct {
	*userRepo
	rbac *rbacRepo
}

func (r *userRepoWithRBAC) Delete(ctx context.Context, tenantID, id string) error {
	if err := r.userRepo.Delete(ctx, tenantID, id); err != nil {
		return err
	}
	r.rbac.dropUser(tenantID, id)
	return nil
}

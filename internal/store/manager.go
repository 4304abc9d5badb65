package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"

	"github.com/razorzibra-dot/trialram-sub001/internal/domain/repository"
)

const defaultTenantCacheTTL = 30 * time.Second

// Manager es el DAL del CRM: resuelve tenants y entrega accesos acotados a
// cada uno. Thread-safe.
type Manager struct {
	conn    AdapterConnection
	tenants *gocache.Cache
	sf      singleflight.Group
}

// ManagerConfig configuración para crear un Manager.
type ManagerConfig struct {
	Adapter AdapterConfig
	// TenantCacheTTL tiempo que un tenant resuelto queda en cache. Default 30s.
	TenantCacheTTL time.Duration
}

// NewManager abre el adapter configurado y crea el Manager.
func NewManager(ctx context.Context, cfg ManagerConfig) (*Manager, error) {
	conn, err := OpenAdapter(ctx, cfg.Adapter)
	if err != nil {
		return nil, err
	}
	return NewManagerWithConnection(conn, cfg.TenantCacheTTL), nil
}

// NewManagerWithConnection crea un Manager sobre una conexión ya abierta.
func NewManagerWithConnection(conn AdapterConnection, tenantTTL time.Duration) *Manager {
	if tenantTTL <= 0 {
		tenantTTL = defaultTenantCacheTTL
	}
	return &Manager{
		conn:    conn,
		tenants: gocache.New(tenantTTL, 2*tenantTTL),
	}
}

// ForTenant resuelve el tenant por slug o ID y retorna su acceso a datos.
// Un tenant suspendido retorna ErrTenantSuspended.
func (m *Manager) ForTenant(ctx context.Context, slugOrID string) (*TenantDataAccess, error) {
	t, err := m.ResolveTenant(ctx, slugOrID)
	if err != nil {
		return nil, err
	}
	if t.Suspended() {
		return nil, fmt.Errorf("%s: %w", t.Slug, repository.ErrTenantSuspended)
	}
	return &TenantDataAccess{tenant: *t, conn: m.conn}, nil
}

// ResolveTenant busca el tenant sin verificar su estado.
// Lookups concurrentes del mismo identificador se deduplican.
func (m *Manager) ResolveTenant(ctx context.Context, slugOrID string) (*repository.Tenant, error) {
	key := strings.ToLower(strings.TrimSpace(slugOrID))
	if key == "" {
		return nil, ErrTenantNotFound
	}
	if v, ok := m.tenants.Get(key); ok {
		t := v.(repository.Tenant)
		return &t, nil
	}

	v, err, _ := m.sf.Do(key, func() (any, error) {
		var (
			t   *repository.Tenant
			err error
		)
		if _, perr := uuid.Parse(key); perr == nil {
			t, err = m.conn.Tenants().GetByID(ctx, key)
		} else {
			t, err = m.conn.Tenants().GetBySlug(ctx, key)
		}
		if repository.IsNotFound(err) {
			return nil, ErrTenantNotFound
		}
		if err != nil {
			return nil, err
		}
		m.tenants.SetDefault(t.ID, *t)
		m.tenants.SetDefault(t.Slug, *t)
		return *t, nil
	})
	if err != nil {
		return nil, err
	}
	t := v.(repository.Tenant)
	return &t, nil
}

// InvalidateTenant quita el tenant del cache (llamar tras update/suspend/delete).
func (m *Manager) InvalidateTenant(t repository.Tenant) {
	m.tenants.Delete(strings.ToLower(t.ID))
	m.tenants.Delete(strings.ToLower(t.Slug))
}

// ActiveTenants lista los tenants no suspendidos.
func (m *Manager) ActiveTenants(ctx context.Context) ([]repository.Tenant, error) {
	all, err := m.conn.Tenants().List(ctx)
	if err != nil {
		return nil, err
	}
	out := all[:0]
	for _, t := range all {
		if !t.Suspended() {
			out = append(out, t)
		}
	}
	return out, nil
}

// Migrate aplica las migraciones si la conexión es SQL. Para el adapter en
// memoria retorna ErrNoDatabase.
func (m *Manager) Migrate(ctx context.Context, migrator *Migrator) (*MigrationResult, error) {
	mc, ok := m.conn.(MigratableConnection)
	if !ok {
		return nil, repository.ErrNoDatabase
	}
	return migrator.Run(ctx, mc.MigrationExecutor())
}

func (m *Manager) Tenants() repository.TenantRepository { return m.conn.Tenants() }
func (m *Manager) Users() repository.UserRepository     { return m.conn.Users() }
func (m *Manager) RBAC() repository.RBACRepository      { return m.conn.RBAC() }
func (m *Manager) Audit() repository.AuditRepository    { return m.conn.Audit() }

// Connection expone la conexión subyacente (métricas del pool, tests).
func (m *Manager) Connection() AdapterConnection { return m.conn }

// Driver retorna el nombre del adapter activo.
func (m *Manager) Driver() string { return m.conn.Name() }

func (m *Manager) Ping(ctx context.Context) error { return m.conn.Ping(ctx) }
func (m *Manager) Close() error                   { return m.conn.Close() }

// TenantDataAccess agrupa los repositorios de un tenant resuelto.
// Los services toman el tenantID solo de aquí.
type TenantDataAccess struct {
	tenant repository.Tenant
	conn   AdapterConnection
}

// NewTenantDataAccess construye un acceso para un tenant ya resuelto.
func NewTenantDataAccess(t repository.Tenant, conn AdapterConnection) *TenantDataAccess {
	return &TenantDataAccess{tenant: t, conn: conn}
}

func (t *TenantDataAccess) ID() string                { return t.tenant.ID }
func (t *TenantDataAccess) Slug() string              { return t.tenant.Slug }
func (t *TenantDataAccess) Tenant() repository.Tenant { return t.tenant }

func (t *TenantDataAccess) Users() repository.UserRepository { return t.conn.Users() }
func (t *TenantDataAccess) RBAC() repository.RBACRepository  { return t.conn.RBAC() }
func (t *TenantDataAccess) Audit() repository.AuditRepository {
	return t.conn.Audit()
}
func (t *TenantDataAccess) Customers() repository.CustomerRepository {
	return t.conn.Customers()
}
func (t *TenantDataAccess) Deals() repository.DealRepository { return t.conn.Deals() }
func (t *TenantDataAccess) Opportunities() repository.OpportunityRepository {
	return t.conn.Opportunities()
}
func (t *TenantDataAccess) Contracts() repository.ContractRepository {
	return t.conn.Contracts()
}
func (t *TenantDataAccess) Tickets() repository.TicketRepository   { return t.conn.Tickets() }
func (t *TenantDataAccess) JobWorks() repository.JobWorkRepository { return t.conn.JobWorks() }
func (t *TenantDataAccess) RefData() repository.RefDataRepository  { return t.conn.RefData() }

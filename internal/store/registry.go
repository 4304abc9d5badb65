// Package store provee el registry de adapters y el DAL multi-tenant del CRM.
package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/razorzibra-dot/trialram-sub001/internal/domain/repository"
)

// Adapter crea conexiones a un almacenamiento ("memory", "postgres").
type Adapter interface {
	Name() string
	Connect(ctx context.Context, cfg AdapterConfig) (AdapterConnection, error)
}

// AdapterConnection es una conexión activa con todos los repositorios.
type AdapterConnection interface {
	Name() string
	Ping(ctx context.Context) error
	Close() error

	// ─── Control plane ───

	Tenants() repository.TenantRepository
	Users() repository.UserRepository
	RBAC() repository.RBACRepository
	Audit() repository.AuditRepository

	// ─── Data plane ───

	Customers() repository.CustomerRepository
	Deals() repository.DealRepository
	Opportunities() repository.OpportunityRepository
	Contracts() repository.ContractRepository
	Tickets() repository.TicketRepository
	JobWorks() repository.JobWorkRepository
	RefData() repository.RefDataRepository
}

// MigratableConnection es implementada por conexiones SQL.
type MigratableConnection interface {
	MigrationExecutor() Executor
}

// AdapterConfig configuración para conectar a un almacenamiento.
type AdapterConfig struct {
	// Name del adapter: "memory" o "postgres".
	Name string

	// DSN connection string (postgres).
	DSN string

	// Pool settings (postgres).
	MaxOpenConns int
	MaxIdleConns int
}

// ─── Registry Global ───

var (
	registryMu sync.RWMutex
	adapters   = make(map[string]Adapter)
)

// RegisterAdapter registra un adapter. Llamar en init() de cada adapter.
func RegisterAdapter(a Adapter) {
	registryMu.Lock()
	defer registryMu.Unlock()

	name := a.Name()
	if _, exists := adapters[name]; exists {
		panic(fmt.Sprintf("adapter: %q already registered", name))
	}
	adapters[name] = a
}

// GetAdapter obtiene un adapter por nombre.
func GetAdapter(name string) (Adapter, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	a, ok := adapters[name]
	return a, ok
}

// ListAdapters retorna los nombres registrados, ordenados.
func ListAdapters() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(adapters))
	for name := range adapters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// OpenAdapter abre una conexión con el adapter indicado en la config.
func OpenAdapter(ctx context.Context, cfg AdapterConfig) (AdapterConnection, error) {
	a, ok := GetAdapter(cfg.Name)
	if !ok {
		return nil, fmt.Errorf("adapter: %q not registered (available: %v)", cfg.Name, ListAdapters())
	}
	return a.Connect(ctx, cfg)
}

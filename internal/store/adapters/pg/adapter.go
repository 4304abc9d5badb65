// Package pg implementa el adapter PostgreSQL del CRM sobre pgxpool.
// Esquema compartido: cada fila del plano de datos lleva tenant_id.
package pg

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/razorzibra-dot/trialram-sub001/internal/domain/repository"
	"github.com/razorzibra-dot/trialram-sub001/internal/store"
)

const AdapterName = "postgres"

func init() {
	store.RegisterAdapter(&postgresAdapter{})
}

type postgresAdapter struct{}

func (a *postgresAdapter) Name() string { return AdapterName }

func (a *postgresAdapter) Connect(ctx context.Context, cfg store.AdapterConfig) (store.AdapterConnection, error) {
	if cfg.DSN == "" {
		return nil, repository.ErrNoDatabase
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("pg: parse DSN: %w", err)
	}

	poolCfg.MaxConns = 10
	if cfg.MaxOpenConns > 0 {
		poolCfg.MaxConns = int32(cfg.MaxOpenConns)
	}
	poolCfg.MinConns = 2
	if cfg.MaxIdleConns > 0 {
		poolCfg.MinConns = int32(cfg.MaxIdleConns)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("pg: create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pg: ping failed: %w", err)
	}
	return &Connection{pool: pool}, nil
}

// Connection es una conexión activa a PostgreSQL.
type Connection struct {
	pool *pgxpool.Pool
}

func (c *Connection) Name() string                   { return AdapterName }
func (c *Connection) Ping(ctx context.Context) error { return c.pool.Ping(ctx) }
func (c *Connection) Close() error {
	c.pool.Close()
	return nil
}

// Pool expone el pool para métricas.
func (c *Connection) Pool() *pgxpool.Pool { return c.pool }

// MigrationExecutor implementa store.MigratableConnection.
func (c *Connection) MigrationExecutor() store.Executor { return c.pool }

func (c *Connection) Tenants() repository.TenantRepository { return &tenantRepo{pool: c.pool} }
func (c *Connection) Users() repository.UserRepository     { return &userRepo{pool: c.pool} }
func (c *Connection) RBAC() repository.RBACRepository      { return &rbacRepo{pool: c.pool} }
func (c *Connection) Audit() repository.AuditRepository    { return &auditRepo{pool: c.pool} }

func (c *Connection) Customers() repository.CustomerRepository { return &customerRepo{pool: c.pool} }
func (c *Connection) Deals() repository.DealRepository         { return &dealRepo{pool: c.pool} }
func (c *Connection) Opportunities() repository.OpportunityRepository {
	return &opportunityRepo{pool: c.pool}
}
func (c *Connection) Contracts() repository.ContractRepository { return &contractRepo{pool: c.pool} }
func (c *Connection) Tickets() repository.TicketRepository     { return &ticketRepo{pool: c.pool} }
func (c *Connection) JobWorks() repository.JobWorkRepository   { return &jobWorkRepo{pool: c.pool} }
func (c *Connection) RefData() repository.RefDataRepository    { return &refDataRepo{pool: c.pool} }

// ─── helpers ───

// mapErr traduce errores de pgx a errores de dominio.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return repository.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return fmt.Errorf("%w: %s", repository.ErrConflict, pgErr.ConstraintName)
		case "23503": // foreign_key_violation
			return fmt.Errorf("%w: %s", repository.ErrInvalidInput, pgErr.ConstraintName)
		}
	}
	return err
}

// validID evita errores de sintaxis uuid: un id mal formado no existe.
func validID(ids ...string) bool {
	for _, id := range ids {
		if _, err := uuid.Parse(id); err != nil {
			return false
		}
	}
	return true
}

// getOne ejecuta una query de una fila.
func getOne[T any](ctx context.Context, pool *pgxpool.Pool, scan func(pgx.Row) (T, error), query string, args ...any) (*T, error) {
	v, err := scan(pool.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, mapErr(err)
	}
	return &v, nil
}

// execOne ejecuta un UPDATE/DELETE que debe afectar exactamente una fila.
func execOne(ctx context.Context, pool *pgxpool.Pool, query string, args ...any) error {
	tag, err := pool.Exec(ctx, query, args...)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// collect escanea todas las filas con scan.
func collect[T any](rows pgx.Rows, scan func(pgx.Row) (T, error)) ([]T, error) {
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (T, error) { return scan(row) })
}

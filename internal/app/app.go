// Package app arma la aplicación completa a partir de la configuración:
// store, cache, services, router y workers.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/razorzibra-dot/trialram-sub001/internal/bootstrap"
	"github.com/razorzibra-dot/trialram-sub001/internal/cache"
	"github.com/razorzibra-dot/trialram-sub001/internal/config"
	"github.com/razorzibra-dot/trialram-sub001/internal/domain/repository"
	"github.com/razorzibra-dot/trialram-sub001/internal/email"
	"github.com/razorzibra-dot/trialram-sub001/internal/http/controllers"
	"github.com/razorzibra-dot/trialram-sub001/internal/http/controllers/health"
	"github.com/razorzibra-dot/trialram-sub001/internal/http/router"
	"github.com/razorzibra-dot/trialram-sub001/internal/http/server"
	"github.com/razorzibra-dot/trialram-sub001/internal/http/services"
	jwtx "github.com/razorzibra-dot/trialram-sub001/internal/jwt"
	"github.com/razorzibra-dot/trialram-sub001/internal/metrics"
	"github.com/razorzibra-dot/trialram-sub001/internal/observability/logger"
	"github.com/razorzibra-dot/trialram-sub001/internal/rate"
	"github.com/razorzibra-dot/trialram-sub001/internal/rules/sla"
	"github.com/razorzibra-dot/trialram-sub001/internal/security/password"
	"github.com/razorzibra-dot/trialram-sub001/internal/store"
	pgadapter "github.com/razorzibra-dot/trialram-sub001/internal/store/adapters/pg"
	"github.com/razorzibra-dot/trialram-sub001/internal/workers"
	migrations "github.com/razorzibra-dot/trialram-sub001/migrations/postgres"
)

// Deps permite inyectar piezas ya construidas (tests). Los campos nil se
// construyen desde la config.
type Deps struct {
	Store    *store.Manager
	Cache    cache.Client
	Mailer   email.Sender
	Registry *prometheus.Registry
	Password password.Params
}

// App es la aplicación cableada.
type App struct {
	Config   *config.Config
	Version  string
	Store    *store.Manager
	Cache    cache.Client
	Services services.Services
	Handler  http.Handler
	Sweeper  *workers.SLASweeper
	Registry *prometheus.Registry

	closers []func() error
}

// New construye la aplicación. Llamar Close al terminar.
func New(ctx context.Context, cfg *config.Config, version string, deps Deps) (_ *App, err error) {
	log := logger.L().With(logger.Component("app"))
	a := &App{Config: cfg, Version: version}
	defer func() {
		if err != nil {
			_ = a.Close()
		}
	}()

	// 1. Store
	a.Store = deps.Store
	if a.Store == nil {
		a.Store, err = store.NewManager(ctx, store.ManagerConfig{
			Adapter: store.AdapterConfig{
				Name:         cfg.Storage.Driver,
				DSN:          cfg.Storage.DSN,
				MaxOpenConns: cfg.Storage.Postgres.MaxOpenConns,
				MaxIdleConns: cfg.Storage.Postgres.MaxIdleConns,
			},
			TenantCacheTTL: config.Dur(cfg.Storage.TenantCacheTTL, 30*time.Second),
		})
		if err != nil {
			return nil, fmt.Errorf("store: %w", err)
		}
		a.closers = append(a.closers, a.Store.Close)
	}
	log.Info("store ready", logger.String("driver", a.Store.Driver()))

	// 2. Cache + redis compartido con el rate limiter
	var rdb *redis.Client
	a.Cache = deps.Cache
	if a.Cache == nil {
		if cfg.Cache.Kind == "redis" {
			rdb = redis.NewClient(&redis.Options{
				Addr:     cfg.Cache.Redis.Addr,
				Password: cfg.Cache.Redis.Password,
				DB:       cfg.Cache.Redis.DB,
			})
			a.closers = append(a.closers, rdb.Close)
			pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
			perr := rdb.Ping(pctx).Err()
			cancel()
			if perr != nil {
				return nil, fmt.Errorf("redis ping: %w", perr)
			}
			a.Cache = cache.NewRedisFromClient(rdb, cfg.Cache.Redis.Prefix)
		} else {
			a.Cache = cache.NewMemory(cfg.Cache.Redis.Prefix)
			a.closers = append(a.closers, a.Cache.Close)
		}
	}

	// 3. Métricas
	a.Registry = deps.Registry
	if a.Registry == nil {
		a.Registry = prometheus.NewRegistry()
		a.Registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}
	if err = metrics.Register(a.Registry); err != nil {
		return nil, fmt.Errorf("metrics: %w", err)
	}
	if pgc, ok := a.Store.Connection().(*pgadapter.Connection); ok {
		if err = metrics.RegisterPool(a.Registry, pgc.Pool); err != nil {
			return nil, fmt.Errorf("metrics pool: %w", err)
		}
	}

	// 4. JWT
	issuer, err := jwtx.NewIssuer(cfg.JWT.Issuer, []byte(cfg.JWT.Secret), config.Dur(cfg.JWT.AccessTTL, time.Hour))
	if err != nil {
		return nil, fmt.Errorf("jwt: %w", err)
	}

	// 5. Services
	mailer := deps.Mailer
	if mailer == nil {
		mailer = email.FromConfig(cfg)
	}
	pp := cfg.Security.PasswordPolicy
	a.Services = services.New(services.Deps{
		Store:          a.Store,
		Issuer:         issuer,
		Cache:          a.Cache,
		Mailer:         mailer,
		PermissionsTTL: config.Dur(cfg.Cache.PermissionsTTL, 5*time.Minute),
		RefDataTTL:     config.Dur(cfg.Cache.RefDataTTL, 10*time.Minute),
		Password:       deps.Password,
		PasswordPolicy: password.Policy{
			MinLength: pp.MinLength, RequireUpper: pp.RequireUpper, RequireLower: pp.RequireLower,
			RequireDigit: pp.RequireDigit, RequireSymbol: pp.RequireSymbol,
		},
		SLA: sla.DefaultPolicy,
	})
	if err = a.Services.RBAC.SeedCatalogue(ctx); err != nil {
		return nil, fmt.Errorf("seed permission catalogue: %w", err)
	}

	// 6. HTTP
	var apiLimiter, loginLimiter rate.Limiter
	if cfg.Rate.Enabled {
		apiLimiter, loginLimiter = a.limiters(rdb)
	}
	hc := health.NewController(version,
		health.Check{Name: "store", Pinger: a.Store},
		health.Check{Name: "cache", Pinger: a.Cache},
	)
	a.Handler = router.New(router.Deps{
		Controllers:  controllers.New(&a.Services, hc),
		Issuer:       issuer,
		Tenants:      a.Store,
		Permissions:  a.Services.RBAC,
		APILimiter:   apiLimiter,
		LoginLimiter: loginLimiter,
		CORSOrigins:  cfg.Server.CORSAllowedOrigins,
		Metrics:      promhttp.HandlerFor(a.Registry, promhttp.HandlerOpts{}),
	})

	// 7. Workers
	a.Sweeper = workers.NewSLASweeper(workers.SLASweeperConfig{
		Tenants:     a.Store,
		Tickets:     a.Services.Tickets,
		Contracts:   a.Services.Contracts,
		Interval:    config.Dur(cfg.SLA.SweepInterval, time.Minute),
		Concurrency: cfg.SLA.Concurrency,
	})

	return a, nil
}

func (a *App) limiters(rdb *redis.Client) (api, login rate.Limiter) {
	cfg := a.Config
	window := config.Dur(cfg.Rate.Window, time.Minute)
	loginWindow := config.Dur(cfg.Rate.Login.Window, time.Minute)
	if rdb != nil {
		prefix := cfg.Cache.Redis.Prefix + ":rl:"
		return rate.NewRedisLimiter(rdb, prefix, cfg.Rate.MaxRequests, window),
			rate.NewRedisLimiter(rdb, prefix, cfg.Rate.Login.Limit, loginWindow)
	}
	return rate.NewMemoryLimiter(cfg.Rate.MaxRequests, window),
		rate.NewMemoryLimiter(cfg.Rate.Login.Limit, loginWindow)
}

// Migrate aplica las migraciones embebidas. En modo memory no hace nada.
func (a *App) Migrate(ctx context.Context) (*store.MigrationResult, error) {
	res, err := a.Store.Migrate(ctx, store.NewMigrator(migrations.FS, migrations.Dir))
	if errors.Is(err, repository.ErrNoDatabase) {
		return &store.MigrationResult{}, nil
	}
	return res, err
}

// Bootstrap crea el tenant inicial configurado (ver config.Bootstrap).
func (a *App) Bootstrap(ctx context.Context) (*bootstrap.Result, error) {
	b := a.Config.Bootstrap
	return bootstrap.EnsureTenant(ctx, bootstrap.AdminBootstrapConfig{
		Store:         a.Store,
		Tenants:       a.Services.Admin.Tenants,
		TenantSlug:    b.TenantSlug,
		TenantName:    b.TenantName,
		AdminEmail:    b.AdminEmail,
		AdminPassword: b.AdminPassword,
	})
}

// Server construye el servidor HTTP con los timeouts de la config.
func (a *App) Server() *server.Server {
	s := a.Config.Server
	return server.New(server.Config{
		Addr:            s.Addr,
		ReadTimeout:     config.Dur(s.ReadTimeout, 15*time.Second),
		WriteTimeout:    config.Dur(s.WriteTimeout, 30*time.Second),
		ShutdownTimeout: config.Dur(s.ShutdownTimeout, 10*time.Second),
	}, a.Handler)
}

// Close libera las conexiones en orden inverso.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// Package workers contiene los procesos en background del CRM.
package workers

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/razorzibra-dot/trialram-sub001/internal/claims"
	"github.com/razorzibra-dot/trialram-sub001/internal/domain/repository"
	"github.com/razorzibra-dot/trialram-sub001/internal/http/services/contracts"
	"github.com/razorzibra-dot/trialram-sub001/internal/metrics"
	"github.com/razorzibra-dot/trialram-sub001/internal/observability/logger"
	"github.com/razorzibra-dot/trialram-sub001/internal/store"
)

// TenantSource lista tenants activos y entrega su acceso a datos (store.Manager).
type TenantSource interface {
	ActiveTenants(ctx context.Context) ([]repository.Tenant, error)
	ForTenant(ctx context.Context, slugOrID string) (*store.TenantDataAccess, error)
}

// Escalator evalúa el SLA de los tickets abiertos de un tenant.
type Escalator interface {
	EscalateOpen(ctx context.Context, tda *store.TenantDataAccess, now time.Time) (int, error)
}

// Expirer vence (y renueva) los contratos activos de un tenant.
type Expirer interface {
	ExpireDue(ctx context.Context, tda *store.TenantDataAccess, now time.Time) (contracts.ExpireResult, error)
}

// SweepResult resume una pasada del sweeper.
type SweepResult struct {
	Tenants   int `json:"tenants"`
	Escalated int `json:"escalated"`
	Expired   int `json:"expired"`
	Renewed   int `json:"renewed"`
	Failed    int `json:"failed"`
}

// SLASweeperConfig configura el sweeper.
type SLASweeperConfig struct {
	Tenants   TenantSource
	Tickets   Escalator
	Contracts Expirer

	// Interval entre pasadas. Default 1m.
	Interval time.Duration
	// Concurrency máximo de tenants procesados en paralelo. Default 4.
	Concurrency int
	// Now permite fijar el reloj en tests.
	Now func() time.Time
}

// SLASweeper recorre periódicamente los tenants activos: escala tickets
// vencidos y expira contratos.
type SLASweeper struct {
	cfg SLASweeperConfig
}

func NewSLASweeper(cfg SLASweeperConfig) *SLASweeper {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Minute
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	if cfg.Now == nil {
		cfg.Now = func() time.Time { return time.Now().UTC() }
	}
	return &SLASweeper{cfg: cfg}
}

// Run ejecuta pasadas hasta que ctx se cancele.
func (s *SLASweeper) Run(ctx context.Context) error {
	log := logger.L().With(logger.Component("workers.sla"))
	log.Info("sla sweeper started", logger.Duration(s.cfg.Interval))

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := s.RunOnce(ctx); err != nil && ctx.Err() == nil {
				log.Error("sla sweep failed", logger.Err(err))
			}
		case <-ctx.Done():
			log.Info("sla sweeper stopped")
			return ctx.Err()
		}
	}
}

// RunOnce hace una pasada sobre todos los tenants activos.
// El fallo de un tenant se loguea y no detiene a los demás.
func (s *SLASweeper) RunOnce(ctx context.Context) (SweepResult, error) {
	start := time.Now()
	defer func() { metrics.SLASweepDuration.Observe(time.Since(start).Seconds()) }()

	log := logger.L().With(logger.Component("workers.sla"), logger.Op("RunOnce"))

	tenants, err := s.cfg.Tenants.ActiveTenants(ctx)
	if err != nil {
		return SweepResult{}, err
	}

	var (
		mu  sync.Mutex
		res = SweepResult{Tenants: len(tenants)}
		now = s.cfg.Now()
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Concurrency)
	for _, t := range tenants {
		t := t
		g.Go(func() error {
			escalated, exp, err := s.sweepTenant(gctx, t, now)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				res.Failed++
				log.Error("tenant sweep failed", logger.TenantID(t.ID), logger.TenantSlug(t.Slug), logger.Err(err))
				return nil
			}
			res.Escalated += escalated
			res.Expired += exp.Expired
			res.Renewed += exp.Renewed
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return res, err
	}

	log.Debug("sla sweep done",
		logger.Count(res.Tenants), logger.Int("escalated", res.Escalated),
		logger.Int("expired", res.Expired), logger.Int("failed", res.Failed),
		logger.Duration(time.Since(start)))
	return res, ctx.Err()
}

func (s *SLASweeper) sweepTenant(ctx context.Context, t repository.Tenant, now time.Time) (int, contracts.ExpireResult, error) {
	tda, err := s.cfg.Tenants.ForTenant(ctx, t.ID)
	if err != nil {
		// suspendido entre el listado y ahora
		if store.IsTenantSuspended(err) {
			return 0, contracts.ExpireResult{}, nil
		}
		return 0, contracts.ExpireResult{}, err
	}

	sctx := claims.System(ctx, t.ID)
	sctx = logger.ToContext(sctx, logger.L().With(logger.Component("workers.sla"), logger.TenantID(t.ID)))

	escalated, err := s.cfg.Tickets.EscalateOpen(sctx, tda, now)
	if err != nil {
		return 0, contracts.ExpireResult{}, err
	}
	exp, err := s.cfg.Contracts.ExpireDue(sctx, tda, now)
	if err != nil {
		return escalated, contracts.ExpireResult{}, err
	}
	return escalated, exp, nil
}

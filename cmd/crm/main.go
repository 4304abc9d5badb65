package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/razorzibra-dot/trialram-sub001/internal/app"
	"github.com/razorzibra-dot/trialram-sub001/internal/config"
	"github.com/razorzibra-dot/trialram-sub001/internal/observability/logger"

	// Registra los adapters (memory, postgres) vía init()
	_ "github.com/razorzibra-dot/trialram-sub001/internal/store/adapters/dal"
)

// version se inyecta con -ldflags "-X main.version=..."
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "crm:", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", envOr("CRM_CONFIG", "configs/config.yaml"), "Path to YAML config")
	flag.Parse()

	// .env es opcional
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	logger.Init(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, ServiceName: cfg.App.Name, Version: version})
	defer func() { _ = logger.Sync() }()
	log := logger.L()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, version, app.Deps{})
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Warn("close failed", logger.Err(err))
		}
	}()

	if cfg.Flags.Migrate {
		res, err := a.Migrate(ctx)
		if err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		log.Info("migrations done", logger.Int("applied", len(res.Applied)), logger.Int("skipped", len(res.Skipped)))
	}

	// En memoria siempre hay un tenant de trabajo.
	if cfg.Storage.Driver == "memory" && cfg.Bootstrap.TenantSlug == "" {
		cfg.Bootstrap.TenantSlug = "demo"
	}
	if cfg.Bootstrap.TenantSlug != "" {
		res, err := a.Bootstrap(ctx)
		if err != nil {
			return err
		}
		if res.Created && res.AdminPassword != "" {
			fmt.Printf("\nBootstrap tenant %q created\n   Email:    %s\n   Password: %s\n\n",
				res.Tenant.Slug, res.AdminEmail, res.AdminPassword)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return a.Server().Run(gctx) })
	if cfg.SLA.Enabled {
		g.Go(func() error {
			if err := a.Sweeper.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("bye")
	return nil
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

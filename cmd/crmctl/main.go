package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/razorzibra-dot/trialram-sub001/internal/app"
	"github.com/razorzibra-dot/trialram-sub001/internal/claims"
	"github.com/razorzibra-dot/trialram-sub001/internal/config"
	"github.com/razorzibra-dot/trialram-sub001/internal/http/services/admin"
	"github.com/razorzibra-dot/trialram-sub001/internal/observability/logger"

	_ "github.com/razorzibra-dot/trialram-sub001/internal/store/adapters/dal"
)

var version = "dev"

func main() {
	_ = godotenv.Load()

	var (
		configPath = envOr("CRM_CONFIG", "configs/config.yaml")
		out        = envOr("CRM_OUT", "text")
	)

	// withApp carga la config y arma la aplicación para un comando.
	withApp := func(cmd *cobra.Command, fn func(ctx context.Context, a *app.App) error) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		logger.Init(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, ServiceName: "crmctl", Version: version})
		defer func() { _ = logger.Sync() }()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := app.New(ctx, cfg, version, app.Deps{})
		if err != nil {
			return err
		}
		defer a.Close()
		return fn(ctx, a)
	}

	print := func(v any) error {
		if out == "json" {
			b, err := json.MarshalIndent(v, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(b))
			return nil
		}
		fmt.Printf("%+v\n", v)
		return nil
	}

	root := &cobra.Command{
		Use:           "crmctl",
		Short:         "CLI operativa del CRM (migraciones, seed, tenants, SLA)",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", configPath, "Path del YAML de config (env CRM_CONFIG)")
	root.PersistentFlags().StringVar(&out, "out", out, "Formato de salida: json|text")

	// migrate
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Aplica las migraciones pendientes (postgres)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				res, err := a.Migrate(ctx)
				if err != nil {
					return err
				}
				return print(map[string]any{"applied": res.Applied, "skipped": res.Skipped, "duration": res.Duration.String()})
			})
		},
	}

	// seed
	seedCmd := &cobra.Command{
		Use:   "seed",
		Short: "Crea el tenant bootstrap (config bootstrap.*) si no existe",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				if a.Config.Bootstrap.TenantSlug == "" {
					return fmt.Errorf("bootstrap.tenant_slug (o CRM_BOOTSTRAP_TENANT) es requerido")
				}
				res, err := a.Bootstrap(ctx)
				if err != nil {
					return err
				}
				return print(res)
			})
		},
	}

	// tenant create / list
	var in admin.CreateTenantInput
	tenantCreateCmd := &cobra.Command{
		Use:   "create",
		Short: "Crea un tenant con roles de sistema, refdata y admin inicial",
		RunE: func(cmd *cobra.Command, args []string) error {
			if in.Slug == "" || in.AdminEmail == "" || in.AdminPassword == "" {
				return fmt.Errorf("--slug, --admin-email y --admin-password son requeridos")
			}
			if in.Name == "" {
				in.Name = in.Slug
			}
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				res, err := a.Services.Admin.Tenants.Create(claims.System(ctx, ""), in)
				if err != nil {
					return err
				}
				return print(res)
			})
		},
	}
	tenantCreateCmd.Flags().StringVar(&in.Slug, "slug", "", "Slug del tenant (ej. acme)")
	tenantCreateCmd.Flags().StringVar(&in.Name, "name", "", "Nombre visible")
	tenantCreateCmd.Flags().StringVar(&in.Plan, "plan", "standard", "Plan")
	tenantCreateCmd.Flags().StringVar(&in.AdminEmail, "admin-email", "", "Email del admin inicial")
	tenantCreateCmd.Flags().StringVar(&in.AdminName, "admin-name", "", "Nombre del admin inicial")
	tenantCreateCmd.Flags().StringVar(&in.AdminPassword, "admin-password", "", "Password del admin inicial")

	tenantListCmd := &cobra.Command{
		Use:   "list",
		Short: "Lista los tenants",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				list, err := a.Services.Admin.Tenants.List(ctx)
				if err != nil {
					return err
				}
				return print(list)
			})
		},
	}

	tenantCmd := &cobra.Command{Use: "tenant", Short: "Operaciones sobre tenants"}
	tenantCmd.AddCommand(tenantCreateCmd, tenantListCmd)

	// sla sweep
	slaSweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "Ejecuta una pasada del SLA sweeper (escalamientos y vencimientos)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				res, err := a.Sweeper.RunOnce(ctx)
				if err != nil {
					return err
				}
				return print(res)
			})
		},
	}
	slaCmd := &cobra.Command{Use: "sla", Short: "Operaciones de SLA"}
	slaCmd.AddCommand(slaSweepCmd)

	root.AddCommand(migrateCmd, seedCmd, tenantCmd, slaCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

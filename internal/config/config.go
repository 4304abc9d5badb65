package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DevJWTSecret es el secreto por defecto fuera de prod. Validate lo rechaza en prod.
const DevJWTSecret = "dev-only-jwt-secret-change-me-0123456789"

type Config struct {
	App struct {
		// dev | staging | prod
		Env      string `yaml:"env"`
		Name     string `yaml:"name"`
		LogLevel string `yaml:"log_level"`
	} `yaml:"app"`

	Server struct {
		Addr               string   `yaml:"addr"`
		CORSAllowedOrigins []string `yaml:"cors_allowed_origins"`
		ReadTimeout        string   `yaml:"read_timeout"`
		WriteTimeout       string   `yaml:"write_timeout"`
		ShutdownTimeout    string   `yaml:"shutdown_timeout"`
	} `yaml:"server"`

	Storage struct {
		// memory | postgres
		Driver   string `yaml:"driver"`
		DSN      string `yaml:"dsn"`
		Postgres struct {
			MaxOpenConns int `yaml:"max_open_conns"`
			MaxIdleConns int `yaml:"max_idle_conns"`
		} `yaml:"postgres"`
		TenantCacheTTL string `yaml:"tenant_cache_ttl"`
	} `yaml:"storage"`

	Cache struct {
		// memory | redis
		Kind  string `yaml:"kind"`
		Redis struct {
			Addr     string `yaml:"addr"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			Prefix   string `yaml:"prefix"`
		} `yaml:"redis"`
		PermissionsTTL string `yaml:"permissions_ttl"`
		RefDataTTL     string `yaml:"refdata_ttl"`
	} `yaml:"cache"`

	JWT struct {
		Secret    string `yaml:"secret"`
		Issuer    string `yaml:"issuer"`
		AccessTTL string `yaml:"access_ttl"`
	} `yaml:"jwt"`

	Rate struct {
		Enabled     bool   `yaml:"enabled"`
		Window      string `yaml:"window"`
		MaxRequests int    `yaml:"max_requests"`
		Login       struct {
			Limit  int    `yaml:"limit"`
			Window string `yaml:"window"`
		} `yaml:"login"`
	} `yaml:"rate"`

	SMTP struct {
		Host               string `yaml:"host"`
		Port               int    `yaml:"port"`
		Username           string `yaml:"username"`
		Password           string `yaml:"password"`
		From               string `yaml:"from"`
		TLS                string `yaml:"tls"`                  // auto | starttls | ssl | none
		InsecureSkipVerify bool   `yaml:"insecure_skip_verify"` // sólo dev
	} `yaml:"smtp"`

	Security struct {
		PasswordPolicy struct {
			MinLength     int  `yaml:"min_length"`
			RequireUpper  bool `yaml:"require_upper"`
			RequireLower  bool `yaml:"require_lower"`
			RequireDigit  bool `yaml:"require_digit"`
			RequireSymbol bool `yaml:"require_symbol"`
		} `yaml:"password_policy"`
	} `yaml:"security"`

	SLA struct {
		Enabled       bool   `yaml:"enabled"`
		SweepInterval string `yaml:"sweep_interval"`
		Concurrency   int    `yaml:"concurrency"`
	} `yaml:"sla"`

	// Bootstrap crea un tenant inicial con admin (modo memory o crmctl seed).
	Bootstrap struct {
		TenantSlug    string `yaml:"tenant_slug"`
		TenantName    string `yaml:"tenant_name"`
		AdminEmail    string `yaml:"admin_email"`
		AdminPassword string `yaml:"admin_password"`
	} `yaml:"bootstrap"`

	Flags struct {
		Migrate bool `yaml:"migrate"`
	} `yaml:"flags"`
}

// Default retorna una configuración de desarrollo ejecutable sin YAML:
// store y cache en memoria.
func Default() *Config {
	var c Config
	c.applyDefaults()
	c.SLA.Enabled = true
	return &c
}

// Load lee el YAML, aplica defaults, overrides de entorno y valida.
// Si path está vacío o no existe, parte de Default().
func Load(path string) (*Config, error) {
	c := Default()
	if strings.TrimSpace(path) != "" {
		b, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, err
		default:
			if err := yaml.Unmarshal(b, c); err != nil {
				return nil, fmt.Errorf("config: parse %s: %w", path, err)
			}
			c.applyDefaults()
		}
	}

	c.applyEnvOverrides()

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) applyDefaults() {
	if c.App.Env == "" {
		c.App.Env = "dev"
	}
	if c.App.Name == "" {
		c.App.Name = "crm"
	}
	if c.App.LogLevel == "" {
		c.App.LogLevel = "info"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.ReadTimeout == "" {
		c.Server.ReadTimeout = "15s"
	}
	if c.Server.WriteTimeout == "" {
		c.Server.WriteTimeout = "30s"
	}
	if c.Server.ShutdownTimeout == "" {
		c.Server.ShutdownTimeout = "10s"
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "memory"
	}
	if c.Storage.TenantCacheTTL == "" {
		c.Storage.TenantCacheTTL = "30s"
	}
	if c.Cache.Kind == "" {
		c.Cache.Kind = "memory"
	}
	if c.Cache.Redis.Prefix == "" {
		c.Cache.Redis.Prefix = "crm"
	}
	if c.Cache.PermissionsTTL == "" {
		c.Cache.PermissionsTTL = "5m"
	}
	if c.Cache.RefDataTTL == "" {
		c.Cache.RefDataTTL = "10m"
	}
	if c.JWT.Issuer == "" {
		c.JWT.Issuer = "crm"
	}
	if c.JWT.AccessTTL == "" {
		c.JWT.AccessTTL = "1h"
	}
	if c.JWT.Secret == "" && !strings.EqualFold(c.App.Env, "prod") {
		c.JWT.Secret = DevJWTSecret
	}
	if c.Rate.Window == "" {
		c.Rate.Window = "1m"
	}
	if c.Rate.MaxRequests == 0 {
		c.Rate.MaxRequests = 120
	}
	if c.Rate.Login.Limit == 0 {
		c.Rate.Login.Limit = 10
	}
	if c.Rate.Login.Window == "" {
		c.Rate.Login.Window = "1m"
	}
	if c.SMTP.TLS == "" {
		c.SMTP.TLS = "auto"
	}
	if c.Security.PasswordPolicy.MinLength == 0 {
		c.Security.PasswordPolicy.MinLength = 8
	}
	if c.SLA.SweepInterval == "" {
		c.SLA.SweepInterval = "1m"
	}
	if c.SLA.Concurrency == 0 {
		c.SLA.Concurrency = 4
	}
}

// Validate verifica drivers, duraciones y secretos.
func (c *Config) Validate() error {
	var errs []error

	switch c.Storage.Driver {
	case "memory":
	case "postgres":
		if strings.TrimSpace(c.Storage.DSN) == "" {
			errs = append(errs, errors.New("storage.dsn is required for postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("storage.driver %q not supported (memory|postgres)", c.Storage.Driver))
	}

	switch c.Cache.Kind {
	case "memory", "redis":
	default:
		errs = append(errs, fmt.Errorf("cache.kind %q not supported (memory|redis)", c.Cache.Kind))
	}

	switch strings.ToLower(c.SMTP.TLS) {
	case "auto", "starttls", "ssl", "none":
	default:
		errs = append(errs, fmt.Errorf("smtp.tls %q not supported", c.SMTP.TLS))
	}

	if len(c.JWT.Secret) < 32 {
		errs = append(errs, errors.New("jwt.secret must be at least 32 bytes"))
	}
	if c.IsProd() && c.JWT.Secret == DevJWTSecret {
		errs = append(errs, errors.New("jwt.secret must be set in prod"))
	}

	for name, v := range map[string]string{
		"server.read_timeout":      c.Server.ReadTimeout,
		"server.write_timeout":     c.Server.WriteTimeout,
		"server.shutdown_timeout":  c.Server.ShutdownTimeout,
		"storage.tenant_cache_ttl": c.Storage.TenantCacheTTL,
		"cache.permissions_ttl":    c.Cache.PermissionsTTL,
		"cache.refdata_ttl":        c.Cache.RefDataTTL,
		"jwt.access_ttl":           c.JWT.AccessTTL,
		"rate.window":              c.Rate.Window,
		"rate.login.window":        c.Rate.Login.Window,
		"sla.sweep_interval":       c.SLA.SweepInterval,
	} {
		if d, err := time.ParseDuration(v); err != nil || d <= 0 {
			errs = append(errs, fmt.Errorf("%s: invalid duration %q", name, v))
		}
	}

	if c.SLA.Concurrency < 1 {
		errs = append(errs, errors.New("sla.concurrency must be >= 1"))
	}
	return errors.Join(errs...)
}

// IsProd indica si el entorno es producción.
func (c *Config) IsProd() bool { return strings.EqualFold(c.App.Env, "prod") }

// Dur parsea una duración ya validada; fallback def si está vacía o es inválida.
func Dur(s string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil || d <= 0 {
		return def
	}
	return d
}

// ---- Helpers env ----

func getEnvStr(keys ...string) (string, bool) {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v, true
		}
	}
	return "", false
}

func getEnvInt(keys ...string) (int, bool) {
	if s, ok := getEnvStr(keys...); ok {
		if i, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return i, true
		}
	}
	return 0, false
}

func getEnvBool(keys ...string) (bool, bool) {
	if s, ok := getEnvStr(keys...); ok {
		if b, err := strconv.ParseBool(strings.TrimSpace(s)); err == nil {
			return b, true
		}
	}
	return false, false
}

func getEnvCSV(keys ...string) ([]string, bool) {
	s, ok := getEnvStr(keys...)
	if !ok {
		return nil, false
	}
	out := []string{}
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out, true
}

// applyEnvOverrides pisa el YAML con variables de entorno (CRM_* y alias comunes).
func (c *Config) applyEnvOverrides() {
	if v, ok := getEnvStr("APP_ENV", "CRM_ENV"); ok {
		c.App.Env = strings.ToLower(v)
	}
	if v, ok := getEnvStr("LOG_LEVEL", "CRM_LOG_LEVEL"); ok {
		c.App.LogLevel = v
	}

	// SERVER
	if v, ok := getEnvStr("CRM_ADDR", "SERVER_ADDR"); ok {
		c.Server.Addr = v
	}
	if v, ok := getEnvCSV("CRM_CORS_ALLOWED_ORIGINS"); ok {
		c.Server.CORSAllowedOrigins = v
	}

	// STORAGE
	if v, ok := getEnvStr("CRM_STORAGE_DRIVER"); ok {
		c.Storage.Driver = v
	}
	if v, ok := getEnvStr("DATABASE_URL", "CRM_STORAGE_DSN"); ok {
		c.Storage.DSN = v
		if _, explicit := getEnvStr("CRM_STORAGE_DRIVER"); !explicit {
			c.Storage.Driver = "postgres"
		}
	}
	if v, ok := getEnvInt("CRM_POSTGRES_MAX_OPEN_CONNS"); ok {
		c.Storage.Postgres.MaxOpenConns = v
	}

	// CACHE
	if v, ok := getEnvStr("CRM_CACHE_KIND"); ok {
		c.Cache.Kind = v
	}
	if v, ok := getEnvStr("REDIS_ADDR", "CRM_REDIS_ADDR"); ok {
		c.Cache.Redis.Addr = v
		if _, explicit := getEnvStr("CRM_CACHE_KIND"); !explicit {
			c.Cache.Kind = "redis"
		}
	}
	if v, ok := getEnvStr("REDIS_PASSWORD", "CRM_REDIS_PASSWORD"); ok {
		c.Cache.Redis.Password = v
	}
	if v, ok := getEnvInt("REDIS_DB", "CRM_REDIS_DB"); ok {
		c.Cache.Redis.DB = v
	}

	// JWT
	if v, ok := getEnvStr("JWT_SECRET", "CRM_JWT_SECRET"); ok {
		c.JWT.Secret = v
	}
	if v, ok := getEnvStr("CRM_JWT_ISSUER"); ok {
		c.JWT.Issuer = v
	}
	if v, ok := getEnvStr("CRM_JWT_ACCESS_TTL"); ok {
		c.JWT.AccessTTL = v
	}

	// RATE
	if v, ok := getEnvBool("CRM_RATE_ENABLED"); ok {
		c.Rate.Enabled = v
	}
	if v, ok := getEnvInt("CRM_RATE_MAX_REQUESTS"); ok {
		c.Rate.MaxRequests = v
	}
	if v, ok := getEnvStr("CRM_RATE_WINDOW"); ok {
		c.Rate.Window = v
	}

	// SMTP
	if v, ok := getEnvStr("SMTP_HOST", "CRM_SMTP_HOST"); ok {
		c.SMTP.Host = v
	}
	if v, ok := getEnvInt("SMTP_PORT", "CRM_SMTP_PORT"); ok {
		c.SMTP.Port = v
	}
	if v, ok := getEnvStr("SMTP_USERNAME", "CRM_SMTP_USERNAME"); ok {
		c.SMTP.Username = v
	}
	if v, ok := getEnvStr("SMTP_PASSWORD", "CRM_SMTP_PASSWORD"); ok {
		c.SMTP.Password = v
	}
	if v, ok := getEnvStr("SMTP_FROM", "CRM_SMTP_FROM"); ok {
		c.SMTP.From = v
	}

	// SLA
	if v, ok := getEnvBool("CRM_SLA_ENABLED"); ok {
		c.SLA.Enabled = v
	}
	if v, ok := getEnvStr("CRM_SLA_SWEEP_INTERVAL"); ok {
		c.SLA.SweepInterval = v
	}

	// BOOTSTRAP
	if v, ok := getEnvStr("CRM_BOOTSTRAP_TENANT"); ok {
		c.Bootstrap.TenantSlug = v
	}
	if v, ok := getEnvStr("CRM_BOOTSTRAP_ADMIN_EMAIL"); ok {
		c.Bootstrap.AdminEmail = v
	}
	if v, ok := getEnvStr("CRM_BOOTSTRAP_ADMIN_PASSWORD"); ok {
		c.Bootstrap.AdminPassword = v
	}

	if v, ok := getEnvBool("CRM_MIGRATE", "FLAGS_MIGRATE"); ok {
		c.Flags.Migrate = v
	}

	// En prod nunca se usa el secreto de desarrollo implícito.
	if c.IsProd() && c.JWT.Secret == DevJWTSecret {
		if _, explicit := getEnvStr("JWT_SECRET", "CRM_JWT_SECRET"); !explicit {
			c.JWT.Secret = ""
		}
	}
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeYAML(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestDefaultIsValid(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())
	require.Equal(t, "memory", c.Storage.Driver)
	require.Equal(t, "memory", c.Cache.Kind)
	require.Equal(t, 8, c.Security.PasswordPolicy.MinLength)
	require.Equal(t, time.Minute, Dur(c.SLA.SweepInterval, 0))
}

func TestLoadYAMLWithEnvOverrides(t *testing.T) {
	p := writeYAML(t, `
app:
  env: staging
server:
  addr: ":9000"
storage:
  driver: postgres
  dsn: postgres://crm@localhost/crm
jwt:
  secret: "0123456789abcdef0123456789abcdef"
sla:
  sweep_interval: 30s
`)
	t.Setenv("CRM_ADDR", ":9100")
	t.Setenv("REDIS_ADDR", "localhost:6380")

	c, err := Load(p)
	require.NoError(t, err)
	require.Equal(t, "staging", c.App.Env)
	require.Equal(t, ":9100", c.Server.Addr)
	require.Equal(t, "postgres", c.Storage.Driver)
	require.Equal(t, "redis", c.Cache.Kind)
	require.Equal(t, "localhost:6380", c.Cache.Redis.Addr)
	require.Equal(t, 30*time.Second, Dur(c.SLA.SweepInterval, 0))
	require.Equal(t, "1h", c.JWT.AccessTTL)
}

func TestLoadMissingFileFallsBackToDefaults(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	require.Equal(t, ":8080", c.Server.Addr)
}

func TestValidateRejects(t *testing.T) {
	c := Default()
	c.Storage.Driver = "postgres"
	c.Cache.Kind = "memcached"
	c.SLA.SweepInterval = "soon"
	err := c.Validate()
	require.Error(t, err)
	require.Contains(t, err.Error(), "storage.dsn")
	require.Contains(t, err.Error(), "cache.kind")
	require.Contains(t, err.Error(), "sla.sweep_interval")
}

func TestProdRequiresExplicitSecret(t *testing.T) {
	p := writeYAML(t, "app:\n  env: prod\n")
	_, err := Load(p)
	require.Error(t, err)

	t.Setenv("JWT_SECRET", "prod-secret-0123456789abcdef0123456789")
	c, err := Load(p)
	require.NoError(t, err)
	require.True(t, c.IsProd())
}

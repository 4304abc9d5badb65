package bootstrap

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/razorzibra-dot/trialram-sub001/internal/audit"
	"github.com/razorzibra-dot/trialram-sub001/internal/http/services/admin"
	"github.com/razorzibra-dot/trialram-sub001/internal/http/services/rbac"
	"github.com/razorzibra-dot/trialram-sub001/internal/http/services/refdata"
	"github.com/razorzibra-dot/trialram-sub001/internal/security/password"
	"github.com/razorzibra-dot/trialram-sub001/internal/store"
	"github.com/razorzibra-dot/trialram-sub001/internal/store/adapters/memory"
)

func setup(t *testing.T) (*store.Manager, admin.TenantsService) {
	t.Helper()
	conn := memory.New()
	mgr := store.NewManagerWithConnection(conn, time.Minute)
	rec := audit.NewRecorder(conn.Audit())
	rb := rbac.NewService(rbac.Deps{Catalog: conn.RBAC(), Audit: rec})
	svcs := admin.NewServices(admin.Deps{
		ControlPlane: mgr,
		RBAC:         rb,
		RefData:      refdata.NewService(refdata.Deps{Audit: rec}),
		Audit:        rec,
		Password:     password.Params{Memory: 1024, Time: 1, Parallelism: 1, SaltLen: 16, KeyLen: 32},
	})
	return mgr, svcs.Tenants
}

func TestEnsureTenantCreatesSuperAdmin(t *testing.T) {
	mgr, tenants := setup(t)
	ctx := context.Background()

	res, err := EnsureTenant(ctx, AdminBootstrapConfig{Store: mgr, Tenants: tenants, TenantSlug: "Demo"})
	require.NoError(t, err)
	require.True(t, res.Created)
	require.Equal(t, "demo", res.Tenant.Slug)
	require.Equal(t, "admin@demo.local", res.AdminEmail)
	require.NotEmpty(t, res.AdminPassword)

	tda, err := mgr.ForTenant(ctx, "demo")
	require.NoError(t, err)
	u, err := tda.Users().Get(ctx, tda.ID(), res.AdminID)
	require.NoError(t, err)
	require.True(t, u.SuperAdmin)
	require.True(t, password.Verify(res.AdminPassword, u.PasswordHash))
}

func TestEnsureTenantIsIdempotent(t *testing.T) {
	mgr, tenants := setup(t)
	ctx := context.Background()
	cfg := AdminBootstrapConfig{
		Store: mgr, Tenants: tenants, TenantSlug: "demo",
		AdminEmail: "root@demo.io", AdminPassword: "s3cret-pass",
	}

	first, err := EnsureTenant(ctx, cfg)
	require.NoError(t, err)
	require.True(t, first.Created)
	require.Empty(t, first.AdminPassword)

	second, err := EnsureTenant(ctx, cfg)
	require.NoError(t, err)
	require.False(t, second.Created)
	require.Equal(t, first.Tenant.ID, second.Tenant.ID)
}

func TestEnsureTenantRequiresSlug(t *testing.T) {
	mgr, tenants := setup(t)
	_, err := EnsureTenant(context.Background(), AdminBootstrapConfig{Store: mgr, Tenants: tenants})
	require.Error(t, err)
}

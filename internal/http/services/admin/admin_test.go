package admin

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/razorzibra-dot/trialram-sub001/internal/audit"
	"github.com/razorzibra-dot/trialram-sub001/internal/claims"
	"github.com/razorzibra-dot/trialram-sub001/internal/domain/repository"
	"github.com/razorzibra-dot/trialram-sub001/internal/http/services/common"
	"github.com/razorzibra-dot/trialram-sub001/internal/http/services/rbac"
	"github.com/razorzibra-dot/trialram-sub001/internal/http/services/refdata"
	"github.com/razorzibra-dot/trialram-sub001/internal/security/password"
	"github.com/razorzibra-dot/trialram-sub001/internal/store"
	"github.com/razorzibra-dot/trialram-sub001/internal/store/adapters/memory"
)

var fast = password.Params{Memory: 1024, Time: 1, Parallelism: 1, SaltLen: 16, KeyLen: 32}

type fixture struct {
	svcs Services
	mgr  *store.Manager
	rb   rbac.Service
}

func setup(t *testing.T) fixture {
	t.Helper()
	conn := memory.New()
	mgr := store.NewManagerWithConnection(conn, time.Minute)
	rec := audit.NewRecorder(conn.Audit())
	rb := rbac.NewService(rbac.Deps{Catalog: conn.RBAC(), Audit: rec})
	svcs := NewServices(Deps{
		ControlPlane: mgr,
		RBAC:         rb,
		RefData:      refdata.NewService(refdata.Deps{Audit: rec}),
		Audit:        rec,
		Password:     fast,
	})
	return fixture{svcs: svcs, mgr: mgr, rb: rb}
}

func superCtx() context.Context {
	return claims.WithPrincipal(context.Background(), claims.Principal{UserID: "root", SuperAdmin: true})
}

func TestCreateTenantBootstraps(t *testing.T) {
	f := setup(t)
	ctx := superCtx()

	res, err := f.svcs.Tenants.Create(ctx, CreateTenantInput{
		Slug: "acme-corp", Name: "Acme Corp", AdminEmail: "Owner@Acme.io", AdminPassword: "s3cret-pass",
	})
	require.NoError(t, err)
	require.Equal(t, "standard", res.Tenant.Plan)
	require.Equal(t, repository.TenantActive, res.Tenant.Status)
	require.Equal(t, "owner@acme.io", res.Admin.Email)
	require.Equal(t, "owner", res.Admin.Name)
	require.Equal(t, []string{rbac.RoleAdmin}, res.Admin.Roles)

	tda, err := f.mgr.ForTenant(ctx, "acme-corp")
	require.NoError(t, err)
	roles, err := f.rb.ListRoles(ctx, tda)
	require.NoError(t, err)
	require.Len(t, roles, 4)
	cats, err := tda.RefData().Categories(ctx, tda.ID())
	require.NoError(t, err)
	require.ElementsMatch(t, refdata.DefaultCategories(), cats)

	ok, err := f.rb.HasPermission(ctx, tda, res.Admin.ID, "roles:delete")
	require.NoError(t, err)
	require.True(t, ok)

	u, err := tda.Users().Get(ctx, tda.ID(), res.Admin.ID)
	require.NoError(t, err)
	require.True(t, password.Verify("s3cret-pass", u.PasswordHash))

	_, err = f.svcs.Tenants.Create(ctx, CreateTenantInput{Slug: "acme-corp", Name: "Again", AdminEmail: "a@b.io", AdminPassword: "s3cret-pass"})
	require.True(t, repository.IsConflict(err))
}

func TestCreateTenantValidation(t *testing.T) {
	f := setup(t)
	ctx := superCtx()

	for _, slug := range []string{"ab", "Has Space", "under_score", "this-slug-is-way-too-long-to-be-accepted-by-us"} {
		_, err := f.svcs.Tenants.Create(ctx, CreateTenantInput{Slug: slug, Name: "x", AdminEmail: "a@b.io", AdminPassword: "s3cret-pass"})
		require.True(t, repository.IsInvalidInput(err), slug)
	}

	// La contraseña débil falla en el bootstrap y el tenant se revierte.
	_, err := f.svcs.Tenants.Create(ctx, CreateTenantInput{Slug: "weak", Name: "Weak", AdminEmail: "a@b.io", AdminPassword: "short"})
	require.True(t, repository.IsInvalidInput(err))
	_, err = f.svcs.Tenants.Get(ctx, "weak")
	require.True(t, repository.IsNotFound(err))
}

func TestSuspendActivateDelete(t *testing.T) {
	f := setup(t)
	ctx := superCtx()
	res, err := f.svcs.Tenants.Create(ctx, CreateTenantInput{Slug: "globex", Name: "Globex", AdminEmail: "hank@globex.io", AdminPassword: "s3cret-pass"})
	require.NoError(t, err)

	_, err = f.mgr.ForTenant(ctx, "globex")
	require.NoError(t, err)

	sus, err := f.svcs.Tenants.Suspend(ctx, res.Tenant.ID)
	require.NoError(t, err)
	require.Equal(t, repository.TenantSuspended, sus.Status)
	_, err = f.mgr.ForTenant(ctx, "globex")
	require.ErrorIs(t, err, repository.ErrTenantSuspended)

	_, err = f.svcs.Tenants.Activate(ctx, "globex")
	require.NoError(t, err)
	_, err = f.mgr.ForTenant(ctx, "globex")
	require.NoError(t, err)

	up, err := f.svcs.Tenants.Update(ctx, "globex", TenantUpdate{Plan: common.Ptr("enterprise")})
	require.NoError(t, err)
	require.Equal(t, "enterprise", up.Plan)

	list, err := f.svcs.Tenants.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, f.svcs.Tenants.Delete(ctx, "globex"))
	_, err = f.mgr.ForTenant(ctx, "globex")
	require.True(t, repository.IsNotFound(err))
}

func TestUsers(t *testing.T) {
	f := setup(t)
	ctx := superCtx()
	res, err := f.svcs.Tenants.Create(ctx, CreateTenantInput{Slug: "initech", Name: "Initech", AdminEmail: "bill@initech.io", AdminPassword: "s3cret-pass"})
	require.NoError(t, err)
	tda, err := f.mgr.ForTenant(ctx, "initech")
	require.NoError(t, err)
	users := f.svcs.Users

	_, err = users.Create(ctx, tda, UserInput{Email: "peter@initech.io", Password: "short"})
	require.True(t, repository.IsInvalidInput(err))
	_, err = users.Create(ctx, tda, UserInput{Email: "peter@initech.io", Password: "tps-reports", Roles: []string{"ghost"}})
	require.True(t, repository.IsInvalidInput(err))
	_, err = tda.Users().GetByEmail(ctx, tda.ID(), "peter@initech.io")
	require.True(t, repository.IsNotFound(err), "failed role assignment rolls back the user")

	peter, err := users.Create(ctx, tda, UserInput{Email: "peter@initech.io", Name: "Peter", Password: "tps-reports", Roles: []string{rbac.RoleAgent}})
	require.NoError(t, err)
	require.Equal(t, []string{rbac.RoleAgent}, peter.Roles)
	_, err = users.Create(ctx, tda, UserInput{Email: "PETER@initech.io", Password: "tps-reports"})
	require.True(t, repository.IsConflict(err))

	ok, err := f.rb.HasPermission(ctx, tda, peter.ID, "tickets:update")
	require.NoError(t, err)
	require.True(t, ok)

	_, err = users.Update(ctx, tda, peter.ID, UserUpdate{Active: common.Ptr(false)})
	require.NoError(t, err)
	ok, err = f.rb.HasPermission(ctx, tda, peter.ID, "tickets:update")
	require.NoError(t, err)
	require.False(t, ok, "inactive users hold no permissions")

	bill := claims.WithPrincipal(context.Background(), claims.Principal{UserID: res.Admin.ID, TenantID: tda.ID()})
	require.True(t, repository.IsConflict(users.Delete(bill, tda, res.Admin.ID)))
	require.NoError(t, users.Delete(bill, tda, peter.ID))

	got, err := users.Get(ctx, tda, res.Admin.ID)
	require.NoError(t, err)
	require.Equal(t, []string{rbac.RoleAdmin}, got.Roles)
}

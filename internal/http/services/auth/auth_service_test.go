package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/razorzibra-dot/trialram-sub001/internal/audit"
	"github.com/razorzibra-dot/trialram-sub001/internal/claims"
	"github.com/razorzibra-dot/trialram-sub001/internal/domain/repository"
	"github.com/razorzibra-dot/trialram-sub001/internal/http/services/rbac"
	jwtx "github.com/razorzibra-dot/trialram-sub001/internal/jwt"
	"github.com/razorzibra-dot/trialram-sub001/internal/security/password"
	"github.com/razorzibra-dot/trialram-sub001/internal/store"
	"github.com/razorzibra-dot/trialram-sub001/internal/store/storetest"
)

var fast = password.Params{Memory: 1024, Time: 1, Parallelism: 1, SaltLen: 16, KeyLen: 32}

type fixture struct {
	svc    Service
	issuer *jwtx.Issuer
	mgr    *store.Manager
	tda    *store.TenantDataAccess
	user   repository.User
}

func setup(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()
	conn, tda := storetest.NewTenant(t, "acme")
	mgr := store.NewManagerWithConnection(conn, time.Minute)

	rb := rbac.NewService(rbac.Deps{Catalog: conn.RBAC()})
	require.NoError(t, rb.SeedTenant(ctx, tda))

	u := storetest.User(t, tda, "ana@acme.io", true, rbac.RoleAgent)
	h, err := password.Hash(fast, "correct horse")
	require.NoError(t, err)
	u.PasswordHash = h
	require.NoError(t, tda.Users().Update(ctx, &u))

	iss, err := jwtx.NewIssuer("crm", []byte("0123456789abcdef0123456789abcdef"), time.Hour)
	require.NoError(t, err)

	svc := NewService(Deps{Tenants: mgr, Issuer: iss, RBAC: rb, Audit: audit.NewRecorder(conn.Audit()), Password: fast})
	return fixture{svc: svc, issuer: iss, mgr: mgr, tda: tda, user: u}
}

func TestLoginIssuesToken(t *testing.T) {
	f := setup(t)
	ctx := claims.WithClientIP(context.Background(), "192.0.2.7")

	res, err := f.svc.Login(ctx, LoginInput{Tenant: "acme", Email: " ANA@acme.io ", Password: "correct horse"})
	require.NoError(t, err)
	require.Equal(t, []string{rbac.RoleAgent}, res.Roles)
	require.Greater(t, res.ExpiresIn, 3500)

	c, err := f.issuer.Parse(res.AccessToken)
	require.NoError(t, err)
	require.Equal(t, f.user.ID, c.UserID())
	require.Equal(t, f.tda.ID(), c.TenantID)
	require.False(t, c.SuperAdmin)

	page, err := f.tda.Audit().List(ctx, f.tda.ID(), repository.AuditFilter{Resource: "users"})
	require.NoError(t, err)
	require.Equal(t, 1, page.Total)
	require.Equal(t, audit.ActionLogin, page.Items[0].Action)
	require.Equal(t, "192.0.2.7", page.Items[0].IP)
}

func TestLoginByTenantID(t *testing.T) {
	f := setup(t)
	_, err := f.svc.Login(context.Background(), LoginInput{Tenant: f.tda.ID(), Email: "ana@acme.io", Password: "correct horse"})
	require.NoError(t, err)
}

func TestLoginFailures(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.svc.Login(ctx, LoginInput{Tenant: "acme", Email: "ana@acme.io", Password: "nope"})
	require.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = f.svc.Login(ctx, LoginInput{Tenant: "acme", Email: "who@acme.io", Password: "correct horse"})
	require.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = f.svc.Login(ctx, LoginInput{Tenant: "nowhere", Email: "ana@acme.io", Password: "correct horse"})
	require.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = f.svc.Login(ctx, LoginInput{Tenant: "acme"})
	require.ErrorIs(t, err, ErrInvalidCredentials)

	cur, err := f.tda.Users().Get(ctx, f.tda.ID(), f.user.ID)
	require.NoError(t, err)
	cur.Active = false
	require.NoError(t, f.tda.Users().Update(ctx, cur))
	_, err = f.svc.Login(ctx, LoginInput{Tenant: "acme", Email: "ana@acme.io", Password: "correct horse"})
	require.ErrorIs(t, err, ErrUserDisabled)
}

func TestLoginSuspendedTenant(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	tn := f.tda.Tenant()
	tn.Status = repository.TenantSuspended
	require.NoError(t, f.mgr.Tenants().Update(ctx, &tn))
	f.mgr.InvalidateTenant(tn)

	_, err := f.svc.Login(ctx, LoginInput{Tenant: "acme", Email: "ana@acme.io", Password: "correct horse"})
	require.ErrorIs(t, err, repository.ErrTenantSuspended)
}

func TestMe(t *testing.T) {
	f := setup(t)
	me, err := f.svc.Me(context.Background(), f.tda, f.user.ID)
	require.NoError(t, err)
	require.Equal(t, "ana@acme.io", me.User.Email)
	require.Equal(t, "acme", me.Tenant.Slug)
	require.Contains(t, me.Permissions, "tickets:update")
	require.Equal(t, []string{rbac.RoleAgent}, me.Roles)
}

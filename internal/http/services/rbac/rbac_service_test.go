package rbac

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/razorzibra-dot/trialram-sub001/internal/audit"
	"github.com/razorzibra-dot/trialram-sub001/internal/cache"
	"github.com/razorzibra-dot/trialram-sub001/internal/claims"
	"github.com/razorzibra-dot/trialram-sub001/internal/domain/repository"
	"github.com/razorzibra-dot/trialram-sub001/internal/store"
	"github.com/razorzibra-dot/trialram-sub001/internal/store/adapters/memory"
	"github.com/razorzibra-dot/trialram-sub001/internal/store/storetest"
)

func setup(t *testing.T) (context.Context, Service, *memory.Connection, *store.TenantDataAccess) {
	t.Helper()
	conn, tda := storetest.NewTenant(t, "acme")
	svc := NewService(Deps{Catalog: conn.RBAC(), Cache: cache.NewMemory("test"), Audit: audit.NewRecorder(conn.Audit())})
	ctx := claims.WithPrincipal(context.Background(), claims.Principal{UserID: "admin", TenantID: tda.ID(), SuperAdmin: true})
	require.NoError(t, svc.SeedTenant(ctx, tda))
	return ctx, svc, conn, tda
}

func TestSeedTenantIsIdempotent(t *testing.T) {
	ctx, svc, _, tda := setup(t)
	require.NoError(t, svc.SeedTenant(ctx, tda))

	roles, err := svc.ListRoles(ctx, tda)
	require.NoError(t, err)
	require.Len(t, roles, 4)
	for _, r := range roles {
		require.True(t, r.System, r.Name)
	}

	perms, err := svc.ListPermissions(ctx)
	require.NoError(t, err)
	require.Len(t, perms, len(Resources)*len(Actions)+4)
}

func TestSystemRoleDefinitions(t *testing.T) {
	roles := SystemRoles()
	require.Contains(t, roles[RoleAdmin], "roles:delete")
	require.NotContains(t, roles[RoleManager], "roles:read")
	require.NotContains(t, roles[RoleManager], "users:delete")
	require.Contains(t, roles[RoleManager], PermDealsClose)
	require.Contains(t, roles[RoleAgent], "tickets:update")
	require.Contains(t, roles[RoleAgent], "opportunities:create")
	require.NotContains(t, roles[RoleAgent], "deals:create")
	require.NotContains(t, roles[RoleAgent], PermTicketsAssign)
	require.Contains(t, roles[RoleViewer], "refdata:read")
	require.NotContains(t, roles[RoleViewer], "audit:read")
	require.NotContains(t, roles[RoleViewer], "tickets:update")
}

func TestMatch(t *testing.T) {
	require.True(t, Match([]string{"*"}, "deals:close"))
	require.True(t, Match([]string{"deals:*"}, "deals:close"))
	require.True(t, Match([]string{"deals:close"}, "deals:close"))
	require.False(t, Match([]string{"deals:read"}, "deals:close"))
	require.False(t, Match([]string{"tickets:*"}, "deals:close"))
	require.False(t, Match(nil, "deals:read"))
}

func TestCustomRoleLifecycle(t *testing.T) {
	ctx, svc, _, tda := setup(t)

	_, err := svc.CreateRole(ctx, tda, RoleInput{Name: "Bad Name"})
	require.ErrorIs(t, err, repository.ErrInvalidInput)
	_, err = svc.CreateRole(ctx, tda, RoleInput{Name: "sales", Permissions: []string{"deals:fly"}})
	require.ErrorIs(t, err, repository.ErrInvalidInput)

	role, err := svc.CreateRole(ctx, tda, RoleInput{Name: "sales", Permissions: []string{"deals:*", "customers:read", "customers:read"}})
	require.NoError(t, err)
	require.Equal(t, []string{"customers:read", "deals:*"}, role.Permissions)

	_, err = svc.CreateRole(ctx, tda, RoleInput{Name: "sales"})
	require.ErrorIs(t, err, repository.ErrConflict)

	newName := "sales-team"
	role, err = svc.UpdateRole(ctx, tda, "sales", RoleUpdate{Name: &newName})
	require.NoError(t, err)
	require.Equal(t, "sales-team", role.Name)

	u := storetest.User(t, tda, "rep@acme.io", true)
	roles, err := svc.AssignRoles(ctx, tda, u.ID, []string{"sales-team"})
	require.NoError(t, err)
	require.Equal(t, []string{"sales-team"}, roles)

	err = svc.DeleteRole(ctx, tda, "sales-team")
	require.ErrorIs(t, err, repository.ErrConflict)

	roles, err = svc.RevokeRoles(ctx, tda, u.ID, []string{"sales-team"})
	require.NoError(t, err)
	require.Empty(t, roles)
	require.NoError(t, svc.DeleteRole(ctx, tda, "sales-team"))

	page, err := tda.Audit().List(ctx, tda.ID(), repository.AuditFilter{Resource: "roles", PageSize: 100})
	require.NoError(t, err)
	require.GreaterOrEqual(t, page.Total, 3)
}

func TestSystemRolesAreImmutable(t *testing.T) {
	ctx, svc, _, tda := setup(t)

	other := "boss"
	_, err := svc.UpdateRole(ctx, tda, RoleAdmin, RoleUpdate{Name: &other})
	require.ErrorIs(t, err, repository.ErrForbidden)
	_, err = svc.SetRolePermissions(ctx, tda, RoleViewer, []string{"*"})
	require.ErrorIs(t, err, repository.ErrForbidden)
	require.ErrorIs(t, svc.DeleteRole(ctx, tda, RoleAgent), repository.ErrForbidden)

	desc := "Full access"
	role, err := svc.UpdateRole(ctx, tda, RoleAdmin, RoleUpdate{Description: &desc})
	require.NoError(t, err)
	require.Equal(t, "Full access", role.Description)
}

func TestEffectivePermissions(t *testing.T) {
	ctx, svc, conn, tda := setup(t)

	agent := storetest.User(t, tda, "agent@acme.io", true, RoleAgent)
	ok, err := svc.HasPermission(ctx, tda, agent.ID, "tickets:update")
	require.NoError(t, err)
	require.True(t, ok)
	ok, _ = svc.HasPermission(ctx, tda, agent.ID, PermTicketsAssign)
	require.False(t, ok)

	// cacheado hasta invalidar
	_, err = svc.AssignRoles(ctx, tda, agent.ID, []string{RoleManager})
	require.NoError(t, err)
	ok, _ = svc.HasPermission(ctx, tda, agent.ID, PermTicketsAssign)
	require.True(t, ok)

	inactive := storetest.User(t, tda, "gone@acme.io", false, RoleAdmin)
	perms, err := svc.EffectivePermissions(ctx, tda, inactive.ID)
	require.NoError(t, err)
	require.Empty(t, perms)

	sa := storetest.User(t, tda, "root@acme.io", true)
	sa.SuperAdmin = true
	require.NoError(t, tda.Users().Update(ctx, &sa))
	ok, _ = svc.HasPermission(ctx, tda, sa.ID, "roles:delete")
	require.True(t, ok)

	// usuario de otro tenant no tiene permisos aquí
	other := storetest.Tenant(t, conn, "globex")
	require.NoError(t, svc.SeedTenant(ctx, other))
	stranger := storetest.User(t, other, "x@globex.io", true, RoleAdmin)
	ok, err = svc.HasPermission(ctx, tda, stranger.ID, "customers:read")
	require.NoError(t, err)
	require.False(t, ok)

	_, err = svc.AssignRoles(ctx, tda, stranger.ID, []string{RoleAdmin})
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestUsersWithPermissionHonoursWildcards(t *testing.T) {
	ctx, svc, _, tda := setup(t)
	storetest.Role(t, tda, "support", "tickets:*")

	a := storetest.User(t, tda, "a@acme.io", true, RoleAgent)
	b := storetest.User(t, tda, "b@acme.io", true, "support")
	c := storetest.User(t, tda, "c@acme.io", true, RoleAdmin)
	storetest.User(t, tda, "d@acme.io", true, RoleViewer)
	storetest.User(t, tda, "e@acme.io", false, RoleAgent)

	ids, err := svc.UsersWithPermission(ctx, tda, "tickets:update")
	require.NoError(t, err)
	require.ElementsMatch(t, []string{a.ID, b.ID, c.ID}, ids)
}

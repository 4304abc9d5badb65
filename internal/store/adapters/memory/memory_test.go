package memory

import (
	"context"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/razorzibra-dot/trialram-sub001/internal/domain/repository"
)

func seedCustomers(t *testing.T, c *Connection, tenantID string, n int) {
	t.Helper()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		require.NoError(t, c.Customers().Create(context.Background(), &repository.Customer{
			ID:        fmt.Sprintf("%s-c%02d", tenantID, i),
			TenantID:  tenantID,
			Name:      fmt.Sprintf("Customer %02d", i),
			Email:     fmt.Sprintf("c%02d@example.com", i),
			Status:    repository.CustomerActive,
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}))
	}
}

func TestTenantIsolation(t *testing.T) {
	ctx := context.Background()
	c := New()
	seedCustomers(t, c, "t1", 3)
	seedCustomers(t, c, "t2", 2)

	_, err := c.Customers().Get(ctx, "t2", "t1-c00")
	require.ErrorIs(t, err, repository.ErrNotFound)

	err = c.Customers().Delete(ctx, "t2", "t1-c00")
	require.ErrorIs(t, err, repository.ErrNotFound)

	// Update con tenant ajeno no toca la fila original.
	err = c.Customers().Update(ctx, &repository.Customer{ID: "t1-c00", TenantID: "t2", Name: "hijack"})
	require.ErrorIs(t, err, repository.ErrNotFound)

	got, err := c.Customers().Get(ctx, "t1", "t1-c00")
	require.NoError(t, err)
	require.Equal(t, "Customer 00", got.Name)

	page, err := c.Customers().List(ctx, "t2", repository.ListFilter{})
	require.NoError(t, err)
	require.Equal(t, 2, page.Total)
}

func TestListPaginationAndSort(t *testing.T) {
	ctx := context.Background()
	c := New()
	seedCustomers(t, c, "t1", 25)

	page, err := c.Customers().List(ctx, "t1", repository.ListFilter{})
	require.NoError(t, err)
	require.Equal(t, 25, page.Total)
	require.Equal(t, 1, page.Page)
	require.Equal(t, repository.DefaultPageSize, page.PageSize)
	require.Len(t, page.Items, 20)
	require.Equal(t, "t1-c00", page.Items[0].ID)

	page, err = c.Customers().List(ctx, "t1", repository.ListFilter{Page: 2, SortBy: "created_at", SortDesc: true})
	require.NoError(t, err)
	require.Len(t, page.Items, 5)
	require.Equal(t, "t1-c04", page.Items[0].ID)

	page, err = c.Customers().List(ctx, "t1", repository.ListFilter{Search: "C07@EXAMPLE"})
	require.NoError(t, err)
	require.Equal(t, 1, page.Total)

	page, err = c.Customers().List(ctx, "t1", repository.ListFilter{Page: 9})
	require.NoError(t, err)
	require.Empty(t, page.Items)
	require.Equal(t, 25, page.Total)

	page, err = c.Customers().List(ctx, "t1", repository.ListFilter{Page: math.MaxInt})
	require.NoError(t, err)
	require.Empty(t, page.Items)
	require.Equal(t, repository.MaxPage, page.Page)
}

func TestUserEmailUniquePerTenant(t *testing.T) {
	ctx := context.Background()
	c := New()
	require.NoError(t, c.Users().Create(ctx, &repository.User{ID: "u1", TenantID: "t1", Email: "Ana@x.io"}))
	err := c.Users().Create(ctx, &repository.User{ID: "u2", TenantID: "t1", Email: "ana@x.io"})
	require.ErrorIs(t, err, repository.ErrConflict)
	require.NoError(t, c.Users().Create(ctx, &repository.User{ID: "u3", TenantID: "t2", Email: "ana@x.io"}))

	u, err := c.Users().GetByEmail(ctx, "t1", "ANA@X.IO")
	require.NoError(t, err)
	require.Equal(t, "u1", u.ID)
}

func TestRBACAssignmentsAndPermissions(t *testing.T) {
	ctx := context.Background()
	c := New()
	require.NoError(t, c.Users().Create(ctx, &repository.User{ID: "u1", TenantID: "t1", Email: "a@x.io", Active: true}))
	require.NoError(t, c.Users().Create(ctx, &repository.User{ID: "u2", TenantID: "t1", Email: "b@x.io", Active: false}))

	_, err := c.RBAC().CreateRole(ctx, "t1", repository.RoleInput{Name: "support"})
	require.NoError(t, err)
	_, err = c.RBAC().CreateRole(ctx, "t1", repository.RoleInput{Name: "support"})
	require.ErrorIs(t, err, repository.ErrConflict)

	require.NoError(t, c.RBAC().SetRolePermissions(ctx, "t1", "support", []string{"tickets:update", "tickets:read", "tickets:read"}))
	require.NoError(t, c.RBAC().AssignRole(ctx, "t1", "u1", "support"))
	require.NoError(t, c.RBAC().AssignRole(ctx, "t1", "u2", "support"))
	require.ErrorIs(t, c.RBAC().AssignRole(ctx, "t2", "u1", "support"), repository.ErrNotFound)

	perms, err := c.RBAC().GetUserPermissions(ctx, "t1", "u1")
	require.NoError(t, err)
	require.Equal(t, []string{"tickets:read", "tickets:update"}, perms)

	ids, err := c.RBAC().ListUsersWithPermission(ctx, "t1", []string{"tickets:update", "tickets:*", "*"})
	require.NoError(t, err)
	require.Equal(t, []string{"u1"}, ids)

	n, err := c.RBAC().GetRoleUsersCount(ctx, "t1", "support")
	require.NoError(t, err)
	require.Equal(t, 2, n)

	_, err = c.RBAC().UpdateRole(ctx, "t1", "support", repository.RoleInput{Name: "helpdesk"})
	require.NoError(t, err)
	roles, err := c.RBAC().GetUserRoles(ctx, "t1", "u1")
	require.NoError(t, err)
	require.Equal(t, []string{"helpdesk"}, roles)

	require.NoError(t, c.Users().Delete(ctx, "t1", "u2"))
	n, err = c.RBAC().GetRoleUsersCount(ctx, "t1", "helpdesk")
	require.NoError(t, err)
	require.Equal(t, 1, n)
}

func TestTenantDeleteCascades(t *testing.T) {
	ctx := context.Background()
	c := New()
	require.NoError(t, c.Tenants().Create(ctx, &repository.Tenant{ID: "t1", Slug: "acme"}))
	require.ErrorIs(t, c.Tenants().Create(ctx, &repository.Tenant{ID: "t9", Slug: "acme"}), repository.ErrConflict)
	seedCustomers(t, c, "t1", 2)

	require.NoError(t, c.Tenants().Delete(ctx, "t1"))
	page, err := c.Customers().List(ctx, "t1", repository.ListFilter{})
	require.NoError(t, err)
	require.Zero(t, page.Total)
}

func TestDealAggregates(t *testing.T) {
	ctx := context.Background()
	c := New()
	deals := []repository.Deal{
		{ID: "d1", TenantID: "t1", Stage: repository.StageLead, ValueCents: 1000, Probability: 10, OwnerID: "u1"},
		{ID: "d2", TenantID: "t1", Stage: repository.StageLead, ValueCents: 3000, Probability: 10, OwnerID: "u1"},
		{ID: "d3", TenantID: "t1", Stage: repository.StageClosedWon, ValueCents: 5000, Probability: 100, OwnerID: "u2"},
	}
	for i := range deals {
		require.NoError(t, c.Deals().Create(ctx, &deals[i]))
	}

	counts, err := c.Deals().CountOpenByOwner(ctx, "t1")
	require.NoError(t, err)
	require.Equal(t, map[string]int{"u1": 2}, counts)

	agg, err := c.Deals().SumByStage(ctx, "t1")
	require.NoError(t, err)
	require.Equal(t, []repository.StageAggregate{
		{Stage: repository.StageLead, Count: 2, ValueCents: 4000, WeightedCents: 400},
		{Stage: repository.StageClosedWon, Count: 1, ValueCents: 5000, WeightedCents: 5000},
	}, agg)
}

func TestRefDataOrderingAndUniqueness(t *testing.T) {
	ctx := context.Background()
	c := New()
	items := []repository.RefItem{
		{ID: "1", TenantID: "t1", Category: "industry", Key: "tech", Label: "Technology", SortOrder: 2, Active: true},
		{ID: "2", TenantID: "t1", Category: "industry", Key: "agro", Label: "Agriculture", SortOrder: 1, Active: true},
		{ID: "3", TenantID: "t1", Category: "industry", Key: "bank", Label: "Banking", SortOrder: 1, Active: false},
	}
	for i := range items {
		require.NoError(t, c.RefData().Create(ctx, &items[i]))
	}
	dup := repository.RefItem{ID: "4", TenantID: "t1", Category: "industry", Key: "tech"}
	require.ErrorIs(t, c.RefData().Create(ctx, &dup), repository.ErrConflict)

	all, err := c.RefData().List(ctx, "t1", "industry", false)
	require.NoError(t, err)
	require.Equal(t, "agro", all[0].Key)
	require.Equal(t, "bank", all[1].Key)
	require.Equal(t, "tech", all[2].Key)

	active, err := c.RefData().List(ctx, "t1", "industry", true)
	require.NoError(t, err)
	require.Len(t, active, 2)

	require.NoError(t, c.RefData().Delete(ctx, "t1", "industry", "bank"))
	_, err = c.RefData().Get(ctx, "t1", "industry", "bank")
	require.ErrorIs(t, err, repository.ErrNotFound)
}

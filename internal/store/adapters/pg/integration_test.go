package pg

import (
	"context"
	"fmt"
	"math"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/razorzibra-dot/trialram-sub001/internal/domain/repository"
	"github.com/razorzibra-dot/trialram-sub001/internal/store"
	migrations "github.com/razorzibra-dot/trialram-sub001/migrations/postgres"
)

// Estos tests corren contra una base real solo si CRM_TEST_DATABASE_URL está definida.
// Cada test crea sus propios tenants y los borra al final (ON DELETE CASCADE).

func openTestDB(t *testing.T) *Connection {
	t.Helper()
	dsn := os.Getenv("CRM_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("CRM_TEST_DATABASE_URL not set")
	}
	ctx := context.Background()

	conn, err := (&postgresAdapter{}).Connect(ctx, store.AdapterConfig{Name: AdapterName, DSN: dsn})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	c := conn.(*Connection)
	_, err = store.NewMigrator(migrations.FS, migrations.Dir).Run(ctx, c.MigrationExecutor())
	require.NoError(t, err)
	return c
}

func createTenant(t *testing.T, c *Connection) string {
	t.Helper()
	id := uuid.NewString()
	now := time.Now().UTC()
	require.NoError(t, c.Tenants().Create(context.Background(), &repository.Tenant{
		ID:        id,
		Slug:      "it-" + id[:8],
		Name:      "integration " + id[:8],
		Plan:      "free",
		Status:    repository.TenantActive,
		CreatedAt: now,
		UpdatedAt: now,
	}))
	t.Cleanup(func() { _ = c.Tenants().Delete(context.Background(), id) })
	return id
}

func createUser(t *testing.T, c *Connection, tenantID, email string, active bool) string {
	t.Helper()
	id := uuid.NewString()
	now := time.Now().UTC()
	require.NoError(t, c.Users().Create(context.Background(), &repository.User{
		ID:        id,
		TenantID:  tenantID,
		Email:     email,
		Name:      email,
		Active:    active,
		CreatedAt: now,
		UpdatedAt: now,
	}))
	return id
}

func seedPGCustomers(t *testing.T, c *Connection, tenantID string, n int) []string {
	t.Helper()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	ids := make([]string, n)
	for i := 0; i < n; i++ {
		ids[i] = uuid.NewString()
		at := base.Add(time.Duration(i) * time.Hour)
		require.NoError(t, c.Customers().Create(context.Background(), &repository.Customer{
			ID:        ids[i],
			TenantID:  tenantID,
			Name:      fmt.Sprintf("Customer %02d", i),
			Email:     fmt.Sprintf("c%02d@example.com", i),
			Status:    repository.CustomerActive,
			CreatedAt: at,
			UpdatedAt: at,
		}))
	}
	return ids
}

func TestPostgresTenantIsolation(t *testing.T) {
	ctx := context.Background()
	c := openTestDB(t)
	t1, t2 := createTenant(t, c), createTenant(t, c)
	ids := seedPGCustomers(t, c, t1, 3)
	seedPGCustomers(t, c, t2, 2)

	_, err := c.Customers().Get(ctx, t2, ids[0])
	require.ErrorIs(t, err, repository.ErrNotFound)
	require.ErrorIs(t, c.Customers().Delete(ctx, t2, ids[0]), repository.ErrNotFound)

	err = c.Customers().Update(ctx, &repository.Customer{ID: ids[0], TenantID: t2, Name: "hijack", UpdatedAt: time.Now()})
	require.ErrorIs(t, err, repository.ErrNotFound)

	got, err := c.Customers().Get(ctx, t1, ids[0])
	require.NoError(t, err)
	require.Equal(t, "Customer 00", got.Name)

	_, err = c.Customers().Get(ctx, t1, "not-a-uuid")
	require.ErrorIs(t, err, repository.ErrNotFound)

	page, err := c.Customers().List(ctx, t2, repository.ListFilter{})
	require.NoError(t, err)
	require.Equal(t, 2, page.Total)
}

func TestPostgresPaginationAndSort(t *testing.T) {
	ctx := context.Background()
	c := openTestDB(t)
	tenant := createTenant(t, c)
	seedPGCustomers(t, c, tenant, 25)

	page, err := c.Customers().List(ctx, tenant, repository.ListFilter{})
	require.NoError(t, err)
	require.Equal(t, 25, page.Total)
	require.Len(t, page.Items, repository.DefaultPageSize)
	require.Equal(t, "Customer 00", page.Items[0].Name)

	page, err = c.Customers().List(ctx, tenant, repository.ListFilter{Page: 2, SortBy: "created_at", SortDesc: true})
	require.NoError(t, err)
	require.Len(t, page.Items, 5)
	require.Equal(t, "Customer 04", page.Items[0].Name)

	page, err = c.Customers().List(ctx, tenant, repository.ListFilter{Page: 3, PageSize: 10, SortBy: "name"})
	require.NoError(t, err)
	require.Len(t, page.Items, 5)
	require.Equal(t, "Customer 20", page.Items[0].Name)

	page, err = c.Customers().List(ctx, tenant, repository.ListFilter{Search: "C07@EXAMPLE"})
	require.NoError(t, err)
	require.Equal(t, 1, page.Total)

	page, err = c.Customers().List(ctx, tenant, repository.ListFilter{Page: math.MaxInt})
	require.NoError(t, err)
	require.Empty(t, page.Items)
	require.Equal(t, repository.MaxPage, page.Page)
}

func TestPostgresUserEmailUniquePerTenant(t *testing.T) {
	ctx := context.Background()
	c := openTestDB(t)
	t1, t2 := createTenant(t, c), createTenant(t, c)
	createUser(t, c, t1, "Ana@Example.com", true)

	now := time.Now().UTC()
	err := c.Users().Create(ctx, &repository.User{
		ID: uuid.NewString(), TenantID: t1, Email: "ana@example.com", CreatedAt: now, UpdatedAt: now,
	})
	require.ErrorIs(t, err, repository.ErrConflict)

	createUser(t, c, t2, "ana@example.com", true)

	u, err := c.Users().GetByEmail(ctx, t1, " ANA@example.com ")
	require.NoError(t, err)
	require.Equal(t, "Ana@Example.com", u.Email)
}

func TestPostgresRBAC(t *testing.T) {
	ctx := context.Background()
	c := openTestDB(t)
	t1, t2 := createTenant(t, c), createTenant(t, c)
	rbac := c.RBAC()

	_, err := rbac.CreateRole(ctx, t1, repository.RoleInput{Name: "sales"})
	require.NoError(t, err)
	_, err = rbac.CreateRole(ctx, t1, repository.RoleInput{Name: "sales"})
	require.ErrorIs(t, err, repository.ErrConflict)
	_, err = rbac.CreateRole(ctx, t1, repository.RoleInput{Name: "support"})
	require.NoError(t, err)

	require.NoError(t, rbac.SetRolePermissions(ctx, t1, "sales", []string{"deals:read", "customers:read", "deals:read"}))
	role, err := rbac.GetRole(ctx, t1, "sales")
	require.NoError(t, err)
	require.Equal(t, []string{"customers:read", "deals:read"}, role.Permissions)

	u1 := createUser(t, c, t1, "u1@example.com", true)
	u2 := createUser(t, c, t1, "u2@example.com", false)
	foreign := createUser(t, c, t2, "u3@example.com", true)

	require.NoError(t, rbac.AssignRole(ctx, t1, u1, "sales"))
	require.NoError(t, rbac.AssignRole(ctx, t1, u1, "sales"))
	require.NoError(t, rbac.AssignRole(ctx, t1, u2, "sales"))
	require.ErrorIs(t, rbac.AssignRole(ctx, t1, foreign, "sales"), repository.ErrNotFound)
	require.ErrorIs(t, rbac.AssignRole(ctx, t1, u1, "ghost"), repository.ErrNotFound)

	perms, err := rbac.GetUserPermissions(ctx, t1, u1)
	require.NoError(t, err)
	require.Equal(t, []string{"customers:read", "deals:read"}, perms)

	ids, err := rbac.ListUsersWithPermission(ctx, t1, []string{"deals:read", "tickets:update"})
	require.NoError(t, err)
	require.Equal(t, []string{u1}, ids)

	n, err := rbac.GetRoleUsersCount(ctx, t1, "sales")
	require.NoError(t, err)
	require.Equal(t, 2, n)

	_, err = rbac.UpdateRole(ctx, t1, "support", repository.RoleInput{Name: "sales"})
	require.ErrorIs(t, err, repository.ErrConflict)
	renamed, err := rbac.UpdateRole(ctx, t1, "sales", repository.RoleInput{Name: "account-exec", Description: "AE"})
	require.NoError(t, err)
	require.Equal(t, "account-exec", renamed.Name)
	require.Equal(t, []string{"customers:read", "deals:read"}, renamed.Permissions)

	roles, err := rbac.GetUserRoles(ctx, t1, u1)
	require.NoError(t, err)
	require.Equal(t, []string{"account-exec"}, roles)

	require.NoError(t, c.Users().Delete(ctx, t1, u2))
	n, err = rbac.GetRoleUsersCount(ctx, t1, "account-exec")
	require.NoError(t, err)
	require.Equal(t, 1, n)

	require.NoError(t, rbac.RemoveRole(ctx, t1, u1, "account-exec"))
	require.ErrorIs(t, rbac.RemoveRole(ctx, t1, u1, "account-exec"), repository.ErrNotFound)
}

func TestPostgresTicketPrioritySort(t *testing.T) {
	ctx := context.Background()
	c := openTestDB(t)
	tenant := createTenant(t, c)
	now := time.Now().UTC()

	for i, p := range []string{repository.PriorityMedium, repository.PriorityUrgent, repository.PriorityLow, repository.PriorityHigh} {
		at := now.Add(time.Duration(i) * time.Minute)
		require.NoError(t, c.Tickets().Create(ctx, &repository.Ticket{
			ID:              uuid.NewString(),
			TenantID:        tenant,
			CustomerID:      uuid.NewString(),
			Title:           "ticket " + p,
			Priority:        p,
			Status:          repository.TicketOpen,
			ResponseDueAt:   at.Add(time.Hour),
			ResolutionDueAt: at.Add(24 * time.Hour),
			CreatedAt:       at,
			UpdatedAt:       at,
		}))
	}

	page, err := c.Tickets().List(ctx, tenant, repository.ListFilter{SortBy: "priority", SortDesc: true})
	require.NoError(t, err)
	var got []string
	for _, tk := range page.Items {
		got = append(got, tk.Priority)
	}
	require.Equal(t, []string{"urgent", "high", "medium", "low"}, got)

	page, err = c.Tickets().List(ctx, tenant, repository.ListFilter{Priority: repository.PriorityHigh})
	require.NoError(t, err)
	require.Equal(t, 1, page.Total)

	open, err := c.Tickets().ListOpen(ctx, tenant)
	require.NoError(t, err)
	require.Len(t, open, 4)
	require.Equal(t, repository.PriorityMedium, open[0].Priority)
}

func TestPostgresDealAggregates(t *testing.T) {
	ctx := context.Background()
	c := openTestDB(t)
	tenant := createTenant(t, c)
	now := time.Now().UTC()

	deal := func(stage, owner string, value int64, prob int) {
		require.NoError(t, c.Deals().Create(ctx, &repository.Deal{
			ID: uuid.NewString(), TenantID: tenant, CustomerID: uuid.NewString(), Title: stage,
			ValueCents: value, Currency: "USD", Stage: stage, Probability: prob, OwnerID: owner,
			CreatedAt: now, UpdatedAt: now,
		}))
	}
	deal(repository.StageLead, "o1", 1000, 10)
	deal(repository.StageProposal, "o1", 2000, 50)
	deal(repository.StageLead, "o2", 3000, 10)
	deal(repository.StageClosedWon, "o2", 4000, 100)

	counts, err := c.Deals().CountOpenByOwner(ctx, tenant)
	require.NoError(t, err)
	require.Equal(t, map[string]int{"o1": 2, "o2": 1}, counts)

	aggs, err := c.Deals().SumByStage(ctx, tenant)
	require.NoError(t, err)
	require.Equal(t, []repository.StageAggregate{
		{Stage: repository.StageLead, Count: 2, ValueCents: 4000, WeightedCents: 400},
		{Stage: repository.StageProposal, Count: 1, ValueCents: 2000, WeightedCents: 1000},
		{Stage: repository.StageClosedWon, Count: 1, ValueCents: 4000, WeightedCents: 4000},
	}, aggs)
}

func TestPostgresRefDataOrderingAndUniqueness(t *testing.T) {
	ctx := context.Background()
	c := openTestDB(t)
	tenant := createTenant(t, c)
	now := time.Now().UTC()

	item := func(key, label string, order int, active bool) error {
		return c.RefData().Create(ctx, &repository.RefItem{
			ID: uuid.NewString(), TenantID: tenant, Category: "industry", Key: key, Label: label,
			SortOrder: order, Active: active, CreatedAt: now, UpdatedAt: now,
		})
	}
	require.NoError(t, item("retail", "Retail", 2, true))
	require.NoError(t, item("banking", "Banking", 1, true))
	require.NoError(t, item("agro", "Agro", 2, false))
	require.ErrorIs(t, item("retail", "Retail again", 3, true), repository.ErrConflict)

	all, err := c.RefData().List(ctx, tenant, "industry", false)
	require.NoError(t, err)
	var keys []string
	for _, i := range all {
		keys = append(keys, i.Key)
	}
	require.Equal(t, []string{"banking", "agro", "retail"}, keys)

	active, err := c.RefData().List(ctx, tenant, "industry", true)
	require.NoError(t, err)
	require.Len(t, active, 2)

	cats, err := c.RefData().Categories(ctx, tenant)
	require.NoError(t, err)
	require.Equal(t, []string{"industry"}, cats)
}

func TestPostgresTenantDeleteCascades(t *testing.T) {
	ctx := context.Background()
	c := openTestDB(t)
	tenant := createTenant(t, c)
	ids := seedPGCustomers(t, c, tenant, 2)
	u := createUser(t, c, tenant, "gone@example.com", true)

	require.NoError(t, c.Tenants().Delete(ctx, tenant))

	_, err := c.Customers().Get(ctx, tenant, ids[0])
	require.ErrorIs(t, err, repository.ErrNotFound)
	_, err = c.Users().Get(ctx, tenant, u)
	require.ErrorIs(t, err, repository.ErrNotFound)
	require.ErrorIs(t, c.Tenants().Delete(ctx, tenant), repository.ErrNotFound)
}

// Package storetest arma fixtures sobre el adapter memory para tests de services.
package storetest

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/razorzibra-dot/trialram-sub001/internal/domain/repository"
	"github.com/razorzibra-dot/trialram-sub001/internal/store"
	"github.com/razorzibra-dot/trialram-sub001/internal/store/adapters/memory"
)

// Tenant crea un tenant activo y retorna su data access.
func Tenant(t testing.TB, conn store.AdapterConnection, slug string) *store.TenantDataAccess {
	t.Helper()
	now := time.Now().UTC()
	tn := repository.Tenant{
		ID: uuid.NewString(), Slug: slug, Name: strings.ToUpper(slug), Plan: "free",
		Status: repository.TenantActive, CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, conn.Tenants().Create(context.Background(), &tn))
	return store.NewTenantDataAccess(tn, conn)
}

// NewTenant es Tenant sobre una conexión memory nueva.
func NewTenant(t testing.TB, slug string) (*memory.Connection, *store.TenantDataAccess) {
	t.Helper()
	conn := memory.New()
	return conn, Tenant(t, conn, slug)
}

// User crea un usuario en el tenant, con los roles dados (deben existir).
func User(t testing.TB, tda *store.TenantDataAccess, email string, active bool, roles ...string) repository.User {
	t.Helper()
	ctx := context.Background()
	now := time.Now().UTC()
	u := repository.User{
		ID: uuid.NewString(), TenantID: tda.ID(), Email: email, Name: email,
		Active: active, CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, tda.Users().Create(ctx, &u))
	for _, r := range roles {
		require.NoError(t, tda.RBAC().AssignRole(ctx, tda.ID(), u.ID, r))
	}
	return u
}

// Customer crea un customer activo en el tenant.
func Customer(t testing.TB, tda *store.TenantDataAccess, name string) repository.Customer {
	t.Helper()
	now := time.Now().UTC()
	c := repository.Customer{
		ID: uuid.NewString(), TenantID: tda.ID(), Name: name,
		Email:  strings.ToLower(strings.ReplaceAll(name, " ", ".")) + "@example.com",
		Status: repository.CustomerActive, CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, tda.Customers().Create(context.Background(), &c))
	return c
}

// Role crea un rol con permisos en el tenant.
func Role(t testing.TB, tda *store.TenantDataAccess, name string, perms ...string) {
	t.Helper()
	ctx := context.Background()
	_, err := tda.RBAC().CreateRole(ctx, tda.ID(), repository.RoleInput{Name: name})
	require.NoError(t, err)
	require.NoError(t, tda.RBAC().SetRolePermissions(ctx, tda.ID(), name, perms))
}

// Package bootstrap crea el tenant inicial con su administrador.
package bootstrap

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/razorzibra-dot/trialram-sub001/internal/claims"
	"github.com/razorzibra-dot/trialram-sub001/internal/domain/repository"
	"github.com/razorzibra-dot/trialram-sub001/internal/http/services/admin"
	"github.com/razorzibra-dot/trialram-sub001/internal/observability/logger"
	"github.com/razorzibra-dot/trialram-sub001/internal/store"
)

// TenantStore es la vista del store que usa el bootstrap (store.Manager).
type TenantStore interface {
	ResolveTenant(ctx context.Context, slugOrID string) (*repository.Tenant, error)
	ForTenant(ctx context.Context, slugOrID string) (*store.TenantDataAccess, error)
}

// AdminBootstrapConfig configura el bootstrap.
type AdminBootstrapConfig struct {
	Store   TenantStore
	Tenants admin.TenantsService

	TenantSlug    string
	TenantName    string
	AdminEmail    string
	AdminPassword string // vacío = se genera una aleatoria
}

// Result describe lo que hizo el bootstrap.
type Result struct {
	Created       bool
	Tenant        repository.Tenant
	AdminID       string
	AdminEmail    string
	AdminPassword string // sólo si fue generada
}

// EnsureTenant crea el tenant inicial si no existe. El admin inicial queda
// marcado como super admin para poder operar /v1/admin/tenants.
// Es idempotente: si el tenant existe no modifica nada.
func EnsureTenant(ctx context.Context, cfg AdminBootstrapConfig) (*Result, error) {
	log := logger.From(ctx).With(logger.Component("bootstrap"))

	slug := strings.ToLower(strings.TrimSpace(cfg.TenantSlug))
	if slug == "" {
		return nil, fmt.Errorf("bootstrap: tenant slug is required")
	}

	existing, err := cfg.Store.ResolveTenant(ctx, slug)
	switch {
	case err == nil:
		log.Info("bootstrap tenant exists, skipping", logger.TenantSlug(slug))
		return &Result{Tenant: *existing}, nil
	case !store.IsTenantNotFound(err):
		return nil, fmt.Errorf("bootstrap: resolve tenant: %w", err)
	}

	email := strings.TrimSpace(cfg.AdminEmail)
	if email == "" {
		email = "admin@" + slug + ".local"
	}
	pass, generated := cfg.AdminPassword, ""
	if pass == "" {
		if pass, err = randomPassword(); err != nil {
			return nil, err
		}
		generated = pass
	}
	name := strings.TrimSpace(cfg.TenantName)
	if name == "" {
		name = slug
	}

	sctx := claims.System(ctx, "")
	res, err := cfg.Tenants.Create(sctx, admin.CreateTenantInput{
		Slug: slug, Name: name, Plan: "standard",
		AdminEmail: email, AdminName: "Administrator", AdminPassword: pass,
	})
	if err != nil {
		return nil, fmt.Errorf("bootstrap: create tenant: %w", err)
	}

	if err := promote(sctx, cfg.Store, res.Tenant.ID, res.Admin.ID); err != nil {
		return nil, err
	}

	log.Info("bootstrap tenant created",
		logger.TenantID(res.Tenant.ID), logger.TenantSlug(slug),
		logger.UserID(res.Admin.ID), logger.Email(res.Admin.Email))

	return &Result{
		Created: true, Tenant: res.Tenant,
		AdminID: res.Admin.ID, AdminEmail: res.Admin.Email, AdminPassword: generated,
	}, nil
}

// promote marca al usuario como super admin.
func promote(ctx context.Context, s TenantStore, tenantID, userID string) error {
	tda, err := s.ForTenant(ctx, tenantID)
	if err != nil {
		return fmt.Errorf("bootstrap: load tenant: %w", err)
	}
	u, err := tda.Users().Get(ctx, tda.ID(), userID)
	if err != nil {
		return fmt.Errorf("bootstrap: load admin: %w", err)
	}
	u.SuperAdmin = true
	if err := tda.Users().Update(ctx, u); err != nil {
		return fmt.Errorf("bootstrap: promote admin: %w", err)
	}
	return nil
}

func randomPassword() (string, error) {
	b := make([]byte, 18)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("bootstrap: generate password: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// Package rbac contiene el service de roles y permisos.
package rbac

import (
	"context"
	"fmt"
	"regexp"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/razorzibra-dot/trialram-sub001/internal/audit"
	"github.com/razorzibra-dot/trialram-sub001/internal/cache"
	"github.com/razorzibra-dot/trialram-sub001/internal/domain/repository"
	"github.com/razorzibra-dot/trialram-sub001/internal/http/services/common"
	"github.com/razorzibra-dot/trialram-sub001/internal/observability/logger"
	"github.com/razorzibra-dot/trialram-sub001/internal/store"
)

// RoleInput son los datos de alta de un rol.
type RoleInput struct {
	Name        string
	Description string
	Permissions []string
}

// RoleUpdate: campos nil no cambian.
type RoleUpdate struct {
	Name        *string
	Description *string
}

// Service define las operaciones RBAC de un tenant.
type Service interface {
	ListPermissions(ctx context.Context) ([]repository.Permission, error)
	ListRoles(ctx context.Context, tda *store.TenantDataAccess) ([]repository.Role, error)
	GetRole(ctx context.Context, tda *store.TenantDataAccess, name string) (*repository.Role, error)
	CreateRole(ctx context.Context, tda *store.TenantDataAccess, in RoleInput) (*repository.Role, error)
	UpdateRole(ctx context.Context, tda *store.TenantDataAccess, name string, in RoleUpdate) (*repository.Role, error)
	DeleteRole(ctx context.Context, tda *store.TenantDataAccess, name string) error
	SetRolePermissions(ctx context.Context, tda *store.TenantDataAccess, name string, perms []string) (*repository.Role, error)

	AssignRoles(ctx context.Context, tda *store.TenantDataAccess, userID string, roles []string) ([]string, error)
	RevokeRoles(ctx context.Context, tda *store.TenantDataAccess, userID string, roles []string) ([]string, error)
	GetUserRoles(ctx context.Context, tda *store.TenantDataAccess, userID string) ([]string, error)

	EffectivePermissions(ctx context.Context, tda *store.TenantDataAccess, userID string) ([]string, error)
	HasPermission(ctx context.Context, tda *store.TenantDataAccess, userID, perm string) (bool, error)
	// UsersWithPermission lista usuarios activos cuyos roles otorgan perm, ordenados por ID.
	UsersWithPermission(ctx context.Context, tda *store.TenantDataAccess, perm string) ([]string, error)
	// InvalidateUser descarta los permisos cacheados del usuario.
	InvalidateUser(ctx context.Context, tenantID, userID string)

	SeedCatalogue(ctx context.Context) error
	SeedTenant(ctx context.Context, tda *store.TenantDataAccess) error
}

// Deps son las dependencias del service.
type Deps struct {
	Catalog  repository.RBACRepository // catálogo global de permisos
	Cache    cache.Client              // opcional
	Audit    *audit.Recorder
	PermsTTL time.Duration
}

type rbacService struct {
	catalog  repository.RBACRepository
	cache    cache.Client
	audit    *audit.Recorder
	permsTTL time.Duration
}

// NewService crea el service RBAC.
func NewService(d Deps) Service {
	if d.PermsTTL <= 0 {
		d.PermsTTL = 5 * time.Minute
	}
	return &rbacService{catalog: d.Catalog, cache: d.Cache, audit: d.Audit, permsTTL: d.PermsTTL}
}

const componentRBAC = "rbac"

var roleNameRE = regexp.MustCompile(`^[a-z0-9_-]{2,40}$`)

func permsKey(tenantID, userID string) string { return "rbac:perms:" + tenantID + ":" + userID }
func permsPrefix(tenantID string) string      { return "rbac:perms:" + tenantID + ":" }

func (s *rbacService) log(ctx context.Context, op string) *zap.Logger {
	return logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component(componentRBAC),
		logger.Op(op),
	)
}

func (s *rbacService) ListPermissions(ctx context.Context) ([]repository.Permission, error) {
	return s.catalog.ListPermissions(ctx)
}

func (s *rbacService) ListRoles(ctx context.Context, tda *store.TenantDataAccess) ([]repository.Role, error) {
	return tda.RBAC().ListRoles(ctx, tda.ID())
}

func (s *rbacService) GetRole(ctx context.Context, tda *store.TenantDataAccess, name string) (*repository.Role, error) {
	return tda.RBAC().GetRole(ctx, tda.ID(), strings.TrimSpace(name))
}

func validRoleName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if !roleNameRE.MatchString(name) {
		return "", common.Invalid("role name must match [a-z0-9_-]{2,40}")
	}
	return name, nil
}

// validatePerms verifica contra el catálogo y deduplica. Acepta "*" y "resource:*".
func (s *rbacService) validatePerms(ctx context.Context, perms []string) ([]string, error) {
	catalog, err := s.catalog.ListPermissions(ctx)
	if err != nil {
		return nil, err
	}
	known := make(map[string]struct{}, len(catalog))
	resources := make(map[string]struct{})
	for _, p := range catalog {
		known[p.Name] = struct{}{}
		resources[p.Resource] = struct{}{}
	}

	out := make([]string, 0, len(perms))
	for _, p := range perms {
		p = strings.ToLower(strings.TrimSpace(p))
		if p == "" {
			continue
		}
		if _, ok := known[p]; ok || p == Wildcard {
			out = append(out, p)
			continue
		}
		if res, act, _ := strings.Cut(p, ":"); act == "*" {
			if _, ok := resources[res]; ok {
				out = append(out, p)
				continue
			}
		}
		return nil, common.Invalid("unknown permission %q", p)
	}
	slices.Sort(out)
	return slices.Compact(out), nil
}

func (s *rbacService) CreateRole(ctx context.Context, tda *store.TenantDataAccess, in RoleInput) (*repository.Role, error) {
	log := s.log(ctx, "CreateRole").With(logger.TenantID(tda.ID()))

	name, err := validRoleName(in.Name)
	if err != nil {
		return nil, err
	}
	perms, err := s.validatePerms(ctx, in.Permissions)
	if err != nil {
		return nil, err
	}

	role, err := tda.RBAC().CreateRole(ctx, tda.ID(), repository.RoleInput{Name: name, Description: strings.TrimSpace(in.Description)})
	if err != nil {
		return nil, err
	}
	if len(perms) > 0 {
		if err := tda.RBAC().SetRolePermissions(ctx, tda.ID(), name, perms); err != nil {
			log.Error("set permissions failed", logger.Err(err))
			return nil, err
		}
	}

	s.audit.Record(ctx, tda.ID(), audit.Entry{
		Action: audit.ActionCreate, Resource: "roles", ResourceID: name,
		Changes: map[string]any{"permissions": perms},
	})
	log.Info("role created", logger.String("role", name))
	return tda.RBAC().GetRole(ctx, tda.ID(), role.Name)
}

func (s *rbacService) UpdateRole(ctx context.Context, tda *store.TenantDataAccess, name string, in RoleUpdate) (*repository.Role, error) {
	cur, err := tda.RBAC().GetRole(ctx, tda.ID(), name)
	if err != nil {
		return nil, err
	}

	next := repository.RoleInput{Name: cur.Name, Description: cur.Description, System: cur.System}
	if in.Name != nil && strings.TrimSpace(*in.Name) != cur.Name {
		if cur.System {
			return nil, fmt.Errorf("%w: system role %q cannot be renamed", repository.ErrForbidden, cur.Name)
		}
		if next.Name, err = validRoleName(*in.Name); err != nil {
			return nil, err
		}
	}
	if in.Description != nil {
		next.Description = strings.TrimSpace(*in.Description)
	}

	role, err := tda.RBAC().UpdateRole(ctx, tda.ID(), cur.Name, next)
	if err != nil {
		return nil, err
	}
	if role.Name != cur.Name {
		s.invalidateTenant(ctx, tda.ID())
	}
	s.audit.Record(ctx, tda.ID(), audit.Entry{
		Action: audit.ActionUpdate, Resource: "roles", ResourceID: role.Name,
		Changes: audit.Diff(
			map[string]any{"name": cur.Name, "description": cur.Description},
			map[string]any{"name": role.Name, "description": role.Description},
		),
	})
	return role, nil
}

func (s *rbacService) DeleteRole(ctx context.Context, tda *store.TenantDataAccess, name string) error {
	role, err := tda.RBAC().GetRole(ctx, tda.ID(), name)
	if err != nil {
		return err
	}
	if role.System {
		return fmt.Errorf("%w: system role %q cannot be deleted", repository.ErrForbidden, role.Name)
	}
	n, err := tda.RBAC().GetRoleUsersCount(ctx, tda.ID(), role.Name)
	if err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("%w: role %q is assigned to %d users", repository.ErrConflict, role.Name, n)
	}
	if err := tda.RBAC().DeleteRole(ctx, tda.ID(), role.Name); err != nil {
		return err
	}
	s.audit.Record(ctx, tda.ID(), audit.Entry{Action: audit.ActionDelete, Resource: "roles", ResourceID: role.Name})
	return nil
}

func (s *rbacService) SetRolePermissions(ctx context.Context, tda *store.TenantDataAccess, name string, perms []string) (*repository.Role, error) {
	role, err := tda.RBAC().GetRole(ctx, tda.ID(), name)
	if err != nil {
		return nil, err
	}
	if role.System {
		return nil, fmt.Errorf("%w: permissions of system role %q are fixed", repository.ErrForbidden, role.Name)
	}
	clean, err := s.validatePerms(ctx, perms)
	if err != nil {
		return nil, err
	}
	if err := tda.RBAC().SetRolePermissions(ctx, tda.ID(), role.Name, clean); err != nil {
		return nil, err
	}
	s.invalidateTenant(ctx, tda.ID())
	s.audit.Record(ctx, tda.ID(), audit.Entry{
		Action: audit.ActionUpdate, Resource: "roles", ResourceID: role.Name,
		Changes: map[string]any{"permissions": clean, "previous": role.Permissions},
	})
	return tda.RBAC().GetRole(ctx, tda.ID(), role.Name)
}

func dedupTrim(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

func (s *rbacService) AssignRoles(ctx context.Context, tda *store.TenantDataAccess, userID string, roles []string) ([]string, error) {
	log := s.log(ctx, "AssignRoles").With(logger.TenantID(tda.ID()), logger.UserID(userID))

	if _, err := tda.Users().Get(ctx, tda.ID(), userID); err != nil {
		return nil, err
	}
	roles = dedupTrim(roles)
	for _, r := range roles {
		if _, err := tda.RBAC().GetRole(ctx, tda.ID(), r); err != nil {
			if repository.IsNotFound(err) {
				return nil, common.Invalid("unknown role %q", r)
			}
			return nil, err
		}
	}
	for _, r := range roles {
		if err := tda.RBAC().AssignRole(ctx, tda.ID(), userID, r); err != nil {
			log.Error("assign failed", logger.String("role", r), logger.Err(err))
			return nil, err
		}
	}
	s.InvalidateUser(ctx, tda.ID(), userID)
	s.audit.Record(ctx, tda.ID(), audit.Entry{
		Action: audit.ActionAssign, Resource: "user_roles", ResourceID: userID,
		Changes: map[string]any{"added": roles},
	})
	return tda.RBAC().GetUserRoles(ctx, tda.ID(), userID)
}

func (s *rbacService) RevokeRoles(ctx context.Context, tda *store.TenantDataAccess, userID string, roles []string) ([]string, error) {
	if _, err := tda.Users().Get(ctx, tda.ID(), userID); err != nil {
		return nil, err
	}
	roles = dedupTrim(roles)
	for _, r := range roles {
		if err := tda.RBAC().RemoveRole(ctx, tda.ID(), userID, r); err != nil && !repository.IsNotFound(err) {
			return nil, err
		}
	}
	s.InvalidateUser(ctx, tda.ID(), userID)
	s.audit.Record(ctx, tda.ID(), audit.Entry{
		Action: audit.ActionAssign, Resource: "user_roles", ResourceID: userID,
		Changes: map[string]any{"removed": roles},
	})
	return tda.RBAC().GetUserRoles(ctx, tda.ID(), userID)
}

func (s *rbacService) GetUserRoles(ctx context.Context, tda *store.TenantDataAccess, userID string) ([]string, error) {
	if _, err := tda.Users().Get(ctx, tda.ID(), userID); err != nil {
		return nil, err
	}
	return tda.RBAC().GetUserRoles(ctx, tda.ID(), userID)
}

// EffectivePermissions: usuario inactivo → ninguno; super admin → ["*"].
// Los permisos derivados de roles se cachean por usuario.
func (s *rbacService) EffectivePermissions(ctx context.Context, tda *store.TenantDataAccess, userID string) ([]string, error) {
	u, err := tda.Users().Get(ctx, tda.ID(), userID)
	if err != nil {
		return nil, err
	}
	if !u.Active {
		return []string{}, nil
	}
	if u.SuperAdmin {
		return []string{Wildcard}, nil
	}

	key := permsKey(tda.ID(), userID)
	if s.cache != nil {
		var cached []string
		if err := cache.GetJSON(ctx, s.cache, key, &cached); err == nil {
			return cached, nil
		}
	}

	perms, err := tda.RBAC().GetUserPermissions(ctx, tda.ID(), userID)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := cache.SetJSON(ctx, s.cache, key, perms, s.permsTTL); err != nil {
			s.log(ctx, "EffectivePermissions").Warn("cache set failed", logger.Err(err))
		}
	}
	return perms, nil
}

func (s *rbacService) HasPermission(ctx context.Context, tda *store.TenantDataAccess, userID, perm string) (bool, error) {
	perms, err := s.EffectivePermissions(ctx, tda, userID)
	if err != nil {
		if repository.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return Match(perms, perm), nil
}

func (s *rbacService) UsersWithPermission(ctx context.Context, tda *store.TenantDataAccess, perm string) ([]string, error) {
	return tda.RBAC().ListUsersWithPermission(ctx, tda.ID(), grantsFor(perm))
}

func (s *rbacService) InvalidateUser(ctx context.Context, tenantID, userID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, permsKey(tenantID, userID)); err != nil {
		s.log(ctx, "InvalidateUser").Warn("cache delete failed", logger.Err(err))
	}
}

func (s *rbacService) invalidateTenant(ctx context.Context, tenantID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeletePrefix(ctx, permsPrefix(tenantID)); err != nil {
		s.log(ctx, "invalidateTenant").Warn("cache delete failed", logger.Err(err))
	}
}

// SeedCatalogue hace upsert del catálogo global. Idempotente.
func (s *rbacService) SeedCatalogue(ctx context.Context) error {
	for _, p := range Catalogue() {
		if err := s.catalog.UpsertPermission(ctx, p); err != nil {
			return fmt.Errorf("seed permission %s: %w", p.Name, err)
		}
	}
	return nil
}

// SeedTenant crea (o realinea) los roles de sistema del tenant. Idempotente.
func (s *rbacService) SeedTenant(ctx context.Context, tda *store.TenantDataAccess) error {
	log := s.log(ctx, "SeedTenant").With(logger.TenantID(tda.ID()))

	if err := s.SeedCatalogue(ctx); err != nil {
		return err
	}
	roles := SystemRoles()
	names := make([]string, 0, len(roles))
	for name := range roles {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		_, err := tda.RBAC().GetRole(ctx, tda.ID(), name)
		if repository.IsNotFound(err) {
			_, err = tda.RBAC().CreateRole(ctx, tda.ID(), repository.RoleInput{
				Name: name, Description: "System role " + name, System: true,
			})
		}
		if err != nil {
			return fmt.Errorf("seed role %s: %w", name, err)
		}
		if err := tda.RBAC().SetRolePermissions(ctx, tda.ID(), name, roles[name]); err != nil {
			return fmt.Errorf("seed role %s permissions: %w", name, err)
		}
	}
	s.invalidateTenant(ctx, tda.ID())
	log.Info("system roles seeded", logger.Count(len(names)))
	return nil
}

package admin

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/razorzibra-dot/trialram-sub001/internal/audit"
	"github.com/razorzibra-dot/trialram-sub001/internal/domain/repository"
	"github.com/razorzibra-dot/trialram-sub001/internal/http/services/common"
	"github.com/razorzibra-dot/trialram-sub001/internal/http/services/rbac"
	"github.com/razorzibra-dot/trialram-sub001/internal/observability/logger"
	"github.com/razorzibra-dot/trialram-sub001/internal/store"
)

const componentTenants = "admin.tenants"

var slugRegex = regexp.MustCompile(`^[a-z0-9-]{3,40}$`)

// ControlPlane es la vista del store que usa la administración de tenants
// (implementada por store.Manager).
type ControlPlane interface {
	Tenants() repository.TenantRepository
	ForTenant(ctx context.Context, slugOrID string) (*store.TenantDataAccess, error)
	ResolveTenant(ctx context.Context, slugOrID string) (*repository.Tenant, error)
	InvalidateTenant(t repository.Tenant)
}

// TenantSeeder siembra datos por defecto en un tenant nuevo.
type TenantSeeder interface {
	SeedTenant(ctx context.Context, tda *store.TenantDataAccess) error
}

type CreateTenantInput struct {
	Slug          string
	Name          string
	Plan          string
	AdminEmail    string
	AdminName     string
	AdminPassword string
}

type TenantUpdate struct {
	Name *string
	Plan *string
}

// CreateTenantResult es el tenant creado y su admin inicial.
type CreateTenantResult struct {
	Tenant repository.Tenant `json:"tenant"`
	Admin  UserWithRoles     `json:"admin"`
}

// TenantsService define las operaciones de super admin sobre tenants.
type TenantsService interface {
	List(ctx context.Context) ([]repository.Tenant, error)
	Get(ctx context.Context, slugOrID string) (*repository.Tenant, error)
	Create(ctx context.Context, in CreateTenantInput) (*CreateTenantResult, error)
	Update(ctx context.Context, slugOrID string, in TenantUpdate) (*repository.Tenant, error)
	Suspend(ctx context.Context, slugOrID string) (*repository.Tenant, error)
	Activate(ctx context.Context, slugOrID string) (*repository.Tenant, error)
	Delete(ctx context.Context, slugOrID string) error
}

type tenantsService struct {
	cp      ControlPlane
	seeders []TenantSeeder
	users   UsersService
	audit   *audit.Recorder
	clock   common.Clock
}

// NewTenantsService crea el service de tenants. Los seeders corren en orden
// al crear un tenant (roles de sistema primero).
func NewTenantsService(d Deps, users UsersService) TenantsService {
	seeders := []TenantSeeder{d.RBAC}
	if d.RefData != nil {
		seeders = append(seeders, d.RefData)
	}
	return &tenantsService{cp: d.ControlPlane, seeders: seeders, users: users, audit: d.Audit, clock: d.Clock}
}

func (s *tenantsService) List(ctx context.Context) ([]repository.Tenant, error) {
	return s.cp.Tenants().List(ctx)
}

func (s *tenantsService) Get(ctx context.Context, slugOrID string) (*repository.Tenant, error) {
	return s.cp.ResolveTenant(ctx, slugOrID)
}

func (s *tenantsService) Create(ctx context.Context, in CreateTenantInput) (*CreateTenantResult, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Component(componentTenants), logger.Op("Create"))

	slug := strings.ToLower(strings.TrimSpace(in.Slug))
	if !slugRegex.MatchString(slug) {
		return nil, common.Invalid("slug invalid format (a-z0-9-, 3-40 chars)")
	}
	name, err := common.Required("name", in.Name)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.AdminEmail) == "" || in.AdminPassword == "" {
		return nil, common.Invalid("admin_email and admin_password are required")
	}
	plan := strings.TrimSpace(in.Plan)
	if plan == "" {
		plan = "standard"
	}

	now := s.clock.Now()
	t := repository.Tenant{
		ID: uuid.NewString(), Slug: slug, Name: name, Plan: plan,
		Status: repository.TenantActive, CreatedAt: now, UpdatedAt: now,
	}
	if err := s.cp.Tenants().Create(ctx, &t); err != nil {
		if repository.IsConflict(err) {
			return nil, fmt.Errorf("%w: tenant %s already exists", repository.ErrConflict, slug)
		}
		log.Error("create tenant failed", logger.Err(err))
		return nil, err
	}

	admin, err := s.bootstrap(ctx, t, in)
	if err != nil {
		log.Error("tenant bootstrap failed, rolling back", logger.TenantSlug(slug), logger.Err(err))
		if derr := s.cp.Tenants().Delete(ctx, t.ID); derr != nil {
			log.Error("rollback tenant failed", logger.Err(derr))
		}
		s.cp.InvalidateTenant(t)
		return nil, err
	}

	s.audit.Record(ctx, t.ID, audit.Entry{
		Action: audit.ActionCreate, Resource: "tenants", ResourceID: t.ID,
		Changes: audit.Snapshot(t),
	})
	log.Info("tenant created", logger.TenantID(t.ID), logger.TenantSlug(slug))
	return &CreateTenantResult{Tenant: t, Admin: *admin}, nil
}

func (s *tenantsService) bootstrap(ctx context.Context, t repository.Tenant, in CreateTenantInput) (*UserWithRoles, error) {
	tda, err := s.cp.ForTenant(ctx, t.ID)
	if err != nil {
		return nil, err
	}
	for _, seeder := range s.seeders {
		if err := seeder.SeedTenant(ctx, tda); err != nil {
			return nil, err
		}
	}
	return s.users.Create(ctx, tda, UserInput{
		Email: in.AdminEmail, Name: in.AdminName, Password: in.AdminPassword,
		Roles: []string{rbac.RoleAdmin},
	})
}

func (s *tenantsService) Update(ctx context.Context, slugOrID string, in TenantUpdate) (*repository.Tenant, error) {
	return s.mutate(ctx, slugOrID, audit.ActionUpdate, func(t *repository.Tenant) error {
		if in.Name != nil {
			name, err := common.Required("name", *in.Name)
			if err != nil {
				return err
			}
			t.Name = name
		}
		if in.Plan != nil {
			plan, err := common.Required("plan", *in.Plan)
			if err != nil {
				return err
			}
			t.Plan = plan
		}
		return nil
	})
}

func (s *tenantsService) Suspend(ctx context.Context, slugOrID string) (*repository.Tenant, error) {
	return s.mutate(ctx, slugOrID, audit.ActionStatus, func(t *repository.Tenant) error {
		t.Status = repository.TenantSuspended
		return nil
	})
}

func (s *tenantsService) Activate(ctx context.Context, slugOrID string) (*repository.Tenant, error) {
	return s.mutate(ctx, slugOrID, audit.ActionStatus, func(t *repository.Tenant) error {
		t.Status = repository.TenantActive
		return nil
	})
}

func (s *tenantsService) mutate(ctx context.Context, slugOrID, action string, fn func(*repository.Tenant) error) (*repository.Tenant, error) {
	cur, err := s.Get(ctx, slugOrID)
	if err != nil {
		return nil, err
	}
	before := *cur
	t := *cur
	if err := fn(&t); err != nil {
		return nil, err
	}
	t.UpdatedAt = s.clock.Now()
	if err := s.cp.Tenants().Update(ctx, &t); err != nil {
		return nil, err
	}
	s.cp.InvalidateTenant(t)
	s.audit.Record(ctx, t.ID, audit.Entry{
		Action: action, Resource: "tenants", ResourceID: t.ID,
		Changes: audit.Changes(before, t),
	})
	return &t, nil
}

// Delete elimina el tenant y todos sus datos.
func (s *tenantsService) Delete(ctx context.Context, slugOrID string) error {
	t, err := s.Get(ctx, slugOrID)
	if err != nil {
		return err
	}
	if err := s.cp.Tenants().Delete(ctx, t.ID); err != nil {
		return err
	}
	s.cp.InvalidateTenant(*t)
	logger.From(ctx).Info("tenant deleted",
		logger.Layer("service"), logger.Component(componentTenants), logger.TenantID(t.ID), logger.TenantSlug(t.Slug))
	return nil
}

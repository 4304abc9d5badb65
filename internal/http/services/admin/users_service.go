package admin

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/razorzibra-dot/trialram-sub001/internal/audit"
	"github.com/razorzibra-dot/trialram-sub001/internal/claims"
	"github.com/razorzibra-dot/trialram-sub001/internal/domain/repository"
	"github.com/razorzibra-dot/trialram-sub001/internal/http/services/common"
	"github.com/razorzibra-dot/trialram-sub001/internal/http/services/rbac"
	"github.com/razorzibra-dot/trialram-sub001/internal/observability/logger"
	"github.com/razorzibra-dot/trialram-sub001/internal/security/password"
	"github.com/razorzibra-dot/trialram-sub001/internal/store"
)

const componentUsers = "admin.users"

type UserInput struct {
	Email    string
	Name     string
	Password string
	Roles    []string
	Active   *bool
}

type UserUpdate struct {
	Email    *string
	Name     *string
	Password *string
	Active   *bool
}

// UserWithRoles es un usuario junto a sus roles asignados.
type UserWithRoles struct {
	repository.User
	Roles []string `json:"roles"`
}

// UsersService define el ABM de usuarios de un tenant.
type UsersService interface {
	List(ctx context.Context, tda *store.TenantDataAccess, f repository.ListFilter) (repository.Page[repository.User], error)
	Get(ctx context.Context, tda *store.TenantDataAccess, id string) (*UserWithRoles, error)
	Create(ctx context.Context, tda *store.TenantDataAccess, in UserInput) (*UserWithRoles, error)
	Update(ctx context.Context, tda *store.TenantDataAccess, id string, in UserUpdate) (*repository.User, error)
	Delete(ctx context.Context, tda *store.TenantDataAccess, id string) error
}

type usersService struct {
	rbac   rbac.Service
	audit  *audit.Recorder
	params password.Params
	policy password.Policy
	clock  common.Clock
}

// NewUsersService crea el service de usuarios.
func NewUsersService(d Deps) UsersService {
	return &usersService{rbac: d.RBAC, audit: d.Audit, params: d.Password, policy: d.Policy, clock: d.Clock}
}

func (s *usersService) hash(plain string) (string, error) {
	if err := s.policy.Check(plain); err != nil {
		return "", fmt.Errorf("%w: %v", repository.ErrInvalidInput, err)
	}
	return password.Hash(s.params, plain)
}

func (s *usersService) List(ctx context.Context, tda *store.TenantDataAccess, f repository.ListFilter) (repository.Page[repository.User], error) {
	return tda.Users().List(ctx, tda.ID(), f)
}

func (s *usersService) Get(ctx context.Context, tda *store.TenantDataAccess, id string) (*UserWithRoles, error) {
	u, err := tda.Users().Get(ctx, tda.ID(), id)
	if err != nil {
		return nil, err
	}
	roles, err := tda.RBAC().GetUserRoles(ctx, tda.ID(), id)
	if err != nil {
		return nil, err
	}
	return &UserWithRoles{User: *u, Roles: roles}, nil
}

func (s *usersService) Create(ctx context.Context, tda *store.TenantDataAccess, in UserInput) (*UserWithRoles, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Component(componentUsers), logger.Op("Create"), logger.TenantID(tda.ID()))

	email, err := common.NormalizeEmail(in.Email)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		name, _, _ = strings.Cut(email, "@")
	}
	h, err := s.hash(in.Password)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	u := repository.User{
		ID: uuid.NewString(), TenantID: tda.ID(), Email: email, Name: name,
		PasswordHash: h, Active: in.Active == nil || *in.Active,
		CreatedAt: now, UpdatedAt: now,
	}
	if err := tda.Users().Create(ctx, &u); err != nil {
		if repository.IsConflict(err) {
			return nil, fmt.Errorf("%w: email %s already in use", repository.ErrConflict, email)
		}
		log.Error("create user failed", logger.Err(err))
		return nil, err
	}

	roles := []string{}
	if len(in.Roles) > 0 {
		if roles, err = s.rbac.AssignRoles(ctx, tda, u.ID, in.Roles); err != nil {
			// sin roles válidos el alta no se completa
			if derr := tda.Users().Delete(ctx, tda.ID(), u.ID); derr != nil {
				log.Error("rollback user failed", logger.Err(derr))
			}
			return nil, err
		}
	}
	s.audit.Record(ctx, tda.ID(), audit.Entry{
		Action: audit.ActionCreate, Resource: "users", ResourceID: u.ID,
		Changes: map[string]any{"email": u.Email, "name": u.Name, "active": u.Active, "roles": roles},
	})
	log.Info("user created", logger.UserID(u.ID), logger.Email(u.Email))
	return &UserWithRoles{User: u, Roles: roles}, nil
}

func (s *usersService) Update(ctx context.Context, tda *store.TenantDataAccess, id string, in UserUpdate) (*repository.User, error) {
	cur, err := tda.Users().Get(ctx, tda.ID(), id)
	if err != nil {
		return nil, err
	}
	before := *cur
	u := *cur
	if in.Email != nil {
		if u.Email, err = common.NormalizeEmail(*in.Email); err != nil {
			return nil, err
		}
	}
	if in.Name != nil {
		if u.Name, err = common.Required("name", *in.Name); err != nil {
			return nil, err
		}
	}
	if in.Password != nil {
		if u.PasswordHash, err = s.hash(*in.Password); err != nil {
			return nil, err
		}
	}
	if in.Active != nil {
		if !*in.Active && claims.ActorID(ctx) == id {
			return nil, fmt.Errorf("%w: cannot deactivate yourself", repository.ErrConflict)
		}
		u.Active = *in.Active
	}
	u.UpdatedAt = s.clock.Now()
	if err := tda.Users().Update(ctx, &u); err != nil {
		return nil, err
	}
	s.rbac.InvalidateUser(ctx, tda.ID(), id)

	changes := audit.Changes(before, u)
	if in.Password != nil {
		changes["password"] = "changed"
	}
	s.audit.Record(ctx, tda.ID(), audit.Entry{Action: audit.ActionUpdate, Resource: "users", ResourceID: id, Changes: changes})
	return &u, nil
}

func (s *usersService) Delete(ctx context.Context, tda *store.TenantDataAccess, id string) error {
	if claims.ActorID(ctx) == id {
		return fmt.Errorf("%w: cannot delete yourself", repository.ErrConflict)
	}
	if err := tda.Users().Delete(ctx, tda.ID(), id); err != nil {
		return err
	}
	s.rbac.InvalidateUser(ctx, tda.ID(), id)
	s.audit.Record(ctx, tda.ID(), audit.Entry{Action: audit.ActionDelete, Resource: "users", ResourceID: id})
	return nil
}

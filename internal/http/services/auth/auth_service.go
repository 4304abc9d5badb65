// Package auth contiene el login por password y el perfil del usuario autenticado.
package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/razorzibra-dot/trialram-sub001/internal/audit"
	"github.com/razorzibra-dot/trialram-sub001/internal/claims"
	"github.com/razorzibra-dot/trialram-sub001/internal/domain/repository"
	"github.com/razorzibra-dot/trialram-sub001/internal/http/services/rbac"
	jwtx "github.com/razorzibra-dot/trialram-sub001/internal/jwt"
	"github.com/razorzibra-dot/trialram-sub001/internal/observability/logger"
	"github.com/razorzibra-dot/trialram-sub001/internal/security/password"
	"github.com/razorzibra-dot/trialram-sub001/internal/store"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserDisabled       = errors.New("user disabled")
)

// TenantResolver resuelve el tenant del login (implementado por store.Manager).
type TenantResolver interface {
	ForTenant(ctx context.Context, slugOrID string) (*store.TenantDataAccess, error)
}

type LoginInput struct {
	Tenant   string
	Email    string
	Password string
}

type LoginResult struct {
	AccessToken string
	ExpiresAt   time.Time
	ExpiresIn   int
	User        repository.User
	Roles       []string
}

type MeResult struct {
	User        repository.User
	Tenant      repository.Tenant
	Roles       []string
	Permissions []string
}

// Service define las operaciones de autenticación.
type Service interface {
	Login(ctx context.Context, in LoginInput) (*LoginResult, error)
	Me(ctx context.Context, tda *store.TenantDataAccess, userID string) (*MeResult, error)
}

type Deps struct {
	Tenants  TenantResolver
	Issuer   *jwtx.Issuer
	RBAC     rbac.Service
	Audit    *audit.Recorder
	Password password.Params
}

type authService struct {
	deps Deps
	// dummy se verifica cuando el usuario no existe, para igualar tiempos.
	dummy string
}

func NewService(d Deps) Service {
	if d.Password.KeyLen == 0 {
		d.Password = password.Default
	}
	dummy, _ := password.Hash(d.Password, "dummy-password-for-timing")
	return &authService{deps: d, dummy: dummy}
}

func (s *authService) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("auth"),
		logger.Op("Login"),
		logger.TenantSlug(in.Tenant),
	)

	tenant := strings.TrimSpace(in.Tenant)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if tenant == "" || email == "" || in.Password == "" {
		return nil, ErrInvalidCredentials
	}

	tda, err := s.deps.Tenants.ForTenant(ctx, tenant)
	if err != nil {
		if errors.Is(err, repository.ErrTenantSuspended) {
			return nil, err
		}
		if repository.IsNotFound(err) {
			_ = password.Verify(in.Password, s.dummy)
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	u, err := tda.Users().GetByEmail(ctx, tda.ID(), email)
	if err != nil {
		if repository.IsNotFound(err) {
			_ = password.Verify(in.Password, s.dummy)
			log.Debug("login unknown email")
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !password.Verify(in.Password, u.PasswordHash) {
		log.Info("login bad password", logger.UserID(u.ID))
		return nil, ErrInvalidCredentials
	}
	if !u.Active {
		return nil, ErrUserDisabled
	}

	if password.NeedsRehash(s.deps.Password, u.PasswordHash) {
		if h, err := password.Hash(s.deps.Password, in.Password); err == nil {
			u.PasswordHash = h
			u.UpdatedAt = time.Now().UTC()
			if err := tda.Users().Update(ctx, u); err != nil {
				log.Warn("password rehash failed", logger.Err(err))
			}
		}
	}

	roles, err := tda.RBAC().GetUserRoles(ctx, tda.ID(), u.ID)
	if err != nil {
		return nil, err
	}
	tok, exp, err := s.deps.Issuer.IssueAccess(u.ID, tda.ID(), u.SuperAdmin, roles)
	if err != nil {
		log.Error("issue token failed", logger.Err(err))
		return nil, err
	}

	actx := claims.WithPrincipal(ctx, claims.Principal{UserID: u.ID, TenantID: tda.ID(), IP: claims.ClientIP(ctx)})
	s.deps.Audit.Record(actx, tda.ID(), audit.Entry{Action: audit.ActionLogin, Resource: "users", ResourceID: u.ID})
	log.Info("login ok", logger.UserID(u.ID))

	return &LoginResult{
		AccessToken: tok,
		ExpiresAt:   exp,
		ExpiresIn:   int(time.Until(exp).Seconds()),
		User:        *u,
		Roles:       roles,
	}, nil
}

func (s *authService) Me(ctx context.Context, tda *store.TenantDataAccess, userID string) (*MeResult, error) {
	u, err := tda.Users().Get(ctx, tda.ID(), userID)
	if err != nil {
		return nil, err
	}
	roles, err := tda.RBAC().GetUserRoles(ctx, tda.ID(), userID)
	if err != nil {
		return nil, err
	}
	perms, err := s.deps.RBAC.EffectivePermissions(ctx, tda, userID)
	if err != nil {
		return nil, err
	}
	return &MeResult{User: *u, Tenant: tda.Tenant(), Roles: roles, Permissions: perms}, nil
}

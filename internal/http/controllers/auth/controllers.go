// Package auth contiene los controllers de login y perfil.
package auth

import (
	"errors"
	"net/http"

	"github.com/razorzibra-dot/trialram-sub001/internal/claims"
	dto "github.com/razorzibra-dot/trialram-sub001/internal/http/dto/auth"
	httperrors "github.com/razorzibra-dot/trialram-sub001/internal/http/errors"
	"github.com/razorzibra-dot/trialram-sub001/internal/http/helpers"
	mw "github.com/razorzibra-dot/trialram-sub001/internal/http/middlewares"
	svc "github.com/razorzibra-dot/trialram-sub001/internal/http/services/auth"
	"github.com/razorzibra-dot/trialram-sub001/internal/observability/logger"
)

// Controller maneja /v1/auth/login y /v1/auth/me.
type Controller struct {
	service svc.Service
}

// NewController crea el controller de auth.
func NewController(service svc.Service) *Controller {
	return &Controller{service: service}
}

// Login maneja POST /v1/auth/login
func (c *Controller) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("AuthController.Login"))

	var req dto.LoginRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}

	res, err := c.service.Login(ctx, svc.LoginInput{Tenant: req.Tenant, Email: req.Email, Password: req.Password})
	if err != nil {
		log.Debug("login failed", logger.Err(err))
		writeLoginError(w, err)
		return
	}

	helpers.WriteJSON(w, http.StatusOK, dto.LoginResponse{
		AccessToken: res.AccessToken,
		TokenType:   "Bearer",
		ExpiresIn:   res.ExpiresIn,
		ExpiresAt:   res.ExpiresAt,
		User:        res.User,
		Roles:       res.Roles,
	})
}

// Me maneja GET /v1/auth/me
func (c *Controller) Me(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("AuthController.Me"))

	p, ok := claims.From(ctx)
	if !ok {
		httperrors.WriteError(w, httperrors.ErrUnauthorized)
		return
	}
	tda := mw.GetTenant(ctx)
	if tda == nil {
		httperrors.WriteError(w, httperrors.ErrBadRequest.WithDetail("tenant required"))
		return
	}

	me, err := c.service.Me(ctx, tda, p.UserID)
	if err != nil {
		appErr := httperrors.FromDomain(err)
		if appErr.HTTPStatus >= http.StatusInternalServerError {
			log.Error("me failed", logger.Err(err))
		}
		writeLoginError(w, err)
		return
	}
	if me.Roles == nil {
		me.Roles = []string{}
	}
	if me.Permissions == nil {
		me.Permissions = []string{}
	}
	helpers.WriteJSON(w, http.StatusOK, dto.MeResponse{
		User:        me.User,
		Tenant:      me.Tenant,
		Roles:       me.Roles,
		Permissions: me.Permissions,
	})
}

// ─── Helpers ───

func writeLoginError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, svc.ErrInvalidCredentials):
		httperrors.WriteError(w, httperrors.ErrInvalidCredentials)
	case errors.Is(err, svc.ErrUserDisabled):
		httperrors.WriteError(w, httperrors.ErrUserDisabled)
	default:
		httperrors.WriteError(w, err)
	}
}

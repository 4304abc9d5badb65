// Package health contiene los endpoints de liveness y readiness.
package health

import (
	"context"
	"net/http"
	"time"

	httperrors "github.com/razorzibra-dot/trialram-sub001/internal/http/errors"
	"github.com/razorzibra-dot/trialram-sub001/internal/http/helpers"
	"github.com/razorzibra-dot/trialram-sub001/internal/observability/logger"
)

// Pinger es cualquier dependencia con chequeo de salud (store, cache).
type Pinger interface {
	Ping(ctx context.Context) error
}

// Check es un chequeo con nombre para /readyz.
type Check struct {
	Name   string
	Pinger Pinger
}

// Controller maneja /healthz y /readyz.
type Controller struct {
	version string
	checks  []Check
	timeout time.Duration
}

// NewController crea el controller. Los checks nil se ignoran.
func NewController(version string, checks ...Check) *Controller {
	out := make([]Check, 0, len(checks))
	for _, c := range checks {
		if c.Pinger != nil {
			out = append(out, c)
		}
	}
	return &Controller{version: version, checks: out, timeout: 2 * time.Second}
}

// Healthz responde 200 mientras el proceso esté vivo.
func (c *Controller) Healthz(w http.ResponseWriter, r *http.Request) {
	helpers.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": c.version})
}

// Readyz verifica cada dependencia. 503 si alguna falla.
func (c *Controller) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), c.timeout)
	defer cancel()

	status := map[string]string{}
	for _, chk := range c.checks {
		if err := chk.Pinger.Ping(ctx); err != nil {
			logger.From(ctx).Error("readiness check failed",
				logger.Component("health"), logger.String("check", chk.Name), logger.Err(err))
			httperrors.WriteError(w, httperrors.ErrServiceUnavailable.WithDetail(chk.Name+" unavailable"))
			return
		}
		status[chk.Name] = "ok"
	}
	helpers.WriteJSON(w, http.StatusOK, map[string]any{"status": "ready", "version": c.version, "checks": status})
}

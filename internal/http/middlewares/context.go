package middlewares

import (
	"context"
	"net"
	"net/http"
	"strings"

	"github.com/razorzibra-dot/trialram-sub001/internal/store"
)

// =================================================================================
// CONTEXT KEYS
// =================================================================================

type ctxKey string

const (
	// ctxTenantKey guarda el TenantDataAccess resuelto
	ctxTenantKey ctxKey = "tenant"
	// ctxRequestIDKey guarda el request ID
	ctxRequestIDKey ctxKey = "request_id"
)

// WithTenant inyecta el TenantDataAccess en el contexto.
func WithTenant(ctx context.Context, tda *store.TenantDataAccess) context.Context {
	return context.WithValue(ctx, ctxTenantKey, tda)
}

func setRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ctxRequestIDKey, requestID)
}

// GetTenant obtiene el TenantDataAccess del contexto.
// Retorna nil si la ruta no pasó por WithTenantResolution.
func GetTenant(ctx context.Context) *store.TenantDataAccess {
	tda, _ := ctx.Value(ctxTenantKey).(*store.TenantDataAccess)
	return tda
}

// MustGetTenant obtiene el TenantDataAccess o hace panic.
// Usar solo en rutas donde el middleware de tenant SIEMPRE se aplica.
func MustGetTenant(ctx context.Context) *store.TenantDataAccess {
	tda := GetTenant(ctx)
	if tda == nil {
		panic("middlewares: no tenant in context")
	}
	return tda
}

// GetRequestID obtiene el request ID del contexto.
func GetRequestID(ctx context.Context) string {
	s, _ := ctx.Value(ctxRequestIDKey).(string)
	return s
}

// clientIP extrae la IP del cliente, considerando proxies.
func clientIP(r *http.Request) string {
	if xf := r.Header.Get("X-Forwarded-For"); xf != "" {
		parts := strings.Split(xf, ",")
		return strings.TrimSpace(parts[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil {
		return host
	}
	return r.RemoteAddr
}

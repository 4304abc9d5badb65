// Package claims transporta la identidad autenticada del request en el contexto.
package claims

import "context"

// Principal es el actor autenticado de un request.
type Principal struct {
	UserID     string
	TenantID   string
	SuperAdmin bool
	Roles      []string
	IP         string
}

type ctxKey struct{}

type ipKey struct{}

// WithClientIP guarda la IP del cliente (disponible antes de autenticar).
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, ipKey{}, ip)
}

// ClientIP retorna la IP del principal o, si no hay, la del request.
func ClientIP(ctx context.Context) string {
	if p, ok := From(ctx); ok && p.IP != "" {
		return p.IP
	}
	ip, _ := ctx.Value(ipKey{}).(string)
	return ip
}

// WithPrincipal inyecta el principal en el contexto.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

// From obtiene el principal del contexto. ok=false si no hay autenticación.
func From(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(ctxKey{}).(Principal)
	return p, ok
}

// ActorID retorna el user ID del principal o "system" si no hay uno.
func ActorID(ctx context.Context) string {
	if p, ok := From(ctx); ok && p.UserID != "" {
		return p.UserID
	}
	return "system"
}

// System retorna un contexto con un principal de sistema (workers, CLI).
func System(ctx context.Context, tenantID string) context.Context {
	return WithPrincipal(ctx, Principal{UserID: "system", TenantID: tenantID, SuperAdmin: true})
}

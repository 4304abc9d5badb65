// Package common contiene helpers compartidos por los services del CRM.
package common

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/razorzibra-dot/trialram-sub001/internal/claims"
	"github.com/razorzibra-dot/trialram-sub001/internal/domain/repository"
	"github.com/razorzibra-dot/trialram-sub001/internal/store"
)

// Clock permite fijar el tiempo en tests.
type Clock func() time.Time

// Now retorna la hora UTC; un Clock nil usa time.Now.
func (c Clock) Now() time.Time {
	if c == nil {
		return time.Now().UTC()
	}
	return c().UTC()
}

// PermissionChecker resuelve permisos efectivos (implementado por el service rbac).
type PermissionChecker interface {
	HasPermission(ctx context.Context, tda *store.TenantDataAccess, userID, perm string) (bool, error)
}

// Directory resuelve además qué usuarios del tenant tienen un permiso.
type Directory interface {
	PermissionChecker
	UsersWithPermission(ctx context.Context, tda *store.TenantDataAccess, perm string) ([]string, error)
}

// Require verifica que el principal del contexto tenga perm en el tenant.
// Super admins pasan siempre; sin principal retorna ErrForbidden.
func Require(ctx context.Context, pc PermissionChecker, tda *store.TenantDataAccess, perm string) error {
	p, ok := claims.From(ctx)
	if !ok {
		return fmt.Errorf("%w: %s", repository.ErrForbidden, perm)
	}
	if p.SuperAdmin {
		return nil
	}
	if p.TenantID != tda.ID() {
		return fmt.Errorf("%w: cross-tenant access", repository.ErrForbidden)
	}
	allowed, err := pc.HasPermission(ctx, tda, p.UserID, perm)
	if err != nil {
		return err
	}
	if !allowed {
		return fmt.Errorf("%w: %s", repository.ErrForbidden, perm)
	}
	return nil
}

// Invalid construye un ErrInvalidInput con detalle.
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", repository.ErrInvalidInput, fmt.Sprintf(format, args...))
}

// Transition construye un ErrInvalidTransition con detalle.
func Transition(from, to string) error {
	return fmt.Errorf("%w: %s -> %s", repository.ErrInvalidTransition, from, to)
}

// NormalizeEmail valida y normaliza (trim + lower) un email.
func NormalizeEmail(s string) (string, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return "", Invalid("email is required")
	}
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s || !strings.Contains(s[strings.LastIndex(s, "@")+1:], ".") {
		return "", Invalid("invalid email %q", s)
	}
	return s, nil
}

// Required verifica que s no esté vacío tras trim.
func Required(field, s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", Invalid("%s is required", field)
	}
	return s, nil
}

// Currency normaliza un código ISO 4217 (default USD).
func Currency(s string) (string, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return "USD", nil
	}
	if len(s) != 3 {
		return "", Invalid("invalid currency %q", s)
	}
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return "", Invalid("invalid currency %q", s)
		}
	}
	return s, nil
}

// UserInTenant verifica que userID sea un usuario activo del tenant.
func UserInTenant(ctx context.Context, tda *store.TenantDataAccess, userID string) error {
	u, err := tda.Users().Get(ctx, tda.ID(), userID)
	if err != nil {
		if repository.IsNotFound(err) {
			return Invalid("user %q not found in tenant", userID)
		}
		return err
	}
	if !u.Active {
		return Invalid("user %q is inactive", userID)
	}
	return nil
}

// CustomerInTenant verifica que el customer exista en el tenant.
func CustomerInTenant(ctx context.Context, tda *store.TenantDataAccess, customerID string) error {
	if strings.TrimSpace(customerID) == "" {
		return Invalid("customer_id is required")
	}
	if _, err := tda.Customers().Get(ctx, tda.ID(), customerID); err != nil {
		if repository.IsNotFound(err) {
			return Invalid("customer %q not found", customerID)
		}
		return err
	}
	return nil
}

// Ptr retorna un puntero a una copia de v.
func Ptr[T any](v T) *T { return &v }

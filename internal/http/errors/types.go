package errors

import (
	"fmt"
	"net/http"
)

// AppError es el error que la API devuelve como {code, message, detail}.
// HTTPStatus y Err no se serializan; Err queda para los logs.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Detail     string `json:"detail,omitempty"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error { return e.Err }

// WithDetail retorna una copia con detail; el catálogo no se muta.
func (e *AppError) WithDetail(detail string) *AppError {
	c := *e
	c.Detail = detail
	return &c
}

// WithCause retorna una copia con la causa original.
func (e *AppError) WithCause(err error) *AppError {
	c := *e
	c.Err = err
	return &c
}

func def(status int, code, msg string) *AppError {
	return &AppError{Code: code, Message: msg, HTTPStatus: status}
}

// Catálogo de errores de la API.
var (
	// 400
	ErrBadRequest       = def(http.StatusBadRequest, "BAD_REQUEST", "La solicitud es inválida.")
	ErrInvalidJSON      = def(http.StatusBadRequest, "INVALID_JSON", "El cuerpo de la solicitud no es un JSON válido.")
	ErrInvalidFormat    = def(http.StatusBadRequest, "INVALID_FORMAT", "El formato de uno o más campos es inválido.")
	ErrValidation       = def(http.StatusBadRequest, "VALIDATION_FAILED", "Los datos enviados no son válidos.")
	ErrInvalidParameter = def(http.StatusBadRequest, "INVALID_PARAMETER", "Un parámetro de la ruta o de la query es inválido.")

	// 401
	ErrUnauthorized       = def(http.StatusUnauthorized, "UNAUTHORIZED", "Se requiere autenticación.")
	ErrInvalidCredentials = def(http.StatusUnauthorized, "INVALID_CREDENTIALS", "Tenant, email o password incorrectos.")
	ErrTokenExpired       = def(http.StatusUnauthorized, "TOKEN_EXPIRED", "El token de acceso expiró.")
	ErrTokenInvalid       = def(http.StatusUnauthorized, "TOKEN_INVALID", "El token de acceso es inválido.")
	ErrTokenMissing       = def(http.StatusUnauthorized, "TOKEN_MISSING", "Falta el header Authorization: Bearer.")

	// 403
	ErrForbidden       = def(http.StatusForbidden, "FORBIDDEN", "No tiene permisos para esta acción.")
	ErrTenantSuspended = def(http.StatusForbidden, "TENANT_SUSPENDED", "El tenant está suspendido.")
	ErrTenantMismatch  = def(http.StatusForbidden, "TENANT_MISMATCH", "El token no pertenece al tenant solicitado.")
	ErrUserDisabled    = def(http.StatusForbidden, "USER_DISABLED", "El usuario está deshabilitado.")

	// 404 / 405
	ErrNotFound         = def(http.StatusNotFound, "NOT_FOUND", "El recurso no existe.")
	ErrTenantNotFound   = def(http.StatusNotFound, "TENANT_NOT_FOUND", "El tenant no existe.")
	ErrRouteNotFound    = def(http.StatusNotFound, "ROUTE_NOT_FOUND", "La ruta no existe.")
	ErrMethodNotAllowed = def(http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Método HTTP no permitido en esta ruta.")

	// 409 / 422: reglas de negocio
	ErrConflict          = def(http.StatusConflict, "CONFLICT", "La operación entra en conflicto con el estado actual.")
	ErrInvalidTransition = def(http.StatusUnprocessableEntity, "INVALID_TRANSITION", "El cambio de estado no está permitido.")

	// 429
	ErrRateLimitExceeded = def(http.StatusTooManyRequests, "RATE_LIMIT_EXCEEDED", "Demasiadas solicitudes, intente más tarde.")

	// 5xx
	ErrInternalServerError = def(http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "Error interno del servidor.")
	ErrServiceUnavailable  = def(http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "El servicio no está disponible.")
)

package errors

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/razorzibra-dot/trialram-sub001/internal/domain/repository"
)

// errorResponse structura interna para la serialización JSON.
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

// WriteError escribe una respuesta HTTP basada en el error proporcionado.
// Errores que no son *AppError se traducen con FromDomain.
func WriteError(w http.ResponseWriter, err error) {
	appErr := FromDomain(err)

	resp := errorResponse{
		Code:    appErr.Code,
		Message: appErr.Message,
		Detail:  appErr.Detail,
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if appErr.HTTPStatus == http.StatusTooManyRequests && w.Header().Get("Retry-After") == "" {
		w.Header().Set("Retry-After", "60")
	}
	w.WriteHeader(appErr.HTTPStatus)
	_ = json.NewEncoder(w).Encode(resp)
}

// FromDomain traduce los errores de dominio (repository.Err*) a AppError.
// El detalle es el mensaje del error envuelto, sin el prefijo del sentinel.
func FromDomain(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	var base *AppError
	switch {
	case err == nil:
		return ErrInternalServerError
	case errors.Is(err, repository.ErrTenantSuspended):
		base = ErrTenantSuspended
	case errors.Is(err, repository.ErrNotFound):
		base = ErrNotFound
	case errors.Is(err, repository.ErrConflict):
		base = ErrConflict
	case errors.Is(err, repository.ErrInvalidInput):
		base = ErrValidation
	case errors.Is(err, repository.ErrForbidden):
		base = ErrForbidden
	case errors.Is(err, repository.ErrInvalidTransition):
		base = ErrInvalidTransition
	case errors.Is(err, repository.ErrNoDatabase):
		return ErrServiceUnavailable.WithCause(err)
	default:
		return ErrInternalServerError.WithCause(err)
	}
	return base.WithDetail(detail(err)).WithCause(err)
}

func detail(err error) string {
	msg := err.Error()
	for _, s := range []error{
		repository.ErrNotFound, repository.ErrConflict, repository.ErrInvalidInput,
		repository.ErrForbidden, repository.ErrInvalidTransition, repository.ErrTenantSuspended,
	} {
		if msg == s.Error() {
			return ""
		}
		msg = strings.TrimPrefix(msg, s.Error()+": ")
	}
	return msg
}

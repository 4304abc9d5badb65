package store

import (
	"errors"
	"fmt"

	"github.com/razorzibra-dot/trialram-sub001/internal/domain/repository"
)

// ErrTenantNotFound indica que el tenant no existe en el control plane.
var ErrTenantNotFound = fmt.Errorf("tenant %w", repository.ErrNotFound)

// IsTenantNotFound helper para verificar si el error es por tenant no encontrado.
func IsTenantNotFound(err error) bool {
	return errors.Is(err, ErrTenantNotFound)
}

// IsTenantSuspended helper para verificar si el tenant está suspendido.
func IsTenantSuspended(err error) bool {
	return errors.Is(err, repository.ErrTenantSuspended)
}

package repository

import "errors"

var (
	// ErrNotFound indica que el recurso solicitado no existe (o es de otro tenant).
	ErrNotFound = errors.New("not found")

	// ErrConflict indica un conflicto (duplicado, recurso en uso).
	ErrConflict = errors.New("conflict")

	// ErrInvalidInput indica que los datos de entrada son inválidos.
	ErrInvalidInput = errors.New("invalid input")

	// ErrForbidden indica que el actor no tiene el permiso requerido.
	ErrForbidden = errors.New("forbidden")

	// ErrInvalidTransition indica un cambio de estado no permitido.
	ErrInvalidTransition = errors.New("invalid state transition")

	// ErrTenantSuspended indica que el tenant está suspendido.
	ErrTenantSuspended = errors.New("tenant suspended")

	// ErrNoDatabase indica que no hay base de datos configurada.
	ErrNoDatabase = errors.New("no database configured")
)

func IsNotFound(err error) bool          { return errors.Is(err, ErrNotFound) }
func IsConflict(err error) bool          { return errors.Is(err, ErrConflict) }
func IsInvalidInput(err error) bool      { return errors.Is(err, ErrInvalidInput) }
func IsForbidden(err error) bool         { return errors.Is(err, ErrForbidden) }
func IsInvalidTransition(err error) bool { return errors.Is(err, ErrInvalidTransition) }
func IsNoDatabase(err error) bool        { return errors.Is(err, ErrNoDatabase) }

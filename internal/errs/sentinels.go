// Package errs contiene los errores sentinela compartidos entre capas
// (storage, dominio, handlers) para mapearlos de forma estable.
package errs

import "errors"

var (
	// ErrInvalidInput: campo requerido vacío o mal formado. Se rechaza antes de tocar storage.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound: el animal o la entrada referenciada no existe.
	ErrNotFound = errors.New("not found")

	// ErrConflict: colisión de clave única detectada en storage (alta concurrente del mismo animal).
	ErrConflict = errors.New("conflict")

	// ErrStorageUnavailable: no se pudo hablar con el store. Fatal para el request actual.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrForbidden: operación de staff invocada sin capacidad de staff.
	ErrForbidden = errors.New("forbidden")

	// ErrAlreadyBound: el animal ya tiene su código QR asociado.
	ErrAlreadyBound = errors.New("lookup artifact already bound")
)

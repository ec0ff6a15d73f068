package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrTenantNotFound         = errors.New("campus no registrado o deshabilitado")
	ErrNotFound               = errors.New("recurso no encontrado")
	ErrInvalidTransition      = errors.New("transición de estado no permitida")
	ErrMissingDocuments       = errors.New("faltan documentos obligatorios")
	ErrAlreadyInvoiced        = errors.New("la solicitud ya tiene factura emitida")
	ErrConcurrentModification = errors.New("la solicitud fue modificada por otra petición")
	ErrValidation             = errors.New("entrada inválida")
)

// TransitionError detalla una transición rechazada por la máquina de estados.
// errors.Is(err, ErrInvalidTransition) retorna true para este tipo.
type TransitionError struct {
	From  string
	Event string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("transición no permitida: evento %q desde estado %q", e.Event, e.From)
}

func (e *TransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}

package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrConflict     = errors.New("conflicto con el estado actual")
	ErrDuplicate    = fmt.Errorf("recurso duplicado: %w", ErrConflict)
	ErrUnauthorized = errors.New("no autorizado")
	ErrForbidden    = errors.New("acceso denegado")
	ErrStorage      = errors.New("error de almacenamiento")
	ErrIntegrity    = errors.New("el saldo no coincide con el historial de movimientos")
)

// FieldError describe una validación fallida sobre un campo concreto de la entrada.
// errors.Is(err, ErrInvalidInput) es verdadero para cualquier *FieldError.
type FieldError struct {
	Field   string
	Message string
}

// NewFieldError construye un error de validación para el campo indicado.
func NewFieldError(field, message string) error {
	return &FieldError{Field: field, Message: message}
}

func (e *FieldError) Error() string {
	return e.Field + ": " + e.Message
}

func (e *FieldError) Unwrap() error { return ErrInvalidInput }

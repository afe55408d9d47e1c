package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
// Las capas superiores clasifican con errors.Is; el mensaje concreto viaja envuelto.
var (
	ErrValidation   = errors.New("dato inválido")
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrBusinessRule = errors.New("regla de negocio incumplida")
	ErrConflict     = errors.New("conflicto con el estado actual")
	ErrUnauthorized = errors.New("no autorizado")
	ErrForbidden    = errors.New("acceso denegado")
	ErrInternal     = errors.New("error interno")
)

// Validation construye un ValidationError con mensaje propio.
func Validation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// NotFound construye un NotFoundError para el recurso indicado.
func NotFound(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

// BusinessRule construye un BusinessRuleError (transición de estado ilegal, mutación de factura emitida...).
func BusinessRule(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrBusinessRule, fmt.Sprintf(format, args...))
}

// Conflict construye un ConflictError (NIF duplicado, número de factura duplicado).
func Conflict(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConflict, fmt.Sprintf(format, args...))
}

// Internal oculta el error de infraestructura: se conserva el texto, no la cadena de errores.
func Internal(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrInternal, op, err)
}

// Message devuelve el texto del error sin el prefijo del sentinel, para mostrarlo tal cual al usuario.
func Message(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	for _, s := range []error{ErrValidation, ErrNotFound, ErrBusinessRule, ErrConflict, ErrUnauthorized, ErrForbidden, ErrInternal} {
		prefix := s.Error() + ": "
		if len(msg) > len(prefix) && msg[:len(prefix)] == prefix {
			return msg[len(prefix):]
		}
	}
	return msg
}
